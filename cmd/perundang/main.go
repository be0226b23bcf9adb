package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/danwirya/perundang/pkg/classify"
	"github.com/danwirya/perundang/pkg/grammar"
	"github.com/danwirya/perundang/pkg/normalize"
	"github.com/danwirya/perundang/pkg/parse"
	"github.com/danwirya/perundang/pkg/refs"
	"github.com/spf13/cobra"
)

var version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "perundang",
		Short: "Structure recovery for Indonesian statutory documents",
		Long: `Perundang recovers the legal hierarchy of Indonesian statutory and
administrative documents from flat extracted text.

It normalizes extraction artifacts, detects the document family and
sub-style, locates structural boundaries (BAB, Bagian, Paragraf, Pasal,
Ayat, huruf), distinguishes headers from in-prose cross-references, and
assembles retrieval-ready chunks with anchor citations.`,
		Version: version,
	}

	rootCmd.AddCommand(parseCmd())
	rootCmd.AddCommand(classifyCmd())
	rootCmd.AddCommand(normalizeCmd())
	rootCmd.AddCommand(refsCmd())
	rootCmd.AddCommand(grammarsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func parseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse [file]",
		Short: "Parse a document into hierarchical chunks",
		Long: `Parse a document into hierarchical chunks with anchor citations.

Example:
  perundang parse uu-7-2021.txt
  perundang parse pmk-66-2023.txt --family pmk --output chunks.json --stats`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			family, _ := cmd.Flags().GetString("family")
			style, _ := cmd.Flags().GetString("style")
			grammarDir, _ := cmd.Flags().GetString("grammars")
			output, _ := cmd.Flags().GetString("output")
			docID, _ := cmd.Flags().GetString("doc-id")
			showStats, _ := cmd.Flags().GetBool("stats")

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}

			startTime := time.Now()
			result, err := parse.Parse(string(data), parse.Options{
				Family:     grammar.Family(family),
				Style:      grammar.SubStyle(style),
				GrammarDir: grammarDir,
				DocID:      docID,
			})
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return fmt.Errorf("encoding result: %w", err)
			}

			if output != "" {
				if err := os.WriteFile(output, out, 0644); err != nil {
					return fmt.Errorf("writing %s: %w", output, err)
				}
				fmt.Printf("Wrote %d chunks to %s\n", len(result.Chunks), output)
			} else {
				fmt.Println(string(out))
			}

			if showStats {
				printStats(result, time.Since(startTime))
			}
			return nil
		},
	}

	cmd.Flags().String("family", "", "force document family (uu, pp, pmk, perdjp, se, nd)")
	cmd.Flags().String("style", "", "force sub-style (enacted, briefing)")
	cmd.Flags().String("grammars", "", "directory of YAML grammar overlays")
	cmd.Flags().String("output", "", "write JSON result to file instead of stdout")
	cmd.Flags().String("doc-id", "", "override the anchor citation prefix")
	cmd.Flags().Bool("stats", false, "print parse statistics to stderr")
	return cmd
}

func printStats(result *parse.Result, elapsed time.Duration) {
	fmt.Fprintf(os.Stderr, "\nParse statistics:\n")
	fmt.Fprintf(os.Stderr, "  Family:     %s (detected: %v)\n", result.Family, result.FamilyDetected)
	fmt.Fprintf(os.Stderr, "  Style:      %s\n", result.Style)
	fmt.Fprintf(os.Stderr, "  Doc ID:     %s\n", result.DocID)
	fmt.Fprintf(os.Stderr, "  Chunks:     %d\n", len(result.Chunks))
	fmt.Fprintf(os.Stderr, "  Sections:   %d\n", len(result.Sections))
	fmt.Fprintf(os.Stderr, "  References: %d\n", len(result.References))
	fmt.Fprintf(os.Stderr, "  Elapsed:    %s\n", elapsed.Round(time.Millisecond))

	kinds := make([]string, 0, len(result.Stats.Accepted))
	for k := range result.Stats.Accepted {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)
	if len(kinds) > 0 {
		fmt.Fprintf(os.Stderr, "  Boundaries:\n")
		for _, k := range kinds {
			kind := grammar.Kind(k)
			line := fmt.Sprintf("    %-20s accepted %d", k, result.Stats.Accepted[kind])
			if n := result.Stats.Rejected[kind]; n > 0 {
				line += fmt.Sprintf(", rejected as reference %d", n)
			}
			if n := result.Stats.Deduped[kind]; n > 0 {
				line += fmt.Sprintf(", deduped %d", n)
			}
			fmt.Fprintln(os.Stderr, line)
		}
	}
}

func classifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify [file]",
		Short: "Detect the document family and sub-style",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			grammarDir, _ := cmd.Flags().GetString("grammars")

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}

			reg := grammar.NewRegistry()
			if grammarDir != "" {
				reg, err = grammar.NewRegistryWithDirectory(grammarDir)
				if err != nil {
					return fmt.Errorf("loading grammar overlays: %w", err)
				}
			}

			text := normalize.Normalize(string(data))
			family, detected := grammar.DetectFamily(text)
			g, ok := reg.Get(family, grammar.StyleEnacted)
			if !ok {
				return fmt.Errorf("no grammar registered for family %q", family)
			}
			cls := classify.Classify(text, g.Styles)

			report := struct {
				Family         grammar.Family   `json:"family"`
				FamilyDetected bool             `json:"family_detected"`
				Grammar        string           `json:"grammar"`
				Style          grammar.SubStyle `json:"style"`
				Classification classify.Result  `json:"classification"`
			}{family, detected, g.Name, cls.Style, cls}

			out, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return fmt.Errorf("encoding result: %w", err)
			}
			fmt.Println(string(out))
			return nil
		},
	}

	cmd.Flags().String("grammars", "", "directory of YAML grammar overlays")
	return cmd
}

func normalizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "normalize [file]",
		Short: "Clean extraction artifacts from a document",
		Long: `Clean extraction artifacts: letter-spaced keywords, page numbers,
repeated running headers, and irregular blank-line runs. The cleaned
text is written to stdout.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			maxBlank, _ := cmd.Flags().GetInt("max-blank-lines")

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}
			fmt.Println(normalize.NormalizeWithOptions(string(data), normalize.Options{
				MaxBlankLines: maxBlank,
			}))
			return nil
		},
	}

	cmd.Flags().Int("max-blank-lines", 0, "cap on consecutive blank lines (default 2)")
	return cmd
}

func refsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refs [file]",
		Short: "Extract cross-references from a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}

			found := refs.Extract(normalize.Normalize(string(data)))
			out, err := json.MarshalIndent(found, "", "  ")
			if err != nil {
				return fmt.Errorf("encoding result: %w", err)
			}
			fmt.Println(string(out))
			return nil
		},
	}
}

func grammarsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grammars",
		Short: "List the registered grammars",
		RunE: func(cmd *cobra.Command, args []string) error {
			grammarDir, _ := cmd.Flags().GetString("grammars")

			reg := grammar.NewRegistry()
			if grammarDir != "" {
				var err error
				reg, err = grammar.NewRegistryWithDirectory(grammarDir)
				if err != nil {
					return fmt.Errorf("loading grammar overlays: %w", err)
				}
			}

			list := reg.List()
			sort.Slice(list, func(i, j int) bool { return list[i].ID() < list[j].ID() })

			fmt.Printf("%d grammars registered:\n", len(list))
			for _, g := range list {
				fmt.Printf("  %-16s %s (levels: %d, markers: %d)\n",
					g.ID(), g.Name, len(g.Levels), len(g.Markers))
			}
			return nil
		},
	}

	cmd.Flags().String("grammars", "", "directory of YAML grammar overlays")
	return cmd
}
