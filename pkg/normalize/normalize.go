// Package normalize repairs text-extraction artifacts in statutory
// document text: letter-spaced keywords, stray page numbers, repeated
// running headers, and irregular blank-line runs. Normalization always
// succeeds and is a fixed point: normalizing already-normalized text is
// a no-op.
package normalize

import (
	"regexp"
	"strings"
)

// Options tunes family-dependent normalization behavior.
type Options struct {
	// MaxBlankLines caps consecutive blank lines; runs longer than the
	// cap are collapsed. Values below 1 are treated as the default of 2.
	MaxBlankLines int
}

// spacedKeywords are legal-header keywords that PDF extraction sometimes
// splits letter by letter ("P a s a l", "M E M U T U S K A N"). Each is
// reassembled to its canonical form.
var spacedKeywords = []string{
	"MEMUTUSKAN",
	"UNDANG-UNDANG",
	"PERATURAN",
	"PENJELASAN",
	"LAMPIRAN",
	"TENTANG",
	"Menimbang",
	"Mengingat",
	"Menetapkan",
	"Paragraf",
	"Bagian",
	"Pasal",
	"Ayat",
	"BAB",
}

var spacedKeywordPatterns = compileSpacedKeywords()

// compileSpacedKeywords builds, for each keyword, a pattern matching its
// letters separated by stray spaces or tabs. Single spaces inside the
// canonical form never match, so replacement is idempotent.
func compileSpacedKeywords() []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, 0, len(spacedKeywords))
	for _, word := range spacedKeywords {
		var sb strings.Builder
		sb.WriteString(`(?i)\b`)
		runes := []rune(word)
		for i, r := range runes {
			if r == '-' {
				sb.WriteString(`[ \t]*-[ \t]*`)
				continue
			}
			sb.WriteString(regexp.QuoteMeta(string(r)))
			if i < len(runes)-1 && runes[i+1] != '-' {
				sb.WriteString(`[ \t]+`)
			}
		}
		sb.WriteString(`\b`)
		patterns = append(patterns, regexp.MustCompile(sb.String()))
	}
	return patterns
}

var (
	// pageNumberPattern matches lines that are only a page number,
	// optionally dash-decorated, or a page-counter phrase.
	pageNumberPattern = regexp.MustCompile(`^(?:-[ \t]*\d+[ \t]*-|\d+|(?i:halaman|page)[ \t]+\d+(?:[ \t]+(?i:dari|of)[ \t]+\d+)?)$`)

	// structuralPrefixPattern guards repeated-line removal: lines opening
	// a structural marker are never treated as running headers.
	structuralPrefixPattern = regexp.MustCompile(`^(?:PASAL|BAB|BAGIAN|PARAGRAF|LAMPIRAN|PENJELASAN|MEMUTUSKAN|MENIMBANG|MENGINGAT|MENETAPKAN)\b`)
)

// Normalize cleans raw extracted text with default options.
func Normalize(text string) string {
	return NormalizeWithOptions(text, Options{})
}

// NormalizeWithOptions cleans raw extracted text. Operations, in order:
// unify line endings, reassemble letter-spaced keywords, strip pure
// page-number lines, strip repeated running headers/footers, collapse
// blank-line runs, right-trim every line. Empty input yields empty
// output.
func NormalizeWithOptions(text string, opts Options) string {
	if text == "" {
		return ""
	}
	maxBlank := opts.MaxBlankLines
	if maxBlank < 1 {
		maxBlank = 2
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	for i, pat := range spacedKeywordPatterns {
		text = pat.ReplaceAllString(text, spacedKeywords[i])
	}

	lines := strings.Split(text, "\n")
	lines = stripPageNumbers(lines)
	lines = stripRepeatedHeaders(lines)

	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " \t")
	}
	lines = collapseBlankRuns(lines, maxBlank)

	return strings.Join(lines, "\n")
}

// stripPageNumbers removes lines that contain nothing but a page number.
func stripPageNumbers(lines []string) []string {
	var out []string
	for _, line := range lines {
		if pageNumberPattern.MatchString(strings.TrimSpace(line)) {
			continue
		}
		out = append(out, line)
	}
	return out
}

// stripRepeatedHeaders removes repeated running headers and footers:
// short all-caps (or URL-bearing) lines whose trimmed form occurs three
// or more times. The first occurrence is kept so a genuine title that
// doubles as a running header survives in the header region.
func stripRepeatedHeaders(lines []string) []string {
	counts := make(map[string]int)
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if isHeaderCandidate(trimmed) {
			counts[trimmed]++
		}
	}

	seen := make(map[string]bool)
	var out []string
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if counts[trimmed] >= 3 {
			if seen[trimmed] {
				continue
			}
			seen[trimmed] = true
		}
		out = append(out, line)
	}
	return out
}

// isHeaderCandidate reports whether a trimmed line could be a running
// header: short, non-structural, and either all-caps or carrying a URL.
func isHeaderCandidate(line string) bool {
	if len(line) < 8 || len(line) > 100 {
		return false
	}
	if structuralPrefixPattern.MatchString(line) {
		return false
	}
	if strings.Contains(line, "www.") || strings.Contains(line, "http") {
		return true
	}
	hasLetter := false
	for _, r := range line {
		if r >= 'a' && r <= 'z' {
			return false
		}
		if r >= 'A' && r <= 'Z' {
			hasLetter = true
		}
	}
	return hasLetter
}

// collapseBlankRuns caps consecutive blank lines at maxBlank.
func collapseBlankRuns(lines []string, maxBlank int) []string {
	var out []string
	blanks := 0
	for _, line := range lines {
		if line == "" {
			blanks++
			if blanks > maxBlank {
				continue
			}
		} else {
			blanks = 0
		}
		out = append(out, line)
	}
	return out
}
