// Package boundary locates structural markers in cleaned statutory text.
// Detection is a pure function: for a given input and marker set it
// returns a fully materialized, ordered list of boundaries with no
// residual state between calls. Candidates for kinds that also appear as
// in-prose cross-references are routed through a context-window
// disambiguator, and both outcomes are counted so misclassification is
// observable rather than silent.
package boundary

import (
	"regexp"
	"sort"
	"strings"

	"github.com/danwirya/perundang/pkg/grammar"
)

// Boundary is one detected structural marker. Offsets are byte offsets
// into the scanned text; Offset points at the start of the marker line
// (including its leading whitespace) so spans partition cleanly at line
// boundaries.
type Boundary struct {
	Kind    grammar.Kind
	Offset  int
	End     int
	Label   string
	Heading string
}

// Stats counts disambiguator outcomes per kind for one scan. Rejected
// counts candidates dismissed as cross-references; Deduped counts
// repeated labels dropped as table-of-contents echoes.
type Stats struct {
	Accepted map[grammar.Kind]int
	Rejected map[grammar.Kind]int
	Deduped  map[grammar.Kind]int
}

// NewStats returns an empty Stats value with initialized maps.
func NewStats() Stats {
	return Stats{
		Accepted: make(map[grammar.Kind]int),
		Rejected: make(map[grammar.Kind]int),
		Deduped:  make(map[grammar.Kind]int),
	}
}

// Merge adds the counts of other into s.
func (s Stats) Merge(other Stats) {
	for k, v := range other.Accepted {
		s.Accepted[k] += v
	}
	for k, v := range other.Rejected {
		s.Rejected[k] += v
	}
	for k, v := range other.Deduped {
		s.Deduped[k] += v
	}
}

// TotalRejected returns the total number of reference-rejected candidates.
func (s Stats) TotalRejected() int {
	n := 0
	for _, v := range s.Rejected {
		n += v
	}
	return n
}

// Options carries the disambiguator tuning taken from a grammar.
type Options struct {
	// RefIndicators are lowercase reference-indicating phrases matched
	// against the whitespace-collapsed leading context window plus the
	// candidate text itself.
	RefIndicators []string

	// LeadWindow and TrailWindow bound the context inspected before and
	// after a candidate, in bytes.
	LeadWindow  int
	TrailWindow int
}

// OptionsFromGrammar extracts the disambiguator tuning from a grammar.
func OptionsFromGrammar(g *grammar.Grammar) Options {
	return Options{
		RefIndicators: g.RefIndicators,
		LeadWindow:    g.LeadWindow,
		TrailWindow:   g.TrailWindow,
	}
}

var (
	whitespaceRun = regexp.MustCompile(`\s+`)

	// headerTail matches trailing context that still looks like a header:
	// the marker line ends immediately, or a numbered clause marker opens
	// the next line.
	headerTail = regexp.MustCompile(`^[ \t]*(?:\n|$)`)
	clauseTail = regexp.MustCompile(`^[ \t]*\n?[ \t]*\(\d+\)`)
)

// Locate scans text with an ordered marker-definition list and returns
// the accepted boundaries sorted by offset, plus disambiguation stats.
// Definitions earlier in the list win when two kinds match at the same
// offset. The scan holds no state across calls.
func Locate(text string, defs []grammar.MarkerDef, opts Options) ([]Boundary, Stats) {
	stats := NewStats()
	var found []Boundary
	taken := make(map[int]bool) // offsets claimed by an earlier definition

	for di := range defs {
		def := &defs[di]
		pat := def.Compiled()
		if pat == nil {
			continue
		}

		var accepted []Boundary
		matches := pat.FindAllStringSubmatchIndex(text, -1)
		for _, m := range matches {
			start, end := m[0], m[1]
			if taken[start] {
				continue
			}

			if def.Disambiguate && isReference(text, start, end, opts) {
				stats.Rejected[def.Kind]++
				continue
			}

			b := Boundary{Kind: def.Kind, Offset: start, End: end}
			if def.LabelGroup > 0 && 2*def.LabelGroup+1 < len(m) && m[2*def.LabelGroup] >= 0 {
				b.Label = text[m[2*def.LabelGroup]:m[2*def.LabelGroup+1]]
			}
			if def.TitleFollows {
				b.Heading = headingAfter(text, end)
			}
			accepted = append(accepted, b)
		}

		if def.Disambiguate {
			accepted = dedupeLabels(accepted, &stats)
		}
		for _, b := range accepted {
			taken[b.Offset] = true
			stats.Accepted[b.Kind]++
			found = append(found, b)
		}
	}

	sort.Slice(found, func(i, j int) bool { return found[i].Offset < found[j].Offset })
	return found, stats
}

// isReference applies the reference-vs-header heuristic:
//  1. the window of up to LeadWindow bytes of leading context, joined
//     with the candidate text and whitespace-collapsed, is checked for
//     reference-indicating phrases;
//  2. on a hit, the TrailWindow bytes after the candidate are checked:
//     trailing context that still looks like a header start (line ends,
//     or a numbered clause marker follows) overrides the rejection.
func isReference(text string, start, end int, opts Options) bool {
	leadStart := start - opts.LeadWindow
	if leadStart < 0 {
		leadStart = 0
	}
	window := strings.ToLower(text[leadStart:end])
	window = whitespaceRun.ReplaceAllString(window, " ")

	hit := false
	for _, phrase := range opts.RefIndicators {
		if strings.Contains(window, phrase) {
			hit = true
			break
		}
	}
	if !hit {
		return false
	}

	trailEnd := end + opts.TrailWindow
	if trailEnd > len(text) {
		trailEnd = len(text)
	}
	trail := text[end:trailEnd]
	if headerTail.MatchString(trail) || clauseTail.MatchString(trail) {
		return false
	}
	return true
}

// dedupeLabels drops repeated (kind, label) candidates, keeping the last
// occurrence: a table of contents echoes headings before the body, so
// the body occurrence wins.
func dedupeLabels(bs []Boundary, stats *Stats) []Boundary {
	last := make(map[string]int)
	for i, b := range bs {
		if b.Label == "" {
			continue
		}
		last[b.Label] = i
	}

	var out []Boundary
	for i, b := range bs {
		if b.Label != "" && last[b.Label] != i {
			stats.Deduped[b.Kind]++
			continue
		}
		out = append(out, b)
	}
	return out
}

// headingAfter returns the first non-empty line following a marker, used
// for levels whose title sits on the next line (BAB, Bagian, Paragraf).
// Overlong lines are body text, not headings.
func headingAfter(text string, from int) string {
	rest := text[from:]
	lines := strings.SplitN(rest, "\n", 5)
	for i, line := range lines {
		if i == 0 {
			// Remainder of the marker line itself; a non-empty tail is an
			// inline title.
			if tail := strings.TrimSpace(line); tail != "" {
				return tail
			}
			continue
		}
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if len(trimmed) > 120 {
			return ""
		}
		return trimmed
	}
	return ""
}

// Within filters boundaries to those whose offset lies in [start, end).
func Within(bs []Boundary, start, end int) []Boundary {
	var out []Boundary
	for _, b := range bs {
		if b.Offset >= start && b.Offset < end {
			out = append(out, b)
		}
	}
	return out
}

// OfKind filters boundaries to a single kind, preserving order.
func OfKind(bs []Boundary, kind grammar.Kind) []Boundary {
	var out []Boundary
	for _, b := range bs {
		if b.Kind == kind {
			out = append(out, b)
		}
	}
	return out
}
