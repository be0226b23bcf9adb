// Package refs extracts cross-references from chunk text: internal
// citations of articles and clauses (Pasal/ayat/huruf) and external
// citations of named regulations (type keyword + number + year).
// Extraction never fails; text without references yields an empty list.
package refs

import (
	"regexp"
	"strings"
)

// Type indicates whether a reference points inside the same document or
// to another regulation.
type Type string

const (
	TypeInternal Type = "internal"
	TypeExternal Type = "external"
)

// Target indicates what kind of element is being referenced.
type Target string

const (
	TargetArticle    Target = "pasal"
	TargetClause     Target = "ayat"
	TargetSubClause  Target = "huruf"
	TargetRegulation Target = "peraturan"
)

// Reference is one detected cross-reference. Offsets are relative to the
// scanned text so downstream indexers can highlight the span.
type Reference struct {
	Type       Type   `json:"type"`
	Target     Target `json:"target"`
	RawText    string `json:"raw_text"`
	Identifier string `json:"identifier"`
	Offset     int    `json:"offset"`
	Length     int    `json:"length"`
}

// Internal reference patterns, most specific first; overlap with an
// earlier, more specific match suppresses the shorter one.
var (
	articleRangePattern  = regexp.MustCompile(`Pasal\s+(\d+[A-Z]?)\s+sampai\s+dengan\s+Pasal\s+(\d+[A-Z]?)`)
	articleClausePattern = regexp.MustCompile(`Pasal\s+(\d+[A-Z]?)\s+ayat\s+\((\d+)\)(?:\s+huruf\s+([a-z]))?`)
	articlePattern       = regexp.MustCompile(`Pasal\s+(\d+[A-Z]?)`)
	clausePattern        = regexp.MustCompile(`(?i)\bayat\s+\((\d+)\)(?:\s+huruf\s+([a-z]))?`)
	subClausePattern     = regexp.MustCompile(`(?i)\bhuruf\s+([a-z])\b`)
)

// External reference patterns: regulation type keyword + number (+ year).
var externalPatterns = []struct {
	pattern *regexp.Regexp
	prefix  string
}{
	{regexp.MustCompile(`Undang-Undang\s+Nomor\s+(\d+[A-Z]?)\s+Tahun\s+(\d{4})`), "UU"},
	{regexp.MustCompile(`Peraturan\s+Pemerintah\s+Pengganti\s+Undang-Undang\s+Nomor\s+(\d+)\s+Tahun\s+(\d{4})`), "Perpu"},
	{regexp.MustCompile(`Peraturan\s+Pemerintah\s+Nomor\s+(\d+)\s+Tahun\s+(\d{4})`), "PP"},
	{regexp.MustCompile(`Peraturan\s+Presiden\s+Nomor\s+(\d+)\s+Tahun\s+(\d{4})`), "Perpres"},
	{regexp.MustCompile(`Peraturan\s+Menteri\s+Keuangan\s+Nomor\s+(\d+/PMK\.\d+/\d{4}|\d+\s+Tahun\s+\d{4})`), "PMK"},
	{regexp.MustCompile(`Peraturan\s+Direktur\s+Jenderal\s+Pajak\s+Nomor\s+(PER-?\s?\d+/PJ(?:\.\d+)?/\d{4})`), "PER"},
	{regexp.MustCompile(`Surat\s+Edaran(?:\s+Direktur\s+Jenderal\s+Pajak)?\s+Nomor\s+(SE-?\s?\d+/PJ(?:\.\d+)?/\d{4})`), "SE"},
	{regexp.MustCompile(`Keputusan\s+Menteri\s+Keuangan\s+Nomor\s+(\d+/KMK\.\d+/\d{4})`), "KMK"},
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// Extract returns every reference found in text, ordered by offset and
// deduplicated case-insensitively on the normalized identifier.
func Extract(text string) []Reference {
	if text == "" {
		return nil
	}

	var out []Reference

	// Article ranges: "Pasal 9 sampai dengan Pasal 12". A conjunction
	// ("Pasal 9 dan Pasal 12") names discrete articles and falls through
	// to the bare pattern, yielding one reference per article.
	for _, m := range articleRangePattern.FindAllStringSubmatchIndex(text, -1) {
		out = append(out, Reference{
			Type:       TypeInternal,
			Target:     TargetArticle,
			RawText:    text[m[0]:m[1]],
			Identifier: "Pasal " + text[m[2]:m[3]] + " s.d. Pasal " + text[m[4]:m[5]],
			Offset:     m[0],
			Length:     m[1] - m[0],
		})
	}

	// "Pasal 5 ayat (2)" and "Pasal 5 ayat (2) huruf b".
	for _, m := range articleClausePattern.FindAllStringSubmatchIndex(text, -1) {
		if overlaps(m[0], m[1], out) {
			continue
		}
		id := "Pasal " + text[m[2]:m[3]] + " ayat (" + text[m[4]:m[5]] + ")"
		if m[6] >= 0 {
			id += " huruf " + text[m[6]:m[7]]
		}
		out = append(out, Reference{
			Type:       TypeInternal,
			Target:     TargetArticle,
			RawText:    text[m[0]:m[1]],
			Identifier: id,
			Offset:     m[0],
			Length:     m[1] - m[0],
		})
	}

	// Bare "Pasal 5".
	for _, m := range articlePattern.FindAllStringSubmatchIndex(text, -1) {
		if overlaps(m[0], m[1], out) {
			continue
		}
		out = append(out, Reference{
			Type:       TypeInternal,
			Target:     TargetArticle,
			RawText:    text[m[0]:m[1]],
			Identifier: "Pasal " + text[m[2]:m[3]],
			Offset:     m[0],
			Length:     m[1] - m[0],
		})
	}

	// Standalone "ayat (2)" referring to the enclosing article.
	for _, m := range clausePattern.FindAllStringSubmatchIndex(text, -1) {
		if overlaps(m[0], m[1], out) {
			continue
		}
		id := "ayat (" + text[m[2]:m[3]] + ")"
		if m[4] >= 0 {
			id += " huruf " + text[m[4]:m[5]]
		}
		out = append(out, Reference{
			Type:       TypeInternal,
			Target:     TargetClause,
			RawText:    text[m[0]:m[1]],
			Identifier: id,
			Offset:     m[0],
			Length:     m[1] - m[0],
		})
	}

	// Standalone "huruf b" referring to the enclosing clause.
	for _, m := range subClausePattern.FindAllStringSubmatchIndex(text, -1) {
		if overlaps(m[0], m[1], out) {
			continue
		}
		out = append(out, Reference{
			Type:       TypeInternal,
			Target:     TargetSubClause,
			RawText:    text[m[0]:m[1]],
			Identifier: "huruf " + text[m[2]:m[3]],
			Offset:     m[0],
			Length:     m[1] - m[0],
		})
	}

	// Named regulations.
	for _, ext := range externalPatterns {
		for _, m := range ext.pattern.FindAllStringSubmatchIndex(text, -1) {
			if overlaps(m[0], m[1], out) {
				continue
			}
			id := ext.prefix + " " + whitespaceRun.ReplaceAllString(text[m[2]:m[3]], " ")
			// Patterns with a separate year group yield "UU 7/2021",
			// matching the anchor prefix of the cited document.
			if len(m) >= 6 && m[4] >= 0 {
				id += "/" + text[m[4]:m[5]]
			}
			out = append(out, Reference{
				Type:       TypeExternal,
				Target:     TargetRegulation,
				RawText:    text[m[0]:m[1]],
				Identifier: id,
				Offset:     m[0],
				Length:     m[1] - m[0],
			})
		}
	}

	out = Dedupe(out)
	sortByOffset(out)
	return out
}

// Dedupe removes references whose identifier, whitespace-normalized and
// lowercased, repeats an earlier one. Order is preserved.
func Dedupe(refs []Reference) []Reference {
	seen := make(map[string]bool, len(refs))
	var out []Reference
	for _, r := range refs {
		key := dedupeKey(r.Identifier)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, r)
	}
	return out
}

// Union merges per-chunk reference lists into one document-level list,
// deduplicated the same way as Dedupe.
func Union(lists ...[]Reference) []Reference {
	seen := make(map[string]bool)
	var out []Reference
	for _, list := range lists {
		for _, r := range list {
			key := dedupeKey(r.Identifier)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, r)
		}
	}
	return out
}

func dedupeKey(identifier string) string {
	return strings.ToLower(whitespaceRun.ReplaceAllString(strings.TrimSpace(identifier), " "))
}

// overlaps reports whether [start, end) intersects any already-found
// reference span.
func overlaps(start, end int, refs []Reference) bool {
	for _, r := range refs {
		if start < r.Offset+r.Length && end > r.Offset {
			return true
		}
	}
	return false
}

func sortByOffset(refs []Reference) {
	for i := 1; i < len(refs); i++ {
		for j := i; j > 0 && refs[j].Offset < refs[j-1].Offset; j-- {
			refs[j], refs[j-1] = refs[j-1], refs[j]
		}
	}
}
