package assemble

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/danwirya/perundang/pkg/grammar"
	"github.com/danwirya/perundang/pkg/refs"
)

// Coords locates a chunk in the document hierarchy. Every field holds
// the raw marker label ("III", "Kesatu", "6", "2", "b"); empty means the
// chunk sits above that level.
type Coords struct {
	Chapter    string `json:"bab,omitempty"`
	Part       string `json:"bagian,omitempty"`
	Paragraph  string `json:"paragraf,omitempty"`
	Article    string `json:"pasal,omitempty"`
	Clause     string `json:"ayat,omitempty"`
	SubClause  string `json:"huruf,omitempty"`
	Item       string `json:"angka,omitempty"`
	Attachment string `json:"lampiran,omitempty"`
}

// with returns a copy of c with the field for kind set to label.
func (c Coords) with(kind grammar.Kind, label string) Coords {
	switch kind {
	case grammar.KindChapter:
		c.Chapter = label
	case grammar.KindPart:
		c.Part = label
	case grammar.KindParagraph:
		c.Paragraph = label
	case grammar.KindArticle, grammar.KindExplanatoryArticle:
		c.Article = label
	case grammar.KindClause, grammar.KindExplanatoryClause:
		c.Clause = label
	case grammar.KindSubClause, grammar.KindMemoSubItem:
		c.SubClause = label
	case grammar.KindMemoItem:
		c.Item = label
	case grammar.KindAttachment:
		c.Attachment = label
	}
	return c
}

// Chunk is one retrieval unit. Parent is the index of the enclosing
// chunk in the result slice, -1 at the root, so the hierarchy survives
// JSON round-trips without pointer cycles.
type Chunk struct {
	Type   grammar.Kind `json:"type"`
	Title  string       `json:"title,omitempty"`
	Anchor string       `json:"anchor"`
	Text   string       `json:"text"`

	// Start and End are the byte offsets of Text in the cleaned input.
	// A parent's span stops at its first child, so spans never overlap.
	Start int `json:"start"`
	End   int `json:"end"`

	Order  int `json:"order"`
	Parent int `json:"parent"`

	Coords     Coords             `json:"coords"`
	SourcePart grammar.SourcePart `json:"source_part"`

	References    []refs.Reference `json:"references,omitempty"`
	TokenEstimate int              `json:"token_estimate"`
}

// Section is one entry of the document outline: the heading-bearing
// structural units in reading order.
type Section struct {
	Kind       grammar.Kind       `json:"kind"`
	Label      string             `json:"label,omitempty"`
	Title      string             `json:"title,omitempty"`
	Anchor     string             `json:"anchor"`
	Start      int                `json:"start"`
	End        int                `json:"end"`
	SourcePart grammar.SourcePart `json:"source_part"`
	Depth      int                `json:"depth"`
	Chunk      int                `json:"chunk"`
}

// sectionKinds are the chunk kinds that appear in the outline.
var sectionKinds = map[grammar.Kind]bool{
	grammar.KindChapter:            true,
	grammar.KindPart:               true,
	grammar.KindParagraph:          true,
	grammar.KindHeading:            true,
	grammar.KindAttachment:         true,
	grammar.KindExplanatoryGeneral: true,
}

// anchorPiece renders one hierarchy step of an anchor citation:
// "BAB III", "Pasal 6", "Ayat (2)".
func anchorPiece(kind grammar.Kind, label string) string {
	seg := kind.AnchorSegment()
	if label == "" {
		return seg
	}
	switch kind {
	case grammar.KindClause, grammar.KindExplanatoryClause:
		return seg + " (" + label + ")"
	default:
		return seg + " " + label
	}
}

// anchorFor builds the full citation for a hierarchy path and reserves
// it. A path that repeats (duplicate labels the dedup pass let through,
// or label-less markers) gets an ordinal suffix so anchors stay unique
// within the document.
func (a *assembler) anchorFor(path []string) string {
	anchor := a.docID
	if len(path) > 0 {
		anchor += " - " + strings.Join(path, " - ")
	}
	n := a.anchorSeen[anchor]
	a.anchorSeen[anchor] = n + 1
	if n > 0 {
		anchor += " (" + strconv.Itoa(n+1) + ")"
	}
	return anchor
}

// tokenEstimate approximates the token count of text as ceil(runes/4).
func tokenEstimate(text string) int {
	runes := utf8.RuneCountInString(text)
	return (runes + 3) / 4
}
