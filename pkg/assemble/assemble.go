// Package assemble turns detected boundaries into a hierarchical chunk
// arena. A forward pass over the document-level markers segments the
// text (preamble, recitals, enacting body, closing, attachments,
// explanatory notes); each enacting or attachment region is then
// partitioned recursively along the grammar's nesting levels. A level
// with no boundaries in a region is skipped rather than failing, so a
// chapter-less document still yields article chunks, and a document
// with no recognizable structure at all yields exactly one fallback
// chunk carrying the full text.
package assemble

import (
	"strings"
	"unicode"

	"github.com/danwirya/perundang/pkg/boundary"
	"github.com/danwirya/perundang/pkg/grammar"
	"github.com/danwirya/perundang/pkg/refs"
)

// Result is the assembled document structure.
type Result struct {
	Chunks   []Chunk        `json:"chunks"`
	Sections []Section      `json:"sections"`
	Stats    boundary.Stats `json:"-"`
}

type assembler struct {
	text  string
	g     *grammar.Grammar
	opts  boundary.Options
	docID string

	chunks     []Chunk
	anchorSeen map[string]int
	stats      boundary.Stats
}

// Assemble builds the chunk arena for cleaned text under a compiled
// grammar. docID prefixes every anchor citation.
func Assemble(text string, g *grammar.Grammar, docID string) Result {
	a := &assembler{
		text:       text,
		g:          g,
		opts:       boundary.OptionsFromGrammar(g),
		docID:      docID,
		anchorSeen: make(map[string]int),
		stats:      boundary.NewStats(),
	}
	a.run()
	return Result{Chunks: a.chunks, Sections: a.sections(), Stats: a.stats}
}

func (a *assembler) run() {
	markers := a.locate(0, len(a.text), a.g.Markers)

	hasEnacting := false
	for _, mb := range markers {
		if mb.Kind == grammar.KindEnacting {
			hasEnacting = true
		}
	}

	// Region before the first marker: pure preamble when an enacting
	// formula follows (the body lives inside its segment), otherwise a
	// title block running straight into the body.
	leadEnd := len(a.text)
	if len(markers) > 0 {
		leadEnd = markers[0].Offset
	}
	if hasEnacting {
		a.emitSpan(grammar.KindPreamble, "", "", 0, leadEnd, -1, Coords{}, grammar.PartBody, nil)
	} else {
		a.titleAndBody(0, leadEnd, len(markers) > 0)
	}

	for i, mb := range markers {
		segEnd := len(a.text)
		if i+1 < len(markers) {
			segEnd = markers[i+1].Offset
		}
		switch mb.Kind {
		case grammar.KindEnacting:
			a.enactingBody(mb, segEnd)
		case grammar.KindAttachment:
			a.attachment(mb, segEnd)
		case grammar.KindExplanatoryGeneral:
			a.explanatory(mb, segEnd)
		default:
			a.emitSpan(mb.Kind, mb.Label, mb.Heading, mb.Offset, segEnd, -1, Coords{}, grammar.PartBody, nil)
		}
	}

	// Fallback guarantee: a non-blank document is never parsed into
	// nothing. Blank input yields no chunks at all.
	if len(a.chunks) == 0 {
		a.emitSpan(grammar.KindContent, "", "", 0, len(a.text), -1, Coords{}, grammar.PartBody, nil)
	}

	for i := range a.chunks {
		c := &a.chunks[i]
		c.Order = i
		c.TokenEstimate = tokenEstimate(c.Text)
		c.References = refs.Extract(c.Text)
	}
}

// titleAndBody handles a region with no enacting formula: everything
// before the first body-level boundary is the preamble, the rest is
// partitioned along the grammar's levels. A flat region becomes a
// preamble chunk only when later markers prove the document has
// structure; otherwise nothing is emitted and the fallback content
// chunk takes over.
func (a *assembler) titleAndBody(start, end int, preambleWhenFlat bool) {
	bs := a.locate(start, end, a.g.Levels)
	if len(bs) == 0 {
		if preambleWhenFlat {
			a.emitSpan(grammar.KindPreamble, "", "", start, end, -1, Coords{}, grammar.PartBody, nil)
		}
		return
	}
	at := len(a.chunks)
	first, _ := a.children(bs, a.g.Levels, 0, start, end, -1, Coords{}, grammar.PartBody, nil)
	a.emitSpanAt(at, grammar.KindPreamble, "", "", start, first, -1, Coords{}, grammar.PartBody, nil)
}

// enactingBody emits the enacting-formula chunk and partitions the body
// that follows it. Body units are rooted at the top level, not under
// the formula chunk.
func (a *assembler) enactingBody(mb boundary.Boundary, segEnd int) {
	bs := a.locate(mb.End, segEnd, a.g.Levels)
	if len(bs) == 0 {
		a.emitSpan(grammar.KindEnacting, "", "", mb.Offset, segEnd, -1, Coords{}, grammar.PartBody, nil)
		return
	}
	at := len(a.chunks)
	first, _ := a.children(bs, a.g.Levels, 0, mb.End, segEnd, -1, Coords{}, grammar.PartBody, nil)
	a.emitSpanAt(at, grammar.KindEnacting, "", "", mb.Offset, first, -1, Coords{}, grammar.PartBody, nil)
}

// attachment emits one LAMPIRAN chunk and partitions its sections.
func (a *assembler) attachment(mb boundary.Boundary, segEnd int) {
	coords := Coords{}.with(grammar.KindAttachment, mb.Label)
	path := []string{anchorPiece(grammar.KindAttachment, mb.Label)}
	idx := a.emit(grammar.KindAttachment, mb.Label, mb.Heading, "", -1, coords, grammar.PartAttachment, path)

	bs := a.locate(mb.End, segEnd, a.g.Attachment)
	first, found := a.children(bs, a.g.Attachment, 0, mb.End, segEnd, idx, coords, grammar.PartAttachment, path)
	if !found {
		first = segEnd
	}
	a.setSpan(idx, mb.Offset, first)
}

// explanatory emits the PENJELASAN general chunk and the per-article
// explanatory entries beneath it.
func (a *assembler) explanatory(mb boundary.Boundary, segEnd int) {
	path := []string{grammar.KindExplanatoryGeneral.AnchorSegment()}
	idx := a.emit(grammar.KindExplanatoryGeneral, "", "", "", -1, Coords{}, grammar.PartExplanatory, path)

	bs := a.locate(mb.End, segEnd, a.g.Explanatory)
	first, found := a.children(bs, a.g.Explanatory, 0, mb.End, segEnd, idx, Coords{}, grammar.PartExplanatory, path)
	if !found {
		first = segEnd
	}
	a.setSpan(idx, mb.Offset, first)
}

// setSpan assigns a chunk's text and its offsets in one place.
func (a *assembler) setSpan(idx, start, end int) {
	start, end = a.trimSpan(start, end)
	a.chunks[idx].Text = a.text[start:end]
	a.chunks[idx].Start = start
	a.chunks[idx].End = end
}

// trimSpan shrinks [start, end) past surrounding whitespace so chunk
// text is always a trimmed substring of the input.
func (a *assembler) trimSpan(start, end int) (int, int) {
	span := a.text[start:end]
	start += len(span) - len(strings.TrimLeftFunc(span, unicode.IsSpace))
	span = a.text[start:end]
	end -= len(span) - len(strings.TrimRightFunc(span, unicode.IsSpace))
	return start, end
}

// children partitions [start, end) at the first level in levels[li:]
// that has boundaries there. Deeper levels are tried when a level is
// absent, so structure below a skipped level is not lost. Returns the
// offset of the first child and whether any level matched.
func (a *assembler) children(bs []boundary.Boundary, levels []grammar.MarkerDef, li int, start, end, parent int, coords Coords, part grammar.SourcePart, path []string) (int, bool) {
	for ; li < len(levels); li++ {
		within := boundary.Within(boundary.OfKind(bs, levels[li].Kind), start, end)
		if len(within) == 0 {
			continue
		}
		for i, cb := range within {
			unitEnd := end
			if i+1 < len(within) {
				unitEnd = within[i+1].Offset
			}
			a.unit(cb, unitEnd, bs, levels, li, parent, coords, part, path)
		}
		return within[0].Offset, true
	}
	return end, false
}

// unit emits the chunk for one structural element and recurses into the
// levels below it. The element's own text runs from its marker to its
// first child; with no children it keeps the whole span.
func (a *assembler) unit(b boundary.Boundary, end int, bs []boundary.Boundary, levels []grammar.MarkerDef, li int, parent int, coords Coords, part grammar.SourcePart, path []string) {
	coords = coords.with(b.Kind, b.Label)
	path = append(path[:len(path):len(path)], anchorPiece(b.Kind, b.Label))

	idx := a.emit(b.Kind, b.Label, b.Heading, "", parent, coords, part, path)
	first, found := a.children(bs, levels, li+1, b.End, end, idx, coords, part, path)
	if !found {
		first = end
	}
	a.setSpan(idx, b.Offset, first)
}

// emit appends a chunk and returns its arena index.
func (a *assembler) emit(kind grammar.Kind, label, heading, text string, parent int, coords Coords, part grammar.SourcePart, path []string) int {
	if path == nil {
		path = []string{anchorPiece(kind, label)}
	}
	title := anchorPiece(kind, label)
	if heading != "" {
		title += " " + heading
	}
	a.chunks = append(a.chunks, Chunk{
		Type:       kind,
		Title:      title,
		Anchor:     a.anchorFor(path),
		Text:       text,
		Parent:     parent,
		Coords:     coords,
		SourcePart: part,
	})
	return len(a.chunks) - 1
}

// emitSpan emits a chunk covering [start, end), skipping blank spans.
func (a *assembler) emitSpan(kind grammar.Kind, label, heading string, start, end, parent int, coords Coords, part grammar.SourcePart, path []string) {
	a.emitSpanAt(len(a.chunks), kind, label, heading, start, end, parent, coords, part, path)
}

// emitSpanAt is emitSpan with an explicit arena position, used when the
// span's chunk must precede children that were emitted first.
func (a *assembler) emitSpanAt(at int, kind grammar.Kind, label, heading string, start, end, parent int, coords Coords, part grammar.SourcePart, path []string) {
	if start >= end {
		return
	}
	start, end = a.trimSpan(start, end)
	if start >= end {
		return
	}
	idx := a.emit(kind, label, heading, a.text[start:end], parent, coords, part, path)
	a.chunks[idx].Start = start
	a.chunks[idx].End = end
	if idx == at {
		return
	}
	// Move the span chunk ahead of the children emitted before it and
	// reindex the parent links the shift invalidated.
	c := a.chunks[idx]
	copy(a.chunks[at+1:idx+1], a.chunks[at:idx])
	a.chunks[at] = c
	for i := at + 1; i <= idx; i++ {
		if a.chunks[i].Parent >= at && a.chunks[i].Parent < idx {
			a.chunks[i].Parent++
		}
	}
}

// locate scans [start, end) with defs and returns boundaries with
// offsets shifted into whole-document coordinates. Regions begin at a
// line start or at a line's trailing newline, so the line-anchored
// patterns behave identically on the substring.
func (a *assembler) locate(start, end int, defs []grammar.MarkerDef) []boundary.Boundary {
	if start >= end || len(defs) == 0 {
		return nil
	}
	bs, stats := boundary.Locate(a.text[start:end], defs, a.opts)
	a.stats.Merge(stats)
	for i := range bs {
		bs[i].Offset += start
		bs[i].End += start
	}
	return bs
}

// sections builds the outline from the heading-bearing chunks.
func (a *assembler) sections() []Section {
	var out []Section
	for i, c := range a.chunks {
		if !sectionKinds[c.Type] {
			continue
		}
		out = append(out, Section{
			Kind:       c.Type,
			Label:      sectionLabel(c),
			Title:      c.Title,
			Anchor:     c.Anchor,
			Start:      c.Start,
			End:        c.End,
			SourcePart: c.SourcePart,
			Depth:      a.depth(i),
			Chunk:      i,
		})
	}
	return out
}

func sectionLabel(c Chunk) string {
	switch c.Type {
	case grammar.KindChapter:
		return c.Coords.Chapter
	case grammar.KindPart:
		return c.Coords.Part
	case grammar.KindParagraph:
		return c.Coords.Paragraph
	case grammar.KindAttachment:
		return c.Coords.Attachment
	}
	return ""
}

// depth counts parent links up to the root.
func (a *assembler) depth(i int) int {
	d := 0
	for p := a.chunks[i].Parent; p >= 0; p = a.chunks[p].Parent {
		d++
	}
	return d
}
