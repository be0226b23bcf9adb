// Package parse is the pipeline facade: normalize, detect the family,
// classify the sub-style, extract the identity, assemble the chunk
// hierarchy, and collect cross-references. Callers that need only one
// stage use the stage packages directly; this package wires them in
// the canonical order.
package parse

import (
	"errors"
	"fmt"
	"strings"

	"github.com/danwirya/perundang/pkg/assemble"
	"github.com/danwirya/perundang/pkg/boundary"
	"github.com/danwirya/perundang/pkg/classify"
	"github.com/danwirya/perundang/pkg/grammar"
	"github.com/danwirya/perundang/pkg/identity"
	"github.com/danwirya/perundang/pkg/normalize"
	"github.com/danwirya/perundang/pkg/refs"
)

// ErrEmptyInput is returned when the input is empty or whitespace-only.
var ErrEmptyInput = errors.New("input is empty")

// Options controls the pipeline. The zero value auto-detects the family,
// classifies the sub-style, and uses the builtin grammars.
type Options struct {
	// Family forces the document family instead of header detection.
	Family grammar.Family

	// Style forces the structural sub-style instead of classification.
	Style grammar.SubStyle

	// GrammarDir is an optional directory of YAML grammar overlays.
	GrammarDir string

	// Registry supplies a pre-built grammar registry; it takes precedence
	// over GrammarDir. Useful for long-running processes that watch an
	// overlay directory.
	Registry *grammar.Registry

	// DocID overrides the anchor-citation prefix derived from the
	// extracted identity.
	DocID string
}

// Result is the full pipeline output for one document.
type Result struct {
	Family         grammar.Family     `json:"family"`
	FamilyDetected bool               `json:"family_detected"`
	Style          grammar.SubStyle   `json:"style"`
	Classification classify.Result    `json:"classification"`
	Identity       identity.Identity  `json:"identity"`
	DocID          string             `json:"doc_id"`
	Sections       []assemble.Section `json:"sections"`
	Chunks         []assemble.Chunk   `json:"chunks"`
	References     []refs.Reference   `json:"references"`
	Stats          boundary.Stats     `json:"-"`
}

// Parse runs the full pipeline on raw extracted text.
func Parse(raw string, opts Options) (*Result, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, ErrEmptyInput
	}

	reg := opts.Registry
	if reg == nil {
		if opts.GrammarDir != "" {
			var err error
			reg, err = grammar.NewRegistryWithDirectory(opts.GrammarDir)
			if err != nil {
				return nil, fmt.Errorf("loading grammar overlays: %w", err)
			}
		} else {
			reg = grammar.NewRegistry()
		}
	}

	family := opts.Family
	detected := false
	if family == "" {
		family, detected = grammar.DetectFamily(raw)
	} else {
		detected = true
	}

	// Classification and normalization tunables come from the family's
	// primary (enacted) grammar; the selected sub-style then picks the
	// grammar the assembler runs with.
	primary, ok := reg.Get(family, grammar.StyleEnacted)
	if !ok {
		return nil, fmt.Errorf("no grammar registered for family %q", family)
	}

	text := normalize.NormalizeWithOptions(raw, normalize.Options{
		MaxBlankLines: primary.MaxBlankLines,
	})
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}

	var cls classify.Result
	if opts.Style != "" {
		cls = classify.Forced(opts.Style)
	} else {
		cls = classify.Classify(text, primary.Styles)
	}

	g, ok := reg.Get(family, cls.Style)
	if !ok {
		// A family without the selected sub-style variant keeps its
		// primary grammar; classification stays reported as-is.
		g = primary
	}

	id := identity.Extract(text, family)
	docID := opts.DocID
	if docID == "" {
		docID = id.DocID()
	}

	asm := assemble.Assemble(text, g, docID)

	lists := make([][]refs.Reference, 0, len(asm.Chunks))
	for i := range asm.Chunks {
		lists = append(lists, asm.Chunks[i].References)
	}

	return &Result{
		Family:         family,
		FamilyDetected: detected,
		Style:          cls.Style,
		Classification: cls,
		Identity:       id,
		DocID:          docID,
		Sections:       asm.Sections,
		Chunks:         asm.Chunks,
		References:     refs.Union(lists...),
		Stats:          asm.Stats,
	}, nil
}
