package grammar

import (
	"fmt"
	"regexp"
)

// Family identifies a legal-document family with its own grammar.
type Family string

const (
	FamilyAct         Family = "uu"     // Undang-Undang / Perpu
	FamilyGovernment  Family = "pp"     // Peraturan Pemerintah / Perpres
	FamilyMinisterial Family = "pmk"    // Peraturan Menteri Keuangan
	FamilyDirectorate Family = "perdjp" // Peraturan Direktur Jenderal Pajak
	FamilyCircular    Family = "se"     // Surat Edaran
	FamilyMemo        Family = "nd"     // Nota Dinas / internal memo
)

// SubStyle distinguishes structural sub-styles within one family.
type SubStyle string

const (
	StyleEnacted  SubStyle = "enacted"  // formal enacted text with article machinery
	StyleBriefing SubStyle = "briefing" // slide/briefing material, heading-only structure
)

// MarkerDef defines one boundary-kind detector. Patterns are anchored to
// line start (allowing leading whitespace) so mid-sentence occurrences
// never match directly; wrapped-line references are handled by the
// disambiguator instead.
type MarkerDef struct {
	Kind    Kind   `yaml:"kind"`
	Pattern string `yaml:"pattern"`

	// LabelGroup is the capture group holding the marker label
	// (roman numeral, article number, clause letter); 0 means none.
	LabelGroup int `yaml:"label_group,omitempty"`

	// TitleFollows indicates the heading text is on the next non-empty line.
	TitleFollows bool `yaml:"title_follows,omitempty"`

	// Disambiguate routes candidates through the reference-vs-header
	// heuristic before acceptance.
	Disambiguate bool `yaml:"disambiguate,omitempty"`

	compiled *regexp.Regexp
}

// Compiled returns the compiled pattern, or nil before Compile.
func (m *MarkerDef) Compiled() *regexp.Regexp { return m.compiled }

// Indicator is one weighted classification signal. The score
// contribution is Weight times the match count, capped at MaxCount
// (0 means count at most once).
type Indicator struct {
	Pattern  string `yaml:"pattern"`
	Weight   int    `yaml:"weight"`
	MaxCount int    `yaml:"max_count,omitempty"`

	compiled *regexp.Regexp
}

// Compiled returns the compiled indicator pattern, or nil before Compile.
func (i *Indicator) Compiled() *regexp.Regexp { return i.compiled }

// StyleProfile holds the indicator set for one sub-style.
type StyleProfile struct {
	Style      SubStyle    `yaml:"style"`
	Indicators []Indicator `yaml:"indicators"`
}

// Grammar is the per-family parameterization of the engine.
type Grammar struct {
	Family   Family   `yaml:"family"`
	SubStyle SubStyle `yaml:"style"`
	Name     string   `yaml:"name"`

	// Markers are document-level one-shot boundaries (recitals, enacting
	// formula, closing formula, attachments, explanatory header) in the
	// forward order of the document state machine.
	Markers []MarkerDef `yaml:"markers"`

	// Levels are the nesting levels of the enacting body, highest first.
	Levels []MarkerDef `yaml:"levels"`

	// Explanatory are the nesting levels inside the explanatory-notes
	// part, highest first. Empty for families without a penjelasan.
	Explanatory []MarkerDef `yaml:"explanatory,omitempty"`

	// Attachment are the nesting levels inside attachments.
	Attachment []MarkerDef `yaml:"attachment,omitempty"`

	// RefIndicators are the reference-indicating phrases (lowercase)
	// checked in the leading context window of a disambiguated candidate.
	RefIndicators []string `yaml:"ref_indicators"`

	// LeadWindow and TrailWindow are the context-window lengths, in
	// bytes, inspected before and after a candidate match. Empirically
	// tuned; treated as configuration, overridable per family.
	LeadWindow  int `yaml:"lead_window"`
	TrailWindow int `yaml:"trail_window"`

	// MaxBlankLines is the blank-run cap the normalizer applies for this
	// family (verbose enacted texts keep 2, terse memos keep 1).
	MaxBlankLines int `yaml:"max_blank_lines"`

	// Styles holds the classifier profiles when the family has more than
	// one sub-style; nil for single-style families.
	Styles []StyleProfile `yaml:"styles,omitempty"`

	compiled bool
}

// ID returns the registry key for the grammar ("family/style").
func (g *Grammar) ID() string {
	return string(g.Family) + "/" + string(g.SubStyle)
}

// Compile compiles every pattern in the grammar. Returns the first
// compilation error encountered.
func (g *Grammar) Compile() error {
	groups := []struct {
		name string
		defs []MarkerDef
	}{
		{"markers", g.Markers},
		{"levels", g.Levels},
		{"explanatory", g.Explanatory},
		{"attachment", g.Attachment},
	}
	for _, grp := range groups {
		for i := range grp.defs {
			def := &grp.defs[i]
			compiled, err := regexp.Compile(def.Pattern)
			if err != nil {
				return fmt.Errorf("compiling %s %s pattern %q: %w", grp.name, def.Kind, def.Pattern, err)
			}
			def.compiled = compiled
		}
	}
	for si := range g.Styles {
		for ii := range g.Styles[si].Indicators {
			ind := &g.Styles[si].Indicators[ii]
			compiled, err := regexp.Compile(ind.Pattern)
			if err != nil {
				return fmt.Errorf("compiling %s indicator %q: %w", g.Styles[si].Style, ind.Pattern, err)
			}
			ind.compiled = compiled
		}
	}
	g.compiled = true
	return nil
}

// IsCompiled reports whether Compile has run successfully.
func (g *Grammar) IsCompiled() bool { return g.compiled }

// Clone returns a deep copy of the grammar. The registry hands out live
// pointers that parses read lock-free, so a published grammar is never
// mutated; overlays apply to a clone that then replaces the entry.
func (g *Grammar) Clone() *Grammar {
	c := *g
	c.Markers = append([]MarkerDef(nil), g.Markers...)
	c.Levels = append([]MarkerDef(nil), g.Levels...)
	c.Explanatory = append([]MarkerDef(nil), g.Explanatory...)
	c.Attachment = append([]MarkerDef(nil), g.Attachment...)
	c.RefIndicators = append([]string(nil), g.RefIndicators...)
	if g.Styles != nil {
		c.Styles = make([]StyleProfile, len(g.Styles))
		for i, sp := range g.Styles {
			sp.Indicators = append([]Indicator(nil), sp.Indicators...)
			c.Styles[i] = sp
		}
	}
	return &c
}

// Validate checks the grammar for required fields and sane tunables.
func (g *Grammar) Validate() error {
	if g.Family == "" {
		return fmt.Errorf("grammar family is required")
	}
	if g.SubStyle == "" {
		return fmt.Errorf("grammar style is required")
	}
	if len(g.Levels) == 0 && len(g.Markers) == 0 {
		return fmt.Errorf("grammar %s defines no markers and no levels", g.ID())
	}
	if g.LeadWindow < 0 || g.TrailWindow < 0 {
		return fmt.Errorf("grammar %s has negative context window", g.ID())
	}
	for _, def := range g.Levels {
		if def.Kind == "" || def.Pattern == "" {
			return fmt.Errorf("grammar %s has level with empty kind or pattern", g.ID())
		}
	}
	return nil
}

// LevelIndex returns the position of a kind in the body nesting order,
// or -1 if the kind is not a body level.
func (g *Grammar) LevelIndex(kind Kind) int {
	for i, def := range g.Levels {
		if def.Kind == kind {
			return i
		}
	}
	return -1
}

// Marker returns the marker definition for a kind, or nil.
func (g *Grammar) Marker(kind Kind) *MarkerDef {
	for i := range g.Markers {
		if g.Markers[i].Kind == kind {
			return &g.Markers[i]
		}
	}
	return nil
}

// Overlay carries tunable overrides loaded from a YAML file. Only the
// fields present in the file are applied; patterns and level structure
// stay builtin.
type Overlay struct {
	Family        Family         `yaml:"family"`
	Style         SubStyle       `yaml:"style"`
	RefIndicators []string       `yaml:"ref_indicators,omitempty"`
	LeadWindow    *int           `yaml:"lead_window,omitempty"`
	TrailWindow   *int           `yaml:"trail_window,omitempty"`
	MaxBlankLines *int           `yaml:"max_blank_lines,omitempty"`
	Styles        []StyleProfile `yaml:"styles,omitempty"`
}

// Apply copies the overlay's set fields onto the grammar and recompiles
// any replaced indicator profiles.
func (o *Overlay) Apply(g *Grammar) error {
	if len(o.RefIndicators) > 0 {
		g.RefIndicators = o.RefIndicators
	}
	if o.LeadWindow != nil {
		g.LeadWindow = *o.LeadWindow
	}
	if o.TrailWindow != nil {
		g.TrailWindow = *o.TrailWindow
	}
	if o.MaxBlankLines != nil {
		g.MaxBlankLines = *o.MaxBlankLines
	}
	if len(o.Styles) > 0 {
		g.Styles = o.Styles
	}
	return g.Compile()
}
