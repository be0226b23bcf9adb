package grammar

import "strings"

// Default context-window lengths for the reference disambiguator.
// Empirically tuned against DJP corpus extractions; overridable per
// family through YAML overlays.
const (
	DefaultLeadWindow  = 50
	DefaultTrailWindow = 30
)

// enactedRefIndicators are the reference-indicating phrases for
// formally enacted texts. Matched case-insensitively against the
// whitespace-collapsed window of leading context plus the candidate
// marker itself, so a line-wrapped "sebagaimana dimaksud dalam\nPasal 5"
// still hits "dalam pasal".
func enactedRefIndicators() []string {
	return []string{
		"sebagaimana dimaksud",
		"dimaksud dalam",
		"dimaksud pada",
		"dalam pasal",
		"dan pasal",
		"atau pasal",
		"sampai dengan pasal",
		"ketentuan pasal",
		"juncto pasal",
		"jo. pasal",
		"serta pasal",
		"maupun pasal",
		"selain pasal",
		"dalam ayat",
		"dan ayat",
		"atau ayat",
		"dalam huruf",
	}
}

// enactedMarkers are the document-level one-shot boundaries shared by
// all formally enacted families, in state-machine order.
func enactedMarkers() []MarkerDef {
	return []MarkerDef{
		{Kind: KindConsidering, Pattern: `(?m)^[ \t]*Menimbang[ \t]*:`},
		{Kind: KindReferencing, Pattern: `(?m)^[ \t]*Mengingat[ \t]*:`},
		{Kind: KindEnacting, Pattern: `(?m)^[ \t]*MEMUTUSKAN[ \t]*:?[ \t]*$`},
		{Kind: KindClosing, Pattern: `(?m)^[ \t]*Ditetapkan di\b`},
		{Kind: KindAttachment, Pattern: `(?m)^[ \t]*LAMPIRAN\b(?:[ \t]+([IVXLCDM]+\b|[A-Z]\b))?`, LabelGroup: 1},
		{Kind: KindExplanatoryGeneral, Pattern: `(?m)^[ \t]*PENJELASAN[ \t]*$`},
	}
}

// enactedLevels is the body nesting order of enacted texts, highest
// level first: BAB, Bagian, Paragraf, Pasal, Ayat, huruf.
func enactedLevels() []MarkerDef {
	return []MarkerDef{
		{Kind: KindChapter, Pattern: `(?m)^[ \t]*BAB[ \t]+([IVXLCDM]+)\b`, LabelGroup: 1, TitleFollows: true},
		{Kind: KindPart, Pattern: `(?m)^[ \t]*Bagian[ \t]+(Ke[a-z]+)\b`, LabelGroup: 1, TitleFollows: true},
		{Kind: KindParagraph, Pattern: `(?m)^[ \t]*Paragraf[ \t]+(\d+)\b`, LabelGroup: 1, TitleFollows: true},
		{Kind: KindArticle, Pattern: `(?m)^[ \t]*Pasal[ \t]+(\d+[A-Z]?)\b`, LabelGroup: 1, Disambiguate: true},
		{Kind: KindClause, Pattern: `(?m)^[ \t]*\((\d+)\)[ \t]`, LabelGroup: 1},
		{Kind: KindSubClause, Pattern: `(?m)^[ \t]*([a-z])\.[ \t]`, LabelGroup: 1},
	}
}

// enactedExplanatory is the nesting order inside the PENJELASAN part,
// which mirrors the article structure of the body.
func enactedExplanatory() []MarkerDef {
	return []MarkerDef{
		{Kind: KindExplanatoryArticle, Pattern: `(?m)^[ \t]*Pasal[ \t]+(\d+[A-Z]?)[ \t]*$`, LabelGroup: 1, Disambiguate: true},
		{Kind: KindExplanatoryClause, Pattern: `(?m)^[ \t]*Ayat[ \t]+\((\d+)\)[ \t]*$`, LabelGroup: 1, Disambiguate: true},
	}
}

// attachmentLevels splits a lampiran into lettered or roman sections.
func attachmentLevels() []MarkerDef {
	return []MarkerDef{
		{Kind: KindAttachmentSection, Pattern: `(?m)^[ \t]*([IVXLCDM]+|[A-Z])\.[ \t]`, LabelGroup: 1},
	}
}

// enactedProfile scores the formal enacted sub-style: opening/closing
// formulas, article marker density, chapter structure.
func enactedProfile() StyleProfile {
	return StyleProfile{
		Style: StyleEnacted,
		Indicators: []Indicator{
			{Pattern: `(?m)^[ \t]*MEMUTUSKAN[ \t]*:?[ \t]*$`, Weight: 10, MaxCount: 1},
			{Pattern: `(?m)^[ \t]*Menimbang[ \t]*:`, Weight: 6, MaxCount: 1},
			{Pattern: `(?m)^[ \t]*Mengingat[ \t]*:`, Weight: 6, MaxCount: 1},
			{Pattern: `(?m)^[ \t]*Menetapkan[ \t]*:`, Weight: 5, MaxCount: 1},
			{Pattern: `(?m)^[ \t]*Pasal[ \t]+\d+`, Weight: 3, MaxCount: 10},
			{Pattern: `(?m)^[ \t]*BAB[ \t]+[IVXLCDM]+`, Weight: 4, MaxCount: 6},
			{Pattern: `(?m)^[ \t]*Ditetapkan di\b`, Weight: 4, MaxCount: 1},
		},
	}
}

// briefingProfile scores the slide/briefing sub-style: known briefing
// headings, bullet density, short all-caps lines that are not
// regulation boilerplate.
func briefingProfile() StyleProfile {
	return StyleProfile{
		Style: StyleBriefing,
		Indicators: []Indicator{
			{Pattern: `(?m)^[ \t]*(?:LATAR BELAKANG|POKOK-POKOK|POKOK PENGATURAN|AGENDA|OUTLINE|OVERVIEW|STRUKTUR|RINGKASAN|MATERI|SOSIALISASI)\b`, Weight: 5, MaxCount: 6},
			{Pattern: `(?m)^[ \t]*[-•●▪][ \t]`, Weight: 2, MaxCount: 10},
			{Pattern: `(?m)^[ \t]*(?:Slide|Halaman)[ \t]+\d+`, Weight: 3, MaxCount: 10},
			{Pattern: `(?m)^[A-Z][A-Z0-9 /&,\-]{2,40}$`, Weight: 1, MaxCount: 15},
		},
	}
}

// briefingLevels is the heading-only flat structure applied to
// slide/briefing material: all-caps headings over bullet or numbered
// items. No disambiguation is needed; nothing here doubles as prose.
func briefingLevels() []MarkerDef {
	return []MarkerDef{
		{Kind: KindHeading, Pattern: `(?m)^[ \t]*([A-Z][A-Z0-9 /&,\-]{2,60})[ \t]*$`, LabelGroup: 1},
		{Kind: KindMemoItem, Pattern: `(?m)^[ \t]*(?:(\d+)\.|[-•●▪])[ \t]`, LabelGroup: 1},
	}
}

func newEnactedGrammar(family Family, name string) *Grammar {
	return &Grammar{
		Family:        family,
		SubStyle:      StyleEnacted,
		Name:          name,
		Markers:       enactedMarkers(),
		Levels:        enactedLevels(),
		Explanatory:   enactedExplanatory(),
		Attachment:    attachmentLevels(),
		RefIndicators: enactedRefIndicators(),
		LeadWindow:    DefaultLeadWindow,
		TrailWindow:   DefaultTrailWindow,
		MaxBlankLines: 2,
	}
}

func newBriefingGrammar(family Family, name string) *Grammar {
	return &Grammar{
		Family:        family,
		SubStyle:      StyleBriefing,
		Name:          name,
		Markers:       []MarkerDef{},
		Levels:        briefingLevels(),
		RefIndicators: enactedRefIndicators(),
		LeadWindow:    DefaultLeadWindow,
		TrailWindow:   DefaultTrailWindow,
		MaxBlankLines: 1,
	}
}

// newCircularGrammar covers Surat Edaran: lettered top sections
// (A. Umum, B. Maksud dan Tujuan, ...) over numbered items and lettered
// sub-items, with the usual closing formula and attachments.
func newCircularGrammar() *Grammar {
	return &Grammar{
		Family:   FamilyCircular,
		SubStyle: StyleEnacted,
		Name:     "Surat Edaran Direktur Jenderal Pajak",
		Markers: []MarkerDef{
			{Kind: KindClosing, Pattern: `(?m)^[ \t]*Ditetapkan di\b`},
			{Kind: KindAttachment, Pattern: `(?m)^[ \t]*LAMPIRAN\b(?:[ \t]+([IVXLCDM]+\b|[A-Z]\b))?`, LabelGroup: 1},
		},
		Levels: []MarkerDef{
			{Kind: KindHeading, Pattern: `(?m)^[ \t]*([A-Z])\.[ \t]`, LabelGroup: 1},
			{Kind: KindMemoItem, Pattern: `(?m)^[ \t]*(\d+)\.[ \t]`, LabelGroup: 1},
			{Kind: KindMemoSubItem, Pattern: `(?m)^[ \t]*([a-z])\.[ \t]`, LabelGroup: 1},
		},
		Attachment:    attachmentLevels(),
		RefIndicators: enactedRefIndicators(),
		LeadWindow:    DefaultLeadWindow,
		TrailWindow:   DefaultTrailWindow,
		MaxBlankLines: 1,
	}
}

// newMemoGrammar covers Nota Dinas: numbered memo items with lettered
// sub-items, no recitals or enacting formula.
func newMemoGrammar() *Grammar {
	return &Grammar{
		Family:   FamilyMemo,
		SubStyle: StyleEnacted,
		Name:     "Nota Dinas",
		Markers:  []MarkerDef{},
		Levels: []MarkerDef{
			{Kind: KindMemoItem, Pattern: `(?m)^[ \t]*(\d+)\.[ \t]`, LabelGroup: 1},
			{Kind: KindMemoSubItem, Pattern: `(?m)^[ \t]*([a-z])\.[ \t]`, LabelGroup: 1},
		},
		RefIndicators: enactedRefIndicators(),
		LeadWindow:    DefaultLeadWindow,
		TrailWindow:   DefaultTrailWindow,
		MaxBlankLines: 1,
	}
}

// Builtin returns the builtin grammar set, compiled. Families whose
// documents arrive both as enacted text and as briefing material carry
// classifier profiles on the enacted grammar and a separate briefing
// grammar variant.
func Builtin() []*Grammar {
	uu := newEnactedGrammar(FamilyAct, "Undang-Undang / Perpu")
	pp := newEnactedGrammar(FamilyGovernment, "Peraturan Pemerintah / Peraturan Presiden")

	pmk := newEnactedGrammar(FamilyMinisterial, "Peraturan Menteri Keuangan")
	pmk.Styles = []StyleProfile{enactedProfile(), briefingProfile()}
	pmkBriefing := newBriefingGrammar(FamilyMinisterial, "Peraturan Menteri Keuangan (materi sosialisasi)")

	perdjp := newEnactedGrammar(FamilyDirectorate, "Peraturan Direktur Jenderal Pajak")
	perdjp.Styles = []StyleProfile{enactedProfile(), briefingProfile()}
	perdjpBriefing := newBriefingGrammar(FamilyDirectorate, "Peraturan Direktur Jenderal Pajak (materi sosialisasi)")

	se := newCircularGrammar()
	se.Styles = []StyleProfile{enactedProfile(), briefingProfile()}
	seBriefing := newBriefingGrammar(FamilyCircular, "Surat Edaran (materi sosialisasi)")

	nd := newMemoGrammar()

	all := []*Grammar{uu, pp, pmk, pmkBriefing, perdjp, perdjpBriefing, se, seBriefing, nd}
	for _, g := range all {
		// Builtin patterns are constants; a compile failure here is a
		// programming error, not an input condition.
		if err := g.Compile(); err != nil {
			panic(err)
		}
	}
	return all
}

// familyProbes maps header-region substrings to families, most specific
// first. Probed against the uppercased first ~1200 characters.
var familyProbes = []struct {
	needle string
	family Family
}{
	{"NOTA DINAS", FamilyMemo},
	{"SURAT EDARAN", FamilyCircular},
	{"PERATURAN DIREKTUR JENDERAL", FamilyDirectorate},
	{"/PJ/", FamilyDirectorate},
	{"PERATURAN MENTERI", FamilyMinisterial},
	{"/PMK.", FamilyMinisterial},
	{"PERATURAN PEMERINTAH", FamilyGovernment},
	{"PERATURAN PRESIDEN", FamilyGovernment},
	{"UNDANG-UNDANG", FamilyAct},
}

// DetectFamily probes the header region for family keywords. The second
// return is false when no probe matched; callers fall back to the act
// grammar, whose structure is the most general.
func DetectFamily(text string) (Family, bool) {
	region := text
	if len(region) > 1200 {
		region = region[:1200]
	}
	region = strings.ToUpper(region)
	for _, probe := range familyProbes {
		if strings.Contains(region, probe.needle) {
			return probe.family, true
		}
	}
	return FamilyAct, false
}
