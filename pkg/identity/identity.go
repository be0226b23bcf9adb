// Package identity extracts document identity (registration number,
// year, subject line, enactment and promulgation dates) from the header
// region of a statutory document. Every probe degrades to "not found";
// extraction never fails.
package identity

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/danwirya/perundang/pkg/grammar"
)

// headerRegion is how much of the document the number/year probes see.
const headerRegion = 1000

// subjectMaxLen caps the normalized subject line.
const subjectMaxLen = 300

// Identity holds the extracted document identity. Zero values mean the
// field was not found.
type Identity struct {
	Family grammar.Family `json:"family,omitempty"`

	// Nomor is the registration number as printed, e.g. "7",
	// "66/PMK.03/2023", "PER-16/PJ/2016", "SE-62/PJ/2013".
	Nomor string `json:"nomor,omitempty"`
	Tahun int    `json:"tahun,omitempty"`

	// Tentang is the subject line, single-spaced and length-capped.
	Tentang string `json:"tentang,omitempty"`

	TanggalDitetapkan  string `json:"tanggal_ditetapkan,omitempty"`
	TanggalDiundangkan string `json:"tanggal_diundangkan,omitempty"`
}

// numberProbe pairs a registration-number pattern with the capture
// groups for number and (optionally) year.
type numberProbe struct {
	pattern   *regexp.Regexp
	nomor     int
	tahun     int // 0 when the pattern carries no year
	families  []grammar.Family
	anyFamily bool
}

var numberProbes = []numberProbe{
	// "NOMOR 66/PMK.03/2023" (full code is the number; year trails)
	{pattern: regexp.MustCompile(`(?i)NOMOR[ \t]+(\d+[ \t]*/[ \t]*PMK\.\d+[ \t]*/[ \t]*(\d{4}))`), nomor: 1, tahun: 2,
		families: []grammar.Family{grammar.FamilyMinisterial}},
	// "NOMOR PER-16/PJ/2016"
	{pattern: regexp.MustCompile(`(?i)NOMOR[ \t]+(PER[- ]?\d+[ \t]*/PJ(?:\.\d+)?[ \t]*/[ \t]*(\d{4}))`), nomor: 1, tahun: 2,
		families: []grammar.Family{grammar.FamilyDirectorate}},
	// "NOMOR SE-62/PJ/2013"
	{pattern: regexp.MustCompile(`(?i)NOMOR[ \t]+(SE[- ]?\d+[ \t]*/PJ(?:\.\d+)?[ \t]*/[ \t]*(\d{4}))`), nomor: 1, tahun: 2,
		families: []grammar.Family{grammar.FamilyCircular}},
	// "NOMOR ND-123/PJ.01/2022"
	{pattern: regexp.MustCompile(`(?i)NOMOR[ \t]+(ND[- ]?\d+[ \t]*/[A-Z0-9.]+[ \t]*/[ \t]*(\d{4}))`), nomor: 1, tahun: 2,
		families: []grammar.Family{grammar.FamilyMemo}},
	// "NOMOR 7 TAHUN 2021" (acts and government regulations; generic fallback)
	{pattern: regexp.MustCompile(`(?i)NOMOR[ \t]+(\d+[A-Z]?)[ \t]+TAHUN[ \t]+(\d{4})`), nomor: 1, tahun: 2, anyFamily: true},
	// "NOMOR 18 TAHUN 2021" split across lines or any remaining "NOMOR n"
	{pattern: regexp.MustCompile(`(?i)NOMOR[ \t]*:?[ \t]+([A-Z0-9./-]+)`), nomor: 1, anyFamily: true},
}

// yearFallbacks recover the year when the matched number pattern did not
// carry one, in priority order.
var yearFallbacks = []*regexp.Regexp{
	regexp.MustCompile(`(?i)TAHUN[ \t]+(\d{4})`),
	regexp.MustCompile(`/[ \t]*(\d{4})\b`),
	regexp.MustCompile(`(?i)pada[ \t]+tanggal[ \t]+\d{1,2}[ \t]+[A-Za-z]+[ \t]+(\d{4})`),
}

var (
	// subjectPattern captures the TENTANG block, which may span lines,
	// ending at a blank line or the first structural marker.
	subjectPattern = regexp.MustCompile(`(?s)(?m)^[ \t]*TENTANG[ \t]*\n(.*?)(?:\n[ \t]*\n|\n[ \t]*(?:DENGAN RAHMAT|Menimbang|MEMUTUSKAN))`)

	enactedDatePattern     = regexp.MustCompile(`(?s)Ditetapkan di[^\n]*\n(?:[^\n]*\n)?[ \t]*pada tanggal[ \t]+([0-9]{1,2}[ \t]+[A-Za-z]+[ \t]+[0-9]{4})`)
	promulgatedDatePattern = regexp.MustCompile(`(?s)Diundangkan di[^\n]*\n(?:[^\n]*\n)?[ \t]*pada tanggal[ \t]+([0-9]{1,2}[ \t]+[A-Za-z]+[ \t]+[0-9]{4})`)

	whitespaceRun = regexp.MustCompile(`\s+`)
)

// Extract pulls the document identity from cleaned text. The family
// steers which number probes run first; an unknown family runs the
// generic probes only.
func Extract(text string, family grammar.Family) Identity {
	id := Identity{Family: family}

	header := text
	if len(header) > headerRegion {
		header = header[:headerRegion]
	}

	for _, probe := range numberProbes {
		if !probe.anyFamily && !probeApplies(probe, family) {
			continue
		}
		m := probe.pattern.FindStringSubmatch(header)
		if m == nil {
			continue
		}
		id.Nomor = strings.Join(strings.Fields(m[probe.nomor]), "")
		if probe.tahun > 0 {
			id.Tahun, _ = strconv.Atoi(m[probe.tahun])
		}
		break
	}

	if id.Tahun == 0 {
		for _, pat := range yearFallbacks {
			if m := pat.FindStringSubmatch(header); m != nil {
				id.Tahun, _ = strconv.Atoi(m[1])
				break
			}
		}
	}

	if m := subjectPattern.FindStringSubmatch(text); m != nil {
		subject := whitespaceRun.ReplaceAllString(strings.TrimSpace(m[1]), " ")
		if len(subject) > subjectMaxLen {
			subject = subject[:subjectMaxLen]
		}
		id.Tentang = subject
	}

	if m := enactedDatePattern.FindStringSubmatch(text); m != nil {
		id.TanggalDitetapkan = whitespaceRun.ReplaceAllString(m[1], " ")
	}
	if m := promulgatedDatePattern.FindStringSubmatch(text); m != nil {
		id.TanggalDiundangkan = whitespaceRun.ReplaceAllString(m[1], " ")
	}

	return id
}

func probeApplies(probe numberProbe, family grammar.Family) bool {
	for _, f := range probe.families {
		if f == family {
			return true
		}
	}
	return false
}

// familyAbbrev maps families to the citation prefix used in anchors.
var familyAbbrev = map[grammar.Family]string{
	grammar.FamilyAct:         "UU",
	grammar.FamilyGovernment:  "PP",
	grammar.FamilyMinisterial: "PMK",
	grammar.FamilyDirectorate: "PER",
	grammar.FamilyCircular:    "SE",
	grammar.FamilyMemo:        "ND",
}

// DocID derives the anchor-citation prefix: "UU 7/2021",
// "PMK 66/PMK.03/2023", or "Dokumen" when nothing was extracted.
func (id Identity) DocID() string {
	abbrev := familyAbbrev[id.Family]
	switch {
	case id.Nomor != "" && strings.ContainsAny(id.Nomor, "/-"):
		// Coded numbers (PMK/PER/SE formats) already identify the issuer.
		if abbrev != "" && !strings.HasPrefix(strings.ToUpper(id.Nomor), abbrev) {
			return abbrev + " " + id.Nomor
		}
		return id.Nomor
	case id.Nomor != "" && id.Tahun > 0:
		if abbrev == "" {
			abbrev = "Dokumen"
		}
		return abbrev + " " + id.Nomor + "/" + strconv.Itoa(id.Tahun)
	case id.Nomor != "":
		if abbrev == "" {
			abbrev = "Dokumen"
		}
		return abbrev + " " + id.Nomor
	default:
		return "Dokumen"
	}
}
