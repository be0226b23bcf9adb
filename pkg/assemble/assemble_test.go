package assemble

import (
	"strings"
	"testing"

	"github.com/danwirya/perundang/pkg/grammar"
)

func getGrammar(t *testing.T, family grammar.Family, style grammar.SubStyle) *grammar.Grammar {
	t.Helper()
	g, ok := grammar.NewRegistry().Get(family, style)
	if !ok {
		t.Fatalf("grammar %s/%s not registered", family, style)
	}
	return g
}

const actText = `UNDANG-UNDANG REPUBLIK INDONESIA
NOMOR 7 TAHUN 2021
TENTANG
HARMONISASI PERATURAN PERPAJAKAN

Menimbang : a. bahwa perlu dilakukan penyesuaian kebijakan;

Mengingat : 1. Pasal 5 ayat (1) Undang-Undang Dasar;

MEMUTUSKAN:
Menetapkan : UNDANG-UNDANG TENTANG HARMONISASI PERATURAN PERPAJAKAN.

BAB I
KETENTUAN UMUM
Pasal 1
Dalam Undang-Undang ini yang dimaksud dengan Pajak adalah kontribusi wajib kepada negara.
Pasal 2
Setiap ketentuan dilaksanakan berdasarkan asas kepastian hukum.
BAB II
NOMOR POKOK WAJIB PAJAK
Pasal 3
Setiap Wajib Pajak mendaftarkan diri untuk memperoleh NPWP.
Pasal 4
Kewajiban sebagaimana dimaksud dalam
Pasal 3 berlaku juga bagi wanita kawin.
Ditetapkan di Jakarta
pada tanggal 29 Oktober 2021
`

func assembleAct(t *testing.T) Result {
	t.Helper()
	return Assemble(actText, getGrammar(t, grammar.FamilyAct, grammar.StyleEnacted), "UU 7/2021")
}

func TestAssemble_DocumentFlow(t *testing.T) {
	res := assembleAct(t)

	wantKinds := []grammar.Kind{
		grammar.KindPreamble,
		grammar.KindConsidering,
		grammar.KindReferencing,
		grammar.KindEnacting,
		grammar.KindChapter,
		grammar.KindArticle,
		grammar.KindArticle,
		grammar.KindChapter,
		grammar.KindArticle,
		grammar.KindArticle,
		grammar.KindClosing,
	}
	if len(res.Chunks) != len(wantKinds) {
		for _, c := range res.Chunks {
			t.Logf("chunk %d: %s %q parent=%d", c.Order, c.Type, c.Anchor, c.Parent)
		}
		t.Fatalf("got %d chunks, want %d", len(res.Chunks), len(wantKinds))
	}
	for i, want := range wantKinds {
		if res.Chunks[i].Type != want {
			t.Errorf("chunk %d kind = %s, want %s", i, res.Chunks[i].Type, want)
		}
	}
}

func TestAssemble_ReferenceNotSplit(t *testing.T) {
	// The wrapped citation of Pasal 3 inside Pasal 4 must stay inside
	// the Pasal 4 chunk instead of opening a new article.
	res := assembleAct(t)

	var four *Chunk
	for i := range res.Chunks {
		if res.Chunks[i].Type == grammar.KindArticle && res.Chunks[i].Coords.Article == "4" {
			four = &res.Chunks[i]
		}
	}
	if four == nil {
		t.Fatal("Pasal 4 chunk not found")
	}
	if !strings.Contains(four.Text, "Pasal 3 berlaku juga") {
		t.Errorf("citation text missing from Pasal 4 chunk:\n%s", four.Text)
	}
	if res.Stats.Rejected[grammar.KindArticle] == 0 {
		t.Error("reference rejection not counted")
	}
}

func TestAssemble_OrderAndParents(t *testing.T) {
	res := assembleAct(t)

	for i, c := range res.Chunks {
		if c.Order != i {
			t.Errorf("chunk %d has Order %d", i, c.Order)
		}
		if c.Parent >= i {
			t.Errorf("chunk %d has forward parent link %d", i, c.Parent)
		}
		if c.Parent < -1 {
			t.Errorf("chunk %d has parent %d", i, c.Parent)
		}
	}

	// Articles 1 and 2 hang off BAB I, 3 and 4 off BAB II.
	chapterOf := func(article string) grammar.Kind {
		for _, c := range res.Chunks {
			if c.Type == grammar.KindArticle && c.Coords.Article == article {
				return res.Chunks[c.Parent].Type
			}
		}
		return ""
	}
	for _, article := range []string{"1", "2", "3", "4"} {
		if got := chapterOf(article); got != grammar.KindChapter {
			t.Errorf("Pasal %s parent kind = %s, want chapter", article, got)
		}
	}
}

func TestAssemble_Coords(t *testing.T) {
	res := assembleAct(t)

	for _, c := range res.Chunks {
		if c.Type != grammar.KindArticle {
			continue
		}
		wantChapter := "I"
		if c.Coords.Article == "3" || c.Coords.Article == "4" {
			wantChapter = "II"
		}
		if c.Coords.Chapter != wantChapter {
			t.Errorf("Pasal %s chapter coord = %q, want %q", c.Coords.Article, c.Coords.Chapter, wantChapter)
		}
	}
}

func TestAssemble_Anchors(t *testing.T) {
	res := assembleAct(t)

	seen := make(map[string]bool)
	for _, c := range res.Chunks {
		if c.Anchor == "" {
			t.Errorf("chunk %d has empty anchor", c.Order)
		}
		if !strings.HasPrefix(c.Anchor, "UU 7/2021") {
			t.Errorf("anchor %q lacks doc prefix", c.Anchor)
		}
		if seen[c.Anchor] {
			t.Errorf("duplicate anchor %q", c.Anchor)
		}
		seen[c.Anchor] = true
	}

	found := false
	for _, c := range res.Chunks {
		if c.Anchor == "UU 7/2021 - BAB II - Pasal 3" {
			found = true
		}
	}
	if !found {
		t.Error("anchor \"UU 7/2021 - BAB II - Pasal 3\" not emitted")
	}
}

func TestAssemble_Coverage(t *testing.T) {
	res := assembleAct(t)

	for _, line := range strings.Split(actText, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		covered := false
		for _, c := range res.Chunks {
			if strings.Contains(c.Text, line) {
				covered = true
				break
			}
		}
		if !covered {
			t.Errorf("line %q not covered by any chunk", line)
		}
	}
}

func TestAssemble_SpansDisjointAndCover(t *testing.T) {
	res := assembleAct(t)

	spans := make([]Chunk, len(res.Chunks))
	copy(spans, res.Chunks)
	for i := 1; i < len(spans); i++ {
		for j := i; j > 0 && spans[j].Start < spans[j-1].Start; j-- {
			spans[j], spans[j-1] = spans[j-1], spans[j]
		}
	}

	prev := 0
	for _, c := range spans {
		if actText[c.Start:c.End] != c.Text {
			t.Errorf("chunk %q text does not match its span", c.Anchor)
		}
		if c.Start < prev {
			t.Errorf("chunk %q overlaps the previous span", c.Anchor)
		}
		if gap := strings.TrimSpace(actText[prev:c.Start]); gap != "" {
			t.Errorf("uncovered text %q before chunk %q", gap, c.Anchor)
		}
		prev = c.End
	}
	if gap := strings.TrimSpace(actText[prev:]); gap != "" {
		t.Errorf("uncovered text %q after last chunk", gap)
	}
}

func TestAssemble_TokenEstimate(t *testing.T) {
	res := assembleAct(t)
	for _, c := range res.Chunks {
		want := (len([]rune(c.Text)) + 3) / 4
		if c.TokenEstimate != want {
			t.Errorf("chunk %q token estimate = %d, want %d", c.Anchor, c.TokenEstimate, want)
		}
	}
}

func TestAssemble_Sections(t *testing.T) {
	res := assembleAct(t)

	if len(res.Sections) != 2 {
		t.Fatalf("got %d sections, want 2 chapters: %+v", len(res.Sections), res.Sections)
	}
	if res.Sections[0].Title != "BAB I KETENTUAN UMUM" {
		t.Errorf("section title = %q", res.Sections[0].Title)
	}
	if res.Sections[1].Label != "II" {
		t.Errorf("section label = %q, want \"II\"", res.Sections[1].Label)
	}
	for _, s := range res.Sections {
		if res.Chunks[s.Chunk].Anchor != s.Anchor {
			t.Errorf("section %q does not point at its chunk", s.Anchor)
		}
	}
}

func TestAssemble_FallbackChunk(t *testing.T) {
	text := "Catatan rapat internal.\nTidak ada struktur formal di sini."
	res := Assemble(text, getGrammar(t, grammar.FamilyAct, grammar.StyleEnacted), "Dokumen")

	if len(res.Chunks) != 1 {
		t.Fatalf("got %d chunks, want exactly 1 fallback: %+v", len(res.Chunks), res.Chunks)
	}
	c := res.Chunks[0]
	if c.Type != grammar.KindContent {
		t.Errorf("fallback kind = %s, want content", c.Type)
	}
	if c.Text != text {
		t.Errorf("fallback text = %q, want full input", c.Text)
	}
	if c.Parent != -1 {
		t.Errorf("fallback parent = %d, want -1", c.Parent)
	}
}

func TestAssemble_BlankInput(t *testing.T) {
	for _, text := range []string{"", "   \n\n\t\n"} {
		res := Assemble(text, getGrammar(t, grammar.FamilyAct, grammar.StyleEnacted), "Dokumen")
		if len(res.Chunks) != 0 {
			t.Errorf("Assemble(%q) = %d chunks, want 0", text, len(res.Chunks))
		}
	}
}

func TestAssemble_LevelSkipping(t *testing.T) {
	// No BAB at all: articles must still come out, rooted at the top.
	text := "PERATURAN\n\nPasal 1\nIsi pertama.\nPasal 2\nIsi kedua."
	res := Assemble(text, getGrammar(t, grammar.FamilyAct, grammar.StyleEnacted), "Dokumen")

	articles := 0
	for _, c := range res.Chunks {
		if c.Type == grammar.KindArticle {
			articles++
			if c.Parent != -1 {
				t.Errorf("article parent = %d, want -1 without chapters", c.Parent)
			}
			if c.Coords.Chapter != "" {
				t.Errorf("article chapter coord = %q, want empty", c.Coords.Chapter)
			}
		}
	}
	if articles != 2 {
		t.Errorf("got %d article chunks, want 2", articles)
	}
}

func TestAssemble_ClauseNesting(t *testing.T) {
	text := "Pasal 1\n(1) Ayat pertama berisi ketentuan umum.\n(2) Ayat kedua berisi pengecualian:\na. huruf pertama;\nb. huruf kedua."
	res := Assemble(text, getGrammar(t, grammar.FamilyAct, grammar.StyleEnacted), "Dokumen")

	var clause2 *Chunk
	for i := range res.Chunks {
		c := &res.Chunks[i]
		if c.Type == grammar.KindClause && c.Coords.Clause == "2" {
			clause2 = c
		}
	}
	if clause2 == nil {
		t.Fatalf("Ayat (2) chunk not found: %+v", res.Chunks)
	}
	if clause2.Coords.Article != "1" {
		t.Errorf("Ayat (2) article coord = %q, want \"1\"", clause2.Coords.Article)
	}
	if !strings.HasSuffix(clause2.Anchor, "Pasal 1 - Ayat (2)") {
		t.Errorf("Ayat (2) anchor = %q", clause2.Anchor)
	}

	letters := 0
	for _, c := range res.Chunks {
		if c.Type == grammar.KindSubClause && c.Parent >= 0 && res.Chunks[c.Parent].Type == grammar.KindClause {
			letters++
		}
	}
	if letters != 2 {
		t.Errorf("got %d subclause chunks under clauses, want 2", letters)
	}
}

func TestAssemble_Attachment(t *testing.T) {
	text := "MEMUTUSKAN:\nMenetapkan : PERATURAN.\nPasal 1\nLampiran merupakan bagian tidak terpisahkan.\nDitetapkan di Jakarta\npada tanggal 1 Juni 2023\nLAMPIRAN I\nA. Tata cara pengisian formulir.\nB. Contoh penghitungan pajak."
	res := Assemble(text, getGrammar(t, grammar.FamilyAct, grammar.StyleEnacted), "Dokumen")

	var attachment *Chunk
	sections := 0
	for i := range res.Chunks {
		c := &res.Chunks[i]
		switch c.Type {
		case grammar.KindAttachment:
			attachment = c
		case grammar.KindAttachmentSection:
			sections++
			if c.SourcePart != grammar.PartAttachment {
				t.Errorf("attachment section source part = %s", c.SourcePart)
			}
			if c.Coords.Attachment != "I" {
				t.Errorf("attachment section coord = %q, want \"I\"", c.Coords.Attachment)
			}
		}
	}
	if attachment == nil {
		t.Fatal("attachment chunk not found")
	}
	if attachment.Coords.Attachment != "I" {
		t.Errorf("attachment coord = %q, want \"I\"", attachment.Coords.Attachment)
	}
	if sections != 2 {
		t.Errorf("got %d attachment sections, want 2", sections)
	}
}

func TestAssemble_Explanatory(t *testing.T) {
	text := `MEMUTUSKAN:
Menetapkan : UNDANG-UNDANG.
Pasal 1
Isi pasal satu.
Pasal 2
Isi pasal dua.
Ditetapkan di Jakarta
pada tanggal 1 Juni 2023
PENJELASAN
I. UMUM
Penjelasan umum atas undang-undang ini.
II. PASAL DEMI PASAL
Pasal 1
Cukup jelas.
Pasal 2
Yang dimaksud dengan isi adalah muatan.
`
	res := Assemble(text, getGrammar(t, grammar.FamilyAct, grammar.StyleEnacted), "Dokumen")

	var general *Chunk
	explArticles := 0
	for i := range res.Chunks {
		c := &res.Chunks[i]
		switch c.Type {
		case grammar.KindExplanatoryGeneral:
			general = c
		case grammar.KindExplanatoryArticle:
			explArticles++
			if c.SourcePart != grammar.PartExplanatory {
				t.Errorf("explanatory article source part = %s", c.SourcePart)
			}
			if c.Parent < 0 || res.Chunks[c.Parent].Type != grammar.KindExplanatoryGeneral {
				t.Errorf("explanatory article parent kind wrong")
			}
		}
	}
	if general == nil {
		t.Fatal("explanatory general chunk not found")
	}
	if !strings.Contains(general.Text, "I. UMUM") {
		t.Errorf("general explanatory text missing UMUM header:\n%s", general.Text)
	}
	if explArticles != 2 {
		t.Errorf("got %d explanatory articles, want 2", explArticles)
	}

	// Body and explanatory articles share labels but not anchors.
	seen := make(map[string]bool)
	for _, c := range res.Chunks {
		if seen[c.Anchor] {
			t.Errorf("duplicate anchor %q across body and penjelasan", c.Anchor)
		}
		seen[c.Anchor] = true
	}
}

func TestAssemble_CircularHeadings(t *testing.T) {
	text := `SURAT EDARAN DIREKTUR JENDERAL PAJAK
NOMOR SE-62/PJ/2013

A. Umum
Sehubungan dengan pelaksanaan ketentuan.
B. Maksud dan Tujuan
1. Maksud surat edaran ini adalah memberi acuan.
2. Tujuannya adalah keseragaman.
`
	res := Assemble(text, getGrammar(t, grammar.FamilyCircular, grammar.StyleEnacted), "SE-62/PJ/2013")

	headings := 0
	items := 0
	for _, c := range res.Chunks {
		switch c.Type {
		case grammar.KindHeading:
			headings++
		case grammar.KindMemoItem:
			items++
			if c.Parent < 0 || res.Chunks[c.Parent].Type != grammar.KindHeading {
				t.Errorf("memo item parent kind wrong")
			}
		}
	}
	if headings != 2 {
		t.Errorf("got %d headings, want 2", headings)
	}
	if items != 2 {
		t.Errorf("got %d memo items, want 2", items)
	}
	if res.Chunks[0].Type != grammar.KindPreamble {
		t.Errorf("first chunk = %s, want preamble header block", res.Chunks[0].Type)
	}
}
