// Package grammar defines the per-family structural grammars that
// parameterize the shared document-structure-recovery engine. A Grammar
// is a value object: ordered marker definitions, nesting levels,
// reference-indicator phrases, and tunable context windows. Family
// differences are data, not duplicated control flow.
package grammar

// Kind identifies a structural boundary or chunk kind.
type Kind string

const (
	KindPreamble    Kind = "preamble"
	KindConsidering Kind = "considering" // Menimbang recital block
	KindReferencing Kind = "referencing" // Mengingat recital block
	KindEnacting    Kind = "enacting"    // MEMUTUSKAN / Menetapkan formula

	KindChapter   Kind = "chapter"   // BAB
	KindPart      Kind = "part"      // Bagian
	KindParagraph Kind = "paragraph" // Paragraf
	KindArticle   Kind = "article"   // Pasal
	KindClause    Kind = "clause"    // Ayat (n)
	KindSubClause Kind = "subclause" // huruf a.

	KindClosing           Kind = "closing"            // Ditetapkan di ...
	KindAttachment        Kind = "attachment"         // LAMPIRAN
	KindAttachmentSection Kind = "attachment_section" // lettered/roman sections inside a lampiran

	KindExplanatoryGeneral Kind = "explanatory_general" // PENJELASAN ... I. UMUM
	KindExplanatoryArticle Kind = "explanatory_article" // Pasal N inside PASAL DEMI PASAL
	KindExplanatoryClause  Kind = "explanatory_clause"  // Ayat (n) inside an explanatory article

	KindMemoItem    Kind = "memo_item"     // 1. top-level circular/memo item
	KindMemoSubItem Kind = "memo_sub_item" // a. lettered sub-item
	KindHeading     Kind = "heading"       // briefing/slide heading

	// KindContent tags the whole-document fallback chunk emitted when no
	// structural marker of any kind is found.
	KindContent Kind = "content"
)

// AllKinds lists every kind the engine can emit, in no particular order.
// Used by the CLI statistics summary and by exhaustiveness tests.
var AllKinds = []Kind{
	KindPreamble, KindConsidering, KindReferencing, KindEnacting,
	KindChapter, KindPart, KindParagraph, KindArticle, KindClause, KindSubClause,
	KindClosing, KindAttachment, KindAttachmentSection,
	KindExplanatoryGeneral, KindExplanatoryArticle, KindExplanatoryClause,
	KindMemoItem, KindMemoSubItem, KindHeading, KindContent,
}

// SourcePart tags which physical part of the document a span came from.
type SourcePart string

const (
	PartBody        SourcePart = "batang_tubuh"
	PartExplanatory SourcePart = "penjelasan"
	PartAttachment  SourcePart = "lampiran"
)

// anchorSegments maps each kind to the Indonesian label used when
// building anchor citations. Level kinds combine the label with the
// captured number; standalone kinds are used as-is.
var anchorSegments = map[Kind]string{
	KindPreamble:           "Pembukaan",
	KindConsidering:        "Menimbang",
	KindReferencing:        "Mengingat",
	KindEnacting:           "MEMUTUSKAN",
	KindChapter:            "BAB",
	KindPart:               "Bagian",
	KindParagraph:          "Paragraf",
	KindArticle:            "Pasal",
	KindClause:             "Ayat",
	KindSubClause:          "Huruf",
	KindClosing:            "Penutup",
	KindAttachment:         "Lampiran",
	KindAttachmentSection:  "Bagian Lampiran",
	KindExplanatoryGeneral: "Penjelasan Umum",
	KindExplanatoryArticle: "Penjelasan Pasal",
	KindExplanatoryClause:  "Penjelasan Ayat",
	KindMemoItem:           "Angka",
	KindMemoSubItem:        "Huruf",
	KindHeading:            "Bagian",
	KindContent:            "Isi",
}

// AnchorSegment returns the citation label for a kind. Unknown kinds
// fall back to the kind string itself so anchors stay non-empty.
func (k Kind) AnchorSegment() string {
	if s, ok := anchorSegments[k]; ok {
		return s
	}
	return string(k)
}
