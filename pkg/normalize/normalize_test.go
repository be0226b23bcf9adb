package normalize

import (
	"strings"
	"testing"
)

func TestNormalize_SpacedKeywords(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"spaced uppercase formula", "M E M U T U S K A N :", "MEMUTUSKAN :"},
		{"spaced article keyword", "P a s a l 5", "Pasal 5"},
		{"spaced chapter keyword", "B A B III", "BAB III"},
		{"hyphenated keyword", "U N D A N G - U N D A N G", "UNDANG-UNDANG"},
		{"already canonical", "Pasal 5", "Pasal 5"},
		{"canonical formula untouched", "MEMUTUSKAN:", "MEMUTUSKAN:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.input)
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalize_PageNumbers(t *testing.T) {
	input := "Pasal 1\nIsi pasal satu.\n- 12 -\nPasal 2\n34\nHalaman 3 dari 10\nIsi pasal dua."
	got := Normalize(input)

	for _, removed := range []string{"- 12 -", "\n34\n", "Halaman 3"} {
		if strings.Contains(got, removed) {
			t.Errorf("page artifact %q survived normalization:\n%s", removed, got)
		}
	}
	for _, kept := range []string{"Pasal 1", "Pasal 2", "Isi pasal satu.", "Isi pasal dua."} {
		if !strings.Contains(got, kept) {
			t.Errorf("content %q lost during normalization:\n%s", kept, got)
		}
	}
}

func TestNormalize_RepeatedHeaders(t *testing.T) {
	header := "DIREKTORAT JENDERAL PAJAK"
	lines := []string{header, "Pasal 1", "Isi.", header, "Pasal 2", "Isi lagi.", header, "Pasal 3", "Penutup."}
	got := Normalize(strings.Join(lines, "\n"))

	if n := strings.Count(got, header); n != 1 {
		t.Errorf("running header occurs %d times after normalization, want 1:\n%s", n, got)
	}
}

func TestNormalize_RepeatedHeadersKeepRareLines(t *testing.T) {
	// "Cukup jelas." repeats in every explanatory note but is lowercase
	// prose, not a running header.
	line := "Cukup jelas."
	input := strings.Repeat("Pasal 1\n"+line+"\n", 5)
	got := Normalize(input)

	if n := strings.Count(got, line); n != 5 {
		t.Errorf("%q occurs %d times after normalization, want 5", line, n)
	}
}

func TestNormalize_BlankRuns(t *testing.T) {
	input := "Pasal 1\n\n\n\n\nPasal 2"
	got := Normalize(input)
	if strings.Contains(got, "\n\n\n") {
		t.Errorf("blank run longer than 2 survived: %q", got)
	}

	got = NormalizeWithOptions(input, Options{MaxBlankLines: 1})
	if strings.Contains(got, "\n\n") {
		t.Errorf("blank run longer than 1 survived with MaxBlankLines=1: %q", got)
	}
}

func TestNormalize_LineEndings(t *testing.T) {
	got := Normalize("Pasal 1\r\nIsi.\rPasal 2")
	if strings.ContainsRune(got, '\r') {
		t.Errorf("carriage return survived: %q", got)
	}
}

func TestNormalize_Empty(t *testing.T) {
	if got := Normalize(""); got != "" {
		t.Errorf("Normalize(\"\") = %q, want \"\"", got)
	}
}

// Normalization is a fixed point: running it twice equals running it once.
func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"M E M U T U S K A N :\nP a s a l 1\nIsi.\n- 3 -\n\n\n\n\nPasal 2",
		"BAB I\nKETENTUAN UMUM\nPasal 1\n(1) Dalam Undang-Undang ini.",
		strings.Repeat("KEMENTERIAN KEUANGAN RI\nPasal 1\nIsi.\n", 4),
		"",
	}
	for _, input := range inputs {
		once := Normalize(input)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("not idempotent for %q:\nonce:  %q\ntwice: %q", input, once, twice)
		}
	}
}
