package pdfdoc

import (
	"strings"
	"testing"

	"github.com/dgallion1/pdfbm/internal/pdfdoc/pdftest"
)

func TestDocument_Previews(t *testing.T) {
	doc := mustRead(t, pdftest.Document(3, ""))
	got, err := doc.Previews([]int{0, 2, 7, 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 previews, got %d", len(got))
	}
	if !strings.Contains(got[0], "Hello page 1") {
		t.Errorf("expected page 1 text, got %q", got[0])
	}
	if !strings.Contains(got[2], "Hello page 3") {
		t.Errorf("expected page 3 text, got %q", got[2])
	}
	if got[7] != "" {
		t.Errorf("expected empty preview past the last page, got %q", got[7])
	}
}

func TestFirstLine(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"\n\n  Chapter   One \nmore", "Chapter One"},
		{strings.Repeat("x", 80), strings.Repeat("x", 59) + "…"},
	}
	for _, tt := range tests {
		if got := firstLine(tt.in); got != tt.want {
			t.Errorf("firstLine(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
