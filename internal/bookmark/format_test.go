package bookmark

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFormat_RoundTrip(t *testing.T) {
	var buf strings.Builder
	if err := Format(&buf, sampleTree(), 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if buf.String() != sampleListing {
		t.Errorf("expected listing:\n%s\ngot:\n%s", sampleListing, buf.String())
	}

	tree, err := Parse(strings.NewReader(buf.String()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(sampleTree(), tree); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
}

func TestFormat_CustomMarker(t *testing.T) {
	tree := Tree{{Title: "A", Page: 0, Children: []*Node{{Title: "B", Page: 4}}}}
	var buf strings.Builder
	if err := Format(&buf, tree, '-'); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "\"A\" | 1\n-\"B\" | 5\n"
	if buf.String() != want {
		t.Errorf("expected %q, got %q", want, buf.String())
	}
}

func TestFormat_RejectsQuotedTitle(t *testing.T) {
	tree := Tree{{Title: `say "hi"`, Page: 0}}
	var buf strings.Builder
	if err := Format(&buf, tree, 0); err == nil {
		t.Fatal("expected error for title containing a quote")
	}
}

func TestFormat_RejectsMissingPage(t *testing.T) {
	tree := Tree{{Title: "A", Page: -1}}
	var buf strings.Builder
	if err := Format(&buf, tree, 0); err == nil {
		t.Fatal("expected error for negative page")
	}
}
