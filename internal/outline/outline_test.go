package outline

import (
	"errors"
	"strings"
	"testing"

	"github.com/dgallion1/pdfbm/internal/bookmark"
	"github.com/google/go-cmp/cmp"
)

func TestApply_ParentBeforeChild(t *testing.T) {
	tree := bookmark.Tree{{Title: "A", Page: 0, Children: []*bookmark.Node{{Title: "B", Page: 1}}}}
	rec := &Recorder{}
	if err := Apply(tree, rec); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []Call{
		{Title: "A", Page: 0, Parent: nil, Handle: 1},
		{Title: "B", Page: 1, Parent: 1, Handle: 2},
	}
	if diff := cmp.Diff(want, rec.Calls); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
}

func TestApply_DocumentOrder(t *testing.T) {
	listing := `"Foreword" | 1
+"Chapter 1" | 2
++"1.1" | 2
+++"1.1.1" | 2
+++"1.1.2" | 3
++"1.2" | 4
"Chapter 2" | 5
`
	tree, err := bookmark.Parse(strings.NewReader(listing))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rec := &Recorder{}
	if err := Apply(tree, rec); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []Call{
		{Title: "Foreword", Page: 0, Parent: nil, Handle: 1},
		{Title: "Chapter 1", Page: 1, Parent: 1, Handle: 2},
		{Title: "1.1", Page: 1, Parent: 2, Handle: 3},
		{Title: "1.1.1", Page: 1, Parent: 3, Handle: 4},
		{Title: "1.1.2", Page: 2, Parent: 3, Handle: 5},
		{Title: "1.2", Page: 3, Parent: 2, Handle: 6},
		{Title: "Chapter 2", Page: 4, Parent: nil, Handle: 7},
	}
	// "Chapter 1" is a depth-1 line, so it nests under "Foreword".
	if diff := cmp.Diff(want, rec.Calls); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
}

func TestApply_EmptyTree(t *testing.T) {
	rec := &Recorder{}
	if err := Apply(nil, rec); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rec.Calls) != 0 {
		t.Errorf("expected no calls, got %d", len(rec.Calls))
	}
}

func TestApply_StopsOnSinkError(t *testing.T) {
	tree := bookmark.Tree{
		{Title: "A", Page: 0, Children: []*bookmark.Node{
			{Title: "B", Page: 41},
			{Title: "C", Page: 2},
		}},
		{Title: "D", Page: 3},
	}
	errRange := errors.New("page out of range")
	rec := &Recorder{Fail: func(title string, page int) error {
		if page > 10 {
			return errRange
		}
		return nil
	}}

	err := Apply(tree, rec)
	var attachErr *EntryAttachError
	if !errors.As(err, &attachErr) {
		t.Fatalf("expected EntryAttachError, got %v", err)
	}
	if attachErr.Title != "B" || attachErr.Page != 41 {
		t.Errorf("expected failure on B page 41, got %q page %d", attachErr.Title, attachErr.Page)
	}
	if !errors.Is(err, errRange) {
		t.Errorf("expected wrapped sink error")
	}
	if !strings.Contains(err.Error(), "page 42") {
		t.Errorf("expected 1-based page in message, got %q", err.Error())
	}
	if len(rec.Calls) != 1 || rec.Calls[0].Title != "A" {
		t.Errorf("expected only A attached before the failure, got %+v", rec.Calls)
	}
}

func TestApply_DeepTree(t *testing.T) {
	const depth = 3000
	lines := make([]string, depth)
	for i := range lines {
		lines[i] = strings.Repeat("+", i) + `"x" | 1`
	}
	tree, err := bookmark.Build(lines)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rec := &Recorder{}
	if err := Apply(tree, rec); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rec.Calls) != depth {
		t.Fatalf("expected %d calls, got %d", depth, len(rec.Calls))
	}
	last := rec.Calls[depth-1]
	if last.Parent != depth-1 {
		t.Errorf("expected last entry under handle %d, got %v", depth-1, last.Parent)
	}
}
