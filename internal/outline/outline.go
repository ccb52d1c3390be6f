// Package outline attaches a bookmark tree to a document outline.
package outline

import (
	"fmt"

	"github.com/dgallion1/pdfbm/internal/bookmark"
)

// Handle identifies an attached outline entry. The nil Handle stands for
// the outline root.
type Handle any

// Sink receives outline entries. AddEntry attaches an entry below parent and
// returns a handle under which child entries can be attached.
type Sink interface {
	AddEntry(title string, page int, parent Handle) (Handle, error)
}

// EntryAttachError reports a bookmark the sink refused. Entries attached
// before the failure stay attached.
type EntryAttachError struct {
	Title string
	Page  int
	Err   error
}

func (e *EntryAttachError) Error() string {
	return fmt.Sprintf("attach bookmark %q (page %d): %v", e.Title, e.Page+1, e.Err)
}

func (e *EntryAttachError) Unwrap() error {
	return e.Err
}

type frame struct {
	node   *bookmark.Node
	parent Handle
}

// Apply attaches every node of tree to sink in document order: each parent
// before its children, siblings in tree order. It stops at the first error.
func Apply(tree bookmark.Tree, sink Sink) error {
	// Explicit stack, pushed in reverse so the first sibling pops first.
	stack := make([]frame, 0, len(tree))
	for i := len(tree) - 1; i >= 0; i-- {
		stack = append(stack, frame{node: tree[i]})
	}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		h, err := sink.AddEntry(f.node.Title, f.node.Page, f.parent)
		if err != nil {
			return &EntryAttachError{Title: f.node.Title, Page: f.node.Page, Err: err}
		}
		for i := len(f.node.Children) - 1; i >= 0; i-- {
			stack = append(stack, frame{node: f.node.Children[i], parent: h})
		}
	}
	return nil
}
