package bookmark

import "fmt"

// MalformedDepthError reports a line whose depth is more than one level
// below the previous bookmark.
type MalformedDepthError struct {
	Line  string
	Depth int
	Prev  int
}

func (e *MalformedDepthError) Error() string {
	return fmt.Sprintf("depth marker count is invalid here (depth %d after depth %d): %s", e.Depth, e.Prev, e.Line)
}

// Builder assembles a Tree from lines added in document order.
//
// levels[d] is the most recent node at depth d, whose children receive the
// next depth d+1 bookmark. levels[0] starts out nil, which stands for the
// root sequence, so a listing may open directly at depth 1.
type Builder struct {
	roots     Tree
	levels    []*Node
	prevDepth int
	err       error
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{levels: []*Node{nil}}
}

// Add appends one bookmark line. Once Add has failed, the Builder keeps
// returning the same error and the tree is no longer usable.
func (b *Builder) Add(line Line) error {
	if b.err != nil {
		return b.err
	}
	if line.Depth < 0 || line.Depth > b.prevDepth+1 {
		b.err = &MalformedDepthError{Line: line.Raw, Depth: line.Depth, Prev: b.prevDepth}
		return b.err
	}

	node := &Node{Title: line.Title, Page: line.Page - 1}
	if line.Depth == 0 {
		b.roots = append(b.roots, node)
	} else if parent := b.levels[line.Depth-1]; parent != nil {
		parent.Children = append(parent.Children, node)
	} else {
		b.roots = append(b.roots, node)
	}

	b.levels = append(b.levels[:line.Depth], node)
	b.prevDepth = line.Depth
	return nil
}

// Err returns the error that stopped the Builder, if any.
func (b *Builder) Err() error {
	return b.err
}

// Tree returns the bookmarks added so far.
func (b *Builder) Tree() Tree {
	return b.roots
}
