// Package bookmark parses indentation-marked bookmark listings into a tree.
//
// A listing has one bookmark per line:
//
//	"Foreword" | 1
//	+"Chapter 1: Introduction" | 2
//	++"1.1 Python" | 2
//
// The number of leading markers is the nesting depth, the quoted text is the
// title and the number after the pipe is the 1-based page number.
package bookmark

// DefaultMarker is the depth marker used when none is configured.
const DefaultMarker = '+'

// Tree is an ordered forest of root-level bookmarks.
type Tree []*Node

// Node is one bookmark and its nested bookmarks.
type Node struct {
	Title    string  `json:"title"`
	Page     int     `json:"page"` // zero-based page index
	Children []*Node `json:"children,omitempty"`
}

// Count returns the total number of nodes in the tree.
func (t Tree) Count() int {
	n := 0
	t.Walk(func(*Node, int) error {
		n++
		return nil
	})
	return n
}

// Depth returns the number of levels in the tree (0 for an empty tree).
func (t Tree) Depth() int {
	max := 0
	t.Walk(func(_ *Node, depth int) error {
		if depth+1 > max {
			max = depth + 1
		}
		return nil
	})
	return max
}

// Walk visits every node in document order, parents before children.
// Walking stops at the first error returned by fn.
func (t Tree) Walk(fn func(n *Node, depth int) error) error {
	return walk(t, 0, fn)
}

func walk(nodes []*Node, depth int, fn func(*Node, int) error) error {
	for _, n := range nodes {
		if err := fn(n, depth); err != nil {
			return err
		}
		if err := walk(n.Children, depth+1, fn); err != nil {
			return err
		}
	}
	return nil
}
