package bookmark

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Format writes t as a listing that Parse reads back into the same tree.
func Format(w io.Writer, t Tree, marker rune) error {
	if marker == 0 {
		marker = DefaultMarker
	}
	bw := bufio.NewWriter(w)
	err := t.Walk(func(n *Node, depth int) error {
		if n.Title == "" || strings.ContainsAny(n.Title, "\"\r\n") {
			return fmt.Errorf("bookmark title %q cannot be written as a listing", n.Title)
		}
		if n.Page < 0 {
			return fmt.Errorf("bookmark %q has no target page", n.Title)
		}
		_, err := fmt.Fprintf(bw, "%s\"%s\" | %d\n", strings.Repeat(string(marker), depth), n.Title, n.Page+1)
		return err
	})
	if err != nil {
		return err
	}
	return bw.Flush()
}
