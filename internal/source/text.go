package source

import (
	"io"

	"github.com/dgallion1/pdfbm/internal/bookmark"
)

// Text reads the plain listing format, one `+"Title" | page` per line.
type Text struct {
	Marker rune
}

func (s *Text) Parse(r io.Reader, filename string) (bookmark.Tree, error) {
	return bookmark.Parse(r, bookmark.WithMarker(s.Marker))
}
