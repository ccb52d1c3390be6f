package source

import (
	"bytes"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/dgallion1/pdfbm/internal/bookmark"
	"github.com/fumiama/go-docx"
)

// DOCX reads a Word document holding one listing line per paragraph.
// Paragraphs styled "Heading N" get N-1 depth markers put in front, so an
// outline can be kept with Word's heading styles instead of markers.
type DOCX struct {
	Marker rune
}

var headingStyle = regexp.MustCompile(`(?i)^heading\s*(\d)$`)

func (s *DOCX) Parse(r io.Reader, filename string) (bookmark.Tree, error) {
	// go-docx needs a ReaderAt and a size.
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &bookmark.SourceReadError{Err: err}
	}
	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &bookmark.SourceReadError{Err: err}
	}

	marker := s.Marker
	if marker == 0 {
		marker = bookmark.DefaultMarker
	}
	m := bookmark.NewMatcher(marker)
	b := bookmark.NewBuilder()

	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		text := docxParagraphText(para)
		if level := docxHeadingLevel(para); level > 1 {
			text = strings.Repeat(string(marker), level-1) + text
		}
		line, ok := m.Match(text)
		if !ok {
			continue
		}
		if err := b.Add(line); err != nil {
			return nil, err
		}
	}
	return b.Tree(), nil
}

func docxHeadingLevel(para *docx.Paragraph) int {
	if para.Properties == nil || para.Properties.Style == nil {
		return 0
	}
	m := headingStyle.FindStringSubmatch(strings.TrimSpace(para.Properties.Style.Val))
	if m == nil {
		return 0
	}
	level, _ := strconv.Atoi(m[1])
	return level
}

func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}
