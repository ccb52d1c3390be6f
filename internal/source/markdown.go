package source

import (
	"bytes"
	"io"
	"strings"

	"github.com/dgallion1/pdfbm/internal/bookmark"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Markdown reads nested bullet lists. Each item is either `Title | page` or a
// link `[Title](#page=N)`; list nesting gives the depth.
type Markdown struct{}

func (s *Markdown) Parse(r io.Reader, filename string) (bookmark.Tree, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, &bookmark.SourceReadError{Err: err}
	}

	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(src))

	b := bookmark.NewBuilder()
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		if list, ok := n.(*ast.List); ok {
			if err := addMarkdownList(b, list, 0, src); err != nil {
				return nil, err
			}
		}
	}
	return b.Tree(), nil
}

func addMarkdownList(b *bookmark.Builder, list *ast.List, depth int, src []byte) error {
	for item := list.FirstChild(); item != nil; item = item.NextSibling() {
		for c := item.FirstChild(); c != nil; c = c.NextSibling() {
			switch block := c.(type) {
			case *ast.List:
				if err := addMarkdownList(b, block, depth+1, src); err != nil {
					return err
				}
			case *ast.TextBlock, *ast.Paragraph:
				line, ok := markdownItem(block, depth, src)
				if !ok {
					continue
				}
				if err := b.Add(line); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func markdownItem(block ast.Node, depth int, src []byte) (bookmark.Line, bool) {
	raw := strings.TrimSpace(inlineText(block, src))

	// A link carrying a #page=N target wins over the text form.
	for c := block.FirstChild(); c != nil; c = c.NextSibling() {
		link, ok := c.(*ast.Link)
		if !ok {
			continue
		}
		page, ok := linkPage(string(link.Destination))
		if !ok {
			continue
		}
		title := strings.TrimSpace(inlineText(link, src))
		if title == "" {
			return bookmark.Line{}, false
		}
		return bookmark.Line{Depth: depth, Title: title, Page: page, Raw: raw}, true
	}

	title, page, ok := splitItem(raw)
	if !ok {
		return bookmark.Line{}, false
	}
	return bookmark.Line{Depth: depth, Title: title, Page: page, Raw: raw}, true
}

// inlineText concatenates the text of n's inline descendants.
func inlineText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			buf.Write(t.Segment.Value(src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(t.Value)
		default:
			buf.WriteString(inlineText(c, src))
		}
	}
	return buf.String()
}
