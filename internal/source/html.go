package source

import (
	"io"
	"strings"

	"github.com/dgallion1/pdfbm/internal/bookmark"
	"golang.org/x/net/html"
)

// HTML reads nested <ul>/<ol> lists whose items hold a link to "#page=N",
// the shape of a table of contents exported from a browser or an editor.
// Items without such a link may use the "Title | page" text form.
type HTML struct{}

func (s *HTML) Parse(r io.Reader, filename string) (bookmark.Tree, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, &bookmark.SourceReadError{Err: err}
	}

	b := bookmark.NewBuilder()

	var walk func(n *html.Node, listDepth int) error
	walk = func(n *html.Node, listDepth int) error {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style":
				return nil
			case "ul", "ol":
				listDepth++
			case "li":
				if listDepth > 0 {
					if line, ok := htmlItem(n, listDepth-1); ok {
						if err := b.Add(line); err != nil {
							return err
						}
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if err := walk(c, listDepth); err != nil {
				return err
			}
		}
		return nil
	}

	root := findBody(doc)
	if root == nil {
		root = doc
	}
	if err := walk(root, 0); err != nil {
		return nil, err
	}
	return b.Tree(), nil
}

func htmlItem(li *html.Node, depth int) (bookmark.Line, bool) {
	raw := strings.Join(strings.Fields(ownText(li)), " ")

	if a := firstLink(li); a != nil {
		if page, ok := linkPage(attr(a, "href")); ok {
			title := strings.Join(strings.Fields(textContent(a)), " ")
			if title == "" {
				return bookmark.Line{}, false
			}
			return bookmark.Line{Depth: depth, Title: title, Page: page, Raw: raw}, true
		}
	}

	title, page, ok := splitItem(raw)
	if !ok {
		return bookmark.Line{}, false
	}
	return bookmark.Line{Depth: depth, Title: title, Page: page, Raw: raw}, true
}

func isList(n *html.Node) bool {
	return n.Type == html.ElementNode && (n.Data == "ul" || n.Data == "ol")
}

// ownText is the text of li without its nested lists.
func ownText(li *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if isList(n) {
			return
		}
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	for c := li.FirstChild; c != nil; c = c.NextSibling {
		extract(c)
	}
	return buf.String()
}

// firstLink finds the first <a> of li outside its nested lists.
func firstLink(li *html.Node) *html.Node {
	var find func(*html.Node) *html.Node
	find = func(n *html.Node) *html.Node {
		if isList(n) {
			return nil
		}
		if n.Type == html.ElementNode && n.Data == "a" {
			return n
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if a := find(c); a != nil {
				return a
			}
		}
		return nil
	}
	for c := li.FirstChild; c != nil; c = c.NextSibling {
		if a := find(c); a != nil {
			return a
		}
	}
	return nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(buf.String())
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
