// Package pdfdoc is the PDF side of bookmarking: it loads a document, collects
// outline entries and writes a copy of the document carrying them.
package pdfdoc

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/dgallion1/pdfbm/internal/bookmark"
	"github.com/dgallion1/pdfbm/internal/outline"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// ErrPageOutOfRange is returned by AddEntry for pages the document lacks.
var ErrPageOutOfRange = errors.New("page out of range")

// DocumentOpenError reports a PDF that could not be read or parsed.
type DocumentOpenError struct {
	Path string
	Err  error
}

func (e *DocumentOpenError) Error() string {
	return fmt.Sprintf("open pdf %s: %v", e.Path, e.Err)
}

func (e *DocumentOpenError) Unwrap() error { return e.Err }

// DocumentWriteError reports a failure producing the output PDF.
type DocumentWriteError struct {
	Path string
	Err  error
}

func (e *DocumentWriteError) Error() string {
	return fmt.Sprintf("write pdf %s: %v", e.Path, e.Err)
}

func (e *DocumentWriteError) Unwrap() error { return e.Err }

var configOnce sync.Once

// newConfig returns a pdfcpu configuration that never touches the user's
// pdfcpu config directory. pdfcpu's api functions modify the configuration
// they are given, so every call gets its own.
func newConfig(cmd model.CommandMode) *model.Configuration {
	configOnce.Do(api.DisableConfigDir)
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	conf.Cmd = cmd
	return conf
}

// Document is a source PDF plus the outline being built for its copy.
// It implements outline.Sink.
type Document struct {
	name  string
	data  []byte
	pages int
	roots []*entry
}

type entry struct {
	title string
	page  int
	kids  []*entry
}

var _ outline.Sink = (*Document)(nil)

// Open loads the PDF at path.
func Open(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &DocumentOpenError{Path: path, Err: err}
	}
	return load(data, path)
}

// Read loads a PDF from r; name is only used in error messages.
func Read(r io.Reader, name string) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &DocumentOpenError{Path: name, Err: err}
	}
	return load(data, name)
}

func load(data []byte, name string) (*Document, error) {
	n, err := api.PageCount(bytes.NewReader(data), newConfig(model.LISTINFO))
	if err != nil {
		return nil, &DocumentOpenError{Path: name, Err: err}
	}
	return &Document{name: name, data: data, pages: n}, nil
}

// Name returns the path or name the document was loaded from.
func (d *Document) Name() string { return d.name }

// PageCount returns the number of pages of the source document.
func (d *Document) PageCount() int { return d.pages }

// AddEntry attaches an outline entry pointing at the zero-based page.
// parent must be nil or a handle returned by an earlier AddEntry call.
func (d *Document) AddEntry(title string, page int, parent outline.Handle) (outline.Handle, error) {
	if page < 0 || page >= d.pages {
		return nil, fmt.Errorf("%w: page %d of %d", ErrPageOutOfRange, page+1, d.pages)
	}
	e := &entry{title: title, page: page}
	switch p := parent.(type) {
	case nil:
		d.roots = append(d.roots, e)
	case *entry:
		p.kids = append(p.kids, e)
	default:
		return nil, fmt.Errorf("foreign outline handle %T", parent)
	}
	return e, nil
}

// Entries returns the number of outline entries attached so far.
func (d *Document) Entries() int {
	var count func([]*entry) int
	count = func(es []*entry) int {
		n := len(es)
		for _, e := range es {
			n += count(e.kids)
		}
		return n
	}
	return count(d.roots)
}

// Write writes a copy of the document, pages and document info included,
// whose outline is exactly the attached entries. Any outline the source had
// is dropped, so a document with no entries attached is written without one.
func (d *Document) Write(w io.Writer) error {
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(d.data), newConfig(model.ADDBOOKMARKS))
	if err != nil {
		return &DocumentWriteError{Path: d.name, Err: err}
	}
	if err := d.replaceOutline(ctx); err != nil {
		return &DocumentWriteError{Path: d.name, Err: err}
	}
	if err := api.WriteContext(ctx, w); err != nil {
		return &DocumentWriteError{Path: d.name, Err: err}
	}
	return nil
}

func (d *Document) replaceOutline(ctx *model.Context) error {
	if err := ctx.LocateNameTree("Dests", false); err != nil {
		return err
	}
	if _, err := pdfcpu.RemoveBookmarks(ctx); err != nil {
		return err
	}
	root, err := ctx.Catalog()
	if err != nil {
		return err
	}
	root.Delete("Outlines")
	if len(d.roots) == 0 {
		return nil
	}

	outlines := types.Dict(map[string]types.Object{"Type": types.Name("Outlines")})
	ir, err := ctx.IndRefForNewObject(outlines)
	if err != nil {
		return err
	}
	first, last, count, err := outlineItems(ctx, d.roots, *ir)
	if err != nil {
		return err
	}
	outlines["First"] = *first
	outlines["Last"] = *last
	outlines["Count"] = types.Integer(count)
	root["Outlines"] = *ir
	return nil
}

// outlineItems writes one sibling list of outline item dictionaries, linked
// in attach order. Every item is open, so count is the number of items in
// the list and below it. Page order is not checked: entries may point
// anywhere in the document.
func outlineItems(ctx *model.Context, es []*entry, parent types.IndirectRef) (first, last *types.IndirectRef, count int, err error) {
	var prev types.Dict
	for _, e := range es {
		_, pageRef, _, err := ctx.PageDict(e.page+1, false)
		if err != nil {
			return nil, nil, 0, fmt.Errorf("bookmark %q: %w", e.title, err)
		}
		title, err := types.EscapeUTF16String(e.title)
		if err != nil {
			return nil, nil, 0, fmt.Errorf("bookmark %q: %w", e.title, err)
		}

		item := types.Dict(map[string]types.Object{
			"Title":  types.StringLiteral(*title),
			"Parent": parent,
			"Dest":   types.Array{*pageRef, types.Name("Fit")},
		})
		ir, err := ctx.IndRefForNewObject(item)
		if err != nil {
			return nil, nil, 0, err
		}
		count++

		if len(e.kids) > 0 {
			kidFirst, kidLast, n, err := outlineItems(ctx, e.kids, *ir)
			if err != nil {
				return nil, nil, 0, err
			}
			item["First"] = *kidFirst
			item["Last"] = *kidLast
			item["Count"] = types.Integer(n)
			count += n
		}

		if prev != nil {
			item["Prev"] = *last
			prev["Next"] = *ir
		} else {
			first = ir
		}
		prev, last = item, ir
	}
	return first, last, count, nil
}

// WriteFile writes the bookmarked copy to path. The file only appears once it
// is complete; on failure nothing is left behind.
func (d *Document) WriteFile(path string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".pdfbm-*.pdf")
	if err != nil {
		return &DocumentWriteError{Path: path, Err: err}
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := d.Write(tmp); err != nil {
		tmp.Close()
		return &DocumentWriteError{Path: path, Err: errors.Unwrap(err)}
	}
	if err := tmp.Close(); err != nil {
		return &DocumentWriteError{Path: path, Err: err}
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return &DocumentWriteError{Path: path, Err: err}
	}
	return nil
}

// Outline returns the outline the source document already has, or an empty
// tree when it has none.
func (d *Document) Outline() (bookmark.Tree, error) {
	// pdfcpu reports a document without outline as nil bookmarks.
	bms, err := api.Bookmarks(bytes.NewReader(d.data), newConfig(model.LISTBOOKMARKS))
	if err != nil {
		return nil, fmt.Errorf("read outline of %s: %w", d.name, err)
	}
	return fromBookmarks(bms), nil
}

func fromBookmarks(bms []pdfcpu.Bookmark) bookmark.Tree {
	if len(bms) == 0 {
		return nil
	}
	tree := make(bookmark.Tree, 0, len(bms))
	for _, bm := range bms {
		tree = append(tree, &bookmark.Node{
			Title:    bm.Title,
			Page:     bm.PageFrom - 1,
			Children: fromBookmarks(bm.Kids),
		})
	}
	return tree
}
