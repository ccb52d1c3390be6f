// Package pipeline runs a bookmarking job end to end: read the listing, open
// the PDF, attach the outline and write the result.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dgallion1/pdfbm/internal/bookmark"
	"github.com/dgallion1/pdfbm/internal/config"
	"github.com/dgallion1/pdfbm/internal/outline"
	"github.com/dgallion1/pdfbm/internal/pdfdoc"
	"github.com/dgallion1/pdfbm/internal/source"
)

// Paths names the files of one job. Empty Bookmarks and Output are derived
// from Input by Resolve.
type Paths struct {
	Input     string
	Bookmarks string
	Output    string
}

// Result summarises a finished job.
type Result struct {
	Paths   Paths
	Pages   int
	Entries int
	Depth   int
}

// Bookmarker runs jobs with one configuration.
type Bookmarker struct {
	cfg config.Config
	log *slog.Logger
}

func New(cfg config.Config, log *slog.Logger) *Bookmarker {
	return &Bookmarker{cfg: cfg, log: log}
}

// Resolve fills in default paths: the listing next to the input with a .txt
// extension, and the output next to the input with the configured suffix.
func (b *Bookmarker) Resolve(p Paths) Paths {
	ext := filepath.Ext(p.Input)
	base := strings.TrimSuffix(p.Input, ext)
	if p.Bookmarks == "" {
		p.Bookmarks = base + ".txt"
	}
	if p.Output == "" {
		p.Output = base + b.cfg.OutputSuffix + ext
	}
	return p
}

// ParseFile reads the listing at path, choosing the format by extension.
func (b *Bookmarker) ParseFile(path string) (bookmark.Tree, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &bookmark.SourceReadError{Err: err}
	}
	defer f.Close()
	return b.Parse(f, path)
}

// Parse reads a listing from r; name selects the format.
func (b *Bookmarker) Parse(r io.Reader, name string) (bookmark.Tree, error) {
	src, err := source.ForFile(name, b.cfg.Marker)
	if err != nil {
		return nil, err
	}
	tree, err := src.Parse(r, name)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	return tree, nil
}

// Run bookmarks p.Input with the listing p.Bookmarks and writes p.Output.
func (b *Bookmarker) Run(ctx context.Context, p Paths) (*Result, error) {
	start := time.Now()
	p = b.Resolve(p)

	tree, err := b.ParseFile(p.Bookmarks)
	if err != nil {
		return nil, err
	}
	b.log.Debug("parsed bookmarks", "file", p.Bookmarks, "entries", tree.Count(), "depth", tree.Depth())
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc, err := pdfdoc.Open(p.Input)
	if err != nil {
		return nil, err
	}
	if err := b.attach(ctx, doc, tree); err != nil {
		return nil, err
	}
	if err := doc.WriteFile(p.Output); err != nil {
		return nil, err
	}

	res := &Result{Paths: p, Pages: doc.PageCount(), Entries: doc.Entries(), Depth: tree.Depth()}
	b.log.Info("bookmarks added",
		"input", p.Input,
		"output", p.Output,
		"entries", res.Entries,
		"pages", res.Pages,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

// Bookmark is Run over in-memory documents: the PDF is read from pdf, the
// listing from listing, and the result is written to w.
func (b *Bookmarker) Bookmark(ctx context.Context, pdf io.Reader, pdfName string, listing io.Reader, listingName string, w io.Writer) (*Result, error) {
	tree, err := b.Parse(listing, listingName)
	if err != nil {
		return nil, err
	}
	doc, err := pdfdoc.Read(pdf, pdfName)
	if err != nil {
		return nil, err
	}
	if err := b.attach(ctx, doc, tree); err != nil {
		return nil, err
	}
	if err := doc.Write(w); err != nil {
		return nil, err
	}
	return &Result{
		Paths:   Paths{Input: pdfName, Bookmarks: listingName},
		Pages:   doc.PageCount(),
		Entries: doc.Entries(),
		Depth:   tree.Depth(),
	}, nil
}

func (b *Bookmarker) attach(ctx context.Context, doc *pdfdoc.Document, tree bookmark.Tree) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := outline.Apply(tree, doc); err != nil {
		return fmt.Errorf("%s: %w", doc.Name(), err)
	}
	return ctx.Err()
}

// Export writes the existing outline of the PDF at path as a listing.
func (b *Bookmarker) Export(path string, w io.Writer) error {
	doc, err := pdfdoc.Open(path)
	if err != nil {
		return err
	}
	return b.ExportDocument(doc, w)
}

// ExportDocument writes the existing outline of doc as a listing.
func (b *Bookmarker) ExportDocument(doc *pdfdoc.Document, w io.Writer) error {
	tree, err := doc.Outline()
	if err != nil {
		return err
	}
	b.log.Debug("exporting outline", "file", doc.Name(), "entries", tree.Count())
	return bookmark.Format(w, tree, b.cfg.Marker)
}
