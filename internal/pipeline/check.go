package pipeline

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/pdfbm/internal/bookmark"
	"github.com/dgallion1/pdfbm/internal/outline"
	"github.com/dgallion1/pdfbm/internal/pdfdoc"
)

// CheckEntry is one bookmark as it would be attached.
type CheckEntry struct {
	Depth      int
	Title      string
	Page       int // zero-based
	Preview    string
	OutOfRange bool
}

// Report is the outcome of a dry run.
type Report struct {
	Paths   Paths
	Pages   int
	Entries []CheckEntry
}

// Problems counts entries pointing past the end of the document.
func (r *Report) Problems() int {
	n := 0
	for _, e := range r.Entries {
		if e.OutOfRange {
			n++
		}
	}
	return n
}

// Check parses the listing and resolves every bookmark against the PDF
// without writing anything. Each entry carries the first line of text of its
// target page so page offsets can be verified by eye.
func (b *Bookmarker) Check(ctx context.Context, p Paths) (*Report, error) {
	p = b.Resolve(p)

	tree, err := b.ParseFile(p.Bookmarks)
	if err != nil {
		return nil, err
	}
	doc, err := pdfdoc.Open(p.Input)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// The recorder gives the same traversal order the real run uses.
	rec := &outline.Recorder{}
	if err := outline.Apply(tree, rec); err != nil {
		return nil, err
	}

	pages := make([]int, 0, len(rec.Calls))
	for _, c := range rec.Calls {
		pages = append(pages, c.Page)
	}
	previews, err := doc.Previews(pages)
	if err != nil {
		b.log.Warn("page previews unavailable", "file", p.Input, "error", err)
		previews = map[int]string{}
	}

	report := &Report{Paths: p, Pages: doc.PageCount()}
	depths := make(map[outline.Handle]int, len(rec.Calls))
	for _, c := range rec.Calls {
		depth := 0
		if c.Parent != nil {
			depth = depths[c.Parent] + 1
		}
		depths[c.Handle] = depth
		report.Entries = append(report.Entries, CheckEntry{
			Depth:      depth,
			Title:      c.Title,
			Page:       c.Page,
			Preview:    previews[c.Page],
			OutOfRange: c.Page < 0 || c.Page >= report.Pages,
		})
	}
	return report, nil
}

// WriteReport prints r as an indented table of contents.
func WriteReport(w io.Writer, r *Report, marker rune) error {
	if marker == 0 {
		marker = bookmark.DefaultMarker
	}
	for _, e := range r.Entries {
		line := fmt.Sprintf("%s%q", strings.Repeat(string(marker), e.Depth), e.Title)
		status := fmt.Sprintf("p.%d", e.Page+1)
		if e.OutOfRange {
			status += fmt.Sprintf(" (document has %d pages)", r.Pages)
		} else if e.Preview != "" {
			status += "  " + e.Preview
		}
		rep := max(48-len([]rune(line)), 3)
		if _, err := fmt.Fprintf(w, "%s %s %s\n", line, strings.Repeat(".", rep), status); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "%d bookmarks, %d pages, %d problems\n", len(r.Entries), r.Pages, r.Problems())
	return err
}
