// Package source reads bookmark listings from the file formats people keep
// tables of contents in. Every format goes through bookmark.Builder, so the
// nesting rules are the same everywhere.
package source

import (
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/dgallion1/pdfbm/internal/bookmark"
)

// Source converts a bookmark listing into a tree.
type Source interface {
	Parse(r io.Reader, filename string) (bookmark.Tree, error)
}

// SupportedExtensions lists file extensions that can hold a listing.
var SupportedExtensions = map[string]bool{
	"":          true,
	".txt":      true,
	".md":       true,
	".markdown": true,
	".csv":      true,
	".html":     true,
	".htm":      true,
	".docx":     true,
}

// ForFile returns the Source for a filename. Files without an extension are
// read as plain listings.
func ForFile(filename string, marker rune) (Source, error) {
	if marker == 0 {
		marker = bookmark.DefaultMarker
	}
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case "", ".txt":
		return &Text{Marker: marker}, nil
	case ".md", ".markdown":
		return &Markdown{}, nil
	case ".csv":
		return &CSV{}, nil
	case ".html", ".htm":
		return &HTML{}, nil
	case ".docx":
		return &DOCX{Marker: marker}, nil
	default:
		return nil, fmt.Errorf("unsupported bookmarks file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

var (
	// "Title | 12" or "\"Title\" | 12" as list item text.
	itemPattern = regexp.MustCompile(`^(.+?)\s*\|\s*(\d+)\s*$`)
	// #page=12, the PDF open parameter form, as a link target.
	pageFragment = regexp.MustCompile(`(?:^|[#&])page=(\d+)(?:&|$)`)
)

// splitItem parses list item text of the form "Title | page".
func splitItem(text string) (title string, page int, ok bool) {
	m := itemPattern.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return "", 0, false
	}
	page, err := strconv.Atoi(m[2])
	if err != nil {
		return "", 0, false
	}
	title = strings.TrimSpace(m[1])
	if len(title) >= 2 && strings.HasPrefix(title, `"`) && strings.HasSuffix(title, `"`) {
		title = title[1 : len(title)-1]
	}
	if title == "" {
		return "", 0, false
	}
	return title, page, true
}

// linkPage extracts the page number from a "#page=N" link target.
func linkPage(href string) (int, bool) {
	m := pageFragment.FindStringSubmatch(href)
	if m == nil {
		return 0, false
	}
	page, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return page, true
}
