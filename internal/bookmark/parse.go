package bookmark

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Line is one matched line of a bookmark listing.
type Line struct {
	Depth int
	Title string
	Page  int // 1-based, as written
	Raw   string
}

// SourceReadError reports a listing that could not be read or decoded.
type SourceReadError struct {
	LineNo int // 0 when the failure is not tied to a line
	Err    error
}

func (e *SourceReadError) Error() string {
	if e.LineNo > 0 {
		return fmt.Sprintf("read bookmarks: line %d: %v", e.LineNo, e.Err)
	}
	return fmt.Sprintf("read bookmarks: %v", e.Err)
}

func (e *SourceReadError) Unwrap() error {
	return e.Err
}

// Matcher recognises bookmark lines for one depth marker.
type Matcher struct {
	marker rune
	re     *regexp.Regexp
}

var defaultMatcher = NewMatcher(DefaultMarker)

// NewMatcher returns a Matcher using marker as the depth marker.
func NewMatcher(marker rune) *Matcher {
	m := regexp.QuoteMeta(string(marker))
	return &Matcher{
		marker: marker,
		re:     regexp.MustCompile(`^((?:` + m + `)*)\s*"([^"]+)"\s*\|\s*(\d+)`),
	}
}

// Marker returns the depth marker of m.
func (m *Matcher) Marker() rune {
	return m.marker
}

// Match parses s. Lines without a quoted title followed by a pipe and a page
// number report false.
func (m *Matcher) Match(s string) (Line, bool) {
	raw := strings.TrimSpace(s)
	groups := m.re.FindStringSubmatch(raw)
	if groups == nil {
		return Line{}, false
	}
	page, err := strconv.Atoi(groups[3])
	if err != nil {
		// Only reachable on overflow; such a line cannot name a page.
		return Line{}, false
	}
	return Line{
		Depth: utf8.RuneCountInString(groups[1]),
		Title: groups[2],
		Page:  page,
		Raw:   raw,
	}, true
}

// ParseLine matches s using the default '+' marker.
func ParseLine(s string) (Line, bool) {
	return defaultMatcher.Match(s)
}

type options struct {
	marker rune
}

// Option configures Parse and Build.
type Option func(*options)

// WithMarker sets the depth marker character.
func WithMarker(marker rune) Option {
	return func(o *options) {
		if marker != 0 {
			o.marker = marker
		}
	}
}

func newMatcher(opts []Option) *Matcher {
	o := options{marker: DefaultMarker}
	for _, opt := range opts {
		opt(&o)
	}
	if o.marker == DefaultMarker {
		return defaultMatcher
	}
	return NewMatcher(o.marker)
}

// Parse reads a listing from r and returns its tree. Lines that are not
// bookmarks are skipped.
func Parse(r io.Reader, opts ...Option) (Tree, error) {
	m := newMatcher(opts)
	b := NewBuilder()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		text := scanner.Text()
		if lineNo == 1 {
			text = strings.TrimPrefix(text, "\ufeff")
		}
		if !utf8.ValidString(text) {
			return nil, &SourceReadError{LineNo: lineNo, Err: fmt.Errorf("invalid UTF-8")}
		}
		line, ok := m.Match(text)
		if !ok {
			continue
		}
		if err := b.Add(line); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, &SourceReadError{Err: err}
	}

	return b.Tree(), nil
}

// Build parses an in-memory listing.
func Build(lines []string, opts ...Option) (Tree, error) {
	m := newMatcher(opts)
	b := NewBuilder()
	for _, s := range lines {
		line, ok := m.Match(s)
		if !ok {
			continue
		}
		if err := b.Add(line); err != nil {
			return nil, err
		}
	}
	return b.Tree(), nil
}
