package source

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/dgallion1/pdfbm/internal/bookmark"
)

// CSV reads rows of depth,title,page. A header row and rows that do not have
// that shape are skipped.
type CSV struct{}

func (s *CSV) Parse(r io.Reader, filename string) (bookmark.Tree, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	b := bookmark.NewBuilder()
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &bookmark.SourceReadError{Err: err}
		}
		line, ok := csvRow(record)
		if !ok {
			continue
		}
		if err := b.Add(line); err != nil {
			return nil, err
		}
	}
	return b.Tree(), nil
}

func csvRow(record []string) (bookmark.Line, bool) {
	if len(record) < 3 {
		return bookmark.Line{}, false
	}
	depth, err := strconv.Atoi(strings.TrimSpace(record[0]))
	if err != nil || depth < 0 {
		return bookmark.Line{}, false
	}
	title := strings.TrimSpace(record[1])
	if title == "" {
		return bookmark.Line{}, false
	}
	page, err := strconv.Atoi(strings.TrimSpace(record[2]))
	if err != nil || page < 0 {
		return bookmark.Line{}, false
	}
	return bookmark.Line{
		Depth: depth,
		Title: title,
		Page:  page,
		Raw:   strings.Join(record, ","),
	}, true
}
