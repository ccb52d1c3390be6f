package pdfdoc

import (
	"bytes"
	"fmt"
	"strings"

	pdflib "github.com/ledongthuc/pdf"
)

const previewRunes = 60

// Previews returns the first line of text on each requested zero-based page.
// Pages without extractable text, or outside the document, map to "".
func (d *Document) Previews(pages []int) (map[int]string, error) {
	reader, err := pdflib.NewReader(bytes.NewReader(d.data), int64(len(d.data)))
	if err != nil {
		return nil, fmt.Errorf("read pdf text of %s: %w", d.name, err)
	}

	numPages := reader.NumPage()
	out := make(map[int]string, len(pages))
	for _, p := range pages {
		if _, done := out[p]; done {
			continue
		}
		out[p] = ""
		if p < 0 || p >= numPages {
			continue
		}
		page := reader.Page(p + 1)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		out[p] = firstLine(text)
	}
	return out, nil
}

func firstLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			continue
		}
		if r := []rune(line); len(r) > previewRunes {
			return string(r[:previewRunes-1]) + "…"
		}
		return line
	}
	return ""
}
