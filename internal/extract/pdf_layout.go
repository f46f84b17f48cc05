// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package extract

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// LayoutBackend extracts PDF text with positional row reconstruction.
// Text fragments are grouped into rows, rows sorted top to bottom, and
// fragments within a row sorted left to right with spacing inferred from
// coordinate gaps. This produces the best reading order for contracts
// laid out in columns or with hanging indents.
type LayoutBackend struct{}

// NewLayoutBackend creates the positional-reconstruction backend.
func NewLayoutBackend() *LayoutBackend {
	return &LayoutBackend{}
}

// Name returns the backend identifier.
func (lb *LayoutBackend) Name() string {
	return "layout"
}

// Extract reads the document page by page, reconstructing each page from
// its positioned text fragments.
func (lb *LayoutBackend) Extract(data []byte) (result *Result, err error) {
	// The underlying parser panics on some malformed cross-reference
	// tables; treat that as a normal backend failure.
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("parser panic: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	result = NewResult("pdf")
	pageCount := reader.NumPage()
	result.Metadata["pages"] = pageCount

	var buf bytes.Buffer
	for pageNum := 1; pageNum <= pageCount; pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			result.AddDiagnostic("page %d: null page object", pageNum)
			continue
		}

		pageText, err := extractPageByRows(page)
		if err != nil {
			result.AddDiagnostic("page %d: %v", pageNum, err)
			continue
		}
		if strings.TrimSpace(pageText) == "" {
			continue
		}

		fmt.Fprintf(&buf, "\n--- Page %d ---\n", pageNum)
		buf.WriteString(pageText)
	}

	result.Text = buf.String()
	extractInfoMetadata(reader, result)
	return result, nil
}

// extractPageByRows reconstructs one page from its positioned fragments,
// falling back to the library's plain text walk when row grouping fails.
func extractPageByRows(page pdf.Page) (string, error) {
	rows, err := page.GetTextByRow()
	if err != nil {
		return page.GetPlainText(nil)
	}

	sortedRows := make([]*pdf.Row, 0, len(rows))
	for _, row := range rows {
		if row != nil && len(row.Content) > 0 {
			sortedRows = append(sortedRows, row)
		}
	}

	// PDF user space puts the origin at the bottom-left, so top-of-page
	// rows carry the highest Y.
	sort.Slice(sortedRows, func(i, j int) bool {
		return averageY(sortedRows[i].Content) > averageY(sortedRows[j].Content)
	})

	var buf bytes.Buffer
	for _, row := range sortedRows {
		rowText := reconstructRow(row.Content)
		if strings.TrimSpace(rowText) != "" {
			buf.WriteString(rowText)
			buf.WriteString("\n")
		}
	}
	return buf.String(), nil
}

// averageY is the mean Y coordinate of a row's fragments.
func averageY(fragments []pdf.Text) float64 {
	if len(fragments) == 0 {
		return 0
	}
	var total float64
	for _, fragment := range fragments {
		total += fragment.Y
	}
	return total / float64(len(fragments))
}

// reconstructRow joins a row's fragments left to right, inserting a space
// wherever the horizontal gap between fragments exceeds 20% of the font
// size.
func reconstructRow(fragments []pdf.Text) string {
	if len(fragments) == 0 {
		return ""
	}

	sorted := make([]pdf.Text, len(fragments))
	copy(sorted, fragments)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].X < sorted[j].X
	})

	var buf bytes.Buffer
	for i, fragment := range sorted {
		buf.WriteString(fragment.S)

		if i < len(sorted)-1 {
			gap := sorted[i+1].X - (fragment.X + fragment.W)
			fontSize := fragment.FontSize
			if fontSize <= 0 {
				fontSize = 12
			}
			if gap > fontSize*0.2 {
				buf.WriteString(" ")
			}
		}
	}
	return buf.String()
}

// infoFields maps PDF Info dictionary keys to metadata keys.
var infoFields = map[string]string{
	"Title":        "title",
	"Author":       "author",
	"Subject":      "subject",
	"Creator":      "creator",
	"Producer":     "producer",
	"CreationDate": "created",
	"ModDate":      "modified",
}

// extractInfoMetadata copies the document Info dictionary into the result
// metadata.
func extractInfoMetadata(reader *pdf.Reader, result *Result) {
	defer func() {
		// Malformed Info dictionaries can panic inside the value walker;
		// metadata is best-effort.
		_ = recover()
	}()

	info := reader.Trailer().Key("Info")
	if info.IsNull() || info.Kind() != pdf.Dict {
		return
	}

	for key, metaKey := range infoFields {
		value := info.Key(key)
		if !value.IsNull() && value.Kind() == pdf.String {
			if text := strings.TrimSpace(value.Text()); text != "" {
				result.Metadata[metaKey] = text
			}
		}
	}
}
