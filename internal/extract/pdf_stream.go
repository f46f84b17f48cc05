// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package extract

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// StreamBackend extracts PDF text by parsing content-stream text operators
// directly. It has no notion of layout, but it survives documents whose
// page trees confuse the positional parser, and pdfcpu's optimizer repairs
// many structural defects along the way.
type StreamBackend struct{}

// NewStreamBackend creates the content-stream backend.
func NewStreamBackend() *StreamBackend {
	return &StreamBackend{}
}

// Name returns the backend identifier.
func (sb *StreamBackend) Name() string {
	return "stream"
}

// Extract reads, validates and optimizes the document, then walks each
// page's content stream for text-showing operators.
func (sb *StreamBackend) Extract(data []byte) (*Result, error) {
	conf := model.NewDefaultConfiguration()
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return nil, fmt.Errorf("pdfcpu read: %w", err)
	}

	result := NewResult("pdf")
	result.Metadata["pages"] = ctx.PageCount

	if hasImageStreams(ctx) {
		result.AddDiagnostic("document contains image streams, text may be incomplete")
	}

	var buf bytes.Buffer
	for pageNr := 1; pageNr <= ctx.PageCount; pageNr++ {
		reader, err := pdfcpu.ExtractPageContent(ctx, pageNr)
		if err != nil {
			result.AddDiagnostic("page %d: extract content: %v", pageNr, err)
			continue
		}
		content, err := io.ReadAll(reader)
		if err != nil || len(content) == 0 {
			continue
		}

		pageText := parseContentStream(content)
		if strings.TrimSpace(pageText) == "" {
			continue
		}

		fmt.Fprintf(&buf, "\n--- Page %d ---\n", pageNr)
		buf.WriteString(pageText)
		buf.WriteString("\n")
	}

	result.Text = buf.String()
	return result, nil
}

// hasImageStreams checks whether any page carries image XObjects, a hint
// that the document may be scanned.
func hasImageStreams(ctx *model.Context) bool {
	if ctx.Optimize == nil {
		return false
	}
	for pageNr := 1; pageNr <= ctx.PageCount; pageNr++ {
		if len(pdfcpu.ImageObjNrs(ctx, pageNr)) > 0 {
			return true
		}
	}
	return false
}

// pdfStringRe matches PDF string literals in parentheses: (text here)
var pdfStringRe = regexp.MustCompile(`\(([^)]*)\)`)

// parseContentStream walks a content stream line by line and emits the
// arguments of the text-showing operators Tj, TJ and '. The positioning
// operators Td, TD and T* become a space or line break so words and lines
// stay separated.
func parseContentStream(data []byte) string {
	var out strings.Builder

	for _, line := range bytes.Split(data, []byte{'\n'}) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}

		switch {
		case bytes.HasSuffix(line, []byte("Tj")), bytes.HasSuffix(line, []byte("TJ")):
			for _, m := range pdfStringRe.FindAllSubmatch(line, -1) {
				out.WriteString(decodePDFString(m[1]))
			}

		case bytes.HasSuffix(line, []byte("'")) && bytes.Contains(line, []byte("(")):
			for _, m := range pdfStringRe.FindAllSubmatch(line, -1) {
				if text := decodePDFString(m[1]); text != "" {
					out.WriteByte('\n')
					out.WriteString(text)
				}
			}

		case bytes.HasSuffix(line, []byte("Td")), bytes.HasSuffix(line, []byte("TD")):
			if out.Len() > 0 {
				out.WriteByte(' ')
			}

		case bytes.Equal(line, []byte("T*")):
			out.WriteByte('\n')
		}
	}

	return tidyStreamText(out.String())
}

// decodePDFString resolves backslash escapes in a PDF string literal,
// including up-to-three-digit octal codes.
func decodePDFString(raw []byte) string {
	var out strings.Builder
	for i := 0; i < len(raw); i++ {
		if raw[i] != '\\' || i+1 >= len(raw) {
			out.WriteByte(raw[i])
			continue
		}
		i++
		switch raw[i] {
		case 'n':
			out.WriteByte('\n')
		case 'r':
			out.WriteByte('\r')
		case 't':
			out.WriteByte('\t')
		case '\\', '(', ')':
			out.WriteByte(raw[i])
		default:
			if raw[i] >= '0' && raw[i] <= '7' {
				val := int(raw[i] - '0')
				for d := 0; d < 2 && i+1 < len(raw) && raw[i+1] >= '0' && raw[i+1] <= '7'; d++ {
					i++
					val = val*8 + int(raw[i]-'0')
				}
				out.WriteByte(byte(val))
			} else {
				out.WriteByte(raw[i])
			}
		}
	}
	return out.String()
}

// tidyStreamText collapses runs of spaces and drops non-printable runes
// while keeping line breaks, so downstream section detection still sees
// line structure.
func tidyStreamText(text string) string {
	lines := strings.Split(text, "\n")
	cleaned := lines[:0]
	for _, line := range lines {
		var out strings.Builder
		prevSpace := false
		for _, r := range line {
			switch {
			case r == ' ' || r == '\t':
				if !prevSpace && out.Len() > 0 {
					out.WriteByte(' ')
					prevSpace = true
				}
			case unicode.IsPrint(r):
				out.WriteRune(r)
				prevSpace = false
			}
		}
		if trimmed := strings.TrimSpace(out.String()); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	return strings.Join(cleaned, "\n")
}
