// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package extract

import (
	"bytes"
	"fmt"
	"image/png"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/otiai10/gosseract/v2"
)

// OCREngine recognizes text in documents whose pages carry no extractable
// text layer.
type OCREngine interface {
	// Name returns the engine identifier recorded in results
	Name() string

	// Recognize rasterizes the document and recognizes text per page
	Recognize(data []byte) (*Result, error)
}

// TesseractEngine rasterizes PDF pages with MuPDF and feeds the images to
// Tesseract. Construction fails when the Tesseract runtime or its
// language data is not installed, in which case callers run without
// optical recognition.
type TesseractEngine struct {
	language string
}

// NewTesseractEngine probes the Tesseract runtime and returns an engine
// bound to the given language ("eng" when empty).
func NewTesseractEngine(language string) (*TesseractEngine, error) {
	if language == "" {
		language = "eng"
	}

	client := gosseract.NewClient()
	defer client.Close()
	if err := client.SetLanguage(language); err != nil {
		return nil, fmt.Errorf("tesseract language %q unavailable: %w", language, err)
	}

	return &TesseractEngine{language: language}, nil
}

// Name returns the engine identifier.
func (te *TesseractEngine) Name() string {
	return "ocr"
}

// Recognize renders each page to an image and runs character recognition
// over it. Pages that fail to render or recognize become diagnostics
// rather than hard failures.
func (te *TesseractEngine) Recognize(data []byte) (*Result, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("rasterize document: %w", err)
	}
	defer doc.Close()

	client := gosseract.NewClient()
	defer client.Close()
	if err := client.SetLanguage(te.language); err != nil {
		return nil, fmt.Errorf("tesseract language %q: %w", te.language, err)
	}

	result := NewResult("pdf")
	result.Metadata["pages"] = doc.NumPage()
	result.Metadata["ocr_language"] = te.language

	var buf bytes.Buffer
	for pageIdx := 0; pageIdx < doc.NumPage(); pageIdx++ {
		img, err := doc.Image(pageIdx)
		if err != nil {
			result.AddDiagnostic("page %d: render: %v", pageIdx+1, err)
			continue
		}

		var encoded bytes.Buffer
		if err := png.Encode(&encoded, img); err != nil {
			result.AddDiagnostic("page %d: encode: %v", pageIdx+1, err)
			continue
		}

		if err := client.SetImageFromBytes(encoded.Bytes()); err != nil {
			result.AddDiagnostic("page %d: load image: %v", pageIdx+1, err)
			continue
		}
		text, err := client.Text()
		if err != nil {
			result.AddDiagnostic("page %d: recognize: %v", pageIdx+1, err)
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}

		fmt.Fprintf(&buf, "\n--- Page %d (OCR) ---\n", pageIdx+1)
		buf.WriteString(text)
		buf.WriteString("\n")
	}

	result.Text = buf.String()
	return result, nil
}
