// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package extract

import (
	"github.com/charmbracelet/log"
)

// PDFBackend is one strategy for pulling text out of a PDF byte buffer.
// A backend succeeds only when it returns non-whitespace text; anything
// else (error or empty output) sends the chain on to the next backend.
type PDFBackend interface {
	// Name returns the backend identifier recorded in results
	Name() string

	// Extract attempts text extraction from the raw PDF bytes
	Extract(data []byte) (*Result, error)
}

// PDFExtractor runs an ordered backend chain over a PDF document. The
// order is a fixed policy: richer structural extraction is preferred over
// raw stream extraction, and first success wins so conflicting layouts
// never need reconciling. When the whole chain yields only whitespace,
// an optical-recognition engine (if one was available at startup) gets a
// last attempt; it runs last because rasterizing and recognizing every
// page is by far the slowest path.
type PDFExtractor struct {
	backends []PDFBackend
	ocr      OCREngine
	logger   *log.Logger
}

// NewPDFExtractor creates a PDF extractor with the default backend chain:
// layout (positional row reconstruction), stream (content-stream operator
// parsing), rawscan (decompressed-object literal scan). The ocr engine
// may be nil when optical recognition is unavailable.
func NewPDFExtractor(ocr OCREngine, logger *log.Logger) *PDFExtractor {
	return &PDFExtractor{
		backends: []PDFBackend{
			NewLayoutBackend(),
			NewStreamBackend(),
			NewRawScanBackend(),
		},
		ocr:    ocr,
		logger: logger,
	}
}

// NewPDFExtractorWithBackends creates a PDF extractor with an explicit
// backend chain.
func NewPDFExtractorWithBackends(backends []PDFBackend, ocr OCREngine, logger *log.Logger) *PDFExtractor {
	return &PDFExtractor{backends: backends, ocr: ocr, logger: logger}
}

// Name returns the name of this extractor.
func (pe *PDFExtractor) Name() string {
	return "pdf"
}

// Extensions returns the file extensions this extractor supports.
func (pe *PDFExtractor) Extensions() []string {
	return []string{".pdf"}
}

// Extract tries each backend in order and returns the first result with
// non-whitespace text. Failures from earlier backends are carried forward
// as diagnostics on the winning result so the caller can see why a
// richer strategy was skipped.
func (pe *PDFExtractor) Extract(data []byte, filename string) *Result {
	result := NewResult("pdf")

	for _, backend := range pe.backends {
		backendResult, err := backend.Extract(data)
		if err != nil {
			result.AddDiagnostic("%s: %v", backend.Name(), err)
			if pe.logger != nil {
				pe.logger.Debug("pdf backend failed", "backend", backend.Name(), "error", err)
			}
			continue
		}
		if !backendResult.HasText() {
			result.AddDiagnostic("%s: returned no text", backend.Name())
			continue
		}

		backendResult.Format = "pdf"
		backendResult.Backend = backend.Name()
		backendResult.Diagnostics = append(result.Diagnostics, backendResult.Diagnostics...)
		return backendResult
	}

	// Structured extraction has definitively failed; the document is
	// likely scanned. Hand the pages to optical recognition.
	if pe.ocr != nil {
		if pe.logger != nil {
			pe.logger.Info("pdf backend chain exhausted, engaging optical recognition")
		}
		ocrResult, err := pe.ocr.Recognize(data)
		if err != nil {
			result.AddDiagnostic("%s: %v", pe.ocr.Name(), err)
			return result
		}
		ocrResult.Format = "pdf"
		ocrResult.Backend = pe.ocr.Name()
		ocrResult.Diagnostics = append(result.Diagnostics, ocrResult.Diagnostics...)
		return ocrResult
	}

	result.AddDiagnostic("optical recognition unavailable")
	return result
}
