// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package extract

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Result represents the outcome of extracting text from one document.
// Extractors never fail hard: problems encountered along the way are
// collected in Diagnostics, and the caller decides whether an empty
// Text is fatal for its request.
type Result struct {
	// Extracted text, possibly empty
	Text string

	// Document metadata (author, title, timestamps, counts...)
	Metadata map[string]any

	// Detected format ("pdf", "docx", "txt")
	Format string

	// Identifier of the backend that produced the text
	Backend string

	// Non-fatal problems encountered during extraction
	Diagnostics []string
}

// NewResult creates an empty result for the given format.
func NewResult(format string) *Result {
	return &Result{
		Format:   format,
		Metadata: make(map[string]any),
	}
}

// HasText reports whether the result carries non-whitespace text.
func (r *Result) HasText() bool {
	return strings.TrimSpace(r.Text) != ""
}

// AddDiagnostic records a non-fatal extraction problem.
func (r *Result) AddDiagnostic(format string, args ...any) {
	r.Diagnostics = append(r.Diagnostics, fmt.Sprintf(format, args...))
}

// Extractor defines the per-format extraction strategy contract.
// Extract captures failures as diagnostics inside the result instead of
// returning an error.
type Extractor interface {
	// Name returns the name of this extractor
	Name() string

	// Extensions returns the file extensions this extractor supports
	Extensions() []string

	// Extract turns raw document bytes into text and metadata
	Extract(data []byte, filename string) *Result
}

// Sentinel errors for the extraction boundary. Each is fatal to a single
// analysis call only.
var (
	// ErrUnsupportedFormat indicates the filename extension and content
	// type are both unrecognized
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrEmptyContent indicates extraction succeeded but produced only
	// whitespace
	ErrEmptyContent = errors.New("document contains no extractable text")
)

// ChainError aggregates the per-backend diagnostics produced when every
// extraction strategy for a format has failed.
type ChainError struct {
	Format      string
	Diagnostics []string
}

func (e *ChainError) Error() string {
	return fmt.Sprintf("all %s extraction backends failed: %s", e.Format, strings.Join(e.Diagnostics, "; "))
}

// Manager routes documents to the appropriate format extractor.
type Manager struct {
	extractors []Extractor
	byExt      map[string]Extractor
}

// NewManager creates a manager with no registered extractors.
func NewManager() *Manager {
	return &Manager{
		byExt: make(map[string]Extractor),
	}
}

// Register adds an extractor to the manager.
func (m *Manager) Register(e Extractor) {
	m.extractors = append(m.extractors, e)
	for _, ext := range e.Extensions() {
		m.byExt[ext] = e
	}
}

// Supported reports whether a filename maps to a registered extractor.
func (m *Manager) Supported(filename string) bool {
	_, ok := m.byExt[strings.ToLower(filepath.Ext(filename))]
	return ok
}

// Extensions returns the union of all registered file extensions.
func (m *Manager) Extensions() []string {
	var exts []string
	for _, e := range m.extractors {
		exts = append(exts, e.Extensions()...)
	}
	return exts
}

// Extract runs the appropriate extractor for the given document.
// Format detection prefers the filename extension and falls back to
// content sniffing for unknown or missing extensions. Returns
// ErrUnsupportedFormat when neither identifies a registered format, and
// ErrEmptyContent when extraction yields only whitespace.
func (m *Manager) Extract(data []byte, filename string) (*Result, error) {
	e := m.lookup(data, filename)
	if e == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filename)
	}

	result := e.Extract(data, filename)
	if !result.HasText() {
		// No text at all plus diagnostics means extraction itself failed;
		// whitespace-only text means the document is simply empty.
		if result.Text == "" && len(result.Diagnostics) > 0 {
			return result, &ChainError{Format: result.Format, Diagnostics: result.Diagnostics}
		}
		return result, fmt.Errorf("%w: %s", ErrEmptyContent, filename)
	}

	return result, nil
}

// lookup resolves the extractor for a document, by extension first and
// content type second.
func (m *Manager) lookup(data []byte, filename string) Extractor {
	ext := strings.ToLower(filepath.Ext(filename))
	if e, ok := m.byExt[ext]; ok {
		return e
	}

	// Extension unknown: sniff the content type as a backup
	mtype := mimetype.Detect(data)
	switch {
	case mtype.Is("application/pdf"):
		return m.byExt[".pdf"]
	case mtype.Is("application/vnd.openxmlformats-officedocument.wordprocessingml.document"):
		return m.byExt[".docx"]
	case strings.HasPrefix(mtype.String(), "text/"):
		return m.byExt[".txt"]
	}

	return nil
}
