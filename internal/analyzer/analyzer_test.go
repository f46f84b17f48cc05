// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package analyzer

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"clause-scan/internal/config"
	"clause-scan/internal/extract"
)

func testConfig() *config.Config {
	defaults := config.Weights{
		Primary:   config.DefaultPrimaryWeight,
		Secondary: config.DefaultSecondaryWeight,
		Pattern:   config.DefaultPatternWeight,
		Context:   config.DefaultContextWeight,
	}
	return &config.Config{
		Global: config.GlobalConfig{DefaultConfidenceThreshold: 0.5},
		Definitions: map[string]config.Definition{
			"termination": {
				PrimaryKeywords:   []string{"termination", "terminated", "terminate"},
				ContextClues:      []string{"notice"},
				Weights:           defaults,
				MinimumConfidence: 0.5,
			},
			"confidentiality": {
				PrimaryKeywords:   []string{"confidential", "confidentiality", "non-disclosure"},
				Weights:           defaults,
				MinimumConfidence: 0.5,
			},
		},
	}
}

func testAnalyzer() *Analyzer {
	return New(testConfig(), nil, log.New(io.Discard))
}

func TestAnalyzeEndToEnd(t *testing.T) {
	a := testAnalyzer()

	text := "This Agreement may be terminated by either party upon providing thirty (30) days written notice. Termination shall not affect accrued payment obligations."
	result, err := a.Analyze([]byte(text), "contract.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	termination := result.Clauses["termination"]
	if termination == NotFound {
		t.Fatal("expected a termination clause")
	}
	if !strings.Contains(termination, "(Confidence:") {
		t.Errorf("confidence annotation missing: %q", termination)
	}
	if !strings.Contains(termination, "terminated") {
		t.Errorf("clause text missing: %q", termination)
	}

	if got := result.Clauses["confidentiality"]; got != NotFound {
		t.Errorf("confidentiality = %q, want %q", got, NotFound)
	}
}

func TestAnalyzeReport(t *testing.T) {
	a := testAnalyzer()

	text := "1. Termination\nEither party may terminate this agreement with notice.\n\n2. Fees\nFees are due monthly in advance of the term."
	result, err := a.Analyze([]byte(text), "contract.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	r := result.Report
	if r.Format != "txt" {
		t.Errorf("format = %q, want txt", r.Format)
	}
	if r.RawLength == 0 || r.CleanedLength == 0 {
		t.Errorf("lengths not recorded: %+v", r)
	}
	if r.SectionCount != 2 {
		t.Errorf("section count = %d, want 2", r.SectionCount)
	}
	if r.SentenceCount == 0 || r.SegmentCount == 0 {
		t.Errorf("segmentation counts not recorded: %+v", r)
	}
	if r.FallbackUsed {
		t.Error("fallback must not engage on a healthy document")
	}
}

func TestAnalyzeNilLogger(t *testing.T) {
	cfg := testConfig()
	def := cfg.Definitions["termination"]
	def.Patterns = []config.Pattern{{Regex: "(unclosed"}}
	cfg.Definitions["termination"] = def

	// nil logger means silent; a malformed pattern must still only be
	// skipped, not crash pipeline construction
	a := New(cfg, nil, nil)

	result, err := a.Analyze([]byte("This Agreement may be terminated by either party upon written notice."), "contract.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Clauses["termination"] == NotFound {
		t.Error("keyword scoring must survive a dropped pattern")
	}
}

func TestAnalyzeUnsupportedFormat(t *testing.T) {
	a := testAnalyzer()

	_, err := a.Analyze([]byte{0x00, 0x01}, "image.bmp")
	if !errors.Is(err, extract.ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestExtractByKeywords(t *testing.T) {
	text := "1. Scope\nThe supplier provides services.\n\n2. Termination\nEither party may terminate with notice.\n\n3. Fees\nFees are due monthly."

	got := ExtractByKeywords(text, []string{"terminate"})
	if !strings.Contains(got, "Either party may terminate") {
		t.Errorf("keyword paragraph not extracted: %q", got)
	}
	if strings.Contains(got, "Fees are due") {
		t.Errorf("extract leaked past paragraph boundary: %q", got)
	}
}

func TestExtractByKeywordsNotFound(t *testing.T) {
	if got := ExtractByKeywords("nothing relevant here", []string{"indemnity"}); got != NotFound {
		t.Errorf("got %q, want %q", got, NotFound)
	}
}

func TestExtractByKeywordsNarrowsLongExtract(t *testing.T) {
	filler := strings.Repeat("filler line with many words to inflate length beyond the cap\n", 30)
	text := filler + "the agreement may terminate early\n" + filler

	got := ExtractByKeywords(text, []string{"terminate"})
	if len(got) > 1000 {
		t.Errorf("oversized extract not narrowed: %d chars", len(got))
	}
	if !strings.Contains(got, "terminate early") {
		t.Errorf("keyword line lost during narrowing: %q", got)
	}
}
