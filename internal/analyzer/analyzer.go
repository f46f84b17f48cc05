// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package analyzer composes extraction, preprocessing, section
// detection, segmentation and clause scoring into a single call from
// raw document bytes to per-clause-type results.
package analyzer

import (
	"fmt"

	"github.com/charmbracelet/log"

	"clause-scan/internal/clauses"
	"clause-scan/internal/config"
	"clause-scan/internal/extract"
	"clause-scan/internal/sections"
	"clause-scan/internal/segment"
	"clause-scan/internal/textproc"
)

// NotFound is the literal reported for a clause type with no surviving
// candidate.
const NotFound = "Not found"

// Report carries processing facts for one analysis call, for debugging
// why a clause was or was not found.
type Report struct {
	Format        string   `json:"format"`
	Backend       string   `json:"backend"`
	RawLength     int      `json:"raw_length"`
	CleanedLength int      `json:"cleaned_length"`
	SectionCount  int      `json:"section_count"`
	SentenceCount int      `json:"sentence_count"`
	SegmentCount  int      `json:"segment_count"`
	FallbackUsed  bool     `json:"fallback_used"`
	Diagnostics   []string `json:"diagnostics,omitempty"`
}

// AnalysisResult maps each configured clause type to its best candidate,
// rendered as "text (Confidence: P%)", or to "Not found".
type AnalysisResult struct {
	Clauses  map[string]string  `json:"clauses"`
	Sections []sections.Section `json:"sections,omitempty"`
	Metadata map[string]any     `json:"metadata,omitempty"`
	Report   Report             `json:"report"`
}

// Analyzer is the pipeline orchestrator. It is safe for concurrent use:
// the compiled clause table is read-only and every call's intermediate
// state is call-local.
type Analyzer struct {
	cfg       *config.Config
	manager   *extract.Manager
	detector  *sections.Detector
	segmenter *segment.Segmenter
	engine    *clauses.Engine
	logger    *log.Logger
}

// New wires the full pipeline. The ocr engine may be nil when optical
// recognition is unavailable on this host.
func New(cfg *config.Config, ocr extract.OCREngine, logger *log.Logger) *Analyzer {
	manager := extract.NewManager()
	manager.Register(extract.NewTextExtractor())
	manager.Register(extract.NewDOCXExtractor())
	manager.Register(extract.NewPDFExtractor(ocr, logger))

	segmenter := segment.NewSegmenter()
	table := clauses.Compile(cfg, logger)

	return &Analyzer{
		cfg:       cfg,
		manager:   manager,
		detector:  sections.NewDetector(),
		segmenter: segmenter,
		engine:    clauses.NewEngine(table, segmenter),
		logger:    logger,
	}
}

// Manager exposes the extractor registry, for callers that only need
// text extraction.
func (a *Analyzer) Manager() *extract.Manager {
	return a.manager
}

// Analyze runs the whole pipeline over one document. Extraction failure
// is the only hard error; a scoring failure degrades to the keyword
// heuristic instead of failing the call.
func (a *Analyzer) Analyze(data []byte, filename string) (*AnalysisResult, error) {
	extracted, err := a.manager.Extract(data, filename)
	if err != nil {
		return nil, err
	}

	cleaned := textproc.Clean(extracted.Text)
	sentences := a.segmenter.Split(cleaned)
	detected := a.detector.Detect(cleaned)

	result := &AnalysisResult{
		Clauses:  make(map[string]string),
		Sections: detected,
		Metadata: extracted.Metadata,
		Report: Report{
			Format:        extracted.Format,
			Backend:       extracted.Backend,
			RawLength:     len(extracted.Text),
			CleanedLength: len(cleaned),
			SectionCount:  len(detected),
			SentenceCount: len(sentences),
			SegmentCount:  len(segment.Windows(sentences, 3)),
			Diagnostics:   extracted.Diagnostics,
		},
	}

	candidates, scoringFailed := a.scoreClauses(cleaned)
	if scoringFailed {
		result.Report.FallbackUsed = true
		a.applyFallback(cleaned, result)
		return result, nil
	}

	best := bestPerType(candidates)
	for _, clauseType := range a.engine.Table().Types() {
		if candidate, ok := best[clauseType]; ok {
			result.Clauses[clauseType] = fmt.Sprintf("%s (Confidence: %.0f%%)",
				candidate.Text, candidate.Confidence*100)
		} else {
			result.Clauses[clauseType] = NotFound
		}
	}

	return result, nil
}

// scoreClauses runs the rule engine, converting a panic into a fallback
// signal so one bad document cannot take down the caller.
func (a *Analyzer) scoreClauses(cleaned string) (candidates []clauses.Candidate, failed bool) {
	defer func() {
		if r := recover(); r != nil {
			if a.logger != nil {
				a.logger.Error("clause scoring failed, using keyword fallback", "panic", r)
			}
			failed = true
		}
	}()
	return a.engine.Extract(cleaned), false
}

// bestPerType keeps the highest-confidence candidate per clause type.
// Candidates arrive sorted descending, so the first seen per type wins.
func bestPerType(candidates []clauses.Candidate) map[string]clauses.Candidate {
	best := make(map[string]clauses.Candidate)
	for _, candidate := range candidates {
		if _, seen := best[candidate.ClauseType]; !seen {
			best[candidate.ClauseType] = candidate
		}
	}
	return best
}

// applyFallback fills the result with keyword-heuristic extractions for
// every configured clause type.
func (a *Analyzer) applyFallback(cleaned string, result *AnalysisResult) {
	for name, def := range a.cfg.Definitions {
		keywords := append(append([]string{}, def.PrimaryKeywords...), def.SecondaryKeywords...)
		result.Clauses[name] = ExtractByKeywords(cleaned, keywords)
	}
}
