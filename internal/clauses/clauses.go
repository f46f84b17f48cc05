// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package clauses implements the rule-based confidence engine. Clause
// definitions are compiled once into an immutable pattern table, shared
// by reference across all analysis calls; scoring is a pure function
// over that table.
package clauses

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"clause-scan/internal/config"
	"clause-scan/internal/segment"
)

// Candidate is one scored clause match.
type Candidate struct {
	// ClauseType names the matched definition
	ClauseType string `json:"clause_type"`

	// SegmentID identifies the window the match came from
	SegmentID int `json:"segment_id"`

	// Text is the window text
	Text string `json:"text"`

	// Confidence in [0,1]
	Confidence float64 `json:"confidence"`
}

// compiledDefinition is the immutable compiled form of one clause
// definition.
type compiledDefinition struct {
	primary   *regexp.Regexp
	secondary *regexp.Regexp
	negative  *regexp.Regexp
	patterns  []*regexp.Regexp
	context   []*regexp.Regexp
	weights   config.Weights
	threshold float64
}

// Table is the compiled clause-definition table.
type Table struct {
	defs  map[string]*compiledDefinition
	order []string
}

// Compile builds the pattern table from loaded configuration. A
// malformed pattern is logged and skipped; everything else in its
// definition stays usable. A nil logger means silent.
func Compile(cfg *config.Config, logger *log.Logger) *Table {
	table := &Table{defs: make(map[string]*compiledDefinition, len(cfg.Definitions))}

	for name := range cfg.Definitions {
		table.order = append(table.order, name)
	}
	sort.Strings(table.order)

	for _, name := range table.order {
		def := cfg.Definitions[name]
		cd := &compiledDefinition{
			weights:   def.Weights,
			threshold: def.MinimumConfidence,
		}

		cd.primary = compileKeywords(def.PrimaryKeywords, def.CaseSensitive)
		cd.secondary = compileKeywords(def.SecondaryKeywords, def.CaseSensitive)
		cd.negative = compileKeywords(def.NegativeKeywords, def.CaseSensitive)

		for _, pattern := range def.Patterns {
			re, err := compilePattern(pattern, def.CaseSensitive)
			if err != nil {
				if logger != nil {
					logger.Warn("skipping malformed pattern",
						"clause_type", name, "pattern", patternSource(pattern), "error", err)
				}
				continue
			}
			cd.patterns = append(cd.patterns, re)
		}

		for _, clue := range def.ContextClues {
			cd.context = append(cd.context, compileClue(clue, def.CaseSensitive))
		}

		table.defs[name] = cd
	}

	return table
}

// Types returns the clause type names in deterministic order.
func (t *Table) Types() []string {
	return t.order
}

// Threshold returns the minimum confidence for one clause type.
func (t *Table) Threshold(clauseType string) float64 {
	if cd, ok := t.defs[clauseType]; ok {
		return cd.threshold
	}
	return config.DefaultConfidenceThreshold
}

// Score computes the confidence that text expresses the given clause
// type. Negative keywords veto unconditionally; secondary keywords and
// context clues only ever boost a score anchored by a primary keyword or
// an explicit pattern match.
func (t *Table) Score(text, clauseType string) float64 {
	cd, ok := t.defs[clauseType]
	if !ok || text == "" {
		return 0.0
	}

	if cd.negative != nil && cd.negative.MatchString(text) {
		return 0.0
	}

	total := 0.0
	hasPrimary := false
	hasPattern := false

	if cd.primary != nil {
		if n := len(cd.primary.FindAllString(text, -1)); n > 0 {
			total += min(1.0, float64(n)*cd.weights.Primary)
			hasPrimary = true
		}
	}

	if cd.secondary != nil {
		if n := len(cd.secondary.FindAllString(text, -1)); n > 0 {
			total += min(1.0, float64(n)*cd.weights.Secondary)
		}
	}

	matched := 0
	for _, re := range cd.patterns {
		if re.MatchString(text) {
			matched++
		}
	}
	if matched > 0 {
		total += min(1.0, float64(matched)*cd.weights.Pattern)
		hasPattern = true
	}

	clueMatches := 0
	for _, re := range cd.context {
		if re.MatchString(text) {
			clueMatches++
		}
	}
	if clueMatches > 0 {
		total += min(1.0, float64(clueMatches)*cd.weights.Context)
	}

	if !hasPrimary && !hasPattern {
		return 0.0
	}

	return min(1.0, max(0.0, total))
}

// Engine scores sentence windows against every clause type.
type Engine struct {
	table     *Table
	segmenter *segment.Segmenter
}

// NewEngine creates an engine over a compiled table.
func NewEngine(table *Table, segmenter *segment.Segmenter) *Engine {
	return &Engine{table: table, segmenter: segmenter}
}

// Table returns the engine's compiled table.
func (e *Engine) Table() *Table {
	return e.table
}

// Extract segments text into sliding windows, scores every window
// against every clause type, and returns the candidates that meet their
// type's threshold, sorted by descending confidence. The sort is stable:
// ties preserve discovery order.
func (e *Engine) Extract(text string) []Candidate {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	windows := segment.Windows(e.segmenter.Split(text), 3)

	var candidates []Candidate
	for _, window := range windows {
		for _, clauseType := range e.table.order {
			confidence := e.table.Score(window.Text, clauseType)
			if confidence >= e.table.Threshold(clauseType) {
				candidates = append(candidates, Candidate{
					ClauseType: clauseType,
					SegmentID:  window.ID,
					Text:       window.Text,
					Confidence: confidence,
				})
			}
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Confidence > candidates[j].Confidence
	})
	return candidates
}

// compileKeywords builds one word-bounded alternation over a keyword
// list. Returns nil for an empty list.
func compileKeywords(keywords []string, caseSensitive bool) *regexp.Regexp {
	if len(keywords) == 0 {
		return nil
	}

	escaped := make([]string, 0, len(keywords))
	for _, keyword := range keywords {
		if keyword = strings.TrimSpace(keyword); keyword != "" {
			escaped = append(escaped, regexp.QuoteMeta(keyword))
		}
	}
	if len(escaped) == 0 {
		return nil
	}

	expr := `\b(?:` + strings.Join(escaped, "|") + `)\b`
	if !caseSensitive {
		expr = "(?i)" + expr
	}
	return regexp.MustCompile(expr)
}

// compilePattern compiles one configured pattern. Explicit regexes are
// used as written; literal phrases become whitespace-flexible,
// punctuation-optional, word-bounded expressions.
func compilePattern(pattern config.Pattern, caseSensitive bool) (*regexp.Regexp, error) {
	if pattern.Regex != "" {
		expr := pattern.Regex
		if !caseSensitive {
			expr = "(?i)" + expr
		}
		return regexp.Compile(expr)
	}

	literal := strings.TrimSpace(pattern.Literal)
	if literal == "" {
		return nil, fmt.Errorf("empty pattern")
	}

	expr := regexp.QuoteMeta(literal)

	// Any run of whitespace in the phrase matches any run in the text.
	expr = strings.ReplaceAll(expr, " ", `\s+`)

	// Punctuation inside the phrase is optional in the text.
	for _, punct := range []string{`\.`, ",", ";", ":", "-", "!"} {
		expr = strings.ReplaceAll(expr, punct, punct+"?")
	}

	expr = `\b` + expr + `\b`
	if caseSensitive {
		expr = "(?s)" + expr
	} else {
		expr = "(?is)" + expr
	}
	return regexp.Compile(expr)
}

// compileClue builds the word-bounded matcher for one context clue.
func compileClue(clue string, caseSensitive bool) *regexp.Regexp {
	expr := `\b` + regexp.QuoteMeta(strings.TrimSpace(clue)) + `\b`
	if !caseSensitive {
		expr = "(?i)" + expr
	}
	return regexp.MustCompile(expr)
}

// patternSource renders a pattern for log output.
func patternSource(pattern config.Pattern) string {
	if pattern.Regex != "" {
		return pattern.Regex
	}
	return pattern.Literal
}
