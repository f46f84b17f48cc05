// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package sections splits cleaned contract text into its structural
// sections by recognizing the header conventions common in legal
// drafting: decimal numbering, Section/Article prefixes, Roman numerals,
// letter enumerations, and all-caps or title-case heading lines.
package sections

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Section is one structural unit of a contract document.
type Section struct {
	// Number as written in the header ("3.", "1.2.", "IV.", "(a)")
	Number string `json:"number"`

	// Title with the numbering stripped
	Title string `json:"title"`

	// Content holds the body text up to the next header
	Content string `json:"content"`

	// Start and End are rune-agnostic byte offsets into the cleaned text
	Start int `json:"start_pos"`
	End   int `json:"end_pos"`

	// Level is the hierarchical depth derived from the numbering shape
	Level int `json:"level"`

	// Type is the topical classification of the title
	Type string `json:"type"`
}

// headerPattern couples a header regexp with how its groups map to
// number and title. Patterns with two groups capture both; patterns with
// one group capture a title only and are numbered by discovery order.
type headerPattern struct {
	re        *regexp.Regexp
	hasNumber bool
}

var headerPatterns = []headerPattern{
	// Decimal numbering: "1.", "2.3.", "4.1.2."
	{regexp.MustCompile(`(?m)^(\d+(?:\.\d+)*\.)[ \t]+(.+)$`), true},

	// Section/Article prefix: "Section 4: Term", "ARTICLE 7"
	{regexp.MustCompile(`(?mi)^(?:Section|Article)[ \t]+(\d+(?:\.\d+)*)[:.]?[ \t]*(.*)$`), true},

	// Roman numerals: "IV. Confidentiality"
	{regexp.MustCompile(`(?m)^([IVX]+\.)[ \t]+(.+)$`), true},

	// Capital letter enumeration: "A. Definitions"
	{regexp.MustCompile(`(?m)^([A-Z]\.)[ \t]+(.+)$`), true},

	// Parenthesized lowercase letters: "(a) each party shall..."
	{regexp.MustCompile(`(?m)^(\([a-z]\))[ \t]+(.+)$`), true},

	// Standalone all-caps heading line
	{regexp.MustCompile(`(?m)^([A-Z][A-Z ]{2,})$`), false},

	// Standalone title-case heading line, optional trailing colon
	{regexp.MustCompile(`(?m)^([A-Z][a-z ]+(?:[A-Z][a-z ]+)*):?[ \t]*$`), false},
}

// sectionKeywords are recognized topical classifications, checked against
// the lowercased title by substring.
var sectionKeywords = []string{
	"definitions", "interpretation", "parties", "scope", "term", "duration",
	"obligations", "payment", "fees", "termination", "confidentiality",
	"warranty", "liability", "indemnification", "dispute", "governing law",
	"amendment", "assignment", "force majeure", "severability",
	"entire agreement", "notices", "counterparts", "execution",
	"representations", "covenants",
}

// Detector splits documents into sections.
type Detector struct{}

// NewDetector creates a section detector.
func NewDetector() *Detector {
	return &Detector{}
}

type header struct {
	start, end    int
	number, title string
	fullMatch     string
}

// Detect splits cleaned text into sections. A document in which no header
// matches becomes a single whole-document section, so callers always get
// at least one section for non-empty input.
func (d *Detector) Detect(text string) []Section {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	headers := findHeaders(text)
	if len(headers) == 0 {
		return []Section{{
			Number:  "1",
			Title:   "Document Content",
			Content: text,
			Start:   0,
			End:     len(text),
			Level:   1,
			Type:    "content",
		}}
	}

	sections := make([]Section, 0, len(headers))
	for i, h := range headers {
		end := len(text)
		if i+1 < len(headers) {
			end = headers[i+1].start
		}

		content := strings.TrimSpace(text[h.start:end])
		content = strings.TrimSpace(strings.TrimPrefix(content, h.fullMatch))

		sections = append(sections, Section{
			Number:  h.number,
			Title:   h.title,
			Content: content,
			Start:   h.start,
			End:     end,
			Level:   levelFromNumber(h.number),
			Type:    classifyTitle(h.title),
		})
	}
	return sections
}

// findHeaders collects every header match across all patterns, sorted by
// offset and deduplicated.
func findHeaders(text string) []header {
	var headers []header

	for _, hp := range headerPatterns {
		for _, loc := range hp.re.FindAllStringSubmatchIndex(text, -1) {
			h := header{
				start:     loc[0],
				end:       loc[1],
				fullMatch: text[loc[0]:loc[1]],
			}
			if hp.hasNumber {
				h.number = strings.TrimSpace(text[loc[2]:loc[3]])
				if loc[4] >= 0 {
					h.title = strings.TrimSpace(text[loc[4]:loc[5]])
				}
			} else {
				// Heading-line patterns have no numbering of their own
				h.title = strings.TrimSpace(text[loc[2]:loc[3]])
				h.number = strconv.Itoa(len(headers) + 1)
			}
			headers = append(headers, h)
		}
	}

	sort.SliceStable(headers, func(i, j int) bool {
		return headers[i].start < headers[j].start
	})

	return dedupeHeaders(headers)
}

// dedupeHeaders drops matches that overlap the previous accepted header
// or repeat its title; several patterns can match the same line.
func dedupeHeaders(headers []header) []header {
	if len(headers) == 0 {
		return nil
	}

	deduped := headers[:1]
	for _, h := range headers[1:] {
		last := deduped[len(deduped)-1]
		if h.start-last.end < 10 {
			continue
		}
		if normalizeTitle(h.title) == normalizeTitle(last.title) {
			continue
		}
		deduped = append(deduped, h)
	}
	return deduped
}

var nonWordRe = regexp.MustCompile(`[^a-z0-9 ]`)

// normalizeTitle lowercases a title and strips punctuation for
// duplicate comparison.
func normalizeTitle(title string) string {
	return strings.TrimSpace(nonWordRe.ReplaceAllString(strings.ToLower(title), ""))
}

var (
	levelOneRe   = regexp.MustCompile(`^\d+\.$`)
	levelTwoRe   = regexp.MustCompile(`^\d+\.\d+\.$`)
	levelThreeRe = regexp.MustCompile(`^\d+\.\d+\.\d+\.$`)
	romanRe      = regexp.MustCompile(`^[IVX]+\.$`)
	capitalRe    = regexp.MustCompile(`^[A-Z]\.$`)
	parenRe      = regexp.MustCompile(`^\([a-z]\)$`)
)

// levelFromNumber derives hierarchical depth from the numbering shape.
func levelFromNumber(number string) int {
	switch {
	case levelOneRe.MatchString(number), romanRe.MatchString(number):
		return 1
	case levelTwoRe.MatchString(number), capitalRe.MatchString(number):
		return 2
	case levelThreeRe.MatchString(number), parenRe.MatchString(number):
		return 3
	default:
		return 1
	}
}

// classifyTitle maps a section title to a topical type. Unrecognized
// titles classify as "general".
func classifyTitle(title string) string {
	lower := strings.ToLower(title)

	for _, keyword := range sectionKeywords {
		if strings.Contains(lower, keyword) {
			return keyword
		}
	}

	switch {
	case containsAny(lower, "definition", "meaning", "interpretation"):
		return "definitions"
	case containsAny(lower, "payment", "fee", "cost", "price"):
		return "payment"
	case containsAny(lower, "term", "duration", "period"):
		return "term"
	case containsAny(lower, "obligation", "duty", "requirement"):
		return "obligations"
	case containsAny(lower, "termination", "expiration", "end"):
		return "termination"
	case containsAny(lower, "confidential", "non-disclosure", "privacy"):
		return "confidentiality"
	case containsAny(lower, "dispute", "resolution", "arbitration"):
		return "dispute"
	}
	return "general"
}

func containsAny(s string, substrings ...string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// ByType returns the sections whose classification matches sectionType.
func ByType(sections []Section, sectionType string) []Section {
	var matched []Section
	for _, s := range sections {
		if s.Type == sectionType {
			matched = append(matched, s)
		}
	}
	return matched
}

// ByLevel returns the sections at the given hierarchical level.
func ByLevel(sections []Section, level int) []Section {
	var matched []Section
	for _, s := range sections {
		if s.Level == level {
			matched = append(matched, s)
		}
	}
	return matched
}

// Structure renders a one-line-per-section outline of the document, with
// indentation following section level.
func Structure(sections []Section) string {
	var sb strings.Builder
	for _, s := range sections {
		indent := strings.Repeat("  ", s.Level-1)
		fmt.Fprintf(&sb, "%s%s %s [%s]\n", indent, s.Number, s.Title, s.Type)
	}
	return sb.String()
}
