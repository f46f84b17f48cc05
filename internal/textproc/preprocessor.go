// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package textproc normalizes extracted document text before section
// detection and clause scoring. Cleaning is deterministic and idempotent:
// running Clean on its own output returns the input unchanged.
package textproc

import (
	"regexp"
	"strings"
)

var (
	// Structural banners inserted by the extractors. They help humans read
	// raw extraction output but would pollute clause sentences.
	pageBannerRe    = regexp.MustCompile(`(?m)^--- Page \d+( \(OCR\))? ---$`)
	tableBannerRe   = regexp.MustCompile(`(?m)^--- Table \d+ ---$`)
	trailerBannerRe = regexp.MustCompile(`(?m)^--- Headers/Footers ---$`)
	partLabelRe     = regexp.MustCompile(`(?m)^(Header|Footer): `)

	multiSpaceRe   = regexp.MustCompile(`[ \t]{2,}`)
	multiNewlineRe = regexp.MustCompile(`\n{3,}`)
)

// smartPunctuation maps typographic punctuation to its ASCII equivalent.
// Contract keyword and pattern matching is ASCII-based, so curly quotes
// and long dashes must not hide matches.
var smartPunctuation = strings.NewReplacer(
	"‘", "'", // left single quote
	"’", "'", // right single quote
	"“", `"`, // left double quote
	"”", `"`, // right double quote
	"–", "-", // en dash
	"—", "-", // em dash
	"‐", "-", // hyphen
	"‑", "-", // non-breaking hyphen
	"…", "...", // ellipsis
	"\u00a0", " ", // non-breaking space
)

// Clean normalizes extracted text: extractor banners are removed, smart
// punctuation is mapped to ASCII, remaining non-ASCII runes become
// spaces, whitespace runs collapse, and every line is trimmed. Paragraph
// breaks (blank lines) survive so paragraph-level heuristics still work
// downstream.
func Clean(text string) string {
	if text == "" {
		return ""
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	text = pageBannerRe.ReplaceAllString(text, "")
	text = tableBannerRe.ReplaceAllString(text, "")
	text = trailerBannerRe.ReplaceAllString(text, "")
	text = partLabelRe.ReplaceAllString(text, "")

	text = smartPunctuation.Replace(text)
	text = replaceNonASCII(text)

	text = multiSpaceRe.ReplaceAllString(text, " ")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	text = strings.Join(lines, "\n")

	// Collapse blank-line runs after trimming so lines of pure whitespace
	// count as blank.
	text = multiNewlineRe.ReplaceAllString(text, "\n\n")

	return strings.Trim(text, "\n")
}

// replaceNonASCII substitutes a space for every rune outside the
// printable ASCII range, keeping tabs and newlines.
func replaceNonASCII(text string) string {
	var out strings.Builder
	out.Grow(len(text))
	for _, r := range text {
		if (r >= 32 && r < 127) || r == '\n' || r == '\t' {
			out.WriteRune(r)
		} else {
			out.WriteByte(' ')
		}
	}
	return out.String()
}

// Paragraphs splits cleaned text into its blank-line separated blocks,
// dropping empties.
func Paragraphs(text string) []string {
	var paragraphs []string
	for _, block := range strings.Split(text, "\n\n") {
		if block = strings.TrimSpace(block); block != "" {
			paragraphs = append(paragraphs, block)
		}
	}
	return paragraphs
}
