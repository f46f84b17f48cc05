// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package analyzer

import (
	"strings"
)

// maxExtractLength bounds a fallback extract before it is narrowed to
// the paragraph actually containing the keyword.
const maxExtractLength = 1000

// ExtractByKeywords is the degraded-mode clause extractor: locate the
// first occurrence of any keyword, expand to the enclosing paragraph by
// nearest blank-line boundaries, and narrow oversized extracts back to
// the lines around the keyword. Returns NotFound when no keyword occurs.
func ExtractByKeywords(text string, keywords []string) string {
	lower := strings.ToLower(text)

	for _, keyword := range keywords {
		keyword = strings.ToLower(strings.TrimSpace(keyword))
		if keyword == "" {
			continue
		}
		index := strings.Index(lower, keyword)
		if index < 0 {
			continue
		}

		extracted := expandToParagraph(text, index)
		if len(extracted) > maxExtractLength {
			extracted = narrowToKeyword(extracted, keyword)
		}
		return extracted
	}

	return NotFound
}

// expandToParagraph grows a keyword hit to its enclosing blank-line
// delimited block, falling back to single-newline boundaries when the
// document has no blank lines before the hit.
func expandToParagraph(text string, index int) string {
	start := strings.LastIndex(text[:index], "\n\n")
	if start < 0 {
		start = strings.LastIndex(text[:index], "\n")
		if start < 0 {
			start = 0
		}
	}

	end := strings.Index(text[index:], "\n\n")
	if end < 0 {
		end = len(text)
	} else {
		end += index
	}

	return strings.TrimSpace(text[start:end])
}

// narrowToKeyword trims an oversized extract to the line containing the
// keyword plus one line of leading and two of trailing context.
func narrowToKeyword(extracted, keyword string) string {
	lines := strings.Split(extracted, "\n")
	for i, line := range lines {
		if !strings.Contains(strings.ToLower(line), keyword) {
			continue
		}
		start := max(0, i-1)
		end := min(len(lines), i+3)
		return strings.Join(lines[start:end], "\n")
	}
	return extracted
}
