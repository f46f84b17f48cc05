// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package segment splits cleaned contract text into sentences and builds
// the sliding sentence windows that clause scoring runs over.
package segment

import (
	"regexp"
	"strings"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
)

// minSentenceLength filters out fragments (page numbers, list markers,
// stray initials) that cannot carry a clause.
const minSentenceLength = 10

// Segmenter splits text into sentences using a trained tokenizer, with a
// regexp fallback when tokenizer construction fails.
type Segmenter struct {
	tokenizer *sentences.DefaultSentenceTokenizer
}

// NewSegmenter creates a segmenter backed by the English sentence
// tokenizer. The fallback splitter is used when the training data cannot
// be loaded.
func NewSegmenter() *Segmenter {
	tokenizer, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		return &Segmenter{}
	}
	return &Segmenter{tokenizer: tokenizer}
}

// Split returns the sentences of text in document order, trimmed, with
// fragments shorter than the minimum length dropped.
func (s *Segmenter) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var raw []string
	if s.tokenizer != nil {
		for _, sentence := range s.tokenizer.Tokenize(text) {
			raw = append(raw, sentence.Text)
		}
	} else {
		raw = fallbackSplit(text)
	}

	var out []string
	for _, sentence := range raw {
		sentence = strings.TrimSpace(sentence)
		if len(sentence) >= minSentenceLength {
			out = append(out, sentence)
		}
	}
	return out
}

// abbreviations that end with a period but do not end a sentence.
var abbreviations = []string{
	"Mr", "Mrs", "Ms", "Dr", "Prof", "Corp", "Inc", "Ltd", "Co", "LLC",
	"vs", "etc", "al", "Jr", "Sr", "St", "No", "Sec", "Art",
}

var sentenceEndRe = regexp.MustCompile(`([.!?])\s+`)

// periodMask temporarily replaces abbreviation periods so the splitter
// does not break on them.
const periodMask = "\x00"

// fallbackSplit is a regexp sentence splitter that protects common
// abbreviations by masking their trailing period before splitting.
func fallbackSplit(text string) []string {
	masked := text
	for _, abbr := range abbreviations {
		masked = strings.ReplaceAll(masked, abbr+". ", abbr+periodMask+" ")
	}

	masked = sentenceEndRe.ReplaceAllString(masked, "$1\n")

	var out []string
	for _, line := range strings.Split(masked, "\n") {
		line = strings.ReplaceAll(line, periodMask, ".")
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// Window is a span of consecutive sentences considered as one clause
// candidate.
type Window struct {
	// ID is unique within one document analysis, in generation order
	ID int

	// Text is the joined sentence span
	Text string

	// Start is the index of the first sentence in the span
	Start int

	// Size is the number of sentences in the span
	Size int
}

// maxWindowSize caps a window at three consecutive sentences; longer
// spans dilute keyword density faster than they add clause context.
const maxWindowSize = 3

// Windows builds all sliding windows of 1 up to maxSize consecutive
// sentences, with maxSize clamped to [1, 3]. For n sentences and window
// size w there are n-w+1 windows, so the total count is the sum over w
// of max(0, n-w+1).
func Windows(sentenceList []string, maxSize int) []Window {
	if maxSize < 1 {
		maxSize = 1
	}
	if maxSize > maxWindowSize {
		maxSize = maxWindowSize
	}

	var windows []Window
	id := 0
	for size := 1; size <= maxSize; size++ {
		for start := 0; start+size <= len(sentenceList); start++ {
			windows = append(windows, Window{
				ID:    id,
				Text:  strings.Join(sentenceList[start:start+size], " "),
				Start: start,
				Size:  size,
			})
			id++
		}
	}
	return windows
}
