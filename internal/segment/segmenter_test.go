// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package segment

import (
	"strings"
	"testing"
)

func TestSplitBasicSentences(t *testing.T) {
	s := NewSegmenter()

	text := "This Agreement may be terminated by either party. Termination shall not affect accrued payment obligations."
	got := s.Split(text)

	if len(got) != 2 {
		t.Fatalf("expected 2 sentences, got %d: %#v", len(got), got)
	}
	if !strings.HasPrefix(got[1], "Termination") {
		t.Errorf("unexpected second sentence: %q", got[1])
	}
}

func TestSplitDropsShortFragments(t *testing.T) {
	s := NewSegmenter()

	got := s.Split("Hi. This is a sentence long enough to survive the filter.")

	for _, sentence := range got {
		if len(sentence) < 10 {
			t.Errorf("fragment below minimum length survived: %q", sentence)
		}
	}
	if len(got) != 1 {
		t.Errorf("expected 1 surviving sentence, got %d: %#v", len(got), got)
	}
}

func TestSplitEmpty(t *testing.T) {
	s := NewSegmenter()
	if got := s.Split("  \n "); got != nil {
		t.Errorf("expected nil for blank input, got %#v", got)
	}
}

func TestFallbackSplitProtectsAbbreviations(t *testing.T) {
	got := fallbackSplit("The notice was sent to Acme Corp. by courier yesterday. A second copy went to Dr. Smith at the main office.")

	if len(got) != 2 {
		t.Fatalf("expected 2 sentences, got %d: %#v", len(got), got)
	}
	if !strings.Contains(got[0], "Corp.") {
		t.Errorf("abbreviation period lost: %q", got[0])
	}
	if !strings.Contains(got[1], "Dr. Smith") {
		t.Errorf("abbreviation split a sentence: %#v", got)
	}
}

func TestWindowsCountProperty(t *testing.T) {
	// For n sentences and max window size 3 the total window count is
	// the sum over w=1..min(3,n) of n-w+1.
	for _, n := range []int{0, 1, 2, 3, 5, 8} {
		sentenceList := make([]string, n)
		for i := range sentenceList {
			sentenceList[i] = "sentence"
		}

		want := 0
		for w := 1; w <= 3 && w <= n; w++ {
			want += n - w + 1
		}

		got := Windows(sentenceList, 3)
		if len(got) != want {
			t.Errorf("n=%d: got %d windows, want %d", n, len(got), want)
		}

		for i, window := range got {
			if window.ID != i {
				t.Fatalf("n=%d: window %d has id %d, ids must follow generation order", n, i, window.ID)
			}
		}
	}
}

func TestWindowsClampsOversizedMax(t *testing.T) {
	sentenceList := []string{
		"First sentence here.", "Second sentence here.",
		"Third sentence here.", "Fourth sentence here.",
	}

	// an oversized max must behave exactly like the cap
	got := Windows(sentenceList, 10)
	want := Windows(sentenceList, 3)
	if len(got) != len(want) {
		t.Fatalf("got %d windows, want %d", len(got), len(want))
	}
	for _, window := range got {
		if window.Size > 3 {
			t.Errorf("window exceeds size cap: %+v", window)
		}
	}
}

func TestWindowsJoinWithSingleSpace(t *testing.T) {
	got := Windows([]string{"First sentence here.", "Second sentence here."}, 2)

	// 2 size-1 windows followed by 1 size-2 window
	if len(got) != 3 {
		t.Fatalf("expected 3 windows, got %d", len(got))
	}
	last := got[len(got)-1]
	if last.Text != "First sentence here. Second sentence here." {
		t.Errorf("unexpected joined window: %q", last.Text)
	}
	if last.Start != 0 || last.Size != 2 {
		t.Errorf("unexpected window span: %+v", last)
	}
}
