// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package sections

import (
	"strings"
	"testing"
)

func TestDetectNumberedSections(t *testing.T) {
	text := "1. Definitions\nTerms used herein have the meanings below.\n\n2. Fees\nInvoices are due within thirty days.\n\n3. Confidentiality\nEach party shall protect the other's information."

	d := NewDetector()
	got := d.Detect(text)

	if len(got) != 3 {
		t.Fatalf("expected 3 sections, got %d: %#v", len(got), got)
	}

	if got[0].Number != "1." || got[0].Title != "Definitions" {
		t.Errorf("unexpected first header: %+v", got[0])
	}
	if got[0].Type != "definitions" {
		t.Errorf("expected definitions type, got %q", got[0].Type)
	}
	if got[1].Type != "fees" {
		t.Errorf("expected fees type, got %q", got[1].Type)
	}
	if got[2].Type != "confidentiality" {
		t.Errorf("expected confidentiality type, got %q", got[2].Type)
	}

	if strings.Contains(got[1].Content, "2. Fees") {
		t.Errorf("header text not stripped from content: %q", got[1].Content)
	}
	if !strings.Contains(got[1].Content, "thirty days") {
		t.Errorf("content lost: %q", got[1].Content)
	}
}

func TestDetectNoHeaderFallback(t *testing.T) {
	text := "just some plain sentences without any structure at all."

	d := NewDetector()
	got := d.Detect(text)

	if len(got) != 1 {
		t.Fatalf("expected exactly 1 section, got %d", len(got))
	}
	s := got[0]
	if s.Level != 1 || s.Type != "content" || s.Title != "Document Content" {
		t.Errorf("unexpected fallback section: %+v", s)
	}
	if s.Start != 0 || s.End != len(text) {
		t.Errorf("fallback section must span whole document, got [%d,%d)", s.Start, s.End)
	}
}

func TestDetectEmptyText(t *testing.T) {
	d := NewDetector()
	if got := d.Detect("   \n \n"); got != nil {
		t.Errorf("expected nil for blank text, got %#v", got)
	}
}

func TestDetectDeduplicatesOverlap(t *testing.T) {
	// "I." matches both the Roman-numeral and the capital-letter pattern
	// at the same offset; only one section may survive.
	text := "I. Definitions\nThe defined terms appear in this section of the agreement."

	d := NewDetector()
	got := d.Detect(text)

	if len(got) != 1 {
		t.Fatalf("expected 1 section after dedupe, got %d: %#v", len(got), got)
	}
	if got[0].Level != 1 {
		t.Errorf("Roman numeral should be level 1, got %d", got[0].Level)
	}
}

func TestDetectDeduplicatesRepeatedTitle(t *testing.T) {
	text := "1. Payment\nAll fees are payable in advance of the service period.\n\nPayment\nThe repeated heading above must not create a second section."

	d := NewDetector()
	got := d.Detect(text)

	if len(got) != 1 {
		t.Fatalf("expected repeated title to dedupe, got %d sections: %#v", len(got), got)
	}
}

func TestLevelFromNumberShapes(t *testing.T) {
	cases := map[string]int{
		"1.":     1,
		"2.3.":   2,
		"4.1.2.": 3,
		"IV.":    1,
		"B.":     2,
		"(a)":    3,
		"weird":  1,
	}
	for number, want := range cases {
		if got := levelFromNumber(number); got != want {
			t.Errorf("levelFromNumber(%q) = %d, want %d", number, got, want)
		}
	}
}

func TestByTypeAndByLevel(t *testing.T) {
	list := []Section{
		{Title: "Term", Type: "term", Level: 1},
		{Title: "Payment", Type: "payment", Level: 2},
		{Title: "Late Fees", Type: "payment", Level: 2},
	}

	if got := ByType(list, "payment"); len(got) != 2 {
		t.Errorf("ByType(payment) = %d sections, want 2", len(got))
	}
	if got := ByLevel(list, 1); len(got) != 1 {
		t.Errorf("ByLevel(1) = %d sections, want 1", len(got))
	}
}

func TestStructureOutline(t *testing.T) {
	list := []Section{
		{Number: "1.", Title: "Term", Type: "term", Level: 1},
		{Number: "1.1.", Title: "Renewal", Type: "term", Level: 2},
	}

	outline := Structure(list)
	lines := strings.Split(strings.TrimRight(outline, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 outline lines, got %d", len(lines))
	}
	if !strings.HasPrefix(lines[1], "  ") {
		t.Errorf("level 2 entry should be indented: %q", lines[1])
	}
}
