// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package extract

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"
)

// buildDocx assembles a minimal .docx archive in memory.
func buildDocx(t *testing.T, parts map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range parts {
		f, err := w.Create(name)
		if err != nil {
			t.Fatalf("creating %s: %v", name, err)
		}
		if _, err := f.Write([]byte(content)); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("closing archive: %v", err)
	}
	return buf.Bytes()
}

const docxBody = `<?xml version="1.0"?>
<w:document>
  <w:body>
    <w:p><w:pPr><w:pStyle w:val="Heading2"/></w:pPr><w:r><w:t>Confidentiality</w:t></w:r></w:p>
    <w:p><w:r><w:t>Each party shall keep the other&apos;s information secret.</w:t></w:r></w:p>
    <w:tbl>
      <w:tr><w:tc><w:p><w:r><w:t>Fee</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>100</w:t></w:r></w:p></w:tc></w:tr>
    </w:tbl>
  </w:body>
</w:document>`

func TestDOCXHeadingMarkers(t *testing.T) {
	data := buildDocx(t, map[string]string{"word/document.xml": docxBody})

	de := NewDOCXExtractor()
	result := de.Extract(data, "contract.docx")

	if !strings.Contains(result.Text, "## Confidentiality") {
		t.Errorf("level-2 heading not rendered with two markers: %q", result.Text)
	}
	if !strings.Contains(result.Text, "keep the other's information secret") {
		t.Errorf("paragraph text missing or entity unescaped: %q", result.Text)
	}
}

func TestDOCXTables(t *testing.T) {
	data := buildDocx(t, map[string]string{"word/document.xml": docxBody})

	de := NewDOCXExtractor()
	result := de.Extract(data, "contract.docx")

	if !strings.Contains(result.Text, "--- Table 1 ---") {
		t.Errorf("table banner missing: %q", result.Text)
	}
	if !strings.Contains(result.Text, "Fee | 100") {
		t.Errorf("table row not serialized with cell separators: %q", result.Text)
	}
	if strings.Count(result.Text, "Fee") != 1 {
		t.Errorf("table cell text duplicated into body paragraphs: %q", result.Text)
	}
	if got := result.Metadata["tables"]; got != 1 {
		t.Errorf("expected 1 table in metadata, got %v", got)
	}
}

func TestDOCXHeadersFootersTrailer(t *testing.T) {
	data := buildDocx(t, map[string]string{
		"word/document.xml": docxBody,
		"word/header1.xml":  `<w:hdr><w:p><w:r><w:t>Acme Master Agreement</w:t></w:r></w:p></w:hdr>`,
		"word/footer1.xml":  `<w:ftr><w:p><w:r><w:t>Page 1</w:t></w:r></w:p></w:ftr>`,
	})

	de := NewDOCXExtractor()
	result := de.Extract(data, "contract.docx")

	if !strings.Contains(result.Text, "--- Headers/Footers ---") {
		t.Fatalf("trailer banner missing: %q", result.Text)
	}
	if !strings.Contains(result.Text, "Header: Acme Master Agreement") {
		t.Errorf("header line missing: %q", result.Text)
	}
	if !strings.Contains(result.Text, "Footer: Page 1") {
		t.Errorf("footer line missing: %q", result.Text)
	}
}

func TestDOCXCoreProperties(t *testing.T) {
	data := buildDocx(t, map[string]string{
		"word/document.xml": docxBody,
		"docProps/core.xml": `<cp:coreProperties><dc:title>MSA</dc:title><dc:creator>Legal Dept</dc:creator><cp:revision>7</cp:revision></cp:coreProperties>`,
	})

	de := NewDOCXExtractor()
	result := de.Extract(data, "contract.docx")

	if got := result.Metadata["title"]; got != "MSA" {
		t.Errorf("title metadata = %v, want MSA", got)
	}
	if got := result.Metadata["author"]; got != "Legal Dept" {
		t.Errorf("author metadata = %v, want Legal Dept", got)
	}
	if got := result.Metadata["revision"]; got != "7" {
		t.Errorf("revision metadata = %v, want 7", got)
	}
}

func TestDOCXNotAnArchive(t *testing.T) {
	de := NewDOCXExtractor()
	result := de.Extract([]byte("definitely not a zip archive"), "broken.docx")

	if result.HasText() {
		t.Error("expected no text from a broken archive")
	}
	if len(result.Diagnostics) == 0 {
		t.Error("expected a diagnostic explaining the failure")
	}
}
