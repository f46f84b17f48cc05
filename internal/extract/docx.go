// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package extract

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// DOCXExtractor handles Word documents. A .docx file is a zip archive of
// XML parts; the extractor walks word/document.xml for paragraphs and
// tables, renders style-derived headings as markdown-style markers, and
// appends header/footer text as a labeled trailer.
type DOCXExtractor struct{}

// NewDOCXExtractor creates a new Word document extractor.
func NewDOCXExtractor() *DOCXExtractor {
	return &DOCXExtractor{}
}

// Name returns the name of this extractor.
func (de *DOCXExtractor) Name() string {
	return "docx"
}

// Extensions returns the file extensions this extractor supports.
func (de *DOCXExtractor) Extensions() []string {
	return []string{".docx"}
}

var (
	docxParagraphRe = regexp.MustCompile(`(?s)<w:p[ >].*?</w:p>|<w:p/>`)
	docxTableRe     = regexp.MustCompile(`(?s)<w:tbl>.*?</w:tbl>`)
	docxRowRe       = regexp.MustCompile(`(?s)<w:tr[ >].*?</w:tr>|<w:tr>.*?</w:tr>`)
	docxCellRe      = regexp.MustCompile(`(?s)<w:tc[ >].*?</w:tc>|<w:tc>.*?</w:tc>`)
	docxRunTextRe   = regexp.MustCompile(`(?s)<w:t(?: [^>]*)?>(.*?)</w:t>`)
	docxHeadingRe   = regexp.MustCompile(`<w:pStyle [^>]*w:val="Heading(\d)"`)
	docxTabRe       = regexp.MustCompile(`<w:tab[^>]*/?>`)
)

// Extract walks the document archive and serializes its parts back to
// plain text with structural markers.
func (de *DOCXExtractor) Extract(data []byte, filename string) *Result {
	result := NewResult("docx")
	result.Backend = de.Name()

	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		result.AddDiagnostic("open docx archive: %v", err)
		return result
	}

	var documentFile, corePropsFile *zip.File
	var headerFiles, footerFiles []*zip.File
	for _, file := range reader.File {
		switch {
		case file.Name == "word/document.xml":
			documentFile = file
		case strings.HasPrefix(file.Name, "word/header") && strings.HasSuffix(file.Name, ".xml"):
			headerFiles = append(headerFiles, file)
		case strings.HasPrefix(file.Name, "word/footer") && strings.HasSuffix(file.Name, ".xml"):
			footerFiles = append(footerFiles, file)
		case file.Name == "docProps/core.xml":
			corePropsFile = file
		}
	}

	if documentFile == nil {
		result.AddDiagnostic("word/document.xml not found in archive")
		return result
	}

	docXML, err := readZipFile(documentFile)
	if err != nil {
		result.AddDiagnostic("read word/document.xml: %v", err)
		return result
	}

	var parts []string

	// Tables are serialized separately and removed from the body so their
	// cell text is not duplicated inside paragraph output.
	tables := docxTableRe.FindAllString(docXML, -1)
	body := docxTableRe.ReplaceAllString(docXML, "")

	paragraphs := 0
	for _, para := range docxParagraphRe.FindAllString(body, -1) {
		text := extractRunText(para)
		if text == "" {
			continue
		}
		paragraphs++

		if m := docxHeadingRe.FindStringSubmatch(para); m != nil {
			level, _ := strconv.Atoi(m[1])
			parts = append(parts, "\n"+strings.Repeat("#", level)+" "+text+"\n")
		} else {
			parts = append(parts, text)
		}
	}

	for i, table := range tables {
		var sb strings.Builder
		fmt.Fprintf(&sb, "\n--- Table %d ---\n", i+1)
		for _, row := range docxRowRe.FindAllString(table, -1) {
			var cells []string
			for _, cell := range docxCellRe.FindAllString(row, -1) {
				cells = append(cells, extractRunText(cell))
			}
			rowText := strings.Join(cells, " | ")
			if strings.TrimSpace(rowText) != "" {
				sb.WriteString(rowText + "\n")
			}
		}
		parts = append(parts, sb.String())
	}

	if trailer := extractHeadersFooters(headerFiles, footerFiles); trailer != "" {
		parts = append(parts, "\n--- Headers/Footers ---\n"+trailer)
	}

	result.Text = strings.Join(parts, "\n")
	result.Metadata["paragraphs"] = paragraphs
	result.Metadata["tables"] = len(tables)

	if corePropsFile != nil {
		de.extractCoreProps(corePropsFile, result)
	}

	return result
}

// extractRunText concatenates the text runs inside a paragraph or cell,
// resolving tabs and XML entities.
func extractRunText(fragment string) string {
	fragment = docxTabRe.ReplaceAllString(fragment, "\t")

	var sb strings.Builder
	for _, m := range docxRunTextRe.FindAllStringSubmatch(fragment, -1) {
		sb.WriteString(m[1])
	}

	text := sb.String()
	text = strings.ReplaceAll(text, "&lt;", "<")
	text = strings.ReplaceAll(text, "&gt;", ">")
	text = strings.ReplaceAll(text, "&quot;", `"`)
	text = strings.ReplaceAll(text, "&apos;", "'")
	text = strings.ReplaceAll(text, "&amp;", "&")
	text = strings.ReplaceAll(text, "\u00a0", " ")

	return strings.TrimSpace(text)
}

// extractHeadersFooters renders header and footer paragraphs as labeled
// lines, headers before footers.
func extractHeadersFooters(headers, footers []*zip.File) string {
	sortZipFiles(headers)
	sortZipFiles(footers)

	var lines []string
	for _, file := range headers {
		for _, text := range extractPartParagraphs(file) {
			lines = append(lines, "Header: "+text)
		}
	}
	for _, file := range footers {
		for _, text := range extractPartParagraphs(file) {
			lines = append(lines, "Footer: "+text)
		}
	}
	return strings.Join(lines, "\n")
}

// extractPartParagraphs returns the non-empty paragraph texts of one
// header or footer part.
func extractPartParagraphs(file *zip.File) []string {
	xml, err := readZipFile(file)
	if err != nil {
		return nil
	}

	var texts []string
	for _, para := range docxParagraphRe.FindAllString(xml, -1) {
		if text := extractRunText(para); text != "" {
			texts = append(texts, text)
		}
	}
	return texts
}

// corePropsFields maps docProps/core.xml elements to metadata keys.
var corePropsFields = map[string]*regexp.Regexp{
	"title":            regexp.MustCompile(`<dc:title[^>]*>(.*?)</dc:title>`),
	"author":           regexp.MustCompile(`<dc:creator[^>]*>(.*?)</dc:creator>`),
	"subject":          regexp.MustCompile(`<dc:subject[^>]*>(.*?)</dc:subject>`),
	"created":          regexp.MustCompile(`<dcterms:created[^>]*>(.*?)</dcterms:created>`),
	"modified":         regexp.MustCompile(`<dcterms:modified[^>]*>(.*?)</dcterms:modified>`),
	"last_modified_by": regexp.MustCompile(`<cp:lastModifiedBy[^>]*>(.*?)</cp:lastModifiedBy>`),
	"revision":         regexp.MustCompile(`<cp:revision[^>]*>(.*?)</cp:revision>`),
}

// extractCoreProps reads document-level metadata from docProps/core.xml.
func (de *DOCXExtractor) extractCoreProps(file *zip.File, result *Result) {
	xml, err := readZipFile(file)
	if err != nil {
		result.AddDiagnostic("read docProps/core.xml: %v", err)
		return
	}

	for key, re := range corePropsFields {
		if m := re.FindStringSubmatch(xml); m != nil && strings.TrimSpace(m[1]) != "" {
			result.Metadata[key] = strings.TrimSpace(m[1])
		}
	}
}

// readZipFile reads the whole content of one archive member.
func readZipFile(file *zip.File) (string, error) {
	rc, err := file.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// sortZipFiles orders archive members by name so header1 precedes header2.
func sortZipFiles(files []*zip.File) {
	sort.Slice(files, func(i, j int) bool {
		return files[i].Name < files[j].Name
	})
}
