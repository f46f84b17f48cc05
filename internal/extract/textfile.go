// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package extract

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// TextExtractor handles plain text documents with automatic encoding
// detection. Statistical sniffing runs first; when it fails or names an
// encoding we cannot decode, a fixed ordered list of common encodings is
// tried instead.
type TextExtractor struct {
	detector *chardet.Detector
}

// fallbackEncodings is the fixed trial order when sniffing is inconclusive.
var fallbackEncodings = []struct {
	name string
	enc  encoding.Encoding
}{
	{"utf-8", unicode.UTF8},
	{"utf-16", unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)},
	{"latin-1", charmap.ISO8859_1},
	{"windows-1252", charmap.Windows1252},
}

// NewTextExtractor creates a new plain text extractor.
func NewTextExtractor() *TextExtractor {
	return &TextExtractor{
		detector: chardet.NewTextDetector(),
	}
}

// Name returns the name of this extractor.
func (te *TextExtractor) Name() string {
	return "text"
}

// Extensions returns the file extensions this extractor supports.
func (te *TextExtractor) Extensions() []string {
	return []string{".txt", ".text"}
}

// Extract decodes the document bytes to text, recording the detected
// encoding and basic statistics in the result metadata.
func (te *TextExtractor) Extract(data []byte, filename string) *Result {
	result := NewResult("txt")
	result.Backend = te.Name()

	if looksBinary(data) {
		result.AddDiagnostic("content looks binary, decoded text may be garbage")
	}

	text, encName := te.decode(data, result)
	text = normalizeLineEndings(stripBOM(text))
	result.Text = text

	result.Metadata["encoding"] = encName
	result.Metadata["lines"] = strings.Count(text, "\n") + 1
	result.Metadata["words"] = len(strings.Fields(text))
	result.Metadata["characters"] = len(text)

	return result
}

// decode converts raw bytes to a string, trying statistical detection
// before walking the fallback encoding list.
func (te *TextExtractor) decode(data []byte, result *Result) (string, string) {
	if detected, err := te.detector.DetectBest(data); err == nil {
		if enc := encodingByName(detected.Charset); enc != nil {
			if text, err := enc.NewDecoder().String(string(data)); err == nil {
				return text, detected.Charset
			}
			result.AddDiagnostic("decode as detected charset %s failed, trying fallbacks", detected.Charset)
		}
	} else {
		result.AddDiagnostic("charset detection failed: %v", err)
	}

	for _, fe := range fallbackEncodings {
		text, err := fe.enc.NewDecoder().String(string(data))
		if err == nil && utf8.ValidString(text) {
			return text, fe.name
		}
	}

	// Last resort: keep whatever decodes as UTF-8, dropping invalid bytes
	result.AddDiagnostic("no fallback encoding decoded cleanly, stripping invalid bytes")
	return strings.ToValidUTF8(string(data), ""), "utf-8"
}

// encodingByName maps a sniffed charset name to a decoder.
func encodingByName(name string) encoding.Encoding {
	switch strings.ToLower(name) {
	case "utf-8", "ascii", "us-ascii":
		return unicode.UTF8
	case "utf-16le":
		return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
	case "utf-16be":
		return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)
	case "iso-8859-1", "latin-1":
		return charmap.ISO8859_1
	case "iso-8859-15":
		return charmap.ISO8859_15
	case "windows-1252", "cp1252":
		return charmap.Windows1252
	}
	return nil
}

// stripBOM removes a leading byte-order mark.
func stripBOM(text string) string {
	return strings.TrimPrefix(text, "\uFEFF")
}

// normalizeLineEndings converts Windows and old-Mac line endings to \n.
func normalizeLineEndings(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}

// looksBinary reports whether a byte buffer is likely binary rather than
// text, using a null-byte and printable-ratio check on the first 512 bytes.
func looksBinary(data []byte) bool {
	sample := data
	if len(sample) > 512 {
		sample = sample[:512]
	}
	if len(sample) == 0 {
		return false
	}
	if bytes.IndexByte(sample, 0) >= 0 {
		return true
	}

	printable := 0
	for _, b := range sample {
		if (b >= 32 && b <= 126) || b == 9 || b == 10 || b == 13 {
			printable++
		}
	}
	return float64(printable)/float64(len(sample)) < 0.8
}
