// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package extract

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"
	"strings"
)

// RawScanBackend is the last structured resort before optical
// recognition. It ignores the document's object graph entirely: every
// stream object is located by its stream/endstream keywords, inflated if
// compressed, and scanned for text-showing operators. Reading order is
// whatever order the objects appear in the file, which is usually close
// enough for clause detection on documents too damaged for the other
// backends to open at all.
type RawScanBackend struct{}

// NewRawScanBackend creates the raw stream-scanning backend.
func NewRawScanBackend() *RawScanBackend {
	return &RawScanBackend{}
}

// Name returns the backend identifier.
func (rb *RawScanBackend) Name() string {
	return "rawscan"
}

var (
	streamStart = []byte("stream")
	streamEnd   = []byte("endstream")
)

// Extract scans the file for stream objects and pulls text operators out
// of each one.
func (rb *RawScanBackend) Extract(data []byte) (*Result, error) {
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		return nil, fmt.Errorf("missing %%PDF header")
	}

	result := NewResult("pdf")

	var buf bytes.Buffer
	streams := 0
	for _, raw := range findStreamObjects(data) {
		streams++
		content := raw
		if inflated, err := inflateStream(raw); err == nil {
			content = inflated
		}
		if !bytes.Contains(content, []byte("BT")) {
			continue
		}

		text := parseContentStream(content)
		if strings.TrimSpace(text) == "" {
			continue
		}
		buf.WriteString(text)
		buf.WriteString("\n")
	}

	result.Metadata["stream_objects"] = streams
	result.Text = buf.String()
	return result, nil
}

// findStreamObjects returns the payloads of all stream objects in file
// order.
func findStreamObjects(data []byte) [][]byte {
	var payloads [][]byte
	rest := data
	for {
		start := bytes.Index(rest, streamStart)
		if start < 0 {
			break
		}
		body := rest[start+len(streamStart):]

		// The stream keyword is followed by an end-of-line marker before
		// the payload begins.
		body = bytes.TrimPrefix(body, []byte("\r\n"))
		body = bytes.TrimPrefix(body, []byte("\n"))

		end := bytes.Index(body, streamEnd)
		if end < 0 {
			break
		}

		payload := bytes.TrimRight(body[:end], "\r\n")
		if len(payload) > 0 {
			payloads = append(payloads, payload)
		}
		rest = body[end+len(streamEnd):]
	}
	return payloads
}

// inflateStream decompresses a FlateDecode stream payload.
func inflateStream(payload []byte) ([]byte, error) {
	reader, err := zlib.NewReader(bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	// Tolerate truncated streams: keep whatever inflated cleanly.
	inflated, err := io.ReadAll(reader)
	if err != nil && len(inflated) == 0 {
		return nil, err
	}
	return inflated, nil
}
