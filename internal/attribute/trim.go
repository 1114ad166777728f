// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

// Package "attribute" converts raw span and resource attribute values into
// flat, wire-safe key/value pairs.
//
// The file "trim.go" enforces the per-value size ceiling.
package attribute

import (
	"strings"
	"unicode/utf8"
)

// DefaultMaxValueBytes is the size ceiling the ingestion endpoint applies
// to a single attribute value.
const DefaultMaxValueBytes = 49127

// minEllipsisBytes is the smallest ellipsis appended to a trimmed value.
// The ellipsis grows while the cut would land inside a multi-byte UTF-8
// code point, so it never exceeds minEllipsisBytes+3 bytes.
const minEllipsisBytes = 3

// Trim truncates every string value longer than maxBytes so that the
// result is exactly maxBytes long, ends in an ellipsis and remains valid
// UTF-8. Non-string values are returned unchanged.
func Trim(attrs Attributes, maxBytes int) Attributes {
	for i, kv := range attrs {
		if kv.Value.Kind() != KindStr {
			continue
		}
		s := kv.Value.Str()
		if len(s) <= maxBytes {
			continue
		}
		attrs[i].Value = StringValue(trimString(s, maxBytes))
	}
	return attrs
}

func trimString(s string, maxBytes int) string {
	// A ceiling at or below the ellipsis size leaves no room for content.
	if maxBytes <= minEllipsisBytes {
		if maxBytes < 0 {
			maxBytes = 0
		}
		return strings.Repeat(".", maxBytes)
	}
	ellipsis := minEllipsisBytes
	cut := maxBytes - ellipsis
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
		ellipsis++
	}
	return s[:cut] + strings.Repeat(".", ellipsis)
}
