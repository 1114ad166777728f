// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

// Package "attribute" converts raw span and resource attribute values into
// flat, wire-safe key/value pairs.
//
// The file "cleaner.go" implements the cleaning rules.
package attribute

import (
	"go.opentelemetry.io/collector/pdata/pcommon"
)

// Clean converts an arbitrary raw value into cleaned attributes. Anything
// other than a map produces an empty result.
func Clean(v pcommon.Value) Attributes {
	if v.Type() != pcommon.ValueTypeMap {
		return Attributes{}
	}
	return CleanMap(v.Map())
}

// CleanMap converts a raw attribute map into cleaned attributes.
//
// Rules, per key/value pair:
//   - empty (null) values are dropped;
//   - scalar values (string, int, double, bool) pass through unchanged;
//   - nested maps are cleaned recursively, each inner key prefixed with
//     "<outer_key>.";
//   - anything else (slices, byte blobs) has no stable flat representation
//     and is dropped.
//
// The result is sorted by key with later duplicates dropped.
func CleanMap(m pcommon.Map) Attributes {
	attrs := make(Attributes, 0, m.Len())
	m.Range(func(k string, v pcommon.Value) bool {
		attrs = appendClean(attrs, k, v)
		return true
	})
	return sortUnique(attrs)
}

func appendClean(dst Attributes, key string, v pcommon.Value) Attributes {
	switch v.Type() {
	case pcommon.ValueTypeStr:
		return append(dst, KeyValue{Key: key, Value: StringValue(v.Str())})
	case pcommon.ValueTypeInt:
		return append(dst, KeyValue{Key: key, Value: IntValue(v.Int())})
	case pcommon.ValueTypeDouble:
		return append(dst, KeyValue{Key: key, Value: FloatValue(v.Double())})
	case pcommon.ValueTypeBool:
		return append(dst, KeyValue{Key: key, Value: BoolValue(v.Bool())})
	case pcommon.ValueTypeMap:
		v.Map().Range(func(inner string, innerVal pcommon.Value) bool {
			dst = appendClean(dst, key+"."+inner, innerVal)
			return true
		})
		return dst
	default:
		// Null, slice and byte values are dropped.
		return dst
	}
}
