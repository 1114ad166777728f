// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

// Package "attribute" converts raw span and resource attribute values into
// flat, wire-safe key/value pairs.
//
// The file "attribute.go" defines the cleaned value and attribute types.
package attribute

import (
	"sort"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// "Kind" identifies which scalar type a cleaned value holds.
type Kind int32

const (
	KindStr Kind = iota
	KindInt
	KindFloat
	KindBool
)

// "Value" is a wire-safe scalar value. It is never null and never a
// container; values that cannot be represented this way are dropped
// during cleaning.
type Value struct {
	kind Kind
	str  string
	i    int64
	f    float64
	b    bool
}

// StringValue creates a Value holding a string.
func StringValue(s string) Value {
	return Value{kind: KindStr, str: s}
}

// IntValue creates a Value holding an integer.
func IntValue(i int64) Value {
	return Value{kind: KindInt, i: i}
}

// FloatValue creates a Value holding a floating point number.
func FloatValue(f float64) Value {
	return Value{kind: KindFloat, f: f}
}

// BoolValue creates a Value holding a boolean.
func BoolValue(b bool) Value {
	return Value{kind: KindBool, b: b}
}

// Kind reports which scalar type the value holds.
func (v Value) Kind() Kind {
	return v.kind
}

// Str returns the string payload (meaningful only for KindStr).
func (v Value) Str() string {
	return v.str
}

// Int returns the integer payload (meaningful only for KindInt).
func (v Value) Int() int64 {
	return v.i
}

// Float returns the float payload (meaningful only for KindFloat).
func (v Value) Float() float64 {
	return v.f
}

// Bool returns the boolean payload (meaningful only for KindBool).
func (v Value) Bool() bool {
	return v.b
}

// AsRaw returns the value as a plain Go scalar.
func (v Value) AsRaw() interface{} {
	switch v.kind {
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindBool:
		return v.b
	default:
		return v.str
	}
}

// MarshalJSON encodes the value as its underlying scalar.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.AsRaw())
}

// "KeyValue" is a single cleaned attribute.
type KeyValue struct {
	Key   string
	Value Value
}

// "Attributes" is a sequence of cleaned attributes with unique keys,
// sorted lexicographically by key. It is produced only by the cleaning
// functions in this package; the sorted form allows two sequences to be
// merged deterministically.
type Attributes []KeyValue

// Get returns the value stored under the given key.
func (a Attributes) Get(key string) (Value, bool) {
	i := sort.Search(len(a), func(i int) bool { return a[i].Key >= key })
	if i < len(a) && a[i].Key == key {
		return a[i].Value, true
	}
	return Value{}, false
}

// Pop removes the given key, returning its value (if present) and the
// remaining attributes.
func (a Attributes) Pop(key string) (Value, Attributes, bool) {
	i := sort.Search(len(a), func(i int) bool { return a[i].Key >= key })
	if i >= len(a) || a[i].Key != key {
		return Value{}, a, false
	}
	v := a[i].Value
	out := make(Attributes, 0, len(a)-1)
	out = append(out, a[:i]...)
	out = append(out, a[i+1:]...)
	return v, out, true
}

// MarshalJSON encodes the attributes as a flat JSON object in key order.
func (a Attributes) MarshalJSON() ([]byte, error) {
	buf := make([]byte, 0, 16*len(a)+2)
	buf = append(buf, '{')
	for i, kv := range a {
		if i > 0 {
			buf = append(buf, ',')
		}
		k, err := json.Marshal(kv.Key)
		if err != nil {
			return nil, err
		}
		buf = append(buf, k...)
		buf = append(buf, ':')
		v, err := json.Marshal(kv.Value)
		if err != nil {
			return nil, err
		}
		buf = append(buf, v...)
	}
	buf = append(buf, '}')
	return buf, nil
}

// Merge combines two cleaned attribute sequences into one, keeping both
// sorted-unique invariants. On key collision the value from "a" wins.
func Merge(a Attributes, b Attributes) Attributes {
	out := make(Attributes, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i].Key < b[j].Key:
			out = append(out, a[i])
			i++
		case a[i].Key > b[j].Key:
			out = append(out, b[j])
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	out = append(out, a[i:]...)
	out = append(out, b[j:]...)
	return out
}

// Sort sorts attributes by key and drops later duplicates, keeping the
// first-seen value for each key. Useful for callers assembling their own
// attribute sequences before merging them with cleaned ones.
func Sort(attrs Attributes) Attributes {
	return sortUnique(attrs)
}

// sortUnique sorts the attributes by key and drops later duplicates,
// keeping the first-seen value for each key.
func sortUnique(attrs Attributes) Attributes {
	sort.SliceStable(attrs, func(i, j int) bool { return attrs[i].Key < attrs[j].Key })
	out := attrs[:0]
	for _, kv := range attrs {
		if len(out) > 0 && out[len(out)-1].Key == kv.Key {
			continue
		}
		out = append(out, kv)
	}
	return out
}
