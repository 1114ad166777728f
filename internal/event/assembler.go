// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

// Package "event" builds outbound Honeycomb events from spans.
//
// The file "assembler.go" converts one span into one event.
package event

import (
	"strings"
	"time"

	"go.opentelemetry.io/collector/pdata/pcommon"
	"go.opentelemetry.io/collector/pdata/ptrace"

	"github.com/opencensus-beam/opencensus-honeycomb/internal/attribute"
)

// eventTimeFormat is microsecond-precision UTC ISO-8601.
const eventTimeFormat = "2006-01-02T15:04:05.000000Z"

// "NameMap" maps derived span metadata to the attribute names used on the
// wire. A derived attribute whose mapped name is empty is dropped.
type NameMap struct {
	DurationMs   string
	Name         string
	ParentSpanID string
	SpanID       string
	TraceID      string
	SpanType     string
}

// DefaultNameMap returns the conventional Honeycomb trace-handling names.
func DefaultNameMap() NameMap {
	return NameMap{
		DurationMs:   "duration_ms",
		Name:         "name",
		ParentSpanID: "trace.parent_id",
		SpanID:       "trace.span_id",
		TraceID:      "trace.trace_id",
		SpanType:     "type",
	}
}

// "Assembler" builds events from spans according to a fixed configuration.
type Assembler struct {
	nameMap       NameMap
	sampleRateKey string
	maxValueBytes int
}

// NewAssembler creates an assembler. sampleRateKey may be empty, in which
// case no attribute is treated as a sample rate. maxValueBytes bounds the
// size of individual string values.
func NewAssembler(nameMap NameMap, sampleRateKey string, maxValueBytes int) *Assembler {
	if maxValueBytes <= 0 {
		maxValueBytes = attribute.DefaultMaxValueBytes
	}
	return &Assembler{
		nameMap:       nameMap,
		sampleRateKey: sampleRateKey,
		maxValueBytes: maxValueBytes,
	}
}

// Assemble builds the event for a single span. resourceAttrs must already
// be cleaned; span attributes win collisions against them, and derived
// metadata wins collisions against both.
func (a *Assembler) Assemble(span ptrace.Span, resourceAttrs attribute.Attributes) *Event {
	merged := attribute.Merge(attribute.CleanMap(span.Attributes()), resourceAttrs)
	merged = attribute.Merge(a.derived(span), merged)
	merged = attribute.Trim(merged, a.maxValueBytes)

	rate := int64(0)
	if a.sampleRateKey != "" {
		if v, rest, ok := merged.Pop(a.sampleRateKey); ok {
			rate = rateFromValue(v)
			merged = rest
		}
	}

	return &Event{
		Time:       time.Unix(0, int64(span.StartTimestamp())).UTC().Format(eventTimeFormat),
		SampleRate: rate,
		Data:       merged,
		traceID:    span.TraceID(),
	}
}

// derived extracts trace and timing metadata from the span fields,
// renamed through the configured name map.
func (a *Assembler) derived(span ptrace.Span) attribute.Attributes {
	attrs := make(attribute.Attributes, 0, 6)
	put := func(name string, v attribute.Value) {
		if name != "" {
			attrs = append(attrs, attribute.KeyValue{Key: name, Value: v})
		}
	}

	durationMs := float64(int64(span.EndTimestamp())-int64(span.StartTimestamp())) / float64(time.Millisecond)
	put(a.nameMap.DurationMs, attribute.FloatValue(durationMs))
	put(a.nameMap.Name, attribute.StringValue(span.Name()))
	if parent := span.ParentSpanID(); !parent.IsEmpty() {
		put(a.nameMap.ParentSpanID, attribute.StringValue(parent.String()))
	}
	put(a.nameMap.SpanID, attribute.StringValue(span.SpanID().String()))
	put(a.nameMap.TraceID, attribute.StringValue(span.TraceID().String()))
	put(a.nameMap.SpanType, attribute.StringValue(spanType(span.Kind())))

	return attribute.Sort(attrs)
}

func spanType(kind ptrace.SpanKind) string {
	return strings.ToLower(kind.String())
}

// rateFromValue interprets a popped sample-rate attribute. Anything that
// is not a positive number leaves the rate undecided.
func rateFromValue(v attribute.Value) int64 {
	switch v.Kind() {
	case attribute.KindInt:
		if v.Int() > 0 {
			return v.Int()
		}
	case attribute.KindFloat:
		if v.Float() >= 1 {
			return int64(v.Float())
		}
	}
	return 0
}

// CleanResource converts resource-level attributes once per resource so
// the result can be shared across all spans of that resource.
func CleanResource(res pcommon.Resource) attribute.Attributes {
	return attribute.CleanMap(res.Attributes())
}
