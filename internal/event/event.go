// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

// Package "event" builds outbound Honeycomb events from spans.
//
// The file "event.go" defines the wire-level event record.
package event

import (
	jsoniter "github.com/json-iterator/go"
	"go.opentelemetry.io/collector/pdata/pcommon"

	"github.com/opencensus-beam/opencensus-honeycomb/internal/attribute"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// "Event" is one wire-ready record for the ingestion endpoint.
type Event struct {
	// Time is the span start time as microsecond-precision UTC ISO-8601.
	Time string `json:"time"`

	// SampleRate holds the "1 in n" rate decided for this event. Zero
	// means no sampler has decided yet; it is encoded as 1 on the wire.
	SampleRate int64 `json:"samplerate"`

	// Data is the flattened attribute payload.
	Data attribute.Attributes `json:"data"`

	traceID pcommon.TraceID
}

// TraceID returns the identifier of the trace the event belongs to, used
// for deterministic sampling decisions.
func (e *Event) TraceID() pcommon.TraceID {
	return e.traceID
}

// MarshalJSON encodes the event, defaulting an undecided sample rate to 1.
func (e Event) MarshalJSON() ([]byte, error) {
	rate := e.SampleRate
	if rate < 1 {
		rate = 1
	}
	type wireEvent struct {
		Time       string               `json:"time"`
		SampleRate int64                `json:"samplerate"`
		Data       attribute.Attributes `json:"data"`
	}
	return json.Marshal(wireEvent{Time: e.Time, SampleRate: rate, Data: e.Data})
}
