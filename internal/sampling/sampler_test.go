// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

// Package "sampling" applies pluggable sampling decisions to assembled
// events.
//
// The file "sampler_test.go" validates the chain and built-in samplers.
package sampling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/collector/pdata/pcommon"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/opencensus-beam/opencensus-honeycomb/internal/event"
)

// recordingSampler returns a scripted rate and counts invocations.
type recordingSampler struct {
	rate  int64
	calls int
}

func (s *recordingSampler) Sample(*event.Event) int64 {
	s.calls++
	return s.rate
}

func TestRegistryCreatesFixedRate(t *testing.T) {
	registry := NewRegistry()
	s, err := registry.Create("fixed_rate", Options{Rate: 4})
	require.NoError(t, err)
	require.NotNil(t, s)
}

func TestRegistryRejectsUnknownType(t *testing.T) {
	registry := NewRegistry()
	_, err := registry.Create("no_such_sampler", Options{Rate: 1})
	assert.Error(t, err)
}

func TestFixedRateRequiresPositiveRate(t *testing.T) {
	registry := NewRegistry()
	_, err := registry.Create("fixed_rate", Options{Rate: 0})
	assert.Error(t, err)
}

func TestFixedRateDecidesUndecidedEvents(t *testing.T) {
	s, err := newFixedRate(Options{Rate: 10})
	require.NoError(t, err)

	ev := &event.Event{}
	chain := NewChain([]Sampler{s}, zap.NewNop())
	chain.Apply([]*event.Event{ev})
	assert.Equal(t, int64(10), ev.SampleRate)

	// Applying again must not alter an already-decided rate.
	ev.SampleRate = 3
	chain.Apply([]*event.Event{ev})
	assert.Equal(t, int64(3), ev.SampleRate)
}

func TestFixedRateAllOverridesDecidedEvents(t *testing.T) {
	s, err := newFixedRate(Options{Rate: 10, All: true})
	require.NoError(t, err)

	ev := &event.Event{SampleRate: 3}
	NewChain([]Sampler{s}, zap.NewNop()).Apply([]*event.Event{ev})
	assert.Equal(t, int64(10), ev.SampleRate)
}

func TestChainAppliesSamplersInSequence(t *testing.T) {
	first := &recordingSampler{rate: 2}
	second := &recordingSampler{rate: 5}
	events := []*event.Event{{}, {}, {}}

	got := NewChain([]Sampler{first, second}, zap.NewNop()).Apply(events)
	require.Len(t, got, 3)
	assert.Equal(t, 3, first.calls)
	assert.Equal(t, 3, second.calls)
	for _, ev := range got {
		assert.Equal(t, int64(5), ev.SampleRate)
	}
}

func TestChainKeepsEventWhenSamplerMisbehaves(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	broken := &recordingSampler{rate: -7}
	ev := &event.Event{SampleRate: 2}

	got := NewChain([]Sampler{broken}, zap.New(core)).Apply([]*event.Event{ev})
	require.Len(t, got, 1)
	assert.Equal(t, int64(2), got[0].SampleRate)
	assert.Equal(t, 1, logs.Len())
}

func TestKeepIsDeterministic(t *testing.T) {
	traceID := pcommon.TraceID{0xde, 0xad, 0xbe, 0xef, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0a, 0x0b, 0x0c}
	first := Keep(traceID, 7)
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, Keep(traceID, 7))
	}
}

func TestKeepAlwaysKeepsRateOne(t *testing.T) {
	assert.True(t, Keep(pcommon.TraceID{}, 1))
	assert.True(t, Keep(pcommon.TraceID{}, 0))
}

func TestKeepRoughlyMatchesRate(t *testing.T) {
	const rate = 4
	kept := 0
	var traceID pcommon.TraceID
	for i := 0; i < 4096; i++ {
		traceID[0] = byte(i)
		traceID[1] = byte(i >> 8)
		traceID[15] = byte(i * 31)
		if Keep(traceID, rate) {
			kept++
		}
	}
	// 1-in-4 of 4096 with generous slack.
	assert.Greater(t, kept, 700)
	assert.Less(t, kept, 1400)
}
