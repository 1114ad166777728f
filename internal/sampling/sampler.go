// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

// Package "sampling" applies pluggable sampling decisions to assembled
// events.
//
// The file "sampler.go" defines the sampler capability and the chain that
// applies a sequence of samplers.
package sampling

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/opencensus-beam/opencensus-honeycomb/internal/event"
)

// Unchanged is returned by a sampler to keep an event's current rate.
const Unchanged int64 = 0

// "Sampler" decides the sample rate an event should carry.
type Sampler interface {
	// Sample returns the rate the event should carry: a positive value
	// sets a new rate, Unchanged keeps the current one. Samplers may
	// also modify the event directly and return Unchanged.
	Sample(ev *event.Event) int64
}

// "Options" carries the per-sampler configuration resolved through the
// registry.
type Options struct {
	// Rate is the "1 in n" rate the sampler should apply.
	Rate int64

	// All forces the sampler to override rates that were already decided.
	All bool
}

// "Factory" instantiates a sampler from its options.
type Factory func(opts Options) (Sampler, error)

// "Registry" resolves sampler type identifiers to factories.
type Registry struct {
	typeToFactory map[string]Factory
}

// NewRegistry instantiates a registry holding the built-in samplers.
func NewRegistry() *Registry {
	return &Registry{
		typeToFactory: map[string]Factory{
			"fixed_rate": newFixedRate,
		},
	}
}

// Create instantiates the sampler registered under the given type name.
func (r *Registry) Create(typeName string, opts Options) (Sampler, error) {
	factory, ok := r.typeToFactory[typeName]
	if !ok {
		return nil, fmt.Errorf("no sampler registered for type %q", typeName)
	}
	return factory(opts)
}

// "Chain" applies an ordered list of samplers to an event list. Each
// sampler folds over the list produced by the previous one.
type Chain struct {
	samplers []Sampler
	logger   *zap.Logger
}

// NewChain creates a chain over the given samplers.
func NewChain(samplers []Sampler, logger *zap.Logger) *Chain {
	return &Chain{samplers: samplers, logger: logger}
}

// Apply runs every sampler over the events in order. A sampler returning
// a negative rate is a usage error: the event is kept unchanged and a
// warning is logged, but the pipeline never fails on account of a
// misbehaving sampler.
func (c *Chain) Apply(events []*event.Event) []*event.Event {
	for _, s := range c.samplers {
		for _, ev := range events {
			rate := s.Sample(ev)
			if rate == Unchanged {
				continue
			}
			if rate < 0 {
				c.logger.Warn("Sampler returned an invalid rate; keeping event unchanged",
					zap.Int64("rate", rate))
				continue
			}
			ev.SampleRate = rate
		}
	}
	return events
}
