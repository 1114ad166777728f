// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

// Package "sampling" applies pluggable sampling decisions to assembled
// events.
//
// The file "fixedrate.go" provides the fixed-rate reference sampler.
package sampling

import (
	"fmt"

	"github.com/opencensus-beam/opencensus-honeycomb/internal/event"
)

// fixedRate assigns a configured rate to events whose rate has not been
// decided yet. With "all" set it overrides already-decided rates too;
// without it the sampler is idempotent.
type fixedRate struct {
	rate int64
	all  bool
}

func newFixedRate(opts Options) (Sampler, error) {
	if opts.Rate < 1 {
		return nil, fmt.Errorf("fixed_rate sampler requires a rate >= 1, got %d", opts.Rate)
	}
	return &fixedRate{rate: opts.Rate, all: opts.All}, nil
}

func (s *fixedRate) Sample(ev *event.Event) int64 {
	if ev.SampleRate == 0 || s.all {
		return s.rate
	}
	return Unchanged
}
