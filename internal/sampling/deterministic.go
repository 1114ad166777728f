// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

// Package "sampling" applies pluggable sampling decisions to assembled
// events.
//
// The file "deterministic.go" implements the consistent keep/drop
// decision for sampled events.
package sampling

import (
	"math"

	"github.com/cespare/xxhash/v2"
	"go.opentelemetry.io/collector/pdata/pcommon"
)

// Keep reports whether an event with the given trace ID survives sampling
// at rate n. An event survives if its rate is 1 (or undecided), or if the
// 64-bit hash of its trace ID falls below 2^64-1 divided by n. The same
// trace ID always yields the same decision for a given rate, so sampling
// is reproducible per trace without coordination.
func Keep(traceID pcommon.TraceID, rate int64) bool {
	if rate <= 1 {
		return true
	}
	return xxhash.Sum64(traceID[:]) < math.MaxUint64/uint64(rate)
}
