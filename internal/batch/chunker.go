// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

// Package "batch" packs encoded events into size-bounded JSON array
// batches.
//
// The file "chunker.go" implements the packing algorithm.
package batch

import (
	"go.uber.org/zap"
)

const (
	// DefaultMaxEventBytes is the ceiling the ingestion endpoint applies
	// to a single encoded event.
	DefaultMaxEventBytes = 102400

	// DefaultMaxBatchBytes is the ceiling the ingestion endpoint applies
	// to a whole batch body, array delimiters included.
	DefaultMaxBatchBytes = 5242880

	// bracketBytes accounts for the enclosing "[" and "]".
	bracketBytes = 2
)

// "Limits" bounds the chunker's output.
type Limits struct {
	// MaxEventBytes is the per-event ceiling; larger events are dropped.
	MaxEventBytes int

	// MaxBatchBytes is the per-batch ceiling; a batch is closed early
	// rather than exceed it.
	MaxBatchBytes int

	// MaxBatchEvents additionally caps the number of events per batch.
	// Zero means no count cap.
	MaxBatchEvents int
}

// DefaultLimits returns the ingestion endpoint's published ceilings.
func DefaultLimits() Limits {
	return Limits{
		MaxEventBytes: DefaultMaxEventBytes,
		MaxBatchBytes: DefaultMaxBatchBytes,
	}
}

// "Batch" is one size-bounded group of encoded events.
type Batch struct {
	events [][]byte
	size   int
}

// Len returns the number of events in the batch.
func (b *Batch) Len() int {
	return len(b.events)
}

// Body assembles the batch as a JSON array body.
func (b *Batch) Body() []byte {
	buf := make([]byte, 0, b.size)
	buf = append(buf, '[')
	for i, ev := range b.events {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = append(buf, ev...)
	}
	buf = append(buf, ']')
	return buf
}

// "Chunker" packs encoded events into batches honoring fixed limits.
type Chunker struct {
	limits Limits
	logger *zap.Logger
}

// NewChunker creates a chunker. Non-positive limits fall back to the
// published defaults.
func NewChunker(limits Limits, logger *zap.Logger) *Chunker {
	if limits.MaxEventBytes <= 0 {
		limits.MaxEventBytes = DefaultMaxEventBytes
	}
	if limits.MaxBatchBytes <= 0 {
		limits.MaxBatchBytes = DefaultMaxBatchBytes
	}
	return &Chunker{limits: limits, logger: logger}
}

// Chunk folds the encoded events into batches. Events exceeding the
// per-event ceiling, or too large to fit even in a batch of their own,
// are dropped with a warning and appear in no batch; every other event
// appears in exactly one batch, in original order. Empty input produces
// no batches.
func (c *Chunker) Chunk(encoded [][]byte) []*Batch {
	var batches []*Batch
	current := &Batch{size: bracketBytes}

	flush := func() {
		if current.Len() > 0 {
			batches = append(batches, current)
		}
		current = &Batch{size: bracketBytes}
	}

	for _, ev := range encoded {
		if len(ev) > c.limits.MaxEventBytes {
			c.logger.Warn("Dropping event larger than the per-event ceiling",
				zap.Int("eventBytes", len(ev)),
				zap.Int("maxEventBytes", c.limits.MaxEventBytes))
			continue
		}
		if len(ev)+bracketBytes > c.limits.MaxBatchBytes {
			c.logger.Warn("Dropping event that does not fit in an empty batch",
				zap.Int("eventBytes", len(ev)),
				zap.Int("maxBatchBytes", c.limits.MaxBatchBytes))
			continue
		}
		// One delimiter byte per element plus the brackets.
		if current.size+len(ev)+1 > c.limits.MaxBatchBytes {
			flush()
		}
		if c.limits.MaxBatchEvents > 0 && current.Len() >= c.limits.MaxBatchEvents {
			flush()
		}
		current.events = append(current.events, ev)
		current.size += len(ev) + 1
	}
	flush()

	return batches
}
