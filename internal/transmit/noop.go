// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

// Package "transmit" delivers encoded batches to the ingestion endpoint
// and classifies the outcome.
//
// The file "noop.go" provides the backend used when no write key is
// configured.
package transmit

import (
	"context"

	"go.uber.org/zap"
)

type noopSender struct {
	logger *zap.Logger
}

// NewNoop creates a sender that accepts every batch without making any
// network call, mirroring the endpoint's trivial 204 acceptance. It is
// swapped in when no write key is configured so that callers still see a
// well-formed success.
func NewNoop(logger *zap.Logger) Sender {
	return &noopSender{logger: logger}
}

func (s *noopSender) Send(_ context.Context, body []byte) error {
	s.logger.Debug("Discarding batch: no write key configured",
		zap.Int("batchBytes", len(body)))
	return nil
}
