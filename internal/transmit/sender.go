// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

// Package "transmit" delivers encoded batches to the ingestion endpoint
// and classifies the outcome.
//
// The file "sender.go" implements the HTTP delivery engine.
package transmit

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.opentelemetry.io/collector/consumer/consumererror"
	"go.uber.org/zap"

	"github.com/opencensus-beam/opencensus-honeycomb/internal/codec"
)

// acceptedStatus is the per-item status the endpoint reports for an
// accepted event.
const acceptedStatus = 202

// "Sender" delivers one batch body per call.
//
// The returned error encodes the outcome: nil means the batch was
// accepted; an error wrapped with consumererror.NewPermanent means
// retrying the same batch cannot succeed; any other error is retryable.
// The sender itself never retries.
type Sender interface {
	Send(ctx context.Context, body []byte) error
}

// "HTTPClient" is the injected transport capability. Connection pooling,
// TLS and timeouts belong to the client, not to this package.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// "Config" carries the delivery endpoint settings.
type Config struct {
	// APIURL is the base ingestion URL, e.g. "https://api.honeycomb.io".
	APIURL string

	// Dataset names the destination dataset.
	Dataset string

	// APIKey is the team write key sent with every request.
	APIKey string

	// UserAgent identifies the exporter and its version.
	UserAgent string
}

type httpSender struct {
	client HTTPClient
	url    string
	cfg    Config
	codec  codec.Codec
	logger *zap.Logger
}

// NewHTTP creates a sender that posts batches to
// "{api_url}/1/batch/{dataset}".
func NewHTTP(client HTTPClient, cfg Config, cdc codec.Codec, logger *zap.Logger) Sender {
	return &httpSender{
		client: client,
		url:    fmt.Sprintf("%s/1/batch/%s", strings.TrimSuffix(cfg.APIURL, "/"), cfg.Dataset),
		cfg:    cfg,
		codec:  cdc,
		logger: logger,
	}
}

func (s *httpSender) Send(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return consumererror.NewPermanent(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", s.cfg.UserAgent)
	req.Header.Set("X-Honeycomb-Team", s.cfg.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Warn("Batch delivery failed at the transport level",
			zap.NamedError("error", err))
		return err
	}
	defer resp.Body.Close()
	replyBody, readErr := io.ReadAll(resp.Body)

	switch {
	case resp.StatusCode == http.StatusNoContent:
		// The no-op backend answers 204 with an empty body.
		return nil
	case resp.StatusCode == http.StatusOK:
		return s.classifyReply(replyBody, readErr)
	case resp.StatusCode == http.StatusUnauthorized:
		s.logger.Warn("Ingestion endpoint rejected the write key")
		return consumererror.NewPermanent(fmt.Errorf("ingestion endpoint returned status 401: bad write key"))
	case resp.StatusCode >= 500:
		s.logger.Warn("Ingestion endpoint unavailable",
			zap.Int("status", resp.StatusCode))
		return fmt.Errorf("ingestion endpoint returned status %d", resp.StatusCode)
	default:
		s.logger.Warn("Ingestion endpoint returned an unexpected status",
			zap.Int("status", resp.StatusCode))
		return consumererror.NewPermanent(fmt.Errorf("ingestion endpoint returned unexpected status %d", resp.StatusCode))
	}
}

// itemReply is one entry of the endpoint's positional reply array.
type itemReply struct {
	Status int    `json:"status"`
	Error  string `json:"error"`
}

// classifyReply reduces the per-item statuses of a 200 reply into one
// outcome for the batch: all items accepted means success, any item
// rejected with 400 means the batch is not worth retrying, and anything
// else unexpected is treated as transient.
func (s *httpSender) classifyReply(replyBody []byte, readErr error) error {
	if readErr != nil {
		s.logger.Warn("Failed to read the ingestion endpoint reply",
			zap.NamedError("error", readErr))
		return readErr
	}

	var items []itemReply
	if err := s.codec.Decode(replyBody, &items); err != nil {
		s.logger.Warn("Failed to decode the ingestion endpoint reply",
			zap.NamedError("error", err))
		return err
	}

	rejected := 0
	transient := 0
	for _, item := range items {
		switch item.Status {
		case acceptedStatus:
		case http.StatusBadRequest:
			rejected++
		default:
			transient++
		}
	}
	if rejected > 0 {
		s.logger.Warn("Ingestion endpoint rejected events in the batch",
			zap.Int("rejected", rejected))
		return consumererror.NewPermanent(fmt.Errorf("%d events rejected with status 400", rejected))
	}
	if transient > 0 {
		s.logger.Warn("Ingestion endpoint reported unexpected event statuses",
			zap.Int("events", transient))
		return fmt.Errorf("%d events returned an unexpected status", transient)
	}
	return nil
}
