// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

// Package "transmit" delivers encoded batches to the ingestion endpoint
// and classifies the outcome.
//
// The file "sender_test.go" validates outcome classification.
package transmit

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/collector/consumer/consumererror"
	"go.uber.org/zap"

	"github.com/opencensus-beam/opencensus-honeycomb/internal/codec"
)

// recordedRequest is a snapshot of what the test server received.
type recordedRequest struct {
	path    string
	headers http.Header
	body    []byte
}

// testEndpoint runs an httptest server answering with a scripted reply.
type testEndpoint struct {
	status int
	reply  string

	requests []recordedRequest
	mutex    sync.Mutex
}

func (te *testEndpoint) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		te.mutex.Lock()
		te.requests = append(te.requests, recordedRequest{
			path:    r.URL.Path,
			headers: r.Header.Clone(),
			body:    body,
		})
		te.mutex.Unlock()
		w.WriteHeader(te.status)
		if te.reply != "" {
			_, _ = w.Write([]byte(te.reply))
		}
	}
}

func (te *testEndpoint) lastRequest() recordedRequest {
	te.mutex.Lock()
	defer te.mutex.Unlock()
	return te.requests[len(te.requests)-1]
}

func newTestSender(t *testing.T, te *testEndpoint) (Sender, *httptest.Server) {
	server := httptest.NewServer(te.handler())
	t.Cleanup(server.Close)

	cdc, err := codec.Get(codec.JSON)
	require.NoError(t, err)

	sender := NewHTTP(server.Client(), Config{
		APIURL:    server.URL,
		Dataset:   "test-dataset",
		APIKey:    "test-key",
		UserAgent: "opencensus-honeycomb/1.0.0",
	}, cdc, zap.NewNop())
	return sender, server
}

func TestSendBuildsRequest(t *testing.T) {
	te := &testEndpoint{status: http.StatusNoContent}
	sender, _ := newTestSender(t, te)

	require.NoError(t, sender.Send(context.Background(), []byte(`[{"a":1}]`)))

	req := te.lastRequest()
	assert.Equal(t, "/1/batch/test-dataset", req.path)
	assert.Equal(t, "application/json", req.headers.Get("Content-Type"))
	assert.Equal(t, "opencensus-honeycomb/1.0.0", req.headers.Get("User-Agent"))
	assert.Equal(t, "test-key", req.headers.Get("X-Honeycomb-Team"))
	assert.Equal(t, `[{"a":1}]`, string(req.body))
}

func TestSendClassification(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		reply     string
		wantErr   bool
		permanent bool
	}{
		{name: "204 accepted", status: http.StatusNoContent},
		{name: "200 all items accepted", status: http.StatusOK, reply: `[{"status":202},{"status":202}]`},
		{name: "200 item rejected", status: http.StatusOK, reply: `[{"status":400,"error":"unknown field"}]`, wantErr: true, permanent: true},
		{name: "200 item unexpected", status: http.StatusOK, reply: `[{"status":202},{"status":500}]`, wantErr: true},
		{name: "200 malformed reply", status: http.StatusOK, reply: `{not json`, wantErr: true},
		{name: "401 bad write key", status: http.StatusUnauthorized, wantErr: true, permanent: true},
		{name: "503 upstream issue", status: http.StatusServiceUnavailable, wantErr: true},
		{name: "429 unexpected status", status: http.StatusTooManyRequests, wantErr: true, permanent: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			te := &testEndpoint{status: tt.status, reply: tt.reply}
			sender, _ := newTestSender(t, te)

			err := sender.Send(context.Background(), []byte(`[]`))
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.permanent, consumererror.IsPermanent(err))
		})
	}
}

// failingClient simulates a transport-level failure.
type failingClient struct{}

func (failingClient) Do(*http.Request) (*http.Response, error) {
	return nil, errors.New("connection refused")
}

func TestSendTransportErrorIsRetryable(t *testing.T) {
	cdc, err := codec.Get(codec.JSON)
	require.NoError(t, err)
	sender := NewHTTP(failingClient{}, Config{
		APIURL:  "http://localhost:0",
		Dataset: "d",
	}, cdc, zap.NewNop())

	sendErr := sender.Send(context.Background(), []byte(`[]`))
	require.Error(t, sendErr)
	assert.False(t, consumererror.IsPermanent(sendErr))
}

func TestNoopSenderAlwaysSucceeds(t *testing.T) {
	sender := NewNoop(zap.NewNop())
	assert.NoError(t, sender.Send(context.Background(), []byte(`[{"a":1}]`)))
}
