// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

// Package "honeycombexporter" provides an exporter that converts spans
// into Honeycomb's event batch format and delivers them over HTTP.
//
// The file "config.go" manages interaction with config options.
package honeycombexporter

import (
	"errors"
	"fmt"
	"net/url"

	"go.opentelemetry.io/collector/config/confighttp"
	"go.opentelemetry.io/collector/config/configopaque"
	"go.opentelemetry.io/collector/config/configretry"
	"go.opentelemetry.io/collector/exporter/exporterhelper"
	"go.uber.org/multierr"

	"github.com/opencensus-beam/opencensus-honeycomb/internal/event"
)

// "Config" defines the configuration structure for this exporter.
type Config struct {
	// The HTTP client settings, including the ingestion endpoint URL.
	confighttp.ClientConfig `mapstructure:",squash"`

	// How outgoing batches queue up when the endpoint is slow.
	QueueSettings exporterhelper.QueueSettings `mapstructure:"sending_queue"`

	// How retryable delivery failures are retried by the caller.
	BackOffConfig configretry.BackOffConfig `mapstructure:"retry_on_failure"`

	// Dataset names the Honeycomb dataset receiving the events.
	Dataset string `mapstructure:"dataset"`

	// APIKey is the team write key. When empty, batches are accepted
	// and discarded locally instead of being sent.
	APIKey configopaque.String `mapstructure:"api_key"`

	// Encoding selects the wire codec. Only "json" is built in; an
	// unavailable encoding disables the exporter.
	Encoding string `mapstructure:"encoding"`

	// SampleRateAttribute names a span attribute whose value becomes the
	// event's sample rate. Empty means no attribute is special-cased.
	SampleRateAttribute string `mapstructure:"sample_rate_attribute"`

	// Attributes maps derived span metadata to wire attribute names.
	Attributes AttributesConfig `mapstructure:"attributes"`

	// Limits overrides the endpoint's published size ceilings.
	Limits LimitsConfig `mapstructure:"limits"`

	// BatchSize additionally caps the number of events per batch. Zero
	// means batches are bounded by size alone.
	BatchSize int `mapstructure:"batch_size"`

	// Samplers configures the sampler chain applied to assembled events.
	Samplers []SamplerConfig `mapstructure:"samplers"`
}

// "AttributesConfig" maps each derived metadata field to the attribute
// name used on the wire. An empty mapping drops that field.
type AttributesConfig struct {
	// The name used for the span duration in milliseconds.
	DurationMs string `mapstructure:"duration_ms"`

	// The name used for the span name.
	Name string `mapstructure:"name"`

	// The name used for the hex-encoded parent span identifier.
	ParentSpanID string `mapstructure:"parent_span_id"`

	// The name used for the hex-encoded span identifier.
	SpanID string `mapstructure:"span_id"`

	// The name used for the hex-encoded trace identifier.
	TraceID string `mapstructure:"trace_id"`

	// The name used for the span kind.
	SpanType string `mapstructure:"span_type"`

	// Any fields which did not fall into the defined structure.
	UnknownFields map[string]interface{} `mapstructure:",remain"`
}

// "LimitsConfig" overrides the ingestion endpoint's size ceilings.
type LimitsConfig struct {
	// MaxEventBytes is the per-event ceiling; larger events are dropped.
	MaxEventBytes int `mapstructure:"max_event_size"`

	// MaxBatchBytes is the per-batch ceiling, delimiters included.
	MaxBatchBytes int `mapstructure:"max_batch_size"`

	// MaxValueBytes is the per-attribute-value ceiling; longer string
	// values are trimmed.
	MaxValueBytes int `mapstructure:"max_value_size"`

	// Any fields which did not fall into the defined structure.
	UnknownFields map[string]interface{} `mapstructure:",remain"`
}

// "SamplerConfig" configures one entry of the sampler chain.
type SamplerConfig struct {
	// Type identifies the sampler in the registry, e.g. "fixed_rate".
	Type string `mapstructure:"type"`

	// Rate is the "1 in n" rate the sampler applies.
	Rate int64 `mapstructure:"rate"`

	// All forces the sampler to override already-decided rates.
	All bool `mapstructure:"all"`

	// Any fields which did not fall into the defined structure.
	UnknownFields map[string]interface{} `mapstructure:",remain"`
}

// Helper to raise errors if there are any unknown fields.
func errorIfUnknown(u map[string]interface{}) error {
	for k := range u {
		return fmt.Errorf("found unknown key: %v", k)
	}
	return nil
}

// Verifies that the configuration is valid.
func (c *Config) Validate() error {
	var errs error
	if c.Dataset == "" {
		errs = multierr.Append(errs, errors.New("'dataset' must not be empty"))
	}
	if c.Endpoint == "" {
		errs = multierr.Append(errs, errors.New("'endpoint' must not be empty"))
	} else if _, err := url.Parse(c.Endpoint); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("invalid 'endpoint': %w", err))
	}
	if err := c.Limits.Validate(); err != nil {
		errs = multierr.Append(errs, err)
	}
	if c.BatchSize < 0 {
		errs = multierr.Append(errs, fmt.Errorf("'batch_size' must not be negative, got %d", c.BatchSize))
	}
	for _, sampler := range c.Samplers {
		if err := sampler.Validate(); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	if err := errorIfUnknown(c.Attributes.UnknownFields); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("in 'attributes': %w", err))
	}
	return errs
}

// Verifies that the configuration is valid.
func (lc *LimitsConfig) Validate() error {
	if lc.MaxEventBytes < 0 {
		return fmt.Errorf("'limits::max_event_size' must not be negative, got %d", lc.MaxEventBytes)
	}
	if lc.MaxBatchBytes < 0 {
		return fmt.Errorf("'limits::max_batch_size' must not be negative, got %d", lc.MaxBatchBytes)
	}
	if lc.MaxValueBytes < 0 {
		return fmt.Errorf("'limits::max_value_size' must not be negative, got %d", lc.MaxValueBytes)
	}
	if lc.MaxEventBytes > 0 && lc.MaxBatchBytes > 0 && lc.MaxEventBytes > lc.MaxBatchBytes {
		return fmt.Errorf("'limits::max_event_size' (%d) must not exceed 'limits::max_batch_size' (%d)",
			lc.MaxEventBytes, lc.MaxBatchBytes)
	}
	return errorIfUnknown(lc.UnknownFields)
}

// Verifies that the configuration is valid.
func (sc *SamplerConfig) Validate() error {
	if sc.Type == "" {
		return errors.New("missing required 'type' for sampler")
	}
	if sc.Rate < 1 {
		return fmt.Errorf("sampler %q requires 'rate' >= 1, got %d", sc.Type, sc.Rate)
	}
	return errorIfUnknown(sc.UnknownFields)
}

// nameMap resolves the attribute name configuration for the assembler.
func (c *Config) nameMap() event.NameMap {
	return event.NameMap{
		DurationMs:   c.Attributes.DurationMs,
		Name:         c.Attributes.Name,
		ParentSpanID: c.Attributes.ParentSpanID,
		SpanID:       c.Attributes.SpanID,
		TraceID:      c.Attributes.TraceID,
		SpanType:     c.Attributes.SpanType,
	}
}
