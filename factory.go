// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

// Package "honeycombexporter" provides an exporter that converts spans
// into Honeycomb's event batch format and delivers them over HTTP.
//
// The file "factory.go" provides the logic that creates the exporter.
package honeycombexporter

import (
	"context"
	"time"

	"go.opentelemetry.io/collector/component"
	"go.opentelemetry.io/collector/config/confighttp"
	"go.opentelemetry.io/collector/config/configretry"
	"go.opentelemetry.io/collector/consumer"
	"go.opentelemetry.io/collector/exporter"
	"go.opentelemetry.io/collector/exporter/exporterhelper"
	"go.opentelemetry.io/collector/pdata/ptrace"
	"go.uber.org/zap"

	"github.com/opencensus-beam/opencensus-honeycomb/internal/attribute"
	"github.com/opencensus-beam/opencensus-honeycomb/internal/batch"
	"github.com/opencensus-beam/opencensus-honeycomb/internal/codec"
)

const (
	typeStr         = "honeycomb"
	defaultEndpoint = "https://api.honeycomb.io"
)

var componentType = component.MustNewType(typeStr)

// NewFactory creates the factory for the Honeycomb traces exporter.
func NewFactory() exporter.Factory {
	return exporter.NewFactory(
		componentType,
		createDefaultConfig,
		exporter.WithTraces(
			createTracesExporter,
			component.StabilityLevelBeta))
}

func createDefaultConfig() component.Config {
	clientConfig := confighttp.NewDefaultClientConfig()
	clientConfig.Endpoint = defaultEndpoint
	clientConfig.Timeout = 30 * time.Second
	return &Config{
		ClientConfig:  clientConfig,
		QueueSettings: exporterhelper.NewDefaultQueueSettings(),
		BackOffConfig: configretry.NewDefaultBackOffConfig(),
		Encoding:      codec.JSON,
		Attributes: AttributesConfig{
			DurationMs:   "duration_ms",
			Name:         "name",
			ParentSpanID: "trace.parent_id",
			SpanID:       "trace.span_id",
			TraceID:      "trace.trace_id",
			SpanType:     "type",
		},
		Limits: LimitsConfig{
			MaxEventBytes: batch.DefaultMaxEventBytes,
			MaxBatchBytes: batch.DefaultMaxBatchBytes,
			MaxValueBytes: attribute.DefaultMaxValueBytes,
		},
	}
}

func createTracesExporter(
	ctx context.Context,
	settings exporter.Settings,
	config component.Config) (exporter.Traces, error) {
	cfg := config.(*Config)

	cdc, codecErr := codec.Get(cfg.Encoding)
	if codecErr != nil {
		settings.Logger.Error(
			"Configured encoding is unavailable; the exporter is disabled and will discard all spans.",
			zap.String("encoding", cfg.Encoding),
			zap.NamedError("error", codecErr))
		return exporterhelper.NewTracesExporter(
			ctx,
			settings,
			cfg,
			func(context.Context, ptrace.Traces) error { return nil },
			exporterhelper.WithCapabilities(consumer.Capabilities{MutatesData: false}))
	}

	e, err := newTracesExporter(cfg, settings, cdc)
	if err != nil {
		return nil, err
	}

	return exporterhelper.NewTracesExporter(
		ctx,
		settings,
		cfg,
		e.pushTraces,
		exporterhelper.WithStart(e.start),
		exporterhelper.WithCapabilities(consumer.Capabilities{MutatesData: false}),
		// The HTTP client owns the per-request timeout.
		exporterhelper.WithTimeout(exporterhelper.TimeoutSettings{Timeout: 0}),
		exporterhelper.WithQueue(cfg.QueueSettings),
		exporterhelper.WithRetry(cfg.BackOffConfig))
}
