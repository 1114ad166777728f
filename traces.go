// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

// Package "honeycombexporter" provides an exporter that converts spans
// into Honeycomb's event batch format and delivers them over HTTP.
//
// The file "traces.go" provides the per-export-cycle pipeline.
package honeycombexporter

import (
	"context"
	"fmt"

	"go.opentelemetry.io/collector/component"
	"go.opentelemetry.io/collector/exporter"
	"go.opentelemetry.io/collector/pdata/ptrace"
	"go.uber.org/zap"

	"github.com/opencensus-beam/opencensus-honeycomb/internal/batch"
	"github.com/opencensus-beam/opencensus-honeycomb/internal/codec"
	"github.com/opencensus-beam/opencensus-honeycomb/internal/event"
	"github.com/opencensus-beam/opencensus-honeycomb/internal/sampling"
	"github.com/opencensus-beam/opencensus-honeycomb/internal/transmit"
)

type tracesExporter struct {
	cfg       *Config
	settings  exporter.Settings
	codec     codec.Codec
	assembler *event.Assembler
	chain     *sampling.Chain
	chunker   *batch.Chunker
	sender    transmit.Sender
	userAgent string
}

func newTracesExporter(cfg *Config, settings exporter.Settings, cdc codec.Codec) (*tracesExporter, error) {
	samplers, err := samplersFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	limits := batch.Limits{
		MaxEventBytes:  cfg.Limits.MaxEventBytes,
		MaxBatchBytes:  cfg.Limits.MaxBatchBytes,
		MaxBatchEvents: cfg.BatchSize,
	}

	return &tracesExporter{
		cfg:       cfg,
		settings:  settings,
		codec:     cdc,
		assembler: event.NewAssembler(cfg.nameMap(), cfg.SampleRateAttribute, cfg.Limits.MaxValueBytes),
		chain:     sampling.NewChain(samplers, settings.Logger),
		chunker:   batch.NewChunker(limits, settings.Logger),
		userAgent: fmt.Sprintf("opencensus-honeycomb/%s", settings.BuildInfo.Version),
	}, nil
}

func samplersFromConfig(cfg *Config) ([]sampling.Sampler, error) {
	registry := sampling.NewRegistry()
	samplers := make([]sampling.Sampler, 0, len(cfg.Samplers))
	for _, sc := range cfg.Samplers {
		s, err := registry.Create(sc.Type, sampling.Options{Rate: sc.Rate, All: sc.All})
		if err != nil {
			return nil, err
		}
		samplers = append(samplers, s)
	}
	return samplers, nil
}

// start wires up the delivery backend. Without a write key the exporter
// swaps in a backend that accepts and discards every batch.
func (e *tracesExporter) start(ctx context.Context, host component.Host) error {
	if string(e.cfg.APIKey) == "" {
		e.settings.Logger.Warn("No API key configured; batches will be accepted and discarded locally.")
		e.sender = transmit.NewNoop(e.settings.Logger)
		return nil
	}

	client, err := e.cfg.ClientConfig.ToClient(ctx, host, e.settings.TelemetrySettings)
	if err != nil {
		return err
	}
	e.sender = transmit.NewHTTP(client, transmit.Config{
		APIURL:    e.cfg.Endpoint,
		Dataset:   e.cfg.Dataset,
		APIKey:    string(e.cfg.APIKey),
		UserAgent: e.userAgent,
	}, e.codec, e.settings.Logger)
	return nil
}

// pushTraces runs one export cycle: assemble, sample, encode, chunk and
// send. Batches are sent sequentially; the first failed batch decides the
// outcome of the whole export.
func (e *tracesExporter) pushTraces(ctx context.Context, td ptrace.Traces) error {
	events := e.assemble(td)
	if len(events) == 0 {
		return nil
	}
	events = e.chain.Apply(events)

	encoded := make([][]byte, 0, len(events))
	for _, ev := range events {
		if !sampling.Keep(ev.TraceID(), ev.SampleRate) {
			continue
		}
		data, err := e.codec.Encode(ev)
		if err != nil {
			e.settings.Logger.Warn("Failed to encode event; dropping it",
				zap.NamedError("error", err))
			continue
		}
		encoded = append(encoded, data)
	}

	for _, b := range e.chunker.Chunk(encoded) {
		if err := e.sender.Send(ctx, b.Body()); err != nil {
			return err
		}
	}
	return nil
}

// assemble builds one event per span, cleaning each resource's attributes
// once and sharing them across that resource's spans.
func (e *tracesExporter) assemble(td ptrace.Traces) []*event.Event {
	var events []*event.Event
	resourceSpans := td.ResourceSpans()
	for i := 0; i < resourceSpans.Len(); i++ {
		resourceSpan := resourceSpans.At(i)
		resourceAttrs := event.CleanResource(resourceSpan.Resource())
		scopeSpans := resourceSpan.ScopeSpans()
		for j := 0; j < scopeSpans.Len(); j++ {
			spans := scopeSpans.At(j).Spans()
			for k := 0; k < spans.Len(); k++ {
				events = append(events, e.assembler.Assemble(spans.At(k), resourceAttrs))
			}
		}
	}
	return events
}
