// Copyright 2026 The Edgekit Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package dispatch

import (
	"context"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// ObservabilityRecorder provides lifecycle hooks around every dispatch.
//
// Lifecycle:
//  1. OnDispatchStart(ctx, req) → (enrichedCtx, state). The enriched
//     context is always propagated to middleware and handlers. A nil
//     state excludes the request: OnDispatchEnd is not called.
//  2. OnDispatchEnd(ctx, state, resp, routePattern) after the pipeline
//     produces a response. routePattern is the matched canonical pattern
//     (or "*"), so implementations can key metrics by pattern instead of
//     raw path and avoid cardinality explosion. resp may be nil when an
//     unhandled failure propagated with error handling disabled.
//
// All methods must be safe for concurrent use.
type ObservabilityRecorder interface {
	OnDispatchStart(ctx context.Context, req *http.Request) (context.Context, any)
	OnDispatchEnd(ctx context.Context, state any, resp *Response, routePattern string)
}

const otelScope = "edgekit.dev/dispatch"

// OTelRecorder records a span plus request count and duration metrics per
// dispatch through the OpenTelemetry API. Provider setup (exporters,
// sampling) belongs to the host runtime; the zero-value globals are used
// unless providers are supplied.
type OTelRecorder struct {
	tracer   trace.Tracer
	requests metric.Int64Counter
	duration metric.Float64Histogram
}

// otelState is the opaque per-dispatch token.
type otelState struct {
	span   trace.Span
	start  time.Time
	method string
}

// NewOTelRecorder creates an OTelRecorder. Nil providers fall back to the
// otel globals.
func NewOTelRecorder(tp trace.TracerProvider, mp metric.MeterProvider) (*OTelRecorder, error) {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	if mp == nil {
		mp = otel.GetMeterProvider()
	}

	meter := mp.Meter(otelScope)
	requests, err := meter.Int64Counter("dispatch.requests",
		metric.WithDescription("Number of dispatched requests"))
	if err != nil {
		return nil, err
	}
	duration, err := meter.Float64Histogram("dispatch.duration",
		metric.WithDescription("Dispatch duration in seconds"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	return &OTelRecorder{
		tracer:   tp.Tracer(otelScope),
		requests: requests,
		duration: duration,
	}, nil
}

func (o *OTelRecorder) OnDispatchStart(ctx context.Context, req *http.Request) (context.Context, any) {
	state := &otelState{start: time.Now(), method: req.Method}
	ctx, state.span = o.tracer.Start(ctx, req.Method+" "+req.URL.Path,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("http.request.method", req.Method),
			attribute.String("url.path", req.URL.Path),
		))
	return ctx, state
}

func (o *OTelRecorder) OnDispatchEnd(ctx context.Context, state any, resp *Response, routePattern string) {
	s, ok := state.(*otelState)
	if !ok {
		return
	}

	status := http.StatusInternalServerError
	if resp != nil {
		status = resp.StatusCode
		if status == 0 {
			status = http.StatusOK
		}
	}

	attrs := []attribute.KeyValue{
		attribute.String("http.request.method", s.method),
		attribute.String("http.route", routePattern),
		attribute.Int("http.response.status_code", status),
	}

	o.requests.Add(ctx, 1, metric.WithAttributes(attrs...))
	o.duration.Record(ctx, time.Since(s.start).Seconds(), metric.WithAttributes(attrs...))

	s.span.SetName(s.method + " " + routePattern)
	s.span.SetAttributes(attrs...)
	if status >= http.StatusInternalServerError {
		s.span.SetStatus(codes.Error, http.StatusText(status))
	}
	s.span.End()
}
