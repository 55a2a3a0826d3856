// Copyright 2026 The Strata Authors
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

package app

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"strata.dev/strata/router"
)

// tracerName identifies spans created by this package.
const tracerName = "strata.dev/strata/app"

// TracingRecorder creates an OpenTelemetry server span per request and
// finishes it once the pipeline settles, recording the matched route
// template (not the raw path) to keep span names low-cardinality.
type TracingRecorder struct {
	tracer trace.Tracer
}

// NewTracingRecorder returns a recorder using the global tracer provider.
func NewTracingRecorder() *TracingRecorder {
	return &TracingRecorder{tracer: otel.Tracer(tracerName)}
}

// OnRequestStart opens the server span and enriches the request context
// with it so handlers and downstream calls propagate the trace.
func (t *TracingRecorder) OnRequestStart(ctx context.Context, req *http.Request) (context.Context, any) {
	ctx, span := t.tracer.Start(ctx, req.Method,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("http.request.method", req.Method),
			attribute.String("url.path", req.URL.Path),
		),
	)
	return ctx, span
}

// OnRequestEnd records the outcome and ends the span.
func (t *TracingRecorder) OnRequestEnd(_ context.Context, state any, info router.ResponseInfo, route string, err error) {
	span, ok := state.(trace.Span)
	if !ok {
		return
	}

	if route != "" {
		span.SetAttributes(attribute.String("http.route", route))
	}
	status := 0
	if info != nil {
		status = info.StatusCode()
		span.SetAttributes(attribute.Int("http.response.status_code", status))
	}

	switch {
	case err != nil:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	case status >= http.StatusInternalServerError:
		span.SetStatus(codes.Error, http.StatusText(status))
	default:
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// Compile-time check that TracingRecorder implements ObservabilityRecorder.
var _ router.ObservabilityRecorder = (*TracingRecorder)(nil)
