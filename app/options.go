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
	"log/slog"
	"os"
	"time"

	"strata.dev/strata/router"
)

// Option defines functional options for application configuration.
type Option func(*App)

// WithLogger sets the application logger. The logger is also attached to
// every request context.
func WithLogger(l *slog.Logger) Option {
	return func(a *App) {
		a.logger = l
	}
}

// WithDevLogging replaces the default JSON logger with a colorized,
// human-readable handler for local development.
func WithDevLogging() Option {
	return func(a *App) {
		a.logger = NewDevLogger(os.Stderr)
	}
}

// WithErrorHandler overrides the handler that converts an error escaping
// the pipeline into a response.
func WithErrorHandler(h ErrorHandler) Option {
	return func(a *App) {
		a.errorHandler = h
	}
}

// WithNotFound sets a custom handler for requests that finish the pipeline
// without a response write.
func WithNotFound(h router.HandlerFunc) Option {
	return func(a *App) {
		a.notFound = h
	}
}

// WithObservability registers observability recorders invoked around every
// request, in registration order on start and reverse order on end.
func WithObservability(recorders ...router.ObservabilityRecorder) Option {
	return func(a *App) {
		a.recorders = append(a.recorders, recorders...)
	}
}

// WithTracing enables OpenTelemetry server spans around request dispatch.
func WithTracing() Option {
	return func(a *App) {
		a.recorders = append(a.recorders, NewTracingRecorder())
	}
}

// WithMetrics enables Prometheus request metrics. Expose them by mounting
// the recorder's Handler:
//
//	m := app.NewMetricsRecorder()
//	a := app.New(app.WithMetrics(m))
//	r.GET("/metrics", router.WrapHandler(m.Handler()))
func WithMetrics(m *MetricsRecorder) Option {
	return func(a *App) {
		a.metrics = m
		a.recorders = append(a.recorders, m)
	}
}

// WithH2C enables HTTP/2 cleartext support.
//
// Only use in development or behind a trusted load balancer; do not enable
// on public-facing servers without TLS.
func WithH2C(enable bool) Option {
	return func(a *App) {
		a.h2c = enable
	}
}

// WithServerTimeouts configures the HTTP server timeouts used by Serve.
// Zero values keep the defaults (5s header read, 30s read, 30s write,
// 120s idle).
func WithServerTimeouts(readHeader, read, write, idle time.Duration) Option {
	return func(a *App) {
		if readHeader > 0 {
			a.timeouts.readHeader = readHeader
		}
		if read > 0 {
			a.timeouts.read = read
		}
		if write > 0 {
			a.timeouts.write = write
		}
		if idle > 0 {
			a.timeouts.idle = idle
		}
	}
}
