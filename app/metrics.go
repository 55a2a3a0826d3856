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
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"strata.dev/strata/router"
)

// routeUnmatched labels metrics for requests no route answered. Metrics
// are keyed by route template, never by raw path, to prevent cardinality
// explosion.
const routeUnmatched = "_unmatched"

// MetricsRecorder collects Prometheus request metrics around dispatch.
type MetricsRecorder struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	inflight prometheus.Gauge
}

// NewMetricsRecorder creates a recorder with its own registry.
func NewMetricsRecorder() *MetricsRecorder {
	m := &MetricsRecorder{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "strata",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests by method, route template and status code.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "strata",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration by method and route template.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		inflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "strata",
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "Requests currently being dispatched.",
		}),
	}
	m.registry.MustRegister(m.requests, m.duration, m.inflight)
	return m
}

// metricsState carries per-request measurement state between hooks.
type metricsState struct {
	start  time.Time
	method string
}

// OnRequestStart records the dispatch start.
func (m *MetricsRecorder) OnRequestStart(ctx context.Context, req *http.Request) (context.Context, any) {
	m.inflight.Inc()
	return ctx, &metricsState{start: time.Now(), method: req.Method}
}

// OnRequestEnd observes duration and outcome.
func (m *MetricsRecorder) OnRequestEnd(_ context.Context, state any, info router.ResponseInfo, route string, _ error) {
	m.inflight.Dec()
	st, ok := state.(*metricsState)
	if !ok {
		return
	}

	if route == "" {
		route = routeUnmatched
	}
	status := http.StatusInternalServerError
	if info != nil {
		status = info.StatusCode()
	}

	m.requests.WithLabelValues(st.method, route, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(st.method, route).Observe(time.Since(st.start).Seconds())
}

// Registry returns the recorder's Prometheus registry for registering
// additional collectors.
func (m *MetricsRecorder) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the scrape endpoint for the recorder's registry.
func (m *MetricsRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Compile-time check that MetricsRecorder implements ObservabilityRecorder.
var _ router.ObservabilityRecorder = (*MetricsRecorder)(nil)
