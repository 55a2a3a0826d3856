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

// Package accesslog provides structured access logging middleware.
package accesslog

import (
	"log/slog"
	"strings"
	"time"

	"strata.dev/strata/router"
)

// Option defines functional options for access log configuration.
type Option func(*config)

// config holds the configuration for the access log middleware.
type config struct {
	logger          *slog.Logger
	excludePaths    map[string]bool
	excludePrefixes []string
	slowThreshold   time.Duration
}

func defaultConfig() *config {
	return &config{
		excludePaths: make(map[string]bool),
	}
}

// WithLogger sets the logger. Without one the middleware falls back to the
// request context's logger.
func WithLogger(l *slog.Logger) Option {
	return func(cfg *config) {
		cfg.logger = l
	}
}

// WithExcludePaths skips logging for exact paths (health checks, metrics).
func WithExcludePaths(paths ...string) Option {
	return func(cfg *config) {
		for _, p := range paths {
			cfg.excludePaths[p] = true
		}
	}
}

// WithExcludePrefixes skips logging for paths under the given prefixes.
func WithExcludePrefixes(prefixes ...string) Option {
	return func(cfg *config) {
		cfg.excludePrefixes = append(cfg.excludePrefixes, prefixes...)
	}
}

// WithSlowThreshold logs requests slower than d at warn level.
func WithSlowThreshold(d time.Duration) Option {
	return func(cfg *config) {
		cfg.slowThreshold = d
	}
}

// New creates access log middleware. One canonical log line is emitted per
// request after the downstream chain completes, carrying method, path,
// matched route, status, size, duration and the downstream error, if any.
//
//	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
//	r.Use(accesslog.New(
//		accesslog.WithLogger(logger),
//		accesslog.WithExcludePaths("/health", "/metrics"),
//	))
func New(opts ...Option) router.HandlerFunc {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(c *router.Context) error {
		path := c.Request.URL.Path

		if cfg.excludePaths[path] {
			return c.Next()
		}
		for _, prefix := range cfg.excludePrefixes {
			if strings.HasPrefix(path, prefix) {
				return c.Next()
			}
		}

		start := time.Now()
		err := c.Next()
		duration := time.Since(start)

		logger := cfg.logger
		if logger == nil {
			logger = c.Logger()
		}

		status := c.ResponseStatus()
		attrs := []any{
			"method", c.Request.Method,
			"path", path,
			"route", c.MatchedPath(),
			"status", status,
			"size", c.ResponseSize(),
			"duration", duration,
			"remote", c.Request.RemoteAddr,
		}
		if err != nil {
			attrs = append(attrs, "error", err)
		}

		switch {
		case err != nil || status >= 500:
			logger.Error("request", attrs...)
		case status >= 400 || (cfg.slowThreshold > 0 && duration >= cfg.slowThreshold):
			logger.Warn("request", attrs...)
		default:
			logger.Info("request", attrs...)
		}

		return err
	}
}
