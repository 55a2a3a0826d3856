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

// Package recovery provides middleware that recovers from panics in
// request handlers.
package recovery

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"go.opentelemetry.io/otel/codes"

	"strata.dev/strata/router"
)

// Option defines functional options for recovery middleware configuration.
type Option func(*config)

// config holds the configuration for the recovery middleware.
type config struct {
	stackTrace bool
	logger     func(c *router.Context, err any, stack []byte)
	handler    func(c *router.Context, err any)
}

func defaultConfig() *config {
	return &config{
		stackTrace: true,
		logger:     defaultLogger,
		handler:    defaultHandler,
	}
}

// defaultLogger logs panic information with the stack trace.
func defaultLogger(c *router.Context, err any, stack []byte) {
	c.Logger().Error("panic recovered",
		"error", fmt.Sprint(err),
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"stack", string(stack),
	)
}

// defaultHandler sends a 500 Internal Server Error response.
func defaultHandler(c *router.Context, _ any) {
	_ = c.JSON(http.StatusInternalServerError, map[string]any{
		"error": "Internal server error",
		"code":  "INTERNAL_ERROR",
	})
}

// WithStackTrace enables or disables stack trace capture on panic.
func WithStackTrace(enable bool) Option {
	return func(cfg *config) {
		cfg.stackTrace = enable
	}
}

// WithLogger sets a custom logger for panic messages.
func WithLogger(fn func(c *router.Context, err any, stack []byte)) Option {
	return func(cfg *config) {
		cfg.logger = fn
	}
}

// WithHandler sets a custom recovery handler.
func WithHandler(fn func(c *router.Context, err any)) Option {
	return func(cfg *config) {
		cfg.handler = fn
	}
}

// New returns middleware that recovers from panics in downstream handlers,
// logs the panic, marks the active trace span as failed, and writes a 500
// response (unless a response was already in flight).
//
// Register it first so it encloses the rest of the chain:
//
//	r := router.MustNew()
//	r.Use(recovery.New())
func New(opts ...Option) router.HandlerFunc {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(c *router.Context) (err error) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}

			var stack []byte
			if cfg.stackTrace {
				stack = debug.Stack()
			}
			cfg.logger(c, rec, stack)

			if span := c.TraceSpan(); span.IsRecording() {
				span.SetStatus(codes.Error, fmt.Sprintf("panic: %v", rec))
			}

			if !c.ResponseWritten() {
				cfg.handler(c, rec)
			}
			err = nil
		}()

		return c.Next()
	}
}
