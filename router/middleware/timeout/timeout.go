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

// Package timeout provides middleware that bounds downstream handler time
// by racing the downstream completion against a timer.
package timeout

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"strata.dev/strata/router"
)

// Option defines functional options for timeout middleware configuration.
type Option func(*config)

// config holds the configuration for the timeout middleware.
type config struct {
	duration time.Duration
	handler  func(w http.ResponseWriter, timeout time.Duration)
	skipFunc func(c *router.Context) bool
}

func defaultConfig() *config {
	return &config{
		duration: 30 * time.Second,
		handler:  defaultHandler,
	}
}

// defaultHandler writes a 408 response.
func defaultHandler(w http.ResponseWriter, timeout time.Duration) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusRequestTimeout)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error":   "Request timeout",
		"code":    "TIMEOUT",
		"timeout": timeout.String(),
	})
}

// WithDuration sets the timeout duration.
func WithDuration(d time.Duration) Option {
	return func(cfg *config) {
		cfg.duration = d
	}
}

// WithHandler sets a custom timeout response handler. The handler receives
// the transport writer directly: the request context must not be touched
// from the timeout path while the downstream chain may still be running.
func WithHandler(fn func(w http.ResponseWriter, timeout time.Duration)) Option {
	return func(cfg *config) {
		cfg.handler = fn
	}
}

// WithSkip skips the timeout for requests matched by fn. Streaming and
// long-poll endpoints should be skipped: downstream output is buffered
// until the chain completes, so incremental flushing does not reach the
// client under this middleware.
func WithSkip(fn func(c *router.Context) bool) Option {
	return func(cfg *config) {
		cfg.skipFunc = fn
	}
}

// New returns middleware that cancels the request context after the
// configured duration and answers 408 when the downstream chain has not
// completed by then.
//
// The downstream chain runs in a goroutine against a private response
// buffer, never against the transport writer. When the chain finishes in
// time the buffer is committed as-is; when the timer fires first the
// calling goroutine writes the timeout response to the transport writer,
// which it owns exclusively, and the buffer is discarded once the chain
// finishes. A late downstream write can therefore never interleave with
// the timeout response. The middleware always waits for the goroutine
// before returning so the pooled context is never released while
// downstream code can still touch it. Handlers must respect
// c.Request.Context() cancellation; the timer cannot interrupt running
// code. Panics in the downstream goroutine are re-raised on the calling
// goroutine so an enclosing recovery middleware still catches them.
func New(opts ...Option) router.HandlerFunc {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(c *router.Context) error {
		if cfg.skipFunc != nil && cfg.skipFunc(c) {
			return c.Next()
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.duration)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		// Snapshot everything the timeout path needs before the goroutine
		// starts; the context is off-limits while the chain may be running.
		logger := c.Logger()
		method := c.Request.Method
		path := c.Request.URL.Path

		transport := c.Response
		buf := newBufferedResponse()
		c.Response = buf
		// Every exit below waits for the downstream goroutine first, so
		// restoring here cannot race a downstream c.Response read.
		defer func() { c.Response = transport }()

		done := make(chan error, 1)
		panicChan := make(chan any, 1)

		go func() {
			defer func() {
				if rec := recover(); rec != nil {
					panicChan <- rec
				}
			}()
			done <- c.Next()
		}()

		select {
		case err := <-done:
			buf.flushTo(transport)
			return err
		case p := <-panicChan:
			panic(p)
		case <-ctx.Done():
			if !errors.Is(ctx.Err(), context.DeadlineExceeded) {
				// Client went away; wait out the chain and report its result.
				err := waitDownstream(done, panicChan)
				buf.flushTo(transport)
				return err
			}

			logger.Warn("request timeout",
				"method", method,
				"path", path,
				"timeout", cfg.duration.String(),
			)
			cfg.handler(transport, cfg.duration)

			// The goroutine may still be running and writing into the
			// buffer; it must finish before this frame returns. Buffer and
			// error are dropped: the 408 already answered the request.
			if err := waitDownstream(done, panicChan); err != nil {
				logger.Debug("downstream finished after timeout", "error", err)
			}
			return nil
		}
	}
}

func waitDownstream(done chan error, panicChan chan any) error {
	select {
	case err := <-done:
		return err
	case p := <-panicChan:
		panic(p)
	}
}

// bufferedResponse is the response the downstream chain writes to while it
// races the timer. It is owned by the downstream goroutine until the chain
// completes; the calling goroutine reads it only after the goroutine is
// done, so no locking is needed.
type bufferedResponse struct {
	header http.Header
	body   bytes.Buffer
	status int
	wrote  bool
}

func newBufferedResponse() *bufferedResponse {
	return &bufferedResponse{header: make(http.Header)}
}

// Header implements http.ResponseWriter.
func (b *bufferedResponse) Header() http.Header { return b.header }

// WriteHeader implements http.ResponseWriter, keeping the first status.
func (b *bufferedResponse) WriteHeader(code int) {
	if !b.wrote {
		b.status = code
		b.wrote = true
	}
}

// Write implements http.ResponseWriter.
func (b *bufferedResponse) Write(p []byte) (int, error) {
	b.wrote = true
	if b.status == 0 {
		b.status = http.StatusOK
	}
	return b.body.Write(p)
}

// StatusCode returns the buffered status code.
func (b *bufferedResponse) StatusCode() int {
	if b.status == 0 {
		return http.StatusOK
	}
	return b.status
}

// Size returns the buffered body size.
func (b *bufferedResponse) Size() int64 { return int64(b.body.Len()) }

// Written returns true once status or body has been buffered.
func (b *bufferedResponse) Written() bool { return b.wrote }

// flushTo commits the buffered headers, status and body. A chain that
// wrote nothing commits nothing, leaving the response in its default
// not-found state for the dispatcher.
func (b *bufferedResponse) flushTo(w http.ResponseWriter) {
	if !b.wrote {
		return
	}
	dst := w.Header()
	for k, vv := range b.header {
		dst[k] = vv
	}
	w.WriteHeader(b.StatusCode())
	if b.body.Len() > 0 {
		_, _ = w.Write(b.body.Bytes())
	}
}

// Compile-time check that bufferedResponse implements ResponseInfo.
var _ router.ResponseInfo = (*bufferedResponse)(nil)
