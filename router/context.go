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

package router

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gopkg.in/yaml.v3"
)

// noopLogger is a singleton no-op logger used when no logger is configured.
var noopLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// NoopLogger returns the singleton no-op logger.
func NoopLogger() *slog.Logger {
	return noopLogger
}

// Context is the flat, per-request state threaded through a handler
// pipeline. A fresh (or fully reset pooled) Context is created for every
// request; no state is shared between requests.
//
// The router writes matched-route metadata into the context as layers bind:
// the matched-layers list, extracted params and raw captures, the matched
// path template and the matched route name.
//
// ⚠️ Context is NOT thread-safe and is returned to a pool after the request
// completes. Do not retain references beyond the handler lifetime; copy any
// data needed by goroutines that outlive the request.
type Context struct {
	Request  *http.Request
	Response http.ResponseWriter // wraps the transport writer; implements ResponseInfo

	params      map[string]string
	captures    []string
	matched     []*Layer // layers whose pattern matched the path
	matchedPath string
	matchedName string

	next   func() error
	logger *slog.Logger

	rw responseWriter
}

var contextPool = sync.Pool{
	New: func() any { return &Context{} },
}

// AcquireContext returns a pooled Context reset for the given
// request/response pair. The response writer is wrapped to capture status
// and size and to guarantee a single header write per request.
func AcquireContext(w http.ResponseWriter, req *http.Request) *Context {
	c := contextPool.Get().(*Context)
	c.rw.reset(w)
	c.Request = req
	c.Response = &c.rw
	return c
}

// ReleaseContext returns a Context to the pool. The caller must not touch
// the context afterwards.
func ReleaseContext(c *Context) {
	c.Request = nil
	c.Response = nil
	c.params = nil
	c.captures = nil
	c.matched = nil
	c.matchedPath = ""
	c.matchedName = ""
	c.next = nil
	c.logger = nil
	c.rw.reset(nil)
	contextPool.Put(c)
}

// Next runs the rest of the pipeline and returns once every downstream
// handler has finished, with whatever error the chain produced. Code after
// Next is post-processing: it observes the downstream completion. Outside a
// composed pipeline Next is a no-op.
func (c *Context) Next() error {
	if c.next == nil {
		return nil
	}
	return c.next()
}

// Param returns the value of a bound path parameter, or "" when absent.
func (c *Context) Param(name string) string {
	return c.params[name]
}

// Params returns the bound path parameters. The map is live for the
// duration of the request; treat it as read-only.
func (c *Context) Params() map[string]string {
	if c.params == nil {
		c.params = make(map[string]string)
	}
	return c.params
}

// Captures returns the raw (undecoded) capture substrings of the most
// recently bound layer.
func (c *Context) Captures() []string {
	return c.captures
}

// Matched returns the layers whose pattern matched the request path, in
// registration order, accumulated across routers. The allowed-methods
// handler consumes it to compute the Allow set.
func (c *Context) Matched() []*Layer {
	return c.matched
}

// MatchedPath returns the path template of the most specific matched layer.
func (c *Context) MatchedPath() string {
	return c.matchedPath
}

// MatchedName returns the route name of the most specific matched named
// layer, or "".
func (c *Context) MatchedName() string {
	return c.matchedName
}

// Logger returns the request logger, or a no-op logger when none is set.
func (c *Context) Logger() *slog.Logger {
	if c.logger == nil {
		return noopLogger
	}
	return c.logger
}

// SetLogger sets the request logger.
func (c *Context) SetLogger(l *slog.Logger) {
	c.logger = l
}

// ResponseWritten reports whether status or body has been written.
func (c *Context) ResponseWritten() bool {
	if info, ok := c.Response.(ResponseInfo); ok {
		return info.Written()
	}
	return false
}

// ResponseStatus returns the status code written so far (200 when a body
// was written without an explicit status, 0 when nothing was written).
func (c *Context) ResponseStatus() int {
	if info, ok := c.Response.(ResponseInfo); ok {
		if !info.Written() {
			return 0
		}
		return info.StatusCode()
	}
	return 0
}

// ResponseSize returns the number of body bytes written so far.
func (c *Context) ResponseSize() int64 {
	if info, ok := c.Response.(ResponseInfo); ok {
		return info.Size()
	}
	return 0
}

// Status writes the status code with no body.
func (c *Context) Status(code int) {
	c.Response.WriteHeader(code)
}

// SetHeader sets a response header. It has no effect after the header has
// been written.
func (c *Context) SetHeader(key, value string) {
	c.Response.Header().Set(key, value)
}

// Header returns the first value of a request header.
func (c *Context) Header(key string) string {
	return c.Request.Header.Get(key)
}

// String writes a formatted plain-text response.
func (c *Context) String(code int, format string, args ...any) error {
	c.Response.Header().Set("Content-Type", "text/plain; charset=utf-8")
	c.Response.WriteHeader(code)
	_, err := fmt.Fprintf(c.Response, format, args...)
	return err
}

// JSON writes a JSON response.
func (c *Context) JSON(code int, v any) error {
	c.Response.Header().Set("Content-Type", "application/json; charset=utf-8")
	c.Response.WriteHeader(code)
	return json.NewEncoder(c.Response).Encode(v)
}

// YAML writes a YAML response.
func (c *Context) YAML(code int, v any) error {
	c.Response.Header().Set("Content-Type", "application/yaml; charset=utf-8")
	c.Response.WriteHeader(code)
	enc := yaml.NewEncoder(c.Response)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// Data writes raw bytes with the given content type.
func (c *Context) Data(code int, contentType string, data []byte) error {
	c.Response.Header().Set("Content-Type", contentType)
	c.Response.WriteHeader(code)
	_, err := c.Response.Write(data)
	return err
}

// Redirect writes an HTTP redirect to location.
func (c *Context) Redirect(code int, location string) {
	http.Redirect(c.Response, c.Request, location, code)
}

// TraceSpan returns the active trace span from the request context. When
// tracing is not configured it returns a no-op span.
func (c *Context) TraceSpan() trace.Span {
	return trace.SpanFromContext(c.Request.Context())
}

// SetTraceAttributes adds attributes to the active trace span, if any.
func (c *Context) SetTraceAttributes(attrs ...attribute.KeyValue) {
	span := c.TraceSpan()
	if span.IsRecording() {
		span.SetAttributes(attrs...)
	}
}
