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
	"errors"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"strata.dev/strata/router"
)

// ErrorHandler converts an error escaping the pipeline into a response.
// The response wrapper guarantees at most one write even if the handler
// races a partial write from a failed handler.
type ErrorHandler func(c *router.Context, err error)

// App is the request dispatcher: it owns the top-level middleware list,
// builds it into a single pipeline exactly once, and per request runs the
// pipeline over a fresh context, finishing with exactly one response write:
// the success path, the default not-found state, or the error handler.
//
// Example:
//
//	r := router.MustNew()
//	r.GET("/ping", func(c *router.Context) error {
//	    return c.String(http.StatusOK, "pong")
//	})
//
//	a := app.New()
//	a.Use(r.Routes(), r.AllowedMethods())
//	log.Fatal(a.Serve(":8080"))
type App struct {
	mu         sync.Mutex
	middleware []router.HandlerFunc
	dispatch   atomic.Pointer[router.HandlerFunc]
	building   atomic.Bool

	logger       *slog.Logger
	errorHandler ErrorHandler
	notFound     router.HandlerFunc
	recorders    []router.ObservabilityRecorder
	metrics      *MetricsRecorder

	h2c      bool
	timeouts serverTimeouts
	server   *http.Server
}

// New creates an application with optional configuration.
func New(opts ...Option) *App {
	a := &App{
		logger:   slog.New(slog.NewJSONHandler(os.Stderr, nil)),
		timeouts: defaultServerTimeouts(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.errorHandler == nil {
		a.errorHandler = a.defaultErrorHandler
	}
	return a
}

// Use appends middleware to the application pipeline. Middleware cannot be
// added once the pipeline has been built: the composed dispatch function is
// constructed atomically and never rebuilt mid-flight.
func (a *App) Use(middleware ...router.HandlerFunc) *App {
	if a.dispatch.Load() != nil {
		panic("app: middleware registered after the pipeline was built")
	}
	a.middleware = append(a.middleware, middleware...)
	return a
}

// Build composes the middleware list into the final dispatch function.
// It runs at most once; ServeHTTP calls it implicitly on the first request.
func (a *App) Build() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.dispatch.Load() != nil {
		return
	}
	a.building.Store(true)
	h := router.Compose(a.middleware...)
	a.dispatch.Store(&h)
	a.building.Store(false)
}

// handler returns the built pipeline. Dispatching while the pipeline is
// still being composed is a usage-order bug and fails loudly.
func (a *App) handler() (router.HandlerFunc, error) {
	if p := a.dispatch.Load(); p != nil {
		return *p, nil
	}
	if a.building.Load() {
		return nil, router.ErrDispatchWhileConstructing
	}
	a.Build()
	return *a.dispatch.Load(), nil
}

// Handler builds the pipeline and returns the application as an
// http.Handler.
func (a *App) Handler() http.Handler {
	a.Build()
	return a
}

// ServeHTTP implements http.Handler. Per request it acquires a fresh
// context bound to the request/response pair, runs the composed pipeline,
// and performs exactly one response write once the pipeline settles.
func (a *App) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	h, err := a.handler()
	if err != nil {
		a.logger.Error("request dispatched before pipeline construction finished", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	c := router.AcquireContext(w, req)
	defer router.ReleaseContext(c)
	c.SetLogger(a.logger)

	ctx := req.Context()
	var states []any
	if len(a.recorders) > 0 {
		states = make([]any, len(a.recorders))
		for i, rec := range a.recorders {
			enriched, state := rec.OnRequestStart(ctx, c.Request)
			if enriched != ctx {
				ctx = enriched
				c.Request = c.Request.WithContext(ctx)
			}
			states[i] = state
		}
	}

	err = h(c)
	switch {
	case err != nil:
		a.errorHandler(c, err)
	case !c.ResponseWritten():
		a.finalizeNotFound(c)
	}

	if len(a.recorders) > 0 {
		info, _ := c.Response.(router.ResponseInfo)
		for i := len(a.recorders) - 1; i >= 0; i-- {
			if states[i] == nil {
				continue
			}
			a.recorders[i].OnRequestEnd(ctx, states[i], info, c.MatchedPath(), err)
		}
	}
}

// finalizeNotFound writes the default not-found state left by a pipeline
// that produced neither body nor status.
func (a *App) finalizeNotFound(c *router.Context) {
	if a.notFound != nil {
		if err := a.notFound(c); err != nil {
			a.errorHandler(c, err)
		}
		if c.ResponseWritten() {
			return
		}
	}
	http.NotFound(c.Response, c.Request)
}

// defaultErrorHandler maps errors to status codes via router.StatusCoder,
// carries the Allow header for allowed-methods failures, and logs server
// errors.
func (a *App) defaultErrorHandler(c *router.Context, err error) {
	code := http.StatusInternalServerError
	var sc router.StatusCoder
	if errors.As(err, &sc) {
		code = sc.StatusCode()
	}

	if !c.ResponseWritten() {
		var mna *router.MethodNotAllowedError
		var nie *router.NotImplementedError
		switch {
		case errors.As(err, &mna):
			c.SetHeader("Allow", strings.Join(mna.Allowed, ", "))
		case errors.As(err, &nie):
			c.SetHeader("Allow", strings.Join(nie.Allowed, ", "))
		}

		// HTTPError messages are written by the handler author and safe to
		// expose; anything else gets the generic status text.
		body := http.StatusText(code)
		var he *router.HTTPError
		if errors.As(err, &he) && he.Message != "" {
			body = he.Message
		}
		_ = c.String(code, "%s", body)
	}

	level := slog.LevelWarn
	if code >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	a.logger.Log(context.Background(), level, "request failed",
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"status", code,
		"error", err,
	)
}
