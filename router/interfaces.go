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
	"context"
	"net/http"
)

// HandlerFunc is one layer of a request pipeline. A handler may run code
// before and after the downstream chain by calling c.Next, may short-circuit
// by writing a response and returning without calling Next, and reports
// failure through its error return.
type HandlerFunc func(c *Context) error

// ParamHandler validates or loads a named path parameter. It runs before
// the handlers of every layer that declares the parameter; it continues the
// chain by calling c.Next and short-circuits by returning without doing so.
type ParamHandler func(c *Context, value string) error

// ResponseInfo exposes response metadata captured by the context's response
// wrapper. Middleware that wraps c.Response should keep implementing it.
type ResponseInfo interface {
	// StatusCode returns the HTTP status code written to the response,
	// or 200 if a body was written without an explicit status.
	StatusCode() int

	// Size returns the number of body bytes written so far.
	Size() int64

	// Written returns true once status or body has been written.
	Written() bool
}

// ObservabilityRecorder provides lifecycle hooks around request dispatch.
// Implementations typically record metrics, create trace spans, or both.
//
// Lifecycle:
//  1. OnRequestStart is called before the pipeline runs. It may enrich the
//     request context (e.g. with a trace span) and returns an opaque state
//     token. A nil token excludes the request from OnRequestEnd.
//  2. OnRequestEnd is called after the pipeline settles, with the response
//     metadata, the matched route template ("" when no route matched) and
//     the pipeline error, if any.
//
// All methods must be safe for concurrent use.
type ObservabilityRecorder interface {
	OnRequestStart(ctx context.Context, req *http.Request) (context.Context, any)
	OnRequestEnd(ctx context.Context, state any, info ResponseInfo, route string, err error)
}

// WrapHandler adapts a plain http.Handler into a HandlerFunc. The wrapped
// handler terminates the chain: it does not call Next.
func WrapHandler(h http.Handler) HandlerFunc {
	return func(c *Context) error {
		h.ServeHTTP(c.Response, c.Request)
		return nil
	}
}
