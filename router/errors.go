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
	"errors"
	"fmt"
	"net/http"
	"strings"

	"strata.dev/strata/router/pattern"
)

var (
	// ErrMultipleNext indicates that a handler invoked Next more than once
	// within the same invocation. This is a programming error in the
	// handler: re-entering the downstream chain is never valid.
	ErrMultipleNext = errors.New("next invoked more than once in the same handler")

	// ErrDispatchWhileConstructing indicates that a request was dispatched
	// before the middleware pipeline finished building. It signals a
	// usage-order bug, never a runtime condition.
	ErrDispatchWhileConstructing = errors.New("dispatch invoked while the pipeline is still being built")

	// ErrRouteNotFound indicates that the specified route could not be found.
	ErrRouteNotFound = errors.New("route not found")

	// ErrMissingRouteParameter indicates that a required parameter for the
	// route is missing. URL generation reports it as a returned error value
	// so callers can branch without panics.
	ErrMissingRouteParameter = pattern.ErrMissingParameter

	// ErrDuplicateRouteName indicates that a route name was registered twice.
	ErrDuplicateRouteName = errors.New("duplicate route name")

	// ErrInvalidPrefix indicates that a router prefix does not begin with a slash.
	ErrInvalidPrefix = errors.New("router prefix must begin with a slash")

	// ErrMethodsEmpty indicates that the router was configured with an
	// empty implemented-methods set.
	ErrMethodsEmpty = errors.New("implemented methods set must not be empty")

	// ErrResponseWriterNotHijacker indicates that the underlying
	// ResponseWriter does not implement the http.Hijacker interface.
	ErrResponseWriterNotHijacker = errors.New("responseWriter does not implement http.Hijacker")
)

// StatusCoder is implemented by errors that map to a specific HTTP status.
// The dispatcher uses it to convert returned errors into responses.
type StatusCoder interface {
	StatusCode() int
}

// HTTPError is a handler error carrying the status code the dispatcher
// should answer with. Returning one from a handler short-circuits the chain
// and lets the application's error handler write the response.
//
//	return router.NewHTTPError(http.StatusNotFound, "no such user: %s", id)
type HTTPError struct {
	Code    int
	Message string
	// Err is the wrapped cause, if any. It participates in errors.Is/As.
	Err error
}

// NewHTTPError creates an HTTPError with a formatted message.
func NewHTTPError(code int, format string, args ...any) *HTTPError {
	return &HTTPError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.Code)
}

// Unwrap returns the wrapped cause.
func (e *HTTPError) Unwrap() error { return e.Err }

// StatusCode returns the HTTP status the error maps to.
func (e *HTTPError) StatusCode() int { return e.Code }

// MethodNotAllowedError is returned (instead of writing a 405 response) by
// the allowed-methods handler when configured with WithThrow.
type MethodNotAllowedError struct {
	// Allowed lists the methods registered for the matched path.
	Allowed []string
}

// Error implements the error interface.
func (e *MethodNotAllowedError) Error() string {
	return "method not allowed, allowed: " + strings.Join(e.Allowed, ", ")
}

// StatusCode returns 405.
func (e *MethodNotAllowedError) StatusCode() int { return http.StatusMethodNotAllowed }

// NotImplementedError is returned (instead of writing a 501 response) by
// the allowed-methods handler when configured with WithThrow.
type NotImplementedError struct {
	// Allowed lists the methods registered for the matched path.
	Allowed []string
}

// Error implements the error interface.
func (e *NotImplementedError) Error() string { return "method not implemented" }

// StatusCode returns 501.
func (e *NotImplementedError) StatusCode() int { return http.StatusNotImplemented }
