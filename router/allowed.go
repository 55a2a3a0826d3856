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
	"net/http"
	"strings"
)

// allowedConfig holds the configuration for the allowed-methods handler.
type allowedConfig struct {
	throw            bool
	methodNotAllowed func(allowed []string) error
	notImplemented   func(allowed []string) error
}

// AllowedOption configures the allowed-methods handler.
type AllowedOption func(*allowedConfig)

// WithThrow makes the handler return catchable error values instead of
// writing 405/501 responses, so upstream middleware can convert them.
func WithThrow() AllowedOption {
	return func(cfg *allowedConfig) {
		cfg.throw = true
	}
}

// WithMethodNotAllowed overrides the error returned for 405 conditions
// under WithThrow.
func WithMethodNotAllowed(fn func(allowed []string) error) AllowedOption {
	return func(cfg *allowedConfig) {
		cfg.methodNotAllowed = fn
	}
}

// WithNotImplemented overrides the error returned for 501 conditions under
// WithThrow.
func WithNotImplemented(fn func(allowed []string) error) AllowedOption {
	return func(cfg *allowedConfig) {
		cfg.notImplemented = fn
	}
}

// AllowedMethods returns a handler responding to requests whose path is
// known but whose verb is not. It must run as a post-step: it wraps Next
// and acts only once downstream processing completes without writing a
// response.
//
// Behavior, in order:
//   - a verb outside the router's implemented set yields 501 plus an Allow
//     header (or a *NotImplementedError under WithThrow);
//   - an OPTIONS request for a path with known methods yields 200, an
//     empty body and the Allow header;
//   - any other verb not among the path's methods yields 405 plus Allow
//     (or a *MethodNotAllowedError under WithThrow).
//
// The Allow set is the union of methods across every layer that matched
// the request path, as accumulated in the context by Routes.
func (r *Router) AllowedMethods(opts ...AllowedOption) HandlerFunc {
	cfg := &allowedConfig{
		methodNotAllowed: func(allowed []string) error {
			return &MethodNotAllowedError{Allowed: allowed}
		},
		notImplemented: func(allowed []string) error {
			return &NotImplementedError{Allowed: allowed}
		},
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(c *Context) error {
		if err := c.Next(); err != nil {
			return err
		}
		// Act only when downstream left the response unwritten, the
		// dispatcher's default not-found state. A response already on the
		// wire cannot be restated, whatever its status.
		if c.ResponseWritten() {
			return nil
		}

		allowed := allowedSet(c.matched)
		method := strings.ToUpper(c.Request.Method)

		if !r.implements(method) {
			if cfg.throw {
				return cfg.notImplemented(allowed)
			}
			c.SetHeader("Allow", strings.Join(allowed, ", "))
			c.Status(http.StatusNotImplemented)
			return nil
		}

		if len(allowed) == 0 {
			return nil
		}

		if method == http.MethodOptions {
			c.SetHeader("Allow", strings.Join(allowed, ", "))
			c.SetHeader("Content-Length", "0")
			c.Status(http.StatusOK)
			return nil
		}

		if !containsMethod(allowed, method) {
			if cfg.throw {
				return cfg.methodNotAllowed(allowed)
			}
			c.SetHeader("Allow", strings.Join(allowed, ", "))
			c.Status(http.StatusMethodNotAllowed)
		}
		return nil
	}
}

// allowedSet computes the union of methods across layers in first-seen
// order, keeping the Allow header deterministic.
func allowedSet(matched []*Layer) []string {
	var allowed []string
	seen := make(map[string]bool, 4)
	for _, l := range matched {
		for _, m := range l.methods {
			if !seen[m] {
				seen[m] = true
				allowed = append(allowed, m)
			}
		}
	}
	return allowed
}

func containsMethod(methods []string, method string) bool {
	for _, m := range methods {
		if m == method {
			return true
		}
	}
	return false
}
