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

import "strings"

// Option defines functional options for router configuration.
type Option func(*Router)

// WithPrefix prepends a path prefix to every subsequently registered route.
//
// Example:
//
//	r := router.MustNew(router.WithPrefix("/api/v1"))
//	r.GET("/users", listUsers) // matches /api/v1/users
func WithPrefix(prefix string) Option {
	return func(r *Router) {
		r.prefix = strings.TrimSuffix(prefix, "/")
	}
}

// WithStrict makes trailing slashes significant: "/users" and "/users/"
// become distinct paths. By default a single trailing slash is optional.
func WithStrict(strict bool) Option {
	return func(r *Router) {
		r.strict = strict
	}
}

// WithSensitive enables case-sensitive path matching. Matching is
// case-insensitive by default.
func WithSensitive(sensitive bool) Option {
	return func(r *Router) {
		r.sensitive = sensitive
	}
}

// WithMethods overrides the router's globally implemented verb set,
// consumed by All and by the allowed-methods handler's 501 decision.
func WithMethods(methods ...string) Option {
	return func(r *Router) {
		normalized := make([]string, 0, len(methods))
		for _, m := range methods {
			normalized = append(normalized, strings.ToUpper(m))
		}
		r.methods = normalized
	}
}
