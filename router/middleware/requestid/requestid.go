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

// Package requestid provides middleware that assigns a unique ID to every
// request for correlation across logs, traces and services.
package requestid

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	mathrand "math/rand/v2"
	"os"
	"time"

	"strata.dev/strata/router"
)

// DefaultHeader is the header carrying the request ID.
const DefaultHeader = "X-Request-ID"

// contextKey is the private type for the request-context key.
type contextKey struct{}

// Option defines functional options for request ID configuration.
type Option func(*config)

// config holds the configuration for the request ID middleware.
type config struct {
	header    string
	generator func() string
}

func defaultConfig() *config {
	return &config{
		header:    DefaultHeader,
		generator: generateRandomID,
	}
}

// WithHeader sets a custom request ID header name.
func WithHeader(name string) Option {
	return func(cfg *config) {
		cfg.header = name
	}
}

// WithGenerator sets a custom ID generator.
func WithGenerator(fn func() string) Option {
	return func(cfg *config) {
		cfg.generator = fn
	}
}

// generateRandomID returns a random 32-character hex string.
func generateRandomID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand failure is extremely rare; fall back to
		// timestamp + random + pid rather than failing the request.
		binary.BigEndian.PutUint64(b[:8], uint64(time.Now().UnixNano()))
		binary.BigEndian.PutUint32(b[8:12], mathrand.Uint32())
		binary.BigEndian.PutUint32(b[12:], uint32(os.Getpid()))
	}
	return hex.EncodeToString(b)
}

// New returns middleware that reuses an incoming request ID header or
// generates a fresh one, stores the ID in the request context and echoes
// it on the response.
func New(opts ...Option) router.HandlerFunc {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(c *router.Context) error {
		id := c.Request.Header.Get(cfg.header)
		if id == "" {
			id = cfg.generator()
		}

		ctx := context.WithValue(c.Request.Context(), contextKey{}, id)
		c.Request = c.Request.WithContext(ctx)
		c.Response.Header().Set(cfg.header, id)

		return c.Next()
	}
}

// Get returns the request ID bound to the context, or "".
func Get(c *router.Context) string {
	id, _ := c.Request.Context().Value(contextKey{}).(string)
	return id
}
