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

package recovery

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"strata.dev/strata/router"
)

func run(t *testing.T, h router.HandlerFunc, method, target string) (*httptest.ResponseRecorder, error) {
	t.Helper()
	w := httptest.NewRecorder()
	c := router.AcquireContext(w, httptest.NewRequest(method, target, nil))
	defer router.ReleaseContext(c)
	return w, h(c)
}

func TestRecoversPanic(t *testing.T) {
	t.Parallel()

	pipeline := router.Compose(New(), func(c *router.Context) error {
		panic("kaboom")
	})

	w, err := run(t, pipeline, http.MethodGet, "/")
	require.NoError(t, err, "a recovered panic must not surface as a pipeline error")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Internal server error","code":"INTERNAL_ERROR"}`, w.Body.String())
}

func TestPassesThroughWithoutPanic(t *testing.T) {
	t.Parallel()

	pipeline := router.Compose(New(), func(c *router.Context) error {
		return c.String(http.StatusOK, "fine")
	})

	w, err := run(t, pipeline, http.MethodGet, "/")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "fine", w.Body.String())
}

func TestDoesNotOverwritePartialResponse(t *testing.T) {
	t.Parallel()

	pipeline := router.Compose(New(), func(c *router.Context) error {
		if err := c.String(http.StatusOK, "partial"); err != nil {
			return err
		}
		panic("after write")
	})

	w, err := run(t, pipeline, http.MethodGet, "/")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "partial", w.Body.String())
}

func TestCustomLoggerAndHandler(t *testing.T) {
	t.Parallel()

	var loggedErr any
	var handled bool
	pipeline := router.Compose(
		New(
			WithStackTrace(false),
			WithLogger(func(c *router.Context, err any, stack []byte) {
				loggedErr = err
				assert.Nil(t, stack, "stack capture disabled")
			}),
			WithHandler(func(c *router.Context, err any) {
				handled = true
				_ = c.String(http.StatusServiceUnavailable, "down")
			}),
		),
		func(c *router.Context) error {
			panic("custom")
		},
	)

	w, err := run(t, pipeline, http.MethodGet, "/")
	require.NoError(t, err)
	assert.Equal(t, "custom", loggedErr)
	assert.True(t, handled)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
