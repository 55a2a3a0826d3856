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
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAllowedPipeline(r *Router, opts ...AllowedOption) HandlerFunc {
	return Compose(r.Routes(), r.AllowedMethods(opts...))
}

func TestAllowedMethodsOptions(t *testing.T) {
	t.Parallel()

	r := MustNew()
	r.GET("/x", func(c *Context) error { return c.String(http.StatusOK, "x") })

	w, err := dispatch(t, newAllowedPipeline(r), http.MethodOptions, "/x")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "GET", w.Header().Get("Allow"))
	assert.Equal(t, 0, w.Body.Len())
}

func TestAllowedMethodsUnionAcrossLayers(t *testing.T) {
	t.Parallel()

	r := MustNew()
	r.GET("/x", func(c *Context) error { return c.String(http.StatusOK, "x") })
	r.POST("/x", func(c *Context) error { return c.String(http.StatusCreated, "x") })

	w, err := dispatch(t, newAllowedPipeline(r), http.MethodOptions, "/x")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "GET, POST", w.Header().Get("Allow"), "union in registration order")
}

func TestAllowedMethodsMethodNotAllowed(t *testing.T) {
	t.Parallel()

	r := MustNew()
	r.GET("/x", func(c *Context) error { return c.String(http.StatusOK, "x") })

	w, err := dispatch(t, newAllowedPipeline(r), http.MethodDelete, "/x")
	require.NoError(t, err)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, "GET", w.Header().Get("Allow"))
}

func TestAllowedMethodsNotImplemented(t *testing.T) {
	t.Parallel()

	r := MustNew(WithMethods(http.MethodGet, http.MethodOptions))
	r.GET("/x", func(c *Context) error { return c.String(http.StatusOK, "x") })

	w, err := dispatch(t, newAllowedPipeline(r), "PURGE", "/x")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotImplemented, w.Code)
}

func TestAllowedMethodsThrow(t *testing.T) {
	t.Parallel()

	t.Run("405 as error value", func(t *testing.T) {
		t.Parallel()
		r := MustNew()
		r.GET("/x", func(c *Context) error { return c.String(http.StatusOK, "x") })

		w, err := dispatch(t, newAllowedPipeline(r, WithThrow()), http.MethodDelete, "/x")
		require.Error(t, err)

		var mna *MethodNotAllowedError
		require.True(t, errors.As(err, &mna))
		assert.Equal(t, []string{"GET"}, mna.Allowed)
		assert.Equal(t, http.StatusMethodNotAllowed, mna.StatusCode())
		assert.False(t, w.Flushed)
		assert.Equal(t, 0, w.Body.Len(), "throw mode writes nothing itself")
	})

	t.Run("501 as error value", func(t *testing.T) {
		t.Parallel()
		r := MustNew(WithMethods(http.MethodGet))
		r.GET("/x", func(c *Context) error { return c.String(http.StatusOK, "x") })

		_, err := dispatch(t, newAllowedPipeline(r, WithThrow()), "PURGE", "/x")
		require.Error(t, err)

		var ni *NotImplementedError
		require.True(t, errors.As(err, &ni))
		assert.Equal(t, http.StatusNotImplemented, ni.StatusCode())
	})

	t.Run("custom error factories", func(t *testing.T) {
		t.Parallel()
		custom := errors.New("nope")
		r := MustNew()
		r.GET("/x", func(c *Context) error { return c.String(http.StatusOK, "x") })

		pipeline := newAllowedPipeline(r,
			WithThrow(),
			WithMethodNotAllowed(func(allowed []string) error { return custom }),
		)
		_, err := dispatch(t, pipeline, http.MethodDelete, "/x")
		assert.ErrorIs(t, err, custom)
	})
}

func TestAllowedMethodsDoesNotInterfere(t *testing.T) {
	t.Parallel()

	r := MustNew()
	r.GET("/x", func(c *Context) error { return c.String(http.StatusOK, "hit") })

	// A handled request passes through unchanged.
	w, err := dispatch(t, newAllowedPipeline(r), http.MethodGet, "/x")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "hit", w.Body.String())
	assert.Empty(t, w.Header().Get("Allow"))

	// An unknown path stays a plain fall-through: nothing matched, so the
	// handler has no Allow set to advertise.
	w, err = dispatch(t, newAllowedPipeline(r), http.MethodDelete, "/missing")
	require.NoError(t, err)
	assert.Equal(t, 0, w.Body.Len())
	assert.Empty(t, w.Header().Get("Allow"))
}

func TestAllowedMethodsLeavesWrittenResponseAlone(t *testing.T) {
	t.Parallel()

	r := MustNew()
	r.GET("/x", func(c *Context) error { return c.String(http.StatusOK, "x") })

	// A later pipeline stage answers the request itself, not-found or
	// otherwise; the post-step must not restate what is on the wire.
	pipeline := Compose(r.Routes(), r.AllowedMethods(WithThrow()), func(c *Context) error {
		return c.String(http.StatusNotFound, "custom not found")
	})

	w, err := dispatch(t, pipeline, http.MethodDelete, "/x")
	require.NoError(t, err, "a written response must not turn into a 405 error")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "custom not found", w.Body.String())
	assert.Empty(t, w.Header().Get("Allow"))
}

func TestAllowedMethodsPropagatesDownstreamError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	r := MustNew()
	r.GET("/x", func(c *Context) error { return boom })

	_, err := dispatch(t, newAllowedPipeline(r), http.MethodGet, "/x")
	assert.ErrorIs(t, err, boom)
}
