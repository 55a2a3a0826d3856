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
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextLifecycle(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/users/3", nil)
	w := httptest.NewRecorder()

	c := AcquireContext(w, req)
	c.params = map[string]string{"id": "3"}
	c.matchedPath = "/users/:id"
	c.matchedName = "user"
	c.SetLogger(slog.Default())

	assert.Equal(t, "3", c.Param("id"))
	assert.Equal(t, "/users/:id", c.MatchedPath())
	assert.Equal(t, "user", c.MatchedName())

	ReleaseContext(c)

	// A context acquired right after release starts clean.
	c2 := AcquireContext(httptest.NewRecorder(), req)
	defer ReleaseContext(c2)
	assert.Empty(t, c2.Param("id"))
	assert.Empty(t, c2.MatchedPath())
	assert.Empty(t, c2.MatchedName())
	assert.Nil(t, c2.Matched())
	assert.Nil(t, c2.Captures())
	assert.False(t, c2.ResponseWritten())
}

func TestContextResponseState(t *testing.T) {
	t.Parallel()

	c, w := newTestContext(t, http.MethodGet, "/")

	assert.False(t, c.ResponseWritten())
	assert.Equal(t, 0, c.ResponseStatus())
	assert.Equal(t, int64(0), c.ResponseSize())

	require.NoError(t, c.String(http.StatusTeapot, "short and stout"))

	assert.True(t, c.ResponseWritten())
	assert.Equal(t, http.StatusTeapot, c.ResponseStatus())
	assert.Equal(t, int64(len("short and stout")), c.ResponseSize())
	assert.Equal(t, http.StatusTeapot, w.Code)
}

func TestContextSingleHeaderWrite(t *testing.T) {
	t.Parallel()

	c, w := newTestContext(t, http.MethodGet, "/")

	c.Status(http.StatusOK)
	// A second status write is dropped rather than triggering the
	// net/http superfluous-WriteHeader warning.
	c.Status(http.StatusInternalServerError)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, http.StatusOK, c.ResponseStatus())
}

func TestContextImplicitStatus(t *testing.T) {
	t.Parallel()

	c, w := newTestContext(t, http.MethodGet, "/")

	_, err := c.Response.Write([]byte("body"))
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, c.ResponseStatus(), "a body write implies 200")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestContextJSON(t *testing.T) {
	t.Parallel()

	c, w := newTestContext(t, http.MethodGet, "/")

	require.NoError(t, c.JSON(http.StatusCreated, map[string]string{"id": "3"}))
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"id":"3"}`, w.Body.String())
}

func TestContextYAML(t *testing.T) {
	t.Parallel()

	c, w := newTestContext(t, http.MethodGet, "/")

	require.NoError(t, c.YAML(http.StatusOK, map[string]string{"id": "3"}))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/yaml; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "id: \"3\"")
}

func TestContextData(t *testing.T) {
	t.Parallel()

	c, w := newTestContext(t, http.MethodGet, "/")

	require.NoError(t, c.Data(http.StatusOK, "application/octet-stream", []byte{0x1, 0x2}))
	assert.Equal(t, "application/octet-stream", w.Header().Get("Content-Type"))
	assert.Equal(t, []byte{0x1, 0x2}, w.Body.Bytes())
}

func TestContextHeaders(t *testing.T) {
	t.Parallel()

	c, w := newTestContext(t, http.MethodGet, "/")
	c.Request.Header.Set("X-In", "in")

	assert.Equal(t, "in", c.Header("X-In"))

	c.SetHeader("X-Out", "out")
	c.Status(http.StatusNoContent)
	assert.Equal(t, "out", w.Header().Get("X-Out"))
}

func TestContextRedirect(t *testing.T) {
	t.Parallel()

	c, w := newTestContext(t, http.MethodGet, "/old")
	c.Redirect(http.StatusMovedPermanently, "/new")

	assert.Equal(t, http.StatusMovedPermanently, w.Code)
	assert.Equal(t, "/new", w.Header().Get("Location"))
}

func TestContextLogger(t *testing.T) {
	t.Parallel()

	c, _ := newTestContext(t, http.MethodGet, "/")
	require.NotNil(t, c.Logger(), "unset logger falls back to the no-op logger")
	assert.Same(t, NoopLogger(), c.Logger())

	l := slog.Default()
	c.SetLogger(l)
	assert.Same(t, l, c.Logger())
}

func TestContextTraceSpanNoop(t *testing.T) {
	t.Parallel()

	c, _ := newTestContext(t, http.MethodGet, "/")

	span := c.TraceSpan()
	require.NotNil(t, span)
	assert.False(t, span.IsRecording())

	// Setting attributes without a recording span is a no-op, not a panic.
	assert.NotPanics(t, func() { c.SetTraceAttributes() })
}

func TestHTTPError(t *testing.T) {
	t.Parallel()

	he := NewHTTPError(http.StatusNotFound, "no such user: %s", "3")
	assert.Equal(t, http.StatusNotFound, he.StatusCode())
	assert.Equal(t, "no such user: 3", he.Error())

	cause := ErrRouteNotFound
	wrapped := &HTTPError{Code: http.StatusNotFound, Err: cause}
	assert.ErrorIs(t, wrapped, cause)
	assert.Equal(t, cause.Error(), wrapped.Error())

	bare := &HTTPError{Code: http.StatusTeapot}
	assert.Equal(t, http.StatusText(http.StatusTeapot), bare.Error())
}
