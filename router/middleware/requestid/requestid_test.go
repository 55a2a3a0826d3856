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

package requestid

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"strata.dev/strata/router"
)

func TestGeneratesID(t *testing.T) {
	t.Parallel()

	var inHandler string
	pipeline := router.Compose(New(), func(c *router.Context) error {
		inHandler = Get(c)
		return c.String(http.StatusOK, "ok")
	})

	w := httptest.NewRecorder()
	c := router.AcquireContext(w, httptest.NewRequest(http.MethodGet, "/", nil))
	defer router.ReleaseContext(c)

	require.NoError(t, pipeline(c))
	require.Len(t, inHandler, 32, "32-character hex ID")
	assert.Equal(t, inHandler, w.Header().Get(DefaultHeader))
}

func TestReusesIncomingID(t *testing.T) {
	t.Parallel()

	pipeline := router.Compose(New(), func(c *router.Context) error {
		assert.Equal(t, "upstream-id", Get(c))
		return c.String(http.StatusOK, "ok")
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(DefaultHeader, "upstream-id")
	w := httptest.NewRecorder()
	c := router.AcquireContext(w, req)
	defer router.ReleaseContext(c)

	require.NoError(t, pipeline(c))
	assert.Equal(t, "upstream-id", w.Header().Get(DefaultHeader))
}

func TestCustomHeaderAndGenerator(t *testing.T) {
	t.Parallel()

	pipeline := router.Compose(
		New(WithHeader("X-Trace-ID"), WithGenerator(func() string { return "fixed" })),
		func(c *router.Context) error {
			assert.Equal(t, "fixed", Get(c))
			return c.String(http.StatusOK, "ok")
		},
	)

	w := httptest.NewRecorder()
	c := router.AcquireContext(w, httptest.NewRequest(http.MethodGet, "/", nil))
	defer router.ReleaseContext(c)

	require.NoError(t, pipeline(c))
	assert.Equal(t, "fixed", w.Header().Get("X-Trace-ID"))
	assert.Empty(t, w.Header().Get(DefaultHeader))
}

func TestGetWithoutMiddleware(t *testing.T) {
	t.Parallel()

	c := router.AcquireContext(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	defer router.ReleaseContext(c)
	assert.Empty(t, Get(c))
}
