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

package accesslog

import (
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"strata.dev/strata/router"
)

func run(t *testing.T, h router.HandlerFunc, method, target string) error {
	t.Helper()
	c := router.AcquireContext(httptest.NewRecorder(), httptest.NewRequest(method, target, nil))
	defer router.ReleaseContext(c)
	return h(c)
}

func TestLogsOneLinePerRequest(t *testing.T) {
	t.Parallel()

	var sb strings.Builder
	logger := slog.New(slog.NewTextHandler(&sb, nil))

	pipeline := router.Compose(
		New(WithLogger(logger)),
		func(c *router.Context) error {
			return c.String(http.StatusOK, "payload")
		},
	)

	require.NoError(t, run(t, pipeline, http.MethodGet, "/users/3"))

	out := sb.String()
	assert.Equal(t, 1, strings.Count(out, "msg=request"))
	assert.Contains(t, out, "method=GET")
	assert.Contains(t, out, "path=/users/3")
	assert.Contains(t, out, "status=200")
	assert.Contains(t, out, "level=INFO")
}

func TestLogsErrorLevelOnFailure(t *testing.T) {
	t.Parallel()

	var sb strings.Builder
	logger := slog.New(slog.NewTextHandler(&sb, nil))
	boom := errors.New("boom")

	pipeline := router.Compose(
		New(WithLogger(logger)),
		func(c *router.Context) error { return boom },
	)

	err := run(t, pipeline, http.MethodGet, "/fail")
	assert.ErrorIs(t, err, boom, "the error still propagates upstream")
	assert.Contains(t, sb.String(), "level=ERROR")
	assert.Contains(t, sb.String(), "error=boom")
}

func TestLogsWarnLevelOnClientError(t *testing.T) {
	t.Parallel()

	var sb strings.Builder
	logger := slog.New(slog.NewTextHandler(&sb, nil))

	pipeline := router.Compose(
		New(WithLogger(logger)),
		func(c *router.Context) error {
			return c.String(http.StatusNotFound, "nope")
		},
	)

	require.NoError(t, run(t, pipeline, http.MethodGet, "/missing"))
	assert.Contains(t, sb.String(), "level=WARN")
}

func TestExcludePaths(t *testing.T) {
	t.Parallel()

	var sb strings.Builder
	logger := slog.New(slog.NewTextHandler(&sb, nil))

	pipeline := router.Compose(
		New(
			WithLogger(logger),
			WithExcludePaths("/health"),
			WithExcludePrefixes("/internal"),
		),
		func(c *router.Context) error {
			return c.String(http.StatusOK, "ok")
		},
	)

	require.NoError(t, run(t, pipeline, http.MethodGet, "/health"))
	require.NoError(t, run(t, pipeline, http.MethodGet, "/internal/debug"))
	assert.Empty(t, sb.String())

	require.NoError(t, run(t, pipeline, http.MethodGet, "/api"))
	assert.Contains(t, sb.String(), "path=/api")
}

func TestFallsBackToContextLogger(t *testing.T) {
	t.Parallel()

	var sb strings.Builder
	logger := slog.New(slog.NewTextHandler(&sb, nil))

	pipeline := router.Compose(New(), func(c *router.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	c := router.AcquireContext(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	defer router.ReleaseContext(c)
	c.SetLogger(logger)

	require.NoError(t, pipeline(c))
	assert.Contains(t, sb.String(), "msg=request")
}
