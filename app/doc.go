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

// Package app is the request dispatcher around strata.dev/strata/router.
//
// An App owns the top-level middleware list and composes it into a single
// pipeline exactly once; dispatching before construction finishes fails
// with router.ErrDispatchWhileConstructing. Per request the App binds a
// fresh context, runs the pipeline, and performs exactly one response
// write: the handler's output, the default not-found state, or the error
// handler's conversion of a pipeline error.
//
// The package also carries the operational surface: HTTP serving with h2c
// and timeout configuration, slog-based logging, OpenTelemetry tracing and
// Prometheus metrics recorders.
package app
