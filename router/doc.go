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

// Package router implements request routing and onion-style middleware
// composition.
//
// A Router holds an ordered stack of layers: compiled routes and
// middleware mounts. Matching walks the stack in registration order, binds
// path parameters across every matching layer, and hands the resulting
// chain to Compose, which executes handlers with onion semantics: each
// handler wraps the downstream chain via Context.Next, running code before
// and after it, short-circuiting by not calling Next, and propagating the
// first error upward through every enclosing handler.
//
// Routers nest: Mount splices a sub-router's layers into the parent with
// the mount prefix applied, after which they are indistinguishable from
// natively registered ones. Named routes support reverse URL generation
// with URLFor, and AllowedMethods answers OPTIONS/405/501 from the set of
// methods registered on the matched path.
//
// The package is transport-agnostic glue between net/http and handler
// pipelines; serving lives in strata.dev/strata/app.
package router
