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

// Package pattern compiles path templates into immutable matchers.
//
// A template is an ordered list of literal segments, named parameters
// (":id", ":id?") and catch-all segments ("*", ":rest*"). Compile turns a
// template plus Options into a Pattern: an anchored matcher and a parallel
// parameter-name list derived deterministically from the template. Patterns
// never change after compilation; applying a prefix means compiling a new
// Pattern from the joined template.
//
// The same Pattern drives both directions: Match/Captures for request
// matching and URL/URLPath for reverse URL generation.
package pattern
