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

import "fmt"

// Compose folds an ordered list of handlers into a single handler with
// onion semantics: handler i wraps the whole downstream chain, so code it
// runs after c.Next returns executes only once every later handler has
// finished. The first error raised anywhere downstream propagates up
// through every enclosing handler's pending Next call.
//
// The composed handler delegates to whatever continuation the context
// carried when it was invoked, so composed pipelines nest: a router's
// matched chain runs inside an application's middleware list and falls
// through to it on no-match.
//
// Calling Next twice within one handler invocation fails with
// ErrMultipleNext: re-entering the downstream chain is non-deterministic
// and always a bug in the handler.
//
// Composing an empty list yields a handler equivalent to the bare
// continuation.
func Compose(handlers ...HandlerFunc) HandlerFunc {
	return func(c *Context) error {
		final := c.next
		defer func() { c.next = final }()

		var run func(i int) error
		run = func(i int) error {
			if i == len(handlers) {
				if final == nil {
					return nil
				}
				return final()
			}

			called := false
			var next func() error
			next = func() error {
				if called {
					return fmt.Errorf("%w (handler %d)", ErrMultipleNext, i)
				}
				called = true
				err := run(i + 1)
				// Restore this frame's continuation so post-Next code in
				// the handler observes its own binding, not a deeper one.
				c.next = next
				return err
			}

			c.next = next
			return handlers[i](c)
		}

		return run(0)
	}
}

// Fold composes an ordered list of transforms around a base value. The
// first transform becomes the outermost wrapper and the last the innermost,
// mirroring Compose's left-to-right wrapping order. It is the shape used to
// fold enhancer lists into a single constructor.
func Fold[T any](base T, transforms ...func(T) T) T {
	v := base
	for i := len(transforms) - 1; i >= 0; i-- {
		v = transforms[i](v)
	}
	return v
}
