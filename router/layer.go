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
	"fmt"
	"net/url"
	"slices"
	"strings"

	"strata.dev/strata/router/pattern"
)

// Layer is one compiled route or middleware mount entry: a path pattern,
// the set of methods it answers, its handler chain and optional metadata.
//
// A layer's matcher and parameter-name list are derived deterministically
// from its template and options. Prefixing never mutates the compiled
// matcher in place: it recompiles from the stored base template, so
// repeated nested mounting cannot double-apply a prefix.
type Layer struct {
	pat      *pattern.Pattern
	template string // full template, owning router's prefix included
	base     string // template without the owning router's prefix
	methods  []string
	handlers []HandlerFunc
	paramMW  []paramMiddleware
	name     string
	router   *Router

	// ignoreCaptures makes the layer keep the captures and params bound by
	// an enclosing match instead of its own. Set for anonymous middleware
	// mounts, which must not claim ownership of the surrounding capture
	// groups.
	ignoreCaptures bool
}

// paramMiddleware is a validator bound to a named parameter, kept tagged so
// attachment stays ordered by parameter position and idempotent per name.
type paramMiddleware struct {
	name    string
	handler HandlerFunc
}

func newLayer(template, base string, methods []string, handlers []HandlerFunc, opts pattern.Options, ignoreCaptures bool) *Layer {
	normalized := make([]string, 0, len(methods))
	for _, m := range methods {
		normalized = append(normalized, strings.ToUpper(m))
	}

	return &Layer{
		pat:            pattern.MustCompile(template, opts),
		template:       template,
		base:           base,
		methods:        normalized,
		handlers:       handlers,
		ignoreCaptures: ignoreCaptures,
	}
}

// Path returns the layer's full path template.
func (l *Layer) Path() string { return l.template }

// Methods returns the HTTP methods the layer answers. An empty set means
// the layer is pure middleware: it matches any method but never marks a
// route as found. The returned slice must not be modified.
func (l *Layer) Methods() []string { return l.methods }

// ParamNames returns the ordered parameter names of the layer's pattern.
func (l *Layer) ParamNames() []string { return l.pat.ParamNames() }

// RouteName returns the layer's name, or "".
func (l *Layer) RouteName() string { return l.name }

// Name names the layer for reverse URL generation and returns it for
// chaining. Duplicate names are rejected: naming two routes the same is a
// configuration-phase programming error and panics immediately rather than
// silently resolving to the first registrant.
func (l *Layer) Name(name string) *Layer {
	if l.router != nil {
		l.router.registerName(name, l)
	}
	l.name = name
	return l
}

// match reports whether the layer's pattern accepts path.
func (l *Layer) match(path string) bool {
	return l.pat.Match(path)
}

// matchesMethod reports whether the layer answers method. Layers with an
// empty method set match every method.
func (l *Layer) matchesMethod(method string) bool {
	if len(l.methods) == 0 {
		return true
	}
	return slices.Contains(l.methods, strings.ToUpper(method))
}

// captures returns the raw capture substrings for path. When the layer
// ignores captures it returns prior unchanged, preserving the bindings of
// the enclosing match.
func (l *Layer) captures(path string, prior []string) []string {
	if l.ignoreCaptures {
		return prior
	}
	caps := l.pat.Captures(path)
	if caps == nil {
		return prior
	}
	return caps
}

// params zips the layer's parameter names with captures, percent-decodes
// each value and merges the result into prior without erasing parameters
// already bound by an earlier layer in the same chain.
func (l *Layer) params(captures []string, prior map[string]string) map[string]string {
	if l.ignoreCaptures {
		return prior
	}
	names := l.pat.ParamNames()
	if len(names) == 0 {
		return prior
	}
	merged := prior
	if merged == nil {
		merged = make(map[string]string, len(names))
	}
	for i, name := range names {
		if i >= len(captures) || captures[i] == "" {
			continue
		}
		value := captures[i]
		if decoded, err := url.PathUnescape(value); err == nil {
			value = decoded
		}
		merged[name] = value
	}
	return merged
}

// chain returns the layer's effective handler list: parameter validators
// first, ordered by parameter position, then the registered handlers.
func (l *Layer) chain() []HandlerFunc {
	if len(l.paramMW) == 0 {
		return l.handlers
	}
	out := make([]HandlerFunc, 0, len(l.paramMW)+len(l.handlers))
	for _, pm := range l.paramMW {
		out = append(out, pm.handler)
	}
	return append(out, l.handlers...)
}

// attachParam wires a validator for a named parameter in front of the
// layer's handlers. It is a no-op when the layer does not declare the
// parameter, keeps validators ordered by parameter position, and replaces
// a previously attached validator of the same name.
func (l *Layer) attachParam(name string, h ParamHandler) {
	names := l.pat.ParamNames()
	pos := slices.Index(names, name)
	if pos < 0 {
		return
	}

	mw := paramMiddleware{
		name: name,
		handler: func(c *Context) error {
			return h(c, c.Param(name))
		},
	}

	l.paramMW = slices.DeleteFunc(l.paramMW, func(pm paramMiddleware) bool {
		return pm.name == name
	})

	insert := len(l.paramMW)
	for i, pm := range l.paramMW {
		if slices.Index(names, pm.name) > pos {
			insert = i
			break
		}
	}
	l.paramMW = slices.Insert(l.paramMW, insert, mw)
}

// reprefix recompiles the layer's matcher from prefix plus the stored base
// template. Because the result is always derived from the base, repeated
// calls are idempotent per mount level and can never double-apply a prefix.
func (l *Layer) reprefix(prefix string) {
	l.template = joinPath(prefix, l.base)
	l.pat = pattern.MustCompile(l.template, l.pat.Options())
}

// clonePrefixed returns a copy of the layer recompiled under a new template
// and base. Used when splicing a sub-router's layers into a parent: the
// sub-router's own layers are left untouched.
func (l *Layer) clonePrefixed(template, base string) *Layer {
	nl := &Layer{
		pat:            pattern.MustCompile(template, l.pat.Options()),
		template:       template,
		base:           base,
		methods:        l.methods,
		handlers:       l.handlers,
		paramMW:        slices.Clone(l.paramMW),
		name:           l.name,
		ignoreCaptures: l.ignoreCaptures,
	}
	return nl
}

// URL substitutes parameter values into the layer's template and appends an
// optional query string. A missing required parameter yields an error
// wrapping ErrMissingRouteParameter.
func (l *Layer) URL(params map[string]string, query url.Values) (string, error) {
	return l.pat.URL(params, query)
}

// URLPath is the positional form of URL.
func (l *Layer) URLPath(values ...string) (string, error) {
	return l.pat.URLPath(values...)
}

// String implements fmt.Stringer for diagnostics.
func (l *Layer) String() string {
	if len(l.methods) == 0 {
		return fmt.Sprintf("USE %s", l.template)
	}
	return fmt.Sprintf("%s %s", strings.Join(l.methods, ","), l.template)
}
