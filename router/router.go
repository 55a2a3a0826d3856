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
	"net/http"
	"net/url"
	"slices"
	"sort"
	"strings"

	"strata.dev/strata/router/pattern"
)

// defaultMethods is the default implemented-methods set.
var defaultMethods = []string{
	http.MethodHead,
	http.MethodOptions,
	http.MethodGet,
	http.MethodPut,
	http.MethodPatch,
	http.MethodPost,
	http.MethodDelete,
}

// Router is an ordered collection of layers. It registers routes and
// middleware mounts, matches a request against the stack in registration
// order, and builds the handler chain for a matched request.
//
// Matching is stable: first registered, first tried. There is no
// reordering by specificity; a less specific mount registered earlier runs
// (and binds its parameters) before a more specific route registered later.
//
// Registration normally happens at setup time. Registering after the first
// dispatch is legal and immediately visible (the stack is read fresh on
// every request) but must not race with in-flight dispatches.
//
// Example:
//
//	r := router.MustNew()
//	r.GET("/users/:id", func(c *router.Context) error {
//	    return c.JSON(http.StatusOK, map[string]string{"id": c.Param("id")})
//	}).Name("user")
//
//	app := app.New()
//	app.Use(r.Routes(), r.AllowedMethods())
type Router struct {
	stack      []*Layer
	params     map[string]ParamHandler
	paramOrder []string
	named      map[string]*Layer

	prefix    string
	strict    bool
	sensitive bool
	methods   []string // globally implemented verbs
}

// MatchResult is the outcome of matching one request against the stack.
type MatchResult struct {
	// PathMatches are the layers whose pattern matched the path.
	PathMatches []*Layer

	// PathAndMethodMatches is the subsequence of PathMatches whose method
	// set also matched.
	PathAndMethodMatches []*Layer

	// RouteFound is true only if at least one method-matching layer
	// declares one or more methods. It distinguishes "found a resource but
	// wrong verb" from "found a usable route": pure middleware never sets
	// it.
	RouteFound bool
}

// New creates a router with optional configuration. Configuration is
// validated immediately rather than at first request.
func New(opts ...Option) (*Router, error) {
	r := &Router{
		params:  make(map[string]ParamHandler),
		named:   make(map[string]*Layer),
		methods: slices.Clone(defaultMethods),
	}
	for _, opt := range opts {
		opt(r)
	}

	if r.prefix != "" && !strings.HasPrefix(r.prefix, "/") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPrefix, r.prefix)
	}
	if len(r.methods) == 0 {
		return nil, ErrMethodsEmpty
	}

	return r, nil
}

// MustNew is like New but panics on invalid configuration.
func MustNew(opts ...Option) *Router {
	r, err := New(opts...)
	if err != nil {
		panic(fmt.Sprintf("router: %v", err))
	}
	return r
}

// Register builds and appends one layer for path answering methods, with
// the router's prefix and matching defaults applied and any
// already-registered param handlers wired in. It returns the created layer
// for naming and chaining. An invalid template panics: route registration
// is configuration-phase code.
func (r *Router) Register(path string, methods []string, handlers ...HandlerFunc) *Layer {
	return r.register(path, methods, handlers, pattern.Options{
		End:       true,
		Strict:    r.strict,
		Sensitive: r.sensitive,
	}, false)
}

func (r *Router) register(path string, methods []string, handlers []HandlerFunc, opts pattern.Options, ignoreCaptures bool) *Layer {
	l := newLayer(joinPath(r.prefix, path), path, methods, handlers, opts, ignoreCaptures)
	l.router = r
	for _, name := range r.paramOrder {
		l.attachParam(name, r.params[name])
	}
	r.stack = append(r.stack, l)
	return l
}

// GET registers a route for GET requests.
func (r *Router) GET(path string, handlers ...HandlerFunc) *Layer {
	return r.Register(path, []string{http.MethodGet}, handlers...)
}

// POST registers a route for POST requests.
func (r *Router) POST(path string, handlers ...HandlerFunc) *Layer {
	return r.Register(path, []string{http.MethodPost}, handlers...)
}

// PUT registers a route for PUT requests.
func (r *Router) PUT(path string, handlers ...HandlerFunc) *Layer {
	return r.Register(path, []string{http.MethodPut}, handlers...)
}

// DELETE registers a route for DELETE requests.
func (r *Router) DELETE(path string, handlers ...HandlerFunc) *Layer {
	return r.Register(path, []string{http.MethodDelete}, handlers...)
}

// PATCH registers a route for PATCH requests.
func (r *Router) PATCH(path string, handlers ...HandlerFunc) *Layer {
	return r.Register(path, []string{http.MethodPatch}, handlers...)
}

// HEAD registers a route for HEAD requests.
func (r *Router) HEAD(path string, handlers ...HandlerFunc) *Layer {
	return r.Register(path, []string{http.MethodHead}, handlers...)
}

// OPTIONS registers a route for OPTIONS requests.
func (r *Router) OPTIONS(path string, handlers ...HandlerFunc) *Layer {
	return r.Register(path, []string{http.MethodOptions}, handlers...)
}

// All registers a route answering every method in the router's implemented
// set.
func (r *Router) All(path string, handlers ...HandlerFunc) *Layer {
	return r.Register(path, slices.Clone(r.methods), handlers...)
}

// Use registers middleware that runs for every path. The layer is
// method-agnostic, matches as a prefix, and ignores captures so it cannot
// overwrite parameters bound by an enclosing match.
func (r *Router) Use(middleware ...HandlerFunc) {
	r.register("", nil, middleware, pattern.Options{
		End:       false,
		Strict:    r.strict,
		Sensitive: r.sensitive,
	}, true)
}

// UseAt registers middleware scoped to a path prefix. Because the path is
// explicit, the layer owns its capture groups: parameters declared in path
// are bound for downstream handlers.
func (r *Router) UseAt(path string, middleware ...HandlerFunc) *Layer {
	return r.register(path, nil, middleware, pattern.Options{
		End:       false,
		Strict:    r.strict,
		Sensitive: r.sensitive,
	}, false)
}

// UseAtAll mounts the same middleware set at every listed path, one layer
// per path.
func (r *Router) UseAtAll(paths []string, middleware ...HandlerFunc) {
	for _, p := range paths {
		r.UseAt(p, middleware...)
	}
}

// Mount splices a sub-router's entire layer stack into this router at
// prefix. Each spliced layer is a recompiled copy carrying, in order, the
// mount prefix then this router's own prefix; the sub-router's layers are
// untouched, so a sub-router may be mounted more than once without
// double-prefixing. Every param handler currently registered on this
// router is propagated into the spliced layers, so validators defined on
// the parent also apply to parameters reused in the child.
func (r *Router) Mount(prefix string, sub *Router) {
	if sub == nil {
		return
	}
	prefix = strings.TrimSuffix(prefix, "/")
	if prefix != "" && prefix[0] != '/' {
		prefix = "/" + prefix
	}

	for _, l := range sub.stack {
		base := joinPath(prefix, l.template)
		nl := l.clonePrefixed(joinPath(r.prefix, base), base)
		nl.router = r
		for _, name := range r.paramOrder {
			nl.attachParam(name, r.params[name])
		}
		if nl.name != "" {
			r.registerName(nl.name, nl)
		}
		r.stack = append(r.stack, nl)
	}
}

// Prefix re-bases every layer in the stack under prefix. Each layer is
// recompiled from its stored base template, never from already-prefixed
// text, so the operation is idempotent per layer.
func (r *Router) Prefix(prefix string) {
	prefix = strings.TrimSuffix(prefix, "/")
	r.prefix = prefix
	for _, l := range r.stack {
		l.reprefix(prefix)
	}
}

// Param stores a validation/loader handler for a named path parameter and
// retroactively attaches it to every layer currently in the stack that
// declares the parameter. Layers registered later pick it up automatically.
func (r *Router) Param(name string, h ParamHandler) *Router {
	if _, seen := r.params[name]; !seen {
		r.paramOrder = append(r.paramOrder, name)
	}
	r.params[name] = h
	for _, l := range r.stack {
		l.attachParam(name, h)
	}
	return r
}

// Redirect registers a permanent-by-default redirect from source to
// destination. Either argument may be a registered route name instead of a
// literal path; names resolve through URL generation and panic when
// unknown, since redirect wiring is configuration-phase code. A code of 0
// means http.StatusMovedPermanently.
func (r *Router) Redirect(source, destination string, code int) *Layer {
	if code == 0 {
		code = http.StatusMovedPermanently
	}
	src := r.resolvePath(source)
	dst := r.resolvePath(destination)

	return r.All(src, func(c *Context) error {
		c.Redirect(code, dst)
		return nil
	})
}

func (r *Router) resolvePath(pathOrName string) string {
	if strings.HasPrefix(pathOrName, "/") {
		return pathOrName
	}
	u, err := r.URLFor(pathOrName, nil, nil)
	if err != nil {
		panic(fmt.Sprintf("router: redirect: %v", err))
	}
	return u
}

// Match scans the stack in registration order and collects the layers
// matching path, the sub-sequence also matching method, and whether a
// usable route was found.
func (r *Router) Match(path, method string) *MatchResult {
	m := &MatchResult{}
	for _, l := range r.stack {
		if !l.match(path) {
			continue
		}
		m.PathMatches = append(m.PathMatches, l)
		if !l.matchesMethod(method) {
			continue
		}
		m.PathAndMethodMatches = append(m.PathAndMethodMatches, l)
		if len(l.methods) > 0 {
			m.RouteFound = true
		}
	}
	return m
}

// Routes returns the router's dispatch middleware. Per request it resolves
// a match; on no-match it falls through to the outer pipeline. Otherwise
// the most specific (last) matching layer stamps the context's matched
// path and name, and the chain to execute folds over the matched layers in
// order: for each layer a parameter-binding step, threading captures and
// params so earlier, less specific layers bind before later ones, then
// the layer's own handlers.
func (r *Router) Routes() HandlerFunc {
	return func(c *Context) error {
		path := c.Request.URL.Path
		m := r.Match(path, c.Request.Method)
		c.matched = append(c.matched, m.PathMatches...)

		if !m.RouteFound {
			return c.Next()
		}

		chain := m.PathAndMethodMatches
		mostSpecific := chain[len(chain)-1]
		c.matchedPath = mostSpecific.template
		if mostSpecific.name != "" {
			c.matchedName = mostSpecific.name
		}

		handlers := make([]HandlerFunc, 0, len(chain)*2)
		for _, l := range chain {
			layer := l
			handlers = append(handlers, func(c *Context) error {
				c.captures = layer.captures(path, c.captures)
				c.params = layer.params(c.captures, c.params)
				if layer.name != "" {
					c.matchedName = layer.name
				}
				return c.Next()
			})
			handlers = append(handlers, layer.chain()...)
		}

		return Compose(handlers...)(c)
	}
}

// URLFor generates a URL from a route name, parameters and an optional
// query string. Unknown names report an error wrapping ErrRouteNotFound;
// missing parameters report ErrMissingRouteParameter. Both are returned
// values, never panics, so callers can branch on them.
func (r *Router) URLFor(name string, params map[string]string, query url.Values) (string, error) {
	l, ok := r.named[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrRouteNotFound, name)
	}
	return l.URL(params, query)
}

// MustURLFor is like URLFor but panics on error.
func (r *Router) MustURLFor(name string, params map[string]string, query url.Values) string {
	u, err := r.URLFor(name, params, query)
	if err != nil {
		panic(fmt.Sprintf("MustURLFor failed: %v", err))
	}
	return u
}

// Layer returns the named layer, or nil.
func (r *Router) Layer(name string) *Layer {
	return r.named[name]
}

func (r *Router) registerName(name string, l *Layer) {
	if existing, ok := r.named[name]; ok && existing != l {
		panic(fmt.Sprintf("router: %v: %q", ErrDuplicateRouteName, name))
	}
	r.named[name] = l
}

// implements reports whether method is in the router's implemented set.
func (r *Router) implements(method string) bool {
	return slices.Contains(r.methods, strings.ToUpper(method))
}

// RouteInfo describes one registered layer for introspection.
type RouteInfo struct {
	Name    string
	Path    string
	Methods []string
}

// RouteList returns all registered routes (middleware mounts excluded),
// sorted by path then name for consistent output.
func (r *Router) RouteList() []RouteInfo {
	routes := make([]RouteInfo, 0, len(r.stack))
	for _, l := range r.stack {
		if len(l.methods) == 0 {
			continue
		}
		routes = append(routes, RouteInfo{
			Name:    l.name,
			Path:    l.template,
			Methods: slices.Clone(l.methods),
		})
	}
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Path == routes[j].Path {
			return routes[i].Name < routes[j].Name
		}
		return routes[i].Path < routes[j].Path
	})
	return routes
}

// joinPath joins a prefix and a path without introducing a double slash.
func joinPath(prefix, path string) string {
	prefix = strings.TrimSuffix(prefix, "/")
	if path != "" && !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return prefix + path
}
