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

package pattern

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var (
	// ErrInvalidPattern indicates that a path template could not be compiled.
	ErrInvalidPattern = errors.New("invalid path pattern")

	// ErrMissingParameter indicates that a required parameter for URL
	// generation was not supplied.
	ErrMissingParameter = errors.New("missing required parameter")
)

// paramNameRe validates parameter names in path templates.
var paramNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Options control how a path template is compiled.
//
// The zero value compiles a case-insensitive prefix matcher with an
// optional trailing slash, which is almost never what route registration
// wants; callers normally set End explicitly.
type Options struct {
	// End anchors the matcher at the end of the path. When false the
	// template matches any path that continues past it on a segment
	// boundary (used for mount-point middleware).
	End bool

	// Strict makes a trailing slash significant. When false a single
	// trailing slash on the request path is optional.
	Strict bool

	// Sensitive enables case-sensitive matching.
	Sensitive bool
}

// SegmentKind identifies the role of one template segment.
type SegmentKind int

const (
	// Literal is a fixed text segment.
	Literal SegmentKind = iota
	// Param is a named single-segment parameter (":id").
	Param
	// Wildcard is a catch-all segment ("*" or ":rest*") matching zero or
	// more trailing segments.
	Wildcard
)

// Segment is one parsed element of a path template.
type Segment struct {
	Kind     SegmentKind
	Value    string // literal text or parameter name
	Optional bool   // ":id?", segment may be absent
}

// Pattern is a compiled path template: an anchored matcher plus the ordered
// list of parameter names it captures. A Pattern is immutable after Compile
// and safe for concurrent use.
type Pattern struct {
	template string
	opts     Options
	re       *regexp.Regexp
	segments []Segment
	names    []string
	trailing bool // template carries a trailing slash
}

// Compile parses a path template and builds the matcher.
//
// Template syntax:
//
//	/users            literal segments
//	/users/:id        named parameter, captures one segment
//	/users/:id?       optional named parameter
//	/files/:path*     named catch-all, captures the rest of the path
//	/static/*         anonymous catch-all
//
// The matcher is always anchored at the start of the path; opts.End
// controls whether it is anchored at the end as well.
func Compile(template string, opts Options) (*Pattern, error) {
	segments, trailing, err := parse(template)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	if !opts.Sensitive {
		b.WriteString("(?i)")
	}
	b.WriteString("^")

	names := make([]string, 0, 4)
	for _, seg := range segments {
		switch seg.Kind {
		case Literal:
			b.WriteString("/")
			b.WriteString(regexp.QuoteMeta(seg.Value))
		case Param:
			if seg.Optional {
				b.WriteString(`(?:/([^/]+))?`)
			} else {
				b.WriteString(`/([^/]+)`)
			}
			names = append(names, seg.Value)
		case Wildcard:
			b.WriteString(`(?:/(.*))?`)
			names = append(names, seg.Value)
		}
	}

	if opts.End {
		if opts.Strict {
			if trailing {
				b.WriteString("/")
			}
			b.WriteString("$")
		} else {
			b.WriteString("/?$")
		}
	} else {
		// Prefix match must stop on a segment boundary so that "/admin"
		// matches "/admin/users" but never "/administrators". RE2 has no
		// lookahead, so the remainder is consumed by an optional group.
		b.WriteString(`(?:/.*)?$`)
	}

	re, err := regexp.Compile(b.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidPattern, template, err)
	}

	return &Pattern{
		template: template,
		opts:     opts,
		re:       re,
		segments: segments,
		names:    names,
		trailing: trailing,
	}, nil
}

// MustCompile is like Compile but panics on error. Route registration uses
// it because an invalid template is a configuration-phase programming error.
func MustCompile(template string, opts Options) *Pattern {
	p, err := Compile(template, opts)
	if err != nil {
		panic(fmt.Sprintf("pattern: %v", err))
	}
	return p
}

// parse splits a template into segments and reports a trailing slash.
func parse(template string) ([]Segment, bool, error) {
	trimmed := strings.TrimPrefix(template, "/")
	trailing := strings.HasSuffix(trimmed, "/") && trimmed != ""
	trimmed = strings.TrimSuffix(trimmed, "/")

	if trimmed == "" {
		return nil, trailing, nil
	}

	parts := strings.Split(trimmed, "/")
	segments := make([]Segment, 0, len(parts))
	for _, part := range parts {
		switch {
		case part == "*":
			segments = append(segments, Segment{Kind: Wildcard, Value: "*"})
		case strings.HasPrefix(part, ":"):
			name := part[1:]
			seg := Segment{Kind: Param}
			if strings.HasSuffix(name, "*") {
				seg.Kind = Wildcard
				name = strings.TrimSuffix(name, "*")
			} else if strings.HasSuffix(name, "?") {
				seg.Optional = true
				name = strings.TrimSuffix(name, "?")
			}
			if !paramNameRe.MatchString(name) {
				return nil, false, fmt.Errorf("%w: %q: bad parameter name %q", ErrInvalidPattern, template, name)
			}
			seg.Value = name
			segments = append(segments, seg)
		default:
			segments = append(segments, Segment{Kind: Literal, Value: part})
		}
	}

	return segments, trailing, nil
}

// Template returns the original template text.
func (p *Pattern) Template() string { return p.template }

// Options returns the options the pattern was compiled with.
func (p *Pattern) Options() Options { return p.opts }

// ParamNames returns the ordered parameter names captured by the matcher.
// The returned slice must not be modified.
func (p *Pattern) ParamNames() []string { return p.names }

// Segments returns the parsed template segments for introspection.
// The returned slice must not be modified.
func (p *Pattern) Segments() []Segment { return p.segments }

// Match reports whether the compiled matcher accepts path.
func (p *Pattern) Match(path string) bool {
	return p.re.MatchString(path)
}

// Captures runs the matcher against path and returns the raw substring for
// each parameter position, in declaration order. Unmatched optional
// positions yield empty strings. Returns nil if the path does not match.
func (p *Pattern) Captures(path string) []string {
	m := p.re.FindStringSubmatch(path)
	if m == nil {
		return nil
	}
	return m[1:]
}

// URL substitutes parameter values back into the template in declaration
// order and appends an optional query string. Absent optional parameters
// drop their segment; an absent required parameter returns an error
// wrapping ErrMissingParameter.
func (p *Pattern) URL(params map[string]string, query url.Values) (string, error) {
	var b strings.Builder

	for _, seg := range p.segments {
		switch seg.Kind {
		case Literal:
			b.WriteString("/")
			b.WriteString(seg.Value)
		case Param:
			v, ok := params[seg.Value]
			if !ok || v == "" {
				if seg.Optional {
					continue
				}
				return "", fmt.Errorf("%w: %s", ErrMissingParameter, seg.Value)
			}
			b.WriteString("/")
			b.WriteString(url.PathEscape(v))
		case Wildcard:
			v, ok := params[seg.Value]
			if !ok || v == "" {
				continue
			}
			for _, part := range strings.Split(strings.TrimPrefix(v, "/"), "/") {
				b.WriteString("/")
				b.WriteString(url.PathEscape(part))
			}
		}
	}

	if b.Len() == 0 {
		b.WriteString("/")
	}
	if p.trailing {
		b.WriteString("/")
	}
	if len(query) > 0 {
		b.WriteString("?")
		b.WriteString(query.Encode())
	}

	return b.String(), nil
}

// URLPath is the positional form of URL: values are bound to parameters in
// declaration order.
func (p *Pattern) URLPath(values ...string) (string, error) {
	if len(values) > len(p.names) {
		return "", fmt.Errorf("%w: %q: %d values for %d parameters",
			ErrInvalidPattern, p.template, len(values), len(p.names))
	}
	params := make(map[string]string, len(values))
	for i, v := range values {
		params[p.names[i]] = v
	}
	return p.URL(params, nil)
}
