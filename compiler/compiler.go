// Copyright 2026 The Edgekit Authors
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

package compiler

import (
	"fmt"
	"regexp"
	"strings"
)

// WildcardTemplate is the reserved template that matches every concrete
// path. It backs the built-in 404 responder and may be overridden by a
// catch-all registration.
const WildcardTemplate = "*"

var identifierRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Pattern is a compiled path template. It matches whole paths only
// (anchored at both ends) and captures one value per named placeholder.
//
// A template consists of literal segments and placeholder segments:
//
//	/users/:id/posts/:postID
//
// Each placeholder captures any run of characters excluding '/'.
type Pattern struct {
	template   string
	canonical  string
	paramNames []string
	re         *regexp.Regexp
	isWildcard bool
}

// Compile parses a path template into a Pattern.
//
// It fails if a placeholder name is empty, is not a valid identifier, or
// appears more than once in the same template. The reserved template "*"
// compiles to a pattern that matches every path.
func Compile(template string) (*Pattern, error) {
	template = strings.TrimSpace(template)
	if template == "" {
		template = "/"
	}

	if template == WildcardTemplate {
		return &Pattern{
			template:   WildcardTemplate,
			canonical:  WildcardTemplate,
			paramNames: nil,
			isWildcard: true,
		}, nil
	}

	if !strings.HasPrefix(template, "/") {
		template = "/" + template
	}

	segments := strings.Split(template, "/")

	var (
		exprParts  = make([]string, 0, len(segments))
		canonParts = make([]string, 0, len(segments))
		paramNames []string
		seen       = map[string]struct{}{}
	)

	for _, seg := range segments {
		if !strings.HasPrefix(seg, ":") {
			exprParts = append(exprParts, regexp.QuoteMeta(seg))
			canonParts = append(canonParts, seg)
			continue
		}

		name := seg[1:]
		if !identifierRe.MatchString(name) {
			return nil, fmt.Errorf("%w: %q in template %q", ErrInvalidPlaceholder, seg, template)
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("%w: %q in template %q", ErrDuplicatePlaceholder, name, template)
		}
		seen[name] = struct{}{}
		paramNames = append(paramNames, name)

		exprParts = append(exprParts, fmt.Sprintf(`(?P<%s>[^/]+)`, name))
		canonParts = append(canonParts, "{"+name+"}")
	}

	re, err := regexp.Compile("^" + strings.Join(exprParts, "/") + "$")
	if err != nil {
		return nil, fmt.Errorf("compiling template %q: %w", template, err)
	}

	return &Pattern{
		template:   template,
		canonical:  strings.Join(canonParts, "/"),
		paramNames: paramNames,
		re:         re,
	}, nil
}

// MustCompile is like Compile but panics on error. Intended for templates
// known at program start.
func MustCompile(template string) *Pattern {
	p, err := Compile(template)
	if err != nil {
		panic(fmt.Sprintf("compiler.MustCompile: %v", err))
	}
	return p
}

// Match reports whether path matches the whole template and, when it does,
// returns the captured placeholder values. A non-match is not an error.
func (p *Pattern) Match(path string) (map[string]string, bool) {
	if p.isWildcard {
		return map[string]string{}, true
	}

	m := p.re.FindStringSubmatch(path)
	if m == nil {
		return nil, false
	}

	params := make(map[string]string, len(p.paramNames))
	for i, name := range p.re.SubexpNames() {
		if i == 0 || name == "" {
			continue
		}
		params[name] = m[i]
	}
	return params, true
}

// Template returns the template text the pattern was compiled from.
func (p *Pattern) Template() string { return p.template }

// Canonical returns the display form of the template, with placeholders
// normalized to brackets: "/users/:id" → "/users/{id}".
func (p *Pattern) Canonical() string { return p.canonical }

// ParamNames returns the placeholder names in declaration order.
func (p *Pattern) ParamNames() []string { return p.paramNames }

// IsWildcard reports whether the pattern is the reserved all-paths
// wildcard.
func (p *Pattern) IsWildcard() bool { return p.isWildcard }
