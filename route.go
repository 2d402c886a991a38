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

package dispatch

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"edgekit.dev/dispatch/binding"
	"edgekit.dev/dispatch/compiler"
	"edgekit.dev/dispatch/descriptor"
)

// WildcardMethod is the method token that accepts any method not
// otherwise registered for a path.
const WildcardMethod = "*"

// WildcardTemplate is the reserved path template that matches every
// concrete path. It backs the built-in 404 responder.
const WildcardTemplate = compiler.WildcardTemplate

// reservedPaths are routable only through the internal-routes bypass while
// internal routes are enabled.
var reservedPaths = []string{"/docs", "/openapi.json"}

// HandlerFunc is a route handler. It receives the bound argument list in
// the route's declared parameter order and produces a response. Returning
// an *httperr.Error selects that error's status and message; any other
// error is treated as unclassified (500, message suppressed).
type HandlerFunc func(ctx context.Context, args binding.Args) (*Response, error)

// endpoint is the per-(path, method) registration: handler plus parameter
// and category metadata. Consolidating these into one value (rather than
// parallel maps keyed by path/method) keeps them from drifting apart.
type endpoint struct {
	handler     HandlerFunc
	descriptors []descriptor.Descriptor
	category    string
	deprecated  bool

	// builtin marks the default 404 responder installed on the all-paths
	// wildcard. It never masks a method-not-allowed outcome on an
	// explicitly registered path.
	builtin bool
}

// route owns one compiled pattern and its per-method endpoints.
type route struct {
	pattern *compiler.Pattern
	methods map[string]*endpoint
}

// routeTable stores routes in registration order. It is built during
// setup and read-only during dispatch.
type routeTable struct {
	routes     []*route // explicit templates, registration order
	byTemplate map[string]*route
	wildcard   *route // the reserved all-paths "*" route
}

func newRouteTable() *routeTable {
	return &routeTable{byTemplate: make(map[string]*route)}
}

// matchResult is the transient per-request product of a lookup.
type matchResult struct {
	endpoint   *endpoint
	pathParams map[string]string
	pattern    string // canonical form, for observability
	allowed    []string
	headAsGet  bool
	explicit   bool // a non-wildcard pattern matched the path
}

// register adds or extends a route. Re-registering a (template, method)
// pair replaces that method's endpoint only; other methods on the same
// template are untouched.
func (t *routeTable) register(template, method string, ep *endpoint) error {
	method = strings.ToUpper(strings.TrimSpace(method))
	if method == "" {
		return ErrEmptyMethod
	}
	if method == strings.ToUpper(WildcardMethod) {
		method = WildcardMethod
	}

	pattern, err := compiler.Compile(template)
	if err != nil {
		return err
	}

	if err := checkDescriptors(pattern, ep.descriptors); err != nil {
		return err
	}

	rt, ok := t.byTemplate[pattern.Template()]
	if !ok {
		rt = &route{pattern: pattern, methods: make(map[string]*endpoint)}
		t.byTemplate[pattern.Template()] = rt
		if pattern.IsWildcard() {
			t.wildcard = rt
		} else {
			t.routes = append(t.routes, rt)
		}
	}
	rt.methods[method] = ep
	return nil
}

// checkDescriptors enforces the registration invariants: every placeholder
// has a path-location descriptor, no path descriptor is optional, and each
// descriptor is structurally valid.
func checkDescriptors(pattern *compiler.Pattern, descriptors []descriptor.Descriptor) error {
	for _, d := range descriptors {
		if err := d.Validate(); err != nil {
			if d.Location == descriptor.LocationPath && d.Optional {
				return fmt.Errorf("%w: path parameter %q marked optional", ErrDescriptorMismatch, d.Name)
			}
			return err
		}
	}

	for _, name := range pattern.ParamNames() {
		found := false
		for _, d := range descriptors {
			if d.Name == name && d.Location == descriptor.LocationPath {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("%w: placeholder %q in %q has no path descriptor",
				ErrDescriptorMismatch, name, pattern.Template())
		}
	}
	return nil
}

// lookup matches a concrete path against registered patterns in
// registration order and resolves the handler for the method.
//
// Resolution precedence within the matched path: exact method → wildcard
// method on this path → exact method on the all-paths wildcard → wildcard
// method on the all-paths wildcard. HEAD falls back to the GET endpoint at
// each step. A matched path whose method resolves to nothing (and cannot
// fall back) is a method-not-allowed outcome, reported through a nil
// endpoint with a non-empty allowed list.
func (t *routeTable) lookup(method, path string) matchResult {
	method = strings.ToUpper(method)

	for _, rt := range t.routes {
		params, ok := rt.pattern.Match(path)
		if !ok {
			continue
		}
		res := matchResult{
			pathParams: params,
			pattern:    rt.pattern.Canonical(),
			allowed:    t.allowedForRoute(rt),
			explicit:   true,
		}
		res.endpoint, res.headAsGet = resolveMethod(rt, method)
		if res.endpoint == nil && t.wildcard != nil {
			// Fall through to the all-paths wildcard registrations.
			res.endpoint, res.headAsGet = resolveMethod(t.wildcard, method)
		}
		return res
	}

	res := matchResult{pathParams: map[string]string{}, pattern: compiler.WildcardTemplate}
	if t.wildcard != nil {
		res.allowed = t.allowedForRoute(t.wildcard)
		res.endpoint, res.headAsGet = resolveMethod(t.wildcard, method)
	} else {
		res.allowed = []string{http.MethodOptions}
	}
	return res
}

// resolveMethod picks the endpoint for a method on one route: exact method
// first, then the HEAD→GET fallback, then the wildcard method token.
func resolveMethod(rt *route, method string) (*endpoint, bool) {
	if ep, ok := rt.methods[method]; ok {
		return ep, false
	}
	if method == http.MethodHead {
		if ep, ok := rt.methods[http.MethodGet]; ok {
			return ep, true
		}
	}
	if ep, ok := rt.methods[WildcardMethod]; ok {
		return ep, false
	}
	return nil, false
}

// allowedForRoute returns the route's allowed-method set: every registered
// method plus the implicit OPTIONS, sorted for deterministic output.
func (t *routeTable) allowedForRoute(rt *route) []string {
	allowed := make([]string, 0, len(rt.methods)+1)
	for m := range rt.methods {
		if m == WildcardMethod {
			continue
		}
		allowed = append(allowed, m)
	}
	if !slices.Contains(allowed, http.MethodOptions) {
		allowed = append(allowed, http.MethodOptions)
	}
	slices.Sort(allowed)
	return allowed
}

// allowedMethods returns the allowed-method set for the first pattern
// matching path. A path nothing matches still yields ["OPTIONS"] rather
// than the empty set: the built-in all-paths wildcard makes every path
// dispatchable, so its implicit OPTIONS is honestly reported.
func (t *routeTable) allowedMethods(path string) []string {
	for _, rt := range t.routes {
		if _, ok := rt.pattern.Match(path); ok {
			return t.allowedForRoute(rt)
		}
	}
	if t.wildcard != nil && len(t.wildcard.methods) > 0 {
		if _, onlyDefault := t.wildcard.methods[WildcardMethod]; !(onlyDefault && len(t.wildcard.methods) == 1) {
			return t.allowedForRoute(t.wildcard)
		}
	}
	return []string{http.MethodOptions}
}
