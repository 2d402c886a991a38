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
	"io"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"edgekit.dev/dispatch/binding"
	"edgekit.dev/dispatch/descriptor"
	"edgekit.dev/dispatch/httperr"
)

// noopLogger is the shared no-op logger used when none is configured.
var noopLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// Dispatcher matches requests to registered handlers, runs the
// category-filtered middleware chains, binds handler arguments, and
// translates every failure into the unified {"detail": message} JSON
// shape.
//
// Precondition: registration (AddRoute, Use*) must complete before the
// first Dispatch. Concurrent registration and dispatch is undefined
// behavior; the route table and middleware registry are read without
// locking during dispatch because dispatch never mutates them.
//
// Example:
//
//	d := dispatch.MustNew()
//	d.GET("/user/:name", getUser, dispatch.WithMetadata(
//	    "@param name where:path type:string", "name"))
//	http.ListenAndServe(":8080", d)
type Dispatcher struct {
	table      *routeTable
	middleware middlewareRegistry

	logger        *slog.Logger
	errorHandling bool
	observability ObservabilityRecorder

	internalRoutes   bool
	document         DocumentSource
	notFoundOverride HandlerFunc
}

// New creates a Dispatcher and installs the built-in 404 responder on the
// reserved all-paths wildcard. Configuration errors surface immediately
// rather than at request time.
func New(opts ...Option) (*Dispatcher, error) {
	d := &Dispatcher{
		table:         newRouteTable(),
		logger:        noopLogger,
		errorHandling: true,
	}
	for _, opt := range opts {
		opt(d)
	}

	if d.internalRoutes && d.document == nil {
		return nil, ErrSpecSourceNil
	}

	notFoundHandler := HandlerFunc(builtinNotFound)
	if d.notFoundOverride != nil {
		notFoundHandler = d.notFoundOverride
	}
	if err := d.table.register(WildcardTemplate, WildcardMethod, &endpoint{
		handler:  notFoundHandler,
		category: descriptor.DefaultCategory,
		builtin:  true,
	}); err != nil {
		return nil, err
	}

	if d.internalRoutes {
		if err := d.registerInternalRoutes(); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// MustNew is like New but panics on configuration errors.
func MustNew(opts ...Option) *Dispatcher {
	d, err := New(opts...)
	if err != nil {
		panic(fmt.Sprintf("dispatch.MustNew: %v", err))
	}
	return d
}

// builtinNotFound is the default handler on the all-paths wildcard. A 404
// is a normal terminal response, not an error transition, so it flows
// through the regular middleware chains.
func builtinNotFound(_ context.Context, _ binding.Args) (*Response, error) {
	return errorResponse(http.StatusNotFound, ""), nil
}

// Dispatch runs the pipeline for one request and returns the response.
//
// The returned error is non-nil only when global error handling is
// disabled and a handler fails with an unclassified error; every other
// failure is translated into a structured JSON response.
func (d *Dispatcher) Dispatch(req *http.Request) (*Response, error) {
	ctx := req.Context()
	method := strings.ToUpper(req.Method)
	path := req.URL.Path

	var obsState any
	if d.observability != nil {
		ctx, obsState = d.observability.OnDispatchStart(ctx, req)
		req = req.WithContext(ctx)
	}

	resp, err := d.run(ctx, req, method, path)

	if d.observability != nil && obsState != nil {
		pattern := compilerPatternOf(d, path)
		d.observability.OnDispatchEnd(ctx, obsState, resp, pattern)
	}
	return resp, err
}

// run executes the MATCH → METHOD_CHECK → BEFORE_MW → BIND → INVOKE →
// AFTER_MW → FINALIZE sequence, with ERROR reachable from every stage.
func (d *Dispatcher) run(ctx context.Context, req *http.Request, method, path string) (*Response, error) {
	// MATCH / METHOD_CHECK. OPTIONS short-circuits with the
	// allowed-method list: no middleware, no handler.
	if method == http.MethodOptions {
		return d.optionsResponse(path)
	}

	res := d.table.lookup(method, path)

	// A registered path whose method resolves only to the built-in 404
	// responder is a method-not-allowed outcome, not a catch-all hit.
	if res.explicit && (res.endpoint == nil || res.endpoint.builtin) {
		return finalize(errorResponse(http.StatusMethodNotAllowed, ""), method), nil
	}
	if res.endpoint == nil {
		return finalize(errorResponse(http.StatusNotFound, ""), method), nil
	}
	ep := res.endpoint

	// BEFORE_MW: ascending registration order, category-filtered. Each
	// entry may replace the request for subsequent stages.
	for i := range d.middleware.entries {
		e := &d.middleware.entries[i]
		if e.direction != DirectionBefore || e.category != ep.category {
			continue
		}
		next, err := d.safeBefore(ctx, e, req)
		if err != nil {
			return d.errorState(ctx, method, err), nil
		}
		if next != nil {
			req = next
		}
	}

	// BIND: the binder sees the (possibly middleware-modified) request.
	args, err := binding.Bind(req, ep.descriptors, res.pathParams)
	if err != nil {
		return d.errorState(ctx, method, err), nil
	}

	// INVOKE.
	resp, err := d.safeInvoke(ctx, ep.handler, args)
	if err != nil {
		if herr := httperr.From(err); herr != nil {
			return d.errorState(ctx, method, herr), nil
		}
		if !d.errorHandling {
			return nil, err
		}
		d.logger.Error("handler failed", "error", err, "pattern", res.pattern)
		return d.errorState(ctx, method, httperr.New(http.StatusInternalServerError)), nil
	}
	if resp == nil {
		resp = NewResponse(http.StatusOK)
	}

	// AFTER_MW: ascending order, category-filtered, each transforming
	// the response.
	for i := range d.middleware.entries {
		e := &d.middleware.entries[i]
		if e.direction != DirectionAfter || e.category != ep.category {
			continue
		}
		next, err := d.safeAfter(ctx, e, resp)
		if err != nil {
			return d.errorState(ctx, method, err), nil
		}
		if next != nil {
			resp = next
		}
	}

	return finalize(resp, method), nil
}

// errorState renders the unified error shape and runs the error-direction
// middleware chain over it. If an error middleware itself fails, the
// pipeline gives up and returns a bare 500 with the default message: the
// double-fault guard never recurses and never resumes the chain.
func (d *Dispatcher) errorState(ctx context.Context, method string, err error) *Response {
	status := http.StatusInternalServerError
	message := ""
	if herr := httperr.From(err); herr != nil {
		status = herr.HTTPStatus()
		message = herr.Detail()
	} else if err != nil {
		d.logger.Error("dispatch error", "error", err)
	}

	resp := errorResponse(status, message)

	for i := range d.middleware.entries {
		e := &d.middleware.entries[i]
		if e.direction != DirectionError {
			continue
		}
		next, mwErr := d.safeAfter(ctx, e, resp)
		if mwErr != nil {
			d.logger.Error("error middleware failed", "error", mwErr)
			return finalize(errorResponse(http.StatusInternalServerError, ""), method)
		}
		if next != nil {
			resp = next
		}
	}
	return finalize(resp, method)
}

// finalize applies the terminal transformation: HEAD responses keep
// status, reason, and headers but lose the body.
func finalize(resp *Response, method string) *Response {
	if method == http.MethodHead {
		resp.Body = nil
	}
	return resp
}

// optionsResponse builds the OPTIONS short-circuit: the allowed-method
// list as JSON plus the Access-Control-Allow-Methods header.
func (d *Dispatcher) optionsResponse(path string) (*Response, error) {
	allowed := d.table.allowedMethods(path)
	resp, err := JSON(http.StatusOK, map[string][]string{"allowed_methods": allowed})
	if err != nil {
		return errorResponse(http.StatusInternalServerError, ""), nil
	}
	resp.Header.Set("Access-Control-Allow-Methods", strings.Join(allowed, ", "))
	return resp, nil
}

// safeBefore invokes a before middleware, converting panics into errors.
func (d *Dispatcher) safeBefore(ctx context.Context, e *middlewareEntry, req *http.Request) (next *http.Request, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			d.logger.Error("before middleware panicked", "panic", rec, "order", e.order)
			next, err = nil, fmt.Errorf("middleware panic: %v", rec)
		}
	}()
	return e.before(ctx, req)
}

// safeAfter invokes an after- or error-direction middleware, converting
// panics into errors.
func (d *Dispatcher) safeAfter(ctx context.Context, e *middlewareEntry, resp *Response) (next *Response, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			d.logger.Error("middleware panicked", "panic", rec, "direction", e.direction.String(), "order", e.order)
			next, err = nil, fmt.Errorf("middleware panic: %v", rec)
		}
	}()
	return e.after(ctx, resp)
}

// safeInvoke calls the handler, converting panics into errors.
func (d *Dispatcher) safeInvoke(ctx context.Context, h HandlerFunc, args binding.Args) (resp *Response, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			resp, err = nil, fmt.Errorf("handler panic: %v", rec)
		}
	}()
	return h(ctx, args)
}

// ServeHTTP adapts the dispatcher to net/http. Unclassified handler
// failures with error handling disabled are logged and answered with a
// bare 500, since there is no caller to propagate to on this surface.
func (d *Dispatcher) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	resp, err := d.Dispatch(req)
	if err != nil {
		d.logger.Error("unhandled dispatch failure", "error", err)
		resp = errorResponse(http.StatusInternalServerError, "")
	}
	if writeErr := resp.WriteTo(w); writeErr != nil {
		d.logger.Error("writing response", "error", writeErr)
	}
}

// compilerPatternOf resolves the canonical pattern for observability
// attributes without re-running method resolution.
func compilerPatternOf(d *Dispatcher, path string) string {
	for _, rt := range d.table.routes {
		if _, ok := rt.pattern.Match(path); ok {
			return rt.pattern.Canonical()
		}
	}
	return "*"
}

// RouteInfo is a read-only snapshot of one registered (pattern, method)
// pair, in the shape an external documentation generator consumes.
type RouteInfo struct {
	Pattern     string // canonical form, e.g. /user/{name}
	Method      string
	Category    string
	Deprecated  bool
	Descriptors []descriptor.Descriptor
}

// Routes returns a snapshot of all registered routes in registration
// order, excluding the built-in 404 responder. Methods within a route are
// sorted for determinism.
func (d *Dispatcher) Routes() []RouteInfo {
	var infos []RouteInfo
	collect := func(rt *route) {
		methods := make([]string, 0, len(rt.methods))
		for m := range rt.methods {
			methods = append(methods, m)
		}
		slices.Sort(methods)
		for _, m := range methods {
			ep := rt.methods[m]
			if ep.builtin {
				continue
			}
			infos = append(infos, RouteInfo{
				Pattern:     rt.pattern.Canonical(),
				Method:      m,
				Category:    ep.category,
				Deprecated:  ep.deprecated,
				Descriptors: ep.descriptors,
			})
		}
	}
	for _, rt := range d.table.routes {
		collect(rt)
	}
	if d.table.wildcard != nil {
		collect(d.table.wildcard)
	}
	return infos
}
