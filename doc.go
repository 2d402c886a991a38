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

// Package dispatch is a request-dispatch engine for serverless HTTP edge
// functions.
//
// A Dispatcher matches an incoming request against registered
// (method, path-template) handlers, runs a category-filtered chain of
// before/after middleware, binds and type-coerces handler arguments from
// path segments, query string, headers, cookies, and body, invokes the
// handler, and translates any failure into the unified JSON error shape
// {"detail": message}.
//
// # Registration
//
// Routes are registered with AddRoute or the per-verb wrappers. Parameter
// contracts are declared as descriptors, either literally or extracted
// from a metadata text:
//
//	d := dispatch.MustNew()
//	d.GET("/user/:name", getUser, dispatch.WithMetadata(`
//	    Returns a user's profile.
//	    @param name where:path type:string
//	    @param verbose where:query type:boolean optional
//	`, "name", "verbose"))
//
// Path templates support literal segments and single named placeholders
// (":name"). The reserved template "*" matches every path and backs the
// built-in 404 responder; the reserved method token "*" accepts any
// method not otherwise registered for a path. OPTIONS is always allowed
// implicitly and answers with the path's allowed-method list.
//
// # Middleware
//
// Middleware is appended to an ordered registry and filtered by category:
// an entry runs only for routes whose category matches exactly. Before
// middleware transforms the request, after middleware the response, and
// error middleware the structured error response. If an error middleware
// itself fails, the dispatcher returns a bare 500 without resuming the
// chain (the double-fault guard).
//
// # Concurrency
//
// Registration must complete before the first dispatch; afterwards the
// Dispatcher is safe for concurrent use because dispatching only reads
// the route table and middleware registry. There is no cross-request
// mutable state, no ordering between in-flight requests, and no built-in
// cancellation beyond the request context the host runtime supplies.
package dispatch
