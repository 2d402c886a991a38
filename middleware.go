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
	"net/http"
)

// Direction identifies where in the pipeline a middleware entry runs.
type Direction int

const (
	// DirectionBefore entries transform the request ahead of argument
	// binding and handler invocation.
	DirectionBefore Direction = iota

	// DirectionAfter entries transform the handler's response.
	DirectionAfter

	// DirectionError entries transform the structured error response.
	// They are response-shaped and never see a request.
	DirectionError
)

// String returns the direction's name.
func (d Direction) String() string {
	switch d {
	case DirectionBefore:
		return "before"
	case DirectionAfter:
		return "after"
	case DirectionError:
		return "error"
	default:
		return "unknown"
	}
}

// BeforeFunc is a request-transforming middleware. It may return a new
// request for subsequent stages; returning an error aborts the pipeline
// into the error state.
type BeforeFunc func(ctx context.Context, req *http.Request) (*http.Request, error)

// AfterFunc is a response-transforming middleware, used for both the
// after-direction and error-direction chains.
type AfterFunc func(ctx context.Context, resp *Response) (*Response, error)

// middlewareEntry is one registered middleware. Entries are append-only
// and run in ascending registration order; Order is the registration
// index.
type middlewareEntry struct {
	order     int
	direction Direction
	category  string
	before    BeforeFunc
	after     AfterFunc
}

// middlewareRegistry owns the ordered middleware sequence. It is written
// during setup only; dispatch reads it without locking (see the
// registration-before-dispatch precondition on Dispatcher).
type middlewareRegistry struct {
	entries []middlewareEntry
}

func (r *middlewareRegistry) add(e middlewareEntry) {
	e.order = len(r.entries)
	r.entries = append(r.entries, e)
}

// UseBefore appends a request-transforming middleware scoped to routes of
// the given category. Category matching is exact string equality against
// the matched endpoint's category.
func (d *Dispatcher) UseBefore(category string, fn BeforeFunc) {
	d.middleware.add(middlewareEntry{direction: DirectionBefore, category: category, before: fn})
}

// UseAfter appends a response-transforming middleware scoped to routes of
// the given category.
func (d *Dispatcher) UseAfter(category string, fn AfterFunc) {
	d.middleware.add(middlewareEntry{direction: DirectionAfter, category: category, after: fn})
}

// UseError appends an error-chain middleware. Error middleware runs over
// the structured error response for every failed dispatch, regardless of
// route category. If one fails, the remaining error chain is skipped and a
// bare 500 is returned (the double-fault guard).
func (d *Dispatcher) UseError(fn AfterFunc) {
	d.middleware.add(middlewareEntry{direction: DirectionError, category: "error", after: fn})
}
