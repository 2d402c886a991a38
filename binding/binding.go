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

// Package binding resolves a route's parameter descriptors against an
// incoming request and produces the ordered argument list for the handler.
//
// Resolution per parameter, in the handler's declared order:
//
//  1. A captured path parameter with the same name wins, regardless of the
//     descriptor's stored location.
//  2. Otherwise the descriptor's declared location is read (query, header,
//     cookie, body).
//  3. Otherwise the reserved name "request" binds the request itself.
//  4. Otherwise the argument binds as nil. This is a permissive fallback,
//     not a failure.
//
// Every binding failure is an *httperr.Error (status 400 unless stated
// otherwise); the package never returns raw errors.
package binding

import (
	"io"
	"net/http"
	"net/textproto"
	"strings"

	"edgekit.dev/dispatch/descriptor"
	"edgekit.dev/dispatch/httperr"
)

// RequestToken is the reserved parameter name that binds the request
// object itself instead of an extracted value.
const RequestToken = "request"

// Args is the ordered argument list passed to a handler. Positions line up
// with the route's descriptor order; unresolved positions hold nil.
type Args []any

// Bind resolves descriptors against the request and the captured path
// parameters. Values are coerced per each descriptor's type; missing
// required values fail with a 400 ClientError, missing optional values
// bind as nil.
func Bind(req *http.Request, descriptors []descriptor.Descriptor, pathParams map[string]string) (Args, error) {
	args := make(Args, 0, len(descriptors))

	// The body is read at most once even if several descriptors name it.
	var (
		body     string
		bodyRead bool
	)

	for _, d := range descriptors {
		// Path capture takes precedence over the stored location.
		if raw, ok := pathParams[d.Name]; ok {
			v, err := coerce(raw, d)
			if err != nil {
				return nil, err
			}
			args = append(args, v)
			continue
		}

		if d.Location == descriptor.LocationUnset {
			if d.Name == RequestToken {
				args = append(args, req)
			} else {
				args = append(args, nil)
			}
			continue
		}

		var (
			raw   string
			found bool
		)
		switch d.Location {
		case descriptor.LocationQuery:
			raw, found = queryValue(req.URL.RawQuery, d.Name)
		case descriptor.LocationHeader:
			raw, found = headerValue(req.Header, d.Name)
		case descriptor.LocationCookie:
			raw, found = cookieValue(req.Header.Get("Cookie"), d.Name)
		case descriptor.LocationBody:
			if !bodyRead {
				body = readBody(req)
				bodyRead = true
			}
			raw, found = body, body != ""
		case descriptor.LocationPath:
			// A path descriptor whose name was not captured: the route
			// table guarantees this cannot happen for registered routes,
			// so treat it as missing.
			found = false
		}

		if !found {
			if d.Optional {
				args = append(args, nil)
				continue
			}
			return nil, httperr.Newf(http.StatusBadRequest,
				"Missing required %s parameter %s!", d.Location, d.Name)
		}

		v, err := coerce(raw, d)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}

	return args, nil
}

// queryValue parses the raw query string, splitting on '&' then '=',
// last-write-wins on duplicate keys. Values are not URL-decoded here; the
// object coercion decodes explicitly.
func queryValue(rawQuery, name string) (string, bool) {
	var (
		value string
		found bool
	)
	for _, pair := range strings.Split(rawQuery, "&") {
		if pair == "" {
			continue
		}
		k, v, _ := strings.Cut(pair, "=")
		if k == name {
			value, found = v, true
		}
	}
	return value, found
}

// headerValue looks a header up case-insensitively. Presence is judged on
// the canonicalized key, so an empty-valued header still counts as found.
func headerValue(h http.Header, name string) (string, bool) {
	values, ok := h[textproto.CanonicalMIMEHeaderKey(name)]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[0], true
}

// cookieValue parses the Cookie header as "; "-separated key=value pairs,
// first match wins.
func cookieValue(header, name string) (string, bool) {
	for _, pair := range strings.Split(header, "; ") {
		k, v, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if ok && k == name {
			return v, true
		}
	}
	return "", false
}

func readBody(req *http.Request) string {
	if req.Body == nil {
		return ""
	}
	b, err := io.ReadAll(req.Body)
	if err != nil {
		return ""
	}
	return string(b)
}
