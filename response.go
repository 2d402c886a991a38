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
	"encoding/json"
	"fmt"
	"net/http"

	"edgekit.dev/dispatch/httperr"
)

const contentTypeJSON = "application/json"

// Response is the value a dispatch produces. After-direction and
// error-direction middleware receive and may replace it; the ServeHTTP
// adapter writes it to the wire.
type Response struct {
	// StatusCode is the HTTP status code. Zero is treated as 200.
	StatusCode int

	// StatusText is the reason phrase. Empty resolves through
	// http.StatusText when written.
	StatusText string

	// Header holds the response headers.
	Header http.Header

	// Body is the response payload. HEAD finalization strips it while
	// preserving status and headers.
	Body []byte
}

// NewResponse creates an empty response with the given status code.
func NewResponse(status int) *Response {
	return &Response{
		StatusCode: status,
		StatusText: http.StatusText(status),
		Header:     make(http.Header),
	}
}

// JSON builds a JSON response from v. It is the usual way for a handler to
// produce its result:
//
//	func getUser(ctx context.Context, args binding.Args) (*dispatch.Response, error) {
//	    return dispatch.JSON(http.StatusOK, map[string]any{"name": args[0]})
//	}
func JSON(status int, v any) (*Response, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding response body: %w", err)
	}
	resp := NewResponse(status)
	resp.Header.Set("Content-Type", contentTypeJSON)
	resp.Body = body
	return resp, nil
}

// Text builds a plain-text response.
func Text(status int, body string) *Response {
	resp := NewResponse(status)
	resp.Header.Set("Content-Type", "text/plain; charset=utf-8")
	resp.Body = []byte(body)
	return resp
}

// errorResponse renders the unified error shape {"detail": message}. Every
// error path in the pipeline converges here, so clients always see the
// same JSON body regardless of which stage failed.
func errorResponse(status int, message string) *Response {
	if message == "" {
		message = httperr.StatusMessage(status)
	}
	body, err := json.Marshal(map[string]string{"detail": message})
	if err != nil {
		// A plain string always marshals; kept for completeness.
		body = []byte(`{"detail":"` + httperr.StatusMessage(http.StatusInternalServerError) + `"}`)
	}
	resp := NewResponse(status)
	resp.Header.Set("Content-Type", contentTypeJSON)
	resp.Body = body
	return resp
}

// WriteTo writes the response to an http.ResponseWriter.
func (r *Response) WriteTo(w http.ResponseWriter) error {
	for k, values := range r.Header {
		for _, v := range values {
			w.Header().Add(k, v)
		}
	}
	status := r.StatusCode
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	if len(r.Body) == 0 {
		return nil
	}
	_, err := w.Write(r.Body)
	return err
}
