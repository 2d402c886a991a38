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

// Package httperr provides the structured error value used across the
// dispatch pipeline. Every failure that should reach a client is expressed
// as an *Error carrying an HTTP status code and a message; the dispatcher
// renders it as {"detail": message} with the given status.
package httperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a client-visible failure with an HTTP status code.
// The zero message falls back to the default status-message table, so
// New(404) and New(404, "Not Found") produce the same response.
//
// Use [errors.As] to detect it:
//
//	var herr *httperr.Error
//	if errors.As(err, &herr) {
//	    status = herr.Status
//	}
type Error struct {
	// Status is the HTTP status code sent to the client.
	Status int

	// Message is the client-visible message. Empty means "use the
	// default message for Status".
	Message string
}

// New creates an Error for the given status code. An optional message
// overrides the default from the status-message table.
//
// Example:
//
//	httperr.New(http.StatusTooManyRequests)           // "Too Many Requests"
//	httperr.New(http.StatusBadRequest, "bad cursor")  // "bad cursor"
func New(status int, message ...string) *Error {
	e := &Error{Status: status}
	if len(message) > 0 {
		e.Message = message[0]
	}
	return e
}

// Newf creates an Error with a formatted message.
func Newf(status int, format string, args ...any) *Error {
	return &Error{Status: status, Message: fmt.Sprintf(format, args...)}
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Detail()
}

// Detail returns the client-visible message, resolving an empty message
// through the default status-message table.
func (e *Error) Detail() string {
	if e.Message != "" {
		return e.Message
	}
	return StatusMessage(e.Status)
}

// HTTPStatus returns the HTTP status code for this error. A zero status
// defaults to 400, since structured errors are raised by request-facing
// code paths.
func (e *Error) HTTPStatus() int {
	if e.Status == 0 {
		return http.StatusBadRequest
	}
	return e.Status
}

// From extracts an *Error from err. If err is not (and does not wrap) an
// *Error, it returns nil. Unclassified errors are the dispatcher's
// responsibility to convert to a 500.
func From(err error) *Error {
	var herr *Error
	if errors.As(err, &herr) {
		return herr
	}
	return nil
}
