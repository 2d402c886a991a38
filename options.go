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

import "log/slog"

// Option defines functional options for dispatcher configuration.
type Option func(*Dispatcher)

// WithErrorHandling controls global error handling for unclassified
// handler failures.
//
// Enabled (the default), such failures become 500 responses with the
// default message; the original error is logged and never leaks to the
// client. Disabled, they propagate from Dispatch to the caller unhandled.
// Structured *httperr.Error failures keep their status and message either
// way.
func WithErrorHandling(enabled bool) Option {
	return func(d *Dispatcher) {
		d.errorHandling = enabled
	}
}

// WithLogger sets the logger for internally suppressed errors. The
// default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithObservability sets the observability recorder invoked around every
// dispatch. Nil (the default) disables all observability with no
// overhead.
func WithObservability(recorder ObservabilityRecorder) Option {
	return func(d *Dispatcher) {
		d.observability = recorder
	}
}

// WithInternalRoutes enables the reserved documentation routes, serving
// the given document on /openapi.json and an HTML viewer on /docs. While
// enabled, user registrations on those paths fail with ErrReservedPath.
//
// Example:
//
//	d := dispatch.MustNew(dispatch.WithInternalRoutes(
//	    dispatch.DocumentBytes(specJSON),
//	))
func WithInternalRoutes(source DocumentSource) Option {
	return func(d *Dispatcher) {
		d.internalRoutes = true
		d.document = source
	}
}

// WithNotFoundHandler replaces the built-in 404 responder on the
// all-paths wildcard. The replacement still behaves as the 404 responder:
// it does not mask method-not-allowed outcomes on registered paths.
func WithNotFoundHandler(handler HandlerFunc) Option {
	return func(d *Dispatcher) {
		if handler != nil {
			d.notFoundOverride = handler
		}
	}
}
