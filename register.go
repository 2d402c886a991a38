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
	"fmt"
	"net/http"
	"slices"

	"edgekit.dev/dispatch/descriptor"
)

// routeConfig collects per-registration settings from RouteOptions.
type routeConfig struct {
	descriptors    []descriptor.Descriptor
	category       string
	deprecated     bool
	bypassReserved bool

	metadata       string
	metadataParams []string
	hasMetadata    bool
}

// RouteOption configures one route registration.
type RouteOption func(*routeConfig)

// WithDescriptors attaches explicit parameter descriptors, in the
// handler's declared parameter order.
func WithDescriptors(ds ...descriptor.Descriptor) RouteOption {
	return func(c *routeConfig) {
		c.descriptors = ds
	}
}

// WithMetadata attaches a handler metadata text to be run through the
// descriptor extractor. paramNames is the handler's declared parameter
// order; undocumented names get the permissive any-type descriptor.
//
// Explicit WithDescriptors, WithCategory, and Deprecated options override
// what the metadata yields.
func WithMetadata(metadata string, paramNames ...string) RouteOption {
	return func(c *routeConfig) {
		c.metadata = metadata
		c.metadataParams = paramNames
		c.hasMetadata = true
	}
}

// WithCategory sets the route's middleware category for this method.
// Unset defaults to "default".
func WithCategory(category string) RouteOption {
	return func(c *routeConfig) {
		c.category = category
	}
}

// Deprecated marks the (path, method) registration deprecated in
// documentation output.
func Deprecated() RouteOption {
	return func(c *routeConfig) {
		c.deprecated = true
	}
}

// bypassReserved allows registration on the reserved documentation paths.
// Only the dispatcher's own internal route registration uses it.
func bypassReserved() RouteOption {
	return func(c *routeConfig) {
		c.bypassReserved = true
	}
}

// AddRoute registers a handler for (path, method). Re-registering the
// same pair replaces the handler for that method only; the path's
// allowed-method set grows by union and always includes OPTIONS
// implicitly.
//
// Registration failures are fatal setup errors: reserved-path conflicts,
// invalid templates, and descriptor mismatches are never deferred to
// request time.
func (d *Dispatcher) AddRoute(path, method string, handler HandlerFunc, opts ...RouteOption) error {
	if handler == nil {
		return ErrNilHandler
	}

	var cfg routeConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	if d.internalRoutes && !cfg.bypassReserved && slices.Contains(reservedPaths, path) {
		return fmt.Errorf("%w: %s", ErrReservedPath, path)
	}

	category := cfg.category
	deprecated := cfg.deprecated
	descriptors := cfg.descriptors

	if cfg.hasMetadata {
		ext, err := descriptor.Extract(cfg.metadata, cfg.metadataParams)
		if err != nil {
			return err
		}
		if descriptors == nil {
			descriptors = ext.Descriptors
		}
		if category == "" {
			category = ext.Category
		}
		deprecated = deprecated || ext.Deprecated
	}
	if category == "" {
		category = descriptor.DefaultCategory
	}

	return d.table.register(path, method, &endpoint{
		handler:     handler,
		descriptors: descriptors,
		category:    category,
		deprecated:  deprecated,
	})
}

// GET registers a handler for GET requests on path.
func (d *Dispatcher) GET(path string, handler HandlerFunc, opts ...RouteOption) error {
	return d.AddRoute(path, http.MethodGet, handler, opts...)
}

// POST registers a handler for POST requests on path.
func (d *Dispatcher) POST(path string, handler HandlerFunc, opts ...RouteOption) error {
	return d.AddRoute(path, http.MethodPost, handler, opts...)
}

// PUT registers a handler for PUT requests on path.
func (d *Dispatcher) PUT(path string, handler HandlerFunc, opts ...RouteOption) error {
	return d.AddRoute(path, http.MethodPut, handler, opts...)
}

// PATCH registers a handler for PATCH requests on path.
func (d *Dispatcher) PATCH(path string, handler HandlerFunc, opts ...RouteOption) error {
	return d.AddRoute(path, http.MethodPatch, handler, opts...)
}

// DELETE registers a handler for DELETE requests on path.
func (d *Dispatcher) DELETE(path string, handler HandlerFunc, opts ...RouteOption) error {
	return d.AddRoute(path, http.MethodDelete, handler, opts...)
}

// Any registers a handler for the wildcard method token: it accepts any
// method not otherwise registered for the path.
func (d *Dispatcher) Any(path string, handler HandlerFunc, opts ...RouteOption) error {
	return d.AddRoute(path, WildcardMethod, handler, opts...)
}
