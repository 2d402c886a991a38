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

// Package descriptor defines the typed contract for handler parameters:
// where a parameter is read from (path, query, header, cookie, body), how
// its raw string is coerced (string, number, boolean, object), and whether
// it is optional or deprecated.
//
// Descriptors are attached to a route at registration time, either as
// literal values or extracted from a handler's metadata text with Extract.
// The argument binder consults them in the handler's declared parameter
// order.
package descriptor

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Location identifies where a parameter value is read from.
type Location string

const (
	// LocationUnset marks a declared-but-undocumented parameter. The
	// binder resolves it permissively (path capture, the reserved
	// "request" token, or nil).
	LocationUnset Location = ""

	LocationPath   Location = "path"
	LocationQuery  Location = "query"
	LocationHeader Location = "header"
	LocationCookie Location = "cookie"
	LocationBody   Location = "body"
)

// Type identifies how a parameter's raw string is coerced.
type Type string

const (
	// TypeAny is the sentinel for undocumented parameters: the raw value
	// passes through without coercion.
	TypeAny Type = "any"

	TypeString  Type = "string"
	TypeNumber  Type = "number"
	TypeBoolean Type = "boolean"
	TypeObject  Type = "object"
)

// Descriptor is the contract for one handler parameter.
//
// Invariant: a path-located parameter is never optional; Validate and
// Extract both reject that combination.
type Descriptor struct {
	// Name is the parameter name as declared by the handler.
	Name string `validate:"required"`

	// Location is the request part the value is read from. Unset means
	// undocumented (see LocationUnset).
	Location Location `validate:"omitempty,oneof=path query header cookie body"`

	// Type selects the coercion applied to the raw string value.
	Type Type `validate:"omitempty,oneof=any string number boolean object"`

	// Optional values bind as nil when absent instead of failing.
	Optional bool

	// Deprecated marks the parameter for documentation output only; the
	// binder ignores it.
	Deprecated bool

	// Schema optionally validates object-typed values after JSON
	// parsing. Nil skips schema validation.
	Schema *jsonschema.Schema
}

var structValidator = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the descriptor's structural invariants. It is called by
// the route table on every descriptor at registration time.
func (d Descriptor) Validate() error {
	if err := structValidator.Struct(d); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("%w: field %s (%s=%v)",
				ErrInvalidAttribute, verrs[0].Field(), verrs[0].Tag(), verrs[0].Value())
		}
		return fmt.Errorf("%w: %v", ErrInvalidAttribute, err)
	}
	if d.Location == LocationPath && d.Optional {
		return fmt.Errorf("%w: %q", ErrOptionalPathParameter, d.Name)
	}
	return nil
}

// EffectiveType returns the coercion type, defaulting to the any sentinel
// when unset.
func (d Descriptor) EffectiveType() Type {
	if d.Type == "" {
		return TypeAny
	}
	return d.Type
}
