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

package descriptor

import (
	"fmt"
	"strings"
)

// Extraction is the result of parsing a handler's metadata text: one
// descriptor per declared parameter, plus the route-level category and
// deprecation flag.
type Extraction struct {
	Descriptors []Descriptor
	Category    string
	Deprecated  bool
}

// DefaultCategory is the category assigned when metadata carries no
// @category tag. Middleware registered for "default" applies to these
// routes.
const DefaultCategory = "default"

// Extract parses a handler's metadata text into descriptors for the given
// declared parameter names, in declaration order.
//
// The metadata grammar is line-oriented; lines that carry no tag are
// prose and are ignored:
//
//	Returns the user's profile.
//	@param name where:path type:string
//	@param verbose where:query type:boolean optional
//	@category auth
//	@deprecated
//
// A declared parameter the metadata does not document gets the sentinel
// descriptor {Type: any, Location: unset}, which the binder resolves
// permissively. Documentation for a name that is not declared is ignored.
//
// Extract fails with ErrInvalidAttribute on an attribute outside
// {where, type, optional, deprecated}, an enumeration violation, or a
// path-located parameter marked optional.
func Extract(metadata string, paramNames []string) (Extraction, error) {
	ext := Extraction{Category: DefaultCategory}
	documented := make(map[string]Descriptor, len(paramNames))

	for _, line := range strings.Split(metadata, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case line == "@param" || strings.HasPrefix(line, "@param "):
			d, err := parseParamLine(strings.TrimPrefix(line, "@param"))
			if err != nil {
				return Extraction{}, err
			}
			documented[d.Name] = d

		case strings.HasPrefix(line, "@category "):
			if c := strings.TrimSpace(strings.TrimPrefix(line, "@category ")); c != "" {
				ext.Category = c
			}

		case line == "@deprecated":
			ext.Deprecated = true
		}
	}

	ext.Descriptors = make([]Descriptor, 0, len(paramNames))
	for _, name := range paramNames {
		if d, ok := documented[name]; ok {
			ext.Descriptors = append(ext.Descriptors, d)
			continue
		}
		ext.Descriptors = append(ext.Descriptors, Descriptor{
			Name:     name,
			Location: LocationUnset,
			Type:     TypeAny,
		})
	}
	return ext, nil
}

// parseParamLine parses the remainder of an "@param" line: a parameter
// name followed by "key:value" attributes and bare flags.
func parseParamLine(rest string) (Descriptor, error) {
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return Descriptor{}, fmt.Errorf("%w: @param without a name", ErrInvalidAttribute)
	}

	d := Descriptor{Name: fields[0], Type: TypeAny}

	for _, attr := range fields[1:] {
		key, value, hasValue := strings.Cut(attr, ":")
		switch {
		case key == "where" && hasValue:
			loc := Location(value)
			switch loc {
			case LocationPath, LocationQuery, LocationHeader, LocationCookie, LocationBody:
				d.Location = loc
			default:
				return Descriptor{}, fmt.Errorf("%w: where:%s on parameter %q", ErrInvalidAttribute, value, d.Name)
			}

		case key == "type" && hasValue:
			typ := Type(value)
			switch typ {
			case TypeString, TypeNumber, TypeBoolean, TypeObject, TypeAny:
				d.Type = typ
			default:
				return Descriptor{}, fmt.Errorf("%w: type:%s on parameter %q", ErrInvalidAttribute, value, d.Name)
			}

		case attr == "optional":
			d.Optional = true

		case attr == "deprecated":
			d.Deprecated = true

		default:
			return Descriptor{}, fmt.Errorf("%w: %q on parameter %q", ErrInvalidAttribute, attr, d.Name)
		}
	}

	if d.Location == LocationPath && d.Optional {
		return Descriptor{}, fmt.Errorf("%w: parameter %q is path-located and optional", ErrInvalidAttribute, d.Name)
	}
	return d, nil
}
