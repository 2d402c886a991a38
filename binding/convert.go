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

package binding

import (
	"encoding/json"
	"math"
	"net/http"
	"net/url"
	"strings"

	"github.com/spf13/cast"

	"edgekit.dev/dispatch/descriptor"
	"edgekit.dev/dispatch/httperr"
)

// coerce converts a raw string to the descriptor's declared type.
//
//	string, any → pass-through
//	number      → float64; NaN and parse failures are rejected
//	boolean     → case-insensitive {true,t,1} / {false,f,0}
//	object      → URL-decode (body values excepted), JSON-parse, optional
//	              schema validation
func coerce(raw string, d descriptor.Descriptor) (any, error) {
	switch d.EffectiveType() {
	case descriptor.TypeString, descriptor.TypeAny:
		return raw, nil

	case descriptor.TypeNumber:
		n, err := cast.ToFloat64E(raw)
		if err != nil || math.IsNaN(n) {
			return nil, typeError(d.Name, "number")
		}
		return n, nil

	case descriptor.TypeBoolean:
		b, err := cast.ToBoolE(strings.ToLower(raw))
		if err != nil {
			return nil, typeError(d.Name, "boolean")
		}
		return b, nil

	case descriptor.TypeObject:
		// Body values are raw JSON already; unescaping them would corrupt
		// literal '%' and '+' characters inside the document.
		decoded := raw
		if d.Location != descriptor.LocationBody {
			var err error
			decoded, err = url.QueryUnescape(raw)
			if err != nil {
				return nil, httperr.New(http.StatusBadRequest, err.Error())
			}
		}
		var v any
		if err := json.Unmarshal([]byte(decoded), &v); err != nil {
			return nil, httperr.New(http.StatusBadRequest, err.Error())
		}
		if d.Schema != nil {
			if err := d.Schema.Validate(v); err != nil {
				return nil, httperr.New(http.StatusBadRequest, err.Error())
			}
		}
		return v, nil
	}

	return raw, nil
}

func typeError(name, want string) *httperr.Error {
	return httperr.Newf(http.StatusBadRequest,
		"Invalid data type for %s! Should be '%s'!", name, want)
}
