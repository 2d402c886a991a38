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
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edgekit.dev/dispatch/descriptor"
	"edgekit.dev/dispatch/httperr"
)

func query(name string) descriptor.Descriptor {
	return descriptor.Descriptor{Name: name, Location: descriptor.LocationQuery, Type: descriptor.TypeString}
}

func requireClientError(t *testing.T, err error, status int, message string) {
	t.Helper()
	herr := httperr.From(err)
	require.NotNil(t, herr, "expected a structured error, got %v", err)
	assert.Equal(t, status, herr.HTTPStatus())
	assert.Equal(t, message, herr.Detail())
}

func TestBind_PathCaptureTakesPrecedence(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "http://edge.local/user/alice?name=mallory", nil)

	// The stored location says query, but the captured path value wins.
	args, err := Bind(req, []descriptor.Descriptor{query("name")}, map[string]string{"name": "alice"})
	require.NoError(t, err)
	require.Len(t, args, 1)
	assert.Equal(t, "alice", args[0])
}

func TestBind_QueryLastWriteWins(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "http://edge.local/search?q=first&q=second", nil)

	args, err := Bind(req, []descriptor.Descriptor{query("q")}, nil)
	require.NoError(t, err)
	assert.Equal(t, "second", args[0])
}

func TestBind_MissingRequiredQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "http://edge.local/search", nil)
	d := descriptor.Descriptor{Name: "age", Location: descriptor.LocationQuery, Type: descriptor.TypeNumber}

	_, err := Bind(req, []descriptor.Descriptor{d}, nil)
	requireClientError(t, err, http.StatusBadRequest, "Missing required query parameter age!")
}

func TestBind_MissingOptionalBindsNil(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "http://edge.local/search", nil)
	d := descriptor.Descriptor{Name: "age", Location: descriptor.LocationQuery, Type: descriptor.TypeNumber, Optional: true}

	args, err := Bind(req, []descriptor.Descriptor{d}, nil)
	require.NoError(t, err)
	assert.Nil(t, args[0])
}

func TestBind_NumberCoercion(t *testing.T) {
	d := descriptor.Descriptor{Name: "age", Location: descriptor.LocationQuery, Type: descriptor.TypeNumber}

	req := httptest.NewRequest(http.MethodGet, "http://edge.local/search?age=5", nil)
	args, err := Bind(req, []descriptor.Descriptor{d}, nil)
	require.NoError(t, err)
	assert.Equal(t, float64(5), args[0])

	req = httptest.NewRequest(http.MethodGet, "http://edge.local/search?age=abc", nil)
	_, err = Bind(req, []descriptor.Descriptor{d}, nil)
	requireClientError(t, err, http.StatusBadRequest, "Invalid data type for age! Should be 'number'!")

	// NaN parses as a float but is rejected as a value.
	req = httptest.NewRequest(http.MethodGet, "http://edge.local/search?age=NaN", nil)
	_, err = Bind(req, []descriptor.Descriptor{d}, nil)
	requireClientError(t, err, http.StatusBadRequest, "Invalid data type for age! Should be 'number'!")
}

func TestBind_BooleanCoercion(t *testing.T) {
	d := descriptor.Descriptor{Name: "flag", Location: descriptor.LocationQuery, Type: descriptor.TypeBoolean}

	truthy := []string{"true", "TRUE", "True", "t", "T", "1"}
	for _, v := range truthy {
		req := httptest.NewRequest(http.MethodGet, "http://edge.local/x?flag="+v, nil)
		args, err := Bind(req, []descriptor.Descriptor{d}, nil)
		require.NoError(t, err, "value %q", v)
		assert.Equal(t, true, args[0], "value %q", v)
	}

	falsy := []string{"false", "FALSE", "f", "F", "0"}
	for _, v := range falsy {
		req := httptest.NewRequest(http.MethodGet, "http://edge.local/x?flag="+v, nil)
		args, err := Bind(req, []descriptor.Descriptor{d}, nil)
		require.NoError(t, err, "value %q", v)
		assert.Equal(t, false, args[0], "value %q", v)
	}

	req := httptest.NewRequest(http.MethodGet, "http://edge.local/x?flag=yes", nil)
	_, err := Bind(req, []descriptor.Descriptor{d}, nil)
	requireClientError(t, err, http.StatusBadRequest, "Invalid data type for flag! Should be 'boolean'!")
}

func TestBind_ObjectCoercion(t *testing.T) {
	d := descriptor.Descriptor{Name: "filter", Location: descriptor.LocationQuery, Type: descriptor.TypeObject}

	// URL-encoded {"a":1}
	req := httptest.NewRequest(http.MethodGet, "http://edge.local/x?filter=%7B%22a%22%3A1%7D", nil)
	args, err := Bind(req, []descriptor.Descriptor{d}, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": float64(1)}, args[0])

	// Malformed JSON fails with a structured 400 carrying the syntax error.
	req = httptest.NewRequest(http.MethodGet, "http://edge.local/x?filter=%7Bnope", nil)
	_, err = Bind(req, []descriptor.Descriptor{d}, nil)
	herr := httperr.From(err)
	require.NotNil(t, herr)
	assert.Equal(t, http.StatusBadRequest, herr.HTTPStatus())
}

func compileSchema(t *testing.T, schemaJSON string) *jsonschema.Schema {
	t.Helper()
	var doc any
	require.NoError(t, json.Unmarshal([]byte(schemaJSON), &doc))

	c := jsonschema.NewCompiler()
	require.NoError(t, c.AddResource("schema.json", doc))
	schema, err := c.Compile("schema.json")
	require.NoError(t, err)
	return schema
}

func TestBind_ObjectSchemaValidation(t *testing.T) {
	schema := compileSchema(t, `{
		"type": "object",
		"required": ["a"],
		"properties": {"a": {"type": "number"}}
	}`)
	d := descriptor.Descriptor{
		Name: "filter", Location: descriptor.LocationQuery, Type: descriptor.TypeObject,
		Schema: schema,
	}

	// Conforming: URL-encoded {"a":1}
	req := httptest.NewRequest(http.MethodGet, "http://edge.local/x?filter=%7B%22a%22%3A1%7D", nil)
	args, err := Bind(req, []descriptor.Descriptor{d}, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": float64(1)}, args[0])

	// Wrong property type: {"a":"x"}
	req = httptest.NewRequest(http.MethodGet, "http://edge.local/x?filter=%7B%22a%22%3A%22x%22%7D", nil)
	_, err = Bind(req, []descriptor.Descriptor{d}, nil)
	herr := httperr.From(err)
	require.NotNil(t, herr, "schema violation must be a structured error, got %v", err)
	assert.Equal(t, http.StatusBadRequest, herr.HTTPStatus())

	// Missing required property: {}
	req = httptest.NewRequest(http.MethodGet, "http://edge.local/x?filter=%7B%7D", nil)
	_, err = Bind(req, []descriptor.Descriptor{d}, nil)
	herr = httperr.From(err)
	require.NotNil(t, herr)
	assert.Equal(t, http.StatusBadRequest, herr.HTTPStatus())
}

func TestBind_BodyObjectSchemaValidation(t *testing.T) {
	schema := compileSchema(t, `{"type": "object", "required": ["k"]}`)
	d := descriptor.Descriptor{
		Name: "payload", Location: descriptor.LocationBody, Type: descriptor.TypeObject,
		Schema: schema,
	}

	req := httptest.NewRequest(http.MethodPost, "http://edge.local/x", strings.NewReader(`{"k":"v"}`))
	args, err := Bind(req, []descriptor.Descriptor{d}, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"k": "v"}, args[0])

	req = httptest.NewRequest(http.MethodPost, "http://edge.local/x", strings.NewReader(`{"other":1}`))
	_, err = Bind(req, []descriptor.Descriptor{d}, nil)
	herr := httperr.From(err)
	require.NotNil(t, herr)
	assert.Equal(t, http.StatusBadRequest, herr.HTTPStatus())
}

func TestBind_BodyObjectKeepsPercentLiterals(t *testing.T) {
	d := descriptor.Descriptor{Name: "payload", Location: descriptor.LocationBody, Type: descriptor.TypeObject}

	// A raw JSON body is not URL-encoded; '%' and '+' are literal.
	req := httptest.NewRequest(http.MethodPost, "http://edge.local/x", strings.NewReader(`{"v":"50% + tax"}`))
	args, err := Bind(req, []descriptor.Descriptor{d}, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"v": "50% + tax"}, args[0])
}

func TestBind_HeaderCaseInsensitive(t *testing.T) {
	d := descriptor.Descriptor{Name: "x-trace-id", Location: descriptor.LocationHeader, Type: descriptor.TypeString}

	req := httptest.NewRequest(http.MethodGet, "http://edge.local/x", nil)
	req.Header.Set("X-TRACE-ID", "abc123")

	args, err := Bind(req, []descriptor.Descriptor{d}, nil)
	require.NoError(t, err)
	assert.Equal(t, "abc123", args[0])
}

func TestBind_CookieFirstMatchWins(t *testing.T) {
	d := descriptor.Descriptor{Name: "session", Location: descriptor.LocationCookie, Type: descriptor.TypeString}

	req := httptest.NewRequest(http.MethodGet, "http://edge.local/x", nil)
	req.Header.Set("Cookie", "session=one; theme=dark; session=two")

	args, err := Bind(req, []descriptor.Descriptor{d}, nil)
	require.NoError(t, err)
	assert.Equal(t, "one", args[0])
}

func TestBind_BodyParameter(t *testing.T) {
	d := descriptor.Descriptor{Name: "payload", Location: descriptor.LocationBody, Type: descriptor.TypeObject}

	req := httptest.NewRequest(http.MethodPost, "http://edge.local/x", strings.NewReader(`{"k":"v"}`))
	args, err := Bind(req, []descriptor.Descriptor{d}, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"k": "v"}, args[0])
}

func TestBind_ReservedRequestToken(t *testing.T) {
	d := descriptor.Descriptor{Name: "request", Type: descriptor.TypeAny}

	req := httptest.NewRequest(http.MethodGet, "http://edge.local/x", nil)
	args, err := Bind(req, []descriptor.Descriptor{d}, nil)
	require.NoError(t, err)
	assert.Same(t, req, args[0])
}

func TestBind_UnresolvedBindsNil(t *testing.T) {
	d := descriptor.Descriptor{Name: "mystery", Type: descriptor.TypeAny}

	req := httptest.NewRequest(http.MethodGet, "http://edge.local/x", nil)
	args, err := Bind(req, []descriptor.Descriptor{d}, nil)
	require.NoError(t, err)
	assert.Nil(t, args[0])
}

func TestBind_ArgumentOrderFollowsDescriptors(t *testing.T) {
	ds := []descriptor.Descriptor{
		{Name: "id", Location: descriptor.LocationPath, Type: descriptor.TypeString},
		{Name: "verbose", Location: descriptor.LocationQuery, Type: descriptor.TypeBoolean, Optional: true},
		{Name: "request", Type: descriptor.TypeAny},
	}

	req := httptest.NewRequest(http.MethodGet, "http://edge.local/item/9?verbose=1", nil)
	args, err := Bind(req, ds, map[string]string{"id": "9"})
	require.NoError(t, err)
	require.Len(t, args, 3)
	assert.Equal(t, "9", args[0])
	assert.Equal(t, true, args[1])
	assert.Same(t, req, args[2])
}
