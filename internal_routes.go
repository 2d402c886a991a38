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

	"edgekit.dev/dispatch/binding"
)

// DocumentSource supplies the API document served on /openapi.json.
// Document generation is the caller's concern; the dispatcher only serves
// the bytes.
type DocumentSource func() []byte

// DocumentBytes adapts a static document to a DocumentSource.
func DocumentBytes(doc []byte) DocumentSource {
	return func() []byte { return doc }
}

// docsPage is the interactive viewer served on /docs. It loads the
// document from the sibling /openapi.json route.
const docsPage = `<!DOCTYPE html>
<html>
<head>
  <title>API Documentation</title>
  <meta charset="utf-8"/>
  <meta name="viewport" content="width=device-width, initial-scale=1"/>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css"/>
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    SwaggerUIBundle({ url: "/openapi.json", dom_id: "#swagger-ui" });
  </script>
</body>
</html>`

// registerInternalRoutes installs the reserved documentation routes during
// setup, using the reserved-path bypass. Explicit registration here (after
// options, before the dispatcher is handed out) keeps the route table
// immutable once dispatching starts.
func (d *Dispatcher) registerInternalRoutes() error {
	document := d.document

	err := d.AddRoute("/openapi.json", http.MethodGet,
		func(_ context.Context, _ binding.Args) (*Response, error) {
			resp := NewResponse(http.StatusOK)
			resp.Header.Set("Content-Type", contentTypeJSON)
			resp.Body = document()
			return resp, nil
		},
		bypassReserved())
	if err != nil {
		return err
	}

	return d.AddRoute("/docs", http.MethodGet,
		func(_ context.Context, _ binding.Args) (*Response, error) {
			resp := NewResponse(http.StatusOK)
			resp.Header.Set("Content-Type", "text/html; charset=utf-8")
			resp.Body = []byte(docsPage)
			return resp, nil
		},
		bypassReserved())
}
