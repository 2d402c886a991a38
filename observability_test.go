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
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edgekit.dev/dispatch/binding"
	"edgekit.dev/dispatch/descriptor"
)

type ctxKey string

// recordingObserver captures the hook invocations for assertions.
type recordingObserver struct {
	started  int
	ended    int
	pattern  string
	status   int
	exclude  bool
	endState any
}

func (r *recordingObserver) OnDispatchStart(ctx context.Context, _ *http.Request) (context.Context, any) {
	r.started++
	if r.exclude {
		return ctx, nil
	}
	return context.WithValue(ctx, ctxKey("obs"), "enriched"), r
}

func (r *recordingObserver) OnDispatchEnd(_ context.Context, state any, resp *Response, routePattern string) {
	r.ended++
	r.endState = state
	r.pattern = routePattern
	if resp != nil {
		r.status = resp.StatusCode
	}
}

func TestDispatch_ObservabilityHooks(t *testing.T) {
	obs := &recordingObserver{}
	d := MustNew(WithObservability(obs))

	var seenCtxValue any
	require.NoError(t, d.GET("/user/:name", func(ctx context.Context, _ binding.Args) (*Response, error) {
		seenCtxValue = ctx.Value(ctxKey("obs"))
		return JSON(http.StatusOK, map[string]any{})
	}, WithDescriptors(descriptor.Descriptor{
		Name: "name", Location: descriptor.LocationPath, Type: descriptor.TypeString,
	})))

	dispatchReq(t, d, http.MethodGet, "http://edge.local/user/alice")

	assert.Equal(t, 1, obs.started)
	assert.Equal(t, 1, obs.ended)
	assert.Same(t, obs, obs.endState)
	assert.Equal(t, "enriched", seenCtxValue, "handler must see the enriched context")

	// Metrics key on the canonical pattern, not the raw path.
	assert.Equal(t, "/user/{name}", obs.pattern)
	assert.Equal(t, http.StatusOK, obs.status)
}

func TestDispatch_ObservabilityExclusion(t *testing.T) {
	obs := &recordingObserver{exclude: true}
	d := MustNew(WithObservability(obs))
	require.NoError(t, d.GET("/a", okHandler))

	dispatchReq(t, d, http.MethodGet, "http://edge.local/a")

	// A nil state from OnDispatchStart excludes the request from the end
	// hook entirely.
	assert.Equal(t, 1, obs.started)
	assert.Equal(t, 0, obs.ended)
}

func TestDispatch_ObservabilityUnmatchedPathUsesWildcard(t *testing.T) {
	obs := &recordingObserver{}
	d := MustNew(WithObservability(obs))

	dispatchReq(t, d, http.MethodGet, "http://edge.local/nowhere")
	assert.Equal(t, "*", obs.pattern)
	assert.Equal(t, http.StatusNotFound, obs.status)
}

func TestNewOTelRecorder_GlobalProviders(t *testing.T) {
	rec, err := NewOTelRecorder(nil, nil)
	require.NoError(t, err)
	require.NotNil(t, rec)

	// The globals default to no-op providers, so a full start/end cycle
	// is side-effect free and must not panic.
	req := httptest.NewRequest(http.MethodGet, "http://edge.local/a", nil)
	ctx, state := rec.OnDispatchStart(req.Context(), req)
	require.NotNil(t, state)
	rec.OnDispatchEnd(ctx, state, NewResponse(http.StatusOK), "/a")
}
