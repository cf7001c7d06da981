package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/phrazzld/lifeline-api/internal/service/matching"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	matching *fakeMatching
	forecast *fakeForecast
	emitter  *fakeEmitter
	tasks    *fakeTasks
	handler  http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ts := &testServer{
		matching: &fakeMatching{},
		forecast: &fakeForecast{canRetrain: true},
		emitter:  &fakeEmitter{},
		tasks:    &fakeTasks{},
	}
	ts.handler = NewRouter(RouterDeps{
		Matching: ts.matching,
		Forecast: ts.forecast,
		Emitter:  ts.emitter,
		Tasks:    ts.tasks,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	return ts
}

func (ts *testServer) do(method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

// decodeEnvelope decodes a response body, leaving Data as raw JSON.
func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) matching.Response[json.RawMessage] {
	t.Helper()
	var resp matching.Response[json.RawMessage]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp
}
