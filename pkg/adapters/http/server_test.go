package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aretw0/arbor/internal/runtime"
	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/observability"
	"github.com/aretw0/arbor/pkg/runner"
	"github.com/aretw0/arbor/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTree() *domain.ContentTree {
	return domain.NewContentTree("level1", map[string]domain.Level{
		"level1": {
			Answer:   "Welcome!",
			Question: "Pick a topic.",
			Options: []domain.Option{
				{Text: "Courses", Next: "courses"},
				{Text: "Fees", Next: "fees"},
			},
		},
		"courses": {Answer: "We offer aviation courses."},
		"fees":    {Answer: "Fees vary by program."},
	})
}

type testServer struct {
	*httptest.Server
	srv *Server
	reg *prometheus.Registry
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)
	engine := runtime.NewEngine(newTestTree(), runtime.WithLifecycleHooks(metrics.Hooks()))
	manager := session.NewManager(memory.NewStore())

	srv := NewServer(engine, manager, WithMetrics(reg))
	handler, err := srv.Handler()
	require.NoError(t, err)

	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return &testServer{Server: ts, srv: srv, reg: reg}
}

func (ts *testServer) do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, ts.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeResponse(t *testing.T, resp *http.Response) runner.Response {
	t.Helper()
	var out runner.Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func lastBotText(t *testing.T, actions []domain.ActionRequest) string {
	t.Helper()
	text := ""
	for _, a := range actions {
		payload, ok := a.Payload.(map[string]any)
		if ok && payload["actor"] == "bot" {
			text = payload["text"].(string)
		}
	}
	return text
}

func TestServer_ConversationFlow(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, http.MethodPost, "/sessions", map[string]string{"session_id": "abc"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeResponse(t, resp)
	assert.Equal(t, "abc", created.State.SessionID)
	assert.Contains(t, lastBotText(t, created.Actions), "The chat is ready")

	var last runner.Response
	for _, text := range []string{"hello", "Ana", "0501234567"} {
		resp = ts.do(t, http.MethodPost, "/sessions/abc/messages", map[string]string{"text": text})
		require.Equal(t, http.StatusOK, resp.StatusCode, text)
		last = decodeResponse(t, resp)
	}
	assert.True(t, last.State.IntroCompleted)
	assert.Equal(t, "level1", last.State.CurrentLevel)

	resp = ts.do(t, http.MethodPost, "/sessions/abc/select", map[string]int{"index": 1})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	selected := decodeResponse(t, resp)
	assert.Equal(t, "fees", selected.State.CurrentLevel)
	assert.Equal(t, []string{"level1"}, selected.State.NavigationStack)

	resp = ts.do(t, http.MethodPost, "/sessions/abc/menu", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "level1", decodeResponse(t, resp).State.CurrentLevel)

	resp = ts.do(t, http.MethodPost, "/sessions/abc/back", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "level1", decodeResponse(t, resp).State.CurrentLevel)

	resp = ts.do(t, http.MethodGet, "/sessions/abc", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resumed := decodeResponse(t, resp)
	assert.Equal(t, "Pick a topic.", lastBotText(t, resumed.Actions))

	resp = ts.do(t, http.MethodGet, "/sessions", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list map[string][]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	assert.Equal(t, []string{"abc"}, list["sessions"])

	resp = ts.do(t, http.MethodDelete, "/sessions/abc", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = ts.do(t, http.MethodGet, "/sessions/abc", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_CreateWithoutBodyGeneratesID(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, http.MethodPost, "/sessions", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Len(t, decodeResponse(t, resp).State.SessionID, 36)
}

func TestServer_Errors(t *testing.T) {
	ts := newTestServer(t)
	require.Equal(t, http.StatusCreated, ts.do(t, http.MethodPost, "/sessions", map[string]string{"session_id": "s1"}).StatusCode)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
	}{
		{"Duplicate Session", http.MethodPost, "/sessions", map[string]string{"session_id": "s1"}, http.StatusConflict},
		{"Unknown Session", http.MethodPost, "/sessions/nope/messages", map[string]string{"text": "hi"}, http.StatusNotFound},
		{"Select Before Intake", http.MethodPost, "/sessions/s1/select", map[string]int{"index": 0}, http.StatusConflict},
		{"Back Before Intake", http.MethodPost, "/sessions/s1/back", nil, http.StatusConflict},
		{"Missing Text", http.MethodPost, "/sessions/s1/messages", map[string]string{}, http.StatusBadRequest},
		{"Negative Index", http.MethodPost, "/sessions/s1/select", map[string]int{"index": -1}, http.StatusBadRequest},
		{"Oversized Message", http.MethodPost, "/sessions/s1/messages", map[string]string{"text": strings.Repeat("a", 5000)}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)

			var body errorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestServer_RejectsWrongContentType(t *testing.T) {
	ts := newTestServer(t)
	require.Equal(t, http.StatusCreated, ts.do(t, http.MethodPost, "/sessions", map[string]string{"session_id": "s1"}).StatusCode)

	resp, err := ts.Client().Post(ts.URL+"/sessions/s1/messages", "text/plain", strings.NewReader("hi"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServer_Meta(t *testing.T) {
	ts := newTestServer(t)
	require.Equal(t, http.StatusCreated, ts.do(t, http.MethodPost, "/sessions", nil).StatusCode)

	resp := ts.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = ts.do(t, http.MethodGet, "/info", nil)
	var info map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&info))
	assert.Equal(t, "arbor-http", info["app"])
	assert.Equal(t, "1.0.0", info["api_version"])

	resp = ts.do(t, http.MethodGet, "/tree", nil)
	var tree map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&tree))
	assert.Equal(t, "level1", tree["root"])
	assert.Len(t, tree["levels"], 3)

	resp = ts.do(t, http.MethodGet, "/openapi.yaml", nil)
	spec, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(spec), "Arbor Chat API")

	resp = ts.do(t, http.MethodGet, "/metrics", nil)
	metrics, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(metrics), "arbor_sessions_started_total 1")
}

func TestServer_CORS(t *testing.T) {
	ts := newTestServer(t)

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/sessions", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://widget.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{domain.ErrSessionNotFound, http.StatusNotFound},
		{session.ErrSessionExists, http.StatusConflict},
		{domain.ErrIntakeIncomplete, http.StatusConflict},
		{runner.ErrOptionNotFound, http.StatusUnprocessableEntity},
		{runner.ErrInputTooLarge, http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFor(tt.err))
		})
	}
}

func TestServer_ApplyBroadcasts(t *testing.T) {
	ts := newTestServer(t)
	require.Equal(t, http.StatusCreated, ts.do(t, http.MethodPost, "/sessions", map[string]string{"session_id": "s1"}).StatusCode)

	updates, cancel := ts.srv.Streams.Subscribe("s1")
	defer cancel()

	_, err := ts.srv.Apply(context.Background(), "s1", runner.Command{Type: runner.CommandMessage, Text: "hi"})
	require.NoError(t, err)

	var pushed runner.Response
	require.NoError(t, json.Unmarshal(<-updates, &pushed))
	assert.Equal(t, domain.StageAwaitingName, pushed.State.Stage)
}

func TestServer_OptionControlsCarryIndex(t *testing.T) {
	ts := newTestServer(t)
	require.Equal(t, http.StatusCreated, ts.do(t, http.MethodPost, "/sessions", map[string]string{"session_id": "idx"}).StatusCode)
	for _, text := range []string{"hi", "Ana", "0501234567"} {
		require.Equal(t, http.StatusOK, ts.do(t, http.MethodPost, "/sessions/idx/messages", map[string]string{"text": text}).StatusCode)
	}

	resp := ts.do(t, http.MethodGet, "/sessions/idx", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		Actions []struct {
			Type    string `json:"type"`
			Payload struct {
				Kind     string                       `json:"kind"`
				Controls []map[string]json.RawMessage `json:"controls"`
			} `json:"payload"`
		} `json:"actions"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

	var options, navigation []map[string]json.RawMessage
	for _, a := range body.Actions {
		switch a.Payload.Kind {
		case string(domain.ControlsOptions):
			options = a.Payload.Controls
		case string(domain.ControlsNavigation):
			navigation = a.Payload.Controls
		}
	}
	require.Len(t, options, 2)
	assert.JSONEq(t, "0", string(options[0]["index"]))
	assert.JSONEq(t, "1", string(options[1]["index"]))
	require.NotEmpty(t, navigation)
	assert.NotContains(t, navigation[0], "index")
}

func TestServer_SelectRejectsOptionNotOffered(t *testing.T) {
	ts := newTestServer(t)
	require.Equal(t, http.StatusCreated, ts.do(t, http.MethodPost, "/sessions", map[string]string{"session_id": "jump"}).StatusCode)
	for _, text := range []string{"hi", "Ana", "0501234567"} {
		require.Equal(t, http.StatusOK, ts.do(t, http.MethodPost, "/sessions/jump/messages", map[string]string{"text": text}).StatusCode)
	}

	resp := ts.do(t, http.MethodPost, "/sessions/jump/select",
		map[string]any{"option": map[string]string{"text": "Anywhere", "next": "fees"}})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp = ts.do(t, http.MethodPost, "/sessions/jump/select",
		map[string]any{"option": map[string]string{"text": "Fees", "next": "fees"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "fees", decodeResponse(t, resp).State.CurrentLevel)
}
