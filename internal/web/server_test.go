package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillworks/quill/internal/llm"
	"github.com/quillworks/quill/internal/orchestrator"
	"github.com/quillworks/quill/internal/session"
	"github.com/quillworks/quill/internal/store"
	"github.com/quillworks/quill/internal/tools"
)

type noModels struct{}

func (noModels) Client() llm.Client { return nil }

func newTestServer(t *testing.T) (*Server, *Hub) {
	t.Helper()
	st, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	registry := tools.NewRegistry()
	require.NoError(t, tools.RegisterAll(registry, tools.Deps{Store: st, Models: noModels{}}))

	sessions := session.NewManager(session.AutonomyModerate, 100, 0)
	t.Cleanup(sessions.Close)

	hub := NewHub()
	go hub.Run()
	t.Cleanup(hub.Close)

	agent := orchestrator.NewAgent(sessions, st, registry, noModels{}, orchestrator.Options{Events: hub})
	return NewServer("localhost:0", agent, registry, hub), hub
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestToolsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/tools", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Tools []struct {
			Name        string                 `json:"name"`
			Description string                 `json:"description"`
			Parameters  map[string]interface{} `json:"parameters"`
		} `json:"tools"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Tools, 29)
	assert.NotEmpty(t, body.Tools[0].Description)
	assert.NotNil(t, body.Tools[0].Parameters["properties"])
}

func TestAgentEndpointValidation(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/agent", strings.NewReader("{not json")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/agent", strings.NewReader(`{"request": "hi"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code, "missing user_id")
}

func TestAgentEndpointDegradesWithoutModel(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/agent",
		strings.NewReader(`{"user_id": "u1", "request": "help me write", "autonomy_level": "conservative"}`))
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp orchestrator.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Narrative)
	assert.Empty(t, resp.ToolsExecuted)
	require.NotNil(t, resp.ExecutionDetails)
}

func TestWebsocketUpgradeAfterHubClose(t *testing.T) {
	srv, hub := newTestServer(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	hub.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		// upgrade refused outright is an acceptable outcome
		return
	}
	defer conn.Close()

	// the server side must drop the connection instead of parking the
	// handler on the hub's register channel
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err = conn.ReadMessage()
	assert.Error(t, err, "connection should close promptly after hub shutdown")
}

func TestHubBroadcastsToWebsocketClients(t *testing.T) {
	srv, hub := newTestServer(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	// registration races the publish; retry until the event lands
	deadline := time.Now().Add(2 * time.Second)
	received := make(chan []byte, 1)
	go func() {
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			received <- msg
			return
		}
	}()

	for time.Now().Before(deadline) {
		hub.Publish(orchestrator.Event{Type: "tool_start", UserID: "u1", Timestamp: time.Now()})
		select {
		case msg := <-received:
			var event orchestrator.Event
			require.NoError(t, json.Unmarshal(msg, &event))
			assert.Equal(t, "tool_start", event.Type)
			return
		case <-time.After(50 * time.Millisecond):
		}
	}
	t.Fatal("no event received over websocket")
}
