package web

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"github.com/quillworks/quill/internal/logger"
	"github.com/quillworks/quill/internal/orchestrator"
	"github.com/quillworks/quill/internal/tools"
)

// Server is the HTTP surface: the agent endpoint, the tool catalog, health
// and the websocket event stream.
type Server struct {
	agent    *orchestrator.Agent
	registry *tools.Registry
	hub      *Hub
	http     *http.Server
}

// NewServer builds the server and its routes.
func NewServer(addr string, agent *orchestrator.Agent, registry *tools.Registry, hub *Hub) *Server {
	s := &Server{agent: agent, registry: registry, hub: hub}

	router := httprouter.New()
	router.POST("/api/agent", s.handleAgent)
	router.GET("/api/tools", s.handleTools)
	router.GET("/health", s.handleHealth)
	router.GET("/ws", s.handleWS)

	s.http = &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// ListenAndServe blocks serving HTTP until Shutdown.
func (s *Server) ListenAndServe() error {
	logger.Info("listening on %s", s.http.Addr)
	return s.http.ListenAndServe()
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) handleAgent(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req orchestrator.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	resp, err := s.agent.Handle(r.Context(), &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

type toolInfo struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Parameters  map[string]interface{} `json:"parameters"`
}

func (s *Server) handleTools(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	list := s.registry.List()
	infos := make([]toolInfo, len(list))
	for i, t := range list {
		infos[i] = toolInfo{Name: t.Name(), Description: t.Description(), Parameters: t.Parameters()}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"tools": infos})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	s.hub.ServeWS(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("failed to write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
