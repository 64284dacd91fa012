// Package api serves the world state over HTTP. All endpoints are GET and
// read-only; snapshots come from the engine's reader lock, so a request
// never observes a half-finished tick.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"thalren.vale/internal/engine"
)

const defaultEventCount = 50

// Server serves the simulation state over HTTP.
type Server struct {
	Sim  *engine.Simulation
	Addr string
}

// Start begins serving in a goroutine.
func (s *Server) Start() {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/agents", s.handleAgents)
	mux.HandleFunc("/api/v1/wars", s.handleWars)
	mux.HandleFunc("/api/v1/events", s.handleEvents)

	slog.Info("HTTP API starting", "addr", s.Addr)
	go func() {
		if err := http.ListenAndServe(s.Addr, mux); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Sim.StatusSnapshot())
}

func (s *Server) handleAgents(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Sim.AgentSnapshots())
}

func (s *Server) handleWars(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Sim.WarSnapshots())
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	n := defaultEventCount
	if raw := r.URL.Query().Get("count"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			http.Error(w, "count must be a positive integer", http.StatusBadRequest)
			return
		}
		n = parsed
	}
	writeJSON(w, s.Sim.RecentEvents(n))
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}
