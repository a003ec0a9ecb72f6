// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	BatchDependencies
	LeagueDependencies
	MatchDependencies
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler *HealthHandler
	statsHandler  *StatsHandler
	batchHandler  *BatchHandler
	leagueHandler *LeagueHandler
	matchHandler  *MatchHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler: NewHealthHandler(),
		statsHandler:  NewStatsHandler(statsProvider),
		batchHandler:  NewBatchHandler(deps),
		leagueHandler: NewLeagueHandler(deps),
		matchHandler:  NewMatchHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.Handle("GET /metrics", s.healthHandler.Metrics())
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("POST /batches", MetricsMiddleware(s.batchHandler.HandlePostBatch, "batches"))
	mux.HandleFunc("GET /leagues/{id}/standings", MetricsMiddleware(s.leagueHandler.HandleGetStandings, "standings"))
	mux.HandleFunc("GET /leagues/{id}/history", MetricsMiddleware(s.leagueHandler.HandleGetHistory, "history"))
	mux.HandleFunc("GET /matches/{id}/events", MetricsMiddleware(s.matchHandler.HandleGetEvents, "match_events"))
	mux.HandleFunc("POST /fixtures/{id}/simulate", MetricsMiddleware(s.matchHandler.HandleSimulate, "simulate"))
}

// batchRequest is the body of POST /batches.
type batchRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func (b batchRequest) window() (time.Time, time.Time, error) {
	if strings.TrimSpace(b.From) == "" {
		return time.Time{}, time.Time{}, errors.New("missing from")
	}
	if strings.TrimSpace(b.To) == "" {
		return time.Time{}, time.Time{}, errors.New("missing to")
	}
	from, err := time.Parse(time.RFC3339, b.From)
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("invalid from; must be RFC3339")
	}
	to, err := time.Parse(time.RFC3339, b.To)
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("invalid to; must be RFC3339")
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, errors.New("to must not be before from")
	}
	return from, to, nil
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
