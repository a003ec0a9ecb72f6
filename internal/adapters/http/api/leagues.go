package api

import (
	"context"
	"net/http"

	"github.com/okian/matchday/internal/domain/model"
)

// LeagueDependencies exposes league tables.
type LeagueDependencies interface {
	Standings(ctx context.Context, leagueID string) ([]model.TableRow, error)
	History(ctx context.Context, leagueID string) ([]model.Snapshot, error)
}

// LeagueHandler handles league table requests.
type LeagueHandler struct {
	deps LeagueDependencies
}

// NewLeagueHandler creates a new league handler.
func NewLeagueHandler(deps LeagueDependencies) *LeagueHandler {
	return &LeagueHandler{deps: deps}
}

type standingRow struct {
	Position int `json:"position"`
	model.TableRow
	GoalDifference int `json:"goal_difference"`
}

// HandleGetStandings handles GET /leagues/{id}/standings requests.
func (h *LeagueHandler) HandleGetStandings(w http.ResponseWriter, r *http.Request) {
	rows, err := h.deps.Standings(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	out := make([]standingRow, len(rows))
	for i, row := range rows {
		out[i] = standingRow{Position: i + 1, TableRow: row, GoalDifference: row.GoalDifference()}
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleGetHistory handles GET /leagues/{id}/history requests.
func (h *LeagueHandler) HandleGetHistory(w http.ResponseWriter, r *http.Request) {
	snaps, err := h.deps.History(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(snaps))
}
