package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/okian/matchday/internal/adapters/repository"
	"github.com/okian/matchday/internal/batch"
	"github.com/okian/matchday/internal/domain/match"
	"github.com/okian/matchday/internal/domain/model"
)

// MatchDependencies exposes single fixtures.
type MatchDependencies interface {
	Fixture(ctx context.Context, id string) (model.Fixture, error)
	Events(ctx context.Context, matchID string) ([]model.EventRow, error)
	SimulateFixture(ctx context.Context, fixtureID string) (*match.Result, error)
}

// MatchHandler handles per-fixture requests.
type MatchHandler struct {
	deps MatchDependencies
}

// NewMatchHandler creates a new match handler.
func NewMatchHandler(deps MatchDependencies) *MatchHandler {
	return &MatchHandler{deps: deps}
}

type simulateResponse struct {
	FixtureID string           `json:"fixture_id"`
	Home      int              `json:"home"`
	Away      int              `json:"away"`
	Stoppage  [2]int           `json:"stoppage"`
	Events    []model.EventRow `json:"events"`
}

// HandleGetEvents handles GET /matches/{id}/events requests.
func (h *MatchHandler) HandleGetEvents(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := h.deps.Fixture(r.Context(), id); err != nil {
		writeStoreError(w, err)
		return
	}
	events, err := h.deps.Events(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(events))
}

// HandleSimulate handles POST /fixtures/{id}/simulate requests.
func (h *MatchHandler) HandleSimulate(w http.ResponseWriter, r *http.Request) {
	const op = "api.simulate"
	res, err := h.deps.SimulateFixture(r.Context(), r.PathValue("id"))
	switch {
	case errors.Is(err, batch.ErrFixturePlayed), errors.Is(err, batch.ErrFixtureBusy):
		writeError(w, http.StatusConflict, "conflict", wrapKind(op, ErrConflict, err))
		return
	case err != nil:
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, simulateResponse{
		FixtureID: res.FixtureID,
		Home:      res.Score.Home,
		Away:      res.Score.Away,
		Stoppage:  res.Stoppage,
		Events:    nonNil(res.Payload.Events),
	})
}

func writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found", err)
		return
	}
	writeError(w, http.StatusInternalServerError, "internal_error", err)
}
