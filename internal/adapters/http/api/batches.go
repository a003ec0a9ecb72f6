package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/okian/matchday/internal/batch"
	"github.com/okian/matchday/internal/domain/model"
	"github.com/okian/matchday/internal/domain/standings"
)

// BatchDependencies runs simulation batches.
type BatchDependencies interface {
	RunBatch(ctx context.Context, from, to time.Time) (*batch.Result, error)
}

// BatchHandler handles batch requests.
type BatchHandler struct {
	deps BatchDependencies
}

// NewBatchHandler creates a new batch handler.
func NewBatchHandler(deps BatchDependencies) *BatchHandler {
	return &BatchHandler{deps: deps}
}

type failureResponse struct {
	FixtureID string `json:"fixture_id"`
	Error     string `json:"error"`
}

type batchResponse struct {
	BatchID    string                `json:"batch_id"`
	Simulated  []string              `json:"simulated"`
	Failed     []failureResponse     `json:"failed"`
	Busy       []string              `json:"busy"`
	Snapshots  int                   `json:"snapshots"`
	Narratives []standings.Narrative `json:"narratives"`
	Bans       []model.Ban           `json:"bans"`
	Rows       int                   `json:"rows"`
	DurationMS int64                 `json:"duration_ms"`
}

func newBatchResponse(res *batch.Result) batchResponse {
	out := batchResponse{
		BatchID:    res.BatchID,
		Simulated:  nonNil(res.Simulated),
		Failed:     make([]failureResponse, 0, len(res.Failed)),
		Busy:       nonNil(res.Busy),
		Snapshots:  len(res.Snapshots),
		Narratives: nonNil(res.Narratives),
		Bans:       nonNil(append(append([]model.Ban(nil), res.Payload.Bans...), res.Bans...)),
		Rows:       res.Payload.Rows(),
		DurationMS: res.Duration.Milliseconds(),
	}
	for _, f := range res.Failed {
		out.Failed = append(out.Failed, failureResponse{FixtureID: f.FixtureID, Error: f.Err.Error()})
	}
	return out
}

// HandlePostBatch handles POST /batches requests. The batch runs within the
// request; a cancelled request keeps only the matchdays already written.
func (h *BatchHandler) HandlePostBatch(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_batch"
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, err))
		return
	}
	from, to, err := req.window()
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, err))
		return
	}
	res, err := h.deps.RunBatch(r.Context(), from, to)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, newBatchResponse(res))
}

// nonNil keeps empty lists as [] in JSON.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
