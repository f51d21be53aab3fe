package api

import (
	"context"
	"net/http"

	"github.com/okian/workmap/internal/domain/types"
)

// ContinuityDependencies compares a week with its neighbours.
type ContinuityDependencies interface {
	Continuity(ctx context.Context, week string) (types.ContinuityView, error)
}

// ContinuityHandler handles continuity requests.
type ContinuityHandler struct {
	deps ContinuityDependencies
}

// NewContinuityHandler creates a new continuity handler.
func NewContinuityHandler(deps ContinuityDependencies) *ContinuityHandler {
	return &ContinuityHandler{deps: deps}
}

// HandleGetContinuity handles GET /continuity?week= requests.
func (h *ContinuityHandler) HandleGetContinuity(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_continuity"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	week, ok := weekParam(w, r, op)
	if !ok {
		return
	}
	view, err := h.deps.Continuity(r.Context(), week)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
