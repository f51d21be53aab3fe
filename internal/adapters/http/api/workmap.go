package api

import (
	"context"
	"net/http"

	"github.com/okian/workmap/internal/domain/types"
)

// WorkMapDependencies builds the work map of a week.
type WorkMapDependencies interface {
	WorkMap(ctx context.Context, week string) (types.WorkMapView, error)
}

// WorkMapHandler handles work map requests.
type WorkMapHandler struct {
	deps WorkMapDependencies
}

// NewWorkMapHandler creates a new work map handler.
func NewWorkMapHandler(deps WorkMapDependencies) *WorkMapHandler {
	return &WorkMapHandler{deps: deps}
}

// HandleGetWorkMap handles GET /workmap?week= requests.
func (h *WorkMapHandler) HandleGetWorkMap(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_workmap"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	week, ok := weekParam(w, r, op)
	if !ok {
		return
	}
	view, err := h.deps.WorkMap(r.Context(), week)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
