package api

import (
	"context"
	"net/http"
)

// WeeksDependencies lists stored weeks.
type WeeksDependencies interface {
	Weeks(ctx context.Context) ([]string, error)
}

// WeeksHandler handles week listing requests.
type WeeksHandler struct {
	deps WeeksDependencies
}

// NewWeeksHandler creates a new weeks handler.
func NewWeeksHandler(deps WeeksDependencies) *WeeksHandler {
	return &WeeksHandler{deps: deps}
}

type weeksResponse struct {
	Weeks []string `json:"weeks"`
}

// HandleGetWeeks handles GET /weeks requests.
func (h *WeeksHandler) HandleGetWeeks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	weeks, err := h.deps.Weeks(r.Context())
	if err != nil {
		writeServiceError(w, "api.get_weeks", err)
		return
	}
	if weeks == nil {
		weeks = []string{}
	}
	writeJSON(w, http.StatusOK, weeksResponse{Weeks: weeks})
}
