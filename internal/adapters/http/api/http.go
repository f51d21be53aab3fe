// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	service "github.com/okian/workmap/internal/app"
	"github.com/okian/workmap/internal/domain/model"
	"github.com/okian/workmap/internal/domain/network"
	"github.com/okian/workmap/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Submit queues a week batch. Returns service.ErrBackpressure when full.
	Submit(ctx context.Context, b model.Batch) (duplicate bool, err error)

	Weeks(ctx context.Context) ([]string, error)
	WorkMap(ctx context.Context, week string) (types.WorkMapView, error)
	Network(ctx context.Context, week string, filter network.Filter, pins map[string]network.Point) (types.NetworkView, error)
	Continuity(ctx context.Context, week string) (types.ContinuityView, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler     *HealthHandler
	statsHandler      *StatsHandler
	snapshotsHandler  *SnapshotsHandler
	weeksHandler      *WeeksHandler
	workMapHandler    *WorkMapHandler
	networkHandler    *NetworkHandler
	continuityHandler *ContinuityHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:     NewHealthHandler(),
		statsHandler:      NewStatsHandler(statsProvider),
		snapshotsHandler:  NewSnapshotsHandler(deps),
		weeksHandler:      NewWeeksHandler(deps),
		workMapHandler:    NewWorkMapHandler(deps),
		networkHandler:    NewNetworkHandler(deps),
		continuityHandler: NewContinuityHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/snapshots", MetricsMiddleware(s.snapshotsHandler.HandlePostSnapshot, "snapshots"))
	mux.HandleFunc("/weeks", MetricsMiddleware(s.weeksHandler.HandleGetWeeks, "weeks"))
	mux.HandleFunc("/workmap", MetricsMiddleware(s.workMapHandler.HandleGetWorkMap, "workmap"))
	mux.HandleFunc("/network", MetricsMiddleware(s.networkHandler.HandleGetNetwork, "network"))
	mux.HandleFunc("/continuity", MetricsMiddleware(s.continuityHandler.HandleGetContinuity, "continuity"))
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
	if rw, ok := w.(*responseWriter); ok {
		rw.errorCode = code
	}
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError maps service sentinels to status codes.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, service.ErrWeekNotFound):
		writeError(w, http.StatusNotFound, codeNotFound, WrapKind(op, ErrNotFound, err))
	case errors.Is(err, service.ErrInvalidBatch), errors.Is(err, model.ErrInvalidWeek):
		writeError(w, http.StatusBadRequest, codeBadRequest, WrapKind(op, ErrBadRequest, err))
	case errors.Is(err, service.ErrBackpressure):
		writeError(w, http.StatusTooManyRequests, codeBackpressure, WrapKind(op, ErrBackpressure, err))
	case errors.Is(err, service.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, codeUnavailable, WrapKind(op, ErrUnavailable, err))
	default:
		writeError(w, http.StatusInternalServerError, codeInternalError, err)
	}
}

// weekParam reads the required ?week= query parameter.
func weekParam(w http.ResponseWriter, r *http.Request, op string) (string, bool) {
	week := strings.TrimSpace(r.URL.Query().Get("week"))
	if week == "" {
		writeError(w, http.StatusBadRequest, codeBadRequest, WrapKind(op, ErrBadRequest, errors.New("missing week")))
		return "", false
	}
	return week, true
}
