package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/okian/workmap/internal/domain/model"
	"github.com/okian/workmap/internal/domain/types"
)

const (
	maxSnapshotBytes     = 8 << 20
	idempotencyKeyHeader = "Idempotency-Key"
)

// SnapshotDependencies defines the interface for snapshot ingestion.
type SnapshotDependencies interface {
	Submit(ctx context.Context, b model.Batch) (bool, error)
}

// SnapshotsHandler handles snapshot submissions.
type SnapshotsHandler struct {
	deps SnapshotDependencies
}

// NewSnapshotsHandler creates a new snapshots handler.
func NewSnapshotsHandler(deps SnapshotDependencies) *SnapshotsHandler {
	return &SnapshotsHandler{deps: deps}
}

// snapshotRequest mirrors the OpenAPI schema for POST /snapshots.
type snapshotRequest struct {
	SubmissionID string               `json:"submission_id"`
	Week         string               `json:"week"`
	Source       string               `json:"source"`
	Items        []model.SnapshotItem `json:"items"`
}

// HandlePostSnapshot handles POST /snapshots requests. The submission id is
// taken from the body, then the Idempotency-Key header, and generated last.
func (h *SnapshotsHandler) HandlePostSnapshot(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_snapshot"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req snapshotRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSnapshotBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, WrapKind(op, ErrBadRequest, err))
		return
	}

	b := model.Batch{
		SubmissionID: strings.TrimSpace(req.SubmissionID),
		Week:         strings.TrimSpace(req.Week),
		Items:        req.Items,
		Source:       req.Source,
		ReceivedAt:   time.Now().UTC(),
	}
	if b.SubmissionID == "" {
		b.SubmissionID = strings.TrimSpace(r.Header.Get(idempotencyKeyHeader))
	}
	if b.SubmissionID == "" {
		b.SubmissionID = uuid.NewString()
	}
	if b.Source == "" {
		b.Source = "api"
	}
	if b.Items == nil {
		b.Items = []model.SnapshotItem{}
	}

	dup, err := h.deps.Submit(r.Context(), b)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	if dup {
		writeJSON(w, http.StatusOK, types.Ack{Status: "duplicate", SubmissionID: b.SubmissionID, Week: b.Week, Duplicate: true})
		return
	}
	writeJSON(w, http.StatusAccepted, types.Ack{Status: "accepted", SubmissionID: b.SubmissionID, Week: b.Week})
}
