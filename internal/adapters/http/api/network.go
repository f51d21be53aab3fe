package api

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/workmap/internal/domain/network"
	"github.com/okian/workmap/internal/domain/types"
)

// NetworkDependencies builds the collaboration graph of a week.
type NetworkDependencies interface {
	Network(ctx context.Context, week string, filter network.Filter, pins map[string]network.Point) (types.NetworkView, error)
}

// NetworkHandler handles network requests.
type NetworkHandler struct {
	deps NetworkDependencies
}

// NewNetworkHandler creates a new network handler.
func NewNetworkHandler(deps NetworkDependencies) *NetworkHandler {
	return &NetworkHandler{deps: deps}
}

// HandleGetNetwork handles GET /network?week=&project=&module=&feature=&pin=name@x,y
// requests. pin may repeat; the last pin of a name wins.
func (h *NetworkHandler) HandleGetNetwork(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_network"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	week, ok := weekParam(w, r, op)
	if !ok {
		return
	}

	q := r.URL.Query()
	pins, err := ParsePins(q["pin"])
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, WrapKind(op, ErrBadRequest, err))
		return
	}
	filter := network.Filter{
		Project: q.Get("project"),
		Module:  q.Get("module"),
		Feature: q.Get("feature"),
	}

	view, err := h.deps.Network(r.Context(), week, filter, pins)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// ParsePins reads pin values of the form name@x,y. Names may contain '@'; the
// last one separates the coordinates.
func ParsePins(values []string) (map[string]network.Point, error) {
	if len(values) == 0 {
		return nil, nil
	}
	pins := make(map[string]network.Point, len(values))
	for _, v := range values {
		at := strings.LastIndex(v, "@")
		if at <= 0 {
			return nil, fmt.Errorf("pin %q: want name@x,y", v)
		}
		xs, ys, ok := strings.Cut(v[at+1:], ",")
		if !ok {
			return nil, fmt.Errorf("pin %q: want name@x,y", v)
		}
		x, err := parseCoord(xs)
		if err != nil {
			return nil, fmt.Errorf("pin %q: %w", v, err)
		}
		y, err := parseCoord(ys)
		if err != nil {
			return nil, fmt.Errorf("pin %q: %w", v, err)
		}
		pins[v[:at]] = network.Point{X: x, Y: y}
	}
	return pins, nil
}

func parseCoord(s string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("coordinate %q is not finite", s)
	}
	return f, nil
}
