package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/okian/workmap/internal/adapters/http/api"
	service "github.com/okian/workmap/internal/app"
	"github.com/okian/workmap/internal/domain/continuity"
	"github.com/okian/workmap/internal/domain/model"
	"github.com/okian/workmap/internal/domain/network"
	"github.com/okian/workmap/internal/domain/types"
	"github.com/okian/workmap/pkg/metrics"
	. "github.com/smartystreets/goconvey/convey"
)

// mockDeps implements api.Dependencies over a fixed set of weeks.
type mockDeps struct {
	weeks     []string
	submitted []model.Batch
	seen      map[string]bool
	submitErr error

	lastFilter network.Filter
	lastPins   map[string]network.Point
}

func newMockDeps() *mockDeps {
	return &mockDeps{weeks: []string{"2025-W14"}, seen: map[string]bool{}}
}

func (m *mockDeps) known(week string) error {
	for _, w := range m.weeks {
		if w == week {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", service.ErrWeekNotFound, week)
}

func (m *mockDeps) Submit(_ context.Context, b model.Batch) (bool, error) {
	if m.submitErr != nil {
		return false, m.submitErr
	}
	if err := b.Validate(); err != nil {
		return false, fmt.Errorf("%w: %w", service.ErrInvalidBatch, err)
	}
	if m.seen[b.SubmissionID] {
		return true, nil
	}
	m.seen[b.SubmissionID] = true
	m.submitted = append(m.submitted, b)
	return false, nil
}

func (m *mockDeps) Weeks(context.Context) ([]string, error) { return m.weeks, nil }

func (m *mockDeps) WorkMap(_ context.Context, week string) (types.WorkMapView, error) {
	if err := m.known(week); err != nil {
		return types.WorkMapView{}, err
	}
	return types.WorkMapView{Week: week, ItemCount: 2}, nil
}

func (m *mockDeps) Network(_ context.Context, week string, f network.Filter, pins map[string]network.Point) (types.NetworkView, error) {
	if err := m.known(week); err != nil {
		return types.NetworkView{}, err
	}
	m.lastFilter, m.lastPins = f, pins
	return types.NetworkView{Week: week, Project: f.Project}, nil
}

func (m *mockDeps) Continuity(_ context.Context, week string) (types.ContinuityView, error) {
	if err := m.known(week); err != nil {
		return types.ContinuityView{}, err
	}
	return types.ContinuityView{Week: week, Summary: map[continuity.Status]int{continuity.StatusConnected: 1}}, nil
}

type mockStats struct{}

func (mockStats) GetStats() map[string]any { return map[string]any{"started": true, "weeks": 1} }

func newMux(deps *mockDeps) http.Handler {
	mux := http.NewServeMux()
	api.NewServer(deps, mockStats{}).Register(context.Background(), mux)
	return api.RequestIDMiddleware(mux)
}

func do(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(rec *httptest.ResponseRecorder) map[string]any {
	var m map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &m)
	return m
}

const validSnapshot = `{"week": "2025-W15", "submission_id": "sub-1", "items": [
  {"name": "ana", "domain": "eng", "project": "X", "feature": "Login", "progress_percent": 50, "risk_level": 1}
]}`

func TestServerRoutes(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		deps := newMockDeps()
		h := newMux(deps)

		Convey("Then health serves the Prometheus exposition", func() {
			rec := do(h, http.MethodGet, "/healthz", "")
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Header().Get("Content-Type"), ShouldContainSubstring, "text/plain")
		})

		Convey("Then stats are returned as JSON", func() {
			rec := do(h, http.MethodGet, "/stats", "")
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(decode(rec)["started"], ShouldEqual, true)
		})

		Convey("Then weeks are listed", func() {
			rec := do(h, http.MethodGet, "/weeks", "")
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(decode(rec)["weeks"], ShouldResemble, []any{"2025-W14"})
		})

		Convey("Then every response carries a request id", func() {
			rec := do(h, http.MethodGet, "/weeks", "")
			So(rec.Header().Get(api.RequestIDHeader), ShouldNotBeEmpty)

			req := httptest.NewRequest(http.MethodGet, "/weeks", nil)
			req.Header.Set(api.RequestIDHeader, "req-42")
			rec = httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			So(rec.Header().Get(api.RequestIDHeader), ShouldEqual, "req-42")
		})

		Convey("Then wrong methods are not found", func() {
			So(do(h, http.MethodPost, "/weeks", "").Code, ShouldEqual, http.StatusNotFound)
			So(do(h, http.MethodGet, "/snapshots", "").Code, ShouldEqual, http.StatusNotFound)
			So(do(h, http.MethodDelete, "/workmap?week=2025-W14", "").Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestSnapshotsHandler(t *testing.T) {
	Convey("Given the snapshots endpoint", t, func() {
		deps := newMockDeps()
		h := newMux(deps)

		Convey("When a valid snapshot is posted", func() {
			rec := do(h, http.MethodPost, "/snapshots", validSnapshot)

			Convey("Then it is accepted", func() {
				So(rec.Code, ShouldEqual, http.StatusAccepted)
				body := decode(rec)
				So(body["status"], ShouldEqual, "accepted")
				So(body["submission_id"], ShouldEqual, "sub-1")
				So(deps.submitted, ShouldHaveLength, 1)
				So(deps.submitted[0].Source, ShouldEqual, "api")
				So(deps.submitted[0].ReceivedAt.IsZero(), ShouldBeFalse)
			})

			Convey("Then posting it again reports a duplicate", func() {
				rec := do(h, http.MethodPost, "/snapshots", validSnapshot)
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(decode(rec)["duplicate"], ShouldEqual, true)
			})
		})

		Convey("When the id comes from the Idempotency-Key header", func() {
			req := httptest.NewRequest(http.MethodPost, "/snapshots", strings.NewReader(`{"week": "2025-W15", "items": []}`))
			req.Header.Set("Idempotency-Key", "key-7")
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			So(rec.Code, ShouldEqual, http.StatusAccepted)
			So(decode(rec)["submission_id"], ShouldEqual, "key-7")
		})

		Convey("When no id is given", func() {
			rec := do(h, http.MethodPost, "/snapshots", `{"week": "2025-W15"}`)
			So(rec.Code, ShouldEqual, http.StatusAccepted)
			So(decode(rec)["submission_id"], ShouldNotBeEmpty)
			So(deps.submitted[0].Items, ShouldNotBeNil)
		})

		Convey("When the body is malformed", func() {
			rec := do(h, http.MethodPost, "/snapshots", `{"week":`)
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
			So(decode(rec)["code"], ShouldEqual, "bad_request")
		})

		Convey("When an item is invalid", func() {
			rec := do(h, http.MethodPost, "/snapshots", `{"week": "2025-W15", "items": [{"name": "ana"}]}`)
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the queue is full", func() {
			deps.submitErr = service.ErrBackpressure
			rec := do(h, http.MethodPost, "/snapshots", validSnapshot)
			So(rec.Code, ShouldEqual, http.StatusTooManyRequests)
			So(decode(rec)["code"], ShouldEqual, "backpressure")
		})

		Convey("When the service is not running", func() {
			deps.submitErr = service.ErrNotStarted
			rec := do(h, http.MethodPost, "/snapshots", validSnapshot)
			So(rec.Code, ShouldEqual, http.StatusServiceUnavailable)
		})
	})
}

func TestViewHandlers(t *testing.T) {
	Convey("Given the view endpoints", t, func() {
		deps := newMockDeps()
		h := newMux(deps)

		for _, path := range []string{"/workmap", "/network", "/continuity"} {
			So(do(h, http.MethodGet, path, "").Code, ShouldEqual, http.StatusBadRequest)
			So(do(h, http.MethodGet, path+"?week=1999-W01", "").Code, ShouldEqual, http.StatusNotFound)

			rec := do(h, http.MethodGet, path+"?week=2025-W14", "")
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(decode(rec)["week"], ShouldEqual, "2025-W14")
		}

		Convey("When the network is filtered and pinned", func() {
			rec := do(h, http.MethodGet, "/network?week=2025-W14&project=X&module=Core&pin=ana@10,20&pin=b%40corp@1.5,-2", "")

			Convey("Then the filter and pins reach the service", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(deps.lastFilter, ShouldResemble, network.Filter{Project: "X", Module: "Core"})
				So(deps.lastPins["ana"], ShouldResemble, network.Point{X: 10, Y: 20})
				So(deps.lastPins["b@corp"], ShouldResemble, network.Point{X: 1.5, Y: -2})
			})
		})

		Convey("When a pin is malformed", func() {
			for _, pin := range []string{"ana", "ana@10", "@1,2", "ana@x,2", "ana@1,NaN"} {
				rec := do(h, http.MethodGet, "/network?week=2025-W14&pin="+pin, "")
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
			}
		})
	})
}

func TestKindErrors(t *testing.T) {
	Convey("Given a wrapped kind error", t, func() {
		cause := fmt.Errorf("boom")
		err := api.WrapKind("api.op", api.ErrBadRequest, cause)

		So(err.Error(), ShouldEqual, "api.op: bad request: boom")
		So(fmt.Sprint(api.NewKind("api.op", api.ErrNotFound)), ShouldEqual, "api.op: not found")
		So(errors.Is(err, api.ErrBadRequest), ShouldBeTrue)
		So(errors.Is(err, cause), ShouldBeTrue)
	})
}

// errorCount sums the errors_by_type_total samples carrying the given labels.
func errorCount(errorType, severity string) float64 {
	families, err := metrics.GetRegistry().Gather()
	So(err, ShouldBeNil)
	var total float64
	for _, mf := range families {
		if !strings.HasSuffix(mf.GetName(), "errors_by_type_total") {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := map[string]string{}
			for _, l := range m.GetLabel() {
				labels[l.GetName()] = l.GetValue()
			}
			if labels["error_type"] == errorType && labels["severity"] == severity {
				total += m.GetCounter().GetValue()
			}
		}
	}
	return total
}

func TestMetricsMiddlewareErrorCodes(t *testing.T) {
	Convey("Given the metrics middleware in front of the handlers", t, func() {
		deps := newMockDeps()
		h := newMux(deps)

		Convey("When a submission is rejected by backpressure", func() {
			deps.submitErr = fmt.Errorf("%w: queue full", service.ErrBackpressure)
			before := errorCount("backpressure", "medium")
			rec := do(h, http.MethodPost, "/snapshots", validSnapshot)

			Convey("Then the error is counted under the service's own code", func() {
				So(rec.Code, ShouldEqual, http.StatusTooManyRequests)
				So(decode(rec)["code"], ShouldEqual, "backpressure")
				So(errorCount("backpressure", "medium")-before, ShouldEqual, 1.0)
			})
		})

		Convey("When a view is asked for an unknown week", func() {
			before := errorCount("not_found", "low")
			rec := do(h, http.MethodGet, "/workmap?week=2030-W01", "")

			Convey("Then it is counted as not_found", func() {
				So(rec.Code, ShouldEqual, http.StatusNotFound)
				So(errorCount("not_found", "low")-before, ShouldEqual, 1.0)
			})
		})

		Convey("When the service is not started", func() {
			deps.submitErr = service.ErrNotStarted
			before := errorCount("unavailable", "high")
			rec := do(h, http.MethodPost, "/snapshots", validSnapshot)

			Convey("Then it is counted as unavailable", func() {
				So(rec.Code, ShouldEqual, http.StatusServiceUnavailable)
				So(errorCount("unavailable", "high")-before, ShouldEqual, 1.0)
			})
		})
	})
}
