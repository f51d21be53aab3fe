package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/okian/workmap/pkg/metrics"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

const maxRequestIDLength = 128

type requestIDKey struct{}

// Error codes written in error bodies and used as metrics labels.
const (
	codeBadRequest    = "bad_request"
	codeNotFound      = "not_found"
	codeBackpressure  = "backpressure"
	codeUnavailable   = "unavailable"
	codeInternalError = "internal_error"
)

// codeSeverity ranks error codes for the error-by-type metric. Codes the
// server is responsible for are high; load shedding is medium.
var codeSeverity = map[string]string{
	codeBadRequest:    "low",
	codeNotFound:      "low",
	codeBackpressure:  "medium",
	codeUnavailable:   "high",
	codeInternalError: "high",
}

// MetricsMiddleware wraps HTTP handlers to record Prometheus metrics. Error
// responses are labelled with the code the handler wrote, or one derived from
// the status when the handler wrote none (e.g. http.NotFound).
func MetricsMiddleware(next http.HandlerFunc, endpoint string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		durationMs := float64(time.Since(start).Microseconds()) / 1000
		statusCodeStr := strconv.Itoa(wrapped.statusCode)
		metrics.RecordHTTPRequest(endpoint, r.Method, statusCodeStr)
		metrics.RecordHTTPRequestDuration(endpoint, r.Method, statusCodeStr, durationMs)

		if wrapped.statusCode >= http.StatusBadRequest {
			code := wrapped.errorCode
			if code == "" {
				code = codeForStatus(wrapped.statusCode)
			}
			metrics.RecordErrorByEndpoint(endpoint, r.Method, code)
			metrics.RecordErrorByType(code, severityOf(code))
			metrics.RecordErrorLatency("http", code, durationMs)
		}
	}
}

func codeForStatus(status int) string {
	switch {
	case status == http.StatusNotFound:
		return codeNotFound
	case status == http.StatusTooManyRequests:
		return codeBackpressure
	case status == http.StatusServiceUnavailable:
		return codeUnavailable
	case status >= http.StatusInternalServerError:
		return codeInternalError
	default:
		return codeBadRequest
	}
}

func severityOf(code string) string {
	if s, ok := codeSeverity[code]; ok {
		return s
	}
	return "medium"
}

// responseWriter captures the status and the error code of a response.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	errorCode  string
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	if err != nil {
		return n, fmt.Errorf("failed to write response: %w", err)
	}
	return n, nil
}

// RequestIDMiddleware propagates the caller's X-Request-ID or assigns a new
// one, echoes it on the response and stores it in the request context.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" || len(id) > maxRequestIDLength {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

// RequestIDFromContext returns the id set by RequestIDMiddleware, or "".
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
