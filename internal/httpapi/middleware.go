package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"switchplane/internal/fsxml"
)

// requestBudget bounds every request end to end, per the documented
// invariant that a hung Store query or CNAM call must degrade instead of
// blocking indefinitely.
const requestBudget = 3 * time.Second

type requestIDKey struct{}

// requestIDFromContext returns the request id LoggingMiddleware stashed,
// or "" if called outside a request handled by it.
func requestIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey{}).(string); ok {
		return v
	}
	return ""
}

// TimeoutMiddleware enforces the per-request budget at the edge: the
// context handed to every downstream handler is canceled after
// requestBudget elapses, so a Store query or CNAM lookup that hasn't
// returned by then fails with a context error the resolvers already
// treat as their generic failure path (a standard error program for
// dialplan, an empty document for directory, an external profile with no
// gateways for configuration) rather than hanging the connection open.
func TimeoutMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), requestBudget)
		defer cancel()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// LoggingMiddleware assigns each request a unique id, logs its outcome,
// and makes the id available on the request's context for handlers to
// echo back or log alongside.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		reqID := uuid.NewString()

		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r.WithContext(ctx))

		slog.Info("http request",
			"request_id", reqID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// RecoverMiddleware converts a panicking handler into a 500 response
// whose body is the standard error XML program, instead of tearing down
// the whole listener, and logs the offending request id so it's
// traceable in the same log stream LoggingMiddleware writes to.
func RecoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				slog.Error("http handler panic",
					"request_id", requestIDFromContext(r.Context()),
					"path", r.URL.Path,
					"panic", rec,
				)
				body, err := fsxml.Render(fsxml.ErrorDocument())
				if err != nil {
					http.Error(w, "internal error", http.StatusInternalServerError)
					return
				}
				w.Header().Set("Content-Type", "application/xml")
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write(body)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
