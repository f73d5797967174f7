package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
)

type healthStatus struct {
	Status         string `json:"status"`
	Store          string `json:"store"`
	CNAMEnrichment bool   `json:"cnam_enrichment_enabled"`
}

// HealthHandler reports readiness of the tenant store this service's
// resolvers depend on, plus whether CNAM enrichment is configured, so a
// probe can tell "up but enriching disabled" apart from "up and full".
func HealthHandler(pool *pgxpool.Pool, cnamEnabled bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store := "ok"
		status := http.StatusOK
		if pool != nil {
			if err := pool.Ping(r.Context()); err != nil {
				slog.Error("health: tenant store ping failed",
					"request_id", requestIDFromContext(r.Context()), "error", err)
				store = "unreachable"
				status = http.StatusServiceUnavailable
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(healthStatus{
			Status:         map[bool]string{true: "ok", false: "degraded"}[status == http.StatusOK],
			Store:          store,
			CNAMEnrichment: cnamEnabled,
		})
	}
}
