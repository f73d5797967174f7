package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"switchplane/internal/cnam"
	"switchplane/internal/config"
	"switchplane/internal/configuration"
	"switchplane/internal/dialplan"
	"switchplane/internal/directory"
)

// NewRouter wires the switch-facing lookup endpoint and the health/version
// probes into one handler.
func NewRouter(cfg *config.Config, pool *pgxpool.Pool, dp *dialplan.Resolver, dir *directory.Resolver, cr *configuration.Resolver) http.Handler {
	r := chi.NewRouter()

	r.Use(TimeoutMiddleware)
	r.Use(LoggingMiddleware)
	r.Use(RecoverMiddleware)

	cnamEnabled := cnam.Config{
		ProjectID: cfg.CNAMProjectID,
		APIToken:  cfg.CNAMAPIToken,
		SpaceHost: cfg.CNAMSpaceHost,
	}.Enabled()
	r.Get("/health", HealthHandler(pool, cnamEnabled))
	r.Get("/version", VersionHandler())

	// The single mod_xml_curl-style lookup endpoint the switch calls for
	// directory, dialplan and configuration sections alike.
	r.With(XMLCurlBasicAuth(cfg)).Post("/fs/xml", FSXMLHandler(dp, dir, cr))

	return r
}
