package rest

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/heartmarshall/solarsite/internal/config"
	"github.com/heartmarshall/solarsite/internal/transport/middleware"
)

// RouterDeps holds everything NewRouter mounts.
type RouterDeps struct {
	Health  *HealthHandler
	Catalog *CatalogHandler
	Limiter *middleware.RateLimiter
	Logger  *slog.Logger
	Server  config.ServerConfig
	CORS    config.CORSConfig
}

// NewRouter builds the HTTP handler: probes at the root, the catalogue
// under /api. Rate limiting applies to /api only.
func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Chain(
		middleware.RequestID(),
		middleware.ClientIP(d.Server.TrustProxy),
		middleware.Logger(d.Logger),
		middleware.Recovery(d.Logger),
		middleware.CORS(d.CORS),
	))
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Get("/live", d.Health.Live)
	r.Get("/ready", d.Health.Ready)
	r.Get("/health", d.Health.Health)

	r.Route("/api", func(r chi.Router) {
		var limit middleware.Middleware
		if d.Limiter != nil {
			limit = d.Limiter.Limit(d.Server.RateLimitRPS, d.Server.RateLimitBurst)
		}
		r.Use(middleware.Chain(limit))

		r.Get("/projects", d.Catalog.ListProjects)
		r.Get("/projects/cities", d.Catalog.ListCities)
		r.Get("/projects/{id}", d.Catalog.GetProject)

		r.Get("/reviews", d.Catalog.ListReviews)
		r.Post("/reviews", d.Catalog.SubmitReview)

		r.Post("/inquiries", d.Catalog.SubmitInquiry)

		r.Get("/settings", d.Catalog.GetSettings)
		r.Post("/calculator", d.Catalog.Calculate)
	})

	return r
}
