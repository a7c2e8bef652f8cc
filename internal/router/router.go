package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/parisxmas/OxiDB/OxiResearch/internal/auth"
	"github.com/parisxmas/OxiDB/OxiResearch/internal/handler"
	"github.com/parisxmas/OxiDB/OxiResearch/internal/metrics"
	mw "github.com/parisxmas/OxiDB/OxiResearch/internal/middleware"
)

type Handlers struct {
	Auth      *handler.AuthHandler
	Research  *handler.ResearchHandler
	Data      *handler.DataHandler
	Export    *handler.ExportHandler
	Dashboard *handler.DashboardHandler
	Health    *handler.HealthHandler
}

func New(jwtSecret string, h Handlers, m *metrics.Collector) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware. Recovery sits inside Logger and Metrics so a
	// recovered panic is still logged and counted as a 500.
	r.Use(mw.Logger)
	r.Use(mw.Metrics(m))
	r.Use(mw.Recovery)
	r.Use(mw.CORS)

	r.Get("/healthz", h.Health.Healthz)
	r.Method(http.MethodGet, "/metrics", m.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// Public routes
		r.Post("/auth/login", h.Auth.Login)
		r.Post("/auth/register", h.Auth.Register)
		r.Get("/research/{researchId}", h.Research.Get)
		r.Get("/research-data", h.Data.List)
		r.Get("/research-export", h.Export.Export)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(jwtSecret))

			r.Get("/auth/me", h.Auth.Me)
			r.Get("/dashboard", h.Dashboard.Dashboard)

			r.Get("/research", h.Research.List)
			r.Post("/research", h.Research.Create)
			r.Put("/research/{researchId}", h.Research.Update)
			r.Delete("/research/{researchId}", h.Research.Delete)

			r.Post("/research-data", h.Data.Create)
		})
	})

	return r
}
