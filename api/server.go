/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the chi router and middleware stack and wires URLs to
  handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for internal dashboards

ROUTES:
  GET  /api/health              Liveness
  GET  /api/treaties            Static attributes of the loaded book
  POST /api/projections         Run the pipeline, return summary + checks
  GET  /api/projections/cells   Result cells of the last run
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)
		r.Get("/treaties", h.ListTreaties)

		r.Route("/projections", func(r chi.Router) {
			r.Post("/", h.RunProjection)
			r.Get("/cells", h.GetCells)
		})
	})

	return r
}
