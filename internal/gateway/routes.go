package gateway

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"markbook/internal/calcclient"
	"markbook/internal/gateway/handlers"
	"markbook/internal/markset"
	"markbook/internal/shared"
)

// SetupRoutes configures the Chi router, middleware, and route handlers for
// the mark-set service.
func SetupRoutes(service *markset.Service, calc *calcclient.Client, corsCfg shared.CORSConfig) *chi.Mux {
	r := chi.NewRouter()

	// 1. Global Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS Configuration (for browser-hosted grid clients)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsCfg.AllowedOrigins,
		AllowedMethods:   corsCfg.AllowedMethods,
		AllowedHeaders:   corsCfg.AllowedHeaders,
		AllowCredentials: corsCfg.AllowCredentials,
		MaxAge:           corsCfg.MaxAge,
	}))

	// 2. Initialize Handlers
	marksetHandler := &handlers.MarksetHandler{Service: service}
	adminHandler := &handlers.AdminHandler{Service: service}
	statsHandler := &handlers.StatsHandler{Calc: calc}

	// 3. Define Routes (grouped by prefix)
	r.Route("/api", func(r chi.Router) {

		// Class / roster administration (seeder + tooling)
		r.Post("/classes", adminHandler.CreateClass)
		r.Route("/classes/{classID}", func(r chi.Router) {
			r.Post("/students", adminHandler.AddStudent)
			r.Post("/marksets", adminHandler.CreateMarkSet)

			// The grid channel
			r.Route("/marksets/{markSetID}", func(r chi.Router) {
				r.Post("/assessments", adminHandler.AddAssessment)

				r.Post("/open", marksetHandler.Open)
				r.Get("/cells", marksetHandler.GetCells)
				r.Put("/cells/{row}/{col}", marksetHandler.UpdateCell)
				r.Post("/cells/bulk", marksetHandler.BulkUpdate)

				// Derived views, proxied to the calc collaborator
				r.Get("/stats/assessments", statsHandler.AssessmentStats)
				r.Get("/stats/summary", statsHandler.MarkSetSummary)
			})
		})
	})

	return r
}
