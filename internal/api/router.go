package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		// No auth required
		r.Get("/health", s.handleHealth)
		r.Post("/auth/login", s.handleLogin)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Get("/auth/me", s.handleMe)
			r.Put("/auth/password", s.handleChangeOwnPassword)

			r.Route("/lights", func(r chi.Router) {
				r.Get("/", s.handleListLights)
				r.Post("/", s.handleCreateLight)
				r.Delete("/", s.handleDeleteAllLights)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", s.handleGetLight)
					r.Patch("/", s.handleUpdateLight)
					r.Delete("/", s.handleDeleteLight)
					r.Put("/power", s.handleSetLightPower)
				})
			})

			// Admin-only routes
			r.Group(func(r chi.Router) {
				r.Use(s.adminMiddleware)

				r.Route("/users", func(r chi.Router) {
					r.Get("/", s.handleListUsers)
					r.Post("/", s.handleCreateUser)

					r.Route("/{id}", func(r chi.Router) {
						r.Get("/", s.handleGetUser)
						r.Patch("/", s.handleUpdateUser)
						r.Delete("/", s.handleDeleteUser)
						r.Put("/password", s.handleSetUserPassword)
					})
				})

				r.Get("/audit", s.handleListAudit)
			})
		})
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
	})
}
