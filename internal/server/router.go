package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/semantis/zalr-backend/internal/api"
	"github.com/semantis/zalr-backend/internal/api/handlers"
	"github.com/semantis/zalr-backend/internal/api/middleware"
)

type RouterConfig struct {
	ServiceRoleKey      string
	JudgmentHandler     *handlers.JudgmentHandler
	SearchHandler       *handlers.SearchHandler
	PracticeAreaHandler *handlers.PracticeAreaHandler
	AdminHandler        *handlers.AdminHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 1 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Public read API for the published catalogue.
	r.Route("/judgments", func(r chi.Router) {
		r.Get("/", cfg.JudgmentHandler.List)
		r.Get("/featured", cfg.JudgmentHandler.Featured)
		r.Get("/{id}", cfg.JudgmentHandler.Get)
	})

	r.Post("/search", cfg.SearchHandler.Search)
	r.Get("/practice-areas", cfg.PracticeAreaHandler.List)

	// Admin routes require the service role key.
	r.Group(func(r chi.Router) {
		r.Use(middleware.ServiceKeyAuth(cfg.ServiceRoleKey))

		r.Route("/admin", func(r chi.Router) {
			r.Put("/judgments/{id}/featured", cfg.AdminHandler.SetFeatured)
			r.Get("/pipeline/status", cfg.AdminHandler.PipelineStatus)
		})
	})

	return r
}
