package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MatchwellLabs/Faceoff/internal/events"
	"github.com/MatchwellLabs/Faceoff/internal/ranking"
	"github.com/MatchwellLabs/Faceoff/internal/store"
)

func NewRouter(reg *Registry, s store.Store, ev events.Client, defaults ranking.Config, defaultBatch int, adminToken string, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(RequestLogger(logger))
	r.Use(RateLimitMiddleware(120))

	sessions := NewSessionsHandler(reg, ev, defaults, defaultBatch)
	admin := NewAdminHandler(reg, s, ev)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(JudgeIdentity)

		r.Post("/sessions", sessions.Create)
		r.Get("/sessions", sessions.List)
		r.Get("/sessions/{id}", sessions.Get)
		r.Post("/sessions/{id}/comparisons", sessions.Submit)
		r.Get("/sessions/{id}/rankings", sessions.Rankings)
		r.Get("/sessions/{id}/next", sessions.Next)
		r.Post("/sessions/{id}/reset", sessions.Reset)
		r.Get("/sessions/{id}/status", sessions.Status)

		r.Group(func(r chi.Router) {
			r.Use(AdminAuthMiddleware(adminToken))
			r.Get("/stats", admin.Stats)
			r.Delete("/sessions/{id}", admin.DeleteSession)
		})
	})

	return r
}

func NewMetricsRouter() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())
	return r
}
