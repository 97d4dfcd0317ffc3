package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	ChiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/lksmaxx/enroll-api/internal/api/middleware"
)

func NewRouter(h *Handlers, auth *middleware.BasicAuth, redisClient *redis.Client) http.Handler {
	r := chi.NewRouter()

	r.Use(ChiMiddleware.Logger)
	r.Use(ChiMiddleware.Recoverer)
	r.Use(ChiMiddleware.RequestID)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/enrollments", func(r chi.Router) {
		r.Use(auth.RequireUser)
		r.With(middleware.Idempotency(redisClient)).Post("/", h.CreateEnrollment)
		r.Get("/{id}", h.GetEnrollment)
	})

	r.Route("/age-groups", func(r chi.Router) {
		r.Use(auth.RequireAdmin)
		r.Post("/", h.CreateAgeGroup)
		r.Get("/", h.ListAgeGroups)
		r.Get("/{id}", h.GetAgeGroup)
		r.Put("/{id}", h.UpdateAgeGroup)
		r.Delete("/{id}", h.DeleteAgeGroup)
	})

	return r
}
