// Stridefit - Review-Driven Running Shoe Recommendations
// Copyright 2026 Stridefit Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stridefit/stridefit

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/stridefit/stridefit/internal/config"
)

// NewRouter assembles the full route tree.
func NewRouter(cfg *config.ServerConfig, handler *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(requestIDMiddleware())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(corsMiddleware(cfg.CORSOrigins))

	r.Get("/health", handler.Health)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(rateLimitMiddleware(cfg.RateLimitReqs, cfg.RateLimitWindow))
		r.Use(metricsMiddleware)

		r.Post("/recommendations", handler.Recommendations)
		r.Post("/feedback/{matchResultID}", handler.Signal)

		r.Route("/admin", func(r chi.Router) {
			r.Get("/match-results", handler.AdminMatchResults)
			r.Post("/match-results/{id}/review", handler.AdminReview)
			r.Post("/ingest", handler.AdminIngest)
			r.Get("/jobs/{id}", handler.AdminJobStatus)
			r.Put("/fit-profiles/{productID}", handler.AdminFitProfileOverride)
			r.Get("/weights", handler.AdminWeights)
			r.Post("/weights/rollback", handler.AdminWeightsRollback)
		})
	})

	return r
}
