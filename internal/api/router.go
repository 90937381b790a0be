// Platepick - Restaurant Discovery and Recommendation Service
// Copyright 2026 Platepick Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/platepick/platepick

// Package api provides the HTTP surface: chi routing, the standard
// response envelope and the error-code mapping of domain failures.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/platepick/platepick/internal/config"
)

// Router assembles the HTTP handler tree.
type Router struct {
	cfg     *config.Config
	handler *Handler
}

// NewRouter creates a router over the given handler set.
func NewRouter(cfg *config.Config, handler *Handler) *Router {
	return &Router{cfg: cfg, handler: handler}
}

// Setup builds the chi handler with the full middleware stack.
func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(AccessLog)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: rt.cfg.Security.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", requestIDHeader},
		MaxAge:         300,
	}))
	if !rt.cfg.Security.RateLimitDisabled {
		r.Use(httprate.LimitByIP(rt.cfg.Security.RateLimitReqs, rt.cfg.Security.RateLimitWindow))
	}

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.With(PrometheusMetrics("/api/v1/health")).
			Get("/health", rt.handler.Health)

		r.Route("/corpus", func(r chi.Router) {
			r.With(PrometheusMetrics("/api/v1/corpus/states")).
				Get("/states", rt.handler.States)
			r.With(PrometheusMetrics("/api/v1/corpus/states/{state}/cities")).
				Get("/states/{state}/cities", rt.handler.Cities)
		})

		r.Route("/sessions", func(r chi.Router) {
			r.With(PrometheusMetrics("/api/v1/sessions")).
				Post("/", rt.handler.CreateSession)
			r.With(PrometheusMetrics("/api/v1/sessions/{sessionID}")).
				Get("/{sessionID}", rt.handler.GetSession)
			r.With(PrometheusMetrics("/api/v1/sessions/{sessionID}/ratings")).
				Put("/{sessionID}/ratings", rt.handler.PutRatings)
			r.With(PrometheusMetrics("/api/v1/sessions/{sessionID}/recommendations")).
				Post("/{sessionID}/recommendations", rt.handler.Recommendations)
		})

		r.Route("/businesses", func(r chi.Router) {
			r.With(PrometheusMetrics("/api/v1/businesses/{businessID}")).
				Get("/{businessID}", rt.handler.BusinessInfo)
			r.With(PrometheusMetrics("/api/v1/businesses/{businessID}/reviews")).
				Get("/{businessID}/reviews", rt.handler.BusinessReviews)
			r.With(PrometheusMetrics("/api/v1/businesses/{businessID}/similar")).
				Get("/{businessID}/similar", rt.handler.Similar)
		})
	})

	return r
}
