// StreamHub - Streaming Media Recommendation Backend
// Copyright 2026 Carlos J. Chiles (CarlosJChileS)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/CarlosJChileS/streamhub-unified-sub000

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/CarlosJChileS/streamhub-unified-sub000/internal/auth"
	"github.com/CarlosJChileS/streamhub-unified-sub000/internal/middleware"
)

// Version is the application version reported by the health endpoint.
const Version = "1.0.0"

// Router wires handlers to HTTP routes with the middleware stack.
type Router struct {
	handler       *Handler
	middleware    *auth.Middleware
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a Router from the handler and middleware components.
func NewRouter(handler *Handler, authMW *auth.Middleware) *Router {
	return &Router{
		handler:       handler,
		middleware:    authMW,
		chiMiddleware: NewChiMiddlewareFromSecurity(&handler.cfg.Security),
	}
}

// chiMiddleware adapts http.HandlerFunc middleware to Chi's
// func(http.Handler) http.Handler so it can be used with r.Use().
func chiMiddleware(mw func(http.HandlerFunc) http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return mw(next.ServeHTTP)
	}
}

// SetupChi configures all HTTP routes using the Chi router.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to all routes in order. CORS must be
	// global to handle OPTIONS preflight.
	r.Use(chiMiddleware(middleware.RequestID))
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS())
	r.Use(chiMiddleware(router.middleware.SecurityHeaders))
	r.Use(chiMiddleware(middleware.Compression))

	// Health endpoints. Permissive rate limiting so monitoring probes
	// are never starved.
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitHealth())
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
		r.Get("/", router.handler.Health)
	})

	// Authentication endpoints with strict rate limiting to slow down
	// brute force and credential stuffing.
	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitAuth())
		r.With(router.chiMiddleware.RateLimitLogin()).Post("/login", router.handler.Login)
	})

	// Recommendation endpoints. Users can only fetch their own
	// recommendations unless they hold the admin role.
	r.Route("/api/v1/recommendations", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(chiMiddleware(middleware.PrometheusMetrics))
		r.Use(chiMiddleware(router.middleware.Authenticate))

		r.Get("/{userID}", router.handler.Recommendations)
	})

	// Content catalog endpoints. Reads are open to any authenticated
	// user; writes require the editor role.
	r.Route("/api/v1/content", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(chiMiddleware(middleware.PrometheusMetrics))
		r.Use(chiMiddleware(router.middleware.Authenticate))

		r.Get("/", router.handler.ContentList)
		r.Get("/{id}", router.handler.ContentGet)
		r.Post("/", router.requireRole("editor", router.handler.ContentCreate))
		r.Post("/{id}/status", router.requireRole("editor", router.handler.ContentUpdateStatus))
	})

	// Engagement write endpoints feed the recommendation signals.
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitWrite())
		r.Use(chiMiddleware(middleware.PrometheusMetrics))
		r.Use(chiMiddleware(router.middleware.Authenticate))

		r.Post("/watch-events", router.handler.WatchEventCreate)
		r.Post("/ratings", router.handler.RatingCreate)
		r.Post("/watchlist", router.handler.WatchlistAdd)
		r.Get("/watchlist/{userID}", router.handler.WatchlistGet)
		r.Delete("/watchlist/{userID}/{contentID}", router.handler.WatchlistRemove)
	})

	// Prometheus scrape endpoint.
	r.Handle("/metrics", promhttp.Handler())

	return r
}

// requireRole wraps a handler with a role check.
func (router *Router) requireRole(role string, h http.HandlerFunc) http.HandlerFunc {
	return router.middleware.RequireRole(role, h)
}
