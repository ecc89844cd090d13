// AddonSync - Group-Managed Addon Collection Synchronization for Stremio
// Copyright 2026 StrmForge Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/strmforge/addonsync

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router wires handlers and middleware into the HTTP route tree.
type Router struct {
	handler    *Handler
	middleware *Middleware
}

// NewRouter creates a router from a handler set and middleware config.
func NewRouter(handler *Handler, mwConfig *MiddlewareConfig) *Router {
	return &Router{
		handler:    handler,
		middleware: NewMiddleware(mwConfig),
	}
}

// Setup configures all HTTP routes.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to all routes in order.
	r.Use(RequestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.middleware.CORS())

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.middleware.RateLimitHealth())
		r.Use(APISecurityHeaders())
		r.Get("/", router.handler.Health)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(APISecurityHeaders())

		// Sync triggers fan out manifest fetches and external writes,
		// so they get the strictest limit.
		r.With(router.middleware.RateLimitSync()).
			Post("/users/{userID}/sync", router.handler.SyncUser)
		r.With(router.middleware.RateLimitSync()).
			Post("/groups/{groupID}/sync", router.handler.SyncGroup)

		r.With(router.middleware.RateLimitStatus()).
			Get("/users/{userID}/status", router.handler.UserStatus)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
