// StreamHub - Streaming Media Recommendation Backend
// Copyright 2026 Carlos J. Chiles (CarlosJChileS)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/CarlosJChileS/streamhub-unified-sub000

// Package api provides HTTP routing and handlers for the StreamHub REST API.
//
// Handler methods are split across multiple files:
//   - handlers.go: Handler struct and constructor (this file)
//   - helpers.go: Shared response and parsing helpers
//   - handlers_health.go: Health and readiness endpoints
//   - handlers_auth.go: Login endpoint
//   - handlers_recommend.go: Recommendation endpoint
//   - handlers_content.go: Content catalog endpoints
//   - handlers_engagement.go: Watch event, rating, and watchlist endpoints
package api

import (
	"time"

	"github.com/CarlosJChileS/streamhub-unified-sub000/internal/auth"
	"github.com/CarlosJChileS/streamhub-unified-sub000/internal/config"
	"github.com/CarlosJChileS/streamhub-unified-sub000/internal/database"
	"github.com/CarlosJChileS/streamhub-unified-sub000/internal/recommend"
)

// Handler carries the dependencies of all API handlers.
type Handler struct {
	cfg         *config.Config
	db          *database.DB
	content     *database.ContentStore
	engagement  *database.EngagementStore
	engine      *recommend.Engine
	jwtManager  *auth.JWTManager
	credentials *auth.CredentialChecker
	startTime   time.Time
}

// NewHandler wires the API handlers to their dependencies.
func NewHandler(
	cfg *config.Config,
	db *database.DB,
	content *database.ContentStore,
	engagement *database.EngagementStore,
	engine *recommend.Engine,
	jwtManager *auth.JWTManager,
	credentials *auth.CredentialChecker,
) *Handler {
	return &Handler{
		cfg:         cfg,
		db:          db,
		content:     content,
		engagement:  engagement,
		engine:      engine,
		jwtManager:  jwtManager,
		credentials: credentials,
		startTime:   time.Now(),
	}
}
