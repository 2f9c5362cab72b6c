// StreamHub - Streaming Media Recommendation Backend
// Copyright 2026 Carlos J. Chiles (CarlosJChileS)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/CarlosJChileS/streamhub-unified-sub000

// Command server runs the StreamHub recommendation backend: a DuckDB-backed
// catalog and engagement store, the recommendation engine, and the REST API,
// all supervised under a suture tree for restart-on-failure semantics.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/CarlosJChileS/streamhub-unified-sub000/internal/api"
	"github.com/CarlosJChileS/streamhub-unified-sub000/internal/auth"
	"github.com/CarlosJChileS/streamhub-unified-sub000/internal/config"
	"github.com/CarlosJChileS/streamhub-unified-sub000/internal/database"
	"github.com/CarlosJChileS/streamhub-unified-sub000/internal/logging"
	"github.com/CarlosJChileS/streamhub-unified-sub000/internal/recommend"
	"github.com/CarlosJChileS/streamhub-unified-sub000/internal/supervisor"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("version", api.Version).
		Str("db_path", cfg.Database.Path).
		Str("auth_mode", cfg.Security.AuthMode).
		Str("environment", cfg.Server.Environment).
		Msg("Starting StreamHub")

	db, err := database.New(cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	logging.Info().Msg("Database initialized")

	contentStore := database.NewContentStore(db)
	engagementStore := database.NewEngagementStore(db)

	engine, err := recommend.NewEngine(&cfg.Recommend, contentStore, engagementStore, logging.Logger())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize recommendation engine")
	}
	logging.Info().
		Bool("cache_enabled", cfg.Recommend.Cache.Enabled).
		Dur("cache_ttl", cfg.Recommend.Cache.TTL).
		Msg("Recommendation engine initialized")

	var jwtManager *auth.JWTManager
	if cfg.Security.AuthMode == "jwt" {
		jwtManager, err = auth.NewJWTManager(&cfg.Security)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to initialize JWT manager")
		}
		logging.Info().Msg("JWT authentication enabled")
	} else {
		logging.Warn().Msg("Authentication disabled (AUTH_MODE=none)")
	}
	credentials := auth.NewCredentialChecker(&cfg.Security)
	authMW := auth.NewMiddleware(jwtManager, &cfg.Security)

	handler := api.NewHandler(cfg, db, contentStore, engagementStore, engine, jwtManager, credentials)
	router := api.NewRouter(handler, authMW)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.SetupChi(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	tree, err := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	tree.AddEngineService(engine)
	tree.AddAPIService(supervisor.NewHTTPServerService(server, 10*time.Second))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Application stopped gracefully")
}
