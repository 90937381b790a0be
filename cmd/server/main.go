// Platepick - Restaurant Discovery and Recommendation Service
// Copyright 2026 Platepick Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/platepick/platepick

// Package main is the entry point for the Platepick server.
//
// Startup order:
//
//  1. Configuration: koanf v2 layered load (defaults, config.yaml, env)
//  2. Logging: global zerolog logger
//  3. Corpus: restaurant snapshot loaded through DuckDB, held immutable
//  4. Session store: BadgerDB-backed rating sessions
//  5. Recommendation engine and sampler over the corpus
//  6. Business client: optional upstream directory lookups
//  7. HTTP server: chi REST API with Prometheus metrics
//
// The server shuts down gracefully on SIGINT/SIGTERM: it stops accepting
// connections, drains in-flight requests within server.shutdown_timeout,
// then closes the session store.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/platepick/platepick/internal/api"
	"github.com/platepick/platepick/internal/business"
	"github.com/platepick/platepick/internal/config"
	"github.com/platepick/platepick/internal/corpus"
	"github.com/platepick/platepick/internal/logging"
	"github.com/platepick/platepick/internal/metrics"
	"github.com/platepick/platepick/internal/recommend"
	"github.com/platepick/platepick/internal/session"
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
	logging.Info().Str("addr", cfg.Server.Addr()).Msg("Starting Platepick")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := corpus.Load(ctx, cfg.Corpus.Path, logging.Logger())
	if err != nil {
		logging.Fatal().Err(err).Str("path", cfg.Corpus.Path).Msg("Failed to load corpus")
	}
	metrics.SetCorpusSize(store.Len(), len(store.States()))

	sessions, err := session.Open(cfg.Session.Path, cfg.Session.TTL)
	if err != nil {
		logging.Fatal().Err(err).Str("path", cfg.Session.Path).Msg("Failed to open session store")
	}
	defer func() {
		if err := sessions.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing session store")
		}
	}()

	engine, err := recommend.NewEngine(&cfg.Recommend, store, logging.Logger())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create recommendation engine")
	}
	sampler := recommend.NewSampler(store, cfg.Recommend.Sampler, cfg.Recommend.Seed)

	var bizClient *business.Client
	if cfg.Business.BaseURL != "" {
		bizClient, err = business.NewClient(cfg.Business, logging.Logger())
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to create business client")
		}
		logging.Info().Str("base_url", cfg.Business.BaseURL).Msg("Business lookups enabled")
	} else {
		logging.Info().Msg("Business lookups disabled, no base URL configured")
	}

	handler := api.NewHandler(cfg, store, sampler, engine, sessions, bizClient)
	router := api.NewRouter(cfg, handler)

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		errCh <- server.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("HTTP server failed")
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("Graceful shutdown failed")
	}
	logging.Info().Msg("Platepick stopped")
}
