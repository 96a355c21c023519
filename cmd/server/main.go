// Stridefit - Review-Driven Running Shoe Recommendations
// Copyright 2026 Stridefit Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stridefit/stridefit

// Package main is the entry point for the Stridefit server.
//
// Stridefit recommends running and court shoes by scoring a product
// catalog against a user's fit profile. The fit knowledge comes from
// aggregated reviews: an ingestion pipeline pulls reviews from
// configured sources, a local LLM distills them into per-shoe fit
// profiles, and admin feedback on match results trains the scoring
// weights over time.
//
// # Startup Order
//
//  1. Configuration: Koanf v2 layering of defaults, config.yaml, and
//     environment variables
//  2. Logging: global zerolog instance
//  3. Database: DuckDB with schema creation and weight seeding
//  4. Scoring engine and the active weight vector
//  5. Event bus: in-process Watermill channel for extraction triggers
//  6. Pipeline workers: ingestion manager, trigger consumer, optimizer
//  7. HTTP server: Chi router with the REST API
//  8. Supervisor tree: everything long-lived runs under suture
//
// # Configuration
//
// Environment variables override the config file, which overrides
// defaults. SERVER_PORT maps to server.port, EXTRACT_MODEL to
// extract.model, and so on. See config.yaml.example.
//
// # Signal Handling
//
// SIGINT and SIGTERM cancel the root context. The supervisor tree then
// drains in-flight HTTP requests, stops the workers, checkpoints the
// database, and exits.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/stridefit/stridefit/internal/api"
	"github.com/stridefit/stridefit/internal/config"
	"github.com/stridefit/stridefit/internal/database"
	"github.com/stridefit/stridefit/internal/events"
	"github.com/stridefit/stridefit/internal/extract"
	"github.com/stridefit/stridefit/internal/feedback"
	"github.com/stridefit/stridefit/internal/ingest"
	"github.com/stridefit/stridefit/internal/logging"
	"github.com/stridefit/stridefit/internal/optimizer"
	"github.com/stridefit/stridefit/internal/scoring"
	"github.com/stridefit/stridefit/internal/supervisor"
	"github.com/stridefit/stridefit/internal/supervisor/services"
	"github.com/stridefit/stridefit/internal/weights"
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
		Str("db_path", cfg.Database.Path).
		Str("extract_model", cfg.Extract.Model).
		Int("ingest_sources", len(cfg.Ingest.Sources)).
		Msg("Starting Stridefit")

	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	engine, err := scoring.NewEngine(scoring.Config{
		MaxResults: cfg.Scoring.MaxResults,
		MinScore:   cfg.Scoring.MinScore,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to build scoring engine")
	}

	// The database seeds version 1 on first run, so an active vector
	// always exists here.
	active, err := db.GetActiveWeights(ctx)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load active weight vector")
	}
	weightSource := weights.NewSource(active)
	logging.Info().Int("version", active.Version).Msg("Active weight vector loaded")

	bus := events.NewBus()
	defer func() {
		if err := bus.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing event bus")
		}
	}()

	ingester := ingest.NewManager(&cfg.Ingest, db, bus)

	completer := extract.NewClient(&cfg.Extract)
	extractor := extract.NewEngine(&cfg.Extract, db, completer)

	collector := feedback.NewCollector(db)
	opt := optimizer.New(&cfg.Optimizer, db, engine, weightSource)

	handler := api.NewHandler(&cfg.Cache, db, engine, weightSource, ingester, collector, opt)
	consumer := events.NewConsumer(&cfg.Events, bus, extractor, handler)
	router := api.NewRouter(&cfg.Server, handler)
	server := api.NewServer(&cfg.Server, router)

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddDataService(services.NewCheckpointService(db, cfg.Database.CheckpointInterval))
	tree.AddPipelineService(ingester)
	tree.AddPipelineService(consumer)
	tree.AddPipelineService(opt)
	tree.AddAPIService(server)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().
		Str("host", cfg.Server.Host).
		Int("port", cfg.Server.Port).
		Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	// Drain to the channel close so shutdown completes before Close runs.
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Stopped gracefully")
}
