// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/autobrr/grabarr/internal/api"
	"github.com/autobrr/grabarr/internal/buildinfo"
	"github.com/autobrr/grabarr/internal/config"
	"github.com/autobrr/grabarr/internal/database"
	"github.com/autobrr/grabarr/internal/decision"
	"github.com/autobrr/grabarr/internal/downloadclient"
	"github.com/autobrr/grabarr/internal/events"
	"github.com/autobrr/grabarr/internal/formats"
	"github.com/autobrr/grabarr/internal/logger"
	"github.com/autobrr/grabarr/internal/metrics"
	"github.com/autobrr/grabarr/internal/models"
	"github.com/autobrr/grabarr/internal/profiles"
	"github.com/autobrr/grabarr/internal/tracked"
	"github.com/autobrr/grabarr/pkg/releases"
)

func runServe(ctx context.Context, configPath string) error {
	cfg, err := config.New(configPath)
	if err != nil {
		return err
	}

	logger.Setup(cfg.Config)

	log.Info().
		Str("version", buildinfo.Version).
		Msg("Starting grabarr")

	db, err := database.New(cfg.GetDatabasePath())
	if err != nil {
		return err
	}
	defer db.Close()

	bus := events.NewBus()

	profileStore := models.NewQualityProfileStore(db)
	formatStore := models.NewCustomFormatStore(db)
	delayStore := models.NewDelayProfileStore(db)
	artistStore := models.NewArtistStore(db)
	importListStore := models.NewImportListStore(db)
	rootFolderStore := models.NewRootFolderStore(db)

	profileService := profiles.New(bus, profileStore, formatStore,
		artistStore, importListStore, rootFolderStore)

	parser := releases.NewParser(5 * time.Minute)
	detector := formats.NewExprDetector(parser)
	evaluator := decision.New(detector, formatStore, delayStore)

	tracker := tracked.NewService(tracked.Config{
		MaxDownloadRetries: cfg.Config.MaxDownloadRetries,
	})

	clients := make([]downloadclient.Client, 0, len(cfg.Config.DownloadClients))
	for _, cc := range cfg.Config.DownloadClients {
		client, err := downloadclient.NewQBittorrent(cc.ID, cc.Name, cc.Host, cc.Username, cc.Password)
		if err != nil {
			return err
		}
		clients = append(clients, client)
	}
	poller := downloadclient.NewPoller(tracker, cfg.Config.PollInterval(), clients...)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Seeds default quality profiles on first run.
	bus.Publish(ctx, events.ApplicationStarted{})

	deps := &api.Dependencies{
		Config:         cfg.Config,
		DB:             db,
		Bus:            bus,
		ProfileService: profileService,
		DelayProfiles:  delayStore,
		CustomFormats:  formatStore,
		Detector:       detector,
		Evaluator:      evaluator,
		Tracker:        tracker,
		Parser:         parser,
	}

	if cfg.Config.MetricsEnabled {
		manager := metrics.NewManager(tracker)
		deps.Evaluations = manager

		metricsServer := metrics.NewServer(manager, cfg.Config.MetricsHost, cfg.Config.MetricsPort)
		go func() {
			if err := metricsServer.Serve(ctx); err != nil {
				log.Error().Err(err).Msg("Metrics server failed")
			}
		}()
	}

	server := api.NewServer(deps)

	go poller.Run(ctx)

	return server.Serve(ctx)
}
