// Package main provides the bout service: it restores the roster from
// PostgreSQL, serves the HTTP API, runs the daily heal tick on a cron
// schedule, and exposes Prometheus metrics.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/cory-johannsen/bout/internal/api"
	"github.com/cory-johannsen/bout/internal/config"
	"github.com/cory-johannsen/bout/internal/game/combat"
	"github.com/cory-johannsen/bout/internal/game/dice"
	"github.com/cory-johannsen/bout/internal/game/event"
	"github.com/cory-johannsen/bout/internal/game/roster"
	"github.com/cory-johannsen/bout/internal/game/style"
	"github.com/cory-johannsen/bout/internal/observability"
	"github.com/cory-johannsen/bout/internal/server"
	"github.com/cory-johannsen/bout/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	healthInterval := flag.Duration("db-health", 30*time.Second, "database health check interval")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging, "fightd")
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	policy, err := cfg.Combat.Policy()
	if err != nil {
		logger.Fatal("parsing reinjury policy", zap.Error(err))
	}

	catalog, err := style.LoadFile(cfg.Content.StylesFile)
	if err != nil {
		logger.Fatal("loading styles", zap.Error(err))
	}
	logger.Info("styles loaded",
		zap.Int("count", catalog.Len()),
		zap.Strings("styles", catalog.Names()),
	)

	dbStart := time.Now()
	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("connecting to database", zap.Error(err))
	}
	logger.Info("database connected",
		zap.String("host", cfg.Database.Host),
		zap.Duration("elapsed", time.Since(dbStart)),
	)
	store := postgres.NewStore(pool.DB())

	if cfg.Content.RosterFile != "" {
		seed, err := roster.LoadFile(cfg.Content.RosterFile)
		if err != nil {
			logger.Fatal("loading roster seed", zap.Error(err))
		}
		if err := store.Combatants.StoreSeed(ctx, seed); err != nil {
			logger.Fatal("storing roster seed", zap.Error(err))
		}
		logger.Info("roster seed applied",
			zap.String("file", cfg.Content.RosterFile),
			zap.Int("combatants", len(seed.Combatants)),
		)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		pool.Collector(cfg.Metrics.Namespace),
	)
	metrics := observability.NewBoutMetrics(cfg.Metrics.Namespace, registry)

	var src dice.Source = dice.NewCryptoSource()
	if cfg.Combat.Seed != 0 {
		logger.Info("using seeded dice", zap.Int64("seed", cfg.Combat.Seed))
		src = dice.NewSeededSource(cfg.Combat.Seed)
	}
	src = dice.NewRecorder(src, logger)

	engine := combat.NewEngine(catalog, src, logger,
		combat.WithSink(metrics),
		combat.WithPolicy(policy),
	)
	r := roster.New(engine, logger, roster.WithSink(metrics), roster.WithPersister(store))
	if err := store.Restore(ctx, r); err != nil {
		logger.Fatal("restoring roster", zap.Error(err))
	}
	metrics.ObserveRoster(r.Len(), len(r.Injured()))
	logger.Info("roster restored",
		zap.Int("combatants", r.Len()),
		zap.Strings("injured", r.Injured()),
	)

	scheduler, err := roster.NewHealScheduler(cfg.Schedule.HealCron, r, logger,
		roster.WithAfterTick(func(context.Context, []event.Event) {
			metrics.ObserveRoster(r.Len(), len(r.Injured()))
		}),
	)
	if err != nil {
		logger.Fatal("creating heal scheduler", zap.Error(err))
	}

	handler := api.NewHandler(r, logger,
		api.WithHistory(store.Bouts),
		api.WithRosterObserver(metrics.ObserveRoster),
	)
	apiService := server.NewHTTPService(cfg.API.Addr, api.NewServer(handler, nil), logger)
	metricsService := server.NewHTTPService(cfg.Metrics.Addr,
		promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}), logger)

	lifecycle := server.NewLifecycle(logger)

	healthDone := make(chan struct{})
	lifecycle.Add("postgres", &server.FuncService{
		StartFn: func() error {
			ticker := time.NewTicker(*healthInterval)
			defer ticker.Stop()
			for {
				select {
				case <-healthDone:
					return nil
				case <-ticker.C:
					if err := pool.Health(ctx, 5*time.Second); err != nil {
						logger.Warn("database health check failed", zap.Error(err))
					}
				}
			}
		},
		StopFn: func() {
			close(healthDone)
			pool.Close()
		},
	})
	lifecycle.Add("heal-scheduler", &server.FuncService{
		StartFn: func() error {
			scheduler.Start()
			return nil
		},
		StopFn: func() {
			stopCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			if err := scheduler.Stop(stopCtx); err != nil {
				logger.Warn("heal scheduler stop", zap.Error(err))
			}
		},
	})
	lifecycle.Add("metrics", metricsService)
	lifecycle.Add("api", apiService)

	logger.Info("bout service initialized",
		zap.Duration("startup", time.Since(start)),
		zap.String("api_addr", cfg.API.Addr),
		zap.String("metrics_addr", cfg.Metrics.Addr),
		zap.String("heal_cron", cfg.Schedule.HealCron),
		zap.String("reinjury_policy", policy.String()),
	)

	if err := lifecycle.Run(ctx); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
