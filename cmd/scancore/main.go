// Package main is the entry point for the cookie compliance scan core — the
// process that runs the Schedule Coordinator's cron loop and exposes the
// Parallel Page Scanner / Enterprise Scanner to ad-hoc callers embedding
// this module directly. There is no HTTP surface here: request intake
// (REST handlers, auth, rate limiting) is an external collaborator's
// responsibility, not this module's.
//
// Dependencies:
//   - Postgres: schedules, schedule_executions
//   - NATS JetStream: distributed scan locks, cron tick summaries
//   - Vault: DATABASE_URL, NATS_URL
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/arc-self/apps/cookie-scan-core/internal/browser"
	"github.com/arc-self/apps/cookie-scan-core/internal/classify"
	"github.com/arc-self/apps/cookie-scan-core/internal/config"
	"github.com/arc-self/apps/cookie-scan-core/internal/enterprise"
	"github.com/arc-self/apps/cookie-scan-core/internal/scanlock"
	"github.com/arc-self/apps/cookie-scan-core/internal/scanner"
	"github.com/arc-self/apps/cookie-scan-core/internal/scanschedule"
	"github.com/arc-self/apps/cookie-scan-core/internal/service"
	"github.com/arc-self/apps/cookie-scan-core/internal/telemetry"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	defaults := config.LoadScanDefaults()

	// ── OpenTelemetry ────────────────────────────────────────────────────
	var instruments *telemetry.ScanInstruments
	if otelEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); otelEndpoint != "" {
		mp, err := telemetry.InitMeterProvider(context.Background(), "cookie-scan-core", otelEndpoint)
		if err != nil {
			logger.Error("failed to init OTel meter provider", zap.Error(err))
		} else {
			defer mp.Shutdown(context.Background())
			instruments, err = telemetry.NewScanInstruments(otel.Meter("cookie-scan-core"))
			if err != nil {
				logger.Error("failed to build scan instruments", zap.Error(err))
				instruments = nil
			}
			logger.Info("OTel meter provider initialized", zap.String("endpoint", otelEndpoint))
		}
	}

	// ── Vault secrets ────────────────────────────────────────────────────
	vaultAddr := os.Getenv("VAULT_ADDR")
	if vaultAddr == "" {
		vaultAddr = "http://localhost:8200"
	}
	vaultToken := os.Getenv("VAULT_TOKEN")
	if vaultToken == "" {
		vaultToken = "root"
	}
	secretPath := os.Getenv("VAULT_SECRET_PATH")
	if secretPath == "" {
		secretPath = "secret/data/arc/cookie-scan-core"
	}

	vaultManager, err := config.NewSecretManager(vaultAddr, vaultToken)
	if err != nil {
		logger.Fatal("Vault connection failed", zap.Error(err))
	}
	secrets, err := vaultManager.LoadScanCoreSecrets(secretPath)
	if err != nil {
		logger.Fatal("failed to load scan core secrets from Vault", zap.Error(err))
	}

	// ── Database ─────────────────────────────────────────────────────────
	pool, err := pgxpool.New(context.Background(), secrets.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()
	logger.Info("connected to database")

	scheduleStore := scanschedule.NewPGStore(pool)
	if err := scheduleStore.EnsureSchema(context.Background()); err != nil {
		logger.Fatal("failed to ensure schedule schema", zap.Error(err))
	}

	// ── NATS (distributed lock + cron fan-out) ──────────────────────────
	nc, err := nats.Connect(secrets.NATSURL, nats.RetryOnFailedConnect(true), nats.MaxReconnects(-1))
	if err != nil {
		logger.Fatal("failed to connect to NATS", zap.Error(err))
	}
	defer nc.Drain()

	js, err := nc.JetStream()
	if err != nil {
		logger.Fatal("failed to initialize JetStream", zap.Error(err))
	}
	locker, err := scanlock.NewNATSLocker(js, "scan_locks", defaults.LockTTL(), logger)
	if err != nil {
		logger.Fatal("failed to open scan lock bucket", zap.Error(err))
	}

	// ── Scanners ─────────────────────────────────────────────────────────
	overrides := classify.NewDomainOverrides(nil)
	quickScanner := scanner.New(logger, overrides, instruments)
	enterpriseScanner := enterprise.New(logger, overrides,
		enterprise.WithCheckpointRoot(defaults.CheckpointDir),
		enterprise.WithAdaptiveConcurrency(),
		enterprise.WithInstruments(instruments),
	)

	visitOpts := browser.DefaultVisitOptions()
	if defaults.TimeoutMs > 0 {
		visitOpts.Timeout = time.Duration(defaults.TimeoutMs) * time.Millisecond
	}
	if defaults.MaxRetries > 0 {
		visitOpts.MaxRetries = defaults.MaxRetries
	}

	scanSvc := service.NewScanService(logger, quickScanner, enterpriseScanner, visitOpts)
	scheduleSvc := service.NewScheduleService(scheduleStore, scanSvc)

	// ── Schedule Coordinator ─────────────────────────────────────────────
	coordinator := scanschedule.NewCoordinator(scheduleStore, locker, scheduleSvc.Runner(), defaults.LockTTL(), "", logger)
	cronDriver := scanschedule.NewCronDriver(coordinator, nc, logger)
	if err := cronDriver.Start("*/30 * * * * *"); err != nil {
		logger.Fatal("failed to start schedule coordinator cron driver", zap.Error(err))
	}
	defer cronDriver.Stop()

	queueSub, err := scanschedule.StartQueueConsumer(nc, "scan-core-coordinators", coordinator, logger)
	if err != nil {
		logger.Error("failed to start schedule queue consumer", zap.Error(err))
	} else {
		defer queueSub.Unsubscribe()
	}

	logger.Info("cookie-scan-core running", zap.Int("browserPoolSize", defaults.BrowserPoolSize))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	logger.Info("cookie-scan-core shut down cleanly")
}
