package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/RohanMishra47/api-monitoring-dashboard/internal/config"
	"github.com/RohanMishra47/api-monitoring-dashboard/internal/httpapi"
	apimw "github.com/RohanMishra47/api-monitoring-dashboard/internal/httpapi/middleware"
	"github.com/RohanMishra47/api-monitoring-dashboard/internal/logging"
	"github.com/RohanMishra47/api-monitoring-dashboard/internal/notify"
	"github.com/RohanMishra47/api-monitoring-dashboard/internal/probe"
	"github.com/RohanMishra47/api-monitoring-dashboard/internal/repo"
	"github.com/RohanMishra47/api-monitoring-dashboard/internal/repo/memory"
	"github.com/RohanMishra47/api-monitoring-dashboard/internal/repo/postgres"
	"github.com/RohanMishra47/api-monitoring-dashboard/internal/repo/sqlite"
	"github.com/RohanMishra47/api-monitoring-dashboard/internal/scheduler"
)

type store interface {
	repo.EndpointStore
	repo.LogStore
	repo.AlertStore
}

func main() {
	cfg := config.FromEnv()
	logger, err := logging.NewLogger(cfg.LogDir)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var db store
	switch cfg.DatabaseDriver {
	case "postgres":
		pg, err := postgres.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal(err)
		}
		defer pg.Close()
		db = pg
	case "sqlite":
		path := cfg.DatabaseURL
		if path == "" {
			path = "monitor.db"
		}
		sq, err := sqlite.New(ctx, path)
		if err != nil {
			log.Fatal(err)
		}
		defer sq.Close()
		db = sq
	default:
		db = memory.New()
	}

	var notifier notify.Multi
	if s := notify.NewSlack(cfg.SlackWebhook); s != nil {
		notifier = append(notifier, s)
	}
	if e := notify.NewEmail(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.AlertFrom, cfg.AlertRecipient); e != nil {
		notifier = append(notifier, e)
	}

	mon := scheduler.NewMonitor(
		logger,
		db, db, db,
		probe.NewHTTPChecker(cfg.ProbeTimeout),
		notifier,
		cfg.CheckCycle,
		cfg.ProbeTimeout,
		cfg.MaxConcurrentChecks,
	)
	mon.Start(ctx)

	sweeper := scheduler.NewSweeper(logger, db, cfg.RetentionDays, cfg.SweepHourUTC)
	go sweeper.Run(ctx)

	// The registration-time check retries so a transient blip doesn't get
	// reported back to the user as a dead endpoint.
	apiChecker := &probe.RetryChecker{
		Inner:    probe.NewHTTPChecker(cfg.ProbeTimeout),
		Attempts: cfg.RetryAttempts,
		Backoff:  cfg.RetryBackoff,
	}
	api := httpapi.NewServer(logger, db, db, db, apiChecker, cfg.DefaultIntervalSeconds)
	keys := apimw.Keys{Public: cfg.PublicAPIKeys, Admin: cfg.AdminAPIKeys}

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: api.Router(keys, cfg.PublicRPM, cfg.PublicBurst, cfg.AdminRPM, cfg.AdminBurst),
	}
	go func() {
		<-ctx.Done()
		_ = srv.Shutdown(context.Background())
	}()

	logger.Info("api_listen",
		zap.String("addr", cfg.Addr),
		zap.String("driver", cfg.DatabaseDriver),
		zap.Duration("check_cycle", cfg.CheckCycle),
	)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
	logger.Info("shutdown_complete")
}
