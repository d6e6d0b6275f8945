package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/RohanMishra47/api-monitoring-dashboard/internal/repo"
)

// Sweeper deletes probe logs older than the retention window. It runs once
// a day at a fixed UTC hour. Safe to run alongside the monitor: inserts
// always carry the current timestamp, a delete-by-cutoff never touches them.
type Sweeper struct {
	Logger        *zap.Logger
	Logs          repo.LogStore
	RetentionDays int
	HourUTC       int
}

func NewSweeper(logger *zap.Logger, logs repo.LogStore, retentionDays, hourUTC int) *Sweeper {
	if retentionDays <= 0 {
		retentionDays = 30
	}
	if hourUTC < 0 || hourUTC > 23 {
		hourUTC = 2
	}
	return &Sweeper{
		Logger:        logger,
		Logs:          logs,
		RetentionDays: retentionDays,
		HourUTC:       hourUTC,
	}
}

// Run sleeps until the next scheduled hour, sweeps, and repeats. Stops when
// ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	for {
		t := time.NewTimer(untilNext(time.Now().UTC(), s.HourUTC))
		select {
		case <-ctx.Done():
			t.Stop()
			s.Logger.Info("sweeper_stopped")
			return
		case <-t.C:
			s.SweepOnce(ctx)
		}
	}
}

// SweepOnce deletes all logs older than the retention cutoff and returns
// how many went. Idempotent: a second run finds nothing to delete.
func (s *Sweeper) SweepOnce(ctx context.Context) (int64, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -s.RetentionDays)
	n, err := s.Logs.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		s.Logger.Warn("sweep_error", zap.Error(err))
		return 0, err
	}
	s.Logger.Info("sweep_complete",
		zap.Int64("deleted", n),
		zap.Time("cutoff", cutoff),
	)
	return n, nil
}

func untilNext(now time.Time, hourUTC int) time.Duration {
	next := time.Date(now.Year(), now.Month(), now.Day(), hourUTC, 0, 0, 0, time.UTC)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(now)
}
