package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/RohanMishra47/api-monitoring-dashboard/internal/alert"
	"github.com/RohanMishra47/api-monitoring-dashboard/internal/domain"
	"github.com/RohanMishra47/api-monitoring-dashboard/internal/notify"
	"github.com/RohanMishra47/api-monitoring-dashboard/internal/probe"
	"github.com/RohanMishra47/api-monitoring-dashboard/internal/repo"
)

// Monitor drives the recurring check cycle: every tick it loads the roster,
// selects due endpoints, probes them concurrently and feeds each outcome
// through the alert state machine. The persistence layer is the single
// source of truth; nothing is cached across ticks.
type Monitor struct {
	Logger      *zap.Logger
	Endpoints   repo.EndpointStore
	Logs        repo.LogStore
	Alerts      repo.AlertStore
	Checker     probe.Checker
	Notifier    notify.Notifier
	Interval    time.Duration
	Timeout     time.Duration
	Concurrency int

	started atomic.Bool
	busy    atomic.Bool
}

func NewMonitor(
	logger *zap.Logger,
	eps repo.EndpointStore,
	logs repo.LogStore,
	alerts repo.AlertStore,
	checker probe.Checker,
	notifier notify.Notifier,
	interval time.Duration,
	timeout time.Duration,
	concurrency int,
) *Monitor {
	if interval <= 0 {
		interval = 60 * time.Second
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if concurrency < 1 {
		concurrency = 1
	}
	return &Monitor{
		Logger:      logger,
		Endpoints:   eps,
		Logs:        logs,
		Alerts:      alerts,
		Checker:     checker,
		Notifier:    notifier,
		Interval:    interval,
		Timeout:     timeout,
		Concurrency: concurrency,
	}
}

// Start launches the loop in a goroutine. Idempotent: a second call does
// not create a duplicate timer.
func (m *Monitor) Start(ctx context.Context) {
	if !m.started.CompareAndSwap(false, true) {
		m.Logger.Warn("monitor_already_started")
		return
	}
	go m.Run(ctx)
}

// Run does an immediate cycle, then one per tick. Stops when ctx is
// cancelled; in-flight probes finish on their own timeouts.
func (m *Monitor) Run(ctx context.Context) {
	t := time.NewTicker(m.Interval)
	defer t.Stop()

	m.runCycle(ctx)

	for {
		select {
		case <-ctx.Done():
			m.Logger.Info("monitor_stopped")
			return
		case <-t.C:
			m.runCycle(ctx)
		}
	}
}

// runCycle processes every due endpoint once. A cycle still running when
// the next tick fires is not overlapped; the tick is skipped.
func (m *Monitor) runCycle(ctx context.Context) {
	if !m.busy.CompareAndSwap(false, true) {
		m.Logger.Warn("monitor_cycle_skipped_still_running")
		return
	}
	defer m.busy.Store(false)

	eps, err := m.Endpoints.List(ctx)
	if err != nil {
		// whole cycle skipped, retried at next tick
		m.Logger.Warn("monitor_list_error", zap.Error(err))
		return
	}

	due := domain.SelectDue(eps, time.Now().UTC())
	if len(due) == 0 {
		return
	}

	sem := make(chan struct{}, m.Concurrency)
	var wg sync.WaitGroup
	var processed atomic.Int64

	for _, ep := range due {
		ep := ep
		sem <- struct{}{}
		wg.Add(1)
		go func() {
			defer func() { <-sem }()
			defer wg.Done()
			if m.checkOne(ctx, ep) {
				processed.Add(1)
			}
		}()
	}
	wg.Wait()

	m.Logger.Info("monitor_cycle_complete",
		zap.Int("due", len(due)),
		zap.Int64("processed", processed.Load()),
	)
}

// checkOne runs the per-endpoint pipeline: probe, persist log, advance
// last_checked_at, evaluate the alert transition, apply it, notify.
// Errors are logged and abandon the rest of this endpoint's steps only;
// the cycle continues with the others.
func (m *Monitor) checkOne(ctx context.Context, ep *domain.Endpoint) bool {
	cctx, cancel := context.WithTimeout(ctx, m.Timeout)
	out := m.Checker.Check(cctx, ep.URL)
	cancel()

	now := time.Now().UTC()

	l := &domain.Log{
		EndpointID: ep.ID,
		StatusCode: out.StatusCode,
		LatencyMs:  out.LatencyMs,
		Error:      out.Error,
		Timestamp:  now,
	}
	if err := m.Logs.Append(ctx, l); err != nil {
		m.Logger.Warn("monitor_log_append_error",
			zap.String("endpoint_id", string(ep.ID)),
			zap.String("url", ep.URL),
			zap.Error(err),
		)
		return false
	}

	// Written before alert evaluation so a slow evaluation step cannot
	// cause a re-probe on the next tick.
	if err := m.Endpoints.UpdateLastChecked(ctx, ep.ID, now); err != nil {
		m.Logger.Warn("monitor_last_checked_error",
			zap.String("endpoint_id", string(ep.ID)),
			zap.Error(err),
		)
		return false
	}

	open, err := m.Alerts.FindOpen(ctx, ep.ID)
	if err != nil {
		m.Logger.Warn("monitor_find_open_error",
			zap.String("endpoint_id", string(ep.ID)),
			zap.Error(err),
		)
		return false
	}

	act := alert.Evaluate(ep, out, open, now)
	switch act.Kind {
	case alert.Create:
		a := &domain.Alert{EndpointID: ep.ID, Type: act.Type, TriggeredAt: now}
		if err := m.Alerts.Raise(ctx, a); err != nil {
			m.Logger.Warn("monitor_alert_raise_error",
				zap.String("endpoint_id", string(ep.ID)),
				zap.Error(err),
			)
			return false
		}
		m.Logger.Info("alert_opened",
			zap.String("endpoint_id", string(ep.ID)),
			zap.String("type", string(act.Type)),
			zap.Int("status", out.StatusCode),
			zap.Int64("latency_ms", out.LatencyMs),
		)
		m.sendNotification(ctx, act)

	case alert.Resolve:
		if err := m.Alerts.Resolve(ctx, act.AlertID, now); err != nil {
			m.Logger.Warn("monitor_alert_resolve_error",
				zap.String("endpoint_id", string(ep.ID)),
				zap.Error(err),
			)
			return false
		}
		m.Logger.Info("alert_resolved",
			zap.String("endpoint_id", string(ep.ID)),
			zap.String("alert_id", act.AlertID),
		)
		m.sendNotification(ctx, act)
	}

	m.Logger.Debug("monitor_checked",
		zap.String("endpoint_id", string(ep.ID)),
		zap.String("url", ep.URL),
		zap.Int("status", out.StatusCode),
		zap.Int64("latency_ms", out.LatencyMs),
		zap.String("error", out.Error),
	)
	return true
}

// sendNotification is best-effort; the alert state change is already
// committed and a send failure does not roll it back.
func (m *Monitor) sendNotification(ctx context.Context, act alert.Action) {
	if m.Notifier == nil {
		return
	}
	if err := m.Notifier.Send(ctx, act.Subject, act.Body); err != nil {
		m.Logger.Warn("notify_error", zap.Error(err))
	}
}
