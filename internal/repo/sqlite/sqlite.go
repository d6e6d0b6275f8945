// Package sqlite is a single-file store for small deployments that don't
// want to run postgres.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/RohanMishra47/api-monitoring-dashboard/internal/domain"
	"github.com/RohanMishra47/api-monitoring-dashboard/internal/repo"
)

var _ repo.EndpointStore = (*Store)(nil)
var _ repo.LogStore = (*Store)(nil)
var _ repo.AlertStore = (*Store)(nil)

type Store struct {
	db *sql.DB
}

func New(ctx context.Context, path string) (*Store, error) {
	// modernc's driver takes pragmas as _pragma=name(value); the
	// mattn-style _foreign_keys=on form is silently ignored and would
	// leave cascade deletes off.
	db, err := sql.Open("sqlite", fmt.Sprintf("%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)", path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate(ctx context.Context) error {
	schema := `
CREATE TABLE IF NOT EXISTS endpoints (
	id               TEXT PRIMARY KEY,
	name             TEXT NOT NULL,
	url              TEXT NOT NULL,
	interval_seconds INTEGER NOT NULL,
	threshold_ms     INTEGER NOT NULL,
	owner_id         TEXT NOT NULL DEFAULT '',
	last_checked_at  TEXT,
	created_at       TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS logs (
	id          TEXT PRIMARY KEY,
	endpoint_id TEXT NOT NULL,
	status_code INTEGER NOT NULL,
	latency_ms  INTEGER NOT NULL,
	error       TEXT,
	ts          TEXT NOT NULL,
	FOREIGN KEY(endpoint_id) REFERENCES endpoints(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_logs_endpoint_ts ON logs (endpoint_id, ts DESC);
CREATE INDEX IF NOT EXISTS idx_logs_ts ON logs (ts);

CREATE TABLE IF NOT EXISTS alerts (
	id           TEXT PRIMARY KEY,
	endpoint_id  TEXT NOT NULL,
	type         TEXT NOT NULL,
	triggered_at TEXT NOT NULL,
	resolved_at  TEXT,
	FOREIGN KEY(endpoint_id) REFERENCES endpoints(id) ON DELETE CASCADE
);
CREATE UNIQUE INDEX IF NOT EXISTS uq_alerts_open
	ON alerts (endpoint_id) WHERE resolved_at IS NULL;
`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

const timeLayout = time.RFC3339Nano

func fmtTime(t time.Time) string { return t.UTC().Format(timeLayout) }

func parseTime(s string) time.Time {
	t, _ := time.Parse(timeLayout, s)
	return t
}

// ---- EndpointStore ----

func (s *Store) Create(ctx context.Context, ep *domain.Endpoint) error {
	if ep.ID == "" {
		ep.ID = domain.EndpointID(uuid.NewString())
	}
	if ep.CreatedAt.IsZero() {
		ep.CreatedAt = time.Now().UTC()
	}
	var lastChecked *string
	if ep.LastCheckedAt != nil {
		v := fmtTime(*ep.LastCheckedAt)
		lastChecked = &v
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO endpoints (id, name, url, interval_seconds, threshold_ms, owner_id, last_checked_at, created_at)
		 VALUES (?,?,?,?,?,?,?,?)`,
		string(ep.ID), ep.Name, ep.URL, ep.IntervalSeconds, ep.ThresholdMs, ep.OwnerID, lastChecked, fmtTime(ep.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert endpoint: %w", err)
	}
	return nil
}

func (s *Store) List(ctx context.Context) ([]*domain.Endpoint, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, url, interval_seconds, threshold_ms, owner_id, last_checked_at, created_at
		   FROM endpoints
		  ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list endpoints: %w", err)
	}
	defer rows.Close()

	var out []*domain.Endpoint
	for rows.Next() {
		ep, err := scanEndpoint(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ep)
	}
	return out, rows.Err()
}

func (s *Store) Get(ctx context.Context, id domain.EndpointID) (*domain.Endpoint, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, url, interval_seconds, threshold_ms, owner_id, last_checked_at, created_at
		   FROM endpoints WHERE id = ?`, string(id))
	ep, err := scanEndpoint(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get endpoint: %w", err)
	}
	return ep, nil
}

func (s *Store) Update(ctx context.Context, ep *domain.Endpoint) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE endpoints
		    SET name=?, url=?, interval_seconds=?, threshold_ms=?
		  WHERE id=?`,
		ep.Name, ep.URL, ep.IntervalSeconds, ep.ThresholdMs, string(ep.ID),
	)
	if err != nil {
		return fmt.Errorf("update endpoint: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id domain.EndpointID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM endpoints WHERE id=?`, string(id))
	if err != nil {
		return fmt.Errorf("delete endpoint: %w", err)
	}
	return nil
}

func (s *Store) UpdateLastChecked(ctx context.Context, id domain.EndpointID, at time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE endpoints SET last_checked_at=? WHERE id=?`, fmtTime(at), string(id))
	if err != nil {
		return fmt.Errorf("update last_checked_at: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEndpoint(row rowScanner) (*domain.Endpoint, error) {
	var (
		ep          domain.Endpoint
		id          string
		lastChecked *string
		createdAt   string
	)
	if err := row.Scan(&id, &ep.Name, &ep.URL, &ep.IntervalSeconds, &ep.ThresholdMs, &ep.OwnerID, &lastChecked, &createdAt); err != nil {
		return nil, err
	}
	ep.ID = domain.EndpointID(id)
	ep.CreatedAt = parseTime(createdAt)
	if lastChecked != nil {
		t := parseTime(*lastChecked)
		ep.LastCheckedAt = &t
	}
	return &ep, nil
}

// ---- LogStore ----

func (s *Store) Append(ctx context.Context, l *domain.Log) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.Timestamp.IsZero() {
		l.Timestamp = time.Now().UTC()
	}
	var errTxt *string
	if l.Error != "" {
		errTxt = &l.Error
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO logs (id, endpoint_id, status_code, latency_ms, error, ts)
		 VALUES (?,?,?,?,?,?)`,
		l.ID, string(l.EndpointID), l.StatusCode, l.LatencyMs, errTxt, fmtTime(l.Timestamp),
	)
	if err != nil {
		return fmt.Errorf("insert log: %w", err)
	}
	return nil
}

func (s *Store) ListRecent(ctx context.Context, id domain.EndpointID, since time.Time, limit int) ([]*domain.Log, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, endpoint_id, status_code, latency_ms, error, ts
		   FROM logs
		  WHERE endpoint_id = ? AND ts >= ?
		  ORDER BY ts ASC
		  LIMIT ?`, string(id), fmtTime(since), limit)
	if err != nil {
		return nil, fmt.Errorf("list logs: %w", err)
	}
	defer rows.Close()

	var out []*domain.Log
	for rows.Next() {
		var (
			l      domain.Log
			epID   string
			errTxt *string
			ts     string
		)
		if err := rows.Scan(&l.ID, &epID, &l.StatusCode, &l.LatencyMs, &errTxt, &ts); err != nil {
			return nil, fmt.Errorf("scan log: %w", err)
		}
		l.EndpointID = domain.EndpointID(epID)
		l.Timestamp = parseTime(ts)
		if errTxt != nil {
			l.Error = *errTxt
		}
		out = append(out, &l)
	}
	return out, rows.Err()
}

func (s *Store) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM logs WHERE ts < ?`, fmtTime(cutoff))
	if err != nil {
		return 0, fmt.Errorf("delete logs: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// ---- AlertStore ----

func (s *Store) FindOpen(ctx context.Context, id domain.EndpointID) (*domain.Alert, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, endpoint_id, type, triggered_at, resolved_at
		   FROM alerts
		  WHERE endpoint_id = ? AND resolved_at IS NULL`, string(id))
	a, err := scanAlert(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find open alert: %w", err)
	}
	return a, nil
}

func (s *Store) Raise(ctx context.Context, a *domain.Alert) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.TriggeredAt.IsZero() {
		a.TriggeredAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO alerts (id, endpoint_id, type, triggered_at, resolved_at)
		 VALUES (?,?,?,?,NULL)`,
		a.ID, string(a.EndpointID), string(a.Type), fmtTime(a.TriggeredAt),
	)
	if err != nil {
		return fmt.Errorf("insert alert: %w", err)
	}
	return nil
}

func (s *Store) Resolve(ctx context.Context, alertID string, at time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE alerts SET resolved_at=? WHERE id=? AND resolved_at IS NULL`,
		fmtTime(at), alertID)
	if err != nil {
		return fmt.Errorf("resolve alert: %w", err)
	}
	return nil
}

func (s *Store) ListAlerts(ctx context.Context, activeOnly bool, limit int) ([]*domain.Alert, error) {
	q := `SELECT id, endpoint_id, type, triggered_at, resolved_at FROM alerts`
	if activeOnly {
		q += ` WHERE resolved_at IS NULL`
	}
	q += ` ORDER BY triggered_at DESC LIMIT ?`

	rows, err := s.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	defer rows.Close()

	var out []*domain.Alert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanAlert(row rowScanner) (*domain.Alert, error) {
	var (
		a         domain.Alert
		epID      string
		typ       string
		triggered string
		resolved  *string
	)
	if err := row.Scan(&a.ID, &epID, &typ, &triggered, &resolved); err != nil {
		return nil, err
	}
	a.EndpointID = domain.EndpointID(epID)
	a.Type = domain.AlertType(typ)
	a.TriggeredAt = parseTime(triggered)
	if resolved != nil {
		t := parseTime(*resolved)
		a.ResolvedAt = &t
	}
	return &a, nil
}
