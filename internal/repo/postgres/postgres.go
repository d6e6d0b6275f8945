package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/RohanMishra47/api-monitoring-dashboard/internal/domain"
	"github.com/RohanMishra47/api-monitoring-dashboard/internal/repo"
)

var _ repo.EndpointStore = (*Store)(nil)
var _ repo.LogStore = (*Store)(nil)
var _ repo.AlertStore = (*Store)(nil)

type Store struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, dsn string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.ParseConfig: %w", err)
	}
	p, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}
	ctxPing, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := p.Ping(ctxPing); err != nil {
		p.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	s := &Store{pool: p}
	if err := s.ensureSchema(ctx); err != nil {
		p.Close()
		return nil, fmt.Errorf("schema: %w", err)
	}
	return s, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *Store) ensureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS endpoints (
	id               TEXT PRIMARY KEY,
	name             TEXT NOT NULL,
	url              TEXT NOT NULL,
	interval_seconds INTEGER NOT NULL,
	threshold_ms     INTEGER NOT NULL,
	owner_id         TEXT NOT NULL DEFAULT '',
	last_checked_at  TIMESTAMPTZ,
	created_at       TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS logs (
	id          TEXT PRIMARY KEY,
	endpoint_id TEXT NOT NULL REFERENCES endpoints(id) ON DELETE CASCADE,
	status_code INTEGER NOT NULL,
	latency_ms  BIGINT NOT NULL,
	error       TEXT,
	ts          TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_logs_endpoint_ts ON logs (endpoint_id, ts DESC);
CREATE INDEX IF NOT EXISTS idx_logs_ts ON logs (ts);

CREATE TABLE IF NOT EXISTS alerts (
	id           TEXT PRIMARY KEY,
	endpoint_id  TEXT NOT NULL REFERENCES endpoints(id) ON DELETE CASCADE,
	type         TEXT NOT NULL,
	triggered_at TIMESTAMPTZ NOT NULL,
	resolved_at  TIMESTAMPTZ
);
CREATE UNIQUE INDEX IF NOT EXISTS uq_alerts_open
	ON alerts (endpoint_id) WHERE resolved_at IS NULL;
`)
	return err
}

// ---- EndpointStore ----

func (s *Store) Create(ctx context.Context, ep *domain.Endpoint) error {
	if ep.ID == "" {
		ep.ID = domain.EndpointID(uuid.NewString())
	}
	if ep.CreatedAt.IsZero() {
		ep.CreatedAt = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO endpoints (id, name, url, interval_seconds, threshold_ms, owner_id, last_checked_at, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		string(ep.ID), ep.Name, ep.URL, ep.IntervalSeconds, ep.ThresholdMs, ep.OwnerID, ep.LastCheckedAt, ep.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert endpoint: %w", err)
	}
	return nil
}

func (s *Store) List(ctx context.Context) ([]*domain.Endpoint, error) {
	rows, err := s.pool.Query(ctx,
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
	row := s.pool.QueryRow(ctx,
		`SELECT id, name, url, interval_seconds, threshold_ms, owner_id, last_checked_at, created_at
		   FROM endpoints WHERE id = $1`, string(id))
	ep, err := scanEndpoint(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get endpoint: %w", err)
	}
	return ep, nil
}

func (s *Store) Update(ctx context.Context, ep *domain.Endpoint) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE endpoints
		    SET name=$2, url=$3, interval_seconds=$4, threshold_ms=$5
		  WHERE id=$1`,
		string(ep.ID), ep.Name, ep.URL, ep.IntervalSeconds, ep.ThresholdMs,
	)
	if err != nil {
		return fmt.Errorf("update endpoint: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id domain.EndpointID) error {
	// logs and alerts go with it via ON DELETE CASCADE
	_, err := s.pool.Exec(ctx, `DELETE FROM endpoints WHERE id=$1`, string(id))
	if err != nil {
		return fmt.Errorf("delete endpoint: %w", err)
	}
	return nil
}

func (s *Store) UpdateLastChecked(ctx context.Context, id domain.EndpointID, at time.Time) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE endpoints SET last_checked_at=$2 WHERE id=$1`, string(id), at)
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
		lastChecked *time.Time
	)
	if err := row.Scan(&id, &ep.Name, &ep.URL, &ep.IntervalSeconds, &ep.ThresholdMs, &ep.OwnerID, &lastChecked, &ep.CreatedAt); err != nil {
		return nil, err
	}
	ep.ID = domain.EndpointID(id)
	ep.LastCheckedAt = lastChecked
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
	_, err := s.pool.Exec(ctx,
		`INSERT INTO logs (id, endpoint_id, status_code, latency_ms, error, ts)
		 VALUES ($1,$2,$3,$4,$5,$6)`,
		l.ID, string(l.EndpointID), l.StatusCode, l.LatencyMs, errTxt, l.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert log: %w", err)
	}
	return nil
}

func (s *Store) ListRecent(ctx context.Context, id domain.EndpointID, since time.Time, limit int) ([]*domain.Log, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, endpoint_id, status_code, latency_ms, error, ts
		   FROM logs
		  WHERE endpoint_id = $1 AND ts >= $2
		  ORDER BY ts ASC
		  LIMIT $3`, string(id), since, limit)
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
		)
		if err := rows.Scan(&l.ID, &epID, &l.StatusCode, &l.LatencyMs, &errTxt, &l.Timestamp); err != nil {
			return nil, fmt.Errorf("scan log: %w", err)
		}
		l.EndpointID = domain.EndpointID(epID)
		if errTxt != nil {
			l.Error = *errTxt
		}
		out = append(out, &l)
	}
	return out, rows.Err()
}

func (s *Store) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM logs WHERE ts < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete logs: %w", err)
	}
	return tag.RowsAffected(), nil
}

// ---- AlertStore ----

func (s *Store) FindOpen(ctx context.Context, id domain.EndpointID) (*domain.Alert, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, endpoint_id, type, triggered_at, resolved_at
		   FROM alerts
		  WHERE endpoint_id = $1 AND resolved_at IS NULL`, string(id))
	a, err := scanAlert(row)
	if err != nil {
		if err == pgx.ErrNoRows {
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
	// uq_alerts_open keeps this to one open alert per endpoint even if
	// two writers race.
	_, err := s.pool.Exec(ctx,
		`INSERT INTO alerts (id, endpoint_id, type, triggered_at, resolved_at)
		 VALUES ($1,$2,$3,$4,NULL)`,
		a.ID, string(a.EndpointID), string(a.Type), a.TriggeredAt,
	)
	if err != nil {
		return fmt.Errorf("insert alert: %w", err)
	}
	return nil
}

func (s *Store) Resolve(ctx context.Context, alertID string, at time.Time) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE alerts SET resolved_at=$2 WHERE id=$1 AND resolved_at IS NULL`,
		alertID, at)
	if err != nil {
		return fmt.Errorf("resolve alert: %w", err)
	}
	return nil
}

func (s *Store) ListAlerts(ctx context.Context, activeOnly bool, limit int) ([]*domain.Alert, error) {
	q := `SELECT id, endpoint_id, type, triggered_at, resolved_at
	        FROM alerts`
	if activeOnly {
		q += ` WHERE resolved_at IS NULL`
	}
	q += ` ORDER BY triggered_at DESC LIMIT $1`

	rows, err := s.pool.Query(ctx, q, limit)
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
		a        domain.Alert
		epID     string
		typ      string
		resolved *time.Time
	)
	if err := row.Scan(&a.ID, &epID, &typ, &a.TriggeredAt, &resolved); err != nil {
		return nil, err
	}
	a.EndpointID = domain.EndpointID(epID)
	a.Type = domain.AlertType(typ)
	a.ResolvedAt = resolved
	return &a, nil
}
