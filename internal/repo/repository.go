package repo

import (
	"context"
	"time"

	"github.com/RohanMishra47/api-monitoring-dashboard/internal/domain"
)

// Store ports. Any adapter can back them. Lookups return nil, nil when
// the row does not exist.

type EndpointStore interface {
	Create(ctx context.Context, ep *domain.Endpoint) error
	List(ctx context.Context) ([]*domain.Endpoint, error)
	Get(ctx context.Context, id domain.EndpointID) (*domain.Endpoint, error)
	Update(ctx context.Context, ep *domain.Endpoint) error
	// Delete removes the endpoint and cascades to its logs and alerts.
	Delete(ctx context.Context, id domain.EndpointID) error
	// UpdateLastChecked is last-write-wins; overlapping cycles may race on
	// it and the newest timestamp stands.
	UpdateLastChecked(ctx context.Context, id domain.EndpointID, at time.Time) error
}

type LogStore interface {
	Append(ctx context.Context, l *domain.Log) error
	// ListRecent returns logs for an endpoint since the given time,
	// oldest first, capped at limit.
	ListRecent(ctx context.Context, id domain.EndpointID, since time.Time, limit int) ([]*domain.Log, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type AlertStore interface {
	// FindOpen returns the endpoint's unresolved alert, nil when none.
	FindOpen(ctx context.Context, id domain.EndpointID) (*domain.Alert, error)
	Raise(ctx context.Context, a *domain.Alert) error
	Resolve(ctx context.Context, alertID string, at time.Time) error
	// ListAlerts returns alerts newest first; activeOnly restricts to
	// unresolved ones.
	ListAlerts(ctx context.Context, activeOnly bool, limit int) ([]*domain.Alert, error)
}
