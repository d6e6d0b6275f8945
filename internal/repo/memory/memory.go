// Package memory is an in-process store used by tests and local runs.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/RohanMishra47/api-monitoring-dashboard/internal/domain"
)

type Store struct {
	mu        sync.RWMutex
	endpoints map[domain.EndpointID]*domain.Endpoint
	logs      []*domain.Log
	alerts    []*domain.Alert
}

func New() *Store {
	return &Store{
		endpoints: make(map[domain.EndpointID]*domain.Endpoint),
		logs:      make([]*domain.Log, 0, 128),
	}
}

// ---- EndpointStore ----

func (m *Store) Create(ctx context.Context, ep *domain.Endpoint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ep.ID == "" {
		ep.ID = domain.EndpointID(uuid.NewString())
	}
	if ep.CreatedAt.IsZero() {
		ep.CreatedAt = time.Now().UTC()
	}
	cp := *ep
	m.endpoints[ep.ID] = &cp
	return nil
}

func (m *Store) List(ctx context.Context) ([]*domain.Endpoint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.Endpoint, 0, len(m.endpoints))
	for _, ep := range m.endpoints {
		cp := *ep
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *Store) Get(ctx context.Context, id domain.EndpointID) (*domain.Endpoint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ep, ok := m.endpoints[id]
	if !ok {
		return nil, nil
	}
	cp := *ep
	return &cp, nil
}

func (m *Store) Update(ctx context.Context, ep *domain.Endpoint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.endpoints[ep.ID]; !ok {
		return nil
	}
	cp := *ep
	m.endpoints[ep.ID] = &cp
	return nil
}

func (m *Store) Delete(ctx context.Context, id domain.EndpointID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.endpoints, id)

	kept := m.logs[:0]
	for _, l := range m.logs {
		if l.EndpointID != id {
			kept = append(kept, l)
		}
	}
	m.logs = kept

	keptA := m.alerts[:0]
	for _, a := range m.alerts {
		if a.EndpointID != id {
			keptA = append(keptA, a)
		}
	}
	m.alerts = keptA
	return nil
}

func (m *Store) UpdateLastChecked(ctx context.Context, id domain.EndpointID, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ep, ok := m.endpoints[id]; ok {
		t := at
		ep.LastCheckedAt = &t
	}
	return nil
}

// ---- LogStore ----

func (m *Store) Append(ctx context.Context, l *domain.Log) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.Timestamp.IsZero() {
		l.Timestamp = time.Now().UTC()
	}
	cp := *l
	m.logs = append(m.logs, &cp)
	return nil
}

func (m *Store) ListRecent(ctx context.Context, id domain.EndpointID, since time.Time, limit int) ([]*domain.Log, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.Log, 0, limit)
	for _, l := range m.logs {
		if l.EndpointID == id && !l.Timestamp.Before(since) {
			cp := *l
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Store) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var deleted int64
	kept := m.logs[:0]
	for _, l := range m.logs {
		if l.Timestamp.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, l)
	}
	m.logs = kept
	return deleted, nil
}

// ---- AlertStore ----

func (m *Store) FindOpen(ctx context.Context, id domain.EndpointID) (*domain.Alert, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, a := range m.alerts {
		if a.EndpointID == id && a.ResolvedAt == nil {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *Store) Raise(ctx context.Context, a *domain.Alert) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.TriggeredAt.IsZero() {
		a.TriggeredAt = time.Now().UTC()
	}
	cp := *a
	m.alerts = append(m.alerts, &cp)
	return nil
}

func (m *Store) Resolve(ctx context.Context, alertID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.alerts {
		if a.ID == alertID {
			t := at
			a.ResolvedAt = &t
			return nil
		}
	}
	return nil
}

func (m *Store) ListAlerts(ctx context.Context, activeOnly bool, limit int) ([]*domain.Alert, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.Alert, 0, len(m.alerts))
	for _, a := range m.alerts {
		if activeOnly && a.ResolvedAt != nil {
			continue
		}
		cp := *a
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TriggeredAt.After(out[j].TriggeredAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
