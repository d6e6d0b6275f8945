package domain

import "time"

type EndpointID string

type AlertType string

const (
	AlertDown AlertType = "DOWN"
	AlertSlow AlertType = "SLOW"
)

// Endpoint is a user-registered URL monitored on a recurring interval.
// LastCheckedAt is nil until the first probe completes.
type Endpoint struct {
	ID              EndpointID `json:"id"`
	Name            string     `json:"name"`
	URL             string     `json:"url"`
	IntervalSeconds int        `json:"interval_seconds"`
	ThresholdMs     int        `json:"threshold_ms"`
	OwnerID         string     `json:"owner_id,omitempty"`
	LastCheckedAt   *time.Time `json:"last_checked_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// Log is one probe result. StatusCode 0 signals a network/timeout failure;
// Error is empty when a response was received. Immutable once created.
type Log struct {
	ID         string     `json:"id"`
	EndpointID EndpointID `json:"endpoint_id"`
	StatusCode int        `json:"status_code"`
	LatencyMs  int64      `json:"latency_ms"`
	Error      string     `json:"error,omitempty"`
	Timestamp  time.Time  `json:"timestamp"`
}

// Alert is an open or resolved incident for one endpoint. ResolvedAt nil
// means currently open; at most one open alert exists per endpoint.
type Alert struct {
	ID          string     `json:"id"`
	EndpointID  EndpointID `json:"endpoint_id"`
	Type        AlertType  `json:"type"`
	TriggeredAt time.Time  `json:"triggered_at"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty"`
}

func (a *Alert) Open() bool {
	return a != nil && a.ResolvedAt == nil
}
