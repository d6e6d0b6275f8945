package domain

import "time"

// Due reports whether the endpoint's check interval has elapsed since its
// last check. Never-checked endpoints are always due.
func (e *Endpoint) Due(now time.Time) bool {
	if e.LastCheckedAt == nil {
		return true
	}
	return now.Sub(*e.LastCheckedAt) >= time.Duration(e.IntervalSeconds)*time.Second
}

// SelectDue filters the roster down to endpoints due for a check at now.
func SelectDue(endpoints []*Endpoint, now time.Time) []*Endpoint {
	due := make([]*Endpoint, 0, len(endpoints))
	for _, ep := range endpoints {
		if ep.Due(now) {
			due = append(due, ep)
		}
	}
	return due
}
