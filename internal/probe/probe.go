package probe

import "context"

// Outcome is the unified result of a single probe.
//
// StatusCode is 0 for transport, DNS, and timeout failures; any received
// response (including 4xx/5xx) records its status code with an empty Error.
// LatencyMs is the elapsed wall time, up to the point of failure when the
// request never completed.
type Outcome struct {
	StatusCode int    `json:"status_code"`
	LatencyMs  int64  `json:"latency_ms"`
	Error      string `json:"error,omitempty"`
}

// Failed reports whether no HTTP response was received at all.
func (o Outcome) Failed() bool {
	return o.StatusCode == 0
}

// Checker performs a single probe against a target URL. Implementations
// never return a Go error; every failure mode is encoded in the Outcome so
// one unreachable endpoint cannot abort a batch.
type Checker interface {
	Check(ctx context.Context, url string) Outcome
}
