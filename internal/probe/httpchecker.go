package probe

import (
	"context"
	"net/http"
	"time"
)

type HTTPChecker struct {
	Client *http.Client
}

func NewHTTPChecker(timeout time.Duration) *HTTPChecker {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPChecker{
		Client: &http.Client{Timeout: timeout},
	}
}

// Check issues a single GET against the url. The client timeout is a hard
// bound; ctx may impose a shorter one.
func (h *HTTPChecker) Check(ctx context.Context, url string) Outcome {
	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Outcome{LatencyMs: time.Since(start).Milliseconds(), Error: err.Error()}
	}

	resp, err := h.Client.Do(req)
	latency := time.Since(start).Milliseconds()
	if err != nil {
		return Outcome{LatencyMs: latency, Error: err.Error()}
	}
	defer resp.Body.Close()

	return Outcome{StatusCode: resp.StatusCode, LatencyMs: latency}
}
