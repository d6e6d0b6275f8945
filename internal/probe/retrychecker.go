package probe

import (
	"context"
	"time"
)

// RetryChecker re-probes on transport failures and 5xx responses. It wraps
// the synchronous check done when an endpoint is registered; the scheduler
// probes each endpoint once per cycle and does not use it.
type RetryChecker struct {
	Inner    Checker
	Attempts int
	Backoff  time.Duration
}

func (r *RetryChecker) Check(ctx context.Context, url string) Outcome {
	attempts := r.Attempts
	if attempts < 1 {
		attempts = 1
	}
	var last Outcome
	for i := 0; i < attempts; i++ {
		last = r.Inner.Check(ctx, url)
		if !last.Failed() && last.StatusCode < 500 {
			return last
		}
		if i < attempts-1 {
			time.Sleep(r.Backoff)
		}
	}
	if last.Error != "" {
		last.Error = last.Error + " (after retries)"
	}
	return last
}
