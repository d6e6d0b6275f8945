package probe

import (
	"context"
	"sync/atomic"
	"testing"
)

type seqChecker struct {
	outs []Outcome
	n    atomic.Int32
}

func (s *seqChecker) Check(_ context.Context, _ string) Outcome {
	i := int(s.n.Add(1)) - 1
	if i >= len(s.outs) {
		i = len(s.outs) - 1
	}
	return s.outs[i]
}

func TestRetryChecker_RecoversAfterFailures(t *testing.T) {
	inner := &seqChecker{outs: []Outcome{
		{StatusCode: 0, Error: "connection refused"},
		{StatusCode: 503, LatencyMs: 10},
		{StatusCode: 200, LatencyMs: 12},
	}}
	rc := &RetryChecker{Inner: inner, Attempts: 3}

	out := rc.Check(context.Background(), "https://example.com")
	if out.StatusCode != 200 {
		t.Fatalf("want recovery to 200, got %+v", out)
	}
	if got := inner.n.Load(); got != 3 {
		t.Fatalf("want 3 attempts, got %d", got)
	}
}

func TestRetryChecker_DoesNotRetryClientErrors(t *testing.T) {
	inner := &seqChecker{outs: []Outcome{{StatusCode: 404, LatencyMs: 5}}}
	rc := &RetryChecker{Inner: inner, Attempts: 3}

	out := rc.Check(context.Background(), "https://example.com")
	if out.StatusCode != 404 {
		t.Fatalf("want 404 passed through, got %+v", out)
	}
	if got := inner.n.Load(); got != 1 {
		t.Fatalf("4xx should not retry; got %d attempts", got)
	}
}

func TestRetryChecker_AnnotatesExhaustedRetries(t *testing.T) {
	inner := &seqChecker{outs: []Outcome{{StatusCode: 0, Error: "timeout"}}}
	rc := &RetryChecker{Inner: inner, Attempts: 2}

	out := rc.Check(context.Background(), "https://example.com")
	if out.StatusCode != 0 {
		t.Fatalf("want failure preserved, got %+v", out)
	}
	if out.Error != "timeout (after retries)" {
		t.Fatalf("want annotated error, got %q", out.Error)
	}
}
