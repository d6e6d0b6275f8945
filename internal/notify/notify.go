package notify

import "context"

// Notifier delivers an alert message. Sends are fire-and-forget from the
// scheduler's point of view: failures are logged by the caller, never
// propagated.
type Notifier interface {
	Send(ctx context.Context, subject, body string) error
}

// Multi fans a message out to every configured sink. Nil entries are
// skipped; the first failure is reported after all sends are attempted.
type Multi []Notifier

func (m Multi) Send(ctx context.Context, subject, body string) error {
	var firstErr error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Send(ctx, subject, body); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
