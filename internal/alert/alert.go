// Package alert decides alert lifecycle transitions from probe outcomes.
// Evaluate is pure: it returns an Action value describing what to persist
// and notify, and the scheduler applies it. That keeps the decision logic
// testable without network or store mocks.
package alert

import (
	"fmt"
	"time"

	"github.com/RohanMishra47/api-monitoring-dashboard/internal/domain"
	"github.com/RohanMishra47/api-monitoring-dashboard/internal/probe"
)

type Kind int

const (
	NoOp Kind = iota
	Create
	Resolve
)

// Action is the transition decided for one probe outcome. Type is set for
// Create; AlertID for Resolve. Subject and Body carry the notification
// payload for both.
type Action struct {
	Kind    Kind
	Type    domain.AlertType
	AlertID string
	Subject string
	Body    string
}

// Classify derives the issue flags from an outcome. An endpoint is down on
// a transport failure or any 5xx; slow when latency strictly exceeds the
// threshold.
func Classify(out probe.Outcome, thresholdMs int) (down, slow bool) {
	down = out.StatusCode == 0 || out.StatusCode >= 500
	slow = out.LatencyMs > int64(thresholdMs)
	return down, slow
}

// Evaluate decides the transition for one endpoint given its latest outcome
// and the currently open alert (nil when none). DOWN takes precedence when
// an endpoint is both down and slow. An ongoing alert keeps its original
// type until it resolves; a persisting issue is a no-op.
func Evaluate(ep *domain.Endpoint, out probe.Outcome, open *domain.Alert, now time.Time) Action {
	down, slow := Classify(out, ep.ThresholdMs)
	hasIssue := down || slow

	switch {
	case hasIssue && open == nil:
		typ := domain.AlertSlow
		if down {
			typ = domain.AlertDown
		}
		subject, body := payload(ep, out, typ, false, now)
		return Action{Kind: Create, Type: typ, Subject: subject, Body: body}

	case !hasIssue && open != nil:
		subject, body := payload(ep, out, open.Type, true, now)
		return Action{Kind: Resolve, AlertID: open.ID, Subject: subject, Body: body}

	default:
		return Action{Kind: NoOp}
	}
}

func payload(ep *domain.Endpoint, out probe.Outcome, typ domain.AlertType, resolved bool, now time.Time) (subject, body string) {
	name := ep.Name
	if name == "" {
		name = ep.URL
	}

	switch {
	case resolved:
		subject = fmt.Sprintf("🟢 %s recovered", name)
	case typ == domain.AlertDown:
		subject = fmt.Sprintf("🔴 %s is DOWN", name)
	default:
		subject = fmt.Sprintf("🟡 %s is SLOW", name)
	}

	httpTxt := "n/a"
	if out.StatusCode != 0 {
		httpTxt = fmt.Sprintf("%d", out.StatusCode)
	}
	errTxt := out.Error
	if errTxt == "" {
		errTxt = "none"
	}
	body = fmt.Sprintf(
		"URL: %s\nHTTP: %s\nLatency: %d ms\nError: %s\nChecked: %s",
		ep.URL, httpTxt, out.LatencyMs, errTxt, now.Format(time.RFC3339),
	)
	return subject, body
}
