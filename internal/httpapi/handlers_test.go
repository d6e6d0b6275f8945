package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/RohanMishra47/api-monitoring-dashboard/internal/domain"
	apimw "github.com/RohanMishra47/api-monitoring-dashboard/internal/httpapi/middleware"
	"github.com/RohanMishra47/api-monitoring-dashboard/internal/probe"
	"github.com/RohanMishra47/api-monitoring-dashboard/internal/repo"
	"github.com/RohanMishra47/api-monitoring-dashboard/internal/repo/memory"
)

type stubChecker struct {
	out probe.Outcome
}

func (s stubChecker) Check(_ context.Context, _ string) probe.Outcome { return s.out }

func newTestRouter(store *memory.Store, keys apimw.Keys) http.Handler {
	srv := NewServer(zap.NewNop(), store, store, store, stubChecker{out: probe.Outcome{StatusCode: 200, LatencyMs: 12}}, 300)
	return srv.Router(keys, 0, 0, 0, 0) // rate limiting off
}

func doJSON(t *testing.T, h http.Handler, method, path, body, apiKey string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestCreateEndpoint(t *testing.T) {
	store := memory.New()
	h := newTestRouter(store, apimw.Keys{})

	w := doJSON(t, h, http.MethodPost, "/api/endpoints",
		`{"name":"api","url":"HTTPS://Example.COM/","interval_seconds":60,"threshold_ms":500}`, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("want 201, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Endpoint domain.Endpoint `json:"endpoint"`
		Result   probe.Outcome   `json:"result"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Endpoint.URL != "https://example.com" {
		t.Fatalf("url not normalized: %q", resp.Endpoint.URL)
	}
	if resp.Result.StatusCode != 200 {
		t.Fatalf("expected the immediate probe result, got %+v", resp.Result)
	}

	// the immediate check is also persisted
	logs, _ := store.ListRecent(context.Background(), resp.Endpoint.ID, time.Now().UTC().Add(-time.Minute), 10)
	if len(logs) != 1 {
		t.Fatalf("want 1 log from the registration probe, got %d", len(logs))
	}
}

type failingLogs struct {
	repo.LogStore
}

func (failingLogs) Append(context.Context, *domain.Log) error {
	return errors.New("insert failed")
}

func TestCreateEndpoint_SucceedsWhenLogWriteFails(t *testing.T) {
	store := memory.New()
	srv := NewServer(zap.NewNop(), store, failingLogs{LogStore: store}, store,
		stubChecker{out: probe.Outcome{StatusCode: 200, LatencyMs: 12}}, 300)
	h := srv.Router(apimw.Keys{}, 0, 0, 0, 0)

	w := doJSON(t, h, http.MethodPost, "/api/endpoints",
		`{"name":"api","url":"https://example.com","interval_seconds":60,"threshold_ms":500}`, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("log write failure must not fail the create; want 201, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Endpoint domain.Endpoint `json:"endpoint"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if got, _ := store.Get(context.Background(), resp.Endpoint.ID); got == nil {
		t.Fatal("endpoint should still be persisted")
	}
}

func TestCreateEndpoint_AppliesDefaultInterval(t *testing.T) {
	h := newTestRouter(memory.New(), apimw.Keys{})

	w := doJSON(t, h, http.MethodPost, "/api/endpoints",
		`{"name":"api","url":"https://example.com","threshold_ms":500}`, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("want 201, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Endpoint domain.Endpoint `json:"endpoint"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Endpoint.IntervalSeconds != 300 {
		t.Fatalf("want default interval 300, got %d", resp.Endpoint.IntervalSeconds)
	}
}

func TestCreateEndpoint_Validation(t *testing.T) {
	h := newTestRouter(memory.New(), apimw.Keys{})

	cases := []struct {
		name string
		body string
	}{
		{"missing name", `{"url":"https://example.com","threshold_ms":500}`},
		{"missing url", `{"name":"api","threshold_ms":500}`},
		{"bad scheme", `{"name":"api","url":"ftp://example.com","threshold_ms":500}`},
		{"bad interval", `{"name":"api","url":"https://example.com","interval_seconds":90,"threshold_ms":500}`},
		{"zero threshold", `{"name":"api","url":"https://example.com","interval_seconds":60}`},
		{"not json", `{{{`},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := doJSON(t, h, http.MethodPost, "/api/endpoints", c.body, "")
			if w.Code != http.StatusBadRequest {
				t.Fatalf("want 400, got %d: %s", w.Code, w.Body.String())
			}
		})
	}
}

func TestListEndpoints(t *testing.T) {
	store := memory.New()
	for _, u := range []string{"https://a.example.com", "https://b.example.com"} {
		_ = store.Create(context.Background(), &domain.Endpoint{Name: "x", URL: u, IntervalSeconds: 60, ThresholdMs: 500})
	}
	h := newTestRouter(store, apimw.Keys{})

	w := doJSON(t, h, http.MethodGet, "/api/endpoints", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", w.Code)
	}
	var eps []domain.Endpoint
	_ = json.Unmarshal(w.Body.Bytes(), &eps)
	if len(eps) != 2 {
		t.Fatalf("want 2 endpoints, got %d", len(eps))
	}
}

func TestUpdateEndpoint(t *testing.T) {
	store := memory.New()
	ep := &domain.Endpoint{Name: "api", URL: "https://example.com", IntervalSeconds: 60, ThresholdMs: 500}
	_ = store.Create(context.Background(), ep)
	h := newTestRouter(store, apimw.Keys{})

	w := doJSON(t, h, http.MethodPatch, "/api/endpoints/"+string(ep.ID),
		`{"threshold_ms":900,"interval_seconds":300}`, "")
	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d: %s", w.Code, w.Body.String())
	}

	got, _ := store.Get(context.Background(), ep.ID)
	if got.ThresholdMs != 900 || got.IntervalSeconds != 300 {
		t.Fatalf("patch not applied: %+v", got)
	}
	if got.Name != "api" {
		t.Fatalf("untouched field changed: %q", got.Name)
	}
}

func TestUpdateEndpoint_Errors(t *testing.T) {
	store := memory.New()
	ep := &domain.Endpoint{Name: "api", URL: "https://example.com", IntervalSeconds: 60, ThresholdMs: 500}
	_ = store.Create(context.Background(), ep)
	h := newTestRouter(store, apimw.Keys{})

	if w := doJSON(t, h, http.MethodPatch, "/api/endpoints/nope", `{"threshold_ms":1}`, ""); w.Code != http.StatusNotFound {
		t.Fatalf("unknown id: want 404, got %d", w.Code)
	}
	if w := doJSON(t, h, http.MethodPatch, "/api/endpoints/"+string(ep.ID), `{}`, ""); w.Code != http.StatusBadRequest {
		t.Fatalf("empty patch: want 400, got %d", w.Code)
	}
	if w := doJSON(t, h, http.MethodPatch, "/api/endpoints/"+string(ep.ID), `{"name":""}`, ""); w.Code != http.StatusBadRequest {
		t.Fatalf("empty name: want 400, got %d", w.Code)
	}
	if w := doJSON(t, h, http.MethodPatch, "/api/endpoints/"+string(ep.ID), `{"interval_seconds":7}`, ""); w.Code != http.StatusBadRequest {
		t.Fatalf("bad interval: want 400, got %d", w.Code)
	}
}

func TestDeleteEndpoint(t *testing.T) {
	store := memory.New()
	ep := &domain.Endpoint{Name: "api", URL: "https://example.com", IntervalSeconds: 60, ThresholdMs: 500}
	_ = store.Create(context.Background(), ep)
	h := newTestRouter(store, apimw.Keys{})

	if w := doJSON(t, h, http.MethodDelete, "/api/endpoints/"+string(ep.ID), "", ""); w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", w.Code)
	}
	if got, _ := store.Get(context.Background(), ep.ID); got != nil {
		t.Fatal("endpoint not deleted")
	}
	if w := doJSON(t, h, http.MethodDelete, "/api/endpoints/"+string(ep.ID), "", ""); w.Code != http.StatusNotFound {
		t.Fatalf("second delete: want 404, got %d", w.Code)
	}
}

func TestEndpointLogs(t *testing.T) {
	store := memory.New()
	ep := &domain.Endpoint{Name: "api", URL: "https://example.com", IntervalSeconds: 60, ThresholdMs: 500}
	_ = store.Create(context.Background(), ep)
	now := time.Now().UTC()
	_ = store.Append(context.Background(), &domain.Log{EndpointID: ep.ID, StatusCode: 200, Timestamp: now})
	_ = store.Append(context.Background(), &domain.Log{EndpointID: ep.ID, StatusCode: 500, Timestamp: now.Add(-48 * time.Hour)})
	h := newTestRouter(store, apimw.Keys{})

	// default 24h window hides the 48h-old entry
	w := doJSON(t, h, http.MethodGet, "/api/endpoints/"+string(ep.ID)+"/logs", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", w.Code)
	}
	var resp struct {
		Logs []domain.Log `json:"logs"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Logs) != 1 || resp.Logs[0].StatusCode != 200 {
		t.Fatalf("want the recent log only, got %+v", resp.Logs)
	}

	// widening the window brings it back
	w = doJSON(t, h, http.MethodGet, "/api/endpoints/"+string(ep.ID)+"/logs?hours=72", "", "")
	resp.Logs = nil
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Logs) != 2 {
		t.Fatalf("want both logs at 72h, got %d", len(resp.Logs))
	}

	if w := doJSON(t, h, http.MethodGet, "/api/endpoints/nope/logs", "", ""); w.Code != http.StatusNotFound {
		t.Fatalf("unknown id: want 404, got %d", w.Code)
	}
}

func TestListAlerts(t *testing.T) {
	store := memory.New()
	a1 := &domain.Alert{EndpointID: "E1", Type: domain.AlertDown}
	a2 := &domain.Alert{EndpointID: "E2", Type: domain.AlertSlow}
	_ = store.Raise(context.Background(), a1)
	_ = store.Raise(context.Background(), a2)
	_ = store.Resolve(context.Background(), a1.ID, time.Now().UTC())
	h := newTestRouter(store, apimw.Keys{})

	w := doJSON(t, h, http.MethodGet, "/api/alerts", "", "")
	var alerts []domain.Alert
	_ = json.Unmarshal(w.Body.Bytes(), &alerts)
	if len(alerts) != 2 {
		t.Fatalf("want full history by default, got %d", len(alerts))
	}

	w = doJSON(t, h, http.MethodGet, "/api/alerts?activeOnly=true", "", "")
	alerts = nil
	_ = json.Unmarshal(w.Body.Bytes(), &alerts)
	if len(alerts) != 1 || alerts[0].Type != domain.AlertSlow {
		t.Fatalf("want only the open alert, got %+v", alerts)
	}
}

func TestRouter_KeyEnforcement(t *testing.T) {
	store := memory.New()
	keys := apimw.Keys{Public: []string{"pub-key"}, Admin: []string{"adm-key"}}
	h := newTestRouter(store, keys)

	// healthz stays open
	if w := doJSON(t, h, http.MethodGet, "/healthz", "", ""); w.Code != http.StatusOK {
		t.Fatalf("healthz should not require a key, got %d", w.Code)
	}

	// reads need some key
	if w := doJSON(t, h, http.MethodGet, "/api/endpoints", "", ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("keyless read: want 401, got %d", w.Code)
	}
	if w := doJSON(t, h, http.MethodGet, "/api/endpoints", "", "pub-key"); w.Code != http.StatusOK {
		t.Fatalf("public read: want 200, got %d", w.Code)
	}
	if w := doJSON(t, h, http.MethodGet, "/api/endpoints", "", "adm-key"); w.Code != http.StatusOK {
		t.Fatalf("admin read: want 200, got %d", w.Code)
	}

	// writes need the admin key
	body := `{"name":"api","url":"https://example.com","interval_seconds":60,"threshold_ms":500}`
	if w := doJSON(t, h, http.MethodPost, "/api/endpoints", body, "pub-key"); w.Code != http.StatusForbidden {
		t.Fatalf("public write: want 403, got %d", w.Code)
	}
	if w := doJSON(t, h, http.MethodPost, "/api/endpoints", body, ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("keyless write: want 401, got %d", w.Code)
	}
	if w := doJSON(t, h, http.MethodPost, "/api/endpoints", body, "adm-key"); w.Code != http.StatusCreated {
		t.Fatalf("admin write: want 201, got %d", w.Code)
	}
}
