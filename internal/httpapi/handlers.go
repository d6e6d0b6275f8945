package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/RohanMishra47/api-monitoring-dashboard/internal/domain"
	"github.com/RohanMishra47/api-monitoring-dashboard/internal/probe"
)

type createPayload struct {
	Name            string `json:"name"`
	URL             string `json:"url"`
	IntervalSeconds int    `json:"interval_seconds"`
	ThresholdMs     int    `json:"threshold_ms"`
}

type updatePayload struct {
	Name            *string `json:"name"`
	URL             *string `json:"url"`
	IntervalSeconds *int    `json:"interval_seconds"`
	ThresholdMs     *int    `json:"threshold_ms"`
}

func (s *Server) handleCreateEndpoint(w http.ResponseWriter, r *http.Request) {
	var p createPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "bad payload")
		return
	}
	if p.Name == "" || p.URL == "" {
		writeError(w, http.StatusBadRequest, "name and url are required")
		return
	}
	if !isValidHTTPURL(p.URL) {
		writeError(w, http.StatusBadRequest, "url must be http or https")
		return
	}
	if p.IntervalSeconds == 0 {
		p.IntervalSeconds = s.DefaultInterval
	}
	if !allowedIntervals[p.IntervalSeconds] {
		writeError(w, http.StatusBadRequest, "interval_seconds must be one of 60, 300, 600, 900")
		return
	}
	if p.ThresholdMs <= 0 {
		writeError(w, http.StatusBadRequest, "threshold_ms must be a positive number")
		return
	}

	ep := &domain.Endpoint{
		Name:            p.Name,
		URL:             normalizeHTTPURL(p.URL),
		IntervalSeconds: p.IntervalSeconds,
		ThresholdMs:     p.ThresholdMs,
		CreatedAt:       time.Now().UTC(),
	}
	if err := s.Endpoints.Create(r.Context(), ep); err != nil {
		writeError(w, http.StatusInternalServerError, "could not create endpoint")
		return
	}

	// One synchronous probe for immediate feedback; the scheduler takes
	// over from the next cycle.
	out := s.Checker.Check(r.Context(), ep.URL)
	if out.Failed() {
		dns := probe.CheckDNS(extractHost(ep.URL))
		s.Logger.Info("dns_check",
			zap.String("domain", dns.Domain),
			zap.String("class", dns.Class),
			zap.Bool("has_addr", dns.HasAddr),
			zap.Strings("nameservers", dns.Nameservers),
			zap.String("cname", dns.CNAME),
			zap.String("resolver_error", dns.ResolverError),
		)
	}

	l := &domain.Log{
		EndpointID: ep.ID,
		StatusCode: out.StatusCode,
		LatencyMs:  out.LatencyMs,
		Error:      out.Error,
		Timestamp:  time.Now().UTC(),
	}
	// Best-effort: the endpoint is already created and the probe result is
	// returned inline either way.
	if err := s.Logs.Append(r.Context(), l); err != nil {
		s.Logger.Warn("registration_log_append_error",
			zap.String("id", string(ep.ID)),
			zap.Error(err),
		)
	}

	s.Logger.Info("endpoint_created",
		zap.String("id", string(ep.ID)),
		zap.String("url", ep.URL),
		zap.Int("status", out.StatusCode),
		zap.Int64("latency_ms", out.LatencyMs),
	)

	writeJSON(w, http.StatusCreated, map[string]any{
		"endpoint": ep,
		"result":   out,
	})
}

func (s *Server) handleListEndpoints(w http.ResponseWriter, r *http.Request) {
	eps, err := s.Endpoints.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "list error")
		return
	}
	writeJSON(w, http.StatusOK, eps)
}

func (s *Server) handleUpdateEndpoint(w http.ResponseWriter, r *http.Request) {
	id := domain.EndpointID(chi.URLParam(r, "id"))
	ep, err := s.Endpoints.Get(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "lookup error")
		return
	}
	if ep == nil {
		writeError(w, http.StatusNotFound, "endpoint not found")
		return
	}

	var p updatePayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "bad payload")
		return
	}
	if p.Name == nil && p.URL == nil && p.IntervalSeconds == nil && p.ThresholdMs == nil {
		writeError(w, http.StatusBadRequest, "no valid fields to update")
		return
	}
	if p.URL != nil {
		if !isValidHTTPURL(*p.URL) {
			writeError(w, http.StatusBadRequest, "url must be http or https")
			return
		}
		ep.URL = normalizeHTTPURL(*p.URL)
	}
	if p.IntervalSeconds != nil {
		if !allowedIntervals[*p.IntervalSeconds] {
			writeError(w, http.StatusBadRequest, "interval_seconds must be one of 60, 300, 600, 900")
			return
		}
		ep.IntervalSeconds = *p.IntervalSeconds
	}
	if p.ThresholdMs != nil {
		if *p.ThresholdMs <= 0 {
			writeError(w, http.StatusBadRequest, "threshold_ms must be a positive number")
			return
		}
		ep.ThresholdMs = *p.ThresholdMs
	}
	if p.Name != nil {
		if *p.Name == "" {
			writeError(w, http.StatusBadRequest, "name must not be empty")
			return
		}
		ep.Name = *p.Name
	}

	if err := s.Endpoints.Update(r.Context(), ep); err != nil {
		writeError(w, http.StatusInternalServerError, "could not update endpoint")
		return
	}
	writeJSON(w, http.StatusOK, ep)
}

func (s *Server) handleDeleteEndpoint(w http.ResponseWriter, r *http.Request) {
	id := domain.EndpointID(chi.URLParam(r, "id"))
	ep, err := s.Endpoints.Get(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "lookup error")
		return
	}
	if ep == nil {
		writeError(w, http.StatusNotFound, "endpoint not found")
		return
	}
	if err := s.Endpoints.Delete(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, "could not delete endpoint")
		return
	}
	s.Logger.Info("endpoint_deleted", zap.String("id", string(id)))
	writeJSON(w, http.StatusOK, map[string]string{"id": string(id)})
}

func (s *Server) handleEndpointLogs(w http.ResponseWriter, r *http.Request) {
	id := domain.EndpointID(chi.URLParam(r, "id"))
	ep, err := s.Endpoints.Get(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "lookup error")
		return
	}
	if ep == nil {
		writeError(w, http.StatusNotFound, "endpoint not found")
		return
	}

	hours := queryInt(r, "hours", 24)
	limit := queryInt(r, "limit", 100)
	since := time.Now().UTC().Add(-time.Duration(hours) * time.Hour)

	logs, err := s.Logs.ListRecent(r.Context(), id, since, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not fetch logs")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"logs": logs})
}

func (s *Server) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("activeOnly") == "true"
	limit := queryInt(r, "limit", 50)

	alerts, err := s.Alerts.ListAlerts(r.Context(), activeOnly, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not fetch alerts")
		return
	}
	writeJSON(w, http.StatusOK, alerts)
}

func queryInt(r *http.Request, key string, fallback int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
