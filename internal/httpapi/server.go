// Package httpapi is the thin CRUD surface over the monitored-endpoint
// roster, its probe logs, and its alerts. All temporal logic lives in the
// scheduler; handlers here only validate and persist.
package httpapi

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	apimw "github.com/RohanMishra47/api-monitoring-dashboard/internal/httpapi/middleware"
	"github.com/RohanMishra47/api-monitoring-dashboard/internal/probe"
	"github.com/RohanMishra47/api-monitoring-dashboard/internal/repo"
)

// Check intervals the CRUD layer accepts, in seconds (1, 5, 10, 15 min).
var allowedIntervals = map[int]bool{60: true, 300: true, 600: true, 900: true}

type Server struct {
	Logger          *zap.Logger
	Endpoints       repo.EndpointStore
	Logs            repo.LogStore
	Alerts          repo.AlertStore
	Checker         probe.Checker
	DefaultInterval int // seconds, applied when a create omits the interval
}

func NewServer(
	l *zap.Logger,
	eps repo.EndpointStore,
	logs repo.LogStore,
	alerts repo.AlertStore,
	checker probe.Checker,
	defaultInterval int,
) *Server {
	if defaultInterval <= 0 || !allowedIntervals[defaultInterval] {
		defaultInterval = 300
	}
	return &Server{
		Logger:          l,
		Endpoints:       eps,
		Logs:            logs,
		Alerts:          alerts,
		Checker:         checker,
		DefaultInterval: defaultInterval,
	}
}

func (s *Server) Router(keys apimw.Keys, publicRPM, publicBurst, adminRPM, adminBurst int) http.Handler {
	r := chi.NewRouter()
	r.Use(cors.AllowAll().Handler)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// reads: public or admin key
	r.Group(func(r chi.Router) {
		r.Use(apimw.RequireAny(keys))
		r.Use(apimw.RateLimit(publicRPM, publicBurst))
		r.Get("/api/endpoints", s.handleListEndpoints)
		r.Get("/api/endpoints/{id}/logs", s.handleEndpointLogs)
		r.Get("/api/alerts", s.handleListAlerts)
	})

	// mutations: admin key only
	r.Group(func(r chi.Router) {
		r.Use(apimw.RequireAdmin(keys))
		r.Use(apimw.RateLimit(adminRPM, adminBurst))
		r.Post("/api/endpoints", s.handleCreateEndpoint)
		r.Patch("/api/endpoints/{id}", s.handleUpdateEndpoint)
		r.Delete("/api/endpoints/{id}", s.handleDeleteEndpoint)
	})

	return r
}

func isValidHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return (scheme == "http" || scheme == "https") && u.Host != ""
}

// normalizeHTTPURL lowercases the host, strips default ports and a bare
// trailing slash so equivalent spellings land on the same roster row.
func normalizeHTTPURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	u.Scheme = strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Host)
	if u.Scheme == "http" {
		host = strings.TrimSuffix(host, ":80")
	}
	if u.Scheme == "https" {
		host = strings.TrimSuffix(host, ":443")
	}
	u.Host = host
	if u.Path == "/" && u.RawQuery == "" {
		u.Path = ""
	}
	return u.String()
}

func extractHost(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return raw
	}
	return u.Hostname()
}
