package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MATHUR-LUV/Aegis/internal/handlers"
	"github.com/MATHUR-LUV/Aegis/internal/middleware"
)

// NewRouter constructs a ServeMux with triage API routes registered.
func NewRouter(h *handlers.Handler) http.Handler {
	mux := http.NewServeMux()

	// Outcome API
	mux.HandleFunc("/api/v1/outcomes", h.ListOutcomes)
	mux.HandleFunc("/api/v1/outcomes/", h.GetOutcome)

	// DLQ
	mux.HandleFunc("/api/v1/dlq/stats", h.DLQStatsHandler)

	// Health endpoints
	mux.HandleFunc("/healthz", h.HealthCheck)
	mux.HandleFunc("/readyz", h.Ready)

	// Prometheus metrics
	mux.Handle("/metrics", promhttp.Handler())

	return middleware.RequestID(mux)
}
