package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/MATHUR-LUV/Aegis/internal/httputil"
	"github.com/MATHUR-LUV/Aegis/internal/models"
	"github.com/MATHUR-LUV/Aegis/internal/repository"
	"github.com/MATHUR-LUV/Aegis/internal/service"
)

// ConnChecker reports broker connectivity for readiness checks.
type ConnChecker interface {
	IsConnected() bool
}

// DLQStats exposes dead-letter queue statistics.
type DLQStats interface {
	Stats(ctx context.Context) map[string]interface{}
}

type Handler struct {
	service *service.Service
	conn    ConnChecker
	dlq     DLQStats
}

// NewHandler creates an HTTP handler. conn and dlq may be nil.
func NewHandler(svc *service.Service, conn ConnChecker, dlq DLQStats) *Handler {
	return &Handler{
		service: svc,
		conn:    conn,
		dlq:     dlq,
	}
}

// HealthCheck handles GET /healthz
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// Ready handles GET /readyz; not ready while the broker is disconnected.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.conn != nil && !h.conn.IsConnected() {
		httputil.WriteError(w, http.StatusServiceUnavailable, "message broker disconnected")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// ListOutcomes handles GET /api/v1/outcomes
func (h *Handler) ListOutcomes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	req := &models.ListOutcomesRequest{
		Status:    q.Get("status"),
		EventType: q.Get("event_type"),
	}
	req.Page, _ = strconv.Atoi(q.Get("page"))
	req.Limit, _ = strconv.Atoi(q.Get("limit"))

	resp, err := h.service.ListOutcomes(r.Context(), req)
	if err != nil {
		slog.Error("failed to list outcomes", slog.String("error", err.Error()))
		httputil.WriteError(w, http.StatusInternalServerError, "Failed to list outcomes")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, resp)
}

// GetOutcome handles GET /api/v1/outcomes/:id
func (h *Handler) GetOutcome(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := r.URL.Path[len("/api/v1/outcomes/"):]
	if id == "" {
		httputil.WriteError(w, http.StatusBadRequest, "Outcome ID required")
		return
	}

	o, err := h.service.GetOutcome(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrOutcomeNotFound) {
			httputil.WriteError(w, http.StatusNotFound, "Outcome not found")
			return
		}
		slog.Error("failed to get outcome", slog.String("error", err.Error()))
		httputil.WriteError(w, http.StatusInternalServerError, "Failed to get outcome")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, o)
}

// DLQStatsHandler handles GET /api/v1/dlq/stats
func (h *Handler) DLQStatsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if h.dlq == nil {
		httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{"enabled": false})
		return
	}

	httputil.WriteJSON(w, http.StatusOK, h.dlq.Stats(r.Context()))
}
