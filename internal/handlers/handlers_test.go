package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MATHUR-LUV/Aegis/internal/models"
	"github.com/MATHUR-LUV/Aegis/internal/repository"
	"github.com/MATHUR-LUV/Aegis/internal/service"
)

type fakeConn struct {
	connected bool
}

func (f fakeConn) IsConnected() bool { return f.connected }

type fakeDLQ struct{}

func (fakeDLQ) Stats(ctx context.Context) map[string]interface{} {
	return map[string]interface{}{"enabled": true, "total_messages": uint64(3)}
}

func newTestHandler(t *testing.T) (*Handler, *repository.MemoryRepository) {
	t.Helper()
	repo := repository.NewMemoryRepository()
	return NewHandler(service.NewService(repo), fakeConn{connected: true}, nil), repo
}

func TestHealthCheck(t *testing.T) {
	h, _ := newTestHandler(t)

	w := httptest.NewRecorder()
	h.HealthCheck(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestReady(t *testing.T) {
	t.Run("ready when connected", func(t *testing.T) {
		h, _ := newTestHandler(t)

		w := httptest.NewRecorder()
		h.Ready(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("unavailable when broker disconnected", func(t *testing.T) {
		repo := repository.NewMemoryRepository()
		h := NewHandler(service.NewService(repo), fakeConn{connected: false}, nil)

		w := httptest.NewRecorder()
		h.Ready(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

func TestListOutcomes(t *testing.T) {
	h, repo := newTestHandler(t)

	for _, o := range []*models.TriageOutcome{
		{ID: "a", EventType: "payment_failed", Status: "success", CreatedAt: time.Now()},
		{ID: "b", EventType: "payment_failed", Status: "failed", CreatedAt: time.Now().Add(time.Second)},
	} {
		require.NoError(t, repo.RecordOutcome(context.Background(), o))
	}

	w := httptest.NewRecorder()
	h.ListOutcomes(w, httptest.NewRequest(http.MethodGet, "/api/v1/outcomes?status=failed", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var resp models.ListOutcomesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Total)
	require.Len(t, resp.Outcomes, 1)
	assert.Equal(t, "b", resp.Outcomes[0].ID)
}

func TestListOutcomesMethodNotAllowed(t *testing.T) {
	h, _ := newTestHandler(t)

	w := httptest.NewRecorder()
	h.ListOutcomes(w, httptest.NewRequest(http.MethodPost, "/api/v1/outcomes", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestGetOutcome(t *testing.T) {
	h, repo := newTestHandler(t)
	require.NoError(t, repo.RecordOutcome(context.Background(), &models.TriageOutcome{
		ID:          "abc",
		EventType:   "payment_failed",
		Status:      "success",
		AgentStatus: "ESCALATED",
		CreatedAt:   time.Now(),
	}))

	t.Run("found", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.GetOutcome(w, httptest.NewRequest(http.MethodGet, "/api/v1/outcomes/abc", nil))

		require.Equal(t, http.StatusOK, w.Code)

		var o models.TriageOutcome
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &o))
		assert.Equal(t, "abc", o.ID)
		assert.Equal(t, "ESCALATED", o.AgentStatus)
	})

	t.Run("not found", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.GetOutcome(w, httptest.NewRequest(http.MethodGet, "/api/v1/outcomes/missing", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("missing id", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.GetOutcome(w, httptest.NewRequest(http.MethodGet, "/api/v1/outcomes/", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestDLQStatsHandler(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		h, _ := newTestHandler(t)

		w := httptest.NewRecorder()
		h.DLQStatsHandler(w, httptest.NewRequest(http.MethodGet, "/api/v1/dlq/stats", nil))

		require.Equal(t, http.StatusOK, w.Code)

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, false, body["enabled"])
	})

	t.Run("enabled", func(t *testing.T) {
		repo := repository.NewMemoryRepository()
		h := NewHandler(service.NewService(repo), fakeConn{connected: true}, fakeDLQ{})

		w := httptest.NewRecorder()
		h.DLQStatsHandler(w, httptest.NewRequest(http.MethodGet, "/api/v1/dlq/stats", nil))

		require.Equal(t, http.StatusOK, w.Code)

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, true, body["enabled"])
	})
}
