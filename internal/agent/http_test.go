package agent

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MATHUR-LUV/Aegis/pkg/tokens"
)

func TestHTTPClientHandleIncident(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/incidents", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req TriageRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "payment_failed", req.EventType)
		assert.Equal(t, `{"event_type":"payment_failed","amount":42}`, req.FullEventJSON)

		json.NewEncoder(w).Encode(TriageResponse{
			Status:        "ESCALATED",
			AgentResponse: "paged on-call",
		})
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, 5*time.Second, nil)
	defer client.Close()

	resp, err := client.HandleIncident(context.Background(), &TriageRequest{
		EventType:     "payment_failed",
		FullEventJSON: `{"event_type":"payment_failed","amount":42}`,
	})

	require.NoError(t, err)
	assert.Equal(t, "ESCALATED", resp.Status)
	assert.Equal(t, "paged on-call", resp.AgentResponse)
}

func TestHTTPClientServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": "model unavailable"})
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, 5*time.Second, nil)
	defer client.Close()

	_, err := client.HandleIncident(context.Background(), &TriageRequest{EventType: "payment_failed"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
	assert.Contains(t, err.Error(), "model unavailable")
}

func TestHTTPClientTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, 20*time.Millisecond, nil)
	defer client.Close()

	_, err := client.HandleIncident(context.Background(), &TriageRequest{EventType: "payment_failed"})
	require.Error(t, err)
}

func TestHTTPClientContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, 5*time.Second, nil)
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.HandleIncident(ctx, &TriageRequest{EventType: "payment_failed"})
	require.Error(t, err)
}

func TestHTTPClientAttachesServiceToken(t *testing.T) {
	gen := tokens.NewGenerator("test-secret", time.Minute)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		require.True(t, strings.HasPrefix(auth, "Bearer "))

		claims, err := gen.Validate(strings.TrimPrefix(auth, "Bearer "))
		require.NoError(t, err)
		assert.Equal(t, "triage", claims.Service)

		json.NewEncoder(w).Encode(TriageResponse{Status: "OK"})
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, 5*time.Second, gen)
	defer client.Close()

	_, err := client.HandleIncident(context.Background(), &TriageRequest{EventType: "payment_failed"})
	require.NoError(t, err)
}

func TestHTTPClientMalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, 5*time.Second, nil)
	defer client.Close()

	_, err := client.HandleIncident(context.Background(), &TriageRequest{EventType: "payment_failed"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}
