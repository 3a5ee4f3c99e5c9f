package agent

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MATHUR-LUV/Aegis/internal/messaging"
)

type stubRequester struct {
	reply    []byte
	err      error
	subject  string
	lastData []byte
}

func (s *stubRequester) Request(ctx context.Context, subject string, data []byte, timeout time.Duration) (*messaging.Message, error) {
	s.subject = subject
	s.lastData = data
	if s.err != nil {
		return nil, s.err
	}
	return &messaging.Message{Subject: subject, Data: s.reply}, nil
}

func TestNATSClientHandleIncident(t *testing.T) {
	reply, _ := json.Marshal(TriageResponse{Status: "ESCALATED", AgentResponse: "paged on-call"})
	req := &stubRequester{reply: reply}

	client := NewNATSClient(req, "triage.agent.incident", time.Second)
	defer client.Close()

	resp, err := client.HandleIncident(context.Background(), &TriageRequest{
		EventType:     "payment_failed",
		FullEventJSON: `{"event_type":"payment_failed"}`,
	})

	require.NoError(t, err)
	assert.Equal(t, "ESCALATED", resp.Status)
	assert.Equal(t, "paged on-call", resp.AgentResponse)
	assert.Equal(t, "triage.agent.incident", req.subject)

	var sent TriageRequest
	require.NoError(t, json.Unmarshal(req.lastData, &sent))
	assert.Equal(t, `{"event_type":"payment_failed"}`, sent.FullEventJSON)
}

func TestNATSClientDefaultSubject(t *testing.T) {
	client := NewNATSClient(&stubRequester{reply: []byte(`{"status":"OK"}`)}, "", time.Second)
	_, err := client.HandleIncident(context.Background(), &TriageRequest{EventType: "payment_failed"})
	require.NoError(t, err)
}

func TestNATSClientRequestError(t *testing.T) {
	req := &stubRequester{err: errors.New("no responders")}
	client := NewNATSClient(req, "triage.agent.incident", time.Second)

	_, err := client.HandleIncident(context.Background(), &TriageRequest{EventType: "payment_failed"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no responders")
}

func TestNATSClientEmptyReply(t *testing.T) {
	req := &stubRequester{reply: nil}
	client := NewNATSClient(req, "triage.agent.incident", time.Second)

	_, err := client.HandleIncident(context.Background(), &TriageRequest{EventType: "payment_failed"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty agent reply")
}

func TestNATSClientMalformedReply(t *testing.T) {
	req := &stubRequester{reply: []byte("not json")}
	client := NewNATSClient(req, "triage.agent.incident", time.Second)

	_, err := client.HandleIncident(context.Background(), &TriageRequest{EventType: "payment_failed"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode agent reply")
}
