package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/MATHUR-LUV/Aegis/internal/messaging"
)

// Requester is the subset of messaging.Publisher the NATS transport needs.
type Requester interface {
	Request(ctx context.Context, subject string, data []byte, timeout time.Duration) (*messaging.Message, error)
}

// NATSClient reaches the triage agent over NATS request/reply. The underlying
// connection is owned by the caller and shared with the rest of the service.
type NATSClient struct {
	requester Requester
	subject   string
	timeout   time.Duration
}

// NewNATSClient constructs a NATSClient calling the agent on the given subject.
func NewNATSClient(requester Requester, subject string, timeout time.Duration) *NATSClient {
	if subject == "" {
		subject = messaging.SubjectAgentIncident
	}
	return &NATSClient{
		requester: requester,
		subject:   subject,
		timeout:   timeout,
	}
}

// HandleIncident sends the triage request and waits for the agent's reply.
func (c *NATSClient) HandleIncident(ctx context.Context, req *TriageRequest) (*TriageResponse, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	msg, err := c.requester.Request(ctx, c.subject, data, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("agent request: %w", err)
	}

	if len(msg.Data) == 0 {
		return nil, fmt.Errorf("empty agent reply on %s", c.subject)
	}

	var result TriageResponse
	if err := json.Unmarshal(msg.Data, &result); err != nil {
		return nil, fmt.Errorf("decode agent reply: %w", err)
	}

	return &result, nil
}

// Close is a no-op; the connection is owned by the caller.
func (c *NATSClient) Close() error {
	return nil
}
