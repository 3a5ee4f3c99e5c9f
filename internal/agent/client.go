// Package agent defines the capability interface for the remote triage agent
// and the transports that reach it. The agent's internal decision logic is an
// external concern; this package only owns the request/response shapes and
// the call itself.
package agent

import "context"

// TriageRequest is the wire request sent to the triage agent for one
// critical incident. FullEventJSON always carries the complete original
// payload so the agent can inspect fields the classifier ignored.
type TriageRequest struct {
	EventType     string `json:"event_type"`
	FullEventJSON string `json:"full_event_json"`
}

// TriageResponse is the agent's verdict for one incident.
type TriageResponse struct {
	Status        string `json:"status"`
	AgentResponse string `json:"agent_response"`
}

// Client is the capability interface for the remote triage agent. It must be
// safe for concurrent use; implementations pool connections rather than
// dialing per call. Test doubles substitute it freely.
type Client interface {
	// HandleIncident performs a single synchronous call to the agent.
	// The caller bounds the call with a context deadline; implementations
	// must respect cancellation and never hang indefinitely.
	HandleIncident(ctx context.Context, req *TriageRequest) (*TriageResponse, error)

	// Close releases any resources held by the client.
	Close() error
}
