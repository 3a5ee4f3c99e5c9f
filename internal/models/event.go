// Package models defines the data types shared across the triage service.
package models

import "time"

// InboundEvent is a single message received from the platform event stream.
// The payload is owned by the consumption loop for the duration of one
// handling call and is never mutated.
type InboundEvent struct {
	// Subject is the stream subject the event arrived on.
	Subject string

	// Payload is the raw event document, expected (but not guaranteed)
	// to be JSON.
	Payload []byte

	// Received is when the message was delivered to this service.
	Received time.Time

	// Metadata carries optional broker headers.
	Metadata map[string]string
}

// TriageOutcome is the persisted record of one dispatch attempt.
type TriageOutcome struct {
	ID            string    `json:"id"`
	EventType     string    `json:"event_type"`
	Subject       string    `json:"subject"`
	Status        string    `json:"status"` // success, failed, suppressed
	AgentStatus   string    `json:"agent_status,omitempty"`
	AgentResponse string    `json:"agent_response,omitempty"`
	Reason        string    `json:"reason,omitempty"`
	DurationMs    int64     `json:"duration_ms"`
	CreatedAt     time.Time `json:"created_at"`
}

// ListOutcomesRequest carries filters and pagination for the outcomes API.
type ListOutcomesRequest struct {
	Status    string `json:"status,omitempty"`
	EventType string `json:"event_type,omitempty"`
	Page      int    `json:"page"`
	Limit     int    `json:"limit"`
}

// ListOutcomesResponse is the paginated outcomes listing.
type ListOutcomesResponse struct {
	Outcomes []*TriageOutcome `json:"outcomes"`
	Total    int              `json:"total"`
	Page     int              `json:"page"`
	Limit    int              `json:"limit"`
}
