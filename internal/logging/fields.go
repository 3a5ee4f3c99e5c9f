package logging

import "log/slog"

// Common field names for consistent logging across the service.
const (
	FieldService     = "service"
	FieldSubject     = "subject"
	FieldEventType   = "event_type"
	FieldStatus      = "status"
	FieldAgentStatus = "agent_status"
	FieldOutcomeID   = "outcome_id"
	FieldDuration    = "duration_ms"
	FieldError       = "error"
)

// Service returns a slog attribute for the service name.
func Service(name string) slog.Attr {
	return slog.String(FieldService, name)
}

// Subject returns a slog attribute for a message subject.
func Subject(subject string) slog.Attr {
	return slog.String(FieldSubject, subject)
}

// EventType returns a slog attribute for an event type.
func EventType(eventType string) slog.Attr {
	return slog.String(FieldEventType, eventType)
}

// Status returns a slog attribute for a dispatch or HTTP status.
func Status(status string) slog.Attr {
	return slog.String(FieldStatus, status)
}

// AgentStatus returns a slog attribute for the triage agent's status field.
func AgentStatus(status string) slog.Attr {
	return slog.String(FieldAgentStatus, status)
}

// OutcomeID returns a slog attribute for a triage outcome ID.
func OutcomeID(id string) slog.Attr {
	return slog.String(FieldOutcomeID, id)
}

// Duration returns a slog attribute for duration in milliseconds.
func Duration(ms int64) slog.Attr {
	return slog.Int64(FieldDuration, ms)
}

// Error returns a slog attribute for an error.
func Error(err error) slog.Attr {
	return slog.String(FieldError, err.Error())
}
