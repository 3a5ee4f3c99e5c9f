package messaging

// Subject constants for the Aegis message bus.
// Follow the pattern: {domain}.{action or resource}
const (
	// SubjectPlatformEvents is the default inbound platform event subject.
	// The actual subject is configurable; this is the default binding.
	SubjectPlatformEvents = "events.platform"

	// SubjectAgentIncident is the request/reply subject for the triage agent
	// when the NATS transport is selected.
	SubjectAgentIncident = "triage.agent.incident"

	// SubjectDLQPrefix is the prefix for dead-lettered dispatches.
	// Full subjects take the form triage.dlq.<reason>.
	SubjectDLQPrefix = "triage.dlq"
)

// Queue group names for load-balanced consumers.
// Workers in the same queue group share messages (each message processed once).
const (
	QueueTriageWorkers = "triage-workers"
)

// DLQSubject returns the dead-letter subject for a failure reason.
// Example: triage.dlq.timeout
func DLQSubject(reason string) string {
	return SubjectDLQPrefix + "." + reason
}
