// Package dispatcher sends triage requests for critical incidents to the
// remote agent and converts every call result into an explicit Outcome.
// A dispatch failure is an observability event, never a propagated fault:
// the consumption loop must stay eligible to acknowledge the message no
// matter what happens here.
package dispatcher

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/MATHUR-LUV/Aegis/internal/agent"
	"github.com/MATHUR-LUV/Aegis/internal/classifier"
	"github.com/MATHUR-LUV/Aegis/internal/dlq"
	"github.com/MATHUR-LUV/Aegis/internal/logging"
	"github.com/MATHUR-LUV/Aegis/internal/metrics"
	"github.com/MATHUR-LUV/Aegis/internal/models"
	"github.com/MATHUR-LUV/Aegis/internal/repository"
	"github.com/MATHUR-LUV/Aegis/internal/suppress"
)

// Status is the result bucket of one dispatch.
type Status string

const (
	StatusSuccess    Status = "success"
	StatusFailed     Status = "failed"
	StatusSuppressed Status = "suppressed"
)

// Outcome is the locally observable result of one dispatch attempt.
type Outcome struct {
	Status   Status
	Response *agent.TriageResponse
	Reason   string
	Duration time.Duration
}

// Config wires the dispatcher's collaborators. Agent and Logger are
// required; the rest are optional.
type Config struct {
	Agent      agent.Client
	Timeout    time.Duration
	Suppressor suppress.Suppressor
	DLQ        dlq.Writer
	Repository repository.Repository
	Logger     *logging.Logger
}

// Dispatcher performs a single synchronous agent call per critical event.
// It does not retry; replay is the dead-letter stream's job.
type Dispatcher struct {
	agent      agent.Client
	timeout    time.Duration
	suppressor suppress.Suppressor
	dlq        dlq.Writer
	repo       repository.Repository
	logger     *logging.Logger
}

// New creates a Dispatcher.
func New(cfg Config) *Dispatcher {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Dispatcher{
		agent:      cfg.Agent,
		timeout:    timeout,
		suppressor: cfg.Suppressor,
		dlq:        cfg.DLQ,
		repo:       cfg.Repository,
		logger:     logger,
	}
}

// Dispatch builds a triage request carrying the full original payload,
// performs one bounded agent call, and returns an Outcome. It never returns
// an error; failure is a value.
func (d *Dispatcher) Dispatch(ctx context.Context, event *models.InboundEvent, cls classifier.Classification) Outcome {
	if !cls.Critical() {
		return Outcome{Status: StatusFailed, Reason: "classification is not critical"}
	}

	if d.suppressor != nil {
		suppressed, err := d.suppressor.Suppressed(ctx, cls.EventType)
		if err != nil {
			// Suppression is advisory; a broken window must not block triage.
			d.logger.WarnContext(ctx, "suppression check failed", logging.Error(err))
		} else if suppressed {
			metrics.EventsSuppressedTotal.Inc()
			d.logger.InfoContext(ctx, "dispatch suppressed",
				logging.EventType(cls.EventType),
				logging.Subject(event.Subject),
			)
			outcome := Outcome{Status: StatusSuppressed, Reason: "within suppression window"}
			d.record(ctx, event, cls, outcome)
			return outcome
		}
	}

	req := &agent.TriageRequest{
		EventType:     cls.EventType,
		FullEventJSON: string(event.Payload),
	}

	callCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	start := time.Now()
	resp, err := d.agent.HandleIncident(callCtx, req)
	duration := time.Since(start)
	metrics.DispatchDuration.Observe(duration.Seconds())

	if err != nil {
		metrics.DispatchesTotal.WithLabelValues(string(StatusFailed)).Inc()
		reason := failureReason(err)
		d.logger.ErrorContext(ctx, "triage agent call failed",
			logging.EventType(cls.EventType),
			logging.Subject(event.Subject),
			logging.Error(err),
			logging.Duration(duration.Milliseconds()),
		)

		if d.dlq != nil {
			if dlqErr := d.dlq.Write(ctx, event, cls.EventType, err, reason); dlqErr == nil {
				metrics.DLQWritesTotal.Inc()
			}
		}

		outcome := Outcome{Status: StatusFailed, Reason: err.Error(), Duration: duration}
		d.record(ctx, event, cls, outcome)
		return outcome
	}

	metrics.DispatchesTotal.WithLabelValues(string(StatusSuccess)).Inc()
	d.logger.InfoContext(ctx, "triage agent responded",
		logging.EventType(cls.EventType),
		logging.AgentStatus(resp.Status),
		logging.Duration(duration.Milliseconds()),
		"agent_response", resp.AgentResponse,
	)

	if d.suppressor != nil {
		if err := d.suppressor.Record(ctx, cls.EventType); err != nil {
			d.logger.WarnContext(ctx, "failed to record suppression state", logging.Error(err))
		}
	}

	outcome := Outcome{Status: StatusSuccess, Response: resp, Duration: duration}
	d.record(ctx, event, cls, outcome)
	return outcome
}

// record persists the outcome when a repository is configured. Best effort:
// a persistence failure is logged and counted, nothing more.
func (d *Dispatcher) record(ctx context.Context, event *models.InboundEvent, cls classifier.Classification, outcome Outcome) {
	if d.repo == nil {
		return
	}

	id, err := uuid.NewV7()
	if err != nil {
		d.logger.WarnContext(ctx, "failed to generate outcome ID", logging.Error(err))
		return
	}

	o := &models.TriageOutcome{
		ID:         id.String(),
		EventType:  cls.EventType,
		Subject:    event.Subject,
		Status:     string(outcome.Status),
		Reason:     outcome.Reason,
		DurationMs: outcome.Duration.Milliseconds(),
		CreatedAt:  time.Now().UTC(),
	}
	if outcome.Response != nil {
		o.AgentStatus = outcome.Response.Status
		o.AgentResponse = outcome.Response.AgentResponse
	}

	if err := d.repo.RecordOutcome(ctx, o); err != nil {
		metrics.OutcomeRecordErrors.Inc()
		d.logger.WarnContext(ctx, "failed to persist outcome",
			logging.OutcomeID(o.ID),
			logging.Error(err),
		)
	}
}

// failureReason maps a call error to a DLQ subject token.
func failureReason(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	if errors.Is(err, context.Canceled) {
		return "canceled"
	}
	return "transport"
}
