package dispatcher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MATHUR-LUV/Aegis/internal/agent"
	"github.com/MATHUR-LUV/Aegis/internal/classifier"
	"github.com/MATHUR-LUV/Aegis/internal/models"
	"github.com/MATHUR-LUV/Aegis/internal/repository"
)

// stubAgent implements agent.Client with canned behavior.
type stubAgent struct {
	resp     *agent.TriageResponse
	err      error
	requests []*agent.TriageRequest
}

func (s *stubAgent) HandleIncident(ctx context.Context, req *agent.TriageRequest) (*agent.TriageResponse, error) {
	s.requests = append(s.requests, req)
	if s.err != nil {
		return nil, s.err
	}
	return s.resp, nil
}

func (s *stubAgent) Close() error { return nil }

// blockingAgent never answers until the context expires.
type blockingAgent struct{}

func (blockingAgent) HandleIncident(ctx context.Context, req *agent.TriageRequest) (*agent.TriageResponse, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (blockingAgent) Close() error { return nil }

// stubSuppressor returns fixed answers.
type stubSuppressor struct {
	suppressed bool
	checkErr   error
	recorded   []string
}

func (s *stubSuppressor) Suppressed(ctx context.Context, eventType string) (bool, error) {
	return s.suppressed, s.checkErr
}

func (s *stubSuppressor) Record(ctx context.Context, eventType string) error {
	s.recorded = append(s.recorded, eventType)
	return nil
}

func (s *stubSuppressor) Close() error { return nil }

// stubDLQ captures Write calls.
type stubDLQ struct {
	writes []string
}

func (s *stubDLQ) Write(ctx context.Context, event *models.InboundEvent, eventType string, cause error, reason string) error {
	s.writes = append(s.writes, reason)
	return nil
}

func criticalClassification() classifier.Classification {
	return classifier.Classification{
		Category:  classifier.CategoryCritical,
		EventType: "payment_failed",
	}
}

func testEvent(payload string) *models.InboundEvent {
	return &models.InboundEvent{
		Subject:  "events.platform",
		Payload:  []byte(payload),
		Received: time.Now(),
	}
}

func TestDispatchSuccess(t *testing.T) {
	ag := &stubAgent{
		resp: &agent.TriageResponse{
			Status:        "ESCALATED",
			AgentResponse: "paged on-call",
		},
	}
	d := New(Config{Agent: ag, Timeout: time.Second})

	outcome := d.Dispatch(context.Background(), testEvent(`{"event_type":"payment_failed","amount":42}`), criticalClassification())

	assert.Equal(t, StatusSuccess, outcome.Status)
	require.NotNil(t, outcome.Response)
	assert.Equal(t, "ESCALATED", outcome.Response.Status)
	assert.Equal(t, "paged on-call", outcome.Response.AgentResponse)
}

func TestDispatchCarriesFullPayload(t *testing.T) {
	payload := `{"event_type":"payment_failed","amount":42,"nested":{"a":[1,2,3]}}`
	ag := &stubAgent{resp: &agent.TriageResponse{Status: "OK"}}
	d := New(Config{Agent: ag, Timeout: time.Second})

	d.Dispatch(context.Background(), testEvent(payload), criticalClassification())

	require.Len(t, ag.requests, 1)
	assert.Equal(t, "payment_failed", ag.requests[0].EventType)
	// The agent sees the original payload byte for byte, not a re-encoding.
	assert.Equal(t, payload, ag.requests[0].FullEventJSON)
}

func TestDispatchAgentFailure(t *testing.T) {
	ag := &stubAgent{err: errors.New("connection refused")}
	d := New(Config{Agent: ag, Timeout: time.Second})

	outcome := d.Dispatch(context.Background(), testEvent(`{"event_type":"payment_failed"}`), criticalClassification())

	assert.Equal(t, StatusFailed, outcome.Status)
	assert.Contains(t, outcome.Reason, "connection refused")
	assert.Nil(t, outcome.Response)
}

func TestDispatchTimeout(t *testing.T) {
	d := New(Config{Agent: blockingAgent{}, Timeout: 20 * time.Millisecond})

	start := time.Now()
	outcome := d.Dispatch(context.Background(), testEvent(`{"event_type":"payment_failed"}`), criticalClassification())

	assert.Equal(t, StatusFailed, outcome.Status)
	assert.Less(t, time.Since(start), 5*time.Second, "dispatch must be bounded by the timeout")
}

func TestDispatchNonCritical(t *testing.T) {
	ag := &stubAgent{resp: &agent.TriageResponse{Status: "OK"}}
	d := New(Config{Agent: ag, Timeout: time.Second})

	outcome := d.Dispatch(context.Background(), testEvent(`{"event_type":"login_success"}`), classifier.Classification{
		Category:  classifier.CategoryNormal,
		EventType: "login_success",
	})

	assert.Equal(t, StatusFailed, outcome.Status)
	assert.Empty(t, ag.requests, "agent must not be called for non-critical events")
}

func TestDispatchSuppressed(t *testing.T) {
	ag := &stubAgent{resp: &agent.TriageResponse{Status: "OK"}}
	sup := &stubSuppressor{suppressed: true}
	d := New(Config{Agent: ag, Timeout: time.Second, Suppressor: sup})

	outcome := d.Dispatch(context.Background(), testEvent(`{"event_type":"payment_failed"}`), criticalClassification())

	assert.Equal(t, StatusSuppressed, outcome.Status)
	assert.Empty(t, ag.requests, "agent must not be called while suppressed")
}

func TestDispatchSuppressionCheckErrorIsAdvisory(t *testing.T) {
	ag := &stubAgent{resp: &agent.TriageResponse{Status: "OK"}}
	sup := &stubSuppressor{checkErr: errors.New("redis down")}
	d := New(Config{Agent: ag, Timeout: time.Second, Suppressor: sup})

	outcome := d.Dispatch(context.Background(), testEvent(`{"event_type":"payment_failed"}`), criticalClassification())

	assert.Equal(t, StatusSuccess, outcome.Status, "a broken suppression window must not block triage")
	assert.Len(t, ag.requests, 1)
}

func TestDispatchRecordsSuppressionOnSuccess(t *testing.T) {
	ag := &stubAgent{resp: &agent.TriageResponse{Status: "OK"}}
	sup := &stubSuppressor{}
	d := New(Config{Agent: ag, Timeout: time.Second, Suppressor: sup})

	d.Dispatch(context.Background(), testEvent(`{"event_type":"payment_failed"}`), criticalClassification())

	assert.Equal(t, []string{"payment_failed"}, sup.recorded)
}

func TestDispatchWritesDLQOnFailureOnly(t *testing.T) {
	q := &stubDLQ{}

	failing := New(Config{Agent: &stubAgent{err: errors.New("boom")}, Timeout: time.Second, DLQ: q})
	failing.Dispatch(context.Background(), testEvent(`{"event_type":"payment_failed"}`), criticalClassification())
	assert.Equal(t, []string{"transport"}, q.writes)

	succeeding := New(Config{Agent: &stubAgent{resp: &agent.TriageResponse{Status: "OK"}}, Timeout: time.Second, DLQ: q})
	succeeding.Dispatch(context.Background(), testEvent(`{"event_type":"payment_failed"}`), criticalClassification())
	assert.Len(t, q.writes, 1, "success must not dead-letter")
}

func TestDispatchRecordsOutcomes(t *testing.T) {
	repo := repository.NewMemoryRepository()
	defer repo.Close()

	ag := &stubAgent{resp: &agent.TriageResponse{Status: "ESCALATED", AgentResponse: "paged on-call"}}
	d := New(Config{Agent: ag, Timeout: time.Second, Repository: repo})

	d.Dispatch(context.Background(), testEvent(`{"event_type":"payment_failed"}`), criticalClassification())

	outcomes, total, err := repo.ListOutcomes(context.Background(), &models.ListOutcomesRequest{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Len(t, outcomes, 1)

	o := outcomes[0]
	assert.NotEmpty(t, o.ID)
	assert.Equal(t, "payment_failed", o.EventType)
	assert.Equal(t, "success", o.Status)
	assert.Equal(t, "ESCALATED", o.AgentStatus)
	assert.Equal(t, "paged on-call", o.AgentResponse)
}

func TestDispatchPreservesCallOrder(t *testing.T) {
	ag := &stubAgent{resp: &agent.TriageResponse{Status: "OK"}}
	d := New(Config{Agent: ag, Timeout: time.Second})

	payloads := []string{
		`{"event_type":"payment_failed","seq":1}`,
		`{"event_type":"payment_failed","seq":2}`,
		`{"event_type":"payment_failed","seq":3}`,
	}
	for _, p := range payloads {
		d.Dispatch(context.Background(), testEvent(p), criticalClassification())
	}

	require.Len(t, ag.requests, 3)
	for i, p := range payloads {
		assert.Equal(t, p, ag.requests[i].FullEventJSON)
	}
}

func TestFailureReason(t *testing.T) {
	assert.Equal(t, "timeout", failureReason(context.DeadlineExceeded))
	assert.Equal(t, "canceled", failureReason(context.Canceled))
	assert.Equal(t, "transport", failureReason(errors.New("connection refused")))
}
