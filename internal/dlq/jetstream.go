// Package dlq records dispatches that failed to reach the triage agent.
// The core performs no retries; the dead-letter stream is the extension
// point for an external replayer.
package dlq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/MATHUR-LUV/Aegis/internal/messaging"
	natsclient "github.com/MATHUR-LUV/Aegis/internal/messaging/nats"
	"github.com/MATHUR-LUV/Aegis/internal/models"
)

// Writer records a failed dispatch for later inspection or replay.
type Writer interface {
	Write(ctx context.Context, event *models.InboundEvent, eventType string, cause error, reason string) error
}

// FailedDispatch is one dead-lettered dispatch entry.
type FailedDispatch struct {
	Timestamp time.Time `json:"timestamp"`
	Subject   string    `json:"subject"`
	EventType string    `json:"event_type"`
	Payload   string    `json:"payload"`
	Error     string    `json:"error"`
	Reason    string    `json:"reason"`
}

// JetStreamQueue writes failed dispatches to NATS JetStream.
// Safe for use across multiple triage instances.
type JetStreamQueue struct {
	js      *natsclient.JetStreamClient
	stream  jetstream.Stream
	written uint64
}

// NewJetStreamQueue creates a DLQ backed by NATS JetStream.
func NewJetStreamQueue(ctx context.Context, js *natsclient.JetStreamClient) (*JetStreamQueue, error) {
	if js == nil {
		return nil, fmt.Errorf("jetstream client is nil")
	}

	stream, err := js.CreateOrUpdateStream(ctx, natsclient.TriageDLQStream)
	if err != nil {
		return nil, fmt.Errorf("create dlq stream: %w", err)
	}

	slog.Info("DLQ stream ready", slog.String("stream", natsclient.TriageDLQStream.Name))

	return &JetStreamQueue{
		js:     js,
		stream: stream,
	}, nil
}

// Write records a failed dispatch. The payload is carried verbatim so a
// replayer can rebuild the exact original request.
func (q *JetStreamQueue) Write(ctx context.Context, event *models.InboundEvent, eventType string, cause error, reason string) error {
	if q == nil {
		return nil
	}

	failed := FailedDispatch{
		Timestamp: time.Now().UTC(),
		Subject:   event.Subject,
		EventType: eventType,
		Payload:   string(event.Payload),
		Error:     cause.Error(),
		Reason:    reason,
	}

	data, marshalErr := json.Marshal(failed)
	if marshalErr != nil {
		slog.Error("failed to marshal DLQ entry", slog.String("error", marshalErr.Error()))
		return marshalErr
	}

	subject := messaging.DLQSubject(reason)

	if _, pubErr := q.js.PublishSync(ctx, subject, data); pubErr != nil {
		slog.Error("failed to publish DLQ entry", slog.String("error", pubErr.Error()))
		return pubErr
	}

	atomic.AddUint64(&q.written, 1)
	slog.Warn("dispatch dead-lettered", slog.String("reason", reason), slog.String("event_type", eventType))

	return nil
}

// Stats returns DLQ metrics from JetStream.
func (q *JetStreamQueue) Stats(ctx context.Context) map[string]interface{} {
	if q == nil {
		return map[string]interface{}{
			"enabled": false,
		}
	}

	info, err := q.stream.Info(ctx)
	if err != nil {
		slog.Error("failed to get DLQ stream info", slog.String("error", err.Error()))
		return map[string]interface{}{
			"enabled":       true,
			"written_local": atomic.LoadUint64(&q.written),
			"error":         err.Error(),
		}
	}

	return map[string]interface{}{
		"enabled":        true,
		"written_local":  atomic.LoadUint64(&q.written),
		"total_messages": info.State.Msgs,
		"total_bytes":    info.State.Bytes,
		"first_seq":      info.State.FirstSeq,
		"last_seq":       info.State.LastSeq,
	}
}

// List returns failed dispatches from the DLQ stream.
func (q *JetStreamQueue) List(ctx context.Context, limit int) ([]FailedDispatch, error) {
	if q == nil {
		return nil, fmt.Errorf("dlq not enabled")
	}

	if limit <= 0 {
		limit = 100
	}

	// Ephemeral consumer to read messages without disturbing stream state.
	consumer, err := q.stream.CreateOrUpdateConsumer(ctx, jetstream.ConsumerConfig{
		FilterSubject: messaging.SubjectDLQPrefix + ".>",
		AckPolicy:     jetstream.AckNonePolicy,
		DeliverPolicy: jetstream.DeliverAllPolicy,
		MaxDeliver:    1,
	})
	if err != nil {
		return nil, fmt.Errorf("create list consumer: %w", err)
	}

	msgs, err := consumer.Fetch(limit, jetstream.FetchMaxWait(2*time.Second))
	if err != nil {
		return nil, fmt.Errorf("fetch messages: %w", err)
	}

	var entries []FailedDispatch
	for msg := range msgs.Messages() {
		var failed FailedDispatch
		if err := json.Unmarshal(msg.Data(), &failed); err != nil {
			slog.Error("failed to parse DLQ message", slog.String("error", err.Error()))
			continue
		}
		entries = append(entries, failed)
	}

	if msgs.Error() != nil {
		slog.Warn("DLQ fetch completed with error", slog.String("error", msgs.Error().Error()))
	}

	return entries, nil
}

// Purge removes all entries from the DLQ stream.
func (q *JetStreamQueue) Purge(ctx context.Context) error {
	if q == nil {
		return fmt.Errorf("dlq not enabled")
	}

	if err := q.stream.Purge(ctx); err != nil {
		return fmt.Errorf("purge dlq stream: %w", err)
	}

	slog.Info("DLQ purged")
	return nil
}
