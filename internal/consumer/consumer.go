// Package consumer runs the message consumption loop: it binds a durable
// JetStream consumer to the platform event stream and feeds each message
// through the classifier and, for critical incidents, the dispatcher.
//
// The handler always reports success to the broker. Stream continuity takes
// priority over guaranteed triage delivery: a failed dispatch is observed
// through logs, metrics, and the DLQ, never through redelivery.
package consumer

import (
	"context"
	"fmt"
	"time"

	"github.com/MATHUR-LUV/Aegis/internal/classifier"
	"github.com/MATHUR-LUV/Aegis/internal/dispatcher"
	"github.com/MATHUR-LUV/Aegis/internal/logging"
	"github.com/MATHUR-LUV/Aegis/internal/messaging"
	natsclient "github.com/MATHUR-LUV/Aegis/internal/messaging/nats"
	"github.com/MATHUR-LUV/Aegis/internal/metrics"
	"github.com/MATHUR-LUV/Aegis/internal/models"
)

// Dispatcher is the dispatch capability the consumer depends on.
type Dispatcher interface {
	Dispatch(ctx context.Context, event *models.InboundEvent, cls classifier.Classification) dispatcher.Outcome
}

// StreamConfig names the inbound stream binding.
type StreamConfig struct {
	// Stream is the JetStream stream name.
	Stream string

	// Subject is the subject within the stream to consume.
	Subject string

	// Group is the durable consumer name (consumer-group identity).
	Group string

	// AckWait is the redelivery deadline for unacknowledged messages.
	AckWait time.Duration

	// MaxDeliver bounds delivery attempts per message.
	MaxDeliver int

	// MaxAckPending bounds in-flight messages; 1 preserves arrival order.
	MaxAckPending int
}

// Consumer owns the subscription lifecycle.
type Consumer struct {
	js         *natsclient.JetStreamClient
	classifier *classifier.Classifier
	dispatcher Dispatcher
	logger     *logging.Logger
	cfg        StreamConfig
	stop       func()
}

// New creates a Consumer. Start must be called to begin consuming.
func New(js *natsclient.JetStreamClient, cls *classifier.Classifier, disp Dispatcher, logger *logging.Logger, cfg StreamConfig) *Consumer {
	if logger == nil {
		logger = logging.Default()
	}
	return &Consumer{
		js:         js,
		classifier: cls,
		dispatcher: disp,
		logger:     logger,
		cfg:        cfg,
	}
}

// Start ensures the stream and durable consumer exist and begins consuming.
func (c *Consumer) Start(ctx context.Context) error {
	streamCfg := natsclient.PlatformEventsStream
	if c.cfg.Stream != "" {
		streamCfg.Name = c.cfg.Stream
	}
	if c.cfg.Subject != "" {
		streamCfg.Subjects = []string{c.cfg.Subject}
	}

	if _, err := c.js.CreateOrUpdateStream(ctx, streamCfg); err != nil {
		return fmt.Errorf("ensure event stream: %w", err)
	}

	consumerCfg := natsclient.DefaultConsumerConfig(c.cfg.Group, c.cfg.Subject)
	if c.cfg.AckWait > 0 {
		consumerCfg.AckWait = c.cfg.AckWait
	}
	if c.cfg.MaxDeliver > 0 {
		consumerCfg.MaxDeliver = c.cfg.MaxDeliver
	}
	if c.cfg.MaxAckPending > 0 {
		consumerCfg.MaxAckPending = c.cfg.MaxAckPending
	}

	if _, err := c.js.CreateOrUpdateConsumer(ctx, streamCfg.Name, consumerCfg); err != nil {
		return fmt.Errorf("ensure durable consumer: %w", err)
	}

	stop, err := c.js.ConsumeMessages(ctx, streamCfg.Name, consumerCfg.Name, c.Handle)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}
	c.stop = stop

	c.logger.InfoContext(ctx, "consumer started",
		"stream", streamCfg.Name,
		logging.Subject(c.cfg.Subject),
		"group", c.cfg.Group,
	)
	return nil
}

// Stop halts consumption. In-flight handler calls finish before the
// underlying consumer stops pulling.
func (c *Consumer) Stop() {
	if c.stop != nil {
		c.stop()
		c.stop = nil
	}
	c.logger.Info("consumer stopped")
}

// Handle processes one inbound message. It always returns nil: every
// message is fully handled from the broker's point of view, whatever the
// dispatch outcome. Returning an error here would trigger redelivery and
// couple stream progress to agent availability.
func (c *Consumer) Handle(ctx context.Context, msg *messaging.Message) error {
	metrics.EventsConsumedTotal.WithLabelValues(msg.Subject).Inc()

	event := &models.InboundEvent{
		Subject:  msg.Subject,
		Payload:  msg.Data,
		Received: msg.Timestamp,
		Metadata: msg.Metadata,
	}

	cls := c.classifier.Classify(msg.Data)
	if !cls.Critical() {
		c.logger.DebugContext(ctx, "event classified as normal",
			logging.Subject(msg.Subject),
			logging.EventType(cls.EventType),
		)
		return nil
	}

	metrics.EventsCriticalTotal.Inc()
	c.logger.WarnContext(ctx, "critical incident detected",
		logging.Subject(msg.Subject),
		logging.EventType(cls.EventType),
	)

	outcome := c.dispatcher.Dispatch(ctx, event, cls)

	switch outcome.Status {
	case dispatcher.StatusSuccess:
		c.logger.InfoContext(ctx, "triage dispatched",
			logging.EventType(cls.EventType),
			logging.Status(string(outcome.Status)),
			logging.AgentStatus(outcome.Response.Status),
		)
	case dispatcher.StatusSuppressed:
		c.logger.InfoContext(ctx, "triage suppressed",
			logging.EventType(cls.EventType),
		)
	default:
		c.logger.WarnContext(ctx, "triage dispatch failed",
			logging.EventType(cls.EventType),
			logging.Status(string(outcome.Status)),
			"reason", outcome.Reason,
		)
	}

	return nil
}
