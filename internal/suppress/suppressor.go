// Package suppress implements a dedup window for critical incidents so the
// triage agent is not paged repeatedly for the same hot failure.
package suppress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Suppressor tracks recently dispatched event types.
type Suppressor interface {
	// Suppressed reports whether a dispatch for eventType fired within the
	// suppression window.
	Suppressed(ctx context.Context, eventType string) (bool, error)

	// Record marks eventType as dispatched, starting (or extending) its window.
	Record(ctx context.Context, eventType string) error

	// Close releases any resources.
	Close() error
}

// State is the stored suppression record for one event type.
type State struct {
	FirstDispatch int64 `json:"first_dispatch"` // Unix timestamp
	LastDispatch  int64 `json:"last_dispatch"`  // Unix timestamp
	DispatchCount int   `json:"dispatch_count"`
}

// RedisSuppressor stores suppression state in Redis so the window is shared
// across triage instances.
type RedisSuppressor struct {
	client *redis.Client
	window time.Duration
}

// NewRedisSuppressor connects to Redis at the given URL.
func NewRedisSuppressor(url string, window time.Duration) (*RedisSuppressor, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &RedisSuppressor{
		client: client,
		window: window,
	}, nil
}

// NewRedisSuppressorWithClient wraps an existing Redis client. Used in tests.
func NewRedisSuppressorWithClient(client *redis.Client, window time.Duration) *RedisSuppressor {
	return &RedisSuppressor{
		client: client,
		window: window,
	}
}

// Suppressed checks whether a suppression record exists for eventType.
func (s *RedisSuppressor) Suppressed(ctx context.Context, eventType string) (bool, error) {
	exists, err := s.client.Exists(ctx, s.key(eventType)).Result()
	if err != nil {
		return false, fmt.Errorf("check suppression: %w", err)
	}
	return exists > 0, nil
}

// Record stores or updates the suppression state for eventType with the
// window as TTL.
func (s *RedisSuppressor) Record(ctx context.Context, eventType string) error {
	key := s.key(eventType)
	now := time.Now().Unix()

	data, err := s.client.Get(ctx, key).Result()
	var state State
	if errors.Is(err, redis.Nil) {
		state = State{
			FirstDispatch: now,
			LastDispatch:  now,
			DispatchCount: 1,
		}
	} else if err != nil {
		return fmt.Errorf("get suppression state: %w", err)
	} else {
		if err := json.Unmarshal([]byte(data), &state); err != nil {
			return fmt.Errorf("unmarshal suppression state: %w", err)
		}
		state.DispatchCount++
		state.LastDispatch = now
	}

	stateData, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal suppression state: %w", err)
	}

	if err := s.client.Set(ctx, key, stateData, s.window).Err(); err != nil {
		return fmt.Errorf("save suppression state: %w", err)
	}

	return nil
}

// Close closes the Redis connection.
func (s *RedisSuppressor) Close() error {
	return s.client.Close()
}

func (s *RedisSuppressor) key(eventType string) string {
	return "suppress:" + eventType
}

// NoOpSuppressor never suppresses. Used when suppression is disabled.
type NoOpSuppressor struct{}

func (NoOpSuppressor) Suppressed(ctx context.Context, eventType string) (bool, error) {
	return false, nil
}

func (NoOpSuppressor) Record(ctx context.Context, eventType string) error {
	return nil
}

func (NoOpSuppressor) Close() error {
	return nil
}
