// Package classifier decides whether an inbound event denotes a critical
// incident requiring triage. Classification is pure computation: it never
// fails, never blocks, and has no side effects.
package classifier

import (
	"bytes"
	"encoding/json"
)

// Category is the classification bucket for an event.
type Category string

const (
	// CategoryCritical marks an event as a critical incident requiring triage.
	CategoryCritical Category = "critical-incident"

	// CategoryNormal marks an event as routine; no triage is performed.
	CategoryNormal Category = "normal"
)

// Classification is the derived verdict for one event. It is recomputed per
// message and never persisted.
type Classification struct {
	Category  Category
	EventType string
}

// Critical reports whether the event requires triage.
func (c Classification) Critical() bool {
	return c.Category == CategoryCritical
}

// Classifier flags events whose event_type is in the critical set.
type Classifier struct {
	critical map[string]struct{}
	// markers are raw-byte stand-ins for the substring fallback, one per
	// critical event type.
	markers           [][]byte
	substringFallback bool
}

// New creates a Classifier. criticalTypes lists the event_type values that
// denote critical incidents. When substringFallback is true, payloads that
// cannot be parsed as JSON (or lack a string event_type field) are still
// flagged critical if they contain a critical type as a raw substring. The
// fallback trades precision for recall: a payload that merely mentions
// "payment_failed" outside the event_type field produces a false positive.
// It is off by default and the strict structural parse is preferred.
func New(criticalTypes []string, substringFallback bool) *Classifier {
	c := &Classifier{
		critical:          make(map[string]struct{}, len(criticalTypes)),
		markers:           make([][]byte, 0, len(criticalTypes)),
		substringFallback: substringFallback,
	}
	for _, t := range criticalTypes {
		if t == "" {
			continue
		}
		c.critical[t] = struct{}{}
		c.markers = append(c.markers, []byte(t))
	}
	return c
}

// Classify inspects the payload and returns its classification.
// Malformed or non-JSON input never produces an error; it classifies as
// normal unless the substring fallback matches.
func (c *Classifier) Classify(payload []byte) Classification {
	var probe struct {
		EventType string `json:"event_type"`
	}

	if err := json.Unmarshal(payload, &probe); err == nil && probe.EventType != "" {
		if _, ok := c.critical[probe.EventType]; ok {
			return Classification{Category: CategoryCritical, EventType: probe.EventType}
		}
		return Classification{Category: CategoryNormal, EventType: probe.EventType}
	}

	// Unparseable payload, or no usable event_type field.
	if c.substringFallback {
		for _, marker := range c.markers {
			if bytes.Contains(payload, marker) {
				return Classification{Category: CategoryCritical, EventType: string(marker)}
			}
		}
	}

	return Classification{Category: CategoryNormal}
}
