// Package kafka implements the engine's event bus on Apache Kafka: an
// envelope-per-event producer and a handler-loop consumer with dead-letter
// forwarding.
package kafka

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Topic names. Event types map one-to-one onto topics, optionally under a
// deployment prefix.
const (
	TopicStatementGenerated  = "dds.generated"
	TopicStatementAnchored   = "dds.anchored"
	TopicGeolocationRejected = "geolocation.rejected"
	TopicTelemetryFlushed    = "telemetry.flushed"
)

// EventEnvelope is the wire form of every event on the bus.
type EventEnvelope struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// NewEnvelope wraps a payload in a fresh envelope.
func NewEnvelope(eventType string, payload json.RawMessage, now time.Time) EventEnvelope {
	return EventEnvelope{
		ID:         uuid.New().String(),
		Type:       eventType,
		OccurredAt: now.UTC(),
		Payload:    payload,
	}
}

// TopicForEvent maps an event type to its topic under a deployment prefix.
func TopicForEvent(prefix, eventType string) string {
	if prefix == "" {
		return eventType
	}
	return prefix + "." + eventType
}
