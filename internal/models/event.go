package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// HealthEvent is the unit of work flowing through the gateway: one health
// measurement submitted by a device or app, routed by category to the
// event stream. Value is opaque to the gateway; its shape depends on
// category/event_type and is interpreted only downstream.
type HealthEvent struct {
	ID        string         `json:"id"`
	UserID    string         `json:"user_id"`
	EventType string         `json:"event_type"`
	Category  string         `json:"category"`
	Value     map[string]any `json:"value,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	Source    string         `json:"source,omitempty"`
	DeviceID  string         `json:"device_id,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// Parse decodes and validates a single submission.
//
// Caller-supplied id/created_at are discarded: both are assigned
// server-side by Normalize, never trusted from the wire.
func Parse(raw []byte) (HealthEvent, error) {
	var event HealthEvent
	if err := json.Unmarshal(raw, &event); err != nil {
		return HealthEvent{}, &ValidationError{Kind: KindMalformedPayload, cause: err}
	}

	event.ID = ""
	event.CreatedAt = time.Time{}

	// Required fields per contract. Absence is a validation failure,
	// not a defaulting opportunity.
	switch {
	case event.UserID == "":
		return HealthEvent{}, &ValidationError{Kind: KindMissingField, Field: "user_id"}
	case event.EventType == "":
		return HealthEvent{}, &ValidationError{Kind: KindMissingField, Field: "event_type"}
	case event.Category == "":
		return HealthEvent{}, &ValidationError{Kind: KindMissingField, Field: "category"}
	}

	return event, nil
}

// Normalize assigns server-side identity and timestamp defaults:
// a fresh UUID, created_at = now, and timestamp = now when the caller
// omitted it. id and created_at are assigned exactly once — calling
// Normalize on an already-normalized event leaves them unchanged.
//
// timestamp > created_at is allowed; device clocks are expected to skew.
func Normalize(event *HealthEvent, now time.Time) {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = now
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = now
	}
}

// EventResponse is returned by POST /health/event on success.
type EventResponse struct {
	Message string `json:"message"`
	EventID string `json:"event_id"`
}

// BatchResult is one per-element outcome in the POST /health/events/batch
// response. Results preserve input order so callers correlate positionally.
// Exactly one of Status or Error is set.
type BatchResult struct {
	EventID string `json:"event_id,omitempty"`
	Status  string `json:"status,omitempty"`
	Error   string `json:"error,omitempty"`
}
