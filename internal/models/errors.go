package models

import "fmt"

// Error kinds double as the error_type label on the gateway's error counter,
// so every failure path is countable by cause.
const (
	KindMalformedPayload = "malformed_payload"
	KindMissingField     = "missing_field"

	KindSerializationFailure = "serialization_failure"
	KindBackendUnavailable   = "backend_unavailable"
)

// ValidationError is a client-caused failure: the submission could not be
// decoded, or a required field was empty. It never reaches the publisher
// and is surfaced as a 400.
type ValidationError struct {
	Kind  string
	Field string
	cause error
}

func (e *ValidationError) Error() string {
	if e.Kind == KindMissingField {
		return e.Field + " required"
	}
	return "invalid JSON payload"
}

func (e *ValidationError) Unwrap() error { return e.cause }

// PublishError is a backend-caused failure: the event could not be encoded
// (internal, should not occur post-validation) or the streaming backend
// rejected the write after its own bounded retries. Surfaced as a 500; the
// gateway does not retry or persist the event — the caller resubmits.
type PublishError struct {
	Kind string
	Err  error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("publish failed (%s): %v", e.Kind, e.Err)
}

func (e *PublishError) Unwrap() error { return e.Err }
