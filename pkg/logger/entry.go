package logger

import (
	"time"

	"github.com/google/uuid"
)

// EntryType is the constant envelope type tag.
const EntryType = "workflow"

// Envelope levels.
const (
	LevelInfo    = "info"
	LevelWarning = "warning"
	LevelError   = "error"
)

// Entry is the structured log envelope dispatched to sinks. Field names
// are part of the wire contract and must stay stable.
type Entry struct {
	// ID uniquely identifies the entry.
	ID string `json:"_id"`

	// Time is the entry creation time (UTC).
	Time time.Time `json:"_time"`

	// Level is one of "error", "info", "warning".
	Level string `json:"level"`

	// Type is the constant tag EntryType.
	Type string `json:"_type"`

	// Service is the configured service name.
	Service string `json:"_service"`

	// ExcludeFromSlackNotification is set on error entries only: true when
	// the error arrived within the debounce window of the previous one.
	ExcludeFromSlackNotification *bool `json:"_excludeFromSlackNotification,omitempty"`

	// Message is the error or log message.
	Message string `json:"message"`

	// Context is the caller-supplied context mapping, passed through
	// verbatim (never redacted).
	Context map[string]any `json:"context"`

	// Event is the redacted event record.
	Event map[string]any `json:"event"`
}

// newEntry builds an envelope with a fresh ID.
func newEntry(service, level, message string, context, event map[string]any, at time.Time) *Entry {
	if context == nil {
		context = map[string]any{}
	}
	if event == nil {
		event = map[string]any{}
	}
	return &Entry{
		ID:      uuid.New().String(),
		Time:    at.UTC(),
		Level:   level,
		Type:    EntryType,
		Service: service,
		Message: message,
		Context: context,
		Event:   event,
	}
}
