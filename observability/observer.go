// Package observability carries events out of the form engine. A Form emits
// one Event per dispatched action, validation pass, submission step and
// checkpoint operation; Observers decide what to do with them.
//
// Level values follow OpenTelemetry SeverityNumber ranges so events can be
// forwarded to an OTel collector without translation.
package observability

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

// Level is event severity aligned with OTel SeverityNumber ranges.
type Level int

const (
	LevelVerbose Level = 5  // OTel DEBUG (5-8)
	LevelInfo    Level = 9  // OTel INFO (9-12)
	LevelWarning Level = 13 // OTel WARN (13-16)
	LevelError   Level = 17 // OTel ERROR (17-20)
)

// String returns the OTel severity text for the level.
func (l Level) String() string {
	switch {
	case l <= 4:
		return "TRACE"
	case l <= 8:
		return "DEBUG"
	case l <= 12:
		return "INFO"
	case l <= 16:
		return "WARN"
	case l <= 20:
		return "ERROR"
	default:
		return "FATAL"
	}
}

// SlogLevel maps the level onto slog.
func (l Level) SlogLevel() slog.Level {
	switch {
	case l <= 8:
		return slog.LevelDebug
	case l <= 12:
		return slog.LevelInfo
	case l <= 16:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

// EventType names an event, e.g. "form.action" or "submit.fail". Emitting
// packages define their own constants.
type EventType string

// Event describes something the engine did. Data holds telemetry such as the
// action type, field name or error count; it never carries field values.
type Event struct {
	Type      EventType      `json:"type"`
	Level     Level          `json:"level"`
	Timestamp time.Time      `json:"timestamp"`
	Source    string         `json:"source"`
	Data      map[string]any `json:"data,omitempty"`
}

// Data keys shared by every package that emits form events.
const (
	KeyFormID = "form_id"
	KeyForm   = "form"
	KeyField  = "field"
)

// subjectKeys lead the attributes of a logged event, in this order.
var subjectKeys = []string{KeyFormID, KeyForm, KeyField}

// Domain is the part of the event type before the first dot: "form",
// "submit", "checkpoint", "replay" or "rpc".
func (e Event) Domain() string {
	domain, _, _ := strings.Cut(string(e.Type), ".")
	return domain
}

// FormID returns the ID of the form the event concerns, or "".
func (e Event) FormID() string {
	id, _ := e.Data[KeyFormID].(string)
	return id
}

// Field returns the field path the event concerns, or "".
func (e Event) Field() string {
	field, _ := e.Data[KeyField].(string)
	return field
}

// Observer receives events. OnEvent must not block the caller for long and
// must not call back into the Form that emitted the event.
type Observer interface {
	OnEvent(ctx context.Context, event Event)
}
