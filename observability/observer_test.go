package observability_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/tailored-agentic-units/formstate/observability"
)

func TestLevel_String(t *testing.T) {
	tests := []struct {
		name  string
		level observability.Level
		want  string
	}{
		{name: "trace range", level: 1, want: "TRACE"},
		{name: "verbose maps to DEBUG", level: observability.LevelVerbose, want: "DEBUG"},
		{name: "info maps to INFO", level: observability.LevelInfo, want: "INFO"},
		{name: "warning maps to WARN", level: observability.LevelWarning, want: "WARN"},
		{name: "error maps to ERROR", level: observability.LevelError, want: "ERROR"},
		{name: "fatal range", level: 21, want: "FATAL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.level.String(); got != tt.want {
				t.Errorf("Level(%d).String() = %q, want %q", tt.level, got, tt.want)
			}
		})
	}
}

func TestLevel_SlogLevel(t *testing.T) {
	tests := []struct {
		level observability.Level
		want  slog.Level
	}{
		{level: observability.LevelVerbose, want: slog.LevelDebug},
		{level: observability.LevelInfo, want: slog.LevelInfo},
		{level: observability.LevelWarning, want: slog.LevelWarn},
		{level: observability.LevelError, want: slog.LevelError},
	}

	for _, tt := range tests {
		if got := tt.level.SlogLevel(); got != tt.want {
			t.Errorf("Level(%d).SlogLevel() = %v, want %v", tt.level, got, tt.want)
		}
	}
}

func TestMultiObserver_SkipsNil(t *testing.T) {
	first := observability.NewRecorder(0)
	second := observability.NewRecorder(0)

	multi := observability.NewMultiObserver(nil, first, nil, second)
	multi.OnEvent(context.Background(), observability.Event{
		Type:  "form.action",
		Level: observability.LevelVerbose,
	})

	if len(first.Events()) != 1 || len(second.Events()) != 1 {
		t.Errorf("got %d and %d events, want 1 each", len(first.Events()), len(second.Events()))
	}
}

func TestSlogObserver_Output(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	obs := observability.NewSlogObserver(logger)
	obs.OnEvent(context.Background(), observability.Event{
		Type:      "submit.fail",
		Level:     observability.LevelWarning,
		Timestamp: time.Now(),
		Source:    "form.Submit",
		Data:      map[string]any{"field_errors": 2},
	})

	out := buf.String()
	for _, want := range []string{"submit.fail", "level=WARN", "source=form.Submit", "field_errors=2"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q: %s", want, out)
		}
	}
}

func TestEvent_Subject(t *testing.T) {
	tests := []struct {
		name   string
		event  observability.Event
		domain string
		formID string
		field  string
	}{
		{
			name: "field action",
			event: observability.Event{Type: "form.action", Data: map[string]any{
				observability.KeyFormID: "f-1",
				observability.KeyField:  "items[0].sku",
			}},
			domain: "form", formID: "f-1", field: "items[0].sku",
		},
		{
			name:   "no data",
			event:  observability.Event{Type: "checkpoint.save"},
			domain: "checkpoint",
		},
		{
			name:   "wrong value type",
			event:  observability.Event{Type: "rpc", Data: map[string]any{observability.KeyFormID: 7}},
			domain: "rpc",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.event.Domain(); got != tt.domain {
				t.Errorf("Domain() = %q, want %q", got, tt.domain)
			}
			if got := tt.event.FormID(); got != tt.formID {
				t.Errorf("FormID() = %q, want %q", got, tt.formID)
			}
			if got := tt.event.Field(); got != tt.field {
				t.Errorf("Field() = %q, want %q", got, tt.field)
			}
		})
	}
}

func TestSlogObserver_SubjectFirst(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	observability.NewSlogObserver(logger).OnEvent(context.Background(), observability.Event{
		Type:   "form.action",
		Level:  observability.LevelInfo,
		Source: "form.Form",
		Data: map[string]any{
			"type":                  "CHANGE_VALUE",
			observability.KeyField:  "email",
			"changed":               true,
			observability.KeyForm:   "signup",
			observability.KeyFormID: "f-1",
		},
	})

	out := buf.String()
	order := []string{"source=form.Form", "form_id=f-1", "form=signup", "field=email", "changed=true", "type=CHANGE_VALUE"}
	last := -1
	for _, want := range order {
		i := strings.Index(out, want)
		if i < 0 {
			t.Fatalf("log output missing %q: %s", want, out)
		}
		if i < last {
			t.Errorf("%q out of order: %s", want, out)
		}
		last = i
	}
}

func TestSlogObserver_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	observability.NewSlogObserver(logger).OnEvent(context.Background(), observability.Event{
		Type:  "form.action",
		Level: observability.LevelVerbose,
	})

	if buf.Len() != 0 {
		t.Errorf("verbose event logged at info handler: %q", buf.String())
	}
}

func TestRecorder_Limit(t *testing.T) {
	rec := observability.NewRecorder(2)
	for _, typ := range []observability.EventType{"a", "b", "c"} {
		rec.OnEvent(context.Background(), observability.Event{Type: typ})
	}

	want := []observability.EventType{"b", "c"}
	if got := rec.Types(); !slices.Equal(got, want) {
		t.Errorf("Types() = %v, want %v", got, want)
	}

	rec.Reset()
	if len(rec.Events()) != 0 {
		t.Error("Reset() left events behind")
	}
}

func TestRegistry(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		wantErr bool
	}{
		{name: "noop", key: "noop"},
		{name: "slog", key: "slog"},
		{name: "empty resolves to noop", key: ""},
		{name: "unknown", key: "nonexistent", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obs, err := observability.GetObserver(tt.key)
			if (err != nil) != tt.wantErr {
				t.Fatalf("GetObserver(%q) error = %v, wantErr %v", tt.key, err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, observability.ErrUnknownObserver) {
				t.Errorf("GetObserver(%q) error = %v, want ErrUnknownObserver", tt.key, err)
			}
			if !tt.wantErr && obs == nil {
				t.Errorf("GetObserver(%q) returned nil", tt.key)
			}
		})
	}

	rec := observability.NewRecorder(0)
	observability.RegisterObserver("test-recorder", rec)
	if !slices.Contains(observability.ObserverNames(), "test-recorder") {
		t.Error("ObserverNames() missing registered observer")
	}
}
