package observability

import (
	"context"
	"log/slog"
	"maps"
	"slices"
)

// SlogObserver writes events to a slog.Logger. The event type is the log
// message and the level is mapped through SlogLevel. Attributes start with
// "source" and the form subject (form_id, form, field), followed by the
// remaining Data keys in sorted order.
type SlogObserver struct {
	logger *slog.Logger
}

// NewSlogObserver wraps logger. A nil logger means slog.Default().
func NewSlogObserver(logger *slog.Logger) *SlogObserver {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogObserver{logger: logger}
}

func (o *SlogObserver) OnEvent(ctx context.Context, event Event) {
	level := event.Level.SlogLevel()
	if !o.logger.Enabled(ctx, level) {
		return
	}

	attrs := make([]slog.Attr, 0, len(event.Data)+1)
	attrs = append(attrs, slog.String("source", event.Source))
	for _, k := range subjectKeys {
		if v, ok := event.Data[k]; ok {
			attrs = append(attrs, slog.Any(k, v))
		}
	}
	for _, k := range slices.Sorted(maps.Keys(event.Data)) {
		if !slices.Contains(subjectKeys, k) {
			attrs = append(attrs, slog.Any(k, event.Data[k]))
		}
	}

	o.logger.LogAttrs(ctx, level, string(event.Type), attrs...)
}
