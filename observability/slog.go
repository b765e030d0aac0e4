package observability

import (
	"context"
	"log/slog"
)

// SlogObserver bridges events into a slog.Logger: the event type becomes
// the message, the severity maps through SlogLevel, and the source plus
// the Data payload flatten into attributes. The emission timestamp is
// carried as its own attribute because the slog record is stamped at log
// time, not at event time.
type SlogObserver struct {
	logger *slog.Logger
}

// NewSlogObserver creates a SlogObserver that emits to the given logger.
func NewSlogObserver(logger *slog.Logger) *SlogObserver {
	return &SlogObserver{logger: logger}
}

func (o *SlogObserver) OnEvent(ctx context.Context, event Event) {
	attrs := make([]slog.Attr, 0, len(event.Data)+2)
	attrs = append(attrs,
		slog.String("source", event.Source),
		slog.Time("event_time", event.Timestamp),
	)
	for k, v := range event.Data {
		attrs = append(attrs, slog.Any(k, v))
	}

	o.logger.LogAttrs(ctx, event.Level.SlogLevel(), string(event.Type), attrs...)
}
