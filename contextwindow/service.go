package contextwindow

import (
	"context"

	"github.com/mochi-chat/mochi/core/chat"
	"github.com/mochi-chat/mochi/observability"
	"github.com/mochi-chat/mochi/registry"
	"github.com/mochi-chat/mochi/session"
)

// Event types emitted by the Service.
const (
	EventWindowAdjusted    observability.EventType = "contextwindow.adjusted"
	EventModelLookupFailed observability.EventType = "contextwindow.model_lookup_failed"
)

// Service applies the sizing heuristic to sessions, resolving model
// limits through a registry and recording adopted adjustments.
type Service struct {
	cfg      Config
	models   registry.Registry
	observer observability.Observer
}

// Option configures a Service after config-driven initialization.
type Option func(*Service)

// WithObserver overrides the default NoOpObserver.
func WithObserver(o observability.Observer) Option {
	return func(s *Service) { s.observer = o }
}

// NewService creates a Service. A nil config uses DefaultConfig. The
// registry may be nil, in which case every model's maximum is unknown
// and the safe limit falls back to the initial window.
func NewService(cfg *Config, models registry.Registry, opts ...Option) (*Service, error) {
	resolved := DefaultConfig()
	if cfg != nil {
		resolved.Merge(cfg)
	}
	if err := resolved.Validate(); err != nil {
		return nil, err
	}

	s := &Service{
		cfg:      resolved,
		models:   models,
		observer: observability.NoOpObserver{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// ModelMaxContext resolves a model's maximum context length. It returns
// zero when the model is unknown or the lookup fails; a failed lookup is
// reported as a warning, not an error, because the heuristic degrades
// gracefully without the limit.
func (s *Service) ModelMaxContext(ctx context.Context, model string) int {
	if s.models == nil {
		return 0
	}
	info, err := s.models.GetModelInfo(ctx, model)
	if err != nil {
		s.observer.OnEvent(ctx, observability.NewEvent(
			EventModelLookupFailed, observability.LevelWarning, "contextwindow",
			map[string]any{"model": model, "error": err.Error()},
		))
		return 0
	}
	if info == nil {
		return 0
	}
	return info.ContextLength
}

// Plan runs the sizing decision for a session's next request. usageTokens
// is the prompt plus completion token count of the most recent turn, or
// zero for a fresh conversation.
func (s *Service) Plan(ctx context.Context, sess *session.Session, usageTokens int) Calculation {
	cw := sess.Metadata.ContextWindow
	return Calculate(s.cfg, Input{
		CurrentWindow:  cw.CurrentWindow,
		DynamicEnabled: cw.DynamicEnabled,
		ManualOverride: cw.ManualOverride,
		MaxContext:     s.ModelMaxContext(ctx, sess.Model),
		UsageTokens:    usageTokens,
	})
}

// Record applies an adopted calculation to the session's context window
// state, appending to the bounded adjustment history. Decisions that kept
// the current window are not recorded.
func (s *Service) Record(ctx context.Context, sess *session.Session, calc Calculation) {
	if !calc.Changed() {
		return
	}

	cw := &sess.Metadata.ContextWindow
	cw.AdjustmentHistory = append(cw.AdjustmentHistory, session.Adjustment{
		Timestamp:      chat.Timestamp(),
		PreviousWindow: cw.CurrentWindow,
		NewWindow:      calc.Window,
		Reason:         calc.Reason,
		UsageTokens:    calc.UsageTokens,
	})
	if s.cfg.MaxHistory > 0 && len(cw.AdjustmentHistory) > s.cfg.MaxHistory {
		cw.AdjustmentHistory = cw.AdjustmentHistory[len(cw.AdjustmentHistory)-s.cfg.MaxHistory:]
	}
	cw.CurrentWindow = calc.Window
	cw.LastAdjustment = calc.Reason

	s.observer.OnEvent(ctx, observability.NewEvent(
		EventWindowAdjusted, observability.LevelInfo, "contextwindow",
		map[string]any{
			"session_id": sess.ID,
			"window":     calc.Window,
			"reason":     calc.Reason,
			"usage":      calc.UsageTokens,
		},
	))
}

// RequestOptions returns the model-request options for a session given a
// calculated window.
func (s *Service) RequestOptions(sess *session.Session, calc Calculation) map[string]any {
	cw := sess.Metadata.ContextWindow
	return RequestOptions(calc.Window, cw.DynamicEnabled, cw.ManualOverride)
}
