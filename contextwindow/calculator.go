// Package contextwindow sizes a model's context window per turn. The
// heuristic is monotonic: the window only grows, and only up to 90% of
// the model's maximum, so a running model process is never asked to
// shrink and re-negotiate its context.
package contextwindow

import "fmt"

// Adjustment reasons.
const (
	ReasonInitialSetup   = "initial_setup"
	ReasonUsageThreshold = "usage_threshold"
	ReasonManualOverride = "manual_override"
	ReasonNoAdjustment   = "no_adjustment"
)

const (
	// DefaultInitialWindow is the window for fresh conversations and the
	// safe-limit fallback when the model's maximum is unknown.
	DefaultInitialWindow = 8192

	// DefaultMaxHistory bounds the per-session adjustment history.
	DefaultMaxHistory = 10
)

// Config controls the sizing heuristic.
type Config struct {
	// InitialWindow is the starting window for new conversations.
	InitialWindow int `json:"initial_window,omitempty" yaml:"initial_window,omitempty"`

	// MaxHistory caps how many adjustments are kept per session.
	MaxHistory int `json:"max_history,omitempty" yaml:"max_history,omitempty"`
}

// DefaultConfig returns the default heuristic configuration.
func DefaultConfig() Config {
	return Config{
		InitialWindow: DefaultInitialWindow,
		MaxHistory:    DefaultMaxHistory,
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.InitialWindow != 0 {
		c.InitialWindow = source.InitialWindow
	}
	if source.MaxHistory != 0 {
		c.MaxHistory = source.MaxHistory
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.InitialWindow < 0 {
		return fmt.Errorf("initial window must be non-negative, got %d", c.InitialWindow)
	}
	if c.MaxHistory < 0 {
		return fmt.Errorf("max history must be non-negative, got %d", c.MaxHistory)
	}
	return nil
}

// Input is the state the sizing decision reads. MaxContext is zero when
// the model's hard limit is unknown.
type Input struct {
	CurrentWindow  int
	DynamicEnabled bool
	ManualOverride bool
	MaxContext     int
	UsageTokens    int
}

// Calculation is the outcome of a sizing decision.
type Calculation struct {
	Window      int
	Reason      string
	MaxContext  int
	UsageTokens int
}

// Changed reports whether the decision adopted a new window size.
func (c Calculation) Changed() bool {
	return c.Reason == ReasonInitialSetup || c.Reason == ReasonUsageThreshold
}

// Calculate decides the context window for the next request. It is pure:
// recording the outcome against a session is the caller's job.
//
// Decision order: a manual override wins, then a dynamic-sizing opt-out,
// then initial setup for conversations with no usage yet, then growth to
// keep 50% headroom above the latest usage. Growth is capped at 90% of
// the model's maximum context when that is known, otherwise at the
// configured initial window.
func Calculate(cfg Config, in Input) Calculation {
	out := Calculation{
		Window:      in.CurrentWindow,
		MaxContext:  in.MaxContext,
		UsageTokens: in.UsageTokens,
	}

	if in.ManualOverride {
		out.Reason = ReasonManualOverride
		return out
	}
	if !in.DynamicEnabled {
		out.Reason = ReasonNoAdjustment
		return out
	}

	safeLimit := cfg.InitialWindow
	if in.MaxContext > 0 {
		safeLimit = in.MaxContext * 9 / 10
	}

	if in.UsageTokens == 0 {
		initial := min(safeLimit, cfg.InitialWindow)
		if initial != in.CurrentWindow {
			out.Window = initial
			out.Reason = ReasonInitialSetup
			return out
		}
		out.Reason = ReasonNoAdjustment
		return out
	}

	// Require the window to be at least double the latest usage.
	required := in.UsageTokens * 2
	if required > in.CurrentWindow {
		next := min(required, safeLimit)
		if next != in.CurrentWindow {
			out.Window = next
			out.Reason = ReasonUsageThreshold
			return out
		}
	}

	out.Reason = ReasonNoAdjustment
	return out
}

// RequestOptions returns the model-request options for a calculated
// window: num_ctx when dynamic sizing or a manual override is active,
// nil when both are off so the model runtime picks its own default.
func RequestOptions(window int, dynamicEnabled, manualOverride bool) map[string]any {
	if dynamicEnabled || manualOverride {
		return map[string]any{"num_ctx": window}
	}
	return nil
}
