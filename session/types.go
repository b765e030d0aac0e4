package session

import "encoding/json"

// defaultWindow is the context window a fresh session starts with.
const defaultWindow = 8192

// ExecutionPolicy is the tool-invocation confirmation mode for a session.
// Metadata only in this core; enforcement belongs to the tool runner.
type ExecutionPolicy string

const (
	PolicyAlwaysConfirm ExecutionPolicy = "always_confirm"
	PolicyNeverConfirm  ExecutionPolicy = "never_confirm"
	PolicyAuto          ExecutionPolicy = "auto"
)

// ToolSettings configures which tools a session may invoke and how
// invocations are confirmed.
type ToolSettings struct {
	Tools           []string        `json:"tools"`
	ToolGroup       *string         `json:"tool_group"`
	ExecutionPolicy ExecutionPolicy `json:"execution_policy"`
}

// DefaultToolSettings returns empty tool settings with the always-confirm
// policy.
func DefaultToolSettings() ToolSettings {
	return ToolSettings{
		Tools:           []string{},
		ExecutionPolicy: PolicyAlwaysConfirm,
	}
}

// AgentSettings configures which agents are enabled for a session.
type AgentSettings struct {
	EnabledAgents []string `json:"enabled_agents"`
}

// DefaultAgentSettings returns agent settings with no agents enabled.
func DefaultAgentSettings() AgentSettings {
	return AgentSettings{EnabledAgents: []string{}}
}

// Adjustment is one recorded context-window change.
type Adjustment struct {
	Timestamp      string `json:"timestamp"`
	PreviousWindow int    `json:"previous_window"`
	NewWindow      int    `json:"new_window"`
	Reason         string `json:"reason"`
	UsageTokens    int    `json:"usage_tokens"`
}

// ContextWindowConfig is the per-session state of the dynamic context
// window heuristic.
type ContextWindowConfig struct {
	DynamicEnabled    bool         `json:"dynamic_enabled"`
	CurrentWindow     int          `json:"current_window"`
	LastAdjustment    string       `json:"last_adjustment"`
	AdjustmentHistory []Adjustment `json:"adjustment_history"`
	ManualOverride    bool         `json:"manual_override"`
}

// UnmarshalJSON fills fields a stored file omits with their defaults, so
// a partial config block never silently disables dynamic sizing or
// zeroes the window.
func (c *ContextWindowConfig) UnmarshalJSON(data []byte) error {
	type payload ContextWindowConfig
	aux := struct {
		DynamicEnabled *bool `json:"dynamic_enabled"`
		CurrentWindow  *int  `json:"current_window"`
		*payload
	}{payload: (*payload)(c)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	c.DynamicEnabled = true
	if aux.DynamicEnabled != nil {
		c.DynamicEnabled = *aux.DynamicEnabled
	}
	c.CurrentWindow = defaultWindow
	if aux.CurrentWindow != nil {
		c.CurrentWindow = *aux.CurrentWindow
	}
	return nil
}

// DefaultContextWindowConfig returns the initial context window state:
// dynamic sizing enabled at an 8192-token window.
func DefaultContextWindowConfig() ContextWindowConfig {
	return ContextWindowConfig{
		DynamicEnabled:    true,
		CurrentWindow:     defaultWindow,
		LastAdjustment:    "initial_setup",
		AdjustmentHistory: []Adjustment{},
	}
}

// Summary is a conversation summary produced by an external summarizer.
type Summary struct {
	Summary string   `json:"summary"`
	Topics  []string `json:"topics"`
}

// Metadata holds everything about a session other than its messages.
// MessageCount must always equal the length of the message sequence; the
// mutation operations on Session maintain that invariant.
type Metadata struct {
	SessionID     string              `json:"session_id"`
	Model         string              `json:"model"`
	CreatedAt     string              `json:"created_at"`
	UpdatedAt     string              `json:"updated_at"`
	MessageCount  int                 `json:"message_count"`
	Summary       *Summary            `json:"summary"`
	SummaryModel  *string             `json:"summary_model"`
	FormatVersion string              `json:"format_version"`
	ToolSettings  ToolSettings        `json:"tool_settings"`
	AgentSettings AgentSettings       `json:"agent_settings"`
	ContextWindow ContextWindowConfig `json:"context_window_config"`
}

// CreationOptions holds the inputs for creating a new session.
type CreationOptions struct {
	Model                  string
	SystemPrompt           string
	SystemPromptSourceFile string
	ToolSettings           *ToolSettings
	AgentSettings          *AgentSettings
}
