package session

// FormatVersion is the current session file schema version.
const FormatVersion = "1.3"

// oldestFormatVersion is assumed when a file carries no version at all.
const oldestFormatVersion = "1.0"

type migration struct {
	from, to string
	apply    func(*Metadata)
}

// Upgrade chain applied on load, oldest first. Each step default-constructs
// the settings block introduced by its target version.
var migrations = []migration{
	{"1.0", "1.1", ensureToolSettings},
	{"1.1", "1.2", ensureAgentSettings},
	{"1.2", "1.3", ensureContextWindow},
}

// migrateMetadata walks the upgrade chain from the recorded version to the
// current one. A missing version is treated as the oldest supported; an
// unrecognized version is preserved untouched.
func migrateMetadata(m *Metadata) {
	version := m.FormatVersion
	if version == "" {
		version = oldestFormatVersion
	}

	for _, step := range migrations {
		if version == step.from {
			step.apply(m)
			version = step.to
		}
	}

	m.FormatVersion = version
}

// normalizeMetadata default-constructs nested state that even a
// current-version file may omit.
func normalizeMetadata(m *Metadata) {
	ensureToolSettings(m)
	ensureAgentSettings(m)
	ensureContextWindow(m)
}

func ensureToolSettings(m *Metadata) {
	if m.ToolSettings.Tools == nil {
		m.ToolSettings.Tools = []string{}
	}
	if m.ToolSettings.ExecutionPolicy == "" {
		m.ToolSettings.ExecutionPolicy = PolicyAlwaysConfirm
	}
}

func ensureAgentSettings(m *Metadata) {
	if m.AgentSettings.EnabledAgents == nil {
		m.AgentSettings.EnabledAgents = []string{}
	}
}

func ensureContextWindow(m *Metadata) {
	if m.ContextWindow.CurrentWindow == 0 {
		m.ContextWindow = DefaultContextWindowConfig()
	}
	if m.ContextWindow.LastAdjustment == "" {
		m.ContextWindow.LastAdjustment = "initial_setup"
	}
	if m.ContextWindow.AdjustmentHistory == nil {
		m.ContextWindow.AdjustmentHistory = []Adjustment{}
	}
}
