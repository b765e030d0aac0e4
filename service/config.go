package service

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mochi-chat/mochi/contextwindow"
	"github.com/mochi-chat/mochi/prompts"
	"github.com/mochi-chat/mochi/registry"
	"github.com/mochi-chat/mochi/store"
)

// Config holds initialization parameters for all chat subsystems. Each
// subsystem section delegates to that subsystem's config-driven
// constructor.
type Config struct {
	Store         store.Config         `json:"store" yaml:"store"`
	ContextWindow contextwindow.Config `json:"context_window" yaml:"context_window"`
	Prompts       prompts.Config       `json:"prompts" yaml:"prompts"`

	// Models seeds the model registry. An empty list disables model
	// validation on session create and update.
	Models []registry.ModelInfo `json:"models,omitempty" yaml:"models,omitempty"`

	// LogLevel is the minimum slog level: debug, info, warn, or error.
	LogLevel string `json:"log_level,omitempty" yaml:"log_level,omitempty"`

	// LogFile mirrors events to a JSON log file in addition to stderr.
	// Empty disables the file sink.
	LogFile string `json:"log_file,omitempty" yaml:"log_file,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults for all subsystems.
func DefaultConfig() Config {
	return Config{
		Store:         store.DefaultConfig(),
		ContextWindow: contextwindow.DefaultConfig(),
		Prompts:       prompts.DefaultConfig(),
		LogLevel:      "info",
	}
}

// Merge applies non-zero values from source into c, delegating to each
// subsystem's Merge method.
func (c *Config) Merge(source *Config) {
	c.Store.Merge(&source.Store)
	c.ContextWindow.Merge(&source.ContextWindow)
	c.Prompts.Merge(&source.Prompts)

	if len(source.Models) > 0 {
		c.Models = source.Models
	}
	if source.LogLevel != "" {
		c.LogLevel = source.LogLevel
	}
	if source.LogFile != "" {
		c.LogFile = source.LogFile
	}
}

// LoadConfig reads a config file, merges it with defaults, and returns
// the resulting Config. The format is chosen by extension: .yaml or .yml
// parses as YAML, anything else as JSON.
func LoadConfig(filename string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var loaded Config
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &loaded)
	default:
		err = json.Unmarshal(data, &loaded)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.Merge(&loaded)
	return &cfg, nil
}
