// Package registry resolves model names to model metadata. The session
// store uses it to validate that a session's model exists, and the
// context window service uses it to learn a model's maximum context
// length.
package registry

import (
	"context"
	"errors"
)

// Sentinel errors for static registry mutation.
var (
	ErrModelNotFound = errors.New("model not registered")
	ErrModelExists   = errors.New("model already registered")
	ErrEmptyName     = errors.New("model name is empty")
)

// ModelInfo describes a model known to the model runtime.
type ModelInfo struct {
	Name              string   `json:"name" yaml:"name"`
	SizeMB            float64  `json:"size_mb,omitempty" yaml:"size_mb,omitempty"`
	Format            string   `json:"format,omitempty" yaml:"format,omitempty"`
	Family            string   `json:"family,omitempty" yaml:"family,omitempty"`
	ParameterSize     string   `json:"parameter_size,omitempty" yaml:"parameter_size,omitempty"`
	QuantizationLevel string   `json:"quantization_level,omitempty" yaml:"quantization_level,omitempty"`
	Capabilities      []string `json:"capabilities,omitempty" yaml:"capabilities,omitempty"`
	ContextLength     int      `json:"context_length,omitempty" yaml:"context_length,omitempty"`
}

// Registry looks up model metadata by name. Implementations may reach out
// to an external model runtime; lookups therefore take a context and can
// fail independently of the model being unknown.
type Registry interface {
	// GetModelInfo returns metadata for the named model, or nil (with a
	// nil error) when the model is unknown.
	GetModelInfo(ctx context.Context, name string) (*ModelInfo, error)
}
