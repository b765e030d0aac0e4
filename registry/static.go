package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Static is a Registry backed by an in-process map, populated from
// configuration or by tests. Thread-safe for concurrent access.
type Static struct {
	mu     sync.RWMutex
	models map[string]ModelInfo
}

// NewStatic creates a Static registry seeded with the given models.
func NewStatic(models ...ModelInfo) *Static {
	s := &Static{models: make(map[string]ModelInfo, len(models))}
	for _, info := range models {
		s.models[info.Name] = info
	}
	return s
}

// GetModelInfo implements Registry. Unknown models yield (nil, nil).
func (s *Static) GetModelInfo(_ context.Context, name string) (*ModelInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	info, exists := s.models[name]
	if !exists {
		return nil, nil
	}
	return &info, nil
}

// Register adds a model to the registry. Returns ErrModelExists if a
// model with the same name is already present.
func (s *Static) Register(info ModelInfo) error {
	if info.Name == "" {
		return ErrEmptyName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.models[info.Name]; exists {
		return fmt.Errorf("%w: %s", ErrModelExists, info.Name)
	}

	s.models[info.Name] = info
	return nil
}

// Replace updates the metadata for an existing model.
func (s *Static) Replace(info ModelInfo) error {
	if info.Name == "" {
		return ErrEmptyName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.models[info.Name]; !exists {
		return fmt.Errorf("%w: %s", ErrModelNotFound, info.Name)
	}

	s.models[info.Name] = info
	return nil
}

// Unregister removes a model from the registry.
func (s *Static) Unregister(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.models[name]; !exists {
		return fmt.Errorf("%w: %s", ErrModelNotFound, name)
	}

	delete(s.models, name)
	return nil
}

// List returns all registered models, sorted by name.
func (s *Static) List() []ModelInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	infos := make([]ModelInfo, 0, len(s.models))
	for _, info := range s.models {
		infos = append(infos, info)
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Name < infos[j].Name
	})

	return infos
}
