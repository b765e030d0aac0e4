// Package prompts manages reusable system-prompt templates stored as
// markdown files in a flat directory.
package prompts

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mochi-chat/mochi/observability"
)

// Sentinel errors for prompt operations.
var (
	ErrNotFound        = errors.New("system prompt not found")
	ErrAlreadyExists   = errors.New("system prompt already exists")
	ErrInvalidFilename = errors.New("invalid prompt filename")
	ErrInvalidContent  = errors.New("invalid prompt content")
)

const (
	promptExt        = ".md"
	maxContentLength = 20000
	previewLength    = 250
)

// EventPromptSkipped is emitted when a listing skips an unreadable file.
const EventPromptSkipped observability.EventType = "prompts.skipped"

// Info is the listing metadata for one prompt file.
type Info struct {
	Filename  string `json:"filename"`
	Preview   string `json:"preview"`
	WordCount int    `json:"word_count"`
}

// Config controls where prompt files live.
type Config struct {
	// Path is the directory holding the .md prompt files.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
}

// DefaultConfig returns the default prompts configuration.
func DefaultConfig() Config {
	return Config{Path: "system_prompts"}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.Path != "" {
		c.Path = source.Path
	}
}

// Service performs CRUD over the prompt directory.
type Service struct {
	dir      string
	observer observability.Observer
}

// Option configures a Service after config-driven initialization.
type Option func(*Service)

// WithObserver overrides the default NoOpObserver.
func WithObserver(o observability.Observer) Option {
	return func(s *Service) { s.observer = o }
}

// NewService creates a Service rooted at the configured directory,
// creating it if needed. A nil config uses DefaultConfig.
func NewService(cfg *Config, opts ...Option) (*Service, error) {
	resolved := DefaultConfig()
	if cfg != nil {
		resolved.Merge(cfg)
	}

	s := &Service{
		dir:      resolved.Path,
		observer: observability.NoOpObserver{},
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create prompts directory: %w", err)
	}
	return s, nil
}

// List returns metadata for every prompt file, sorted by filename. A file
// that cannot be read is skipped with a warning event rather than failing
// the listing.
func (s *Service) List(ctx context.Context) ([]Info, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list prompts: %w", err)
	}

	var infos []Info
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, promptExt) {
			continue
		}
		content, err := os.ReadFile(filepath.Join(s.dir, name))
		if err != nil {
			s.observer.OnEvent(ctx, observability.NewEvent(
				EventPromptSkipped, observability.LevelWarning, "prompts",
				map[string]any{"filename": name, "error": err.Error()},
			))
			continue
		}
		text := string(content)
		infos = append(infos, Info{
			Filename:  name,
			Preview:   preview(text, previewLength),
			WordCount: len(strings.Fields(text)),
		})
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].Filename < infos[j].Filename })
	return infos, nil
}

// Get returns the full content of one prompt file.
func (s *Service) Get(_ context.Context, filename string) (string, error) {
	if err := validateFilename(filename); err != nil {
		return "", err
	}
	content, err := os.ReadFile(filepath.Join(s.dir, filename))
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, filename)
		}
		return "", fmt.Errorf("read prompt %s: %w", filename, err)
	}
	return string(content), nil
}

// Create writes a new prompt file. It fails if the file already exists.
func (s *Service) Create(_ context.Context, filename, content string) error {
	if err := validateFilename(filename); err != nil {
		return err
	}
	if err := validateContent(content); err != nil {
		return err
	}

	path := filepath.Join(s.dir, filename)
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, filename)
	}
	return writeFile(path, content)
}

// Update overwrites an existing prompt file. It fails if the file does
// not exist.
func (s *Service) Update(_ context.Context, filename, content string) error {
	if err := validateFilename(filename); err != nil {
		return err
	}
	if err := validateContent(content); err != nil {
		return err
	}

	path := filepath.Join(s.dir, filename)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, filename)
		}
		return fmt.Errorf("stat prompt %s: %w", filename, err)
	}
	return writeFile(path, content)
}

// Delete removes a prompt file.
func (s *Service) Delete(_ context.Context, filename string) error {
	if err := validateFilename(filename); err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(s.dir, filename)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, filename)
		}
		return fmt.Errorf("delete prompt %s: %w", filename, err)
	}
	return nil
}

func validateFilename(filename string) error {
	switch {
	case filename == "":
		return fmt.Errorf("%w: empty filename", ErrInvalidFilename)
	case !strings.HasSuffix(filename, promptExt):
		return fmt.Errorf("%w: %s must end with %s", ErrInvalidFilename, filename, promptExt)
	case strings.ContainsAny(filename, `/\`):
		return fmt.Errorf("%w: %s contains path separators", ErrInvalidFilename, filename)
	case strings.HasPrefix(filename, "."):
		return fmt.Errorf("%w: %s starts with a dot", ErrInvalidFilename, filename)
	}
	return nil
}

func validateContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("%w: empty or whitespace-only", ErrInvalidContent)
	}
	if len(content) > maxContentLength {
		return fmt.Errorf("%w: exceeds %d characters", ErrInvalidContent, maxContentLength)
	}
	return nil
}

func writeFile(path, content string) error {
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write prompt: %w", err)
	}
	return nil
}

func preview(content string, maxLength int) string {
	if len(content) <= maxLength {
		return content
	}
	return strings.TrimRight(content[:maxLength-3], " \t\n") + "..."
}
