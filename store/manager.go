package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/mochi-chat/mochi/core/chat"
	"github.com/mochi-chat/mochi/observability"
	"github.com/mochi-chat/mochi/registry"
	"github.com/mochi-chat/mochi/session"
)

// Event types emitted by the Manager.
const (
	EventSessionCreated EventType = "session.created"
	EventSessionDeleted EventType = "session.deleted"
	EventSessionSkipped EventType = "session.skipped"
)

// EventType aliases the observability event type for store events.
type EventType = observability.EventType

// Manager coordinates session persistence over a Backend. All mutating
// operations on a given session id are serialized through a per-id lock,
// so concurrent callers cannot interleave a load-modify-save cycle.
type Manager struct {
	backend  Backend
	models   registry.Registry
	observer observability.Observer

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// Option configures a Manager after config-driven initialization.
type Option func(*Manager)

// WithModelRegistry enables model validation on create and update. Without
// a registry any model name is accepted.
func WithModelRegistry(r registry.Registry) Option {
	return func(m *Manager) { m.models = r }
}

// WithObserver overrides the default NoOpObserver.
func WithObserver(o observability.Observer) Option {
	return func(m *Manager) { m.observer = o }
}

// WithBackend overrides the config-driven backend.
func WithBackend(b Backend) Option {
	return func(m *Manager) { m.backend = b }
}

// NewManager creates a Manager with the given configuration. A nil config
// uses DefaultConfig.
func NewManager(cfg *Config, opts ...Option) (*Manager, error) {
	resolved := DefaultConfig()
	if cfg != nil {
		resolved.Merge(cfg)
	}

	m := &Manager{
		observer: observability.NoOpObserver{},
		locks:    make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.backend == nil {
		backend, err := NewBackend(&resolved)
		if err != nil {
			return nil, err
		}
		m.backend = backend
	}

	return m, nil
}

// Backend exposes the underlying storage backend.
func (m *Manager) Backend() Backend { return m.backend }

// Close releases the underlying backend.
func (m *Manager) Close() error { return m.backend.Close() }

func (m *Manager) lockFor(id string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.locks[id]
	if !ok {
		l = &sync.Mutex{}
		m.locks[id] = l
	}
	return l
}

func (m *Manager) validateModel(ctx context.Context, model string) error {
	if m.models == nil {
		return nil
	}
	info, err := m.models.GetModelInfo(ctx, model)
	if err != nil {
		return fmt.Errorf("model lookup: %w", err)
	}
	if info == nil {
		return fmt.Errorf("%w: %s", ErrUnknownModel, model)
	}
	return nil
}

// Create builds a new session from the given options and persists it.
// The model name is validated against the registry when one is configured.
func (m *Manager) Create(ctx context.Context, opts session.CreationOptions) (*session.Session, error) {
	if err := m.validateModel(ctx, opts.Model); err != nil {
		return nil, err
	}

	sess := session.New(chat.NewID(), opts.Model)
	if opts.ToolSettings != nil {
		sess.UpdateToolSettings(*opts.ToolSettings)
	}
	if opts.AgentSettings != nil {
		sess.UpdateAgentSettings(*opts.AgentSettings)
	}
	if opts.SystemPrompt != "" {
		sess.SetSystemPrompt(opts.SystemPrompt, opts.SystemPromptSourceFile)
	}

	if err := m.save(ctx, sess); err != nil {
		return nil, err
	}

	m.observer.OnEvent(ctx, observability.NewEvent(
		EventSessionCreated, observability.LevelInfo, "store",
		map[string]any{"session_id": sess.ID, "model": sess.Model},
	))
	return sess, nil
}

// Get loads and decodes a single session.
func (m *Manager) Get(ctx context.Context, id string) (*session.Session, error) {
	data, err := m.backend.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	sess, err := session.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrLoadFailed, id, err)
	}
	return sess, nil
}

// List loads every stored session, newest first. A session that fails to
// load or decode is skipped with a warning event rather than failing the
// whole listing, so one corrupt file never hides the rest.
func (m *Manager) List(ctx context.Context) ([]*session.Session, error) {
	ids, err := m.backend.List(ctx)
	if err != nil {
		return nil, err
	}

	sessions := make([]*session.Session, 0, len(ids))
	for _, id := range ids {
		sess, err := m.Get(ctx, id)
		if err != nil {
			m.observer.OnEvent(ctx, observability.NewEvent(
				EventSessionSkipped, observability.LevelWarning, "store",
				map[string]any{"session_id": id, "error": err.Error()},
			))
			continue
		}
		sessions = append(sessions, sess)
	}

	// Timestamps are fixed-width UTC, so string order is chronological.
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].Metadata.UpdatedAt > sessions[j].Metadata.UpdatedAt
	})
	return sessions, nil
}

// UpdateOptions holds the partial-update inputs for a session. Nil fields
// are left unchanged.
type UpdateOptions struct {
	Model         *string
	ToolSettings  *session.ToolSettings
	AgentSettings *session.AgentSettings
}

// Update applies a partial update to a stored session and persists it.
// A model change is validated against the registry when one is configured.
func (m *Manager) Update(ctx context.Context, id string, opts UpdateOptions) (*session.Session, error) {
	lock := m.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	sess, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if opts.Model != nil && *opts.Model != sess.Model {
		if err := m.validateModel(ctx, *opts.Model); err != nil {
			return nil, err
		}
		sess.UpdateModel(*opts.Model)
	}
	if opts.ToolSettings != nil {
		sess.UpdateToolSettings(*opts.ToolSettings)
	}
	if opts.AgentSettings != nil {
		sess.UpdateAgentSettings(*opts.AgentSettings)
	}

	if err := m.save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Delete removes a stored session.
func (m *Manager) Delete(ctx context.Context, id string) error {
	lock := m.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	if err := m.backend.Delete(ctx, id); err != nil {
		return err
	}

	m.mu.Lock()
	delete(m.locks, id)
	m.mu.Unlock()

	m.observer.OnEvent(ctx, observability.NewEvent(
		EventSessionDeleted, observability.LevelInfo, "store",
		map[string]any{"session_id": id},
	))
	return nil
}

// Messages loads a session and returns its message history.
func (m *Manager) Messages(ctx context.Context, id string) ([]chat.Message, error) {
	sess, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return sess.Messages, nil
}

// Save persists a session the caller has mutated in place.
func (m *Manager) Save(ctx context.Context, sess *session.Session) error {
	lock := m.lockFor(sess.ID)
	lock.Lock()
	defer lock.Unlock()
	return m.save(ctx, sess)
}

func (m *Manager) save(ctx context.Context, sess *session.Session) error {
	data, err := sess.Encode()
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrSaveFailed, sess.ID, err)
	}
	return m.backend.Save(ctx, sess.ID, data)
}
