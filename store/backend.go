// Package store persists conversation sessions. A Backend holds raw
// session documents keyed by session id; the Manager layers CRUD with
// model validation, fault-tolerant listing, and per-id write serialization
// on top. The file backend is the canonical one — a session is exactly
// one JSON file — with redis and in-memory alternatives behind the same
// interface.
package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Backend stores raw session documents by session id. Implementations are
// stateless between calls; every operation performs I/O.
type Backend interface {
	// List returns the ids of all stored sessions, in no particular order.
	List(ctx context.Context) ([]string, error)
	// Load retrieves the document for id. Returns ErrNotFound when absent.
	Load(ctx context.Context, id string) ([]byte, error)
	// Save persists the document for id, creating or overwriting.
	Save(ctx context.Context, id string, data []byte) error
	// Delete removes the document for id. Returns ErrNotFound when absent.
	Delete(ctx context.Context, id string) error
	// Close releases backend resources.
	Close() error
}

// Driver names a backend implementation.
type Driver string

const (
	DriverFile   Driver = "file"
	DriverMemory Driver = "memory"
	DriverRedis  Driver = "redis"
)

// Config holds store initialization parameters.
type Config struct {
	Driver Driver `json:"driver,omitempty" yaml:"driver,omitempty"`

	// Path is the sessions directory for the file driver.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`

	// RedisAddr is the host:port for the redis driver.
	RedisAddr string `json:"redis_addr,omitempty" yaml:"redis_addr,omitempty"`

	// RedisTTL expires sessions after inactivity. Zero keeps sessions
	// until explicitly deleted, matching the file driver.
	RedisTTL time.Duration `json:"redis_ttl,omitempty" yaml:"redis_ttl,omitempty"`
}

// DefaultConfig returns the default store configuration: JSON files under
// chat_sessions.
func DefaultConfig() Config {
	return Config{
		Driver: DriverFile,
		Path:   "chat_sessions",
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.Driver != "" {
		c.Driver = source.Driver
	}
	if source.Path != "" {
		c.Path = source.Path
	}
	if source.RedisAddr != "" {
		c.RedisAddr = source.RedisAddr
	}
	if source.RedisTTL != 0 {
		c.RedisTTL = source.RedisTTL
	}
}

// NewBackend creates a Backend from configuration.
func NewBackend(cfg *Config) (Backend, error) {
	switch cfg.Driver {
	case DriverFile, "":
		return NewFileBackend(cfg.Path), nil
	case DriverMemory:
		return NewMemoryBackend(), nil
	case DriverRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		return NewRedisBackend(client, cfg.RedisTTL), nil
	default:
		return nil, fmt.Errorf("unknown store driver: %q", cfg.Driver)
	}
}

// memoryBackend is a map-backed Backend for tests and ephemeral use.
type memoryBackend struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

// NewMemoryBackend creates an in-memory Backend.
func NewMemoryBackend() Backend {
	return &memoryBackend{docs: make(map[string][]byte)}
}

func (b *memoryBackend) List(_ context.Context) ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	ids := make([]string, 0, len(b.docs))
	for id := range b.docs {
		ids = append(ids, id)
	}
	return ids, nil
}

func (b *memoryBackend) Load(_ context.Context, id string) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	data, exists := b.docs[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	copied := make([]byte, len(data))
	copy(copied, data)
	return copied, nil
}

func (b *memoryBackend) Save(_ context.Context, id string, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	copied := make([]byte, len(data))
	copy(copied, data)
	b.docs[id] = copied
	return nil
}

func (b *memoryBackend) Delete(_ context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.docs[id]; !exists {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(b.docs, id)
	return nil
}

func (b *memoryBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.docs = nil
	return nil
}
