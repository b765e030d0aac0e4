package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const sessionFileExt = ".json"

// fileBackend stores one JSON document per session at {dir}/{id}.json.
// Saves go through a temp file and rename so a crashed or concurrent
// writer never leaves a half-written session behind.
type fileBackend struct {
	dir string
}

// NewFileBackend creates a Backend rooted at dir. The directory is
// created lazily on first save.
func NewFileBackend(dir string) Backend {
	return &fileBackend{dir: dir}
}

func (b *fileBackend) path(id string) string {
	return filepath.Join(b.dir, id+sessionFileExt)
}

func (b *fileBackend) List(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(b.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrLoadFailed, err)
	}

	var ids []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, sessionFileExt) {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, sessionFileExt))
	}
	return ids, nil
}

func (b *fileBackend) Load(_ context.Context, id string) ([]byte, error) {
	data, err := os.ReadFile(b.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrLoadFailed, id, err)
	}
	return data, nil
}

func (b *fileBackend) Save(_ context.Context, id string, data []byte) error {
	if err := os.MkdirAll(b.dir, 0o755); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrSaveFailed, id, err)
	}

	tmp, err := os.CreateTemp(b.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrSaveFailed, id, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: %s: %v", ErrSaveFailed, id, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %s: %v", ErrSaveFailed, id, err)
	}

	if err := os.Rename(tmpName, b.path(id)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %s: %v", ErrSaveFailed, id, err)
	}

	return nil
}

func (b *fileBackend) Delete(_ context.Context, id string) error {
	if err := os.Remove(b.path(id)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return fmt.Errorf("delete failed: %s: %w", id, err)
	}
	return nil
}

func (b *fileBackend) Close() error { return nil }
