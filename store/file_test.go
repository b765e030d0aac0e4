package store_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mochi-chat/mochi/store"
)

func TestFileBackend_SaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	b := store.NewFileBackend(filepath.Join(dir, "sessions"))
	ctx := context.Background()

	data := []byte(`{"metadata":{},"messages":[]}`)
	if err := b.Save(ctx, "abc123", data); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := b.Load(ctx, "abc123")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if string(got) != string(data) {
		t.Errorf("Load() = %q, want %q", got, data)
	}
}

func TestFileBackend_LoadMissing(t *testing.T) {
	b := store.NewFileBackend(t.TempDir())

	_, err := b.Load(context.Background(), "missing")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Load() error = %v, want ErrNotFound", err)
	}
}

func TestFileBackend_ListFiltersNonSessions(t *testing.T) {
	dir := t.TempDir()
	b := store.NewFileBackend(dir)
	ctx := context.Background()

	if err := b.Save(ctx, "aaa", []byte("{}")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := b.Save(ctx, "bbb", []byte("{}")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	// Files a listing must ignore.
	if err := os.WriteFile(filepath.Join(dir, ".hidden.json"), []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.json"), 0o755); err != nil {
		t.Fatal(err)
	}

	ids, err := b.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("List() returned %d ids, want 2: %v", len(ids), ids)
	}
	seen := map[string]bool{}
	for _, id := range ids {
		seen[id] = true
	}
	if !seen["aaa"] || !seen["bbb"] {
		t.Errorf("List() = %v, want aaa and bbb", ids)
	}
}

func TestFileBackend_ListMissingDirectory(t *testing.T) {
	b := store.NewFileBackend(filepath.Join(t.TempDir(), "never-created"))

	ids, err := b.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("List() = %v, want empty", ids)
	}
}

func TestFileBackend_SaveOverwrites(t *testing.T) {
	b := store.NewFileBackend(t.TempDir())
	ctx := context.Background()

	if err := b.Save(ctx, "id1", []byte("first")); err != nil {
		t.Fatal(err)
	}
	if err := b.Save(ctx, "id1", []byte("second")); err != nil {
		t.Fatal(err)
	}

	got, err := b.Load(ctx, "id1")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "second" {
		t.Errorf("Load() = %q, want %q", got, "second")
	}
}

func TestFileBackend_Delete(t *testing.T) {
	b := store.NewFileBackend(t.TempDir())
	ctx := context.Background()

	if err := b.Save(ctx, "id1", []byte("{}")); err != nil {
		t.Fatal(err)
	}
	if err := b.Delete(ctx, "id1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := b.Load(ctx, "id1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Load() after delete error = %v, want ErrNotFound", err)
	}
	if err := b.Delete(ctx, "id1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Delete() twice error = %v, want ErrNotFound", err)
	}
}

func TestFileBackend_SaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	b := store.NewFileBackend(dir)
	ctx := context.Background()

	if err := b.Save(ctx, "id1", []byte("{}")); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "id1.json" {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("directory contents = %v, want [id1.json]", names)
	}
}
