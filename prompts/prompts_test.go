package prompts_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mochi-chat/mochi/prompts"
)

func newTestService(t *testing.T) *prompts.Service {
	t.Helper()
	svc, err := prompts.NewService(&prompts.Config{Path: t.TempDir()})
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	return svc
}

func TestService_CreateGetRoundTrip(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if err := svc.Create(ctx, "helpful.md", "You are a helpful assistant."); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := svc.Get(ctx, "helpful.md")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != "You are a helpful assistant." {
		t.Errorf("Get() = %q", got)
	}
}

func TestService_CreateDuplicate(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if err := svc.Create(ctx, "a.md", "content"); err != nil {
		t.Fatal(err)
	}
	if err := svc.Create(ctx, "a.md", "other"); !errors.Is(err, prompts.ErrAlreadyExists) {
		t.Errorf("Create() duplicate error = %v, want ErrAlreadyExists", err)
	}
}

func TestService_UpdateMissing(t *testing.T) {
	svc := newTestService(t)

	err := svc.Update(context.Background(), "missing.md", "content")
	if !errors.Is(err, prompts.ErrNotFound) {
		t.Errorf("Update() error = %v, want ErrNotFound", err)
	}
}

func TestService_UpdateOverwrites(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if err := svc.Create(ctx, "a.md", "first"); err != nil {
		t.Fatal(err)
	}
	if err := svc.Update(ctx, "a.md", "second"); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	got, err := svc.Get(ctx, "a.md")
	if err != nil {
		t.Fatal(err)
	}
	if got != "second" {
		t.Errorf("Get() after update = %q, want %q", got, "second")
	}
}

func TestService_Delete(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if err := svc.Create(ctx, "a.md", "content"); err != nil {
		t.Fatal(err)
	}
	if err := svc.Delete(ctx, "a.md"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := svc.Get(ctx, "a.md"); !errors.Is(err, prompts.ErrNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrNotFound", err)
	}
	if err := svc.Delete(ctx, "a.md"); !errors.Is(err, prompts.ErrNotFound) {
		t.Errorf("Delete() twice error = %v, want ErrNotFound", err)
	}
}

func TestService_FilenameValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		filename string
	}{
		{"empty", ""},
		{"wrong extension", "prompt.txt"},
		{"no extension", "prompt"},
		{"forward slash", "../escape.md"},
		{"backslash", `dir\escape.md`},
		{"leading dot", ".hidden.md"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.Create(ctx, tt.filename, "content")
			if !errors.Is(err, prompts.ErrInvalidFilename) {
				t.Errorf("Create(%q) error = %v, want ErrInvalidFilename", tt.filename, err)
			}
		})
	}
}

func TestService_ContentValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if err := svc.Create(ctx, "a.md", "   \n\t  "); !errors.Is(err, prompts.ErrInvalidContent) {
		t.Errorf("Create(whitespace) error = %v, want ErrInvalidContent", err)
	}
	if err := svc.Create(ctx, "a.md", strings.Repeat("x", 20001)); !errors.Is(err, prompts.ErrInvalidContent) {
		t.Errorf("Create(oversized) error = %v, want ErrInvalidContent", err)
	}
	// Exactly at the limit is fine.
	if err := svc.Create(ctx, "a.md", strings.Repeat("x", 20000)); err != nil {
		t.Errorf("Create(at limit) error = %v", err)
	}
}

func TestService_ListMetadata(t *testing.T) {
	dir := t.TempDir()
	svc, err := prompts.NewService(&prompts.Config{Path: dir})
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	long := strings.Repeat("word ", 100) // 500 chars, 100 words
	if err := svc.Create(ctx, "zeta.md", "short prompt"); err != nil {
		t.Fatal(err)
	}
	if err := svc.Create(ctx, "alpha.md", long); err != nil {
		t.Fatal(err)
	}
	// Non-prompt files are ignored.
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	infos, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("List() returned %d prompts, want 2", len(infos))
	}
	if infos[0].Filename != "alpha.md" || infos[1].Filename != "zeta.md" {
		t.Errorf("List() order = [%s %s], want sorted by filename", infos[0].Filename, infos[1].Filename)
	}

	alpha := infos[0]
	if alpha.WordCount != 100 {
		t.Errorf("WordCount = %d, want 100", alpha.WordCount)
	}
	if len(alpha.Preview) > 250 || !strings.HasSuffix(alpha.Preview, "...") {
		t.Errorf("Preview = %d chars ending %q, want <=250 with ellipsis", len(alpha.Preview), alpha.Preview[len(alpha.Preview)-3:])
	}

	zeta := infos[1]
	if zeta.Preview != "short prompt" || zeta.WordCount != 2 {
		t.Errorf("short prompt metadata = %+v", zeta)
	}
}
