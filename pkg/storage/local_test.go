package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func newTestLocal(t *testing.T) *Local {
	t.Helper()
	s, err := NewLocal(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestLocal_WriteAndRead(t *testing.T) {
	s := newTestLocal(t)
	ctx := context.Background()

	if err := WriteFile(ctx, s, "reports/run.yaml", []byte("rows: 3\n")); err != nil {
		t.Fatal(err)
	}
	got, err := ReadFile(ctx, s, "reports/run.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "rows: 3\n" {
		t.Fatalf("got %q", got)
	}
	info, err := os.Stat(filepath.Join(s.Root(), "reports", "run.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o644 {
		t.Fatalf("mode = %v", info.Mode().Perm())
	}
}

func TestLocal_WriteVisibleOnClose(t *testing.T) {
	s := newTestLocal(t)
	ctx := context.Background()

	if err := WriteFile(ctx, s, "f.csv", []byte("old")); err != nil {
		t.Fatal(err)
	}
	w, err := s.Write(ctx, "f.csv")
	if err != nil {
		t.Fatal(err)
	}
	io.WriteString(w, "new content")

	got, _ := ReadFile(ctx, s, "f.csv")
	if string(got) != "old" {
		t.Fatalf("before Close got %q, want old content", got)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	got, _ = ReadFile(ctx, s, "f.csv")
	if string(got) != "new content" {
		t.Fatalf("after Close got %q", got)
	}

	entries, err := os.ReadDir(s.Root())
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("temporary files left behind: %v", entries)
	}
}

func TestLocal_ReadNotExist(t *testing.T) {
	s := newTestLocal(t)
	_, err := s.Read(context.Background(), "no-such-file")
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected os.ErrNotExist, got %v", err)
	}
}

func TestLocal_Exists(t *testing.T) {
	s := newTestLocal(t)
	ctx := context.Background()

	ok, err := s.Exists(ctx, "missing")
	if err != nil || ok {
		t.Fatalf("Exists(missing) = %v, %v", ok, err)
	}
	if err := WriteFile(ctx, s, "present", nil); err != nil {
		t.Fatal(err)
	}
	ok, err = s.Exists(ctx, "present")
	if err != nil || !ok {
		t.Fatalf("Exists(present) = %v, %v", ok, err)
	}
}

func TestLocal_InvalidPath(t *testing.T) {
	s := newTestLocal(t)
	ctx := context.Background()
	for _, p := range []string{"", "../escape", "/etc/passwd", "a/../../b"} {
		if _, err := s.Read(ctx, p); !errors.Is(err, ErrInvalidPath) {
			t.Errorf("Read(%q): %v", p, err)
		}
		if _, err := s.Write(ctx, p); !errors.Is(err, ErrInvalidPath) {
			t.Errorf("Write(%q): %v", p, err)
		}
	}
}

func TestNewLocal_DoesNotCreateDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "dir")
	s, err := NewLocal(dir)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(dir); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("root created eagerly: %v", err)
	}
	if err := WriteFile(context.Background(), s, "x", []byte("1")); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "x")); err != nil {
		t.Fatal(err)
	}
}
