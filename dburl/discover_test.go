package dburl

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatalf("failed to create %s: %v", path, err)
	}
}

func TestDiscoverSQLite_FirstDirectoryWins(t *testing.T) {
	root := t.TempDir()
	d1 := filepath.Join(root, ".wrangler", "state", "v3", "d1", "miniflare-D1DatabaseObject")
	d2 := filepath.Join(root, ".wrangler", "state", "v3", "d1")

	touch(t, filepath.Join(d1, "b.sqlite"))
	touch(t, filepath.Join(d1, "a.sqlite"))
	touch(t, filepath.Join(d1, "a.sqlite-wal"))
	touch(t, filepath.Join(d2, "other.sqlite"))

	got, err := DiscoverSQLite([]string{d1, d2})
	if err != nil {
		t.Fatalf("DiscoverSQLite() error = %v", err)
	}
	if want := filepath.Join(d1, "a.sqlite"); got != want {
		t.Errorf("DiscoverSQLite() = %q, want %q", got, want)
	}
}

func TestDiscoverSQLite_SkipsMissingAndEmptyDirs(t *testing.T) {
	root := t.TempDir()
	empty := filepath.Join(root, "empty")
	if err := os.MkdirAll(empty, 0755); err != nil {
		t.Fatal(err)
	}
	touch(t, filepath.Join(root, "cwd", "content.sqlite"))

	dirs := []string{filepath.Join(root, "missing"), empty, filepath.Join(root, "cwd")}
	got, err := DiscoverSQLite(dirs)
	if err != nil {
		t.Fatalf("DiscoverSQLite() error = %v", err)
	}
	if want := filepath.Join(root, "cwd", "content.sqlite"); got != want {
		t.Errorf("DiscoverSQLite() = %q, want %q", got, want)
	}
}

func TestDiscoverSQLite_IgnoresDirectoriesNamedLikeDatabases(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "fake.sqlite"), 0755); err != nil {
		t.Fatal(err)
	}

	_, err := DiscoverSQLite([]string{root})
	if !errors.Is(err, ErrNoDatabase) {
		t.Errorf("expected ErrNoDatabase, got %v", err)
	}
}

func TestDiscoverSQLite_NoDirs(t *testing.T) {
	_, err := DiscoverSQLite(nil)
	if !errors.Is(err, ErrNoDatabase) {
		t.Errorf("expected ErrNoDatabase, got %v", err)
	}
}
