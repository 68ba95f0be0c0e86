// ABOUTME: Tests for recent sign-in email storage
// ABOUTME: Validates persistence, the max limit and deduplication

package recentlogins

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEmpty(t *testing.T) {
	r := New(t.TempDir())

	emails, err := r.Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(emails) != 0 {
		t.Errorf("expected empty list, got %v", emails)
	}
	if r.Latest() != "" {
		t.Errorf("expected no latest email, got %q", r.Latest())
	}
}

func TestAddPersists(t *testing.T) {
	dir := t.TempDir()
	r := New(dir)

	if err := r.Add("ada@example.com"); err != nil {
		t.Fatalf("Add() error: %v", err)
	}
	if err := r.Add("grace@example.com"); err != nil {
		t.Fatalf("Add() error: %v", err)
	}

	info, err := os.Stat(filepath.Join(dir, FileName))
	if err != nil {
		t.Fatalf("expected file written: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("expected 0600, got %o", info.Mode().Perm())
	}

	loaded, err := New(dir).Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(loaded) != 2 || loaded[0] != "grace@example.com" || loaded[1] != "ada@example.com" {
		t.Errorf("unexpected order %v", loaded)
	}
}

func TestAddDeduplicatesAndNormalizes(t *testing.T) {
	r := New(t.TempDir())

	r.Add("ada@example.com")
	r.Add("grace@example.com")
	r.Add("  ADA@example.com ")

	list := r.List()
	if len(list) != 2 {
		t.Fatalf("expected 2 emails, got %v", list)
	}
	if list[0] != "ada@example.com" {
		t.Errorf("expected ada moved to front, got %v", list)
	}
}

func TestAddIgnoresBlank(t *testing.T) {
	r := New(t.TempDir())
	if err := r.Add("   "); err != nil {
		t.Fatalf("Add() error: %v", err)
	}
	if len(r.List()) != 0 {
		t.Errorf("expected empty list, got %v", r.List())
	}
}

func TestMaxRecent(t *testing.T) {
	r := New(t.TempDir())
	for _, e := range []string{"a@x.io", "b@x.io", "c@x.io", "d@x.io", "e@x.io", "f@x.io", "g@x.io"} {
		r.Add(e)
	}

	list := r.List()
	if len(list) != MaxRecent {
		t.Fatalf("expected %d emails, got %d", MaxRecent, len(list))
	}
	if list[0] != "g@x.io" {
		t.Errorf("expected newest first, got %v", list)
	}
}

func TestCorruptFile(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, FileName), []byte("not json"), 0o600)

	emails, err := New(dir).Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(emails) != 0 {
		t.Errorf("expected empty list, got %v", emails)
	}
}

func TestMemoryOnly(t *testing.T) {
	r := New("")
	if err := r.Add("ada@example.com"); err != nil {
		t.Fatalf("Add() error: %v", err)
	}
	if r.Latest() != "ada@example.com" {
		t.Errorf("expected in-memory latest, got %q", r.Latest())
	}
}
