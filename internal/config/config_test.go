package config

import (
	"os"
	"path/filepath"
	"testing"

	"emberline/internal/errs"
)

func TestLoadMissingFileYieldsEmptyStore(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, err := s.String("anything", "fallback")
	if err != nil || v != "fallback" {
		t.Errorf("got (%q, %v), want fallback default", v, err)
	}
	if s.Dirty() {
		t.Error("fresh store reported dirty")
	}
}

func TestLoadUnparseableFileErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	os.WriteFile(path, []byte("{not yaml: ["), 0o644)
	_, err := Load(path)
	if errs.KindOf(err) != errs.KindValue {
		t.Errorf("got kind %v, want value", errs.KindOf(err))
	}
}

func TestCommitRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	s, _ := Load(path)
	s.Set("player_name", "flynn")
	s.Set("audio_volume", 0.5)
	s.Set("fullscreen", true)
	s.Set("max_fps", 120)

	if !s.Dirty() {
		t.Fatal("store not dirty after Set")
	}
	if err := s.Commit(); err != nil {
		t.Fatalf("commit failed: %v", err)
	}
	if s.Dirty() {
		t.Error("store still dirty after commit")
	}

	reloaded, err := Load(path)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if v, _ := reloaded.String("player_name", ""); v != "flynn" {
		t.Errorf("player_name = %q, want flynn", v)
	}
	if v, _ := reloaded.Float("audio_volume", 0); v != 0.5 {
		t.Errorf("audio_volume = %v, want 0.5", v)
	}
	if v, _ := reloaded.Bool("fullscreen", false); !v {
		t.Error("fullscreen = false, want true")
	}
	if v, _ := reloaded.Int("max_fps", 0); v != 120 {
		t.Errorf("max_fps = %d, want 120", v)
	}
}

func TestCommitKeepsPrevBackup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	s, _ := Load(path)
	s.Set("gen", 1)
	if err := s.Commit(); err != nil {
		t.Fatal(err)
	}
	s.Set("gen", 2)
	if err := s.Commit(); err != nil {
		t.Fatal(err)
	}

	prev, err := Load(path + ".prev")
	if err != nil {
		t.Fatalf("no usable .prev backup: %v", err)
	}
	if v, _ := prev.Int("gen", 0); v != 1 {
		t.Errorf(".prev holds gen %d, want 1", v)
	}
	cur, _ := Load(path)
	if v, _ := cur.Int("gen", 0); v != 2 {
		t.Errorf("current holds gen %d, want 2", v)
	}

	// A third commit replaces the stale backup.
	s.Set("gen", 3)
	if err := s.Commit(); err != nil {
		t.Fatal(err)
	}
	prev, _ = Load(path + ".prev")
	if v, _ := prev.Int("gen", 0); v != 2 {
		t.Errorf(".prev holds gen %d after third commit, want 2", v)
	}
}

func TestCommitFailureLeavesPriorIntact(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	s, _ := Load(path)
	s.Set("gen", 1)
	if err := s.Commit(); err != nil {
		t.Fatal(err)
	}

	// Make the temp-file write fail by removing write access to the
	// directory.
	if err := os.Chmod(dir, 0o555); err != nil {
		t.Fatal(err)
	}
	defer os.Chmod(dir, 0o755)

	s.Set("gen", 2)
	err := s.Commit()
	if err == nil {
		t.Skip("running with privileges that ignore directory permissions")
	}
	if errs.KindOf(err) != errs.KindIO {
		t.Errorf("got kind %v, want io", errs.KindOf(err))
	}

	os.Chmod(dir, 0o755)
	cur, loadErr := Load(path)
	if loadErr != nil {
		t.Fatalf("prior config unreadable after failed commit: %v", loadErr)
	}
	if v, _ := cur.Int("gen", 0); v != 1 {
		t.Errorf("prior config holds gen %d after failed commit, want 1", v)
	}
}

func TestTypedGettersMismatchedType(t *testing.T) {
	s := &Store{values: map[string]any{"volume": "loud"}}
	v, err := s.Float("volume", 0.25)
	if err == nil {
		t.Fatal("expected a type error")
	}
	if errs.KindOf(err) != errs.KindType {
		t.Errorf("got kind %v, want type", errs.KindOf(err))
	}
	if v != 0.25 {
		t.Errorf("got %v alongside the error, want the default", v)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	s := &Store{values: map[string]any{"a": 1}}
	snap := s.Snapshot()
	snap["a"] = 99
	if v, _ := s.Int("a", 0); v != 1 {
		t.Error("mutating a snapshot changed the store")
	}
}
