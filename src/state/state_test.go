package state

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFile(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "missing.env"))
	_, ok, err := s.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("expected ok=false for missing file")
	}
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.env")
	s := NewStore(path)
	fixed := time.Date(2026, 10, 17, 8, 30, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	if err := s.Save(42.5); err != nil {
		t.Fatalf("save: %v", err)
	}
	snap, ok, err := s.Load()
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if snap.Brightness != 42.5 {
		t.Errorf("brightness = %v, want 42.5", snap.Brightness)
	}
	if !snap.UpdatedAt.Equal(fixed) {
		t.Errorf("updated at = %v, want %v", snap.UpdatedAt, fixed)
	}

	if err := s.Save(100); err != nil {
		t.Fatal(err)
	}
	snap, _, _ = s.Load()
	if snap.Brightness != 100 {
		t.Errorf("brightness after overwrite = %v", snap.Brightness)
	}
}

func TestLoadCorruptValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.env")
	if err := os.WriteFile(path, []byte("BRIGHTNESS=dark\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := NewStore(path).Load(); err == nil {
		t.Fatal("expected error for corrupt brightness")
	}
}

func TestLoadWithoutBrightnessKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.env")
	if err := os.WriteFile(path, []byte("OTHER=1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, ok, err := NewStore(path).Load()
	if err != nil || ok {
		t.Fatalf("expected ok=false err=nil, got ok=%v err=%v", ok, err)
	}
}
