// Package state persists the last applied brightness between runs.
package state

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

const (
	keyBrightness = "BRIGHTNESS"
	keyUpdatedAt  = "UPDATED_AT"
)

// Snapshot is what gets written to disk.
type Snapshot struct {
	Brightness float64
	UpdatedAt  time.Time
}

// Store reads and writes a .env-formatted state file.
type Store struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

func NewStore(path string) *Store {
	return &Store{path: path, now: time.Now}
}

func (s *Store) Path() string { return s.path }

// Load returns the stored snapshot. ok is false when no state file exists.
func (s *Store) Load() (snap Snapshot, ok bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := godotenv.Read(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Snapshot{}, false, nil
		}
		return Snapshot{}, false, fmt.Errorf("read state %s: %w", s.path, err)
	}

	raw, found := values[keyBrightness]
	if !found {
		return Snapshot{}, false, nil
	}
	b, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(b) || math.IsInf(b, 0) {
		return Snapshot{}, false, fmt.Errorf("state %s: bad %s value %q", s.path, keyBrightness, raw)
	}
	snap.Brightness = b
	if ts := strings.TrimSpace(values[keyUpdatedAt]); ts != "" {
		if t, err := time.Parse(time.RFC3339, ts); err == nil {
			snap.UpdatedAt = t
		}
	}
	return snap, true, nil
}

// Save writes brightness with the current timestamp.
func (s *Store) Save(brightness float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create state dir: %w", err)
		}
	}
	values := map[string]string{
		keyBrightness: strconv.FormatFloat(brightness, 'f', -1, 64),
		keyUpdatedAt:  s.now().UTC().Format(time.RFC3339),
	}
	if err := godotenv.Write(values, s.path); err != nil {
		return fmt.Errorf("write state %s: %w", s.path, err)
	}
	return nil
}
