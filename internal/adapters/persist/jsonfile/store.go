// Package jsonfile persists the application snapshot as a single JSON file.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"malim/internal/domain"
)

const fileName = "data.json"

type Store struct {
	path string
}

// New returns a store writing to <dataDir>/data.json.
func New(dataDir string) *Store {
	return &Store{path: filepath.Join(dataDir, fileName)}
}

// Load reads the persisted snapshot. A missing or empty file yields (nil, nil).
func (s *Store) Load(_ context.Context) (*domain.Snapshot, error) {
	b, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	if len(b) == 0 {
		return nil, nil
	}
	var snap domain.Snapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &snap, nil
}

// Save writes the snapshot via a temp file and rename so readers never see a
// partial write.
func (s *Store) Save(_ context.Context, snap domain.Snapshot) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("make data dir: %w", err)
	}
	b, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("rename snapshot: %w", err)
	}
	return nil
}
