// Package resume persists the playback queue snapshot between runs.
package resume

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/cockroachdb/errors"

	"github.com/hifigo/hifigo/internal/app/protocol"
)

// Store reads and writes the resume snapshot as a JSON file. Used only at
// start/stop boundaries, never on per-action mutations.
type Store struct {
	path string
}

// NewStore creates a store at the given path. An empty path places the file
// in the XDG state directory.
func NewStore(path string) (*Store, error) {
	if path == "" {
		p, err := xdg.StateFile("hifigo/resume.json")
		if err != nil {
			return nil, errors.Wrap(err, "failed to resolve state file path")
		}
		path = p
	}
	return &Store{path: path}, nil
}

// Save writes the snapshot, replacing any previous one. The write goes
// through a temp file so a crash cannot leave a truncated snapshot.
func (s *Store) Save(state protocol.ResumeState) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode resume state")
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return errors.Wrap(err, "failed to create state directory")
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return errors.Wrap(err, "failed to write resume state")
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return errors.Wrap(err, "failed to replace resume state")
	}
	return nil
}

// Load reads the snapshot. A missing file returns (nil, nil).
func (s *Store) Load() (*protocol.ResumeState, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to read resume state")
	}

	var state protocol.ResumeState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, errors.Wrap(err, "failed to decode resume state")
	}
	return &state, nil
}
