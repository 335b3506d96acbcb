// Package state persists the validator's cross-cycle score vector. Commits
// are all-or-nothing: the snapshot is written to a temporary file in the same
// directory and renamed over the previous one, so a crash mid-write leaves
// the last committed snapshot authoritative.
package state

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bytedance/sonic"
	"github.com/rs/zerolog/log"

	"github.com/taoillium/bittensor-subnet-taoillium/internal/engine"
)

// Store reads and writes the scores snapshot at a fixed path.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load returns the persisted scores state sized to the current registry.
// A missing, unreadable, corrupt, or version-incompatible snapshot is not
// fatal: the validator restarts from zero scores and rebuilds trust.
func (s *Store) Load(registrySize int) *engine.ScoresState {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Info().Str("path", s.path).Msg("scores file not found, initializing with zero scores")
		} else {
			log.Warn().Err(err).Str("path", s.path).Msg("failed to read scores file, initializing with zero scores")
		}
		return engine.NewScoresState(registrySize)
	}

	var state engine.ScoresState
	if err := sonic.Unmarshal(data, &state); err != nil {
		log.Warn().Err(err).Str("path", s.path).Msg("failed to unmarshal scores file, initializing with zero scores")
		return engine.NewScoresState(registrySize)
	}

	if state.Version != engine.StateVersion {
		log.Warn().
			Int("stored_version", state.Version).
			Int("expected_version", engine.StateVersion).
			Msg("scores file version mismatch, initializing with zero scores")
		return engine.NewScoresState(registrySize)
	}

	if len(state.Scores) != len(state.Hotkeys) {
		log.Warn().
			Int("scores_len", len(state.Scores)).
			Int("hotkeys_len", len(state.Hotkeys)).
			Msg("scores file is structurally inconsistent, initializing with zero scores")
		return engine.NewScoresState(registrySize)
	}

	log.Info().Int("step", state.Step).Int("registry_size", len(state.Scores)).Msg("loaded scores from file")
	return &state
}

// Save atomically commits the snapshot: marshal, write to a temp file in the
// destination directory, fsync, rename.
func (s *Store) Save(state *engine.ScoresState) error {
	data, err := sonic.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal scores state: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp scores file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp scores file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync temp scores file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp scores file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("commit scores file: %w", err)
	}

	log.Debug().Int("step", state.Step).Str("path", s.path).Msg("scores state committed")
	return nil
}
