// Package resume persists extraction progress so interrupted runs can pick
// up where they left off.
package resume

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lgbarn/puzzle-extract-go/internal/errors"
)

// stateDir is the directory under the output directory holding checkpoints.
const stateDir = ".resume"

// State is a snapshot of progress through one input file. It is plain data;
// callers thread it through explicitly and persist it with Save.
type State struct {
	// Input is the path of the PGN file being processed.
	Input string `json:"input"`

	// GamesDone is the number of games fully processed. Processing resumes
	// at index GamesDone.
	GamesDone int `json:"games_done"`

	// PuzzlesFound counts puzzles written so far.
	PuzzlesFound int `json:"puzzles_found"`

	// SeenPositions holds the Zobrist hashes of positions already turned
	// into puzzles, so a resumed run suppresses the same duplicates an
	// uninterrupted run would.
	SeenPositions []uint64 `json:"seen_positions,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}

// StatePath returns the checkpoint path for the given input inside outDir.
func StatePath(outDir, input string) string {
	base := filepath.Base(input)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(outDir, stateDir, base+".json")
}

// Load reads a checkpoint. A missing file yields a zero State for the input
// and no error.
func Load(path, input string) (State, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return State{Input: input}, nil
	}
	if err != nil {
		return State{}, errors.Wrapf(err, "reading checkpoint %q", path)
	}

	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return State{}, errors.Wrapf(err, "parsing checkpoint %q", path)
	}
	if st.Input != input {
		// Stale checkpoint from a different input; start over.
		return State{Input: input}, nil
	}
	return st, nil
}

// Save writes the checkpoint atomically via a temp file rename.
func Save(path string, st State) error {
	st.UpdatedAt = time.Now().UTC()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "creating checkpoint dir for %q", path)
	}

	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return errors.Wrapf(err, "encoding checkpoint %q", path)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errors.Wrapf(err, "writing checkpoint %q", tmp)
	}
	if err := os.Rename(tmp, path); err != nil {
		return errors.Wrapf(err, "replacing checkpoint %q", path)
	}
	return nil
}

// Clear removes the checkpoint after a completed run.
func Clear(path string) error {
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "removing checkpoint %q", path)
	}
	return nil
}
