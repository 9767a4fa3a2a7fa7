package incremental

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"git.home.luguber.info/inful/buildprep/internal/logfields"
)

// State is the persisted record of the previous generation run.
type State struct {
	InputHash   string    `json:"input_hash"`
	OutputDir   string    `json:"output_dir"`
	GeneratedAt time.Time `json:"generated_at"`
}

// LoadState reads the state file. A missing file is not an error; it simply
// means no previous run is known.
func LoadState(path string) (*State, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read state file: %w", err)
	}
	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		// A corrupt state file means regenerate, not abort.
		slog.Warn("Ignoring unreadable skip state", logfields.Path(path), logfields.Error(err))
		return nil, nil
	}
	return &st, nil
}

// SaveState writes the state file for the next run.
func SaveState(path string, st State) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}
	return nil
}

// ShouldSkip reports whether stub generation can be skipped: the previous
// input hash matches and the previous output directory still exists with
// content in it.
func ShouldSkip(st *State, inputHash, outDir string) bool {
	if st == nil || st.InputHash == "" || st.InputHash != inputHash {
		return false
	}
	if st.OutputDir != outDir {
		return false
	}
	entries, err := os.ReadDir(outDir)
	if err != nil || len(entries) == 0 {
		return false
	}
	return true
}
