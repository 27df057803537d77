package resume

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatePath(t *testing.T) {
	got := StatePath("out", filepath.Join("games", "tournament.pgn"))
	want := filepath.Join("out", ".resume", "tournament.json")
	assert.Equal(t, want, got)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := StatePath(dir, "games.pgn")

	st := State{
		Input:         "games.pgn",
		GamesDone:     17,
		PuzzlesFound:  3,
		SeenPositions: []uint64{0x1f2e3d4c, 0xffffffffffffffff},
	}
	require.NoError(t, Save(path, st))

	loaded, err := Load(path, "games.pgn")
	require.NoError(t, err)
	assert.Equal(t, "games.pgn", loaded.Input)
	assert.Equal(t, 17, loaded.GamesDone)
	assert.Equal(t, 3, loaded.PuzzlesFound)
	assert.Equal(t, st.SeenPositions, loaded.SeenPositions)
	assert.False(t, loaded.UpdatedAt.IsZero(), "Save should stamp the state")
}

func TestLoadMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.json")

	st, err := Load(path, "games.pgn")
	require.NoError(t, err)
	assert.Equal(t, State{Input: "games.pgn"}, st)
}

func TestLoadStaleInputStartsOver(t *testing.T) {
	dir := t.TempDir()
	path := StatePath(dir, "old.pgn")
	require.NoError(t, Save(path, State{Input: "old.pgn", GamesDone: 40}))

	st, err := Load(path, "new.pgn")
	require.NoError(t, err)
	assert.Equal(t, 0, st.GamesDone)
	assert.Equal(t, "new.pgn", st.Input)
}

func TestLoadCorruptFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := Load(path, "games.pgn")
	assert.Error(t, err)
}

func TestSaveOverwritesAtomically(t *testing.T) {
	dir := t.TempDir()
	path := StatePath(dir, "games.pgn")

	require.NoError(t, Save(path, State{Input: "games.pgn", GamesDone: 1}))
	require.NoError(t, Save(path, State{Input: "games.pgn", GamesDone: 2}))

	st, err := Load(path, "games.pgn")
	require.NoError(t, err)
	assert.Equal(t, 2, st.GamesDone)

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file should be renamed away")
}

func TestClear(t *testing.T) {
	dir := t.TempDir()
	path := StatePath(dir, "games.pgn")
	require.NoError(t, Save(path, State{Input: "games.pgn"}))

	require.NoError(t, Clear(path))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// Clearing again is not an error.
	require.NoError(t, Clear(path))
}
