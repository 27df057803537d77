package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lgbarn/puzzle-extract-go/internal/analysis"
	"github.com/lgbarn/puzzle-extract-go/internal/config"
	"github.com/lgbarn/puzzle-extract-go/internal/engine"
	"github.com/lgbarn/puzzle-extract-go/internal/hashing"
	"github.com/lgbarn/puzzle-extract-go/internal/output"
	"github.com/lgbarn/puzzle-extract-go/internal/resume"
	"github.com/lgbarn/puzzle-extract-go/internal/testutil"
)

// ladderGame walks into a two-rook ladder: after 1... Kh8?? the solution is
// 2. Rb7 Kg8 3. Ra8#.
const ladderGame = `[Event "Ladder"]
[Site "?"]
[Date "2024.01.01"]
[Round "1"]
[White "A"]
[Black "B"]
[Result "1-0"]
[SetUp "1"]
[FEN "6k1/8/8/8/8/8/1R6/R5K1 b - - 0 1"]

1... Kh8 2. Rb7 Kg8 3. Ra8# 1-0
`

// ladderResponses scripts the engine for every position of ladderGame. The
// same canned lines serve the scan, the solution search and the filters.
func ladderResponses() map[string][]analysis.PV {
	return map[string][]analysis.PV{
		"6k1/8/8/8/8/8/1R6/R5K1 b": {testutil.CpPV(-50, "g8f8")},
		"7k/8/8/8/8/8/1R6/R5K1 w":  {testutil.MatePV(2, "b2b7")},
		"7k/1R6/8/8/8/8/8/R5K1 b":  {testutil.MatePV(-1, "h8g8")},
		"6k1/1R6/8/8/8/8/8/R5K1 w": {testutil.MatePV(1, "a1a8")},
	}
}

func scriptedFactory() AnalyserFactory {
	responses := ladderResponses()
	return func() (analysis.Analyser, error) {
		return &testutil.ScriptedAnalyser{Responses: responses}, nil
	}
}

func writeInput(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func testConfig(outDir string) *config.Config {
	cfg := config.NewConfig()
	cfg.EnginePath = "scripted"
	cfg.OutputDir = outDir
	return cfg
}

func TestRunExtractsPuzzle(t *testing.T) {
	input := writeInput(t, "games.pgn", ladderGame)
	outDir := t.TempDir()

	gen := New(testConfig(outDir), scriptedFactory(), nil)
	run, err := gen.Run(context.Background(), []string{input})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	testutil.AssertEqual(t, run.GamesScanned, 1, "games scanned")
	testutil.AssertEqual(t, run.Blunders, 1, "blunders")
	testutil.AssertEqual(t, run.Puzzles, 1, "puzzles")

	data, err := os.ReadFile(filepath.Join(outDir, "games_puzzles.pgn"))
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	out := string(data)
	testutil.AssertContains(t, out, `[Event "Ladder"]`)
	testutil.AssertContains(t, out, `[Objetivo "Mate"]`)
	testutil.AssertContains(t, out, `[Fase "Abertura"]`)
	testutil.AssertContains(t, out, "1... Kh8 ?? 2. Rb7 Kg8 3. Ra8# *")
}

func TestRunJSONOutput(t *testing.T) {
	input := writeInput(t, "games.pgn", ladderGame)
	outDir := t.TempDir()

	cfg := testConfig(outDir)
	cfg.JSON = true

	gen := New(cfg, scriptedFactory(), nil)
	if _, err := gen.Run(context.Background(), []string{input}); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(outDir, "games_puzzles.json"))
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	out := string(data)
	testutil.AssertContains(t, out, `"objective": "Mate"`)
	testutil.AssertContains(t, out, `"blunder": "Kh8"`)
}

func TestRunDeduplicatesPositions(t *testing.T) {
	// The same game twice: the second pass hits the position set and emits
	// nothing new.
	input := writeInput(t, "games.pgn", ladderGame+"\n"+ladderGame)
	outDir := t.TempDir()

	gen := New(testConfig(outDir), scriptedFactory(), nil)
	run, err := gen.Run(context.Background(), []string{input})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	testutil.AssertEqual(t, run.GamesScanned, 2, "games scanned")
	testutil.AssertEqual(t, run.Blunders, 2, "blunders")
	testutil.AssertEqual(t, run.Puzzles, 1, "puzzles")
}

func TestRunResumeSkipsDoneGames(t *testing.T) {
	input := writeInput(t, "games.pgn", ladderGame+"\n"+ladderGame)
	outDir := t.TempDir()

	cfg := testConfig(outDir)
	cfg.Resume = true

	statePath := resume.StatePath(outDir, input)
	if err := resume.Save(statePath, resume.State{Input: input, GamesDone: 1}); err != nil {
		t.Fatal(err)
	}

	gen := New(cfg, scriptedFactory(), nil)
	run, err := gen.Run(context.Background(), []string{input})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	// Only the second game is processed.
	testutil.AssertEqual(t, run.GamesScanned, 1, "games scanned")
	testutil.AssertEqual(t, run.Puzzles, 1, "puzzles")

	// The checkpoint is cleared after a completed run.
	if _, err := os.Stat(statePath); !os.IsNotExist(err) {
		t.Error("checkpoint not cleared after completion")
	}
}

func TestRunResumeSuppressesSeenPositions(t *testing.T) {
	// The checkpoint carries the hashes of positions already exported, so a
	// restarted run drops the same duplicate an uninterrupted run would.
	input := writeInput(t, "games.pgn", ladderGame+"\n"+ladderGame)
	outDir := t.TempDir()

	cfg := testConfig(outDir)
	cfg.Resume = true

	post, err := engine.NewBoardFromFEN("7k/8/8/8/8/8/1R6/R5K1 w - - 1 2")
	if err != nil {
		t.Fatal(err)
	}
	statePath := resume.StatePath(outDir, input)
	st := resume.State{
		Input:         input,
		GamesDone:     1,
		PuzzlesFound:  1,
		SeenPositions: []uint64{hashing.HashBoard(post)},
	}
	if err := resume.Save(statePath, st); err != nil {
		t.Fatal(err)
	}

	// The first run's puzzle is already in the output file.
	outPath := filepath.Join(outDir, "games_puzzles.pgn")
	firstRun := "[Event \"Ladder\"]\n\n1... Kh8 ?? 2. Rb7 Kg8 3. Ra8# *\n\n"
	if err := os.WriteFile(outPath, []byte(firstRun), 0o644); err != nil {
		t.Fatal(err)
	}

	gen := New(cfg, scriptedFactory(), nil)
	run, err := gen.Run(context.Background(), []string{input})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	testutil.AssertEqual(t, run.GamesScanned, 1, "games scanned")
	testutil.AssertEqual(t, run.Puzzles, 0, "puzzles")

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if got := strings.Count(string(data), "[Event"); got != 1 {
		t.Errorf("output holds %d games, want 1:\n%s", got, data)
	}
}

func TestRunResumeJSONKeepsEarlierPuzzles(t *testing.T) {
	input := writeInput(t, "games.pgn", ladderGame+"\n"+ladderGame)
	outDir := t.TempDir()

	cfg := testConfig(outDir)
	cfg.JSON = true
	cfg.Resume = true

	statePath := resume.StatePath(outDir, input)
	if err := resume.Save(statePath, resume.State{Input: input, GamesDone: 1}); err != nil {
		t.Fatal(err)
	}

	outPath := filepath.Join(outDir, "games_puzzles.json")
	earlier := `[{"fen":"8/8/8/8/8/8/8/8 w - - 0 1","objective":"Mate","phase":"Final","move_number":1,"solver":"White","blunder":"Qxf7","solution":["Qxf7"]}]`
	if err := os.WriteFile(outPath, []byte(earlier), 0o644); err != nil {
		t.Fatal(err)
	}

	gen := New(cfg, scriptedFactory(), nil)
	if _, err := gen.Run(context.Background(), []string{input}); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	var got []output.JSONPuzzle
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("decoded %d puzzles, want 2", len(got))
	}
	testutil.AssertEqual(t, got[0].Blunder, "Qxf7", "earlier puzzle kept")
	testutil.AssertEqual(t, got[1].Blunder, "Kh8", "new puzzle appended")
}

func TestRunParallelWorkers(t *testing.T) {
	input := writeInput(t, "games.pgn", ladderGame+"\n"+ladderGame+"\n"+ladderGame)
	outDir := t.TempDir()

	cfg := testConfig(outDir)
	cfg.Workers = 2

	gen := New(cfg, scriptedFactory(), nil)
	run, err := gen.Run(context.Background(), []string{input})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	testutil.AssertEqual(t, run.GamesScanned, 3, "games scanned")
	testutil.AssertEqual(t, run.Puzzles, 1, "puzzles")
}

func TestRunFactoryFailure(t *testing.T) {
	input := writeInput(t, "games.pgn", ladderGame)
	outDir := t.TempDir()

	factory := func() (analysis.Analyser, error) {
		return nil, fmt.Errorf("engine not found")
	}

	gen := New(testConfig(outDir), factory, nil)
	if _, err := gen.Run(context.Background(), []string{input}); err == nil {
		t.Fatal("Run() should fail when the analyser factory fails")
	}
}

func TestRunMissingInput(t *testing.T) {
	outDir := t.TempDir()
	gen := New(testConfig(outDir), scriptedFactory(), nil)

	_, err := gen.Run(context.Background(), []string{filepath.Join(outDir, "missing.pgn")})
	if err == nil {
		t.Fatal("Run() should fail on a missing input file")
	}
	if !strings.Contains(err.Error(), "missing.pgn") {
		t.Errorf("error %v does not name the input", err)
	}
}

func TestRunIllegalGameCountsAsFailure(t *testing.T) {
	bad := `[Event "Broken"]
[Site "?"]
[Date "2024.01.01"]
[Round "1"]
[White "A"]
[Black "B"]
[Result "*"]

1. e4 e5 2. Ke3 *
`
	input := writeInput(t, "games.pgn", bad)
	outDir := t.TempDir()

	gen := New(testConfig(outDir), scriptedFactory(), nil)
	run, err := gen.Run(context.Background(), []string{input})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	testutil.AssertEqual(t, run.GamesFailed, 1, "games failed")
	testutil.AssertEqual(t, run.GamesScanned, 0, "games scanned")
}
