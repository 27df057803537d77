package output

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lgbarn/puzzle-extract-go/internal/chess"
	"github.com/lgbarn/puzzle-extract-go/internal/engine"
	"github.com/lgbarn/puzzle-extract-go/internal/parser"
	"github.com/lgbarn/puzzle-extract-go/internal/puzzle"
	"github.com/lgbarn/puzzle-extract-go/internal/testutil"
)

// ladderPuzzle is a small fixed puzzle used by the writer tests: after Kh8??
// the two-rook ladder mates with Rb7 Kg8 Ra8#.
func ladderPuzzle(t *testing.T) *puzzle.Puzzle {
	t.Helper()

	initial, err := engine.NewBoardFromFEN("6k1/8/8/8/8/8/1R6/R5K1 b - - 0 1")
	if err != nil {
		t.Fatalf("parsing FEN: %v", err)
	}
	final, err := engine.NewBoardFromFEN("R5k1/1R6/8/8/8/8/8/6K1 b - - 4 3")
	if err != nil {
		t.Fatalf("parsing FEN: %v", err)
	}

	mv := func(text string) *chess.Move {
		m := chess.NewMove()
		m.Text = text
		m.Class = chess.PieceMove
		return m
	}

	first := &puzzle.SolutionNode{
		Move:         mv("Rb7"),
		Alternatives: []*chess.Move{mv("Ra7")},
		Solver:       true,
	}
	second := &puzzle.SolutionNode{Move: mv("Kg8")}
	third := &puzzle.SolutionNode{Move: mv("Ra8#"), Solver: true}
	first.Next = second
	second.Next = third

	return &puzzle.Puzzle{
		InitialBoard: initial,
		BlunderMove:  mv("Kh8"),
		Solution:     first,
		FinalBoard:   final,
		SolverColour: chess.White,
		Objective:    puzzle.ObjectiveMate,
		Phase:        puzzle.PhaseEndgame,
		Headers: map[string]string{
			"Event": "Club Championship",
			"White": "A",
			"Black": "B",
		},
		MoveNumber: 1,
	}
}

func TestPGNWriterRendersPuzzle(t *testing.T) {
	var buf bytes.Buffer
	pw := NewPGNWriter(&buf)

	p := ladderPuzzle(t)
	if err := pw.WritePuzzle(p); err != nil {
		t.Fatalf("WritePuzzle() error: %v", err)
	}
	if err := pw.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	out := buf.String()

	// Seven-tag roster first, with placeholders for missing tags.
	testutil.AssertContains(t, out, `[Event "Club Championship"]`)
	testutil.AssertContains(t, out, `[Site "?"]`)
	testutil.AssertContains(t, out, `[Result "*"]`)
	testutil.AssertContains(t, out, `[SetUp "1"]`)
	testutil.AssertContains(t, out, `[FEN "6k1/8/8/8/8/8/1R6/R5K1 b - - 0 1"]`)
	testutil.AssertContains(t, out, `[Objetivo "Mate"]`)
	testutil.AssertContains(t, out, `[Fase "Final"]`)

	// Black starts, so the first move carries the continuation marker; the
	// alternative first solver move shows up as a variation.
	testutil.AssertContains(t, out, "1... Kh8 ?? 2. Rb7 (2. Ra7) Kg8 3. Ra8# *")

	if !strings.HasSuffix(out, "\n\n") {
		t.Errorf("output does not end with a game separator:\n%q", out)
	}
}

func TestPGNWriterRoundTrip(t *testing.T) {
	// A written puzzle fed back through the parser reproduces the starting
	// position and the main line.
	var buf bytes.Buffer
	pw := NewPGNWriter(&buf)

	p := ladderPuzzle(t)
	if err := pw.WritePuzzle(p); err != nil {
		t.Fatalf("WritePuzzle() error: %v", err)
	}
	if err := pw.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	games, err := parser.NewParser(strings.NewReader(buf.String()), nil).ParseAllGames()
	if err != nil {
		t.Fatalf("reparsing output: %v", err)
	}
	if len(games) != 1 {
		t.Fatalf("reparsed %d games, want 1", len(games))
	}

	game := games[0]
	testutil.AssertEqual(t, game.GetTag("FEN"), engine.BoardToFEN(p.InitialBoard), "FEN tag")
	testutil.AssertEqual(t, game.GetTag("SetUp"), "1", "SetUp tag")

	var line []string
	for move := game.Moves; move != nil; move = move.Next {
		line = append(line, move.Text)
	}
	testutil.AssertEqual(t, line, []string{"Kh8", "Rb7", "Kg8", "Ra8#"}, "main line")

	if len(game.Moves.NAGs) == 0 {
		t.Error("blunder annotation lost in the round trip")
	}
}

func TestWriteTagsEscapesValues(t *testing.T) {
	game := chess.NewGame()
	game.SetTag("Event", `He said "hi" \ bye`)
	game.SetTag("Result", "1-0")

	var buf bytes.Buffer
	pw := NewPGNWriter(&buf)
	if err := pw.WriteGame(game); err != nil {
		t.Fatalf("WriteGame() error: %v", err)
	}
	pw.Flush()

	testutil.AssertContains(t, buf.String(), `[Event "He said \"hi\" \\ bye"]`)
}

func TestWriteGameWhiteStartNumbering(t *testing.T) {
	game := chess.NewGame()
	game.SetTag("Result", "*")
	for _, text := range []string{"e4", "e5", "Nf3"} {
		m := chess.NewMove()
		m.Text = text
		game.AppendMove(m)
	}

	var buf bytes.Buffer
	pw := NewPGNWriter(&buf)
	if err := pw.WriteGame(game); err != nil {
		t.Fatalf("WriteGame() error: %v", err)
	}
	pw.Flush()

	testutil.AssertContains(t, buf.String(), "1. e4 e5 2. Nf3 *")
}

func TestOutputWriterWrapsLongLines(t *testing.T) {
	var buf bytes.Buffer
	ow := NewOutputWriter(&buf, 20)

	for i := 0; i < 8; i++ {
		ow.Write("abcdef")
	}
	ow.NewLine()

	for _, line := range strings.Split(strings.TrimRight(buf.String(), "\n"), "\n") {
		if len(line) > 20 {
			t.Errorf("line longer than limit: %q", line)
		}
	}
}

func TestOutputWriterOpenToken(t *testing.T) {
	var buf bytes.Buffer
	ow := NewOutputWriter(&buf, 80)

	ow.Write("Rb7")
	ow.WriteOpen("(")
	ow.Write("2.")
	ow.Write("Ra7")
	ow.WriteNoSpace(")")

	testutil.AssertEqual(t, buf.String(), "Rb7 (2. Ra7)")
}

func TestJSONWriterRendersPuzzle(t *testing.T) {
	var buf bytes.Buffer
	jw := NewJSONWriter(&buf)

	p := ladderPuzzle(t)
	if err := jw.WritePuzzle(p); err != nil {
		t.Fatalf("WritePuzzle() error: %v", err)
	}
	if err := jw.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	var got []JSONPuzzle
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("decoded %d puzzles, want 1", len(got))
	}

	jp := got[0]
	testutil.AssertEqual(t, jp.Event, "Club Championship", "event")
	testutil.AssertEqual(t, jp.FEN, "6k1/8/8/8/8/8/1R6/R5K1 b - - 0 1", "fen")
	testutil.AssertEqual(t, jp.Objective, "Mate", "objective")
	testutil.AssertEqual(t, jp.Phase, "Final", "phase")
	testutil.AssertEqual(t, jp.Solver, "White", "solver")
	testutil.AssertEqual(t, jp.Blunder, "Kh8", "blunder")
	testutil.AssertEqual(t, jp.Solution, []string{"Kh8", "Rb7", "Kg8", "Ra8#"}, "solution")
	testutil.AssertEqual(t, jp.Alternatives, map[int][]string{1: {"Ra7"}}, "alternatives")
}

func TestJSONWriterEmptyOutput(t *testing.T) {
	var buf bytes.Buffer
	jw := NewJSONWriter(&buf)
	if err := jw.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	var got []JSONPuzzle
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("decoded %d puzzles, want 0", len(got))
	}

	// A second Close must not emit a second array.
	before := buf.Len()
	if err := jw.Close(); err != nil {
		t.Fatalf("second Close() error: %v", err)
	}
	if buf.Len() != before {
		t.Error("second Close() wrote more output")
	}
}

func TestJSONWriterSeedKeepsEarlierPuzzles(t *testing.T) {
	var buf bytes.Buffer
	jw := NewJSONWriter(&buf)
	jw.Seed([]JSONPuzzle{{FEN: "8/8/8/8/8/8/8/8 w - - 0 1", Blunder: "Qxf7"}})

	if err := jw.WritePuzzle(ladderPuzzle(t)); err != nil {
		t.Fatalf("WritePuzzle() error: %v", err)
	}
	if err := jw.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	var got []JSONPuzzle
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("decoded %d puzzles, want 2", len(got))
	}
	testutil.AssertEqual(t, got[0].Blunder, "Qxf7", "seeded puzzle first")
	testutil.AssertEqual(t, got[1].Blunder, "Kh8", "new puzzle second")
}

func TestLoadJSONPuzzles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "puzzles.json")

	// Missing file is fine: nothing written yet.
	got, err := LoadJSONPuzzles(path)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, len(got), 0, "missing file")

	data := `[{"fen":"8/8/8/8/8/8/8/8 w - - 0 1","objective":"Mate","phase":"Final","move_number":1,"solver":"White","blunder":"Qxf7","solution":["Qxf7"]}]`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err = LoadJSONPuzzles(path)
	testutil.AssertNoError(t, err)
	if len(got) != 1 {
		t.Fatalf("loaded %d puzzles, want 1", len(got))
	}
	testutil.AssertEqual(t, got[0].Blunder, "Qxf7", "blunder")

	if err := os.WriteFile(path, []byte("not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadJSONPuzzles(path); err == nil {
		t.Error("LoadJSONPuzzles() should fail on corrupt input")
	}
}
