package detector

import (
	"errors"
	"testing"

	"github.com/lgbarn/puzzle-extract-go/internal/analysis"
	"github.com/lgbarn/puzzle-extract-go/internal/chess"
	"github.com/lgbarn/puzzle-extract-go/internal/testutil"
)

const testGameHeader = `[Event "Test"]
[Site "Test"]
[Date "2024.01.01"]
[Round "1"]
[White "A"]
[Black "B"]
[Result "*"]

`

func TestScanDetectsBlackBlunder(t *testing.T) {
	game := testutil.MustParseGame(t, testGameHeader+"1. e4 e5 2. Nf3 *")

	analyser := &testutil.ScriptedAnalyser{
		Responses: map[string][]analysis.PV{
			"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w":       {testutil.CpPV(20, "e2e4")},
			"rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b":     {testutil.CpPV(-30, "e7e5")},
			"rnbqkbnr/pppp1ppp/8/4p3/4P3/8/PPPP1PPP/RNBQKBNR w":   {testutil.CpPV(200, "g1f3")},
			"rnbqkbnr/pppp1ppp/8/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R b": {testutil.CpPV(-210, "b8c6")},
		},
	}

	d := New(analyser, 150, 6, nil)
	events := d.Scan(game)

	if len(events) != 1 {
		t.Fatalf("Scan() returned %d events, want 1", len(events))
	}

	ev := events[0]
	testutil.AssertEqual(t, ev.SolverColour, chess.White, "solver colour")
	testutil.AssertEqual(t, ev.ScoreBefore, 30, "score before")
	testutil.AssertEqual(t, ev.ScoreAfter, 200, "score after")
	testutil.AssertEqual(t, ev.Move.Text, "e5", "blunder move")
	testutil.AssertEqual(t, ev.MoveNumber, uint(1), "move number")
	testutil.AssertEqual(t, ev.Ply, 2, "ply")
	testutil.AssertEqual(t, ev.PreBoard.ToMove, chess.Black, "pre-board side")
	testutil.AssertEqual(t, ev.PostBoard.ToMove, chess.White, "post-board side")
}

func TestScanDetectsWhiteBlunderIntoMate(t *testing.T) {
	game := testutil.MustParseGame(t, testGameHeader+"1. f3 e5 2. g4 Qh4# *")

	analyser := &testutil.ScriptedAnalyser{
		Responses: map[string][]analysis.PV{
			"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w":      {testutil.CpPV(10, "e2e4")},
			"rnbqkbnr/pppppppp/8/8/8/5P2/PPPPP1PP/RNBQKBNR b":    {testutil.CpPV(30, "e7e5")},
			"rnbqkbnr/pppp1ppp/8/4p3/8/5P2/PPPPP1PP/RNBQKBNR w":  {testutil.CpPV(-50, "g2g4")},
			"rnbqkbnr/pppp1ppp/8/4p3/6P1/5P2/PPPPP2P/RNBQKBNR b": {testutil.MatePV(1, "d8h4")},
		},
	}

	d := New(analyser, 150, 6, nil)
	events := d.Scan(game)

	if len(events) != 1 {
		t.Fatalf("Scan() returned %d events, want 1", len(events))
	}

	ev := events[0]
	testutil.AssertEqual(t, ev.SolverColour, chess.Black, "solver colour")
	testutil.AssertEqual(t, ev.ScoreBefore, -50, "score before")
	testutil.AssertEqual(t, ev.ScoreAfter, -analysis.MateValue, "score after")
	testutil.AssertEqual(t, ev.Move.Text, "g4", "blunder move")
	testutil.AssertEqual(t, ev.MoveNumber, uint(2), "move number")
}

func TestScanNoBlunderBelowThreshold(t *testing.T) {
	game := testutil.MustParseGame(t, testGameHeader+"1. e4 e5 2. Nf3 *")

	analyser := &testutil.ScriptedAnalyser{
		Default: []analysis.PV{testutil.CpPV(10, "a2a3")},
	}

	d := New(analyser, 150, 6, nil)
	events := d.Scan(game)

	if len(events) != 0 {
		t.Errorf("Scan() returned %d events, want 0", len(events))
	}
}

func TestScanEngineFailureProducesNoEvents(t *testing.T) {
	game := testutil.MustParseGame(t, testGameHeader+"1. e4 e5 2. Nf3 *")

	analyser := &testutil.ScriptedAnalyser{Err: errors.New("engine crashed")}

	d := New(analyser, 150, 6, nil)
	events := d.Scan(game)

	if len(events) != 0 {
		t.Errorf("Scan() returned %d events after engine failure, want 0", len(events))
	}
}

func TestScanEvaluatesEachPositionOnce(t *testing.T) {
	game := testutil.MustParseGame(t, testGameHeader+"1. e4 e5 *")

	analyser := &testutil.ScriptedAnalyser{
		Default: []analysis.PV{testutil.CpPV(0, "g1f3")},
	}

	d := New(analyser, 150, 6, nil)
	d.Scan(game)

	// Initial position plus one per ply.
	calls := analyser.Calls()
	if len(calls) != 3 {
		t.Errorf("analyser called %d times, want 3", len(calls))
	}
}
