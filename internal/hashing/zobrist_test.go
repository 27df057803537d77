package hashing

import (
	"testing"

	"github.com/lgbarn/puzzle-extract-go/internal/chess"
	"github.com/lgbarn/puzzle-extract-go/internal/engine"
)

func boardFromFEN(t *testing.T, fen string) *chess.Board {
	t.Helper()
	board, err := engine.NewBoardFromFEN(fen)
	if err != nil {
		t.Fatalf("parsing FEN %q: %v", fen, err)
	}
	return board
}

func TestHashBoardStable(t *testing.T) {
	const fen = "r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R w KQkq - 2 3"
	a := HashBoard(boardFromFEN(t, fen))
	b := HashBoard(boardFromFEN(t, fen))
	if a != b {
		t.Errorf("same position hashed differently: %x vs %x", a, b)
	}
	if a == 0 {
		t.Error("hash of a full position is zero")
	}
}

func TestHashBoardIgnoresMoveCounters(t *testing.T) {
	a := HashBoard(boardFromFEN(t, "4k3/8/8/8/8/8/4P3/4K3 w - - 0 1"))
	b := HashBoard(boardFromFEN(t, "4k3/8/8/8/8/8/4P3/4K3 w - - 7 42"))
	if a != b {
		t.Error("move counters changed the hash")
	}
}

func TestHashBoardDistinguishesPositions(t *testing.T) {
	base := "4k3/8/8/8/8/8/4P3/4K3 w - - 0 1"

	variants := []struct {
		name string
		fen  string
	}{
		{"side to move", "4k3/8/8/8/8/8/4P3/4K3 b - - 0 1"},
		{"piece placement", "4k3/8/8/8/8/4P3/8/4K3 w - - 0 1"},
		{"piece colour", "4k3/8/8/8/8/8/4p3/4K3 w - - 0 1"},
	}

	a := HashBoard(boardFromFEN(t, base))
	for _, tt := range variants {
		t.Run(tt.name, func(t *testing.T) {
			if b := HashBoard(boardFromFEN(t, tt.fen)); a == b {
				t.Errorf("%s not reflected in hash", tt.name)
			}
		})
	}
}

func TestHashBoardCastlingRights(t *testing.T) {
	full := HashBoard(boardFromFEN(t, "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1"))
	none := HashBoard(boardFromFEN(t, "r3k2r/8/8/8/8/8/8/R3K2R w - - 0 1"))
	whiteOnly := HashBoard(boardFromFEN(t, "r3k2r/8/8/8/8/8/8/R3K2R w KQ - 0 1"))

	if full == none || full == whiteOnly || none == whiteOnly {
		t.Error("castling rights not reflected in hash")
	}
}

func TestHashBoardEnPassantFile(t *testing.T) {
	without := HashBoard(boardFromFEN(t, "rnbqkbnr/pppp1ppp/8/8/3Pp3/8/PPP1PPPP/RNBQKBNR b KQkq - 0 2"))
	with := HashBoard(boardFromFEN(t, "rnbqkbnr/pppp1ppp/8/8/3Pp3/8/PPP1PPPP/RNBQKBNR b KQkq d3 0 2"))
	if without == with {
		t.Error("en passant file not reflected in hash")
	}
}

func TestPositionSet(t *testing.T) {
	set := NewPositionSet()
	board := boardFromFEN(t, "4k3/8/8/8/8/8/4P3/4K3 w - - 0 1")

	if set.CheckAndAdd(board) {
		t.Error("fresh position reported as seen")
	}
	if !set.CheckAndAdd(board) {
		t.Error("repeated position reported as new")
	}
	if !set.CheckAndAdd(boardFromFEN(t, "4k3/8/8/8/8/8/4P3/4K3 w - - 9 33")) {
		t.Error("same position with different counters reported as new")
	}
	if set.CheckAndAdd(boardFromFEN(t, "4k3/8/8/8/8/8/4P3/4K3 b - - 0 1")) {
		t.Error("different side to move reported as seen")
	}

	if got := set.Len(); got != 2 {
		t.Errorf("Len() = %d, want 2", got)
	}
}

func TestPositionSetRestore(t *testing.T) {
	set := NewPositionSet()
	board := boardFromFEN(t, "4k3/8/8/8/8/8/4P3/4K3 w - - 0 1")
	set.CheckAndAdd(board)

	hashes := set.Hashes()
	if len(hashes) != 1 {
		t.Fatalf("Hashes() returned %d entries, want 1", len(hashes))
	}

	restored := NewPositionSet()
	restored.Restore(hashes)
	if !restored.CheckAndAdd(board) {
		t.Error("restored set did not recognize a checkpointed position")
	}
	if got := restored.Len(); got != 1 {
		t.Errorf("Len() = %d, want 1", got)
	}
}
