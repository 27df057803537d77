// Package detector scans games for evaluation swings that mark puzzle
// candidates.
package detector

import (
	"go.uber.org/zap"

	"github.com/lgbarn/puzzle-extract-go/internal/analysis"
	"github.com/lgbarn/puzzle-extract-go/internal/chess"
	"github.com/lgbarn/puzzle-extract-go/internal/engine"
)

// BlunderEvent marks a ply where the evaluation swung against the mover by
// more than the threshold. The solver is always the side that did not move.
type BlunderEvent struct {
	// PreBoard is the position before the blunder move was played.
	PreBoard *chess.Board

	// PostBoard is the position after the blunder move.
	PostBoard *chess.Board

	// Move is the blunder move as parsed from the game.
	Move *chess.Move

	// ScoreBefore and ScoreAfter are normalized to White's perspective.
	ScoreBefore int
	ScoreAfter  int

	// SolverColour is the side that must find the punishing continuation.
	SolverColour chess.Colour

	// MoveNumber is the full-move number of the pre-blunder position.
	MoveNumber uint

	// Ply is the 1-based half-move index of the blunder within the game.
	Ply int
}

// Detector replays games and emits BlunderEvents.
type Detector struct {
	analyser  analysis.Analyser
	threshold int
	scanDepth int
	log       *zap.Logger
}

// New creates a Detector. The logger may be zap.NewNop().
func New(analyser analysis.Analyser, threshold, scanDepth int, log *zap.Logger) *Detector {
	if log == nil {
		log = zap.NewNop()
	}
	return &Detector{
		analyser:  analyser,
		threshold: threshold,
		scanDepth: scanDepth,
		log:       log,
	}
}

// evaluation is a position score that may be unavailable after an engine
// failure.
type evaluation struct {
	cp int // from White's perspective
	ok bool
}

// Scan replays the game ply by ply, evaluating every position at scan depth.
// Plies where either surrounding evaluation is unavailable emit no event.
// Evaluation within a game is strictly sequential: each ply's "before" score
// is the previous ply's "after" score.
func (d *Detector) Scan(game *chess.Game) []BlunderEvent {
	board := engine.NewBoardForGame(game)

	var events []BlunderEvent
	prev := d.evaluate(board)
	ply := 0

	for move := game.Moves; move != nil; move = move.Next {
		if move.IsNull() {
			// A null move invalidates the sequential trace; just switch sides.
			engine.ApplyMove(board, move)
			prev = evaluation{}
			ply++
			continue
		}

		preBoard := board.Copy()
		mover := board.ToMove
		moveNumber := board.MoveNumber

		if !engine.ApplyMove(board, move) {
			d.log.Warn("illegal move during scan, abandoning game",
				zap.String("move", move.Text),
				zap.Int("ply", ply+1))
			break
		}
		ply++

		after := d.evaluate(board)

		if prev.ok && after.ok {
			if ev, ok := d.checkSwing(prev.cp, after.cp, mover); ok {
				events = append(events, BlunderEvent{
					PreBoard:     preBoard,
					PostBoard:    board.Copy(),
					Move:         move,
					ScoreBefore:  prev.cp,
					ScoreAfter:   after.cp,
					SolverColour: ev,
					MoveNumber:   moveNumber,
					Ply:          ply,
				})
				d.log.Debug("blunder detected",
					zap.Uint("move_number", moveNumber),
					zap.String("move", move.Text),
					zap.Int("before", prev.cp),
					zap.Int("after", after.cp),
					zap.String("solver", ev.String()))
			}
		}

		prev = after
	}

	return events
}

// checkSwing applies the threshold test for the side that just moved and
// returns the solver colour when a blunder is present.
func (d *Detector) checkSwing(before, after int, mover chess.Colour) (chess.Colour, bool) {
	if mover == chess.White {
		// White's move dropped White's evaluation: Black solves.
		if after <= before-d.threshold {
			return chess.Black, true
		}
	} else {
		// Black's move raised White's evaluation: White solves.
		if after >= before+d.threshold {
			return chess.White, true
		}
	}
	return 0, false
}

// evaluate scores the position from White's perspective, reporting
// unavailability instead of failing.
func (d *Detector) evaluate(board *chess.Board) evaluation {
	if engine.IsGameOver(board) {
		// Checkmate or stalemate scores are defined without the engine.
		if engine.IsCheckmate(board) {
			score := analysis.MateIn(0)
			return evaluation{cp: analysis.Normalize(score, board.ToMove, chess.White), ok: true}
		}
		return evaluation{cp: 0, ok: true}
	}

	fen := engine.BoardToFEN(board)
	pvs, err := d.analyser.Analyse(fen, d.scanDepth, 1)
	if err != nil || len(pvs) == 0 {
		d.log.Debug("evaluation unavailable", zap.String("fen", fen), zap.Error(err))
		return evaluation{}
	}
	return evaluation{cp: analysis.Normalize(pvs[0].Score, board.ToMove, chess.White), ok: true}
}
