package candidates

import (
	"go.uber.org/zap"

	"github.com/lgbarn/puzzle-extract-go/internal/analysis"
	"github.com/lgbarn/puzzle-extract-go/internal/chess"
	"github.com/lgbarn/puzzle-extract-go/internal/config"
	"github.com/lgbarn/puzzle-extract-go/internal/detector"
	"github.com/lgbarn/puzzle-extract-go/internal/engine"
)

// minCaptureRun is how many consecutive best-move captures mark a puzzle as
// a bare exchange sequence.
const minCaptureRun = 2

// FilterChain applies the rejection filters to blunder events.
type FilterChain struct {
	analyser analysis.Analyser
	cfg      *config.Config
	depths   config.Depths
	log      *zap.Logger
}

// NewFilterChain builds a chain over the shared analyser.
func NewFilterChain(analyser analysis.Analyser, cfg *config.Config, log *zap.Logger) *FilterChain {
	if log == nil {
		log = zap.NewNop()
	}
	return &FilterChain{
		analyser: analyser,
		cfg:      cfg,
		depths:   cfg.Depths(),
		log:      log,
	}
}

// Evaluate runs every filter against the event and produces an accepted
// candidate or the first rejection.
func (f *FilterChain) Evaluate(ev detector.BlunderEvent, headers map[string]string) Outcome {
	if f.cfg.SkipWonPositions && f.alreadyWinning(ev) {
		return Reject(ReasonAlreadyWon)
	}

	adjusted, forced, reason := f.skipForcedMoves(ev)
	if reason != ReasonNone {
		return Reject(reason)
	}

	if f.isHangingPiece(ev) {
		return Reject(ReasonHangingPiece)
	}

	if f.isPureCaptures(ev) {
		return Reject(ReasonOnlyCaptures)
	}

	return Accept(&Candidate{
		Event:          ev,
		AdjustedBoard:  adjusted,
		ForcedSequence: forced,
		Headers:        headers,
	})
}

// alreadyWinning reports whether the solver held a decisive advantage before
// the blunder was even played.
func (f *FilterChain) alreadyWinning(ev detector.BlunderEvent) bool {
	before := ev.ScoreBefore
	if ev.SolverColour == chess.Black {
		before = -before
	}
	return before >= f.cfg.WinningAdvantage
}

// skipForcedMoves walks forward from the post-blunder position past plies
// where the solver's reply is forced, playing the engine's best move for
// both sides. It fails when no non-forced solver position appears within
// the skip limit.
func (f *FilterChain) skipForcedMoves(ev detector.BlunderEvent) (*chess.Board, []engine.CoordMove, Reason) {
	board := ev.PostBoard.Copy()
	var forced []engine.CoordMove
	skipped := 0

	for skipped < f.cfg.ForcedSkipLimit {
		if engine.IsGameOver(board) {
			return nil, nil, ReasonForcedSequence
		}

		if board.ToMove == ev.SolverColour && !isForced(board) {
			return board, forced, ReasonNone
		}

		cm, ok := f.bestMove(board, f.depths.Quick)
		if !ok {
			return nil, nil, ReasonEngineFailure
		}
		if err := engine.ApplyCoordMove(board, cm); err != nil {
			return nil, nil, ReasonEngineFailure
		}
		if board.ToMove == ev.SolverColour.Opposite() {
			// The solver just moved under compulsion.
			skipped++
		}
		forced = append(forced, cm)
	}

	return nil, nil, ReasonForcedSequence
}

// isForced reports whether the side to move has essentially no choice: a
// single legal move, or at most two while in check.
func isForced(board *chess.Board) bool {
	legal := engine.LegalCoordMoves(board)
	if len(legal) == 1 {
		return true
	}
	return len(legal) <= 2 && engine.IsInCheck(board, board.ToMove)
}

// isHangingPiece reports whether the blunder simply left the moved piece en
// prise with a trivially winning recapture.
func (f *FilterChain) isHangingPiece(ev detector.BlunderEvent) bool {
	board := ev.PostBoard
	col, rank := ev.Move.ToCol, ev.Move.ToRank

	if board.Get(col, rank) == chess.Empty {
		return false
	}

	attackers := engine.CountAttackers(board, col, rank, board.ToMove)
	if attackers == 0 {
		return false
	}
	defenders := engine.CountAttackers(board, col, rank, board.ToMove.Opposite())
	if defenders >= attackers {
		return false
	}

	pvs, err := f.analyser.Analyse(engine.BoardToFEN(board), f.depths.Quick, 2)
	if err != nil || len(pvs) == 0 {
		return false
	}
	best, err := engine.ParseCoordMove(pvs[0].BestMove())
	if err != nil || best.ToCol != col || best.ToRank != rank {
		return false
	}
	if len(pvs) < 2 {
		return true
	}
	return pvs[0].Score.Value()-pvs[1].Score.Value() >= f.cfg.HangingPieceGap
}

// isPureCaptures reports whether the punishing line is nothing but a run of
// exchanges starting from the blunder capture.
func (f *FilterChain) isPureCaptures(ev detector.BlunderEvent) bool {
	if !ev.Move.IsCapture() {
		return false
	}

	board := ev.PostBoard.Copy()
	captures := 0

	for captures < f.cfg.CaptureScanLimit {
		if engine.IsGameOver(board) {
			break
		}
		cm, ok := f.bestMove(board, f.depths.Quick)
		if !ok {
			break
		}
		if !engine.IsCoordCapture(board, cm) {
			return false
		}
		if err := engine.ApplyCoordMove(board, cm); err != nil {
			break
		}
		captures++
	}

	return captures >= minCaptureRun
}

// bestMove asks the analyser for the single best move in the position.
func (f *FilterChain) bestMove(board *chess.Board, depth int) (engine.CoordMove, bool) {
	pvs, err := f.analyser.Analyse(engine.BoardToFEN(board), depth, 1)
	if err != nil || len(pvs) == 0 || pvs[0].BestMove() == "" {
		return engine.CoordMove{}, false
	}
	cm, err := engine.ParseCoordMove(pvs[0].BestMove())
	if err != nil {
		return engine.CoordMove{}, false
	}
	return cm, true
}
