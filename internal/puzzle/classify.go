package puzzle

import (
	"go.uber.org/zap"

	"github.com/lgbarn/puzzle-extract-go/internal/analysis"
	"github.com/lgbarn/puzzle-extract-go/internal/chess"
	"github.com/lgbarn/puzzle-extract-go/internal/config"
	"github.com/lgbarn/puzzle-extract-go/internal/engine"
)

// endgamePieceLimit is the non-king piece count at or below which a position
// counts as an endgame.
const endgamePieceLimit = 10

// openingMoveLimit and endgameMoveLimit split the game into phases by
// full-move number.
const (
	openingMoveLimit = 10
	endgameMoveLimit = 30
)

// Classifier assigns objective and phase labels to finished puzzles.
type Classifier struct {
	analyser analysis.Analyser
	cfg      *config.Config
	depths   config.Depths
	log      *zap.Logger
}

// NewClassifier creates a Classifier over the shared analyser.
func NewClassifier(analyser analysis.Analyser, cfg *config.Config, log *zap.Logger) *Classifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &Classifier{
		analyser: analyser,
		cfg:      cfg,
		depths:   cfg.Depths(),
		log:      log,
	}
}

// Classify fills in the puzzle's objective and phase.
func (c *Classifier) Classify(p *Puzzle) {
	p.Objective = c.objective(p)
	p.Phase = ClassifyPhase(p.InitialBoard)
}

// objective labels the puzzle by what the solution achieves, judged from a
// quick evaluation of the final position.
func (c *Classifier) objective(p *Puzzle) Objective {
	if engine.IsCheckmate(p.FinalBoard) {
		return ObjectiveMate
	}

	before := p.ScoreBeforeFor(p.SolverColour)
	wasLosing := before < 0

	pvs, err := c.analyser.Analyse(engine.BoardToFEN(p.FinalBoard), c.depths.Quick, 1)
	if err != nil || len(pvs) == 0 {
		c.log.Debug("final position evaluation unavailable, labelling as defence",
			zap.String("fen", engine.BoardToFEN(p.FinalBoard)))
		return ObjectiveDefence
	}
	after := analysis.Normalize(pvs[0].Score, p.FinalBoard.ToMove, p.SolverColour)

	switch {
	case after >= c.cfg.WinningAdvantage:
		if wasLosing {
			return ObjectiveReversal
		}
		return ObjectiveBlunder
	case after > -c.cfg.DrawingRange && after < c.cfg.DrawingRange:
		if wasLosing {
			return ObjectiveEqualize
		}
		return ObjectiveDefence
	default:
		return ObjectiveDefence
	}
}

// ClassifyPhase labels the stage of the game the puzzle starts in.
func ClassifyPhase(board *chess.Board) Phase {
	switch {
	case board.MoveNumber <= openingMoveLimit:
		return PhaseOpening
	case board.MoveNumber >= endgameMoveLimit || board.NonKingPieceCount() <= endgamePieceLimit:
		return PhaseEndgame
	default:
		return PhaseMiddlegame
	}
}
