package puzzle

import (
	"go.uber.org/zap"

	"github.com/lgbarn/puzzle-extract-go/internal/analysis"
	"github.com/lgbarn/puzzle-extract-go/internal/candidates"
	"github.com/lgbarn/puzzle-extract-go/internal/chess"
	"github.com/lgbarn/puzzle-extract-go/internal/config"
	"github.com/lgbarn/puzzle-extract-go/internal/engine"
)

// Builder turns accepted candidates into verified puzzles.
type Builder struct {
	analyser analysis.Analyser
	cfg      *config.Config
	depths   config.Depths
	log      *zap.Logger
}

// NewBuilder creates a Builder over the shared analyser.
func NewBuilder(analyser analysis.Analyser, cfg *config.Config, log *zap.Logger) *Builder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Builder{
		analyser: analyser,
		cfg:      cfg,
		depths:   cfg.Depths(),
		log:      log,
	}
}

// Build searches for a minimally ambiguous solution line starting from the
// candidate's adjusted position. A nil puzzle is returned together with the
// rejection reason when no acceptable line exists.
func (b *Builder) Build(cand *candidates.Candidate) (*Puzzle, candidates.Reason) {
	board := cand.AdjustedBoard.Copy()
	solver := cand.Event.SolverColour

	var nodes []*SolutionNode
	var states []*chess.Board
	solverPlies := 0

	for len(nodes) < b.cfg.MaxSolutionPlies {
		if engine.IsGameOver(board) {
			break
		}

		states = append(states, board.Copy())

		if board.ToMove == solver {
			node, reason := b.solverPly(board)
			if reason != candidates.ReasonNone {
				return nil, reason
			}
			nodes = append(nodes, node)
			solverPlies++
		} else {
			node, ok := b.opponentPly(board)
			if !ok {
				states = states[:len(states)-1]
				break
			}
			nodes = append(nodes, node)
		}
	}

	// A line must not end with the opponent to move against silence.
	if n := len(nodes); n > 0 && !nodes[n-1].Solver {
		board = states[n-1]
		nodes = nodes[:n-1]
	}

	if solverPlies < b.cfg.MinSolverPlies {
		return nil, candidates.ReasonTooShort
	}

	for i := 0; i < len(nodes)-1; i++ {
		nodes[i].Next = nodes[i+1]
	}

	forced, reason := b.forcedLine(cand)
	if reason != candidates.ReasonNone {
		return nil, reason
	}

	return &Puzzle{
		InitialBoard: cand.Event.PreBoard,
		BlunderMove:  cand.Event.Move,
		Forced:       forced,
		Solution:     nodes[0],
		FinalBoard:   board,
		SolverColour: solver,
		ScoreBefore:  cand.Event.ScoreBefore,
		Headers:      cand.Headers,
		MoveNumber:   cand.Event.MoveNumber,
	}, candidates.ReasonNone
}

// solverPly picks the solver's move, collecting equally good alternatives and
// rejecting positions whose best line is not clearly unique.
func (b *Builder) solverPly(board *chess.Board) (*SolutionNode, candidates.Reason) {
	pvs, err := b.analyser.Analyse(engine.BoardToFEN(board), b.depths.Solve, b.cfg.MaxVariants+2)
	if err != nil || len(pvs) == 0 {
		return nil, candidates.ReasonEngineFailure
	}

	// Scores are from the side to move, which here is the solver.
	best := pvs[0].Score.Value()
	equivalent := 1
	for equivalent < len(pvs) && pvs[equivalent].Score.Value() >= best-b.cfg.AltThreshold {
		equivalent++
	}

	if equivalent > b.cfg.MaxVariants+1 {
		return nil, candidates.ReasonAmbiguous
	}
	if equivalent < len(pvs) && best-pvs[equivalent].Score.Value() < b.cfg.UnicityThreshold {
		return nil, candidates.ReasonAmbiguous
	}

	node := &SolutionNode{Solver: true}
	for i := 0; i < equivalent; i++ {
		cm, err := engine.ParseCoordMove(pvs[i].BestMove())
		if err != nil {
			return nil, candidates.ReasonEngineFailure
		}
		move := engine.MoveFromCoord(board, cm)
		if move == nil {
			return nil, candidates.ReasonEngineFailure
		}
		if i == 0 {
			node.Move = move
			if err := engine.ApplyCoordMove(board, cm); err != nil {
				return nil, candidates.ReasonEngineFailure
			}
		} else {
			node.Alternatives = append(node.Alternatives, move)
		}
	}
	return node, candidates.ReasonNone
}

// opponentPly plays the opponent's best reply, degrading to a shallower
// search and finally to any legal move when the engine will not answer.
func (b *Builder) opponentPly(board *chess.Board) (*SolutionNode, bool) {
	var cm engine.CoordMove
	found := false

	for _, depth := range []int{b.depths.Solve, b.depths.Scan} {
		pvs, err := b.analyser.Analyse(engine.BoardToFEN(board), depth, 1)
		if err != nil || len(pvs) == 0 || pvs[0].BestMove() == "" {
			continue
		}
		parsed, err := engine.ParseCoordMove(pvs[0].BestMove())
		if err != nil {
			continue
		}
		cm, found = parsed, true
		break
	}
	if !found {
		legal := engine.LegalCoordMoves(board)
		if len(legal) == 0 {
			return nil, false
		}
		b.log.Debug("engine silent, playing first legal reply",
			zap.String("fen", engine.BoardToFEN(board)))
		cm = legal[0]
	}

	move := engine.MoveFromCoord(board, cm)
	if move == nil {
		return nil, false
	}
	if err := engine.ApplyCoordMove(board, cm); err != nil {
		return nil, false
	}
	return &SolutionNode{Move: move}, true
}

// forcedLine converts the candidate's forced coordinate moves to SAN by
// replaying them from the post-blunder position.
func (b *Builder) forcedLine(cand *candidates.Candidate) ([]*chess.Move, candidates.Reason) {
	if len(cand.ForcedSequence) == 0 {
		return nil, candidates.ReasonNone
	}
	board := cand.Event.PostBoard.Copy()
	moves := make([]*chess.Move, 0, len(cand.ForcedSequence))
	for _, cm := range cand.ForcedSequence {
		move := engine.MoveFromCoord(board, cm)
		if move == nil {
			return nil, candidates.ReasonEngineFailure
		}
		if err := engine.ApplyCoordMove(board, cm); err != nil {
			return nil, candidates.ReasonEngineFailure
		}
		moves = append(moves, move)
	}
	return moves, candidates.ReasonNone
}
