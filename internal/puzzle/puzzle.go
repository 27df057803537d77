// Package puzzle builds verified solution lines for accepted candidates and
// classifies the finished puzzles.
package puzzle

import (
	"github.com/lgbarn/puzzle-extract-go/internal/chess"
)

// Objective describes what the solver achieves by playing the solution.
type Objective string

const (
	ObjectiveMate     Objective = "Mate"
	ObjectiveReversal Objective = "Reversão"
	ObjectiveEqualize Objective = "Equalização"
	ObjectiveDefence  Objective = "Defesa"
	ObjectiveBlunder  Objective = "Blunder"
)

// Phase names the stage of the game the puzzle was taken from.
type Phase string

const (
	PhaseOpening    Phase = "Abertura"
	PhaseMiddlegame Phase = "Meio-jogo"
	PhaseEndgame    Phase = "Final"
)

// SolutionNode is one ply of the verified solution line. Nodes are created
// once and linked forward; the line is never edited in place.
type SolutionNode struct {
	// Move is the main-line move.
	Move *chess.Move

	// Alternatives are moves scored within the equivalence window of Move.
	// Only solver plies carry alternatives.
	Alternatives []*chess.Move

	// Solver reports whether this ply belongs to the solving side.
	Solver bool

	Next *SolutionNode
}

// Puzzle is a finished, classified puzzle ready for export.
type Puzzle struct {
	// InitialBoard is the pre-blunder position the diagram starts from.
	InitialBoard *chess.Board

	// BlunderMove is the move that created the puzzle. It is the first ply
	// of the exported line.
	BlunderMove *chess.Move

	// Forced holds the moves between the post-blunder position and the start
	// of the solution, in SAN form.
	Forced []*chess.Move

	// Solution is the head of the verified line.
	Solution *SolutionNode

	// FinalBoard is the position after the last solution move.
	FinalBoard *chess.Board

	// SolverColour is the side to find the solution.
	SolverColour chess.Colour

	// ScoreBefore is the pre-blunder evaluation from White's perspective.
	ScoreBefore int

	Objective Objective
	Phase     Phase

	// Headers carries the source game's tag pairs.
	Headers map[string]string

	// MoveNumber is the full-move number of the pre-blunder position.
	MoveNumber uint
}

// ScoreBeforeFor returns the pre-blunder evaluation from the given side's
// perspective.
func (p *Puzzle) ScoreBeforeFor(colour chess.Colour) int {
	if colour == chess.Black {
		return -p.ScoreBefore
	}
	return p.ScoreBefore
}

// SolutionLen counts the plies of the solution line.
func (p *Puzzle) SolutionLen() int {
	n := 0
	for node := p.Solution; node != nil; node = node.Next {
		n++
	}
	return n
}

// SolutionSAN returns the main line in SAN, blunder and forced moves included.
func (p *Puzzle) SolutionSAN() []string {
	line := []string{p.BlunderMove.Text}
	for _, m := range p.Forced {
		line = append(line, m.Text)
	}
	for node := p.Solution; node != nil; node = node.Next {
		line = append(line, node.Move.Text)
	}
	return line
}
