// Package analysis provides the engine oracle interface and score handling
// for puzzle extraction.
package analysis

import "github.com/lgbarn/puzzle-extract-go/internal/chess"

// MateValue is the saturating centipawn value used for mate scores, so that
// ordinary integer comparisons order mates above any finite evaluation.
const MateValue = 100000

// Score is an engine evaluation of a position, reported from the perspective
// of the side to move (UCI convention).
type Score struct {
	// Centipawns is the evaluation when IsMate is false.
	Centipawns int

	// Mate is the signed distance to mate when IsMate is true:
	// positive means the side to move mates, negative or zero means it is mated.
	Mate int

	// IsMate distinguishes mate scores from centipawn scores.
	IsMate bool
}

// Cp returns a centipawn score.
func Cp(value int) Score {
	return Score{Centipawns: value}
}

// MateIn returns a mate score (positive: side to move mates in n).
func MateIn(n int) Score {
	return Score{Mate: n, IsMate: true}
}

// Value returns the score as a single integer from the side-to-move
// perspective, with mates saturated to ±MateValue. Total over all scores.
func (s Score) Value() int {
	if s.IsMate {
		if s.Mate > 0 {
			return MateValue
		}
		return -MateValue
	}
	return s.Centipawns
}

// Normalize converts a score reported from toMove's perspective into a signed
// integer from pov's perspective. Mate scores saturate to ±MateValue; the
// distance to mate is deliberately discarded beyond its sign.
func Normalize(s Score, toMove, pov chess.Colour) int {
	v := s.Value()
	if toMove != pov {
		return -v
	}
	return v
}
