// Package candidates filters blunder events down to positions worth turning
// into puzzles.
package candidates

import (
	"github.com/lgbarn/puzzle-extract-go/internal/chess"
	"github.com/lgbarn/puzzle-extract-go/internal/detector"
	"github.com/lgbarn/puzzle-extract-go/internal/engine"
)

// Reason identifies why a candidate or puzzle was rejected.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonForcedSequence
	ReasonHangingPiece
	ReasonOnlyCaptures
	ReasonAmbiguous
	ReasonTooShort
	ReasonAlreadyWon
	ReasonEngineFailure
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return ""
	case ReasonForcedSequence:
		return "sequência forçada"
	case ReasonHangingPiece:
		return "peça solta"
	case ReasonOnlyCaptures:
		return "apenas capturas"
	case ReasonAmbiguous:
		return "múltiplas soluções"
	case ReasonTooShort:
		return "sequência muito curta"
	case ReasonAlreadyWon:
		return "ganho não instrutivo"
	case ReasonEngineFailure:
		return "falha de análise"
	}
	return "desconhecido"
}

// Candidate is a blunder event that survived the rejection filters, adjusted
// past any forced replies.
type Candidate struct {
	Event detector.BlunderEvent

	// AdjustedBoard is the position where the solution search starts. When
	// the blunder is answered by a run of forced moves it sits past them,
	// otherwise it equals the post-blunder position.
	AdjustedBoard *chess.Board

	// ForcedSequence holds the moves between the post-blunder position and
	// AdjustedBoard, in order.
	ForcedSequence []engine.CoordMove

	// Headers carries the source game's tag pairs.
	Headers map[string]string
}

// Outcome is the result of filtering a blunder event. Exactly one of the
// accepted and rejected states holds: an accepted outcome carries a candidate
// and no reason, a rejected one carries a reason and no candidate.
type Outcome struct {
	candidate *Candidate
	reason    Reason
}

// Accept wraps a surviving candidate.
func Accept(c *Candidate) Outcome {
	return Outcome{candidate: c}
}

// Reject records a rejection reason.
func Reject(r Reason) Outcome {
	return Outcome{reason: r}
}

// Accepted reports whether the event survived filtering.
func (o Outcome) Accepted() bool {
	return o.candidate != nil
}

// Candidate returns the accepted candidate, or nil for rejections.
func (o Outcome) Candidate() *Candidate {
	return o.candidate
}

// Reason returns the rejection reason, or ReasonNone for accepted outcomes.
func (o Outcome) Reason() Reason {
	return o.reason
}
