package puzzle

import (
	"github.com/lgbarn/puzzle-extract-go/internal/chess"
	"github.com/lgbarn/puzzle-extract-go/internal/engine"
)

// ToGame renders the puzzle as a standalone game: tag pairs from the source
// game plus the diagram headers, then the blunder move, any forced replies
// and the solution line with its alternatives as variations.
func (p *Puzzle) ToGame() *chess.Game {
	game := chess.NewGame()
	for name, value := range p.Headers {
		game.SetTag(name, value)
	}

	game.SetTag(chess.TagSetUp, "1")
	game.SetTag(chess.TagFEN, engine.BoardToFEN(p.InitialBoard))
	game.SetTag(chess.TagObjective, string(p.Objective))
	game.SetTag(chess.TagPhase, string(p.Phase))
	game.SetTag("Result", "*")

	blunder := cloneMove(p.BlunderMove)
	blunder.AppendNAG("??")
	game.AppendMove(blunder)

	for _, m := range p.Forced {
		game.AppendMove(cloneMove(m))
	}

	for node := p.Solution; node != nil; node = node.Next {
		move := cloneMove(node.Move)
		for _, alt := range node.Alternatives {
			move.AppendVariation(&chess.Variation{Moves: cloneMove(alt)})
		}
		game.AppendMove(move)
	}

	if last := game.LastMove(); last != nil {
		last.TerminatingResult = "*"
	}
	return game
}

// cloneMove copies the fields that describe the move itself, leaving behind
// annotations and list links from the source game.
func cloneMove(m *chess.Move) *chess.Move {
	clone := chess.NewMove()
	clone.Text = m.Text
	clone.Class = m.Class
	clone.FromCol = m.FromCol
	clone.FromRank = m.FromRank
	clone.ToCol = m.ToCol
	clone.ToRank = m.ToRank
	clone.PieceToMove = m.PieceToMove
	clone.CapturedPiece = m.CapturedPiece
	clone.PromotedPiece = m.PromotedPiece
	clone.CheckStatus = m.CheckStatus
	return clone
}
