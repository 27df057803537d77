package engine

import (
	"fmt"

	"github.com/lgbarn/puzzle-extract-go/internal/chess"
	"github.com/lgbarn/puzzle-extract-go/internal/errors"
)

// ApplyCoordMove applies a coordinate-form move (as returned in engine
// principal variations) to the board. The move must be legal.
func ApplyCoordMove(board *chess.Board, m CoordMove) error {
	colour := board.ToMove
	piece := board.Get(m.FromCol, m.FromRank)
	if piece == chess.Empty || piece == chess.Off || chess.ExtractColour(piece) != colour {
		return fmt.Errorf("no %v piece on %c%c: %w", colour, m.FromCol, m.FromRank, errors.ErrIllegalMove)
	}
	pieceType := chess.ExtractPiece(piece)

	// Castling arrives as a two-square king move.
	if pieceType == chess.King && abs(int(m.ToCol)-int(m.FromCol)) == 2 {
		if !applyCastle(board, m.ToCol > m.FromCol) {
			return fmt.Errorf("castling %s: %w", m.UCI(), errors.ErrIllegalMove)
		}
		return nil
	}

	if !tryMove(board, m.FromCol, m.FromRank, m.ToCol, m.ToRank, colour) {
		return fmt.Errorf("move %s leaves king in check: %w", m.UCI(), errors.ErrIllegalMove)
	}

	captured := board.Get(m.ToCol, m.ToRank)

	// En passant: a diagonal pawn move onto an empty square.
	enPassant := pieceType == chess.Pawn && m.FromCol != m.ToCol && captured == chess.Empty
	if enPassant {
		capturedRank := chess.Rank(int(m.ToRank) - chess.ColourOffset(colour))
		board.Set(m.ToCol, capturedRank, chess.Empty)
		captured = chess.MakeColouredPiece(colour.Opposite(), chess.Pawn)
	}

	board.Set(m.FromCol, m.FromRank, chess.Empty)
	if m.Promotion != chess.Empty {
		board.Set(m.ToCol, m.ToRank, chess.MakeColouredPiece(colour, m.Promotion))
	} else {
		board.Set(m.ToCol, m.ToRank, piece)
	}

	// King tracking and castling rights
	if pieceType == chess.King {
		if colour == chess.White {
			board.WKingCol, board.WKingRank = m.ToCol, m.ToRank
			board.WKingCastle = 0
			board.WQueenCastle = 0
		} else {
			board.BKingCol, board.BKingRank = m.ToCol, m.ToRank
			board.BKingCastle = 0
			board.BQueenCastle = 0
		}
	}
	if pieceType == chess.Rook {
		updateCastlingRightsForRook(board, colour, m.FromCol, m.FromRank)
	}
	if captured != chess.Empty && chess.ExtractPiece(captured) == chess.Rook {
		updateCastlingRightsForRook(board, chess.ExtractColour(captured), m.ToCol, m.ToRank)
	}

	// En passant availability for the reply
	board.EnPassant = false
	if pieceType == chess.Pawn {
		if colour == chess.White && m.FromRank == '2' && m.ToRank == '4' {
			board.EnPassant = true
			board.EPCol = m.ToCol
			board.EPRank = '3'
		} else if colour == chess.Black && m.FromRank == '7' && m.ToRank == '5' {
			board.EnPassant = true
			board.EPCol = m.ToCol
			board.EPRank = '6'
		}
	}

	// Clocks
	if pieceType == chess.Pawn || captured != chess.Empty {
		board.HalfmoveClock = 0
	} else {
		board.HalfmoveClock++
	}
	if colour == chess.Black {
		board.MoveNumber++
	}
	board.ToMove = colour.Opposite()

	return nil
}

// IsCoordCapture reports whether the move captures a piece on the given board,
// including en passant.
func IsCoordCapture(board *chess.Board, m CoordMove) bool {
	target := board.Get(m.ToCol, m.ToRank)
	if target != chess.Empty && target != chess.Off {
		return true
	}
	piece := board.Get(m.FromCol, m.FromRank)
	return chess.ExtractPiece(piece) == chess.Pawn && m.FromCol != m.ToCol
}
