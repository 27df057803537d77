package engine

import (
	"github.com/lgbarn/puzzle-extract-go/internal/chess"
)

// ApplyMove applies a parsed SAN move to the board and updates the board state.
// The move's source square, captured piece, and check status are filled in as a
// side effect so later stages can inspect them. Returns true on success.
func ApplyMove(board *chess.Board, move *chess.Move) bool {
	if move == nil {
		return false
	}

	var ok bool
	switch move.Class {
	case chess.NullMove:
		board.ToMove = board.ToMove.Opposite()
		board.EnPassant = false
		return true

	case chess.KingsideCastle:
		ok = applyCastle(board, true)

	case chess.QueensideCastle:
		ok = applyCastle(board, false)

	case chess.PawnMove, chess.PawnMoveWithPromotion, chess.EnPassantPawnMove:
		ok = applyPawnMove(board, move)

	case chess.PieceMove:
		ok = applyPieceMove(board, move)

	default:
		return false
	}

	if ok {
		colour := board.ToMove // Already flipped; the mover is the opposite side.
		if IsInCheck(board, colour) {
			if IsCheckmate(board) {
				move.CheckStatus = chess.Checkmate
			} else {
				move.CheckStatus = chess.Check
			}
		}
	}
	return ok
}

// applyCastle applies a castling move.
func applyCastle(board *chess.Board, kingside bool) bool {
	colour := board.ToMove
	var rank chess.Rank
	var kingFromCol, kingToCol, rookFromCol, rookToCol chess.Col

	if colour == chess.White {
		rank = '1'
		kingFromCol = board.WKingCol
		if kingside {
			kingToCol = 'g'
			rookFromCol = board.WKingCastle
			rookToCol = 'f'
		} else {
			kingToCol = 'c'
			rookFromCol = board.WQueenCastle
			rookToCol = 'd'
		}
	} else {
		rank = '8'
		kingFromCol = board.BKingCol
		if kingside {
			kingToCol = 'g'
			rookFromCol = board.BKingCastle
			rookToCol = 'f'
		} else {
			kingToCol = 'c'
			rookFromCol = board.BQueenCastle
			rookToCol = 'd'
		}
	}

	if rookFromCol == 0 {
		return false
	}

	// Move king
	king := board.Get(kingFromCol, rank)
	board.Set(kingFromCol, rank, chess.Empty)
	board.Set(kingToCol, rank, king)

	// Move rook
	rook := board.Get(rookFromCol, rank)
	board.Set(rookFromCol, rank, chess.Empty)
	board.Set(rookToCol, rank, rook)

	// Update king position and drop rights
	if colour == chess.White {
		board.WKingCol = kingToCol
		board.WKingCastle = 0
		board.WQueenCastle = 0
	} else {
		board.BKingCol = kingToCol
		board.BKingCastle = 0
		board.BQueenCastle = 0
	}

	board.EnPassant = false
	board.HalfmoveClock++
	if colour == chess.Black {
		board.MoveNumber++
	}
	board.ToMove = colour.Opposite()

	return true
}

// applyPawnMove applies a pawn move.
func applyPawnMove(board *chess.Board, move *chess.Move) bool {
	colour := board.ToMove
	fromCol := move.FromCol
	fromRank := move.FromRank
	toCol := move.ToCol
	toRank := move.ToRank

	// If source square not specified, find the pawn
	if fromCol == 0 || fromRank == 0 {
		fromCol, fromRank = findPawnSource(board, move, colour)
		if fromCol == 0 {
			return false
		}
		move.FromCol = fromCol
		move.FromRank = fromRank
	}

	pawn := board.Get(fromCol, fromRank)

	// A diagonal pawn move onto an empty square is en passant.
	if fromCol != toCol && board.Get(toCol, toRank) == chess.Empty {
		move.Class = chess.EnPassantPawnMove
	}

	if move.Class == chess.EnPassantPawnMove {
		// Remove the captured pawn
		var capturedRank chess.Rank
		if colour == chess.White {
			capturedRank = toRank - 1
		} else {
			capturedRank = toRank + 1
		}
		board.Set(toCol, capturedRank, chess.Empty)
		move.CapturedPiece = chess.Pawn
	} else if target := board.Get(toCol, toRank); target != chess.Empty && target != chess.Off {
		move.CapturedPiece = chess.ExtractPiece(target)
	}

	// Move the pawn
	board.Set(fromCol, fromRank, chess.Empty)

	// Handle promotion
	if move.Class == chess.PawnMoveWithPromotion {
		promotedPiece := move.PromotedPiece
		if promotedPiece == chess.Empty {
			promotedPiece = chess.Queen
		}
		board.Set(toCol, toRank, chess.MakeColouredPiece(colour, promotedPiece))
	} else {
		board.Set(toCol, toRank, pawn)
	}

	// Set en passant square if double pawn push
	board.EnPassant = false
	if colour == chess.White && fromRank == '2' && toRank == '4' {
		board.EnPassant = true
		board.EPCol = toCol
		board.EPRank = '3'
	} else if colour == chess.Black && fromRank == '7' && toRank == '5' {
		board.EnPassant = true
		board.EPCol = toCol
		board.EPRank = '6'
	}

	board.HalfmoveClock = 0 // Pawn move resets clock
	if colour == chess.Black {
		board.MoveNumber++
	}
	board.ToMove = colour.Opposite()

	return true
}

// applyPieceMove applies a piece (non-pawn) move.
func applyPieceMove(board *chess.Board, move *chess.Move) bool {
	colour := board.ToMove
	fromCol := move.FromCol
	fromRank := move.FromRank
	toCol := move.ToCol
	toRank := move.ToRank
	pieceType := move.PieceToMove

	// If source square not specified, find the piece
	if fromCol == 0 || fromRank == 0 {
		fromCol, fromRank = findPieceSource(board, move, colour)
		if fromCol == 0 {
			return false
		}
		move.FromCol = fromCol
		move.FromRank = fromRank
	}

	piece := board.Get(fromCol, fromRank)
	capturedPiece := board.Get(toCol, toRank)

	// Move the piece
	board.Set(fromCol, fromRank, chess.Empty)
	board.Set(toCol, toRank, piece)

	if capturedPiece != chess.Empty && capturedPiece != chess.Off {
		move.CapturedPiece = chess.ExtractPiece(capturedPiece)
	}

	// Update king position if king moved
	if pieceType == chess.King {
		if colour == chess.White {
			board.WKingCol = toCol
			board.WKingRank = toRank
			board.WKingCastle = 0
			board.WQueenCastle = 0
		} else {
			board.BKingCol = toCol
			board.BKingRank = toRank
			board.BKingCastle = 0
			board.BQueenCastle = 0
		}
	}

	// Update castling rights if rook moved or captured
	if pieceType == chess.Rook {
		updateCastlingRightsForRook(board, colour, fromCol, fromRank)
	}
	if capturedPiece != chess.Empty && chess.ExtractPiece(capturedPiece) == chess.Rook {
		capturedColour := chess.ExtractColour(capturedPiece)
		updateCastlingRightsForRook(board, capturedColour, toCol, toRank)
	}

	board.EnPassant = false

	if capturedPiece != chess.Empty {
		board.HalfmoveClock = 0
	} else {
		board.HalfmoveClock++
	}

	if colour == chess.Black {
		board.MoveNumber++
	}
	board.ToMove = colour.Opposite()

	return true
}

// findPawnSource finds the source square of a pawn move.
func findPawnSource(board *chess.Board, move *chess.Move, colour chess.Colour) (chess.Col, chess.Rank) {
	toCol := move.ToCol
	toRank := move.ToRank
	fromCol := move.FromCol

	pawn := chess.MakeColouredPiece(colour, chess.Pawn)
	direction := chess.ColourOffset(colour)

	// If we know the from column, look for the pawn there
	if fromCol != 0 {
		// Capture - look one rank back
		fromRank := chess.Rank(byte(toRank) - byte(direction))
		if board.Get(fromCol, fromRank) == pawn {
			return fromCol, fromRank
		}
		return 0, 0
	}

	// Non-capture - same column
	fromRank := chess.Rank(byte(toRank) - byte(direction))
	if board.Get(toCol, fromRank) == pawn {
		return toCol, fromRank
	}

	// Double pawn push
	if (colour == chess.White && toRank == '4') || (colour == chess.Black && toRank == '5') {
		fromRank = chess.Rank(byte(toRank) - byte(2*direction))
		middleRank := chess.Rank(byte(toRank) - byte(direction))
		if board.Get(toCol, fromRank) == pawn && board.Get(toCol, middleRank) == chess.Empty {
			return toCol, fromRank
		}
	}

	return 0, 0
}

// findPieceSource finds the source square of a piece move.
func findPieceSource(board *chess.Board, move *chess.Move, colour chess.Colour) (chess.Col, chess.Rank) {
	toCol := move.ToCol
	toRank := move.ToRank
	pieceType := move.PieceToMove
	fromCol := move.FromCol
	fromRank := move.FromRank

	piece := chess.MakeColouredPiece(colour, pieceType)

	// Search for the piece that can move to the target square
	for col := chess.Col('a'); col <= 'h'; col++ {
		for rank := chess.Rank('1'); rank <= '8'; rank++ {
			if board.Get(col, rank) != piece {
				continue
			}

			// Check disambiguation
			if fromCol != 0 && col != fromCol {
				continue
			}
			if fromRank != 0 && rank != fromRank {
				continue
			}

			if !canPieceMove(board, pieceType, col, rank, toCol, toRank) {
				continue
			}

			// Among ambiguous candidates, pick the one whose move is legal.
			if tryMove(board, col, rank, toCol, toRank, colour) {
				return col, rank
			}
		}
	}

	return 0, 0
}

// updateCastlingRightsForRook removes castling rights when a rook moves or is captured.
func updateCastlingRightsForRook(board *chess.Board, colour chess.Colour, col chess.Col, rank chess.Rank) {
	if colour == chess.White && rank == '1' {
		if col == board.WKingCastle {
			board.WKingCastle = 0
		}
		if col == board.WQueenCastle {
			board.WQueenCastle = 0
		}
	} else if colour == chess.Black && rank == '8' {
		if col == board.BKingCastle {
			board.BKingCastle = 0
		}
		if col == board.BQueenCastle {
			board.BQueenCastle = 0
		}
	}
}
