package engine

import (
	"strings"

	"github.com/lgbarn/puzzle-extract-go/internal/chess"
)

// MoveFromCoord converts a coordinate-form move into a full chess.Move with
// SAN text, suitable for attaching to an output game tree. The board is not
// modified.
func MoveFromCoord(board *chess.Board, cm CoordMove) *chess.Move {
	colour := board.ToMove
	piece := board.Get(cm.FromCol, cm.FromRank)
	pieceType := chess.ExtractPiece(piece)

	move := chess.NewMove()
	move.FromCol = cm.FromCol
	move.FromRank = cm.FromRank
	move.ToCol = cm.ToCol
	move.ToRank = cm.ToRank
	move.PieceToMove = pieceType

	// Castling
	if pieceType == chess.King && abs(int(cm.ToCol)-int(cm.FromCol)) == 2 {
		if cm.ToCol > cm.FromCol {
			move.Class = chess.KingsideCastle
			move.Text = "O-O"
		} else {
			move.Class = chess.QueensideCastle
			move.Text = "O-O-O"
		}
		move.Text += checkSuffix(board, cm)
		return move
	}

	target := board.Get(cm.ToCol, cm.ToRank)
	isCapture := target != chess.Empty && target != chess.Off
	enPassant := pieceType == chess.Pawn && cm.FromCol != cm.ToCol && !isCapture

	var sb strings.Builder

	if pieceType == chess.Pawn {
		move.Class = chess.PawnMove
		if isCapture || enPassant {
			sb.WriteByte(byte(cm.FromCol))
			sb.WriteByte('x')
			move.CapturedPiece = chess.Pawn
			if isCapture {
				move.CapturedPiece = chess.ExtractPiece(target)
			}
		}
		if enPassant {
			move.Class = chess.EnPassantPawnMove
		}
		sb.WriteByte(byte(cm.ToCol))
		sb.WriteByte(byte(cm.ToRank))
		if cm.Promotion != chess.Empty {
			move.Class = chess.PawnMoveWithPromotion
			move.PromotedPiece = cm.Promotion
			sb.WriteByte('=')
			sb.WriteByte(SANPieceLetter(cm.Promotion))
		}
	} else {
		move.Class = chess.PieceMove
		sb.WriteByte(SANPieceLetter(pieceType))
		sb.WriteString(disambiguation(board, cm, pieceType, colour))
		if isCapture {
			sb.WriteByte('x')
			move.CapturedPiece = chess.ExtractPiece(target)
		}
		sb.WriteByte(byte(cm.ToCol))
		sb.WriteByte(byte(cm.ToRank))
	}

	suffix := checkSuffix(board, cm)
	if suffix == "#" {
		move.CheckStatus = chess.Checkmate
	} else if suffix == "+" {
		move.CheckStatus = chess.Check
	}
	move.Text = sb.String() + suffix

	return move
}

// disambiguation returns the SAN disambiguation string needed when more than
// one piece of the same type can legally reach the destination square.
func disambiguation(board *chess.Board, cm CoordMove, pieceType chess.Piece, colour chess.Colour) string {
	if pieceType == chess.King {
		return ""
	}

	piece := chess.MakeColouredPiece(colour, pieceType)
	sameCol := false
	sameRank := false
	ambiguous := false

	for col := chess.Col('a'); col <= 'h'; col++ {
		for rank := chess.Rank('1'); rank <= '8'; rank++ {
			if col == cm.FromCol && rank == cm.FromRank {
				continue
			}
			if board.Get(col, rank) != piece {
				continue
			}
			if !canPieceMove(board, pieceType, col, rank, cm.ToCol, cm.ToRank) {
				continue
			}
			if !tryMove(board, col, rank, cm.ToCol, cm.ToRank, colour) {
				continue
			}
			ambiguous = true
			if col == cm.FromCol {
				sameCol = true
			}
			if rank == cm.FromRank {
				sameRank = true
			}
		}
	}

	switch {
	case !ambiguous:
		return ""
	case !sameCol:
		return string([]byte{byte(cm.FromCol)})
	case !sameRank:
		return string([]byte{byte(cm.FromRank)})
	default:
		return string([]byte{byte(cm.FromCol), byte(cm.FromRank)})
	}
}

// checkSuffix returns "+", "#" or "" for the position after the move.
func checkSuffix(board *chess.Board, cm CoordMove) string {
	after := board.Copy()
	if err := ApplyCoordMove(after, cm); err != nil {
		return ""
	}
	if !IsInCheck(after, after.ToMove) {
		return ""
	}
	if IsCheckmate(after) {
		return "#"
	}
	return "+"
}
