package engine

import (
	"fmt"

	"github.com/lgbarn/puzzle-extract-go/internal/chess"
	"github.com/lgbarn/puzzle-extract-go/internal/errors"
)

// CoordMove is a move in coordinate form: source square, destination square
// and an optional promotion piece. This is the form engine principal
// variations arrive in ("e2e4", "e7e8q").
type CoordMove struct {
	FromCol   chess.Col
	FromRank  chess.Rank
	ToCol     chess.Col
	ToRank    chess.Rank
	Promotion chess.Piece // Empty if not a promotion
}

// UCI returns the coordinate notation of the move (e.g. "e2e4", "e7e8q").
func (m CoordMove) UCI() string {
	s := string([]byte{byte(m.FromCol), byte(m.FromRank), byte(m.ToCol), byte(m.ToRank)})
	if m.Promotion != chess.Empty {
		switch m.Promotion {
		case chess.Queen:
			s += "q"
		case chess.Rook:
			s += "r"
		case chess.Bishop:
			s += "b"
		case chess.Knight:
			s += "n"
		}
	}
	return s
}

// ParseCoordMove parses coordinate notation into a CoordMove.
func ParseCoordMove(s string) (CoordMove, error) {
	if len(s) < 4 || len(s) > 5 {
		return CoordMove{}, fmt.Errorf("coordinate move %q: %w", s, errors.ErrIllegalMove)
	}
	m := CoordMove{
		FromCol:   chess.Col(s[0]),
		FromRank:  chess.Rank(s[1]),
		ToCol:     chess.Col(s[2]),
		ToRank:    chess.Rank(s[3]),
		Promotion: chess.Empty,
	}
	if m.FromCol < 'a' || m.FromCol > 'h' || m.ToCol < 'a' || m.ToCol > 'h' ||
		m.FromRank < '1' || m.FromRank > '8' || m.ToRank < '1' || m.ToRank > '8' {
		return CoordMove{}, fmt.Errorf("coordinate move %q: %w", s, errors.ErrIllegalMove)
	}
	if len(s) == 5 {
		switch s[4] {
		case 'q':
			m.Promotion = chess.Queen
		case 'r':
			m.Promotion = chess.Rook
		case 'b':
			m.Promotion = chess.Bishop
		case 'n':
			m.Promotion = chess.Knight
		default:
			return CoordMove{}, fmt.Errorf("promotion %q: %w", s, errors.ErrIllegalMove)
		}
	}
	return m, nil
}

// LegalCoordMoves returns every legal move for the side to move, in
// coordinate form.
func LegalCoordMoves(board *chess.Board) []CoordMove {
	colour := board.ToMove
	var moves []CoordMove

	for col := chess.Col('a'); col <= 'h'; col++ {
		for rank := chess.Rank('1'); rank <= '8'; rank++ {
			piece := board.Get(col, rank)
			if piece == chess.Empty || piece == chess.Off {
				continue
			}
			if chess.ExtractColour(piece) != colour {
				continue
			}
			for _, m := range pseudoMovesFrom(board, col, rank, chess.ExtractPiece(piece), colour) {
				if tryMove(board, m.FromCol, m.FromRank, m.ToCol, m.ToRank, colour) {
					moves = append(moves, m)
				}
			}
		}
	}

	moves = append(moves, castlingMoves(board, colour)...)
	return moves
}

// HasLegalMoves returns true if the given colour has at least one legal move.
func HasLegalMoves(board *chess.Board, colour chess.Colour) bool {
	for col := chess.Col('a'); col <= 'h'; col++ {
		for rank := chess.Rank('1'); rank <= '8'; rank++ {
			piece := board.Get(col, rank)
			if piece == chess.Empty || piece == chess.Off {
				continue
			}
			if chess.ExtractColour(piece) != colour {
				continue
			}
			for _, m := range pseudoMovesFrom(board, col, rank, chess.ExtractPiece(piece), colour) {
				if tryMove(board, m.FromCol, m.FromRank, m.ToCol, m.ToRank, colour) {
					return true
				}
			}
		}
	}
	return false
}

// pseudoMovesFrom generates the pseudo-legal moves for the piece on the given
// square. King-safety is checked by the caller; castling is handled separately.
func pseudoMovesFrom(board *chess.Board, fromCol chess.Col, fromRank chess.Rank, pieceType chess.Piece, colour chess.Colour) []CoordMove {
	var moves []CoordMove

	addMove := func(toCol chess.Col, toRank chess.Rank) {
		base := CoordMove{FromCol: fromCol, FromRank: fromRank, ToCol: toCol, ToRank: toRank, Promotion: chess.Empty}
		if pieceType == chess.Pawn && (toRank == '8' || toRank == '1') {
			for _, promo := range []chess.Piece{chess.Queen, chess.Rook, chess.Bishop, chess.Knight} {
				m := base
				m.Promotion = promo
				moves = append(moves, m)
			}
			return
		}
		moves = append(moves, base)
	}

	switch pieceType {
	case chess.Pawn:
		dir := chess.ColourOffset(colour)
		toRank := chess.Rank(int(fromRank) + dir)
		if toRank >= '1' && toRank <= '8' && board.Get(fromCol, toRank) == chess.Empty {
			addMove(fromCol, toRank)
			startRank := chess.Rank('2')
			if colour == chess.Black {
				startRank = '7'
			}
			if fromRank == startRank {
				toRank2 := chess.Rank(int(fromRank) + 2*dir)
				if board.Get(fromCol, toRank2) == chess.Empty {
					addMove(fromCol, toRank2)
				}
			}
		}
		for dc := -1; dc <= 1; dc += 2 {
			toCol := chess.Col(int(fromCol) + dc)
			toRank := chess.Rank(int(fromRank) + dir)
			if toCol < 'a' || toCol > 'h' || toRank < '1' || toRank > '8' {
				continue
			}
			target := board.Get(toCol, toRank)
			if target != chess.Empty && chess.ExtractColour(target) != colour {
				addMove(toCol, toRank)
			}
			if board.EnPassant && toCol == board.EPCol && toRank == board.EPRank {
				addMove(toCol, toRank)
			}
		}

	case chess.Knight:
		offsets := [][2]int{{-2, -1}, {-2, 1}, {-1, -2}, {-1, 2}, {1, -2}, {1, 2}, {2, -1}, {2, 1}}
		for _, o := range offsets {
			toCol := chess.Col(int(fromCol) + o[0])
			toRank := chess.Rank(int(fromRank) + o[1])
			if toCol < 'a' || toCol > 'h' || toRank < '1' || toRank > '8' {
				continue
			}
			target := board.Get(toCol, toRank)
			if target == chess.Empty || chess.ExtractColour(target) != colour {
				addMove(toCol, toRank)
			}
		}

	case chess.King:
		for dc := -1; dc <= 1; dc++ {
			for dr := -1; dr <= 1; dr++ {
				if dc == 0 && dr == 0 {
					continue
				}
				toCol := chess.Col(int(fromCol) + dc)
				toRank := chess.Rank(int(fromRank) + dr)
				if toCol < 'a' || toCol > 'h' || toRank < '1' || toRank > '8' {
					continue
				}
				target := board.Get(toCol, toRank)
				if target == chess.Empty || chess.ExtractColour(target) != colour {
					addMove(toCol, toRank)
				}
			}
		}

	case chess.Bishop:
		moves = append(moves, slidingMoves(board, fromCol, fromRank, colour, true, false)...)

	case chess.Rook:
		moves = append(moves, slidingMoves(board, fromCol, fromRank, colour, false, true)...)

	case chess.Queen:
		moves = append(moves, slidingMoves(board, fromCol, fromRank, colour, true, true)...)
	}

	return moves
}

// slidingMoves generates pseudo-legal moves for sliding pieces.
func slidingMoves(board *chess.Board, fromCol chess.Col, fromRank chess.Rank, colour chess.Colour, diagonal, straight bool) []CoordMove {
	var dirs [][2]int
	if diagonal {
		dirs = append(dirs, [][2]int{{-1, -1}, {-1, 1}, {1, -1}, {1, 1}}...)
	}
	if straight {
		dirs = append(dirs, [][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}...)
	}

	var moves []CoordMove
	for _, dir := range dirs {
		toCol := chess.Col(int(fromCol) + dir[0])
		toRank := chess.Rank(int(fromRank) + dir[1])
		for toCol >= 'a' && toCol <= 'h' && toRank >= '1' && toRank <= '8' {
			target := board.Get(toCol, toRank)
			if target != chess.Empty {
				if chess.ExtractColour(target) != colour {
					moves = append(moves, CoordMove{FromCol: fromCol, FromRank: fromRank, ToCol: toCol, ToRank: toRank, Promotion: chess.Empty})
				}
				break // Blocked
			}
			moves = append(moves, CoordMove{FromCol: fromCol, FromRank: fromRank, ToCol: toCol, ToRank: toRank, Promotion: chess.Empty})
			toCol = chess.Col(int(toCol) + dir[0])
			toRank = chess.Rank(int(toRank) + dir[1])
		}
	}
	return moves
}

// castlingMoves generates the legal castling moves for the side to move as
// king-movement coordinates (e1g1, e1c1, e8g8, e8c8).
func castlingMoves(board *chess.Board, colour chess.Colour) []CoordMove {
	var moves []CoordMove

	var rank chess.Rank
	var kingCol chess.Col
	var kingside, queenside chess.Col
	if colour == chess.White {
		rank = '1'
		kingCol = board.WKingCol
		kingside = board.WKingCastle
		queenside = board.WQueenCastle
	} else {
		rank = '8'
		kingCol = board.BKingCol
		kingside = board.BKingCastle
		queenside = board.BQueenCastle
	}

	if kingCol != 'e' || IsInCheck(board, colour) {
		return nil
	}

	opponent := colour.Opposite()

	if kingside != 0 &&
		board.Get('f', rank) == chess.Empty &&
		board.Get('g', rank) == chess.Empty &&
		!IsSquareAttacked(board, 'f', rank, opponent) &&
		!IsSquareAttacked(board, 'g', rank, opponent) {
		moves = append(moves, CoordMove{FromCol: 'e', FromRank: rank, ToCol: 'g', ToRank: rank, Promotion: chess.Empty})
	}

	if queenside != 0 &&
		board.Get('d', rank) == chess.Empty &&
		board.Get('c', rank) == chess.Empty &&
		board.Get('b', rank) == chess.Empty &&
		!IsSquareAttacked(board, 'd', rank, opponent) &&
		!IsSquareAttacked(board, 'c', rank, opponent) {
		moves = append(moves, CoordMove{FromCol: 'e', FromRank: rank, ToCol: 'c', ToRank: rank, Promotion: chess.Empty})
	}

	return moves
}
