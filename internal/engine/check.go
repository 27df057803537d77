package engine

import "github.com/lgbarn/puzzle-extract-go/internal/chess"

// IsInCheck returns true if the given colour's king is in check.
func IsInCheck(board *chess.Board, colour chess.Colour) bool {
	var kingCol chess.Col
	var kingRank chess.Rank
	if colour == chess.White {
		kingCol = board.WKingCol
		kingRank = board.WKingRank
	} else {
		kingCol = board.BKingCol
		kingRank = board.BKingRank
	}

	// If king position not tracked, search for it
	if kingCol == 0 || kingRank == 0 {
		kingCol, kingRank = findKing(board, colour)
		if kingCol == 0 {
			return false // No king found
		}
	}

	return IsSquareAttacked(board, kingCol, kingRank, colour.Opposite())
}

// findKing finds the king of the given colour on the board.
func findKing(board *chess.Board, colour chess.Colour) (chess.Col, chess.Rank) {
	king := chess.MakeColouredPiece(colour, chess.King)
	for col := chess.Col('a'); col <= 'h'; col++ {
		for rank := chess.Rank('1'); rank <= '8'; rank++ {
			if board.Get(col, rank) == king {
				return col, rank
			}
		}
	}
	return 0, 0
}

// IsSquareAttacked returns true if the square is attacked by the given colour.
func IsSquareAttacked(board *chess.Board, col chess.Col, rank chess.Rank, byColour chess.Colour) bool {
	return CountAttackers(board, col, rank, byColour) > 0
}

// CountAttackers returns the number of pieces of the given colour that attack
// the square. Pinned attackers still count; only direct attacks are considered,
// not batteries behind other attackers.
func CountAttackers(board *chess.Board, col chess.Col, rank chess.Rank, byColour chess.Colour) int {
	count := 0

	// Pawn attacks
	pawn := chess.MakeColouredPiece(byColour, chess.Pawn)
	var pawnDir int
	if byColour == chess.White {
		pawnDir = -1 // White pawns attack from below
	} else {
		pawnDir = 1 // Black pawns attack from above
	}
	pawnRank := chess.Rank(int(rank) + pawnDir)
	if pawnRank >= '1' && pawnRank <= '8' {
		if col > 'a' && board.Get(col-1, pawnRank) == pawn {
			count++
		}
		if col < 'h' && board.Get(col+1, pawnRank) == pawn {
			count++
		}
	}

	// Knight attacks
	knight := chess.MakeColouredPiece(byColour, chess.Knight)
	knightMoves := [][2]int{{-2, -1}, {-2, 1}, {-1, -2}, {-1, 2}, {1, -2}, {1, 2}, {2, -1}, {2, 1}}
	for _, move := range knightMoves {
		c := chess.Col(int(col) + move[0])
		r := chess.Rank(int(rank) + move[1])
		if c >= 'a' && c <= 'h' && r >= '1' && r <= '8' {
			if board.Get(c, r) == knight {
				count++
			}
		}
	}

	// King attacks
	king := chess.MakeColouredPiece(byColour, chess.King)
	for dc := -1; dc <= 1; dc++ {
		for dr := -1; dr <= 1; dr++ {
			if dc == 0 && dr == 0 {
				continue
			}
			c := chess.Col(int(col) + dc)
			r := chess.Rank(int(rank) + dr)
			if c >= 'a' && c <= 'h' && r >= '1' && r <= '8' {
				if board.Get(c, r) == king {
					count++
				}
			}
		}
	}

	// Sliding pieces (bishop, queen) along diagonals
	bishop := chess.MakeColouredPiece(byColour, chess.Bishop)
	queen := chess.MakeColouredPiece(byColour, chess.Queen)
	diagonalDirs := [][2]int{{-1, -1}, {-1, 1}, {1, -1}, {1, 1}}
	for _, dir := range diagonalDirs {
		c := chess.Col(int(col) + dir[0])
		r := chess.Rank(int(rank) + dir[1])
		for c >= 'a' && c <= 'h' && r >= '1' && r <= '8' {
			piece := board.Get(c, r)
			if piece != chess.Empty {
				if piece == bishop || piece == queen {
					count++
				}
				break // Blocked
			}
			c = chess.Col(int(c) + dir[0])
			r = chess.Rank(int(r) + dir[1])
		}
	}

	// Sliding pieces (rook, queen) along straight lines
	rook := chess.MakeColouredPiece(byColour, chess.Rook)
	straightDirs := [][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}
	for _, dir := range straightDirs {
		c := chess.Col(int(col) + dir[0])
		r := chess.Rank(int(rank) + dir[1])
		for c >= 'a' && c <= 'h' && r >= '1' && r <= '8' {
			piece := board.Get(c, r)
			if piece != chess.Empty {
				if piece == rook || piece == queen {
					count++
				}
				break // Blocked
			}
			c = chess.Col(int(c) + dir[0])
			r = chess.Rank(int(r) + dir[1])
		}
	}

	return count
}

// tryMove makes a move on a copied board and checks if it leaves the king in check.
func tryMove(board *chess.Board, fromCol chess.Col, fromRank chess.Rank, toCol chess.Col, toRank chess.Rank, colour chess.Colour) bool {
	testBoard := board.Copy()

	piece := testBoard.Get(fromCol, fromRank)

	// En passant: remove the captured pawn from its actual square.
	if chess.ExtractPiece(piece) == chess.Pawn && fromCol != toCol &&
		testBoard.Get(toCol, toRank) == chess.Empty {
		capturedRank := chess.Rank(int(toRank) - chess.ColourOffset(colour))
		testBoard.Set(toCol, capturedRank, chess.Empty)
	}

	testBoard.Set(fromCol, fromRank, chess.Empty)
	testBoard.Set(toCol, toRank, piece)

	if chess.ExtractPiece(piece) == chess.King {
		if colour == chess.White {
			testBoard.WKingCol = toCol
			testBoard.WKingRank = toRank
		} else {
			testBoard.BKingCol = toCol
			testBoard.BKingRank = toRank
		}
	}

	return !IsInCheck(testBoard, colour)
}
