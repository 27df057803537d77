// Package hashing provides position hashing for duplicate puzzle detection.
package hashing

import (
	"math/rand"

	"github.com/lgbarn/puzzle-extract-go/internal/chess"
)

// zobristSeed fixes the table contents so hashes are stable across runs.
const zobristSeed int64 = 0x1a3c1f58b2d4e607

var (
	pieceKeys    [chess.NumPieceValues][2][chess.BoardSize][chess.BoardSize]uint64
	blackToMove  uint64
	castlingKeys [4]uint64
	epFileKeys   [chess.BoardSize]uint64
)

func init() {
	rng := rand.New(rand.NewSource(zobristSeed))
	for p := 0; p < int(chess.NumPieceValues); p++ {
		for colour := 0; colour < 2; colour++ {
			for c := 0; c < chess.BoardSize; c++ {
				for r := 0; r < chess.BoardSize; r++ {
					pieceKeys[p][colour][c][r] = rng.Uint64()
				}
			}
		}
	}
	blackToMove = rng.Uint64()
	for i := range castlingKeys {
		castlingKeys[i] = rng.Uint64()
	}
	for i := range epFileKeys {
		epFileKeys[i] = rng.Uint64()
	}
}

// HashBoard computes the Zobrist hash of a position. Positions that differ
// only in move counters hash the same; side to move, castling rights and the
// en passant file all contribute.
func HashBoard(board *chess.Board) uint64 {
	var hash uint64

	for col := chess.Col(chess.FirstCol); col <= chess.LastCol; col++ {
		for rank := chess.Rank(chess.FirstRank); rank <= chess.LastRank; rank++ {
			coloured := board.Get(col, rank)
			if coloured == chess.Empty || coloured == chess.Off {
				continue
			}
			piece := chess.ExtractPiece(coloured)
			c := int(col - chess.FirstCol)
			r := int(rank - chess.FirstRank)
			hash ^= pieceKeys[piece][chess.ExtractColour(coloured)][c][r]
		}
	}

	if board.ToMove == chess.Black {
		hash ^= blackToMove
	}

	if board.WKingCastle != 0 {
		hash ^= castlingKeys[0]
	}
	if board.WQueenCastle != 0 {
		hash ^= castlingKeys[1]
	}
	if board.BKingCastle != 0 {
		hash ^= castlingKeys[2]
	}
	if board.BQueenCastle != 0 {
		hash ^= castlingKeys[3]
	}

	if board.EnPassant {
		hash ^= epFileKeys[int(board.EPCol-chess.FirstCol)]
	}

	return hash
}
