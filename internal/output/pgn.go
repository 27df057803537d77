package output

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/lgbarn/puzzle-extract-go/internal/chess"
	"github.com/lgbarn/puzzle-extract-go/internal/engine"
)

// WriteGame outputs a complete game: tag section, blank line, movetext and a
// trailing blank line as game separator.
func (pw *PGNWriter) WriteGame(game *chess.Game) error {
	writeTags(game, pw.w)
	fmt.Fprintln(pw.w)
	writeMovetext(game, pw.w)
	fmt.Fprintln(pw.w)
	return nil
}

// writeTags outputs the seven-tag roster in standard order, then the
// remaining tags sorted by name.
func writeTags(game *chess.Game, w io.Writer) {
	for _, tag := range chess.SevenTagRoster {
		value := game.GetTag(tag)
		if value == "" {
			value = "?"
		}
		fmt.Fprintf(w, "[%s \"%s\"]\n", tag, escapeTagValue(value))
	}

	extra := make([]string, 0, len(game.Tags))
	for tag := range game.Tags {
		if !chess.IsSevenTagRosterTag(tag) {
			extra = append(extra, tag)
		}
	}
	sort.Strings(extra)
	for _, tag := range extra {
		fmt.Fprintf(w, "[%s \"%s\"]\n", tag, escapeTagValue(game.Tags[tag]))
	}
}

// escapeTagValue escapes special characters in tag values.
func escapeTagValue(s string) string {
	// Fast path: if no escaping needed, return original string
	if !strings.ContainsAny(s, "\\\"") {
		return s
	}
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	return s
}

// writeMovetext outputs the moves with numbers, NAGs and variations. The
// starting move number and side come from the FEN tag when present.
func writeMovetext(game *chess.Game, w io.Writer) {
	ow := NewOutputWriter(w, 80)

	moveNum, isWhite := startingPoint(game)
	writeMoveList(game.Moves, moveNum, isWhite, true, ow)

	ow.Write(gameResult(game))
	ow.NewLine()
}

// startingPoint determines the first move number and side to move.
func startingPoint(game *chess.Game) (uint, bool) {
	if fen := game.FEN(); fen != "" {
		if board, err := engine.NewBoardFromFEN(fen); err == nil {
			return board.MoveNumber, board.ToMove == chess.White
		}
	}
	return 1, true
}

// writeMoveList outputs one move chain. Black's first move gets the "N..."
// prefix when it opens the list.
func writeMoveList(moves *chess.Move, moveNum uint, isWhite, first bool, ow *OutputWriter) {
	for move := moves; move != nil; move = move.Next {
		if isWhite {
			ow.Write(fmt.Sprintf("%d.", moveNum))
		} else if first {
			ow.Write(fmt.Sprintf("%d...", moveNum))
		}
		first = false

		ow.Write(move.Text)

		for _, nag := range move.NAGs {
			for _, text := range nag.Text {
				ow.Write(text)
			}
		}

		for _, comment := range move.Comments {
			if comment.Text != "" {
				ow.Write("{" + comment.Text + "}")
			}
		}

		for _, variation := range move.Variations {
			ow.WriteOpen("(")
			writeMoveList(variation.Moves, moveNum, isWhite, true, ow)
			ow.WriteNoSpace(")")
		}

		if !isWhite {
			moveNum++
		}
		isWhite = !isWhite
	}
}

// gameResult returns the result of a game, checking terminating result first.
func gameResult(game *chess.Game) string {
	if lastMove := game.LastMove(); lastMove != nil && lastMove.TerminatingResult != "" {
		return lastMove.TerminatingResult
	}
	if result := game.Result(); result != "" {
		return result
	}
	return "*"
}
