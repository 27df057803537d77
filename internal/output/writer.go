// Package output renders puzzles as PGN or JSON.
package output

import (
	"bufio"
	"fmt"
	"io"

	"github.com/lgbarn/puzzle-extract-go/internal/puzzle"
)

// PuzzleWriter is the common interface for puzzle output formats.
type PuzzleWriter interface {
	WritePuzzle(p *puzzle.Puzzle) error
	Flush() error
	Close() error
}

// OutputWriter handles formatted output with line length control.
type OutputWriter struct {
	w             io.Writer
	lineLength    int
	maxLineLength int
	needsSpace    bool
}

// NewOutputWriter creates a new output writer.
func NewOutputWriter(w io.Writer, maxLineLength int) *OutputWriter {
	if maxLineLength <= 0 {
		maxLineLength = 80
	}
	return &OutputWriter{
		w:             w,
		maxLineLength: maxLineLength,
	}
}

// Write writes a string, adding a space separator if needed.
func (o *OutputWriter) Write(s string) {
	if o.needsSpace && len(s) > 0 {
		// Check if we need a new line
		if o.lineLength+1+len(s) > o.maxLineLength {
			fmt.Fprintln(o.w)
			o.lineLength = 0
			o.needsSpace = false
		} else {
			fmt.Fprint(o.w, " ")
			o.lineLength++
		}
	}

	fmt.Fprint(o.w, s)
	o.lineLength += len(s)
	o.needsSpace = true
}

// WriteOpen writes an opening token such as "(" and suppresses the space
// before whatever follows it.
func (o *OutputWriter) WriteOpen(s string) {
	o.Write(s)
	o.needsSpace = false
}

// WriteNoSpace writes without adding a leading space.
func (o *OutputWriter) WriteNoSpace(s string) {
	fmt.Fprint(o.w, s)
	o.lineLength += len(s)
	o.needsSpace = true
}

// NewLine starts a new line.
func (o *OutputWriter) NewLine() {
	fmt.Fprintln(o.w)
	o.lineLength = 0
	o.needsSpace = false
}

// PGNWriter writes puzzles as PGN games.
type PGNWriter struct {
	w *bufio.Writer
}

// NewPGNWriter creates a PGN writer over w.
func NewPGNWriter(w io.Writer) *PGNWriter {
	return &PGNWriter{w: bufio.NewWriter(w)}
}

// WritePuzzle renders the puzzle as a standalone PGN game.
func (pw *PGNWriter) WritePuzzle(p *puzzle.Puzzle) error {
	return pw.WriteGame(p.ToGame())
}

// Flush writes any buffered output.
func (pw *PGNWriter) Flush() error {
	return pw.w.Flush()
}

// Close flushes remaining output.
func (pw *PGNWriter) Close() error {
	return pw.Flush()
}
