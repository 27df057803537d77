package output

import (
	"encoding/json"
	"io"
	"os"

	"github.com/lgbarn/puzzle-extract-go/internal/engine"
	"github.com/lgbarn/puzzle-extract-go/internal/errors"
	"github.com/lgbarn/puzzle-extract-go/internal/puzzle"
)

// JSONPuzzle is the JSON representation of one puzzle.
type JSONPuzzle struct {
	Event      string   `json:"event,omitempty"`
	Site       string   `json:"site,omitempty"`
	Date       string   `json:"date,omitempty"`
	White      string   `json:"white,omitempty"`
	Black      string   `json:"black,omitempty"`
	FEN        string   `json:"fen"`
	Objective  string   `json:"objective"`
	Phase      string   `json:"phase"`
	MoveNumber uint     `json:"move_number"`
	Solver     string   `json:"solver"`
	Blunder    string   `json:"blunder"`
	Solution   []string `json:"solution"`

	// Alternatives maps a 0-based solution ply index to the equally good
	// moves at that ply.
	Alternatives map[int][]string `json:"alternatives,omitempty"`
}

// JSONWriter collects puzzles and writes them as a single JSON array.
type JSONWriter struct {
	w       io.Writer
	puzzles []JSONPuzzle
	closed  bool
}

// NewJSONWriter creates a JSON writer over w.
func NewJSONWriter(w io.Writer) *JSONWriter {
	return &JSONWriter{w: w}
}

// Seed preloads puzzles from an earlier run so Close re-emits them ahead
// of the current run's, keeping resumed JSON output whole.
func (jw *JSONWriter) Seed(puzzles []JSONPuzzle) {
	jw.puzzles = append(jw.puzzles, puzzles...)
}

// LoadJSONPuzzles reads back an array written by a JSONWriter. A missing
// file yields no puzzles and no error.
func LoadJSONPuzzles(path string) ([]JSONPuzzle, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "reading %q", path)
	}

	var puzzles []JSONPuzzle
	if err := json.Unmarshal(data, &puzzles); err != nil {
		return nil, errors.Wrapf(err, "parsing %q", path)
	}
	return puzzles, nil
}

// WritePuzzle queues the puzzle for output.
func (jw *JSONWriter) WritePuzzle(p *puzzle.Puzzle) error {
	jw.puzzles = append(jw.puzzles, toJSONPuzzle(p))
	return nil
}

// Flush is a no-op until Close, which writes the whole array.
func (jw *JSONWriter) Flush() error {
	return nil
}

// Close writes all collected puzzles.
func (jw *JSONWriter) Close() error {
	if jw.closed {
		return nil
	}
	jw.closed = true

	enc := json.NewEncoder(jw.w)
	enc.SetIndent("", "  ")
	return enc.Encode(jw.puzzles)
}

// toJSONPuzzle flattens the puzzle into its JSON form. The solution list
// starts with the blunder move, matching the PGN rendering.
func toJSONPuzzle(p *puzzle.Puzzle) JSONPuzzle {
	jp := JSONPuzzle{
		Event:      p.Headers["Event"],
		Site:       p.Headers["Site"],
		Date:       p.Headers["Date"],
		White:      p.Headers["White"],
		Black:      p.Headers["Black"],
		FEN:        engine.BoardToFEN(p.InitialBoard),
		Objective:  string(p.Objective),
		Phase:      string(p.Phase),
		MoveNumber: p.MoveNumber,
		Solver:     p.SolverColour.String(),
		Blunder:    p.BlunderMove.Text,
		Solution:   p.SolutionSAN(),
	}

	ply := 1 + len(p.Forced)
	for node := p.Solution; node != nil; node = node.Next {
		if len(node.Alternatives) > 0 {
			if jp.Alternatives == nil {
				jp.Alternatives = make(map[int][]string)
			}
			for _, alt := range node.Alternatives {
				jp.Alternatives[ply] = append(jp.Alternatives[ply], alt.Text)
			}
		}
		ply++
	}
	return jp
}
