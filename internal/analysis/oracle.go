package analysis

// PV is one engine principal variation: a score and the move sequence that
// realizes it, in coordinate notation ("e2e4"). Scores follow the UCI
// convention of being from the side-to-move perspective.
type PV struct {
	Score Score
	Moves []string
}

// BestMove returns the first move of the variation, or "" if empty.
func (pv PV) BestMove() string {
	if len(pv.Moves) == 0 {
		return ""
	}
	return pv.Moves[0]
}

// Analyser is the engine oracle. Implementations must return variations
// ordered best-first and may return fewer than multiPV lines (e.g. near
// forced mates). An implementation is not safe for concurrent use unless
// documented otherwise; the pipeline gives each worker its own Analyser.
type Analyser interface {
	// Analyse evaluates the position to the given depth, returning up to
	// multiPV principal variations.
	Analyse(fen string, depth, multiPV int) ([]PV, error)
}

// Closer is implemented by analysers that own an engine subprocess.
type Closer interface {
	Close()
}
