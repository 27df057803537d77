package testutil

import (
	"fmt"
	"strings"
	"sync"

	"github.com/lgbarn/puzzle-extract-go/internal/analysis"
)

// ScriptedAnalyser replays canned engine output for tests. Responses are
// keyed by FEN prefix, so tests may script against the full FEN or just the
// piece-placement and side-to-move fields. When several keys match, the
// longest one wins. Positions with no scripted response fall back to Default,
// or to an error when Default is nil.
type ScriptedAnalyser struct {
	Responses map[string][]analysis.PV
	Default   []analysis.PV
	Err       error

	mu    sync.Mutex
	calls []string
}

// Analyse implements analysis.Analyser.
func (a *ScriptedAnalyser) Analyse(fen string, depth, multiPV int) ([]analysis.PV, error) {
	a.mu.Lock()
	a.calls = append(a.calls, fen)
	a.mu.Unlock()

	if a.Err != nil {
		return nil, a.Err
	}

	best := ""
	for key := range a.Responses {
		if strings.HasPrefix(fen, key) && len(key) > len(best) {
			best = key
		}
	}
	if best != "" {
		return clip(a.Responses[best], multiPV), nil
	}
	if a.Default != nil {
		return clip(a.Default, multiPV), nil
	}
	return nil, fmt.Errorf("no scripted response for %q", fen)
}

// Calls returns the FENs analysed so far, in order.
func (a *ScriptedAnalyser) Calls() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.calls...)
}

func clip(pvs []analysis.PV, multiPV int) []analysis.PV {
	if multiPV > 0 && len(pvs) > multiPV {
		return pvs[:multiPV]
	}
	return pvs
}

// CpPV builds a principal variation with a centipawn score.
func CpPV(cp int, moves ...string) analysis.PV {
	return analysis.PV{Score: analysis.Cp(cp), Moves: moves}
}

// MatePV builds a principal variation with a mate score.
func MatePV(in int, moves ...string) analysis.PV {
	return analysis.PV{Score: analysis.MateIn(in), Moves: moves}
}
