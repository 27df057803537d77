package analysis

import (
	"fmt"

	"github.com/freeeve/uci"

	"github.com/lgbarn/puzzle-extract-go/internal/errors"
)

// EngineConfig holds the knobs passed to the UCI engine subprocess.
type EngineConfig struct {
	Path     string // Path to the engine binary (e.g. stockfish)
	Threads  int    // Engine worker threads
	Hash     int    // Hash table size in MB
	MaxLines int    // Maximum MultiPV lines any caller will request
}

// UCIAnalyser is an Analyser backed by a UCI engine subprocess. It owns the
// subprocess exclusively: construct one per pipeline worker and release it
// with Close. Not safe for concurrent use.
type UCIAnalyser struct {
	eng      *uci.Engine
	maxLines int
}

// NewUCIAnalyser starts the engine subprocess and configures it. MultiPV is
// fixed at cfg.MaxLines; Analyse truncates results to what each caller asks
// for.
func NewUCIAnalyser(cfg EngineConfig) (*UCIAnalyser, error) {
	eng, err := uci.NewEngine(cfg.Path)
	if err != nil {
		return nil, errors.Wrapf(err, "starting engine %q", cfg.Path)
	}

	maxLines := cfg.MaxLines
	if maxLines < 1 {
		maxLines = 1
	}

	err = eng.SetOptions(uci.Options{
		MultiPV: maxLines,
		Hash:    cfg.Hash,
		Threads: cfg.Threads,
		Ponder:  false,
		OwnBook: false,
	})
	if err != nil {
		eng.Close()
		return nil, errors.Wrap(err, "configuring engine")
	}

	return &UCIAnalyser{eng: eng, maxLines: maxLines}, nil
}

// Analyse evaluates the position, retrying once at half depth if the engine
// errors. If the retry also fails the error wraps ErrEngineUnavailable.
func (a *UCIAnalyser) Analyse(fen string, depth, multiPV int) ([]PV, error) {
	pvs, err := a.analyseOnce(fen, depth, multiPV)
	if err == nil {
		return pvs, nil
	}

	retryDepth := depth / 2
	if retryDepth < 1 {
		retryDepth = 1
	}
	pvs, retryErr := a.analyseOnce(fen, retryDepth, multiPV)
	if retryErr == nil {
		return pvs, nil
	}

	return nil, &errors.AnalysisError{
		Err:   fmt.Errorf("%v (retry at depth %d: %v): %w", err, retryDepth, retryErr, errors.ErrEngineUnavailable),
		FEN:   fen,
		Depth: depth,
	}
}

// analyseOnce runs a single engine query.
func (a *UCIAnalyser) analyseOnce(fen string, depth, multiPV int) ([]PV, error) {
	if err := a.eng.SetFEN(fen); err != nil {
		return nil, err
	}

	results, err := a.eng.GoDepth(depth, uci.HighestDepthOnly)
	if err != nil {
		return nil, err
	}
	if results == nil || len(results.Results) == 0 {
		return nil, errors.ErrNoAnalysis
	}

	if multiPV < 1 {
		multiPV = 1
	}
	if multiPV > a.maxLines {
		multiPV = a.maxLines
	}

	pvs := make([]PV, 0, multiPV)
	for _, r := range results.Results {
		if len(pvs) == multiPV {
			break
		}
		score := Cp(r.Score)
		if r.Mate {
			score = MateIn(r.Score)
		}
		pvs = append(pvs, PV{Score: score, Moves: r.BestMoves})
	}
	return pvs, nil
}

// Close shuts the engine subprocess down.
func (a *UCIAnalyser) Close() {
	a.eng.Close()
}
