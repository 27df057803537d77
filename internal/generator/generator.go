// Package generator drives the extraction pipeline: parse games, detect
// blunders, filter candidates, build and classify puzzles, write output.
package generator

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/lgbarn/puzzle-extract-go/internal/analysis"
	"github.com/lgbarn/puzzle-extract-go/internal/chess"
	"github.com/lgbarn/puzzle-extract-go/internal/config"
	"github.com/lgbarn/puzzle-extract-go/internal/errors"
	"github.com/lgbarn/puzzle-extract-go/internal/hashing"
	"github.com/lgbarn/puzzle-extract-go/internal/output"
	"github.com/lgbarn/puzzle-extract-go/internal/parser"
	"github.com/lgbarn/puzzle-extract-go/internal/resume"
	"github.com/lgbarn/puzzle-extract-go/internal/stats"
	"github.com/lgbarn/puzzle-extract-go/internal/worker"
)

// AnalyserFactory creates one analyser connection. The generator calls it
// once per worker so engine processes are never shared across goroutines.
type AnalyserFactory func() (analysis.Analyser, error)

// Generator runs the extraction pipeline over PGN inputs.
type Generator struct {
	cfg         *config.Config
	log         *zap.Logger
	newAnalyser AnalyserFactory
	seen        *hashing.PositionSet
}

// New creates a Generator. The factory is required; the logger may be nil.
func New(cfg *config.Config, factory AnalyserFactory, log *zap.Logger) *Generator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Generator{
		cfg:         cfg,
		log:         log,
		newAnalyser: factory,
		seen:        hashing.NewPositionSet(),
	}
}

// Run processes every input file and returns the aggregated counters.
// Cancellation via ctx stops between games; partial output and checkpoints
// are left on disk.
func (g *Generator) Run(ctx context.Context, inputs []string) (*stats.Run, error) {
	run := stats.NewRun()

	if err := os.MkdirAll(g.cfg.OutputDir, 0o755); err != nil {
		return run, errors.Wrapf(err, "creating output dir %q", g.cfg.OutputDir)
	}

	for _, input := range inputs {
		if err := ctx.Err(); err != nil {
			run.Interrupted = true
			return run, err
		}
		if err := g.runFile(ctx, input, run); err != nil {
			if ctx.Err() != nil {
				run.Interrupted = true
			}
			return run, err
		}
	}
	return run, nil
}

// runFile extracts puzzles from a single PGN file.
func (g *Generator) runFile(ctx context.Context, input string, run *stats.Run) error {
	games, err := g.parseInput(input)
	if err != nil {
		return err
	}
	g.log.Info("input parsed",
		zap.String("input", input),
		zap.Int("games", len(games)))

	statePath := resume.StatePath(g.cfg.OutputDir, input)
	state := resume.State{Input: input}
	if g.cfg.Resume {
		state, err = resume.Load(statePath, input)
		if err != nil {
			return err
		}
		if state.GamesDone > 0 {
			g.log.Info("resuming",
				zap.String("input", input),
				zap.Int("games_done", state.GamesDone))
		}
		g.seen.Restore(state.SeenPositions)
	}

	writer, closeOut, err := g.openOutput(input, state.GamesDone > 0)
	if err != nil {
		return err
	}
	defer closeOut()

	if g.cfg.Workers > 1 {
		err = g.runParallel(ctx, games, state, statePath, writer, run)
	} else {
		err = g.runSequential(ctx, games, state, statePath, writer, run)
	}
	if err != nil {
		return err
	}

	if g.cfg.Resume {
		return resume.Clear(statePath)
	}
	return nil
}

// parseInput reads all games from a PGN file.
func (g *Generator) parseInput(input string) ([]*chess.Game, error) {
	f, err := os.Open(input)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %q", input)
	}
	defer f.Close()

	p := parser.NewParser(f, g.log)
	games, err := p.ParseAllGames()
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %q", input)
	}
	return games, nil
}

// openOutput creates the puzzle writer for an input file. Resumed runs
// append to the existing output.
func (g *Generator) openOutput(input string, appendMode bool) (output.PuzzleWriter, func(), error) {
	base := filepath.Base(input)
	base = strings.TrimSuffix(base, filepath.Ext(base))

	ext := ".pgn"
	if g.cfg.JSON {
		ext = ".json"
	}
	path := filepath.Join(g.cfg.OutputDir, base+"_puzzles"+ext)

	// JSON output is rewritten whole, so a resumed run reads the earlier
	// puzzles back before truncating.
	var earlier []output.JSONPuzzle
	if appendMode && g.cfg.JSON {
		var err error
		earlier, err = output.LoadJSONPuzzles(path)
		if err != nil {
			return nil, nil, err
		}
	}

	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if appendMode && !g.cfg.JSON {
		flags = os.O_CREATE | os.O_WRONLY | os.O_APPEND
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "opening output %q", path)
	}

	var w output.PuzzleWriter
	if g.cfg.JSON {
		jw := output.NewJSONWriter(f)
		jw.Seed(earlier)
		w = jw
	} else {
		w = output.NewPGNWriter(f)
	}

	closeOut := func() {
		if err := w.Close(); err != nil {
			g.log.Warn("closing output", zap.String("path", path), zap.Error(err))
		}
		f.Close()
	}
	return w, closeOut, nil
}

// runSequential processes games one at a time on a single engine.
func (g *Generator) runSequential(ctx context.Context, games []*chess.Game, state resume.State, statePath string, w output.PuzzleWriter, run *stats.Run) error {
	analyser, err := g.newAnalyser()
	if err != nil {
		return err
	}
	defer closeAnalyser(analyser)

	proc := newProcessor(analyser, g.cfg, g.seen, g.log)

	for i := state.GamesDone; i < len(games); i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		result := proc.processGame(games[i], i)
		if err := g.recordResult(result, w, run); err != nil {
			return err
		}

		state.GamesDone = i + 1
		state.PuzzlesFound += len(result.Puzzles)
		if g.cfg.Resume {
			state.SeenPositions = g.seen.Hashes()
			if err := resume.Save(statePath, state); err != nil {
				return err
			}
		}
	}
	return nil
}

// runParallel fans games out to a worker pool, one engine per worker. The
// checkpoint only advances over the contiguous prefix of finished games so
// a resumed run never skips work.
func (g *Generator) runParallel(ctx context.Context, games []*chess.Game, state resume.State, statePath string, w output.PuzzleWriter, run *stats.Run) error {
	analysers := make([]analysis.Analyser, 0, g.cfg.Workers)
	defer func() {
		for _, a := range analysers {
			closeAnalyser(a)
		}
	}()

	pool := make(chan *processor, g.cfg.Workers)
	for i := 0; i < g.cfg.Workers; i++ {
		analyser, err := g.newAnalyser()
		if err != nil {
			return err
		}
		analysers = append(analysers, analyser)
		pool <- newProcessor(analyser, g.cfg, g.seen, g.log)
	}

	wp := worker.NewPool(func(item worker.WorkItem) worker.GameResult {
		proc := <-pool
		defer func() { pool <- proc }()
		return proc.processGame(item.Game, item.Index)
	}, worker.WithWorkers(g.cfg.Workers), worker.WithBufferSize(g.cfg.Workers*2))
	wp.Start()

	go func() {
		defer wp.Close()
		for i := state.GamesDone; i < len(games); i++ {
			if ctx.Err() != nil {
				wp.Stop()
				return
			}
			wp.Submit(worker.WorkItem{Game: games[i], Index: i})
		}
	}()

	finished := make(map[int]bool)
	var firstErr error
	for result := range wp.Results() {
		if err := g.recordResult(result, w, run); err != nil && firstErr == nil {
			firstErr = err
			wp.Stop()
			continue
		}

		state.PuzzlesFound += len(result.Puzzles)
		finished[result.Index] = true
		for finished[state.GamesDone] {
			delete(finished, state.GamesDone)
			state.GamesDone++
		}
		if g.cfg.Resume {
			state.SeenPositions = g.seen.Hashes()
			if err := resume.Save(statePath, state); err != nil && firstErr == nil {
				firstErr = err
				wp.Stop()
			}
		}
	}

	if firstErr != nil {
		return firstErr
	}
	return ctx.Err()
}

// recordResult merges one game's outcome into the run and writes its puzzles.
func (g *Generator) recordResult(result worker.GameResult, w output.PuzzleWriter, run *stats.Run) error {
	if result.Error != nil {
		g.log.Warn("game analysis failed",
			zap.Int("index", result.Index),
			zap.Error(result.Error))
		run.AddFailure()
		return nil
	}

	run.AddGame(result.Blunders)
	run.AddRejections(result.Rejections)
	for _, p := range result.Puzzles {
		run.AddPuzzle(p)
		if err := w.WritePuzzle(p); err != nil {
			return errors.Wrap(err, "writing puzzle")
		}
	}
	return w.Flush()
}

func closeAnalyser(a analysis.Analyser) {
	if closer, ok := a.(analysis.Closer); ok {
		closer.Close()
	}
}
