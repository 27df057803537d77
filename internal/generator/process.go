package generator

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/lgbarn/puzzle-extract-go/internal/analysis"
	"github.com/lgbarn/puzzle-extract-go/internal/candidates"
	"github.com/lgbarn/puzzle-extract-go/internal/chess"
	"github.com/lgbarn/puzzle-extract-go/internal/config"
	"github.com/lgbarn/puzzle-extract-go/internal/detector"
	"github.com/lgbarn/puzzle-extract-go/internal/engine"
	"github.com/lgbarn/puzzle-extract-go/internal/errors"
	"github.com/lgbarn/puzzle-extract-go/internal/hashing"
	"github.com/lgbarn/puzzle-extract-go/internal/puzzle"
	"github.com/lgbarn/puzzle-extract-go/internal/worker"
)

// processor holds the per-engine pipeline stages. Each worker owns one, so
// no stage is ever shared across goroutines.
type processor struct {
	cfg        *config.Config
	log        *zap.Logger
	detector   *detector.Detector
	filters    *candidates.FilterChain
	builder    *puzzle.Builder
	classifier *puzzle.Classifier
	seen       *hashing.PositionSet
}

func newProcessor(analyser analysis.Analyser, cfg *config.Config, seen *hashing.PositionSet, log *zap.Logger) *processor {
	return &processor{
		cfg:        cfg,
		log:        log,
		detector:   detector.New(analyser, cfg.BlunderThreshold, cfg.Depths().Scan, log),
		filters:    candidates.NewFilterChain(analyser, cfg, log),
		builder:    puzzle.NewBuilder(analyser, cfg, log),
		classifier: puzzle.NewClassifier(analyser, cfg, log),
		seen:       seen,
	}
}

// processGame runs the full pipeline over one game.
func (pr *processor) processGame(game *chess.Game, index int) worker.GameResult {
	result := worker.GameResult{
		Game:       game,
		Index:      index,
		Rejections: make(map[candidates.Reason]int),
	}

	if !validMoves(game) {
		result.Error = errIllegalGame(game)
		return result
	}

	events := pr.detector.Scan(game)
	result.Blunders = len(events)

	for _, ev := range events {
		if pr.seen.CheckAndAdd(ev.PostBoard) {
			pr.log.Debug("duplicate position skipped",
				zap.Uint("move_number", ev.MoveNumber),
				zap.String("move", ev.Move.Text))
			continue
		}

		outcome := pr.filters.Evaluate(ev, game.Tags)
		if !outcome.Accepted() {
			result.Rejections[outcome.Reason()]++
			pr.log.Debug("candidate rejected",
				zap.Uint("move_number", ev.MoveNumber),
				zap.String("reason", outcome.Reason().String()))
			continue
		}

		built, reason := pr.builder.Build(outcome.Candidate())
		if built == nil {
			result.Rejections[reason]++
			pr.log.Debug("solution rejected",
				zap.Uint("move_number", ev.MoveNumber),
				zap.String("reason", reason.String()))
			continue
		}

		pr.classifier.Classify(built)
		if built.Objective == puzzle.ObjectiveBlunder && !pr.cfg.IncludeBlunderObjective {
			result.Rejections[candidates.ReasonAlreadyWon]++
			continue
		}

		pr.log.Info("puzzle extracted",
			zap.String("white", game.White()),
			zap.String("black", game.Black()),
			zap.Uint("move_number", built.MoveNumber),
			zap.String("objective", string(built.Objective)),
			zap.String("phase", string(built.Phase)))
		result.Puzzles = append(result.Puzzles, built)
	}

	return result
}

// errIllegalGame describes a game that failed the legality replay.
func errIllegalGame(game *chess.Game) error {
	return fmt.Errorf("game %s vs %s (line %d): %w",
		game.White(), game.Black(), game.StartLine, errors.ErrIllegalMove)
}

// validMoves replays the game to confirm every move is legal.
func validMoves(game *chess.Game) bool {
	board := engine.NewBoardForGame(game)
	for move := game.Moves; move != nil; move = move.Next {
		if !engine.ApplyMove(board, move) {
			return false
		}
	}
	return true
}
