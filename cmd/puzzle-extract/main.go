// puzzle-extract finds tactical puzzles in PGN game collections using a UCI
// engine for analysis.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/lgbarn/puzzle-extract-go/internal/analysis"
	"github.com/lgbarn/puzzle-extract-go/internal/config"
	"github.com/lgbarn/puzzle-extract-go/internal/generator"
)

var (
	cfg        = config.NewConfig()
	configFile string
	verbose    bool
	quiet      bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "puzzle-extract [pgn-file...]",
	Short: "Extract tactical puzzles from chess games",
	Long: `puzzle-extract scans PGN games with a UCI engine, finds the moves that
threw the game away and turns each one into a training puzzle: the position
before the blunder, the blunder itself and a verified refutation line.

Puzzles are filtered to be instructive (no bare recaptures, no forced
shuffles, a clearly best solution) and tagged with an objective and a game
phase.`,
	Args: cobra.MinimumNArgs(1),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zapCfg := zap.NewProductionConfig()
		zapCfg.Encoding = "console"
		zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		if quiet {
			zapCfg.Level = zap.NewAtomicLevelAt(zapcore.ErrorLevel)
		}
		if verbose {
			zapCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zapCfg.Build()
		if err != nil {
			return fmt.Errorf("initializing logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: run,

	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	flags := rootCmd.Flags()
	flags.StringVarP(&cfg.EnginePath, "engine", "e", cfg.EnginePath, "path to the UCI engine binary (required)")
	flags.IntVarP(&cfg.Depth, "depth", "d", cfg.Depth, "base analysis depth")
	flags.IntVar(&cfg.Threads, "threads", cfg.Threads, "engine threads per worker")
	flags.IntVar(&cfg.Hash, "hash", cfg.Hash, "engine hash table size in MB")
	flags.IntVarP(&cfg.Workers, "workers", "w", cfg.Workers, "parallel workers, one engine each")
	flags.StringVarP(&cfg.OutputDir, "output", "o", cfg.OutputDir, "output directory")
	flags.BoolVar(&cfg.JSON, "json", cfg.JSON, "write puzzles as JSON instead of PGN")
	flags.BoolVar(&cfg.Resume, "resume", cfg.Resume, "resume an interrupted run from its checkpoint")
	flags.IntVar(&cfg.BlunderThreshold, "blunder-threshold", cfg.BlunderThreshold, "centipawn swing that counts as a blunder")
	flags.IntVar(&cfg.MaxVariants, "max-variants", cfg.MaxVariants, "alternative solutions allowed per ply")
	flags.IntVar(&cfg.MinSolverPlies, "min-solver-plies", cfg.MinSolverPlies, "minimum solver moves in a solution")
	flags.BoolVar(&cfg.SkipWonPositions, "skip-won", cfg.SkipWonPositions, "drop blunders where the solver was already winning")
	flags.BoolVar(&cfg.IncludeBlunderObjective, "include-blunder-objective", cfg.IncludeBlunderObjective, "keep puzzles that only extend an existing advantage")
	flags.StringVarP(&configFile, "config", "c", "", "YAML config file")

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "errors only")
}

func run(cmd *cobra.Command, args []string) error {
	if configFile != "" {
		// Flags win over the file: load the file into a fresh config, then
		// re-apply any flag the user set explicitly.
		fileCfg := config.NewConfig()
		if err := fileCfg.LoadFile(configFile); err != nil {
			return err
		}
		merged := *fileCfg
		applyChangedFlags(cmd, &merged)
		*cfg = merged
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	factory := func() (analysis.Analyser, error) {
		return analysis.NewUCIAnalyser(analysis.EngineConfig{
			Path:     cfg.EnginePath,
			Threads:  cfg.Threads,
			Hash:     cfg.Hash,
			MaxLines: cfg.MaxVariants + 2,
		})
	}

	gen := generator.New(cfg, factory, logger)
	summary, err := gen.Run(ctx, args)

	// Print what was accomplished even on interrupt.
	summary.Write(os.Stdout)

	return err
}

// applyChangedFlags copies explicitly set flag values over the file config.
func applyChangedFlags(cmd *cobra.Command, dst *config.Config) {
	src := cfg
	set := map[string]func(){
		"engine":                    func() { dst.EnginePath = src.EnginePath },
		"depth":                     func() { dst.Depth = src.Depth },
		"threads":                   func() { dst.Threads = src.Threads },
		"hash":                      func() { dst.Hash = src.Hash },
		"workers":                   func() { dst.Workers = src.Workers },
		"output":                    func() { dst.OutputDir = src.OutputDir },
		"json":                      func() { dst.JSON = src.JSON },
		"resume":                    func() { dst.Resume = src.Resume },
		"blunder-threshold":         func() { dst.BlunderThreshold = src.BlunderThreshold },
		"max-variants":              func() { dst.MaxVariants = src.MaxVariants },
		"min-solver-plies":          func() { dst.MinSolverPlies = src.MinSolverPlies },
		"skip-won":                  func() { dst.SkipWonPositions = src.SkipWonPositions },
		"include-blunder-objective": func() { dst.IncludeBlunderObjective = src.IncludeBlunderObjective },
	}
	for name, apply := range set {
		if cmd.Flags().Changed(name) {
			apply()
		}
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
