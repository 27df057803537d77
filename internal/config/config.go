// Package config provides configuration for the puzzle extractor.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/lgbarn/puzzle-extract-go/internal/errors"
)

// Default threshold constants, in centipawns unless noted.
const (
	// DefaultBlunderThreshold is the minimum evaluation swing that flags a
	// move as a blunder (1.5 pawns).
	DefaultBlunderThreshold = 150

	// DefaultAltThreshold is the maximum score gap for two moves to count as
	// equivalent solutions (0.25 pawns).
	DefaultAltThreshold = 25

	// DefaultUnicityThreshold is the minimum margin the accepted move cluster
	// must hold over the next-best alternative (1.5 pawns).
	DefaultUnicityThreshold = 150

	// DefaultWinningAdvantage is the evaluation treated as decisive.
	DefaultWinningAdvantage = 150

	// DefaultDrawingRange bounds evaluations treated as roughly equal.
	DefaultDrawingRange = 100

	// DefaultHangingPieceGap is the top-2 gap above which a capture of an
	// undefended piece makes the position a non-puzzle.
	DefaultHangingPieceGap = 400

	// DefaultDepth is the base engine search depth.
	DefaultDepth = 12

	// DefaultMaxVariants is the number of alternative solution moves allowed
	// per solver ply.
	DefaultMaxVariants = 2

	// DefaultMinSolverPlies is the minimum number of solver moves in an
	// accepted puzzle.
	DefaultMinSolverPlies = 2

	// DefaultForcedSkipLimit bounds the forced-move skipping loop.
	DefaultForcedSkipLimit = 5

	// DefaultCaptureScanLimit bounds the pure-capture-sequence scan.
	DefaultCaptureScanLimit = 5
)

// Depths holds the search depths derived from the base depth.
type Depths struct {
	Scan  int // Fast sweep over every ply of a game
	Solve int // Deep analysis while building the solution line
	Quick int // Cheap queries in filters and classification
	Base  int
}

// CalculateDepths derives the scan/solve/quick depths from a base depth,
// clamping each at 1.
func CalculateDepths(base int) Depths {
	if base < 1 {
		base = 1
	}
	// scan = 50%, solve = 150%, quick = 25% of the base depth.
	return Depths{
		Scan:  maxInt(1, base/2),
		Solve: maxInt(1, base*3/2),
		Quick: maxInt(1, base/4),
		Base:  base,
	}
}

// Config holds all extractor settings. The zero value is not usable; start
// from NewConfig.
type Config struct {
	// Engine
	EnginePath string `yaml:"engine"`
	Threads    int    `yaml:"threads"`
	Hash       int    `yaml:"hash"`
	Depth      int    `yaml:"depth"`

	// Detection thresholds
	BlunderThreshold int `yaml:"blunder_threshold"`
	AltThreshold     int `yaml:"alt_threshold"`
	UnicityThreshold int `yaml:"unicity_threshold"`
	WinningAdvantage int `yaml:"winning_advantage"`
	DrawingRange     int `yaml:"drawing_range"`
	HangingPieceGap  int `yaml:"hanging_piece_gap"`

	// Solution construction
	MaxVariants      int `yaml:"max_variants"`
	MinSolverPlies   int `yaml:"min_solver_plies"`
	MaxSolutionPlies int `yaml:"max_solution_plies"`
	ForcedSkipLimit  int `yaml:"forced_skip_limit"`
	CaptureScanLimit int `yaml:"capture_scan_limit"`

	// SkipWonPositions rejects candidates where the solver already held a
	// decisive advantage before the blunder. Off by default; later revisions
	// of the extraction heuristics dropped it.
	SkipWonPositions bool `yaml:"skip_won_positions"`

	// IncludeBlunderObjective keeps puzzles classified with the plain
	// "Blunder" objective in the output.
	IncludeBlunderObjective bool `yaml:"include_blunder_objective"`

	// Pipeline
	Workers   int    `yaml:"workers"`
	OutputDir string `yaml:"output_dir"`
	Resume    bool   `yaml:"resume"`
	JSON      bool   `yaml:"json"`

	// Verbosity: 0 quiet, 1 normal, 2 per-candidate commentary.
	Verbosity int `yaml:"verbosity"`
}

// NewConfig returns a Config populated with defaults.
func NewConfig() *Config {
	return &Config{
		Threads:                 1,
		Hash:                    128,
		Depth:                   DefaultDepth,
		BlunderThreshold:        DefaultBlunderThreshold,
		AltThreshold:            DefaultAltThreshold,
		UnicityThreshold:        DefaultUnicityThreshold,
		WinningAdvantage:        DefaultWinningAdvantage,
		DrawingRange:            DefaultDrawingRange,
		HangingPieceGap:         DefaultHangingPieceGap,
		MaxVariants:             DefaultMaxVariants,
		MinSolverPlies:          DefaultMinSolverPlies,
		MaxSolutionPlies:        24,
		ForcedSkipLimit:         DefaultForcedSkipLimit,
		CaptureScanLimit:        DefaultCaptureScanLimit,
		IncludeBlunderObjective: true,
		Workers:                 1,
		OutputDir:               "puzzles",
		Verbosity:               1,
	}
}

// Depths returns the derived search depths.
func (c *Config) Depths() Depths {
	return CalculateDepths(c.Depth)
}

// Validate checks the configuration for values the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.EnginePath == "" {
		return fmt.Errorf("engine path is required: %w", errors.ErrInvalidConfig)
	}
	if c.Depth < 1 {
		return fmt.Errorf("depth must be >= 1, got %d: %w", c.Depth, errors.ErrInvalidConfig)
	}
	if c.MaxVariants < 0 {
		return fmt.Errorf("max variants must be >= 0, got %d: %w", c.MaxVariants, errors.ErrInvalidConfig)
	}
	if c.MinSolverPlies < 1 {
		return fmt.Errorf("min solver plies must be >= 1, got %d: %w", c.MinSolverPlies, errors.ErrInvalidConfig)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be >= 1, got %d: %w", c.Workers, errors.ErrInvalidConfig)
	}
	if c.BlunderThreshold <= 0 || c.AltThreshold < 0 || c.UnicityThreshold < 0 {
		return fmt.Errorf("thresholds must be positive: %w", errors.ErrInvalidConfig)
	}
	return nil
}

// LoadFile overlays settings from a YAML file onto the config.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "reading config %q", path)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config %q: %v: %w", path, err, errors.ErrInvalidConfig)
	}
	return nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
