// Package stats aggregates counters for one extraction run.
package stats

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/lgbarn/puzzle-extract-go/internal/candidates"
	"github.com/lgbarn/puzzle-extract-go/internal/puzzle"
)

// Run collects the counters reported at the end of an extraction.
type Run struct {
	GamesScanned int
	GamesFailed  int
	Blunders     int
	Puzzles      int

	// Interrupted marks a run stopped before all input was consumed. The
	// counters then cover only the completed portion.
	Interrupted bool

	Rejections map[candidates.Reason]int
	Objectives map[puzzle.Objective]int
	Phases     map[puzzle.Phase]int

	started time.Time
}

// NewRun creates an empty counter set and starts the clock.
func NewRun() *Run {
	return &Run{
		Rejections: make(map[candidates.Reason]int),
		Objectives: make(map[puzzle.Objective]int),
		Phases:     make(map[puzzle.Phase]int),
		started:    time.Now(),
	}
}

// AddGame records one scanned game with its blunder count.
func (r *Run) AddGame(blunders int) {
	r.GamesScanned++
	r.Blunders += blunders
}

// AddFailure records a game that could not be processed.
func (r *Run) AddFailure() {
	r.GamesFailed++
}

// AddRejections merges per-reason drop counts.
func (r *Run) AddRejections(counts map[candidates.Reason]int) {
	for reason, n := range counts {
		r.Rejections[reason] += n
	}
}

// AddPuzzle records one accepted puzzle.
func (r *Run) AddPuzzle(p *puzzle.Puzzle) {
	r.Puzzles++
	r.Objectives[p.Objective]++
	r.Phases[p.Phase]++
}

// Elapsed returns the wall time since the run started.
func (r *Run) Elapsed() time.Duration {
	return time.Since(r.started).Round(time.Millisecond)
}

// Write renders the counters as a readable report.
func (r *Run) Write(w io.Writer) {
	if r.Interrupted {
		fmt.Fprintln(w, "Run interrupted; totals cover the completed portion only.")
	}
	fmt.Fprintf(w, "Games scanned:     %d\n", r.GamesScanned)
	if r.GamesFailed > 0 {
		fmt.Fprintf(w, "Games failed:      %d\n", r.GamesFailed)
	}
	fmt.Fprintf(w, "Blunders detected: %d\n", r.Blunders)
	fmt.Fprintf(w, "Puzzles extracted: %d\n", r.Puzzles)

	if len(r.Rejections) > 0 {
		lines := make([]string, 0, len(r.Rejections))
		for reason, n := range r.Rejections {
			lines = append(lines, fmt.Sprintf("%s: %d", reason, n))
		}
		writeSection(w, "Rejections:", lines)
	}
	if len(r.Objectives) > 0 {
		lines := make([]string, 0, len(r.Objectives))
		for objective, n := range r.Objectives {
			lines = append(lines, fmt.Sprintf("%s: %d", objective, n))
		}
		writeSection(w, "Objectives:", lines)
	}
	if len(r.Phases) > 0 {
		lines := make([]string, 0, len(r.Phases))
		for phase, n := range r.Phases {
			lines = append(lines, fmt.Sprintf("%s: %d", phase, n))
		}
		writeSection(w, "Phases:", lines)
	}
	fmt.Fprintf(w, "Elapsed:           %s\n", r.Elapsed())
}

// writeSection prints a header and its count lines sorted for stable output.
func writeSection(w io.Writer, header string, lines []string) {
	fmt.Fprintln(w, header)
	sort.Strings(lines)
	for _, line := range lines {
		fmt.Fprintf(w, "  %s\n", line)
	}
}
