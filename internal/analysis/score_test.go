package analysis

import (
	"testing"

	"github.com/lgbarn/puzzle-extract-go/internal/chess"
)

func TestScoreValue(t *testing.T) {
	tests := []struct {
		name  string
		score Score
		want  int
	}{
		{"positive cp", Cp(123), 123},
		{"negative cp", Cp(-45), -45},
		{"zero", Cp(0), 0},
		{"mate for side to move", MateIn(3), MateValue},
		{"mate in one", MateIn(1), MateValue},
		{"mated", MateIn(-2), -MateValue},
		{"mated now", MateIn(0), -MateValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.score.Value(); got != tt.want {
				t.Errorf("Value() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name   string
		score  Score
		toMove chess.Colour
		pov    chess.Colour
		want   int
	}{
		{"same perspective", Cp(80), chess.White, chess.White, 80},
		{"flipped perspective", Cp(80), chess.Black, chess.White, -80},
		{"black pov", Cp(80), chess.White, chess.Black, -80},
		{"mate flipped", MateIn(2), chess.Black, chess.White, -MateValue},
		{"mated flipped", MateIn(-1), chess.Black, chess.White, MateValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.score, tt.toMove, tt.pov); got != tt.want {
				t.Errorf("Normalize() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPVBestMove(t *testing.T) {
	pv := PV{Score: Cp(10), Moves: []string{"e2e4", "e7e5"}}
	if got := pv.BestMove(); got != "e2e4" {
		t.Errorf("BestMove() = %q, want e2e4", got)
	}

	empty := PV{Score: Cp(10)}
	if got := empty.BestMove(); got != "" {
		t.Errorf("BestMove() on empty PV = %q, want empty", got)
	}
}
