package candidates

import (
	"testing"

	"github.com/lgbarn/puzzle-extract-go/internal/testutil"
)

func TestOutcomeStates(t *testing.T) {
	accepted := Accept(&Candidate{})
	testutil.AssertTrue(t, accepted.Accepted(), "accepted outcome")
	testutil.AssertNotNil(t, accepted.Candidate(), "accepted candidate")
	testutil.AssertEqual(t, accepted.Reason(), ReasonNone, "accepted reason")

	rejected := Reject(ReasonHangingPiece)
	testutil.AssertFalse(t, rejected.Accepted(), "rejected outcome")
	testutil.AssertNil(t, rejected.Candidate(), "rejected candidate")
	testutil.AssertEqual(t, rejected.Reason(), ReasonHangingPiece, "rejected reason")
}

func TestReasonString(t *testing.T) {
	tests := []struct {
		reason Reason
		want   string
	}{
		{ReasonNone, ""},
		{ReasonForcedSequence, "sequência forçada"},
		{ReasonHangingPiece, "peça solta"},
		{ReasonOnlyCaptures, "apenas capturas"},
		{ReasonAmbiguous, "múltiplas soluções"},
		{ReasonTooShort, "sequência muito curta"},
		{ReasonAlreadyWon, "ganho não instrutivo"},
		{ReasonEngineFailure, "falha de análise"},
		{Reason(99), "desconhecido"},
	}

	for _, tt := range tests {
		if got := tt.reason.String(); got != tt.want {
			t.Errorf("Reason(%d).String() = %q, want %q", tt.reason, got, tt.want)
		}
	}
}
