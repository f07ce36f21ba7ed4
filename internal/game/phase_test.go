package game

import "testing"

func TestPhaseString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		phase Phase
		want  string
	}{
		{PhaseCreated, "created"},
		{PhaseWaiting, "waiting"},
		{PhaseInProgress, "in_progress"},
		{PhaseRevealing, "revealing"},
		{PhaseCompleted, "completed"},
		{PhaseCanceled, "canceled"},
	}

	for _, tt := range tests {
		if got := tt.phase.String(); got != tt.want {
			t.Errorf("Phase(%d).String() = %q, expected %q", int(tt.phase), got, tt.want)
		}
	}
}

func TestPhaseTerminal(t *testing.T) {
	t.Parallel()

	for _, p := range []Phase{PhaseCreated, PhaseWaiting, PhaseInProgress, PhaseRevealing} {
		if p.Terminal() {
			t.Errorf("Phase %s should not be terminal", p)
		}
	}
	for _, p := range []Phase{PhaseCompleted, PhaseCanceled} {
		if !p.Terminal() {
			t.Errorf("Phase %s should be terminal", p)
		}
	}
}

func TestPhaseJoinable(t *testing.T) {
	t.Parallel()

	for _, p := range []Phase{PhaseCreated, PhaseWaiting} {
		if !p.Joinable() {
			t.Errorf("Phase %s should be joinable", p)
		}
	}
	for _, p := range []Phase{PhaseInProgress, PhaseRevealing, PhaseCompleted, PhaseCanceled} {
		if p.Joinable() {
			t.Errorf("Phase %s should not be joinable", p)
		}
	}
}
