package flow

import "testing"

func TestParseIntakeStateFailSafe(t *testing.T) {
	if got := ParseIntakeState("goal"); got != IntakeGoal {
		t.Errorf("expected %q, got %q", IntakeGoal, got)
	}
	if got := ParseIntakeState(""); got != IntakeNone {
		t.Errorf("empty state should default to %q, got %q", IntakeNone, got)
	}
	if got := ParseIntakeState("garbage-state"); got != IntakeNone {
		t.Errorf("corrupt state should reset to %q, got %q", IntakeNone, got)
	}
}

func TestParseCheckinStateFailSafe(t *testing.T) {
	if got := ParseCheckinState("concernCorrection"); got != CheckinConcernCorrection {
		t.Errorf("expected %q, got %q", CheckinConcernCorrection, got)
	}
	if got := ParseCheckinState("garbage-state"); got != CheckinNone {
		t.Errorf("corrupt state should reset to %q, got %q", CheckinNone, got)
	}
}

func TestModeFor(t *testing.T) {
	if ModeFor(false) != ModeIntake {
		t.Error("unwelcomed participant should run intake")
	}
	if ModeFor(true) != ModeCheckin {
		t.Error("welcomed participant should run check-in")
	}
}
