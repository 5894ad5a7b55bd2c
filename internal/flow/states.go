// Package flow implements the dialogue flow engine: the per-participant
// conversation state machines for the intake and check-in scripts, the script
// selector, and the turn dispatcher that ties them to storage and messaging.
package flow

import "log/slog"

// IntakeState identifies the last question asked in the intake script.
type IntakeState string

// Intake script states. The script advances strictly forward through this
// sequence, wrapping from action back to none at the terminal step.
const (
	IntakeNone      IntakeState = "none"
	IntakeName      IntakeState = "name"
	IntakeDrug      IntakeState = "drug"
	IntakeConcern   IntakeState = "concern"
	IntakeDifficult IntakeState = "difficult"
	IntakeGoal      IntakeState = "goal"
	IntakeAction    IntakeState = "action"
)

// Valid reports whether the state is part of the intake machine.
func (s IntakeState) Valid() bool {
	switch s {
	case IntakeNone, IntakeName, IntakeDrug, IntakeConcern, IntakeDifficult, IntakeGoal, IntakeAction:
		return true
	default:
		return false
	}
}

// ParseIntakeState maps a persisted state value onto the intake enum. A value
// outside the machine's set fails safe by resetting to the script start.
func ParseIntakeState(raw string) IntakeState {
	s := IntakeState(raw)
	if raw == "" {
		return IntakeNone
	}
	if !s.Valid() {
		slog.Warn("Corrupt intake state, resetting to start", "state", raw)
		return IntakeNone
	}
	return s
}

// CheckinState identifies the last question asked in the check-in script.
type CheckinState string

// Check-in script states. Not strictly linear: feeling branches into the
// crisis sub-flow (phone, call), recap and recap2 branch on yes/no intent,
// and scenario2 rejoins both branches at result.
const (
	CheckinNone              CheckinState = "none"
	CheckinFeeling           CheckinState = "feeling"
	CheckinRecap             CheckinState = "recap"
	CheckinRecap2            CheckinState = "recap2"
	CheckinConcernCorrection CheckinState = "concernCorrection"
	CheckinScenario          CheckinState = "scenario"
	CheckinExplain           CheckinState = "explain"
	CheckinDifferent         CheckinState = "different"
	CheckinScenario2         CheckinState = "scenario2"
	CheckinResult            CheckinState = "result"
	CheckinFinal             CheckinState = "final"
	CheckinPhone             CheckinState = "phone"
	CheckinCall              CheckinState = "call"
)

// Valid reports whether the state is part of the check-in machine.
func (s CheckinState) Valid() bool {
	switch s {
	case CheckinNone, CheckinFeeling, CheckinRecap, CheckinRecap2, CheckinConcernCorrection,
		CheckinScenario, CheckinExplain, CheckinDifferent, CheckinScenario2,
		CheckinResult, CheckinFinal, CheckinPhone, CheckinCall:
		return true
	default:
		return false
	}
}

// ParseCheckinState maps a persisted state value onto the check-in enum with
// the same fail-safe reset as ParseIntakeState.
func ParseCheckinState(raw string) CheckinState {
	s := CheckinState(raw)
	if raw == "" {
		return CheckinNone
	}
	if !s.Valid() {
		slog.Warn("Corrupt check-in state, resetting to start", "state", raw)
		return CheckinNone
	}
	return s
}
