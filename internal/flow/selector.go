// Package flow provides the script selector choosing which interview governs
// a turn.
package flow

import "github.com/arielabs/arie/internal/models"

// ConversationMode identifies which script governs the current turn.
type ConversationMode string

const (
	// ModeIntake runs the first-session profile interview.
	ModeIntake ConversationMode = "intake"
	// ModeCheckin runs the recurring follow-up interview.
	ModeCheckin ConversationMode = "checkin"
)

// ModeFor derives the conversation mode from the participant's welcomed flag.
// It is computed once per turn and passed through rather than re-read.
func ModeFor(welcomed bool) ConversationMode {
	if welcomed {
		return ModeCheckin
	}
	return ModeIntake
}

// FlowType maps the mode onto its persisted flow state record type.
func (m ConversationMode) FlowType() models.FlowType {
	if m == ModeCheckin {
		return models.FlowTypeCheckin
	}
	return models.FlowTypeIntake
}
