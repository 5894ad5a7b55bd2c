// Package models defines state management structures for Arie flows.
package models

import "time"

// FlowType identifies which script a flow state record belongs to.
type FlowType string

const (
	// FlowTypeIntake is the first-session profile interview.
	FlowTypeIntake FlowType = "intake"
	// FlowTypeCheckin is the recurring follow-up interview.
	FlowTypeCheckin FlowType = "checkin"
)

// FlowState is the persisted cursor for one participant in one script. The
// CurrentState value is the last question asked; each flow package owns the
// enum of valid values and fail-safe parsing.
type FlowState struct {
	ParticipantID string    `json:"participant_id"`
	FlowType      FlowType  `json:"flow_type"`
	CurrentState  string    `json:"current_state"`
	Version       int64     `json:"version"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
