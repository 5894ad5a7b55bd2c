package models

import "time"

// UserProfile is the accumulating per-user record of collected answers, shared
// across the intake and check-in scripts. Fields are populated progressively;
// an empty string means "not yet collected".
type UserProfile struct {
	Name      string `json:"name,omitempty"`
	Drug      string `json:"drug,omitempty"` // normalized lowercase category
	Concern   string `json:"concern,omitempty"`
	Difficult string `json:"difficult,omitempty"`
	Goal      string `json:"goal,omitempty"`
	Action    string `json:"action,omitempty"`
	Number    string `json:"number,omitempty"`
	Friend    string `json:"friend,omitempty"`
}

// IsEmpty reports whether no field has been collected yet.
func (p UserProfile) IsEmpty() bool {
	return p == UserProfile{}
}

// ProfileRecord wraps a UserProfile with persistence metadata. Version backs
// optimistic concurrency: saves must present the version they read.
type ProfileRecord struct {
	ParticipantID string      `json:"participant_id"`
	Profile       UserProfile `json:"profile"`
	Version       int64       `json:"version"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// Participant is the per-user record. Welcomed gates which script governs the
// conversation: false selects intake, true selects check-in.
type Participant struct {
	ID        string    `json:"id"`
	Welcomed  bool      `json:"welcomed"`
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
