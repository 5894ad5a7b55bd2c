// Package models defines the core data structures for Arie.
//
// It includes types for inbound conversational events, outbound messages, and
// the per-user records shared across modules.
package models

import "errors"

// EventType identifies the kind of inbound conversational event.
type EventType string

const (
	// EventTypeMessage is a plain text message from a participant.
	EventTypeMessage EventType = "message"
	// EventTypeMembershipChanged signals participants joining the conversation.
	EventTypeMembershipChanged EventType = "membership-changed"
)

// Validation constants for input validation
const (
	// MaxMessageBodyLength defines the maximum allowed length for inbound message text
	MaxMessageBodyLength = 4096
)

// Error variables for better error handling and testability
var (
	ErrEmptyParticipant = errors.New("participant id cannot be empty")
	ErrEmptyEventType   = errors.New("event type cannot be empty")
	ErrBodyTooLong      = errors.New("message body exceeds maximum length")
	// ErrVersionConflict indicates a stale optimistic-concurrency save.
	ErrVersionConflict = errors.New("record version conflict")
)

// Event represents one inbound conversational event received from the transport.
type Event struct {
	Type EventType `json:"type"`
	// From identifies the participant the event originated from.
	From string `json:"from"`
	// Text carries the message body for message events.
	Text string `json:"text,omitempty"`
	// MembersAdded lists participant identities for membership-changed events.
	MembersAdded []string `json:"members_added,omitempty"`
	// BotID is the bot's own identity, used to skip self when greeting.
	BotID string `json:"bot_id,omitempty"`
	Time int64   `json:"time,omitempty"`
}

// Validate performs basic validation on an inbound event.
func (e *Event) Validate() error {
	if e.Type == "" {
		return ErrEmptyEventType
	}
	if e.From == "" && len(e.MembersAdded) == 0 {
		return ErrEmptyParticipant
	}
	if len(e.Text) > MaxMessageBodyLength {
		return ErrBodyTooLong
	}
	return nil
}

// Message represents one outbound message produced by a turn. SuggestedReplies
// carries quick-reply options when the next expected answer is yes/no or a
// fixed category set.
type Message struct {
	To               string   `json:"to,omitempty"`
	Body             string   `json:"body"`
	SuggestedReplies []string `json:"suggested_replies,omitempty"`
}

// APIStatus defines standard status values for API responses.
type APIStatus string

const (
	// APIStatusOK indicates an API request completed successfully.
	APIStatusOK APIStatus = "ok"
	// APIStatusError indicates an API request failed with an error.
	APIStatusError APIStatus = "error"
)

// APIResponse represents a standard API response with a status and optional data.
type APIResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Result  interface{} `json:"result,omitempty"`
}
