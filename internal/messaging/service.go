// Package messaging provides the message delivery abstraction and the event
// handler feeding inbound turns to the dialogue flow.
package messaging

import (
	"context"
	"regexp"
)

// phoneNumberRegex strips everything but digits during canonicalization.
var phoneNumberRegex = regexp.MustCompile(`[^0-9]`)

// Service defines a pluggable message delivery abstraction.
type Service interface {
	// ValidateAndCanonicalizeRecipient validates and canonicalizes a recipient
	// identifier. Returns the canonicalized recipient and an error if
	// validation fails. This allows each service to implement its own
	// recipient validation rules.
	ValidateAndCanonicalizeRecipient(recipient string) (string, error)

	// SendMessage sends a message to a recipient.
	SendMessage(ctx context.Context, to string, body string) error

	// SendMessageWithReplies sends a message together with suggested
	// quick-reply options. Transports without a native affordance render the
	// options as part of the message body.
	SendMessageWithReplies(ctx context.Context, to string, body string, replies []string) error
}
