package messaging

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/arielabs/arie/internal/twiliosms"
)

// TwilioService implements the Service interface over the Twilio SMS sender.
type TwilioService struct {
	client twiliosms.Sender
}

// NewTwilioService creates a TwilioService around the given sender.
func NewTwilioService(client twiliosms.Sender) *TwilioService {
	return &TwilioService{client: client}
}

// ValidateAndCanonicalizeRecipient validates and canonicalizes a phone
// number. It removes all non-numeric characters and validates the result has
// at least 6 digits.
func (s *TwilioService) ValidateAndCanonicalizeRecipient(recipient string) (string, error) {
	if recipient == "" {
		return "", fmt.Errorf("recipient cannot be empty")
	}

	canonical := phoneNumberRegex.ReplaceAllString(recipient, "")
	if canonical == "" {
		return "", fmt.Errorf("invalid phone number: no digits found in recipient %q", recipient)
	}
	if len(canonical) < 6 {
		return "", fmt.Errorf("invalid phone number: %q is too short (minimum 6 digits required)", canonical)
	}

	if recipient != canonical {
		slog.Debug("TwilioService canonicalized recipient", "original", recipient, "canonical", canonical)
	}
	return canonical, nil
}

// SendMessage sends a plain message via Twilio.
func (s *TwilioService) SendMessage(ctx context.Context, to string, body string) error {
	canonicalTo, err := s.ValidateAndCanonicalizeRecipient(to)
	if err != nil {
		slog.Error("TwilioService SendMessage validation error", "error", err, "to", to)
		return err
	}
	return s.client.SendSMS(ctx, "+"+canonicalTo, body)
}

// SendMessageWithReplies sends a message with quick-reply options. SMS has no
// native quick-reply affordance, so the options are appended as a reply hint.
func (s *TwilioService) SendMessageWithReplies(ctx context.Context, to string, body string, replies []string) error {
	if len(replies) == 0 {
		return s.SendMessage(ctx, to, body)
	}
	hint := fmt.Sprintf("%s\n(Reply with one of: %s)", body, strings.Join(replies, ", "))
	return s.SendMessage(ctx, to, hint)
}
