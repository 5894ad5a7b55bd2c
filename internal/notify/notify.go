// Package notify implements the crisis notification side-channel: a
// fire-and-forget SMS asking the participant's chosen contact to reach out.
package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/arielabs/arie/internal/models"
	"github.com/arielabs/arie/internal/twiliosms"
)

// contactMessage is the text sent to the contact. The profile supplies the
// contact's name, the participant's name, and the destination number.
const contactMessage = "Hi %s, %s is having a bad day, and it would be great if you could talk to them. Please talk to them when you can!"

// TwilioNotifier sends the crisis notification over Twilio SMS.
type TwilioNotifier struct {
	client twiliosms.Sender
}

// NewTwilioNotifier creates a notifier around the given sender.
func NewTwilioNotifier(client twiliosms.Sender) *TwilioNotifier {
	return &TwilioNotifier{client: client}
}

// Notify sends the notification to the contact captured in the profile. The
// caller never consults the outcome beyond logging.
func (n *TwilioNotifier) Notify(ctx context.Context, profile models.UserProfile) error {
	if profile.Number == "" {
		return fmt.Errorf("profile has no contact number")
	}
	body := fmt.Sprintf(contactMessage, profile.Friend, profile.Name)
	if err := n.client.SendSMS(ctx, profile.Number, body); err != nil {
		slog.Error("TwilioNotifier send failed", "error", err, "number_set", profile.Number != "")
		return fmt.Errorf("failed to notify contact: %w", err)
	}
	slog.Info("TwilioNotifier contacted support person")
	return nil
}
