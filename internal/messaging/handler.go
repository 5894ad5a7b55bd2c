// Package messaging provides the event handler bridging inbound transport
// events and the dialogue flow dispatcher.
package messaging

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/arielabs/arie/internal/models"
)

// TurnRunner processes one inbound event and returns the turn's outbound
// messages. Implemented by flow.Dispatcher.
type TurnRunner interface {
	HandleEvent(ctx context.Context, ev models.Event) []models.Message
}

// Handler validates inbound events, runs the turn, and sends the resulting
// messages in order through the messaging service.
type Handler struct {
	runner TurnRunner
	svc    Service
}

// NewHandler creates a Handler over the given turn runner and service.
func NewHandler(runner TurnRunner, svc Service) *Handler {
	return &Handler{runner: runner, svc: svc}
}

// ProcessEvent handles one inbound event end to end. Send failures abort the
// remaining sends for the turn; state was already persisted by the runner, so
// the next inbound message resumes cleanly.
func (h *Handler) ProcessEvent(ctx context.Context, ev models.Event) error {
	if err := ev.Validate(); err != nil {
		slog.Error("Handler rejected invalid event", "error", err, "type", ev.Type)
		return fmt.Errorf("invalid event: %w", err)
	}

	if ev.From != "" {
		canonicalFrom, err := h.svc.ValidateAndCanonicalizeRecipient(ev.From)
		if err != nil {
			slog.Error("Handler sender validation failed", "error", err, "from", ev.From)
			return fmt.Errorf("invalid sender: %w", err)
		}
		ev.From = canonicalFrom
	}

	slog.Debug("Handler processing event", "type", ev.Type, "from", ev.From)
	messages := h.runner.HandleEvent(ctx, ev)

	for _, m := range messages {
		var err error
		if len(m.SuggestedReplies) > 0 {
			err = h.svc.SendMessageWithReplies(ctx, m.To, m.Body, m.SuggestedReplies)
		} else {
			err = h.svc.SendMessage(ctx, m.To, m.Body)
		}
		if err != nil {
			slog.Error("Handler send failed", "error", err, "to", m.To)
			return fmt.Errorf("failed to send message: %w", err)
		}
	}

	slog.Info("Handler completed turn", "type", ev.Type, "from", ev.From, "messages", len(messages))
	return nil
}
