// Package flow provides the turn dispatcher routing inbound events through
// the script engines.
package flow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/arielabs/arie/internal/models"
)

// GreetingMessage is sent to every non-bot participant added to the
// conversation.
const GreetingMessage = "Hello! My name is Arie, and I’m your personal chatbot. I am a private and anonymous resource for you to help manage your addiction."

// apologyMessage is sent when a turn fails on storage; the conversation-level
// state is reset so the next message starts cleanly.
const apologyMessage = "Sorry, something went wrong on our end. Let's pick this up with your next message."

// Dispatcher routes one inbound event to the governing script engine,
// persists all mutated state after the step, and triggers requested side
// effects. One call handles one turn; turns for different participants may
// run concurrently.
type Dispatcher struct {
	states   *StateManager
	intake   *IntakeEngine
	checkin  *CheckinEngine
	notifier ContactNotifier
}

// NewDispatcher creates a Dispatcher over the given collaborators.
func NewDispatcher(states *StateManager, intake *IntakeEngine, checkin *CheckinEngine, notifier ContactNotifier) *Dispatcher {
	return &Dispatcher{states: states, intake: intake, checkin: checkin, notifier: notifier}
}

// HandleEvent processes one inbound event and returns the ordered outbound
// messages for the turn. Failures are turn-scoped: the returned messages are
// always safe to send, and nothing here is fatal to the process.
func (d *Dispatcher) HandleEvent(ctx context.Context, ev models.Event) []models.Message {
	switch ev.Type {
	case models.EventTypeMessage:
		return d.handleMessage(ctx, ev)
	case models.EventTypeMembershipChanged:
		return d.handleMembershipChanged(ev)
	default:
		slog.Debug("Dispatcher received unhandled event type", "type", ev.Type, "from", ev.From)
		return []models.Message{{To: ev.From, Body: fmt.Sprintf("[%s event detected]", ev.Type)}}
	}
}

// handleMembershipChanged greets every newly added participant except the bot
// itself. No state is read or written.
func (d *Dispatcher) handleMembershipChanged(ev models.Event) []models.Message {
	var out []models.Message
	for _, member := range ev.MembersAdded {
		if member == ev.BotID {
			continue
		}
		out = append(out, models.Message{To: member, Body: GreetingMessage})
	}
	slog.Debug("Dispatcher greeted new members", "count", len(out))
	return out
}

func (d *Dispatcher) handleMessage(ctx context.Context, ev models.Event) []models.Message {
	participant, err := d.states.Participant(ev.From)
	if err != nil {
		return d.failTurn(ev.From, err)
	}
	mode := ModeFor(participant.Welcomed)
	slog.Debug("Dispatcher running turn", "participantID", ev.From, "mode", mode)

	record, err := d.states.Profile(ev.From)
	if err != nil {
		return d.failTurn(ev.From, err)
	}
	fs, err := d.states.FlowState(ev.From, mode.FlowType())
	if err != nil {
		return d.failTurn(ev.From, err)
	}

	var res StepResult
	switch mode {
	case ModeCheckin:
		next, r := d.checkin.Step(ctx, ParseCheckinState(fs.CurrentState), record.Profile, ev.Text)
		fs.CurrentState, res = string(next), r
	default:
		next, r := d.intake.Step(ctx, ParseIntakeState(fs.CurrentState), record.Profile, ev.Text)
		fs.CurrentState, res = string(next), r
	}

	// Persist all mutated state unconditionally after the step, even on a
	// no-op branch. Message composition already happened; sending waits until
	// persistence succeeded.
	record.Profile = res.Profile
	if res.SetWelcomed {
		participant.Welcomed = true
	}
	for _, save := range []func() error{
		func() error { return d.states.SaveFlowState(fs) },
		func() error { return d.states.SaveProfile(record) },
		func() error { return d.states.SaveParticipant(participant) },
	} {
		if err := save(); err != nil {
			if errors.Is(err, models.ErrVersionConflict) {
				// A concurrent turn for the same participant won the write.
				// Drop this turn instead of double-sending its messages.
				slog.Warn("Dispatcher dropping turn on version conflict", "participantID", ev.From)
				return nil
			}
			return d.failTurn(ev.From, err)
		}
	}

	if res.NotifyContact != nil && d.notifier != nil {
		// Fire-and-forget: the outcome is never consulted.
		if err := d.notifier.Notify(ctx, *res.NotifyContact); err != nil {
			slog.Error("Dispatcher contact notification failed", "error", err, "participantID", ev.From)
		}
	}

	out := make([]models.Message, 0, len(res.Messages))
	for _, m := range res.Messages {
		m.To = ev.From
		out = append(out, m)
	}
	return out
}

// failTurn handles a storage failure: apologize and reset conversation-level
// state so the next turn starts from a known place. The participant record
// and profile history are left untouched.
func (d *Dispatcher) failTurn(participantID string, cause error) []models.Message {
	slog.Error("Dispatcher turn failed", "error", cause, "participantID", participantID)
	if err := d.states.ResetConversation(participantID); err != nil {
		slog.Error("Dispatcher conversation reset failed", "error", err, "participantID", participantID)
	}
	return []models.Message{{To: participantID, Body: apologyMessage}}
}
