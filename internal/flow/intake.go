package flow

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/arielabs/arie/internal/models"
)

// Intake script message texts.
const (
	msgAskName      = "I see that this is your first time. What is your name?"
	msgAskSubstance = "What substance are you struggling with?"
	msgAskConcern   = "Now tell me, what are your biggest concerns with using %s?"
	msgAskDifficult = "I see. What is most difficult for you in abstaining from %s?"
	msgAskGoal      = "What goal would you like to set up for yourself?"
	msgAskAction    = "What actions will you take to reach this goal?"
	msgInvalidDrug  = "Please enter a valid drug."

	msgDrugAffirmation = "Thank you for sharing! %s addiction is a complex brain disease that is in no means a testament to your self control. By taking the first steps to recognize and address your needs, you are on your way towards recovery."

	msgIntakeClosing = "That’s great! Recovery can seem like a long process, so let’s take it one day at a time. I would like to work towards your goal. Check back with me tomorrow for our next session. See you later %s!"
)

// IntakeEngine runs the first-session profile interview.
type IntakeEngine struct {
	classifier IntentClassifier
}

// NewIntakeEngine creates an intake engine with the given classifier.
func NewIntakeEngine(classifier IntentClassifier) *IntakeEngine {
	return &IntakeEngine{classifier: classifier}
}

// Step advances the intake script by one turn. state is the last question
// asked, input the participant's latest text. The returned state is the next
// question cursor; side effects are requested through the StepResult.
func (e *IntakeEngine) Step(ctx context.Context, state IntakeState, profile models.UserProfile, input string) (IntakeState, StepResult) {
	slog.Debug("IntakeEngine step", "state", state)
	res := StepResult{Profile: profile}

	switch state {
	case IntakeNone:
		res.Messages = append(res.Messages, say(msgAskName))
		return IntakeName, res

	case IntakeName:
		res.Profile.Name = input
		res.Messages = append(res.Messages,
			say("Nice to meet you, "+res.Profile.Name),
			ask(msgAskSubstance, substanceReplies))
		return IntakeDrug, res

	case IntakeDrug:
		intent, err := e.classifier.Classify(ctx, input)
		if err != nil {
			slog.Warn("IntakeEngine drug classification error, treating as unrecognized", "error", err)
			intent = models.IntentUnrecognized
		}
		res.Profile.Drug = strings.ToLower(string(intent))

		res.Messages = append(res.Messages,
			say(fmt.Sprintf(msgDrugAffirmation, capitalize(res.Profile.Drug))),
			say(fmt.Sprintf(msgAskConcern, res.Profile.Drug)))

		// The script advances even when classification failed; the invalid
		// marker is recorded and a warning appended after the next question.
		if intent == models.IntentUnrecognized {
			res.Messages = append(res.Messages, say(msgInvalidDrug))
		}
		return IntakeConcern, res

	case IntakeConcern:
		res.Profile.Concern = input
		res.Messages = append(res.Messages, say(fmt.Sprintf(msgAskDifficult, res.Profile.Drug)))
		return IntakeDifficult, res

	case IntakeDifficult:
		res.Profile.Difficult = input
		res.Messages = append(res.Messages, say(msgAskGoal))
		return IntakeGoal, res

	case IntakeGoal:
		res.Profile.Goal = input
		res.Messages = append(res.Messages, say(msgAskAction))
		return IntakeAction, res

	case IntakeAction:
		res.Profile.Action = input
		res.Messages = append(res.Messages, say(fmt.Sprintf(msgIntakeClosing, res.Profile.Name)))
		res.SetWelcomed = true
		res.Profile = models.UserProfile{}
		return IntakeNone, res

	default:
		// Unreachable once states are parsed fail-safe; reset anyway.
		slog.Error("IntakeEngine unknown state, resetting", "state", state)
		res.Messages = append(res.Messages, say(msgAskName))
		return IntakeName, res
	}
}

// capitalize upper-cases the first letter, matching the affirmation wording.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
