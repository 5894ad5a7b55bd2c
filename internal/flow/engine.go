package flow

import (
	"context"

	"github.com/arielabs/arie/internal/models"
)

// IntentClassifier maps free text to a coarse intent label. Implementations
// live outside this package; the engines treat an error outcome exactly like
// models.IntentUnrecognized.
type IntentClassifier interface {
	Classify(ctx context.Context, text string) (models.Intent, error)
}

// SentimentScorer maps free text to a positivity score in [0,1].
type SentimentScorer interface {
	Score(ctx context.Context, text string) (float64, error)
}

// ContactNotifier delivers the crisis side-channel notification to the
// contact named in the profile. Fire-and-forget: the engine never consults
// the result.
type ContactNotifier interface {
	Notify(ctx context.Context, profile models.UserProfile) error
}

// StepResult is the outcome of one engine step: the messages to send, the
// profile after any mutation, and requested side effects. The engines perform
// no I/O themselves beyond the injected classifier and scorer.
type StepResult struct {
	Messages []models.Message
	Profile  models.UserProfile
	// SetWelcomed requests the participant's welcomed flag be set true.
	SetWelcomed bool
	// NotifyContact carries a profile snapshot for the crisis notification,
	// taken before the profile reset.
	NotifyContact *models.UserProfile
}

// Suggested quick replies for fixed-answer questions.
var (
	yesNoReplies     = []string{"Yes", "No"}
	substanceReplies = []string{"Heroin", "Meth", "Cocaine", "Marijuana", "Opioids"}
)

func say(body string) models.Message {
	return models.Message{Body: body}
}

func ask(body string, replies []string) models.Message {
	return models.Message{Body: body, SuggestedReplies: replies}
}
