// Package nlu provides the natural-language adapters the dialogue engine
// consumes: a coarse intent classifier over a closed label set and a
// sentiment scorer producing a score in [0,1]. Both are thin clients over the
// genai chat client; the engine never sees the underlying service.
package nlu

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/arielabs/arie/internal/genai"
	"github.com/arielabs/arie/internal/models"
	"github.com/openai/openai-go"
)

// Classifier maps free text to one label from the closed intent set. An error
// return is a classification-error outcome: callers must treat it exactly
// like models.IntentUnrecognized and re-prompt rather than fail the turn.
type Classifier interface {
	Classify(ctx context.Context, text string) (models.Intent, error)
}

// IntentClassifier implements Classifier on the GenAI chat client.
type IntentClassifier struct {
	client genai.ClientInterface
}

// NewIntentClassifier creates an intent classifier backed by the given client.
func NewIntentClassifier(client genai.ClientInterface) *IntentClassifier {
	return &IntentClassifier{client: client}
}

func intentSystemPrompt() string {
	labels := []string{string(models.IntentYes), string(models.IntentNo)}
	for _, c := range models.DrugCategories {
		labels = append(labels, string(c))
	}
	return "You classify one user message from an addiction-recovery chat. " +
		"Respond with exactly one of these labels and nothing else: " +
		strings.Join(labels, ", ") + ". " +
		"Use Yes for any affirmative answer, No for any negative answer, a substance " +
		"category when the message names a substance in that category, and " +
		string(models.IntentUnrecognized) + " when none apply."
}

// Classify returns the intent label for the given text. Labels outside the
// closed set come back as models.IntentUnrecognized with a nil error; only
// transport or service failures produce an error.
func (c *IntentClassifier) Classify(ctx context.Context, text string) (models.Intent, error) {
	reply, err := c.client.GenerateWithMessages(ctx, []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(intentSystemPrompt()),
		openai.UserMessage(text),
	})
	if err != nil {
		slog.Error("IntentClassifier request failed", "error", err)
		return models.IntentUnrecognized, fmt.Errorf("intent classification failed: %w", err)
	}

	intent := models.ParseIntent(reply)
	slog.Debug("IntentClassifier result", "intent", intent)
	return intent, nil
}
