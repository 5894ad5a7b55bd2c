package nlu

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/arielabs/arie/internal/genai"
	"github.com/openai/openai-go"
)

// Scorer maps free text to a positivity score in [0,1]. An error return is a
// scoring-error outcome; callers degrade to the unrecognized path.
type Scorer interface {
	Score(ctx context.Context, text string) (float64, error)
}

// SentimentScorer implements Scorer on the GenAI chat client.
type SentimentScorer struct {
	client genai.ClientInterface
}

// NewSentimentScorer creates a sentiment scorer backed by the given client.
func NewSentimentScorer(client genai.ClientInterface) *SentimentScorer {
	return &SentimentScorer{client: client}
}

const sentimentSystemPrompt = "You score the sentiment of one user message from an " +
	"addiction-recovery chat. Respond with a single decimal number between 0 and 1, " +
	"where 0 is extremely negative or distressed and 1 is extremely positive. " +
	"Respond with the number only."

// Score returns the sentiment score for the given text, clamped to [0,1].
// A malformed service reply is an error, not a score.
func (s *SentimentScorer) Score(ctx context.Context, text string) (float64, error) {
	reply, err := s.client.GenerateWithMessages(ctx, []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(sentimentSystemPrompt),
		openai.UserMessage(text),
	})
	if err != nil {
		slog.Error("SentimentScorer request failed", "error", err)
		return 0, fmt.Errorf("sentiment scoring failed: %w", err)
	}

	score, err := strconv.ParseFloat(strings.TrimSpace(reply), 64)
	if err != nil {
		slog.Error("SentimentScorer malformed score", "reply", reply, "error", err)
		return 0, fmt.Errorf("malformed sentiment score %q: %w", reply, err)
	}
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	slog.Debug("SentimentScorer result", "score", score)
	return score, nil
}
