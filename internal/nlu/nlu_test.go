package nlu

import (
	"context"
	"errors"
	"testing"

	"github.com/arielabs/arie/internal/models"
	"github.com/openai/openai-go"
)

// fakeGenAI returns a canned reply or error.
type fakeGenAI struct {
	reply string
	err   error
}

func (f *fakeGenAI) GenerateWithMessages(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion) (string, error) {
	return f.reply, f.err
}

func TestIntentClassifier_Labels(t *testing.T) {
	cases := map[string]models.Intent{
		"Yes":            models.IntentYes,
		"no":             models.IntentNo,
		" Opioids ":      models.Intent("Opioids"),
		"stimulants":     models.Intent("Stimulants"),
		"something else": models.IntentUnrecognized,
		"":               models.IntentUnrecognized,
	}
	for reply, expected := range cases {
		c := NewIntentClassifier(&fakeGenAI{reply: reply})
		intent, err := c.Classify(context.Background(), "user text")
		if err != nil {
			t.Fatalf("reply %q: unexpected error: %v", reply, err)
		}
		if intent != expected {
			t.Errorf("reply %q: expected %q, got %q", reply, expected, intent)
		}
	}
}

func TestIntentClassifier_ServiceError(t *testing.T) {
	c := NewIntentClassifier(&fakeGenAI{err: errors.New("connection refused")})
	intent, err := c.Classify(context.Background(), "user text")
	if err == nil {
		t.Fatal("expected an error outcome")
	}
	if intent != models.IntentUnrecognized {
		t.Errorf("error outcome should carry the unrecognized label, got %q", intent)
	}
}

func TestSentimentScorer_ParsesScore(t *testing.T) {
	cases := map[string]float64{
		"0.42":   0.42,
		" 0.9\n": 0.9,
		"0":      0,
		"1.7":    1, // clamped
		"-0.2":   0, // clamped
	}
	for reply, expected := range cases {
		s := NewSentimentScorer(&fakeGenAI{reply: reply})
		score, err := s.Score(context.Background(), "user text")
		if err != nil {
			t.Fatalf("reply %q: unexpected error: %v", reply, err)
		}
		if score != expected {
			t.Errorf("reply %q: expected %v, got %v", reply, expected, score)
		}
	}
}

func TestSentimentScorer_MalformedReply(t *testing.T) {
	s := NewSentimentScorer(&fakeGenAI{reply: "pretty positive I'd say"})
	if _, err := s.Score(context.Background(), "user text"); err == nil {
		t.Fatal("expected an error for a malformed score")
	}
}

func TestSentimentScorer_ServiceError(t *testing.T) {
	s := NewSentimentScorer(&fakeGenAI{err: errors.New("timeout")})
	if _, err := s.Score(context.Background(), "user text"); err == nil {
		t.Fatal("expected an error outcome")
	}
}
