// Package genai provides the OpenAI chat client backing Arie's language
// understanding adapters.
package genai

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// DefaultTimeout bounds every chat completion call. Callers hitting the
// timeout receive an error outcome and must degrade, never block a turn.
const DefaultTimeout = 10 * time.Second

// ClientInterface defines the chat completion operations consumed by the
// nlu adapters. Tests substitute a fake.
type ClientInterface interface {
	// GenerateWithMessages runs one chat completion over the given messages
	// and returns the assistant's reply text.
	GenerateWithMessages(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion) (string, error)
}

// Opts holds configuration options for the GenAI client.
type Opts struct {
	APIKey  string
	Model   openai.ChatModel
	Timeout time.Duration
}

// Option defines a configuration option for the GenAI client.
type Option func(*Opts)

// WithAPIKey sets the OpenAI API key, overriding $OPENAI_API_KEY.
func WithAPIKey(key string) Option {
	return func(o *Opts) { o.APIKey = key }
}

// WithModel sets the chat model to use.
func WithModel(model openai.ChatModel) Option {
	return func(o *Opts) { o.Model = model }
}

// WithTimeout sets the per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *Opts) { o.Timeout = d }
}

// Client wraps the OpenAI chat completion API.
type Client struct {
	client  openai.Client
	model   openai.ChatModel
	timeout time.Duration
}

// NewClient initializes a new GenAI client. The API key falls back to the
// OPENAI_API_KEY environment variable when not provided via options.
func NewClient(opts ...Option) (*Client, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY not set")
	}
	if cfg.Model == "" {
		cfg.Model = openai.ChatModelGPT4oMini
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	slog.Debug("GenAI client configured", "model", cfg.Model, "timeout", cfg.Timeout)

	return &Client{
		client:  openai.NewClient(option.WithAPIKey(cfg.APIKey)),
		model:   cfg.Model,
		timeout: cfg.Timeout,
	}, nil
}

// GenerateWithMessages runs one chat completion and returns the reply text.
func (c *Client) GenerateWithMessages(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    c.model,
		Messages: messages,
	})
	if err != nil {
		slog.Error("GenAI chat completion failed", "error", err)
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		slog.Error("GenAI chat completion returned no choices")
		return "", fmt.Errorf("no choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}
