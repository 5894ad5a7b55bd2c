package genai

import (
	"testing"
	"time"

	"github.com/openai/openai-go"
)

func TestNewClient_RequiresAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	if _, err := NewClient(); err == nil {
		t.Error("expected an error when no API key is available")
	}
}

func TestNewClient_Defaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	c, err := NewClient(WithAPIKey("test-key"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.model != openai.ChatModelGPT4oMini {
		t.Errorf("unexpected default model %q", c.model)
	}
	if c.timeout != DefaultTimeout {
		t.Errorf("unexpected default timeout %v", c.timeout)
	}
}

func TestNewClient_Options(t *testing.T) {
	c, err := NewClient(
		WithAPIKey("test-key"),
		WithModel(openai.ChatModelGPT4o),
		WithTimeout(3*time.Second),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.model != openai.ChatModelGPT4o {
		t.Errorf("model option not applied, got %q", c.model)
	}
	if c.timeout != 3*time.Second {
		t.Errorf("timeout option not applied, got %v", c.timeout)
	}
}

func TestNewClient_APIKeyFromEnv(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "env-key")
	if _, err := NewClient(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
