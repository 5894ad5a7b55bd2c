package messaging

import (
	"context"
	"strings"
	"testing"

	"github.com/arielabs/arie/internal/models"
	"github.com/arielabs/arie/internal/twiliosms"
)

func TestTwilioService_CanonicalizesRecipient(t *testing.T) {
	svc := NewTwilioService(twiliosms.NewMockClient())

	canonical, err := svc.ValidateAndCanonicalizeRecipient("+1 (555) 010-0000")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if canonical != "15550100000" {
		t.Errorf("unexpected canonical form: %q", canonical)
	}

	if _, err := svc.ValidateAndCanonicalizeRecipient(""); err == nil {
		t.Error("empty recipient should be rejected")
	}
	if _, err := svc.ValidateAndCanonicalizeRecipient("abc"); err == nil {
		t.Error("recipient without digits should be rejected")
	}
	if _, err := svc.ValidateAndCanonicalizeRecipient("123"); err == nil {
		t.Error("short recipient should be rejected")
	}
}

func TestTwilioService_SendMessage(t *testing.T) {
	mock := twiliosms.NewMockClient()
	svc := NewTwilioService(mock)

	if err := svc.SendMessage(context.Background(), "+1 555 0100", "hello"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mock.SentMessages) != 1 {
		t.Fatalf("expected one send, got %d", len(mock.SentMessages))
	}
	if mock.SentMessages[0].To != "+15550100" || mock.SentMessages[0].Body != "hello" {
		t.Errorf("unexpected send: %+v", mock.SentMessages[0])
	}
}

func TestTwilioService_RendersSuggestedReplies(t *testing.T) {
	mock := twiliosms.NewMockClient()
	svc := NewTwilioService(mock)

	if err := svc.SendMessageWithReplies(context.Background(), "15550100", "Did you achieve your goal?", []string{"Yes", "No"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	body := mock.SentMessages[0].Body
	if !strings.Contains(body, "Did you achieve your goal?") || !strings.Contains(body, "Yes, No") {
		t.Errorf("reply hint not rendered: %q", body)
	}
}

// stubRunner returns canned messages for any event.
type stubRunner struct {
	messages []models.Message
	lastFrom string
}

func (r *stubRunner) HandleEvent(ctx context.Context, ev models.Event) []models.Message {
	r.lastFrom = ev.From
	return r.messages
}

func TestHandler_SendsTurnMessagesInOrder(t *testing.T) {
	mock := twiliosms.NewMockClient()
	runner := &stubRunner{messages: []models.Message{
		{To: "15550100", Body: "first"},
		{To: "15550100", Body: "second", SuggestedReplies: []string{"Yes", "No"}},
	}}
	h := NewHandler(runner, NewTwilioService(mock))

	err := h.ProcessEvent(context.Background(), models.Event{
		Type: models.EventTypeMessage,
		From: "+1 (555) 0100",
		Text: "hello",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if runner.lastFrom != "15550100" {
		t.Errorf("sender should be canonicalized before the turn, got %q", runner.lastFrom)
	}
	if len(mock.SentMessages) != 2 {
		t.Fatalf("expected 2 sends, got %d", len(mock.SentMessages))
	}
	if mock.SentMessages[0].Body != "first" {
		t.Errorf("send order not preserved: %+v", mock.SentMessages)
	}
	if !strings.Contains(mock.SentMessages[1].Body, "Yes, No") {
		t.Errorf("second send should carry the reply hint: %q", mock.SentMessages[1].Body)
	}
}

func TestHandler_RejectsInvalidEvent(t *testing.T) {
	h := NewHandler(&stubRunner{}, NewTwilioService(twiliosms.NewMockClient()))
	if err := h.ProcessEvent(context.Background(), models.Event{}); err == nil {
		t.Error("expected an error for an event without a type")
	}
	if err := h.ProcessEvent(context.Background(), models.Event{Type: models.EventTypeMessage, From: "abc"}); err == nil {
		t.Error("expected an error for an invalid sender")
	}
}
