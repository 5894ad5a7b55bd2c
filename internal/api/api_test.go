package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/arielabs/arie/internal/flow"
	"github.com/arielabs/arie/internal/messaging"
	"github.com/arielabs/arie/internal/models"
	"github.com/arielabs/arie/internal/store"
	"github.com/arielabs/arie/internal/twiliosms"
)

// stubRunner echoes a canned reply to whoever sent the event.
type stubRunner struct {
	events []models.Event
}

func (r *stubRunner) HandleEvent(ctx context.Context, ev models.Event) []models.Message {
	r.events = append(r.events, ev)
	return []models.Message{{To: ev.From, Body: "ok"}}
}

func newTestServer(t *testing.T) (*Server, *stubRunner, *twiliosms.MockClient) {
	t.Helper()
	runner := &stubRunner{}
	mock := twiliosms.NewMockClient()
	handler := messaging.NewHandler(runner, messaging.NewTwilioService(mock))
	states := flow.NewStateManager(store.NewInMemoryStore())
	return NewServer(handler, states), runner, mock
}

func TestHealthEndpoint(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.healthHandler(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("unexpected content type %q", ct)
	}
	if !strings.Contains(rec.Body.String(), string(models.APIStatusOK)) {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	srv.healthHandler(rec, httptest.NewRequest(http.MethodPost, "/health", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405 for POST, got %d", rec.Code)
	}
}

func TestEventsEndpoint(t *testing.T) {
	srv, runner, mock := newTestServer(t)

	body := `{"type":"message","from":"15550100","text":"hello"}`
	rec := httptest.NewRecorder()
	srv.eventsHandler(rec, httptest.NewRequest(http.MethodPost, "/events", strings.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(runner.events) != 1 {
		t.Fatalf("expected one turn, got %d", len(runner.events))
	}
	ev := runner.events[0]
	if ev.Type != models.EventTypeMessage || ev.From != "15550100" || ev.Text != "hello" {
		t.Errorf("unexpected event: %+v", ev)
	}
	if ev.Time == 0 {
		t.Error("event time should be defaulted")
	}
	if len(mock.SentMessages) != 1 || mock.SentMessages[0].Body != "ok" {
		t.Errorf("turn reply not sent: %+v", mock.SentMessages)
	}
}

func TestEventsEndpoint_MalformedBody(t *testing.T) {
	srv, runner, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.eventsHandler(rec, httptest.NewRequest(http.MethodPost, "/events", strings.NewReader("not json")))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	if len(runner.events) != 0 {
		t.Errorf("no turn should run for a malformed body")
	}
}

func TestEventsEndpoint_InvalidEvent(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.eventsHandler(rec, httptest.NewRequest(http.MethodPost, "/events", strings.NewReader(`{"text":"hi"}`)))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500 for an unprocessable event, got %d", rec.Code)
	}
}

func TestTwilioWebhook(t *testing.T) {
	srv, runner, _ := newTestServer(t)

	form := url.Values{"From": {"+15550100"}, "Body": {"hello"}}
	req := httptest.NewRequest(http.MethodPost, "/webhook/twilio", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := httptest.NewRecorder()
	srv.twilioWebhookHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(runner.events) != 1 {
		t.Fatalf("expected one turn, got %d", len(runner.events))
	}
	ev := runner.events[0]
	if ev.Type != models.EventTypeMessage || ev.From != "15550100" || ev.Text != "hello" {
		t.Errorf("unexpected event: %+v", ev)
	}

	rec = httptest.NewRecorder()
	srv.twilioWebhookHandler(rec, httptest.NewRequest(http.MethodGet, "/webhook/twilio", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405 for GET, got %d", rec.Code)
	}
}

func TestParticipantProfileEndpoint(t *testing.T) {
	srv, _, _ := newTestServer(t)

	if err := srv.states.SaveProfile(models.ProfileRecord{
		ParticipantID: "15550100",
		Profile:       models.UserProfile{Name: "Alex", Drug: "opioids"},
	}); err != nil {
		t.Fatalf("failed to seed profile: %v", err)
	}

	rec := httptest.NewRecorder()
	srv.participantsHandler(rec, httptest.NewRequest(http.MethodGet, "/participants/15550100/profile", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Alex") || !strings.Contains(body, "opioids") {
		t.Errorf("profile fields missing from response: %s", body)
	}

	rec = httptest.NewRecorder()
	srv.participantsHandler(rec, httptest.NewRequest(http.MethodPost, "/participants/15550100/profile", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405 for POST, got %d", rec.Code)
	}
}

func TestParticipantResetEndpoint(t *testing.T) {
	srv, _, _ := newTestServer(t)

	if err := srv.states.SaveFlowState(models.FlowState{
		ParticipantID: "15550100",
		FlowType:      models.FlowTypeCheckin,
		CurrentState:  "recap",
	}); err != nil {
		t.Fatalf("failed to seed flow state: %v", err)
	}

	rec := httptest.NewRecorder()
	srv.participantsHandler(rec, httptest.NewRequest(http.MethodPost, "/participants/15550100/reset", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	fs, err := srv.states.FlowState("15550100", models.FlowTypeCheckin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fs.CurrentState != "none" {
		t.Errorf("conversation state should be cleared, got %q", fs.CurrentState)
	}

	rec = httptest.NewRecorder()
	srv.participantsHandler(rec, httptest.NewRequest(http.MethodGet, "/participants/15550100/unknown", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for an unknown action, got %d", rec.Code)
	}
}
