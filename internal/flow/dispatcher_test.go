package flow

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/arielabs/arie/internal/models"
	"github.com/arielabs/arie/internal/store"
)

// stubNotifier records notification requests.
type stubNotifier struct {
	notified []models.UserProfile
}

func (n *stubNotifier) Notify(ctx context.Context, profile models.UserProfile) error {
	n.notified = append(n.notified, profile)
	return nil
}

func newTestDispatcher(st store.Store, classifier IntentClassifier, scorer SentimentScorer, notifier ContactNotifier) *Dispatcher {
	return NewDispatcher(
		NewStateManager(st),
		NewIntakeEngine(classifier),
		NewCheckinEngine(classifier, scorer),
		notifier,
	)
}

func messageEvent(from, text string) models.Event {
	return models.Event{Type: models.EventTypeMessage, From: from, Text: text}
}

func TestDispatcher_MembershipGreetingWritesNoState(t *testing.T) {
	st := store.NewInMemoryStore()
	d := newTestDispatcher(st, &stubClassifier{}, &stubScorer{}, &stubNotifier{})

	out := d.HandleEvent(context.Background(), models.Event{
		Type:         models.EventTypeMembershipChanged,
		MembersAdded: []string{"15550100", "bot"},
		BotID:        "bot",
	})

	if len(out) != 1 {
		t.Fatalf("expected one greeting, got %d", len(out))
	}
	if out[0].To != "15550100" || out[0].Body != GreetingMessage {
		t.Errorf("unexpected greeting: %+v", out[0])
	}
	if p, _ := st.GetParticipant("15550100"); p != nil {
		t.Error("greeting must not create participant state")
	}
}

func TestDispatcher_UnknownEventTypeDiagnostic(t *testing.T) {
	st := store.NewInMemoryStore()
	d := newTestDispatcher(st, &stubClassifier{}, &stubScorer{}, &stubNotifier{})

	out := d.HandleEvent(context.Background(), models.Event{Type: "typing", From: "15550100"})
	if len(out) != 1 || out[0].Body != "[typing event detected]" {
		t.Errorf("expected diagnostic message, got %+v", out)
	}
	if p, _ := st.GetParticipant("15550100"); p != nil {
		t.Error("diagnostic turn must not create participant state")
	}
}

func TestDispatcher_FullIntakeScenario(t *testing.T) {
	st := store.NewInMemoryStore()
	d := newTestDispatcher(st, &stubClassifier{intent: models.Intent("Opioids")}, &stubScorer{}, &stubNotifier{})
	ctx := context.Background()
	user := "15550100"

	inputs := []string{"hi", "Sam", "heroin", "my health", "cravings", "stay clean", "call my sponsor"}
	for i, input := range inputs {
		out := d.HandleEvent(ctx, messageEvent(user, input))
		if len(out) == 0 {
			t.Fatalf("turn %d (%q) produced no messages", i, input)
		}
		p, err := st.GetParticipant(user)
		if err != nil || p == nil {
			t.Fatalf("turn %d: participant not persisted: %v", i, err)
		}
		welcomed := i == len(inputs)-1
		if p.Welcomed != welcomed {
			t.Errorf("turn %d: welcomed=%v, expected %v", i, p.Welcomed, welcomed)
		}
	}

	fs, err := st.GetFlowState(user, models.FlowTypeIntake)
	if err != nil || fs == nil {
		t.Fatalf("flow state not persisted: %v", err)
	}
	if fs.CurrentState != string(IntakeNone) {
		t.Errorf("expected terminal wrap to %q, got %q", IntakeNone, fs.CurrentState)
	}
	r, err := st.GetProfile(user)
	if err != nil || r == nil {
		t.Fatalf("profile not persisted: %v", err)
	}
	if !r.Profile.IsEmpty() {
		t.Errorf("profile should be empty after the terminal step, got %+v", r.Profile)
	}
}

func TestDispatcher_CrisisPathNotifiesContact(t *testing.T) {
	st := store.NewInMemoryStore()
	notifier := &stubNotifier{}
	d := newTestDispatcher(st, &stubClassifier{}, &stubScorer{score: 0.0}, notifier)
	ctx := context.Background()
	user := "15550100"

	// Seed a welcomed participant with an intake profile on record.
	if err := st.SaveParticipant(models.Participant{ID: user, Welcomed: true}); err != nil {
		t.Fatal(err)
	}
	if err := st.SaveProfile(models.ProfileRecord{ParticipantID: user, Profile: models.UserProfile{Name: "Sam", Drug: "opioids", Concern: "health"}}); err != nil {
		t.Fatal(err)
	}

	d.HandleEvent(ctx, messageEvent(user, "hello"))        // none -> feeling
	d.HandleEvent(ctx, messageEvent(user, "terrible"))     // feeling -> phone (crisis)
	d.HandleEvent(ctx, messageEvent(user, "15550199"))     // phone -> call
	out := d.HandleEvent(ctx, messageEvent(user, "Jordan")) // call -> none, notify

	if len(notifier.notified) != 1 {
		t.Fatalf("expected one notification, got %d", len(notifier.notified))
	}
	snapshot := notifier.notified[0]
	if snapshot.Friend != "Jordan" || snapshot.Number != "15550199" || snapshot.Name != "Sam" {
		t.Errorf("unexpected notification snapshot: %+v", snapshot)
	}
	if len(out) != 1 || !strings.Contains(out[0].Body, "I contacted the person") {
		t.Errorf("unexpected closing: %+v", out)
	}

	fs, _ := st.GetFlowState(user, models.FlowTypeCheckin)
	if fs == nil || fs.CurrentState != string(CheckinNone) {
		t.Errorf("crisis sub-flow should reset the check-in cursor, got %+v", fs)
	}
	r, _ := st.GetProfile(user)
	if r == nil || !r.Profile.IsEmpty() {
		t.Errorf("crisis sub-flow should reset the profile, got %+v", r)
	}
}

func TestDispatcher_CorruptStateFailsSafe(t *testing.T) {
	st := store.NewInMemoryStore()
	d := newTestDispatcher(st, &stubClassifier{}, &stubScorer{}, &stubNotifier{})
	user := "15550100"

	if err := st.SaveFlowState(models.FlowState{ParticipantID: user, FlowType: models.FlowTypeIntake, CurrentState: "garbage-state"}); err != nil {
		t.Fatal(err)
	}

	out := d.HandleEvent(context.Background(), messageEvent(user, "hi"))
	if len(out) != 1 || out[0].Body != msgAskName {
		t.Errorf("corrupt state should restart the script, got %+v", out)
	}
	fs, _ := st.GetFlowState(user, models.FlowTypeIntake)
	if fs == nil || fs.CurrentState != string(IntakeName) {
		t.Errorf("expected cursor at %q after restart, got %+v", IntakeName, fs)
	}
}

// conflictStore injects a version conflict on flow state saves.
type conflictStore struct {
	*store.InMemoryStore
}

func (s *conflictStore) SaveFlowState(fs models.FlowState) error {
	return models.ErrVersionConflict
}

func TestDispatcher_VersionConflictDropsTurn(t *testing.T) {
	st := &conflictStore{store.NewInMemoryStore()}
	d := newTestDispatcher(st, &stubClassifier{}, &stubScorer{}, &stubNotifier{})

	out := d.HandleEvent(context.Background(), messageEvent("15550100", "hi"))
	if out != nil {
		t.Errorf("conflicting turn must be dropped silently, got %+v", out)
	}
}

// brokenStore fails flow state saves with a non-conflict error.
type brokenStore struct {
	*store.InMemoryStore
}

func (s *brokenStore) SaveFlowState(fs models.FlowState) error {
	return errors.New("disk on fire")
}

func TestDispatcher_PersistenceFailureApologizesAndResets(t *testing.T) {
	st := &brokenStore{store.NewInMemoryStore()}
	d := newTestDispatcher(st, &stubClassifier{}, &stubScorer{}, &stubNotifier{})
	user := "15550100"

	out := d.HandleEvent(context.Background(), messageEvent(user, "hi"))
	if len(out) != 1 || !strings.Contains(out[0].Body, "Sorry, something went wrong") {
		t.Errorf("expected apology, got %+v", out)
	}
	if fs, _ := st.GetFlowState(user, models.FlowTypeIntake); fs != nil {
		t.Errorf("conversation state should be reset, got %+v", fs)
	}
}
