// Package flow provides the store-backed state manager used by the dispatcher.
package flow

import (
	"fmt"
	"log/slog"

	"github.com/arielabs/arie/internal/models"
	"github.com/arielabs/arie/internal/store"
)

// StateManager loads and saves the three per-participant records, supplying
// zero-valued defaults for absent rows so a first-ever message starts both
// scripts at their initial state.
type StateManager struct {
	store store.Store
}

// NewStateManager creates a StateManager backed by a Store.
func NewStateManager(st store.Store) *StateManager {
	slog.Debug("Creating StateManager")
	return &StateManager{store: st}
}

// Participant retrieves the participant record, defaulting to a fresh
// unwelcomed record when absent.
func (sm *StateManager) Participant(id string) (models.Participant, error) {
	p, err := sm.store.GetParticipant(id)
	if err != nil {
		slog.Error("StateManager Participant load failed", "error", err, "participantID", id)
		return models.Participant{}, fmt.Errorf("failed to load participant %s: %w", id, err)
	}
	if p == nil {
		return models.Participant{ID: id}, nil
	}
	return *p, nil
}

// SaveParticipant persists the participant record.
func (sm *StateManager) SaveParticipant(p models.Participant) error {
	if err := sm.store.SaveParticipant(p); err != nil {
		return fmt.Errorf("failed to save participant %s: %w", p.ID, err)
	}
	return nil
}

// FlowState retrieves the flow cursor for one script, defaulting to the
// script's initial state when absent.
func (sm *StateManager) FlowState(id string, flowType models.FlowType) (models.FlowState, error) {
	fs, err := sm.store.GetFlowState(id, flowType)
	if err != nil {
		slog.Error("StateManager FlowState load failed", "error", err, "participantID", id, "flowType", flowType)
		return models.FlowState{}, fmt.Errorf("failed to load flow state for %s: %w", id, err)
	}
	if fs == nil {
		return models.FlowState{ParticipantID: id, FlowType: flowType, CurrentState: string(IntakeNone)}, nil
	}
	return *fs, nil
}

// SaveFlowState persists the flow cursor.
func (sm *StateManager) SaveFlowState(fs models.FlowState) error {
	if err := sm.store.SaveFlowState(fs); err != nil {
		return fmt.Errorf("failed to save flow state for %s: %w", fs.ParticipantID, err)
	}
	return nil
}

// Profile retrieves the profile record, defaulting to an empty profile when
// absent.
func (sm *StateManager) Profile(id string) (models.ProfileRecord, error) {
	r, err := sm.store.GetProfile(id)
	if err != nil {
		slog.Error("StateManager Profile load failed", "error", err, "participantID", id)
		return models.ProfileRecord{}, fmt.Errorf("failed to load profile for %s: %w", id, err)
	}
	if r == nil {
		return models.ProfileRecord{ParticipantID: id}, nil
	}
	return *r, nil
}

// SaveProfile persists the profile record.
func (sm *StateManager) SaveProfile(r models.ProfileRecord) error {
	if err := sm.store.SaveProfile(r); err != nil {
		return fmt.Errorf("failed to save profile for %s: %w", r.ParticipantID, err)
	}
	return nil
}

// ResetConversation removes the flow cursors for both scripts, leaving the
// participant record and profile history untouched. Used when a turn fails
// partway and the conversation-level state can no longer be trusted.
func (sm *StateManager) ResetConversation(id string) error {
	if err := sm.store.DeleteFlowState(id, models.FlowTypeIntake); err != nil {
		return fmt.Errorf("failed to reset intake state for %s: %w", id, err)
	}
	if err := sm.store.DeleteFlowState(id, models.FlowTypeCheckin); err != nil {
		return fmt.Errorf("failed to reset check-in state for %s: %w", id, err)
	}
	slog.Info("StateManager reset conversation state", "participantID", id)
	return nil
}
