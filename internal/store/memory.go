package store

import (
	"sync"
	"time"

	"github.com/arielabs/arie/internal/models"
)

// InMemoryStore is a Store backed by maps, for tests and ephemeral runs. It
// applies the same optimistic-concurrency rules as the SQL backends.
type InMemoryStore struct {
	mu           sync.RWMutex
	participants map[string]models.Participant
	flowStates   map[string]models.FlowState
	profiles     map[string]models.ProfileRecord
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		participants: make(map[string]models.Participant),
		flowStates:   make(map[string]models.FlowState),
		profiles:     make(map[string]models.ProfileRecord),
	}
}

func flowKey(participantID string, flowType models.FlowType) string {
	return participantID + "|" + string(flowType)
}

// GetParticipant retrieves a participant record, or nil when absent.
func (s *InMemoryStore) GetParticipant(id string) (*models.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.participants[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

// SaveParticipant inserts or updates a participant record.
func (s *InMemoryStore) SaveParticipant(p models.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.participants[p.ID]
	if ok && existing.Version != p.Version {
		return models.ErrVersionConflict
	}
	if !ok && p.Version != 0 {
		return models.ErrVersionConflict
	}
	now := time.Now()
	if !ok {
		p.CreatedAt = now
	} else {
		p.CreatedAt = existing.CreatedAt
	}
	p.Version++
	p.UpdatedAt = now
	s.participants[p.ID] = p
	return nil
}

// GetFlowState retrieves a flow cursor, or nil when absent.
func (s *InMemoryStore) GetFlowState(participantID string, flowType models.FlowType) (*models.FlowState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fs, ok := s.flowStates[flowKey(participantID, flowType)]
	if !ok {
		return nil, nil
	}
	return &fs, nil
}

// SaveFlowState inserts or updates a flow cursor.
func (s *InMemoryStore) SaveFlowState(fs models.FlowState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := flowKey(fs.ParticipantID, fs.FlowType)
	existing, ok := s.flowStates[key]
	if ok && existing.Version != fs.Version {
		return models.ErrVersionConflict
	}
	if !ok && fs.Version != 0 {
		return models.ErrVersionConflict
	}
	now := time.Now()
	if !ok {
		fs.CreatedAt = now
	} else {
		fs.CreatedAt = existing.CreatedAt
	}
	fs.Version++
	fs.UpdatedAt = now
	s.flowStates[key] = fs
	return nil
}

// DeleteFlowState removes a flow cursor.
func (s *InMemoryStore) DeleteFlowState(participantID string, flowType models.FlowType) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.flowStates, flowKey(participantID, flowType))
	return nil
}

// GetProfile retrieves a profile record, or nil when absent.
func (s *InMemoryStore) GetProfile(participantID string) (*models.ProfileRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.profiles[participantID]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

// SaveProfile inserts or updates a profile record.
func (s *InMemoryStore) SaveProfile(r models.ProfileRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.profiles[r.ParticipantID]
	if ok && existing.Version != r.Version {
		return models.ErrVersionConflict
	}
	if !ok && r.Version != 0 {
		return models.ErrVersionConflict
	}
	now := time.Now()
	if !ok {
		r.CreatedAt = now
	} else {
		r.CreatedAt = existing.CreatedAt
	}
	r.Version++
	r.UpdatedAt = now
	s.profiles[r.ParticipantID] = r
	return nil
}

// Close is a no-op for the in-memory store.
func (s *InMemoryStore) Close() error {
	return nil
}
