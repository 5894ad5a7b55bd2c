// Package store provides storage backends for Arie.
//
// This file implements the PostgreSQL-backed store.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	_ "embed"

	"github.com/arielabs/arie/internal/models"
	_ "github.com/lib/pq"
)

//go:embed migrations_postgres.sql
var postgresMigrations string

// PostgresStore is a Store backed by a PostgreSQL database.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgreSQL store with the given DSN.
func NewPostgresStore(opts ...Option) (*PostgresStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewPostgresStore invoked", "DSN_set", cfg.DSN != "")

	if cfg.DSN == "" {
		slog.Error("PostgresStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		slog.Error("Failed to open Postgres connection", "error", err)
		return nil, err
	}
	if err := db.Ping(); err != nil {
		slog.Error("Postgres ping failed", "error", err)
		return nil, err
	}

	if _, err := db.Exec(postgresMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("Postgres migrations applied successfully")

	return &PostgresStore{db: db}, nil
}

// GetParticipant retrieves a participant record, or nil when absent.
func (s *PostgresStore) GetParticipant(id string) (*models.Participant, error) {
	var p models.Participant
	err := s.db.QueryRow(`SELECT id, welcomed, version, created_at, updated_at FROM participants WHERE id = $1`, id).
		Scan(&p.ID, &p.Welcomed, &p.Version, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		slog.Error("PostgresStore GetParticipant failed", "error", err, "id", id)
		return nil, fmt.Errorf("failed to query participant %s: %w", id, err)
	}
	return &p, nil
}

// SaveParticipant inserts or updates a participant record with a version check.
func (s *PostgresStore) SaveParticipant(p models.Participant) error {
	now := time.Now()
	if p.Version == 0 {
		_, err := s.db.Exec(`INSERT INTO participants (id, welcomed, version, created_at, updated_at) VALUES ($1, $2, 1, $3, $4)`,
			p.ID, p.Welcomed, now, now)
		if err != nil {
			if existing, getErr := s.GetParticipant(p.ID); getErr == nil && existing != nil {
				return models.ErrVersionConflict
			}
			slog.Error("PostgresStore SaveParticipant insert failed", "error", err, "id", p.ID)
			return fmt.Errorf("failed to insert participant %s: %w", p.ID, err)
		}
		return nil
	}
	res, err := s.db.Exec(`UPDATE participants SET welcomed = $1, version = version + 1, updated_at = $2 WHERE id = $3 AND version = $4`,
		p.Welcomed, now, p.ID, p.Version)
	if err != nil {
		slog.Error("PostgresStore SaveParticipant update failed", "error", err, "id", p.ID)
		return fmt.Errorf("failed to update participant %s: %w", p.ID, err)
	}
	return requireRowAffected(res, "participant", p.ID)
}

// GetFlowState retrieves a flow cursor, or nil when absent.
func (s *PostgresStore) GetFlowState(participantID string, flowType models.FlowType) (*models.FlowState, error) {
	var fs models.FlowState
	err := s.db.QueryRow(`SELECT participant_id, flow_type, current_state, version, created_at, updated_at FROM flow_states WHERE participant_id = $1 AND flow_type = $2`,
		participantID, string(flowType)).
		Scan(&fs.ParticipantID, &fs.FlowType, &fs.CurrentState, &fs.Version, &fs.CreatedAt, &fs.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		slog.Error("PostgresStore GetFlowState failed", "error", err, "participantID", participantID, "flowType", flowType)
		return nil, fmt.Errorf("failed to query flow state for %s: %w", participantID, err)
	}
	return &fs, nil
}

// SaveFlowState inserts or updates a flow cursor with a version check.
func (s *PostgresStore) SaveFlowState(fs models.FlowState) error {
	now := time.Now()
	if fs.Version == 0 {
		_, err := s.db.Exec(`INSERT INTO flow_states (participant_id, flow_type, current_state, version, created_at, updated_at) VALUES ($1, $2, $3, 1, $4, $5)`,
			fs.ParticipantID, string(fs.FlowType), fs.CurrentState, now, now)
		if err != nil {
			if existing, getErr := s.GetFlowState(fs.ParticipantID, fs.FlowType); getErr == nil && existing != nil {
				return models.ErrVersionConflict
			}
			slog.Error("PostgresStore SaveFlowState insert failed", "error", err, "participantID", fs.ParticipantID)
			return fmt.Errorf("failed to insert flow state for %s: %w", fs.ParticipantID, err)
		}
		return nil
	}
	res, err := s.db.Exec(`UPDATE flow_states SET current_state = $1, version = version + 1, updated_at = $2 WHERE participant_id = $3 AND flow_type = $4 AND version = $5`,
		fs.CurrentState, now, fs.ParticipantID, string(fs.FlowType), fs.Version)
	if err != nil {
		slog.Error("PostgresStore SaveFlowState update failed", "error", err, "participantID", fs.ParticipantID)
		return fmt.Errorf("failed to update flow state for %s: %w", fs.ParticipantID, err)
	}
	return requireRowAffected(res, "flow state", fs.ParticipantID)
}

// DeleteFlowState removes a flow cursor.
func (s *PostgresStore) DeleteFlowState(participantID string, flowType models.FlowType) error {
	_, err := s.db.Exec(`DELETE FROM flow_states WHERE participant_id = $1 AND flow_type = $2`, participantID, string(flowType))
	if err != nil {
		slog.Error("PostgresStore DeleteFlowState failed", "error", err, "participantID", participantID)
		return fmt.Errorf("failed to delete flow state for %s: %w", participantID, err)
	}
	return nil
}

// GetProfile retrieves a profile record, or nil when absent.
func (s *PostgresStore) GetProfile(participantID string) (*models.ProfileRecord, error) {
	var r models.ProfileRecord
	var profileJSON string
	err := s.db.QueryRow(`SELECT participant_id, profile, version, created_at, updated_at FROM profiles WHERE participant_id = $1`, participantID).
		Scan(&r.ParticipantID, &profileJSON, &r.Version, &r.CreatedAt, &r.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		slog.Error("PostgresStore GetProfile failed", "error", err, "participantID", participantID)
		return nil, fmt.Errorf("failed to query profile for %s: %w", participantID, err)
	}
	if err := json.Unmarshal([]byte(profileJSON), &r.Profile); err != nil {
		slog.Error("PostgresStore GetProfile unmarshal failed", "error", err, "participantID", participantID)
		return nil, fmt.Errorf("failed to decode profile for %s: %w", participantID, err)
	}
	return &r, nil
}

// SaveProfile inserts or updates a profile record with a version check.
func (s *PostgresStore) SaveProfile(r models.ProfileRecord) error {
	profileJSON, err := json.Marshal(r.Profile)
	if err != nil {
		return fmt.Errorf("failed to encode profile for %s: %w", r.ParticipantID, err)
	}
	now := time.Now()
	if r.Version == 0 {
		_, err := s.db.Exec(`INSERT INTO profiles (participant_id, profile, version, created_at, updated_at) VALUES ($1, $2, 1, $3, $4)`,
			r.ParticipantID, string(profileJSON), now, now)
		if err != nil {
			if existing, getErr := s.GetProfile(r.ParticipantID); getErr == nil && existing != nil {
				return models.ErrVersionConflict
			}
			slog.Error("PostgresStore SaveProfile insert failed", "error", err, "participantID", r.ParticipantID)
			return fmt.Errorf("failed to insert profile for %s: %w", r.ParticipantID, err)
		}
		return nil
	}
	res, err := s.db.Exec(`UPDATE profiles SET profile = $1, version = version + 1, updated_at = $2 WHERE participant_id = $3 AND version = $4`,
		string(profileJSON), now, r.ParticipantID, r.Version)
	if err != nil {
		slog.Error("PostgresStore SaveProfile update failed", "error", err, "participantID", r.ParticipantID)
		return fmt.Errorf("failed to update profile for %s: %w", r.ParticipantID, err)
	}
	return requireRowAffected(res, "profile", r.ParticipantID)
}

// Close closes the underlying database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
