// Package store provides storage backends for Arie.
//
// This file implements the SQLite-backed store.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "embed"

	"github.com/arielabs/arie/internal/models"
	_ "github.com/mattn/go-sqlite3"
)

// DefaultDirPermissions defines the default permissions for database directories.
const DefaultDirPermissions = 0755

//go:embed migrations_sqlite.sql
var sqliteMigrations string

// SQLiteStore is a Store backed by an SQLite database file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store with the given DSN.
// The DSN should be a file path to the SQLite database file.
// If the directory doesn't exist, it will be created.
func NewSQLiteStore(opts ...Option) (*SQLiteStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewSQLiteStore invoked", "DSN_set", cfg.DSN != "")

	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("SQLiteStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	// Ensure the directory exists
	dir := filepath.Dir(dsn)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		slog.Error("Failed to create database directory", "error", err, "dir", dir)
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		slog.Error("Failed to open SQLite connection", "error", err)
		return nil, err
	}
	if err := db.Ping(); err != nil {
		slog.Error("SQLite ping failed", "error", err)
		return nil, err
	}

	// Run migrations to ensure tables exist
	if _, err := db.Exec(sqliteMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("SQLite migrations applied successfully")

	return &SQLiteStore{db: db}, nil
}

// GetParticipant retrieves a participant record, or nil when absent.
func (s *SQLiteStore) GetParticipant(id string) (*models.Participant, error) {
	var p models.Participant
	err := s.db.QueryRow(`SELECT id, welcomed, version, created_at, updated_at FROM participants WHERE id = ?`, id).
		Scan(&p.ID, &p.Welcomed, &p.Version, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		slog.Error("SQLiteStore GetParticipant failed", "error", err, "id", id)
		return nil, fmt.Errorf("failed to query participant %s: %w", id, err)
	}
	return &p, nil
}

// SaveParticipant inserts or updates a participant record with a version check.
func (s *SQLiteStore) SaveParticipant(p models.Participant) error {
	now := time.Now()
	if p.Version == 0 {
		_, err := s.db.Exec(`INSERT INTO participants (id, welcomed, version, created_at, updated_at) VALUES (?, ?, 1, ?, ?)`,
			p.ID, p.Welcomed, now, now)
		if err != nil {
			if existing, getErr := s.GetParticipant(p.ID); getErr == nil && existing != nil {
				return models.ErrVersionConflict
			}
			slog.Error("SQLiteStore SaveParticipant insert failed", "error", err, "id", p.ID)
			return fmt.Errorf("failed to insert participant %s: %w", p.ID, err)
		}
		return nil
	}
	res, err := s.db.Exec(`UPDATE participants SET welcomed = ?, version = version + 1, updated_at = ? WHERE id = ? AND version = ?`,
		p.Welcomed, now, p.ID, p.Version)
	if err != nil {
		slog.Error("SQLiteStore SaveParticipant update failed", "error", err, "id", p.ID)
		return fmt.Errorf("failed to update participant %s: %w", p.ID, err)
	}
	return requireRowAffected(res, "participant", p.ID)
}

// GetFlowState retrieves a flow cursor, or nil when absent.
func (s *SQLiteStore) GetFlowState(participantID string, flowType models.FlowType) (*models.FlowState, error) {
	var fs models.FlowState
	err := s.db.QueryRow(`SELECT participant_id, flow_type, current_state, version, created_at, updated_at FROM flow_states WHERE participant_id = ? AND flow_type = ?`,
		participantID, string(flowType)).
		Scan(&fs.ParticipantID, &fs.FlowType, &fs.CurrentState, &fs.Version, &fs.CreatedAt, &fs.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		slog.Error("SQLiteStore GetFlowState failed", "error", err, "participantID", participantID, "flowType", flowType)
		return nil, fmt.Errorf("failed to query flow state for %s: %w", participantID, err)
	}
	return &fs, nil
}

// SaveFlowState inserts or updates a flow cursor with a version check.
func (s *SQLiteStore) SaveFlowState(fs models.FlowState) error {
	now := time.Now()
	if fs.Version == 0 {
		_, err := s.db.Exec(`INSERT INTO flow_states (participant_id, flow_type, current_state, version, created_at, updated_at) VALUES (?, ?, ?, 1, ?, ?)`,
			fs.ParticipantID, string(fs.FlowType), fs.CurrentState, now, now)
		if err != nil {
			if existing, getErr := s.GetFlowState(fs.ParticipantID, fs.FlowType); getErr == nil && existing != nil {
				return models.ErrVersionConflict
			}
			slog.Error("SQLiteStore SaveFlowState insert failed", "error", err, "participantID", fs.ParticipantID)
			return fmt.Errorf("failed to insert flow state for %s: %w", fs.ParticipantID, err)
		}
		return nil
	}
	res, err := s.db.Exec(`UPDATE flow_states SET current_state = ?, version = version + 1, updated_at = ? WHERE participant_id = ? AND flow_type = ? AND version = ?`,
		fs.CurrentState, now, fs.ParticipantID, string(fs.FlowType), fs.Version)
	if err != nil {
		slog.Error("SQLiteStore SaveFlowState update failed", "error", err, "participantID", fs.ParticipantID)
		return fmt.Errorf("failed to update flow state for %s: %w", fs.ParticipantID, err)
	}
	return requireRowAffected(res, "flow state", fs.ParticipantID)
}

// DeleteFlowState removes a flow cursor.
func (s *SQLiteStore) DeleteFlowState(participantID string, flowType models.FlowType) error {
	_, err := s.db.Exec(`DELETE FROM flow_states WHERE participant_id = ? AND flow_type = ?`, participantID, string(flowType))
	if err != nil {
		slog.Error("SQLiteStore DeleteFlowState failed", "error", err, "participantID", participantID)
		return fmt.Errorf("failed to delete flow state for %s: %w", participantID, err)
	}
	return nil
}

// GetProfile retrieves a profile record, or nil when absent.
func (s *SQLiteStore) GetProfile(participantID string) (*models.ProfileRecord, error) {
	var r models.ProfileRecord
	var profileJSON string
	err := s.db.QueryRow(`SELECT participant_id, profile, version, created_at, updated_at FROM profiles WHERE participant_id = ?`, participantID).
		Scan(&r.ParticipantID, &profileJSON, &r.Version, &r.CreatedAt, &r.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		slog.Error("SQLiteStore GetProfile failed", "error", err, "participantID", participantID)
		return nil, fmt.Errorf("failed to query profile for %s: %w", participantID, err)
	}
	if err := json.Unmarshal([]byte(profileJSON), &r.Profile); err != nil {
		slog.Error("SQLiteStore GetProfile unmarshal failed", "error", err, "participantID", participantID)
		return nil, fmt.Errorf("failed to decode profile for %s: %w", participantID, err)
	}
	return &r, nil
}

// SaveProfile inserts or updates a profile record with a version check.
func (s *SQLiteStore) SaveProfile(r models.ProfileRecord) error {
	profileJSON, err := json.Marshal(r.Profile)
	if err != nil {
		return fmt.Errorf("failed to encode profile for %s: %w", r.ParticipantID, err)
	}
	now := time.Now()
	if r.Version == 0 {
		_, err := s.db.Exec(`INSERT INTO profiles (participant_id, profile, version, created_at, updated_at) VALUES (?, ?, 1, ?, ?)`,
			r.ParticipantID, string(profileJSON), now, now)
		if err != nil {
			if existing, getErr := s.GetProfile(r.ParticipantID); getErr == nil && existing != nil {
				return models.ErrVersionConflict
			}
			slog.Error("SQLiteStore SaveProfile insert failed", "error", err, "participantID", r.ParticipantID)
			return fmt.Errorf("failed to insert profile for %s: %w", r.ParticipantID, err)
		}
		return nil
	}
	res, err := s.db.Exec(`UPDATE profiles SET profile = ?, version = version + 1, updated_at = ? WHERE participant_id = ? AND version = ?`,
		string(profileJSON), now, r.ParticipantID, r.Version)
	if err != nil {
		slog.Error("SQLiteStore SaveProfile update failed", "error", err, "participantID", r.ParticipantID)
		return fmt.Errorf("failed to update profile for %s: %w", r.ParticipantID, err)
	}
	return requireRowAffected(res, "profile", r.ParticipantID)
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
