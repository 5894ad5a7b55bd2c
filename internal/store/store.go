// Package store provides storage backends for Arie.
//
// It persists participants (welcomed flag), per-script flow state cursors, and
// user profiles. Backends exist for SQLite, PostgreSQL, and in-memory use.
// All saves are guarded by optimistic concurrency: a record must be saved with
// the version it was read at, and a stale save fails with
// models.ErrVersionConflict so duplicate or out-of-order turn delivery cannot
// silently lose updates.
package store

import (
	"strings"

	"github.com/arielabs/arie/internal/models"
)

// Store defines the persistence operations required by the dialogue engine.
type Store interface {
	// GetParticipant retrieves a participant record, or nil when absent.
	GetParticipant(id string) (*models.Participant, error)

	// SaveParticipant inserts or updates a participant record.
	SaveParticipant(p models.Participant) error

	// GetFlowState retrieves the flow cursor for one participant and script,
	// or nil when absent.
	GetFlowState(participantID string, flowType models.FlowType) (*models.FlowState, error)

	// SaveFlowState inserts or updates a flow cursor.
	SaveFlowState(fs models.FlowState) error

	// DeleteFlowState removes the flow cursor for one participant and script.
	DeleteFlowState(participantID string, flowType models.FlowType) error

	// GetProfile retrieves the profile record for a participant, or nil when absent.
	GetProfile(participantID string) (*models.ProfileRecord, error)

	// SaveProfile inserts or updates a profile record.
	SaveProfile(r models.ProfileRecord) error

	// Close releases any underlying resources.
	Close() error
}

// Opts holds configuration options for store backends.
type Opts struct {
	// DSN is the database connection string (file path for SQLite).
	DSN string
}

// Option defines a configuration option for store construction.
type Option func(*Opts)

// WithSQLiteDSN configures an SQLite database file path.
func WithSQLiteDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// WithPostgresDSN configures a PostgreSQL connection string.
func WithPostgresDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// DetectDSNType inspects a DSN and reports "postgres" or "sqlite". File paths
// and anything unrecognized are treated as SQLite.
func DetectDSNType(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") || strings.Contains(dsn, "host=") {
		return "postgres"
	}
	return "sqlite"
}
