package store

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/arielabs/arie/internal/models"
)

// requireRowAffected translates an UPDATE that matched no row into a version
// conflict. Both SQL backends use it after optimistic-concurrency updates.
func requireRowAffected(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows for %s %s: %w", kind, id, err)
	}
	if n == 0 {
		slog.Warn("Store detected stale save", "kind", kind, "id", id)
		return models.ErrVersionConflict
	}
	return nil
}
