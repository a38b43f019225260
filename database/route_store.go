// database/route_store.go
package database

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/tapline/barmatrix/models"
)

// RouteStore persists matrix route assignments. It satisfies the
// services.RouteStore interface against the shared connection pool.
type RouteStore struct{}

// SaveManualRoute upserts the route for an output after a human-initiated
// switch: the input assignment and all three override columns are rewritten.
// Re-issuing a manual command resets the window; it never accumulates.
func (RouteStore) SaveManualRoute(outputNumber, inputNumber int, overrideUntil time.Time, changedBy string, changedAt time.Time) error {
	if DB == nil {
		return fmt.Errorf("database connection is not initialized")
	}

	_, err := DB.Exec(`
		INSERT INTO matrix_routes (
			output_number, input_number, manual_override_until,
			last_manual_change_by, last_manual_change_at, updated_at
		) VALUES (?, ?, ?, ?, ?, NOW())
		ON DUPLICATE KEY UPDATE
			input_number = VALUES(input_number),
			manual_override_until = VALUES(manual_override_until),
			last_manual_change_by = VALUES(last_manual_change_by),
			last_manual_change_at = VALUES(last_manual_change_at),
			updated_at = NOW()
	`, outputNumber, inputNumber, overrideUntil, changedBy, changedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert manual route for output %d: %w", outputNumber, err)
	}
	return nil
}

// SaveAutomatedRoute upserts the input assignment for an output without
// touching the override columns. A system/scheduler switch must not extend
// or clear whatever manual override is already on the row.
func (RouteStore) SaveAutomatedRoute(outputNumber, inputNumber int) error {
	if DB == nil {
		return fmt.Errorf("database connection is not initialized")
	}

	_, err := DB.Exec(`
		INSERT INTO matrix_routes (output_number, input_number, updated_at)
		VALUES (?, ?, NOW())
		ON DUPLICATE KEY UPDATE
			input_number = VALUES(input_number),
			updated_at = NOW()
	`, outputNumber, inputNumber)
	if err != nil {
		return fmt.Errorf("failed to upsert automated route for output %d: %w", outputNumber, err)
	}
	return nil
}

// GetRoute returns the current route for an output, or nil if the output
// has never been routed.
func (RouteStore) GetRoute(outputNumber int) (*models.MatrixRoute, error) {
	if DB == nil {
		return nil, fmt.Errorf("database connection is not initialized")
	}

	var r models.MatrixRoute
	var overrideUntil, lastChangeAt sql.NullTime
	var lastChangeBy sql.NullString

	err := DB.QueryRow(`
		SELECT output_number, input_number, manual_override_until,
		       last_manual_change_by, last_manual_change_at, updated_at
		FROM matrix_routes
		WHERE output_number = ?
	`, outputNumber).Scan(
		&r.OutputNumber, &r.InputNumber, &overrideUntil,
		&lastChangeBy, &lastChangeAt, &r.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query route for output %d: %w", outputNumber, err)
	}

	if overrideUntil.Valid {
		r.ManualOverrideUntil = &overrideUntil.Time
	}
	if lastChangeBy.Valid {
		r.LastManualChangeBy = lastChangeBy.String
	}
	if lastChangeAt.Valid {
		r.LastManualChangeAt = &lastChangeAt.Time
	}
	return &r, nil
}

// ListRoutes returns every current route, ordered by output number.
func (RouteStore) ListRoutes() ([]models.MatrixRoute, error) {
	if DB == nil {
		return nil, fmt.Errorf("database connection is not initialized")
	}

	rows, err := DB.Query(`
		SELECT output_number, input_number, manual_override_until,
		       last_manual_change_by, last_manual_change_at, updated_at
		FROM matrix_routes
		ORDER BY output_number
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query routes: %w", err)
	}
	defer rows.Close()

	var routes []models.MatrixRoute
	for rows.Next() {
		var r models.MatrixRoute
		var overrideUntil, lastChangeAt sql.NullTime
		var lastChangeBy sql.NullString
		err := rows.Scan(
			&r.OutputNumber, &r.InputNumber, &overrideUntil,
			&lastChangeBy, &lastChangeAt, &r.UpdatedAt,
		)
		if err != nil {
			log.Printf("ERROR: Failed to scan route row: %v", err)
			continue
		}
		if overrideUntil.Valid {
			r.ManualOverrideUntil = &overrideUntil.Time
		}
		if lastChangeBy.Valid {
			r.LastManualChangeBy = lastChangeBy.String
		}
		if lastChangeAt.Valid {
			r.LastManualChangeAt = &lastChangeAt.Time
		}
		routes = append(routes, r)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating route rows: %w", err)
	}
	return routes, nil
}

// ClearExpiredOverrides nulls out manual_override_until on every route
// whose window has passed, returning automated control. Returns how many
// rows were reverted.
func (RouteStore) ClearExpiredOverrides(now time.Time) (int64, error) {
	if DB == nil {
		return 0, fmt.Errorf("database connection is not initialized")
	}

	res, err := DB.Exec(`
		UPDATE matrix_routes
		SET manual_override_until = NULL, updated_at = NOW()
		WHERE manual_override_until IS NOT NULL
		  AND manual_override_until <= ?
	`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to clear expired overrides: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows for override sweep: %w", err)
	}
	return n, nil
}

// AppendChangeLog inserts one audit row. Callers treat failures here as
// non-fatal; the live route row is the source of truth.
func (RouteStore) AppendChangeLog(entry models.RouteChangeLogEntry) error {
	if DB == nil {
		return fmt.Errorf("database connection is not initialized")
	}

	var overrideUntil sql.NullTime
	if entry.OverrideUntil != nil {
		overrideUntil = sql.NullTime{Time: *entry.OverrideUntil, Valid: true}
	}

	_, err := DB.Exec(`
		INSERT INTO route_change_log (
			id, output_number, input_number, source, changed_by, override_until, changed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`, entry.ID, entry.OutputNumber, entry.InputNumber, string(entry.Source), entry.ChangedBy, overrideUntil, entry.ChangedAt)
	if err != nil {
		return fmt.Errorf("failed to insert route change log entry %s: %w", entry.ID, err)
	}
	return nil
}
