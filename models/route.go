// models/route.go
package models

import "time"

// RouteSource identifies who (or what) triggered a matrix route change.
// It is a closed set: anything else is rejected at the API boundary so the
// persistence branching can switch exhaustively.
type RouteSource string

const (
	SourceBartender   RouteSource = "bartender"
	SourceAIScheduler RouteSource = "ai_scheduler"
	SourceManual      RouteSource = "manual"
	SourceSystem      RouteSource = "system"
)

// Valid reports whether s is one of the recognized route sources.
func (s RouteSource) Valid() bool {
	switch s {
	case SourceBartender, SourceAIScheduler, SourceManual, SourceSystem:
		return true
	}
	return false
}

// IsManual reports whether a route change from this source represents a
// human decision. Manual changes set a manual override window; automated
// sources never touch an existing override.
func (s RouteSource) IsManual() bool {
	return s == SourceBartender || s == SourceManual
}

// MatrixRoute is the live input-to-output assignment for one display.
// At most one row per output; each re-route overwrites it.
type MatrixRoute struct {
	OutputNumber        int        `db:"output_number" json:"output_number"`
	InputNumber         int        `db:"input_number" json:"input_number"`
	ManualOverrideUntil *time.Time `db:"manual_override_until" json:"manual_override_until,omitempty"`
	LastManualChangeBy  string     `db:"last_manual_change_by" json:"last_manual_change_by,omitempty"`
	LastManualChangeAt  *time.Time `db:"last_manual_change_at" json:"last_manual_change_at,omitempty"`
	UpdatedAt           time.Time  `db:"updated_at" json:"updated_at"`
}

// OverrideActive reports whether the route is still inside a manual
// override window at the given instant.
func (r MatrixRoute) OverrideActive(now time.Time) bool {
	return r.ManualOverrideUntil != nil && r.ManualOverrideUntil.After(now)
}

// RouteChangeLogEntry is one append-only audit row per persisted route
// change. IDs are UUIDs generated at write time.
type RouteChangeLogEntry struct {
	ID            string      `db:"id" json:"id"`
	OutputNumber  int         `db:"output_number" json:"output_number"`
	InputNumber   int         `db:"input_number" json:"input_number"`
	Source        RouteSource `db:"source" json:"source"`
	ChangedBy     string      `db:"changed_by" json:"changed_by,omitempty"`
	OverrideUntil *time.Time  `db:"override_until" json:"override_until,omitempty"`
	ChangedAt     time.Time   `db:"changed_at" json:"changed_at"`
}
