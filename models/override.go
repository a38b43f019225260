// models/override.go
package models

import "time"

// Reasons attached to an OverrideDecision. These go back to the caller
// verbatim so the bar UI can explain why a TV is locked for however long.
const (
	ReasonLiveEventKnownRemaining   = "live sporting event, using remaining broadcast time plus buffer"
	ReasonLiveEventUnknownRemaining = "live sporting event, remaining time unknown, using long default"
	ReasonNoEventData               = "no event data for channel, using fallback duration"
)

// OverrideDecision is the computed manual-override window for one route
// change. Ephemeral: computed per request, never persisted as-is.
type OverrideDecision struct {
	DurationMs      int64  `json:"duration_ms"`
	DurationMinutes int    `json:"duration_minutes"`
	Reason          string `json:"reason"`
}

// Duration returns the decision as a time.Duration.
func (d OverrideDecision) Duration() time.Duration {
	return time.Duration(d.DurationMs) * time.Millisecond
}
