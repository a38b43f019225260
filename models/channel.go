// models/channel.go
package models

import "time"

// CurrentChannel is a snapshot of what one matrix input is tuned to.
// The tuning subsystem owns these rows; the override calculator only
// reads them.
type CurrentChannel struct {
	InputNumber   int       `db:"input_number" json:"input_number"`
	ChannelNumber string    `db:"channel_number" json:"channel_number"`
	ChannelName   string    `db:"channel_name" json:"channel_name,omitempty"`
	DeviceType    string    `db:"device_type" json:"device_type,omitempty"` // e.g. "directv", "firetv", "cable"
	LastTuned     time.Time `db:"last_tuned" json:"last_tuned"`
}

// ChannelMetadata is the result of looking a channel up against the
// sports schedule. A nil *ChannelMetadata means "no data at all" and is
// treated the same as a non-event by the duration calculator.
type ChannelMetadata struct {
	ChannelNumber             string `json:"channel_number"`
	IsLiveSportingEvent       bool   `json:"is_live_sporting_event"`
	EstimatedRemainingMinutes *int   `json:"estimated_remaining_minutes,omitempty"`
	EventDescription          string `json:"event_description,omitempty"`
}
