// models/schedule.go
package models

import (
	"fmt"
	"time"
)

// ScheduleEntry represents one game row from a guide provider's CSV feed.
// CSV tags match the provider headers exactly; start/end times in the feed
// are RFC 3339.
type ScheduleEntry struct {
	ID int64 `db:"id" csv:"-"`

	ChannelNumber string    `csv:"Channel" db:"channel_number"`
	League        string    `csv:"League" db:"league"`
	HomeTeam      string    `csv:"Home" db:"home_team"`
	AwayTeam      string    `csv:"Away" db:"away_team"`
	StartTime     time.Time `csv:"Start" db:"start_time"`
	EndTime       time.Time `csv:"End" db:"end_time"`

	// Database bookkeeping, not in the CSV. SourceName is the stable
	// clear-and-load key; SourceFile records which stamped download the
	// row came from.
	SourceName string    `csv:"-" db:"source_name"`
	SourceFile string    `csv:"-" db:"source_file"`
	CreatedAt  time.Time `csv:"-" db:"created_at"`
	UpdatedAt  time.Time `csv:"-" db:"updated_at"`
}

// Description renders a short human label, e.g. "NFL: Bills @ Chiefs".
func (e ScheduleEntry) Description() string {
	if e.AwayTeam == "" && e.HomeTeam == "" {
		return e.League
	}
	return fmt.Sprintf("%s: %s @ %s", e.League, e.AwayTeam, e.HomeTeam)
}

// LiveAt reports whether the event is on air at the given instant.
func (e ScheduleEntry) LiveAt(now time.Time) bool {
	return !now.Before(e.StartTime) && now.Before(e.EndTime)
}

// RemainingMinutes returns the whole minutes of broadcast left at the
// given instant, truncated toward zero. Negative if the event is over.
func (e ScheduleEntry) RemainingMinutes(now time.Time) int {
	return int(e.EndTime.Sub(now).Minutes())
}

// GuideFeedPublishInfo holds the scraped publish stamp for a guide feed
// source page, used to decide whether a re-ingest is due.
type GuideFeedPublishInfo struct {
	SourceName   string
	PublishedAt  time.Time
	RawStampText string
	LastChecked  time.Time
}
