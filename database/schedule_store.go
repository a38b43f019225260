// database/schedule_store.go
package database

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/tapline/barmatrix/models"
)

// ScheduleStore persists the sports schedule used by the channel metadata
// lookup.
type ScheduleStore struct{}

// SaveScheduleEntries saves a batch of schedule entries using a "clear and
// load" strategy keyed on sourceName: the whole batch replaces every prior
// batch for that source inside one transaction. sourceName is the stable
// clearing key ("NationalGuide"); sourceFile is the stamped filename kept
// for provenance only, so re-ingests never accumulate stale rows.
func (ScheduleStore) SaveScheduleEntries(entries []models.ScheduleEntry, sourceName, sourceFile string) error {
	if DB == nil {
		return fmt.Errorf("database connection is not initialized")
	}
	if len(entries) == 0 {
		log.Println("No schedule entries provided to save.")
		return nil
	}

	tx, err := DB.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction for schedule entries: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec("DELETE FROM sports_schedule WHERE source_name = ?", sourceName)
	if err != nil {
		return fmt.Errorf("failed to delete old schedule entries for source %s: %w", sourceName, err)
	}
	log.Printf("Cleared existing schedule entries for source: %s\n", sourceName)

	stmt, err := tx.Prepare(`
		INSERT INTO sports_schedule (
			channel_number, league, home_team, away_team,
			start_time, end_time, source_name, source_file, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, NOW())
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare schedule insert statement: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		_, err := stmt.Exec(
			e.ChannelNumber, e.League, e.HomeTeam, e.AwayTeam,
			e.StartTime, e.EndTime, sourceName, sourceFile,
		)
		if err != nil {
			log.Printf("ERROR saving schedule entry: %+v, Error: %v", e, err)
			return fmt.Errorf("failed to execute schedule insert for channel '%s', %s @ %s: %w",
				e.ChannelNumber, e.AwayTeam, e.HomeTeam, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction for schedule entries: %w", err)
	}

	log.Printf("Successfully saved %d schedule entries for source %s (file: %s)\n", len(entries), sourceName, sourceFile)
	return nil
}

// FindLiveEvent returns the event on air on a channel at the given
// instant, or nil if the guide has nothing for it. When rows overlap
// (back-to-back coverage blocks) the one ending last wins, so the
// calculator sees the full remaining window.
func (ScheduleStore) FindLiveEvent(channelNumber string, at time.Time) (*models.ScheduleEntry, error) {
	if DB == nil {
		return nil, fmt.Errorf("database connection is not initialized")
	}

	var e models.ScheduleEntry
	err := DB.QueryRow(`
		SELECT id, channel_number, league, home_team, away_team,
		       start_time, end_time, source_name, source_file, created_at, updated_at
		FROM sports_schedule
		WHERE channel_number = ?
		  AND start_time <= ?
		  AND end_time > ?
		ORDER BY end_time DESC
		LIMIT 1
	`, channelNumber, at, at).Scan(
		&e.ID, &e.ChannelNumber, &e.League, &e.HomeTeam, &e.AwayTeam,
		&e.StartTime, &e.EndTime, &e.SourceName, &e.SourceFile, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query live event for channel %s: %w", channelNumber, err)
	}
	return &e, nil
}
