// database/source_store.go
package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/tapline/barmatrix/models"
)

// SourceStore tracks guide feed versions: when each provider's feed was
// last checked, downloaded and what publish stamp it carried.
type SourceStore struct{}

// LogGuideFeedVersion inserts or updates the version row for one source.
func (SourceStore) LogGuideFeedVersion(
	sourceName string,
	sourceURL string,
	downloadedFilename string,
	publishedAt *time.Time,
	lastCheckedAt *time.Time,
	lastDownloadedAt *time.Time,
) error {
	if DB == nil {
		return fmt.Errorf("database connection is not initialized")
	}

	var sqlPublished, sqlChecked, sqlDownloaded sql.NullTime
	if publishedAt != nil {
		sqlPublished = sql.NullTime{Time: *publishedAt, Valid: true}
	}
	if lastCheckedAt != nil {
		sqlChecked = sql.NullTime{Time: *lastCheckedAt, Valid: true}
	}
	if lastDownloadedAt != nil {
		sqlDownloaded = sql.NullTime{Time: *lastDownloadedAt, Valid: true}
	}

	_, err := DB.Exec(`
		INSERT INTO guide_feed_versions (
			source_name, source_file_url, last_downloaded_filename,
			published_at, last_checked_at, last_downloaded_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, NOW())
		ON DUPLICATE KEY UPDATE
			source_file_url = VALUES(source_file_url),
			last_downloaded_filename = VALUES(last_downloaded_filename),
			published_at = VALUES(published_at),
			last_checked_at = VALUES(last_checked_at),
			last_downloaded_at = VALUES(last_downloaded_at),
			updated_at = NOW()
	`, sourceName, sourceURL, downloadedFilename, sqlPublished, sqlChecked, sqlDownloaded)
	if err != nil {
		return fmt.Errorf("failed to upsert guide feed version for %s: %w", sourceName, err)
	}
	return nil
}

// GetGuideFeedVersion returns the stored version row for a source, or nil
// if the source has never been ingested.
func (SourceStore) GetGuideFeedVersion(sourceName string) (*models.GuideFeedVersion, error) {
	if DB == nil {
		return nil, fmt.Errorf("database connection is not initialized")
	}

	var v models.GuideFeedVersion
	var filename sql.NullString
	var published, checked, downloaded sql.NullTime

	err := DB.QueryRow(`
		SELECT id, source_name, source_file_url, last_downloaded_filename,
		       published_at, last_checked_at, last_downloaded_at, created_at, updated_at
		FROM guide_feed_versions
		WHERE source_name = ?
	`, sourceName).Scan(
		&v.ID, &v.SourceName, &v.SourceFileURL, &filename,
		&published, &checked, &downloaded, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query guide feed version for %s: %w", sourceName, err)
	}

	if filename.Valid {
		v.LastDownloadedFilename = filename.String
	}
	if published.Valid {
		v.PublishedAt = &published.Time
	}
	if checked.Valid {
		v.LastCheckedAt = &checked.Time
	}
	if downloaded.Valid {
		v.LastDownloadedAt = &downloaded.Time
	}
	return &v, nil
}
