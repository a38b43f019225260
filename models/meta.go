// models/meta.go
package models

import "time"

// GuideFeedVersion tracks the freshness of an ingested guide feed source.
type GuideFeedVersion struct {
	ID                     int        `db:"id" json:"id"`
	SourceName             string     `db:"source_name" json:"source_name"` // e.g. "NationalGuide", "RegionalGuide"
	SourceFileURL          string     `db:"source_file_url" json:"source_file_url"`
	LastDownloadedFilename string     `db:"last_downloaded_filename" json:"last_downloaded_filename,omitempty"`
	PublishedAt            *time.Time `db:"published_at" json:"published_at,omitempty"`
	LastCheckedAt          *time.Time `db:"last_checked_at" json:"last_checked_at,omitempty"` // provider page scrape time
	LastDownloadedAt       *time.Time `db:"last_downloaded_at" json:"last_downloaded_at,omitempty"`
	CreatedAt              time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt              time.Time  `db:"updated_at" json:"updated_at"`
}
