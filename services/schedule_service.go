// services/schedule_service.go
package services

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/tapline/barmatrix/config"
	"github.com/tapline/barmatrix/database"
	"github.com/tapline/barmatrix/feed"
	"github.com/tapline/barmatrix/models"
)

var lastKnownPublishStamps = make(map[string]time.Time)

const (
	SourceNationalGuide = "NationalGuide"
	SourceRegionalGuide = "RegionalGuide"
)

// scheduleBatchStore and feedVersionStore are the slices of the database
// package the ingest pipeline writes through; vars so tests can observe
// what the pipeline hands the stores.
type scheduleBatchStore interface {
	SaveScheduleEntries(entries []models.ScheduleEntry, sourceName, sourceFile string) error
}

type feedVersionStore interface {
	GetGuideFeedVersion(sourceName string) (*models.GuideFeedVersion, error)
	LogGuideFeedVersion(sourceName, sourceURL, downloadedFilename string, publishedAt, lastCheckedAt, lastDownloadedAt *time.Time) error
}

var (
	scheduleStore scheduleBatchStore = database.ScheduleStore{}
	sourceStore   feedVersionStore   = database.SourceStore{}
)

// InitLastKnownPublishStamps seeds the in-memory freshness map from the
// guide_feed_versions table at startup.
func InitLastKnownPublishStamps() {
	log.Println("Service: Initializing last known publish stamps for guide feeds...")

	for _, sourceName := range []string{SourceNationalGuide, SourceRegionalGuide} {
		version, err := sourceStore.GetGuideFeedVersion(sourceName)
		if err != nil {
			log.Printf("ERROR Service: Failed to get guide feed version for %s from DB: %v\n", sourceName, err)
			continue
		}
		if version != nil && version.PublishedAt != nil {
			lastKnownPublishStamps[sourceName] = *version.PublishedAt
			log.Printf("INFO Service: Initialized last known %s publish stamp from DB: %s\n",
				sourceName, version.PublishedAt.Format(time.RFC3339))
		} else {
			log.Printf("INFO Service: No existing %s publish stamp found in DB.\n", sourceName)
		}
	}
}

// UpdateScheduleIfNeeded scrapes the provider's publish stamp and
// re-ingests the feed only when the stamp is newer than what was last
// loaded. Scrape failures propagate to the admin caller; nothing is
// guessed here.
func UpdateScheduleIfNeeded(sourceName string) error {
	log.Printf("Service: Checking if update is needed for %s schedule feed...\n", sourceName)

	var publishInfo *models.GuideFeedPublishInfo
	var err error
	switch sourceName {
	case SourceNationalGuide:
		publishInfo, err = feed.CheckNationalGuidePublishStamp()
	case SourceRegionalGuide:
		publishInfo, err = feed.CheckRegionalGuidePublishStamp()
	default:
		return fmt.Errorf("unknown guide feed source name: %s", sourceName)
	}
	if err != nil {
		return fmt.Errorf("failed to scrape publish stamp for %s: %w", sourceName, err)
	}
	if publishInfo == nil {
		return fmt.Errorf("no publish stamp retrieved for %s", sourceName)
	}

	lastKnown, found := lastKnownPublishStamps[sourceName]
	if found && !publishInfo.PublishedAt.After(lastKnown) {
		log.Printf("Service: No update needed for %s; provider stamp %s is not newer than last ingested %s.\n",
			sourceName, publishInfo.PublishedAt.Format(time.RFC3339), lastKnown.Format(time.RFC3339))
		return nil
	}

	log.Printf("Service: Update detected as needed for %s (provider stamp %s).\n",
		sourceName, publishInfo.PublishedAt.Format(time.RFC3339))
	return ForceUpdateSchedule(sourceName, publishInfo)
}

// ForceUpdateSchedule downloads, parses and clear-and-loads one guide
// feed regardless of freshness. A nil publishInfo (manual refresh without
// a stamp check) leaves published_at untouched in memory and NULL in the
// version row for this pass.
func ForceUpdateSchedule(sourceName string, publishInfo *models.GuideFeedPublishInfo) error {
	log.Printf("Service: Forcing update for %s schedule feed...\n", sourceName)

	var downloadFunc func() (string, error)
	var csvURL string
	switch sourceName {
	case SourceNationalGuide:
		csvURL = config.AppConfig.GuideFeeds.National.CsvURL
		downloadFunc = feed.DownloadNationalGuideCsv
	case SourceRegionalGuide:
		csvURL = config.AppConfig.GuideFeeds.Regional.CsvURL
		downloadFunc = feed.DownloadRegionalGuideCsv
	default:
		return fmt.Errorf("unknown guide feed source name for forced update: %s", sourceName)
	}

	localPath, err := downloadFunc()
	if err != nil {
		return fmt.Errorf("failed to download %s CSV: %w", sourceName, err)
	}
	log.Printf("Service: Downloaded %s feed to %s\n", sourceName, localPath)
	defer func() {
		log.Printf("Service: Cleaning up temporary file: %s\n", localPath)
		if err := os.Remove(localPath); err != nil {
			log.Printf("ERROR Service: Failed to remove temporary file %s: %v\n", localPath, err)
		}
	}()

	file, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("failed to open downloaded file %s: %w", localPath, err)
	}
	defer file.Close()

	entries, err := parseScheduleFile(file, sourceName, localPath)
	if err != nil {
		return err
	}

	sourceFileForDB := filepath.Base(localPath)
	var publishedAt, lastCheckedAt *time.Time
	if publishInfo != nil {
		sourceFileForDB = fmt.Sprintf("%s_%s", filepath.Base(localPath), publishInfo.PublishedAt.Format("20060102T1504"))
		publishedAt = &publishInfo.PublishedAt
		lastCheckedAt = &publishInfo.LastChecked
	}

	if err := scheduleStore.SaveScheduleEntries(entries, sourceName, sourceFileForDB); err != nil {
		return fmt.Errorf("failed to save %s schedule entries (source file: %s): %w", sourceName, sourceFileForDB, err)
	}

	downloadedAt := time.Now().UTC()
	if err := sourceStore.LogGuideFeedVersion(sourceName, csvURL, sourceFileForDB, publishedAt, lastCheckedAt, &downloadedAt); err != nil {
		// Version bookkeeping is advisory; the schedule rows are already in.
		log.Printf("WARN Service: Failed to record guide feed version for %s: %v\n", sourceName, err)
	}

	if publishInfo != nil {
		lastKnownPublishStamps[sourceName] = publishInfo.PublishedAt
		log.Printf("Service: Successfully updated %s schedule. New publish stamp in memory: %s\n",
			sourceName, publishInfo.PublishedAt.Format(time.RFC3339))
	} else {
		log.Printf("Service: Successfully updated %s schedule. No publish stamp recorded for this batch.\n", sourceName)
	}
	return nil
}

func parseScheduleFile(r io.Reader, sourceName, localPath string) ([]models.ScheduleEntry, error) {
	entries, err := feed.ParseScheduleCsv(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s CSV from %s: %w", sourceName, localPath, err)
	}
	return entries, nil
}
