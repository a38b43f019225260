// feed/csv_downloader.go
package feed

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/tapline/barmatrix/config"
)

// DownloadFile downloads a file from a URL and saves it to a local path.
// It returns an error if any step fails.
func DownloadFile(url string, localSavePath string) error {
	log.Printf("Attempting to download file from URL: %s to local path: %s\n", url, localSavePath)

	client := http.Client{
		Timeout: 30 * time.Second,
	}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("failed to make GET request to %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to download file from %s: received status code %d", url, resp.StatusCode)
	}

	dir := filepath.Dir(localSavePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	outFile, err := os.Create(localSavePath)
	if err != nil {
		return fmt.Errorf("failed to create local file %s: %w", localSavePath, err)
	}
	defer outFile.Close()

	_, err = io.Copy(outFile, resp.Body)
	if err != nil {
		return fmt.Errorf("failed to copy downloaded content to %s: %w", localSavePath, err)
	}

	log.Printf("Successfully downloaded %s to %s\n", url, localSavePath)
	return nil
}

// DownloadNationalGuideCsv downloads the national guide CSV feed using the
// URL and local path from config. Returns the local path of the file.
func DownloadNationalGuideCsv() (string, error) {
	feedCfg := config.AppConfig.GuideFeeds.National
	if feedCfg.CsvURL == "" {
		return "", fmt.Errorf("national guide CSV URL is not configured")
	}
	if feedCfg.LocalPath == "" {
		return "", fmt.Errorf("local save path for national guide CSV is not configured")
	}

	if err := DownloadFile(feedCfg.CsvURL, feedCfg.LocalPath); err != nil {
		return "", fmt.Errorf("failed to download national guide CSV: %w", err)
	}
	return feedCfg.LocalPath, nil
}

// DownloadRegionalGuideCsv downloads the regional guide CSV feed using the
// URL and local path from config. Returns the local path of the file.
func DownloadRegionalGuideCsv() (string, error) {
	feedCfg := config.AppConfig.GuideFeeds.Regional
	if feedCfg.CsvURL == "" {
		return "", fmt.Errorf("regional guide CSV URL is not configured")
	}
	if feedCfg.LocalPath == "" {
		return "", fmt.Errorf("local save path for regional guide CSV is not configured")
	}

	if err := DownloadFile(feedCfg.CsvURL, feedCfg.LocalPath); err != nil {
		return "", fmt.Errorf("failed to download regional guide CSV: %w", err)
	}
	return feedCfg.LocalPath, nil
}
