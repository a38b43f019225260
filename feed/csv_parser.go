// feed/csv_parser.go
package feed

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"

	"github.com/jszwec/csvutil"

	"github.com/tapline/barmatrix/models"
	"github.com/tapline/barmatrix/utils"
)

// ParseScheduleCsv takes an io.Reader containing a guide provider's CSV
// feed and returns a slice of ScheduleEntry structs.
//
// csvutil maps the header row onto the `csv:"..."` tags in
// models.ScheduleEntry; Start/End columns must be RFC 3339 timestamps.
// Channel numbers are normalized here so the stored rows join against
// tuned-channel lookups no matter how the provider formats them.
func ParseScheduleCsv(reader io.Reader) ([]models.ScheduleEntry, error) {
	var entries []models.ScheduleEntry

	decoder, err := csvutil.NewDecoder(csv.NewReader(reader))
	if err != nil {
		return nil, fmt.Errorf("failed to create CSV decoder for schedule feed: %w", err)
	}

	if err := decoder.Decode(&entries); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to decode schedule CSV data: %w", err)
	}

	for i := range entries {
		entries[i].ChannelNumber = utils.NormalizeChannelNumber(entries[i].ChannelNumber)
	}

	log.Printf("Successfully parsed %d schedule entries from CSV.\n", len(entries))
	return entries, nil
}
