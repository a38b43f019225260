// feed/publish_stamp_checker.go
package feed

import (
	"fmt"
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/tapline/barmatrix/config"
	"github.com/tapline/barmatrix/models"
)

// Guide providers publish the feed's freshness on their schedule page as
// "Published MM/DD/YYYY at HH:MM UTC".
var publishStampRegex = regexp.MustCompile(`Published\s+(\d{2}/\d{2}/\d{4})\s+at\s+(\d{2}:\d{2})`)

const stampLayout = "01/02/2006 15:04"

// parsePublishStampString extracts the publish time from a scraped text
// block using the regex above.
func parsePublishStampString(textToSearch string) (publishedAt time.Time, rawMatch string, err error) {
	matches := publishStampRegex.FindStringSubmatch(textToSearch)
	if len(matches) < 3 {
		err = fmt.Errorf("could not find 'Published ... at ...' pattern in provided text block. Text searched: %s", textToSearch)
		return
	}

	rawMatch = matches[0]
	publishedAt, err = time.Parse(stampLayout, matches[1]+" "+matches[2])
	if err != nil {
		err = fmt.Errorf("failed to parse publish stamp '%s %s': %w", matches[1], matches[2], err)
		return
	}
	publishedAt = publishedAt.UTC()
	return
}

// GetPublishStampForSource scrapes the provider page, searches the given
// container for the publish stamp, and returns it.
func GetPublishStampForSource(sourceName, pageURL, containerSelector string) (*models.GuideFeedPublishInfo, error) {
	log.Printf("Feed: Checking publish stamp for %s from %s (container: '%s')\n", sourceName, pageURL, containerSelector)

	client := http.Client{Timeout: 20 * time.Second}
	res, err := client.Get(pageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to get URL %s: %w", pageURL, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to get URL %s: status code %d", pageURL, res.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML from %s: %w", pageURL, err)
	}

	info, err := FindPublishStampInDocument(doc, sourceName, containerSelector)
	if err != nil {
		return nil, fmt.Errorf("publish stamp not found on %s: %w", pageURL, err)
	}
	return info, nil
}

// FindPublishStampInDocument searches an already-parsed document for the
// publish stamp. Split out from the HTTP fetch so it can be exercised
// against static HTML.
func FindPublishStampInDocument(doc *goquery.Document, sourceName, containerSelector string) (*models.GuideFeedPublishInfo, error) {
	if containerSelector == "" {
		log.Printf("WARN Feed: No CSS selector provided for %s publish stamp container, using 'body'.", sourceName)
		containerSelector = "body"
	}

	var foundStampText string
	doc.Find(containerSelector).EachWithBreak(func(i int, sel *goquery.Selection) bool {
		text := strings.TrimSpace(sel.Text())
		if publishStampRegex.MatchString(text) {
			foundStampText = text
			return false
		}
		return true
	})

	if foundStampText == "" {
		return nil, fmt.Errorf("no element matching '%s' carried a 'Published ... at ...' stamp", containerSelector)
	}

	publishedAt, rawStr, err := parsePublishStampString(foundStampText)
	if err != nil {
		return nil, fmt.Errorf("failed to parse publish stamp for %s: %w", sourceName, err)
	}

	log.Printf("Feed: Found publish stamp for %s: %s (Raw: '%s')\n",
		sourceName, publishedAt.Format(time.RFC3339), rawStr)

	return &models.GuideFeedPublishInfo{
		SourceName:   sourceName,
		PublishedAt:  publishedAt,
		RawStampText: rawStr,
		LastChecked:  time.Now().UTC(),
	}, nil
}

// CheckNationalGuidePublishStamp fetches the publish stamp for the
// national guide source using URLs and selector from config.
func CheckNationalGuidePublishStamp() (*models.GuideFeedPublishInfo, error) {
	feedCfg := config.AppConfig.GuideFeeds.National
	return GetPublishStampForSource("NationalGuide", feedCfg.PageURL, feedCfg.StampSelector)
}

// CheckRegionalGuidePublishStamp fetches the publish stamp for the
// regional guide source using URLs and selector from config.
func CheckRegionalGuidePublishStamp() (*models.GuideFeedPublishInfo, error) {
	feedCfg := config.AppConfig.GuideFeeds.Regional
	return GetPublishStampForSource("RegionalGuide", feedCfg.PageURL, feedCfg.StampSelector)
}
