// feed/publish_stamp_checker_test.go
package feed

import (
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePublishStampString(t *testing.T) {
	t.Run("extracts the stamp", func(t *testing.T) {
		publishedAt, raw, err := parsePublishStampString("Schedule feed. Published 03/14/2026 at 06:30 UTC. Subject to change.")
		require.NoError(t, err)
		assert.Equal(t, "Published 03/14/2026 at 06:30", raw)
		assert.Equal(t, time.Date(2026, 3, 14, 6, 30, 0, 0, time.UTC), publishedAt)
	})

	t.Run("missing pattern is an error", func(t *testing.T) {
		_, _, err := parsePublishStampString("Last refreshed sometime today")
		assert.Error(t, err)
	})
}

func TestFindPublishStampInDocument(t *testing.T) {
	const page = `
<html><body>
  <div class="nav">Sports Guide</div>
  <div class="feed-meta">
    <p>National schedule feed</p>
    <p>Published 03/14/2026 at 06:30 UTC</p>
  </div>
  <div class="footer">Contact us</div>
</body></html>`

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	require.NoError(t, err)

	t.Run("finds the stamp inside the configured container", func(t *testing.T) {
		info, err := FindPublishStampInDocument(doc, "NationalGuide", "div.feed-meta")
		require.NoError(t, err)
		assert.Equal(t, "NationalGuide", info.SourceName)
		assert.Equal(t, time.Date(2026, 3, 14, 6, 30, 0, 0, time.UTC), info.PublishedAt)
		assert.Equal(t, "Published 03/14/2026 at 06:30", info.RawStampText)
		assert.False(t, info.LastChecked.IsZero())
	})

	t.Run("wrong container means no stamp", func(t *testing.T) {
		_, err := FindPublishStampInDocument(doc, "NationalGuide", "div.footer")
		assert.Error(t, err)
	})

	t.Run("empty selector falls back to body", func(t *testing.T) {
		info, err := FindPublishStampInDocument(doc, "NationalGuide", "")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, 3, 14, 6, 30, 0, 0, time.UTC), info.PublishedAt)
	})
}
