package collectors

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const gmkURL = "https://gmk.center/en/news/"

const gmkArchive = `<html><body>
<div class="news-archive-list archive-main-news">
  <div class="day-date">Tuesday 10.06.2025</div>
  <ul class="archive-list">
    <li><a href="/en/news/steelmakers-raise-output-on-strong-orders/"><span class="title-post">Steelmakers raise output on strong order books</span></a></li>
    <li><a href="/en/news/iron-ore-prices-stabilize-after-volatile-week/"><span class="title-post">Iron ore prices stabilize after volatile week</span></a></li>
  </ul>
  <div class="day-date">Monday 9.06.2025</div>
  <ul class="archive-list">
    <li><a href="/en/news/scrap-exports-rebound-in-may/">Scrap exports rebound in May, customs data shows</a></li>
  </ul>
  <div class="day-date">Friday 6.06.2025</div>
  <ul class="archive-list">
    <li><a href="/en/news/old-story-from-last-week/"><span class="title-post">Old story from last week stays out of the report</span></a></li>
  </ul>
</div>
</body></html>`

func newGMKForTest(client HTTPClient, now time.Time, windowHours float64) *gmkFetcher {
	f := NewGMKFetcher(client).(*gmkFetcher)
	f.now = func() time.Time { return now }
	f.window = func(time.Time) float64 { return windowHours }
	return f
}

func TestGMKFetch(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	client := newFakeClient()
	client.serve(gmkURL, gmkArchive)

	f := newGMKForTest(client, now, 24)
	articles, err := f.Fetch(context.Background(), Source{ID: SourceGMK, URLs: []string{gmkURL}})
	require.NoError(t, err)
	require.Len(t, articles, 3)

	assert.Equal(t, "GMK Center", articles[0].Site)
	assert.Equal(t, "Steelmakers raise output on strong order books", articles[0].Headline)
	assert.Equal(t, "https://gmk.center/en/news/steelmakers-raise-output-on-strong-orders/", articles[0].Link)
	assert.Equal(t, "Tuesday 10.06.2025", articles[0].Timestamp)

	// anchor without a title span falls back to the link text
	assert.Equal(t, "Scrap exports rebound in May, customs data shows", articles[2].Headline)
	assert.Equal(t, "Monday 9.06.2025", articles[2].Timestamp)
}

func TestGMKFetchWiderWindow(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	client := newFakeClient()
	client.serve(gmkURL, gmkArchive)

	// a 96 hour window reaches back to the Friday group
	f := newGMKForTest(client, now, 96)
	articles, err := f.Fetch(context.Background(), Source{ID: SourceGMK, URLs: []string{gmkURL}})
	require.NoError(t, err)
	assert.Len(t, articles, 4)
}

func TestGMKFetchNothingInWindow(t *testing.T) {
	now := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
	client := newFakeClient()
	client.serve(gmkURL, gmkArchive)

	f := newGMKForTest(client, now, 24)
	_, err := f.Fetch(context.Background(), Source{ID: SourceGMK, URLs: []string{gmkURL}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no records")
}

func TestGMKDatePatterns(t *testing.T) {
	now := time.Date(2025, 6, 9, 8, 0, 0, 0, time.UTC)
	patterns := gmkDatePatterns(now, 72)

	assert.Contains(t, patterns, "Monday 9.06.2025")
	assert.Contains(t, patterns, "Monday 09.06.2025")
	assert.Contains(t, patterns, "Sunday 8.06.2025")
	assert.Contains(t, patterns, "Friday 6.06.2025")
	assert.NotContains(t, patterns, "Thursday 5.06.2025")
}
