package collectors

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bloombergAPI = "https://www.bloomberg.com/lineup-next/api/stories"

func bloombergPageURL(page int) string {
	return fmt.Sprintf("%s?limit=25&pageNumber=%d&types=ARTICLE,FEATURE,INTERACTIVE,LETTER,EXPLAINERS", bloombergAPI, page)
}

func newBloombergForTest(client HTTPClient, now time.Time, windowHours float64) *bloombergFetcher {
	f := NewBloombergFetcher(client).(*bloombergFetcher)
	f.now = func() time.Time { return now }
	f.window = func(time.Time) float64 { return windowHours }
	return f
}

func TestBloombergFetch(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	client := newFakeClient()
	client.serve(bloombergPageURL(1), `{"stories": [
  {"headline": "Oil Extends Gains as Supply Concerns Mount", "url": "/news/articles/oil-extends-gains", "publishedAt": "2025-06-10T09:00:00Z", "eyebrow": {"text": "Energy"}},
  {"headline": "Fed Officials Signal Patience on Rate Cuts", "url": "https://www.bloomberg.com/news/articles/fed-officials", "publishedAt": "2025-06-10T06:00:00Z", "eyebrow": {"text": "Economics"}},
  {"headline": "Stale Story From Last Week Stays Out", "url": "/news/articles/stale", "publishedAt": "2025-06-03T06:00:00Z", "eyebrow": {"text": "Markets"}}
]}`)
	client.serve(bloombergPageURL(2), `{"stories": []}`)
	client.serve(bloombergPageURL(3), `{"stories": []}`)

	f := newBloombergForTest(client, now, 24)
	articles, err := f.Fetch(context.Background(), Source{ID: SourceBloomberg, URLs: []string{bloombergAPI}})
	require.NoError(t, err)
	require.Len(t, articles, 2)

	// newest first
	assert.Equal(t, "Oil Extends Gains as Supply Concerns Mount", articles[0].Headline)
	assert.Equal(t, "https://www.bloomberg.com/news/articles/oil-extends-gains", articles[0].Link)
	assert.Equal(t, "Energy", articles[0].Category)
	require.NotNil(t, articles[0].AgeHours)
	assert.InDelta(t, 3.0, *articles[0].AgeHours, 0.01)

	assert.Equal(t, "Economics", articles[1].Category)
}

func TestBloombergStopsPagingWhenStale(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	client := newFakeClient()
	client.serve(bloombergPageURL(1), `{"stories": [
  {"headline": "Fresh Story Inside the Window", "url": "/news/articles/fresh", "publishedAt": "2025-06-10T10:00:00Z", "eyebrow": {"text": "Markets"}}
]}`)
	client.serve(bloombergPageURL(2), `{"stories": [
  {"headline": "Old Story Outside the Window", "url": "/news/articles/old", "publishedAt": "2025-06-01T10:00:00Z", "eyebrow": {"text": "Markets"}}
]}`)

	f := newBloombergForTest(client, now, 24)
	articles, err := f.Fetch(context.Background(), Source{ID: SourceBloomberg, URLs: []string{bloombergAPI}})
	require.NoError(t, err)
	assert.Len(t, articles, 1)

	// page 3 is never requested once page 2 had nothing recent
	assert.Len(t, client.requested(), 2)
}

func TestBloombergBareArrayResponse(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	client := newFakeClient()
	client.serve(bloombergPageURL(1), `[
  {"headline": "Bare Array Payloads Decode Too", "url": "/news/articles/bare", "publishedAt": "2025-06-10T11:00:00Z", "eyebrow": {"text": ""}}
]`)
	client.serve(bloombergPageURL(2), `[]`)
	client.serve(bloombergPageURL(3), `[]`)

	f := newBloombergForTest(client, now, 24)
	articles, err := f.Fetch(context.Background(), Source{ID: SourceBloomberg, URLs: []string{bloombergAPI}})
	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Equal(t, "General", articles[0].Category)
}

func TestBloombergUnparseableTimestampKept(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	client := newFakeClient()
	client.serve(bloombergPageURL(1), `{"stories": [
  {"headline": "Story With Odd Timestamp Still Counts", "url": "/news/articles/odd", "publishedAt": "yesterday-ish", "eyebrow": {"text": "Tech"}}
]}`)
	client.serve(bloombergPageURL(2), `{"stories": []}`)
	client.serve(bloombergPageURL(3), `{"stories": []}`)

	f := newBloombergForTest(client, now, 24)
	articles, err := f.Fetch(context.Background(), Source{ID: SourceBloomberg, URLs: []string{bloombergAPI}})
	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Nil(t, articles[0].AgeHours)
}

func TestBloombergNoRecentStories(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	client := newFakeClient()
	for page := 1; page <= 3; page++ {
		client.serve(bloombergPageURL(page), `{"stories": []}`)
	}

	f := newBloombergForTest(client, now, 24)
	_, err := f.Fetch(context.Background(), Source{ID: SourceBloomberg, URLs: []string{bloombergAPI}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no recent stories")
}
