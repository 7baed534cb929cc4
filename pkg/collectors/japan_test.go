package collectors

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const nikkeiListing = `<html><body>
<a data-trackable="headline" href="/Economy/Japan-GDP-growth-beats-forecasts-on-export-rebound">Japan GDP growth beats forecasts on export rebound</a>
<a data-trackable="headline" href="/Technology/Chipmakers-race-to-secure-advanced-packaging-capacity">Chipmakers race to secure advanced packaging capacity</a>
<a data-trackable="headline" href="/Business/Retail-giants-expand-into-Southeast-Asian-markets">Retail giants expand into Southeast Asian markets</a>
<a data-trackable="headline" href="/Economy/Short">Tiny</a>
<a data-trackable="headline" href="/Politics/Cabinet-reshuffle-looms-as-approval-ratings-slide">Cabinet reshuffle looms as approval ratings slide</a>
<a data-trackable="headline" href="/Markets/Tokyo-stocks-hit-record-high-on-weak-yen-tailwind">Tokyo stocks hit record high on weak yen tailwind</a>
</body></html>`

func TestJapanFetch(t *testing.T) {
	pageURL := "https://asia.nikkei.com/Location/East-Asia/Japan?page=1"
	client := newFakeClient()
	client.serve(pageURL, nikkeiListing)

	f := NewJapanFetcher(client)
	articles, err := f.Fetch(context.Background(), Source{ID: SourceJapan, URLs: []string{pageURL}})
	require.NoError(t, err)
	require.Len(t, articles, 5)

	assert.Equal(t, "Nikkei Asia", articles[0].Site)
	assert.Equal(t, "[Economy] Japan GDP growth beats forecasts on export rebound", articles[0].Headline)
	assert.Equal(t, "https://asia.nikkei.com/Economy/Japan-GDP-growth-beats-forecasts-on-export-rebound", articles[0].Link)
	assert.Equal(t, "Economy", articles[0].Category)
	assert.Equal(t, "Technology", articles[1].Category)
	assert.Equal(t, "Politics", articles[3].Category)
}

func TestJapanFetchFallbackSelector(t *testing.T) {
	// too few primary hits triggers the spotlight card fallback
	page := `<html><body>
<a data-trackable="headline" href="/Economy/One-primary-story-with-long-headline">One primary story with long headline</a>
<h2 class="SpotlightArticleCard_headline"><a href="/Spotlight/Backup-story-found-through-spotlight-selector">Backup story found through spotlight selector</a></h2>
</body></html>`

	pageURL := "https://asia.nikkei.com/Location/East-Asia/Japan?page=1"
	client := newFakeClient()
	client.serve(pageURL, page)

	f := NewJapanFetcher(client)
	articles, err := f.Fetch(context.Background(), Source{ID: SourceJapan, URLs: []string{pageURL}})
	require.NoError(t, err)
	require.Len(t, articles, 2)
	assert.Equal(t, "[Spotlight] Backup story found through spotlight selector", articles[1].Headline)
}

func TestJapanFetchDeduplicatesAcrossPages(t *testing.T) {
	page1 := "https://asia.nikkei.com/Location/East-Asia/Japan?page=1"
	page2 := "https://asia.nikkei.com/Location/East-Asia/Japan?page=2"
	client := newFakeClient()
	client.serve(page1, nikkeiListing)
	client.serve(page2, nikkeiListing)

	f := NewJapanFetcher(client)
	articles, err := f.Fetch(context.Background(), Source{ID: SourceJapan, URLs: []string{page1, page2}})
	require.NoError(t, err)
	assert.Len(t, articles, 5)
	assert.Len(t, client.requested(), 2)
}

func TestJapanFetchEmptyPage(t *testing.T) {
	pageURL := "https://asia.nikkei.com/Location/East-Asia/Japan?page=1"
	client := newFakeClient()
	client.serve(pageURL, "<html><body></body></html>")

	f := NewJapanFetcher(client)
	_, err := f.Fetch(context.Background(), Source{ID: SourceJapan, URLs: []string{pageURL}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no records")
}

func TestJapanFetchStatusError(t *testing.T) {
	pageURL := "https://asia.nikkei.com/Location/East-Asia/Japan?page=1"
	client := newFakeClient()
	client.serveStatus(pageURL, 403, "<html>Forbidden</html>")

	f := NewJapanFetcher(client)
	_, err := f.Fetch(context.Background(), Source{ID: SourceJapan, URLs: []string{pageURL}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 403")
}
