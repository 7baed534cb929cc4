package collectors

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func docFromHTML(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestItemListEntriesTopLevel(t *testing.T) {
	doc := docFromHTML(t, `<html><head>
<script type="application/ld+json">
{"@type": "ItemList", "itemListElement": [
  {"@type": "ListItem", "position": 1, "name": "Property market cools in second quarter", "url": "https://www.theedgesingapore.com/news/property-market-cools"},
  {"@type": "ListItem", "position": 2, "name": "Banks raise fixed deposit rates again", "url": "https://www.theedgesingapore.com/news/banks-raise-rates"}
]}
</script>
</head><body></body></html>`)

	entries := itemListEntries(doc)
	require.Len(t, entries, 2)
	assert.Equal(t, "Property market cools in second quarter", entries[0].Title)
	assert.Equal(t, "https://www.theedgesingapore.com/news/banks-raise-rates", entries[1].URL)
}

func TestItemListEntriesInGraph(t *testing.T) {
	doc := docFromHTML(t, `<html><head>
<script type="application/ld+json">
{"@context": "https://schema.org", "@graph": [
  {"@type": "WebSite", "name": "The Edge Singapore"},
  {"@type": "ItemList", "itemListElement": [
    {"@type": "ListItem", "name": "GST hike impact smaller than feared", "url": "https://www.theedgesingapore.com/news/gst-hike-impact"}
  ]}
]}
</script>
</head><body></body></html>`)

	entries := itemListEntries(doc)
	require.Len(t, entries, 1)
	assert.Equal(t, "GST hike impact smaller than feared", entries[0].Title)
}

func TestItemListEntriesTopLevelArray(t *testing.T) {
	doc := docFromHTML(t, `<html><head>
<script type="application/ld+json">
[{"@type": "BreadcrumbList"},
 {"@type": "ItemList", "itemListElement": [
   {"@type": "ListItem", "name": "Tech sector hiring rebounds", "url": "https://www.theedgesingapore.com/news/tech-hiring"}
 ]}]
</script>
</head><body></body></html>`)

	entries := itemListEntries(doc)
	require.Len(t, entries, 1)
	assert.Equal(t, "Tech sector hiring rebounds", entries[0].Title)
}

func TestItemListEntriesSkipsBadData(t *testing.T) {
	doc := docFromHTML(t, `<html><head>
<script type="application/ld+json">not valid json</script>
<script type="application/ld+json">{"@type": "ItemList", "itemListElement": [
  {"@type": "ListItem", "name": "", "url": "https://example.com/empty-name"},
  {"@type": "ListItem", "name": "No url here"},
  {"@type": "ListItem", "name": "Kept entry with both fields", "url": "https://example.com/kept"}
]}</script>
</head><body></body></html>`)

	entries := itemListEntries(doc)
	require.Len(t, entries, 1)
	assert.Equal(t, "Kept entry with both fields", entries[0].Title)
}
