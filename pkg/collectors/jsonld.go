package collectors

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Several sources embed their listing as schema.org ItemList structured
// data, which is far more stable than their CSS class names.

type listEntry struct {
	Title string
	URL   string
}

// itemListEntries extracts ItemList entries from every ld+json script in
// the document. The ItemList may be the top-level object, an element of a
// top-level array, or nested under @graph.
func itemListEntries(doc *goquery.Document) []listEntry {
	var entries []listEntry

	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		raw := strings.TrimSpace(s.Text())
		if raw == "" {
			return
		}

		var data any
		if err := json.Unmarshal([]byte(raw), &data); err != nil {
			return
		}

		for _, list := range findItemLists(data) {
			entries = append(entries, listItems(list)...)
		}
	})

	return entries
}

func findItemLists(data any) []map[string]any {
	var lists []map[string]any

	switch v := data.(type) {
	case map[string]any:
		if v["@type"] == "ItemList" {
			lists = append(lists, v)
		}
		if graph, ok := v["@graph"].([]any); ok {
			for _, item := range graph {
				lists = append(lists, findItemLists(item)...)
			}
		}
	case []any:
		for _, item := range v {
			lists = append(lists, findItemLists(item)...)
		}
	}

	return lists
}

func listItems(list map[string]any) []listEntry {
	items, ok := list["itemListElement"].([]any)
	if !ok {
		return nil
	}

	var entries []listEntry
	for _, raw := range items {
		item, ok := raw.(map[string]any)
		if !ok || item["@type"] != "ListItem" {
			continue
		}

		title, _ := item["name"].(string)
		link, _ := item["url"].(string)
		title = strings.TrimSpace(title)
		link = strings.TrimSpace(link)

		if title == "" || link == "" {
			continue
		}
		entries = append(entries, listEntry{Title: title, URL: link})
	}
	return entries
}
