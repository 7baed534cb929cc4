package collectors

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/newsdesk-hq/daily-clipper/internal/domain"
	"github.com/newsdesk-hq/daily-clipper/pkg/httpclient"
)

func responseSnippet(body []byte) string {
	const maxLen = 512
	s := strings.TrimSpace(string(body))
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	if s == "" {
		return "<empty>"
	}
	return s
}

func fetchPage(ctx context.Context, client httpclient.Client, url, sourceID string, headers map[string]string) ([]byte, error) {
	resp, err := client.Get(ctx, url, headers)
	if err != nil {
		return nil, fmt.Errorf("fetch %s page: %w", sourceID, err)
	}

	body := resp.Body()
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("%s page returned status %d body: %s", sourceID, resp.StatusCode(), responseSnippet(body))
	}

	return body, nil
}

func fetchDocument(ctx context.Context, client httpclient.Client, url, sourceID string, headers map[string]string) (*goquery.Document, error) {
	body, err := fetchPage(ctx, client, url, sourceID, headers)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse %s page: %w", sourceID, err)
	}
	return doc, nil
}

// absoluteURL resolves href against base, returning "" when href is not a
// usable article link.
func absoluteURL(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") ||
		strings.HasPrefix(href, "mailto:") || strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "javascript:") {
		return ""
	}

	parsed, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if parsed.IsAbs() {
		return parsed.String()
	}

	baseURL, err := url.Parse(base)
	if err != nil {
		return ""
	}
	return baseURL.ResolveReference(parsed).String()
}

// linkSet tracks article links already collected within one fetch.
type linkSet map[string]struct{}

func (s linkSet) add(link string) bool {
	if _, seen := s[link]; seen {
		return false
	}
	s[link] = struct{}{}
	return true
}

// appendArticle adds the article unless its link was already collected.
func appendArticle(articles []domain.Article, seen linkSet, a domain.Article) []domain.Article {
	if a.Link == "" || !seen.add(a.Link) {
		return articles
	}
	return append(articles, a)
}

// sleepBetween pauses between page fetches, honoring cancellation.
func sleepBetween(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}

// categoryFromPath matches URL path segments against a segment-to-name
// map, returning fallback when nothing matches.
func categoryFromPath(href string, segments map[string]string, fallback string) string {
	for seg, name := range segments {
		if strings.Contains(href, seg) {
			return name
		}
	}
	return fallback
}
