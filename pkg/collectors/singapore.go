package collectors

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/newsdesk-hq/daily-clipper/internal/domain"
	"github.com/newsdesk-hq/daily-clipper/internal/pipeline"
)

const minSingaporeHeadlineLen = 10

// singaporeFetcher aggregates the Singapore sub-sources: The Edge
// Singapore, Business Times, Straits Times and Yahoo Finance SG.
type singaporeFetcher struct {
	client HTTPClient
}

// NewSingaporeFetcher builds the fetcher for the Singapore source family.
func NewSingaporeFetcher(client HTTPClient) Fetcher {
	if client == nil {
		client = DefaultHTTPClient()
	}
	return &singaporeFetcher{client: client}
}

func (f *singaporeFetcher) ID() string { return SourceSingapore }

func (f *singaporeFetcher) Fetch(ctx context.Context, cfg Source) ([]domain.Article, error) {
	if !strings.EqualFold(cfg.ID, SourceSingapore) {
		return nil, fmt.Errorf("singapore fetcher received incompatible source %q", cfg.ID)
	}
	if len(cfg.URLs) == 0 {
		return nil, fmt.Errorf("singapore source has no urls")
	}

	headers := Headers(cfg)
	seen := make(linkSet)
	var articles []domain.Article
	var lastErr error

	for _, pageURL := range cfg.URLs {
		if ctx.Err() != nil {
			break
		}

		doc, err := fetchDocument(ctx, f.client, pageURL, SourceSingapore, headers)
		if err != nil {
			lastErr = err
			continue
		}

		site := singaporeSite(pageURL)
		for _, a := range extractSingaporePage(doc, pageURL, site) {
			articles = appendArticle(articles, seen, a)
		}
	}

	if len(articles) == 0 {
		if lastErr != nil {
			return nil, lastErr
		}
		return nil, fmt.Errorf("singapore sources returned no records")
	}
	return articles, nil
}

// extractSingaporePage tries structured data first and falls back to
// site-specific then generic selectors.
func extractSingaporePage(doc *goquery.Document, pageURL, site string) []domain.Article {
	if entries := itemListEntries(doc); len(entries) > 0 {
		var out []domain.Article
		for _, e := range entries {
			link := normalizeEdgeURL(e.URL)
			title := pipeline.CleanHeadline(e.Title)
			if len([]rune(title)) <= minSingaporeHeadlineLen || !strings.HasPrefix(link, "http") {
				continue
			}
			out = append(out, domain.Article{Site: site, Headline: title, Link: link})
		}
		if len(out) > 0 {
			return out
		}
	}

	if arts := extractSingaporeSelectors(doc, pageURL, site); len(arts) > 0 {
		return arts
	}

	return extractGenericListing(doc, pageURL, site)
}

func extractSingaporeSelectors(doc *goquery.Document, pageURL, site string) []domain.Article {
	var out []domain.Article

	switch {
	case strings.Contains(pageURL, "businesstimes.com.sg"):
		doc.Find("div.story h3 a[href]").Each(func(_ int, s *goquery.Selection) {
			out = appendListingLink(out, s, pageURL, site)
		})
	case strings.Contains(pageURL, "straitstimes.com"):
		doc.Find(`a[href*="/singapore/"]`).Each(func(_ int, s *goquery.Selection) {
			out = appendListingLink(out, s, pageURL, site)
		})
	case strings.Contains(pageURL, "finance.yahoo.com"):
		doc.Find(`a[href*="/news/"]`).Each(func(_ int, s *goquery.Selection) {
			out = appendListingLink(out, s, pageURL, site)
		})
	default:
		doc.Find("h1 a[href], h2 a[href], h3 a[href]").Each(func(_ int, s *goquery.Selection) {
			out = appendListingLink(out, s, pageURL, site)
		})
	}

	return out
}

// extractGenericListing is the last-resort anchor scan, restricted to
// links on the source's own host.
func extractGenericListing(doc *goquery.Document, pageURL, site string) []domain.Article {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil
	}

	var out []domain.Article
	doc.Find("article a[href], [class*=article] a[href], [class*=story] a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		link := absoluteURL(pageURL, href)
		if link == "" || !strings.Contains(link, base.Hostname()) {
			return
		}
		title := pipeline.CleanHeadline(s.Text())
		if len([]rune(title)) <= minSingaporeHeadlineLen {
			return
		}
		out = append(out, domain.Article{Site: site, Headline: title, Link: link})
	})
	return out
}

func appendListingLink(out []domain.Article, s *goquery.Selection, pageURL, site string) []domain.Article {
	href, _ := s.Attr("href")
	link := absoluteURL(pageURL, href)
	if link == "" {
		return out
	}
	title := pipeline.CleanHeadline(s.Text())
	if len([]rune(title)) <= minSingaporeHeadlineLen {
		return out
	}
	return append(out, domain.Article{Site: site, Headline: title, Link: link})
}

// normalizeEdgeURL fixes known quirks in The Edge Singapore structured
// data links: doubled slashes and the /section/latest/ prefix.
func normalizeEdgeURL(link string) string {
	link = strings.ReplaceAll(link, "theedgesingapore.com//", "theedgesingapore.com/")
	return strings.Replace(link, "https://www.theedgesingapore.com/section/latest/", "https://www.theedgesingapore.com/", 1)
}

func singaporeSite(pageURL string) string {
	switch {
	case strings.Contains(pageURL, "theedgesingapore.com"):
		return "The Edge Singapore"
	case strings.Contains(pageURL, "businesstimes.com.sg"):
		return "Business Times"
	case strings.Contains(pageURL, "straitstimes.com"):
		return "Straits Times"
	case strings.Contains(pageURL, "finance.yahoo.com"):
		return "Yahoo Finance SG"
	default:
		return "Singapore"
	}
}
