package collectors

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/newsdesk-hq/daily-clipper/internal/domain"
	"github.com/newsdesk-hq/daily-clipper/internal/pipeline"
)

const (
	yahooSite        = "Yahoo Finance"
	yahooFeedURL     = "https://finance.yahoo.com/news/rssindex"
	minYahooHeadline = 10
)

// yahooFetcher collects Yahoo Finance listing pages. The markup churns
// frequently, so an RSS feed is kept as the final fallback.
type yahooFetcher struct {
	client HTTPClient
}

// NewYahooFetcher builds the fetcher for Yahoo Finance.
func NewYahooFetcher(client HTTPClient) Fetcher {
	if client == nil {
		client = DefaultHTTPClient()
	}
	return &yahooFetcher{client: client}
}

func (f *yahooFetcher) ID() string { return SourceYahoo }

func (f *yahooFetcher) Fetch(ctx context.Context, cfg Source) ([]domain.Article, error) {
	if !strings.EqualFold(cfg.ID, SourceYahoo) {
		return nil, fmt.Errorf("yahoo fetcher received incompatible source %q", cfg.ID)
	}
	if len(cfg.URLs) == 0 {
		return nil, fmt.Errorf("yahoo source has no urls")
	}

	headers := Headers(cfg)
	seen := make(linkSet)
	var articles []domain.Article
	var lastErr error

	for _, pageURL := range cfg.URLs {
		if ctx.Err() != nil {
			break
		}

		doc, err := fetchDocument(ctx, f.client, pageURL, SourceYahoo, headers)
		if err != nil {
			lastErr = err
			continue
		}

		for _, a := range extractYahooPage(doc, pageURL) {
			articles = appendArticle(articles, seen, a)
		}
	}

	if len(articles) == 0 {
		if feedArticles, err := f.fetchFeed(ctx, headers); err == nil && len(feedArticles) > 0 {
			for _, a := range feedArticles {
				articles = appendArticle(articles, seen, a)
			}
		}
	}

	if len(articles) == 0 {
		if lastErr != nil {
			return nil, lastErr
		}
		return nil, fmt.Errorf("yahoo finance pages returned no records")
	}
	return articles, nil
}

func extractYahooPage(doc *goquery.Document, pageURL string) []domain.Article {
	selectors := []string{`a[href*="/news/"]`, ".clamp"}
	if strings.Contains(pageURL, "uk.finance.yahoo.com") {
		selectors = []string{`.clamp`, `a[href*="/news/"]`}
	}

	var out []domain.Article
	for _, sel := range selectors {
		doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
			link := yahooLink(s, pageURL)
			if link == "" {
				return
			}
			headline := pipeline.CleanHeadline(s.Text())
			if len([]rune(headline)) < minYahooHeadline {
				return
			}
			out = append(out, domain.Article{Site: yahooSite, Headline: headline, Link: link})
		})
		if len(out) > 0 {
			break
		}
	}
	return out
}

// yahooLink finds the article link for an element: itself, a child
// anchor, or the nearest anchor ancestor.
func yahooLink(s *goquery.Selection, pageURL string) string {
	if s.Is("a") {
		href, _ := s.Attr("href")
		return absoluteURL(pageURL, href)
	}
	if child := s.Find(`a[href*="/news/"]`).First(); child.Length() > 0 {
		href, _ := child.Attr("href")
		return absoluteURL(pageURL, href)
	}
	if child := s.Find("a[href]").First(); child.Length() > 0 {
		href, _ := child.Attr("href")
		return absoluteURL(pageURL, href)
	}
	if parent := s.Closest("a"); parent.Length() > 0 {
		href, _ := parent.Attr("href")
		return absoluteURL(pageURL, href)
	}
	return ""
}

// fetchFeed parses the RSS index as the last fallback.
func (f *yahooFetcher) fetchFeed(ctx context.Context, headers map[string]string) ([]domain.Article, error) {
	body, err := fetchPage(ctx, f.client, yahooFeedURL, SourceYahoo, headers)
	if err != nil {
		return nil, err
	}

	feed, err := gofeed.NewParser().ParseString(string(body))
	if err != nil {
		return nil, fmt.Errorf("parse yahoo feed: %w", err)
	}

	var out []domain.Article
	for _, item := range feed.Items {
		headline := pipeline.CleanHeadline(item.Title)
		if len([]rune(headline)) < minYahooHeadline || item.Link == "" {
			continue
		}
		a := domain.Article{Site: yahooSite, Headline: headline, Link: item.Link}
		if item.PublishedParsed != nil {
			a.Timestamp = item.PublishedParsed.Format("2006-01-02T15:04:05Z07:00")
		}
		out = append(out, a)
	}
	return out, nil
}
