package collectors

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/newsdesk-hq/daily-clipper/internal/domain"
	"github.com/newsdesk-hq/daily-clipper/internal/pipeline"
)

const (
	tradeWindsSite  = "TradeWinds"
	tradeWindsBase  = "https://www.tradewindsnews.com"
	tradeWindsPages = 2
)

var tradeWindsCategories = map[string]string{
	"/tankers/":          "Tankers",
	"/bulkers/":          "Bulkers",
	"/containers/":       "Containers",
	"/gas/":              "Gas",
	"/offshore/":         "Offshore",
	"/cruise-and-ferry/": "Cruise & Ferry",
	"/technology/":       "Technology",
	"/finance/":          "Finance",
	"/opinion/":          "Opinion",
	"/insurance/":        "Insurance",
	"/casualties/":       "Casualties",
	"/shipyards/":        "Shipyards",
	"/shipbroking/":      "Shipbroking",
	"/law/":              "Law",
	"/sustainability/":   "Sustainability",
}

// tradeWindsFetcher collects the TradeWinds latest-news listing across a
// couple of pages.
type tradeWindsFetcher struct {
	client HTTPClient
}

// NewTradeWindsFetcher builds the fetcher for TradeWinds.
func NewTradeWindsFetcher(client HTTPClient) Fetcher {
	if client == nil {
		client = DefaultHTTPClient()
	}
	return &tradeWindsFetcher{client: client}
}

func (f *tradeWindsFetcher) ID() string { return SourceTradeWinds }

func (f *tradeWindsFetcher) Fetch(ctx context.Context, cfg Source) ([]domain.Article, error) {
	if !strings.EqualFold(cfg.ID, SourceTradeWinds) {
		return nil, fmt.Errorf("tradewinds fetcher received incompatible source %q", cfg.ID)
	}
	if len(cfg.URLs) == 0 {
		return nil, fmt.Errorf("tradewinds source has no urls")
	}

	headers := Headers(cfg)
	baseURL := cfg.URLs[0]
	seen := make(linkSet)
	var articles []domain.Article
	var lastErr error

	for page := 1; page <= tradeWindsPages; page++ {
		if ctx.Err() != nil {
			break
		}

		pageURL := baseURL
		if page > 1 {
			pageURL = fmt.Sprintf("%s?page=%d", baseURL, page)
		}

		doc, err := fetchDocument(ctx, f.client, pageURL, SourceTradeWinds, headers)
		if err != nil {
			lastErr = err
			continue
		}

		doc.Find("h2.teaser-title a.card-link").Each(func(_ int, s *goquery.Selection) {
			href, _ := s.Attr("href")
			link := absoluteURL(tradeWindsBase, href)
			headline := pipeline.CleanHeadline(s.Text())
			if link == "" || len([]rune(headline)) < 10 || len([]rune(headline)) > 200 {
				return
			}

			category := categoryFromPath(href, tradeWindsCategories, "General")
			articles = appendArticle(articles, seen, domain.Article{
				Site:     tradeWindsSite,
				Headline: fmt.Sprintf("[%s] %s", category, headline),
				Link:     link,
				Category: category,
			})
		})
	}

	if len(articles) == 0 {
		if lastErr != nil {
			return nil, lastErr
		}
		return nil, fmt.Errorf("tradewinds pages returned no records")
	}
	return articles, nil
}
