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
	nikkeiSite        = "Nikkei Asia"
	nikkeiBase        = "https://asia.nikkei.com"
	minNikkeiHeadline = 10

	// fallback kicks in when the primary selector finds fewer than this
	// many articles, which usually means a layout change.
	nikkeiFallbackFloor = 5
)

var nikkeiCategories = map[string]string{
	"/Economy/":                       "Economy",
	"/Politics/":                      "Politics",
	"/Business/":                      "Business",
	"/Technology/":                    "Technology",
	"/Markets/":                       "Markets",
	"/Companies/":                     "Companies",
	"/Startups/":                      "Startups",
	"/Editor-s-Picks/":                "Editor's Picks",
	"/Opinion/":                       "Opinion",
	"/Asia300/":                       "Asia300",
	"/Location/East-Asia/Japan":       "Japan",
	"/Location/East-Asia/China":       "China",
	"/Location/East-Asia/South-Korea": "South Korea",
	"/Location/Southeast-Asia/":       "Southeast Asia",
	"/Location/South-Asia/":           "South Asia",
	"/Spotlight/":                     "Spotlight",
}

// japanFetcher collects Nikkei Asia listing pages. Headlines are
// prefixed with the category inferred from the article URL.
type japanFetcher struct {
	client HTTPClient
}

// NewJapanFetcher builds the fetcher for Nikkei Asia.
func NewJapanFetcher(client HTTPClient) Fetcher {
	if client == nil {
		client = DefaultHTTPClient()
	}
	return &japanFetcher{client: client}
}

func (f *japanFetcher) ID() string { return SourceJapan }

func (f *japanFetcher) Fetch(ctx context.Context, cfg Source) ([]domain.Article, error) {
	if !strings.EqualFold(cfg.ID, SourceJapan) {
		return nil, fmt.Errorf("japan fetcher received incompatible source %q", cfg.ID)
	}
	if len(cfg.URLs) == 0 {
		return nil, fmt.Errorf("japan source has no urls")
	}

	headers := Headers(cfg)
	seen := make(linkSet)
	var articles []domain.Article
	var lastErr error

	for _, pageURL := range cfg.URLs {
		if ctx.Err() != nil {
			break
		}

		doc, err := fetchDocument(ctx, f.client, pageURL, SourceJapan, headers)
		if err != nil {
			lastErr = err
			continue
		}

		for _, a := range extractNikkeiPage(doc) {
			articles = appendArticle(articles, seen, a)
		}
	}

	if len(articles) == 0 {
		if lastErr != nil {
			return nil, lastErr
		}
		return nil, fmt.Errorf("nikkei pages returned no records")
	}
	return articles, nil
}

func extractNikkeiPage(doc *goquery.Document) []domain.Article {
	articles := collectNikkeiLinks(doc, `a[data-trackable="headline"]`)

	if len(articles) < nikkeiFallbackFloor {
		articles = append(articles, collectNikkeiLinks(doc, "h2[class*=SpotlightArticleCard] a")...)
	}
	if len(articles) < nikkeiFallbackFloor {
		for _, sel := range []string{".headline a", ".article-title a", "h2.headline a", "h3.headline a"} {
			articles = append(articles, collectNikkeiLinks(doc, sel)...)
		}
	}
	if len(articles) < 3 {
		articles = append(articles, collectNikkeiGeneric(doc)...)
	}

	return articles
}

func collectNikkeiLinks(doc *goquery.Document, selector string) []domain.Article {
	var out []domain.Article
	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		link := absoluteURL(nikkeiBase, href)
		headline := pipeline.CleanHeadline(s.Text())
		if link == "" || len([]rune(headline)) < minNikkeiHeadline {
			return
		}

		category := categoryFromPath(href, nikkeiCategories, "General")
		out = append(out, domain.Article{
			Site:     nikkeiSite,
			Headline: fmt.Sprintf("[%s] %s", category, headline),
			Link:     link,
			Category: category,
		})
	})
	return out
}

// collectNikkeiGeneric is the last resort: any same-site anchor with a
// headline-sized text.
func collectNikkeiGeneric(doc *goquery.Document) []domain.Article {
	var out []domain.Article
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		headline := pipeline.CleanHeadline(s.Text())
		if len([]rune(headline)) <= 15 || len([]rune(headline)) >= 200 {
			return
		}

		link := absoluteURL(nikkeiBase, href)
		if link == "" || !strings.Contains(link, "nikkei.com") {
			return
		}
		if strings.HasSuffix(link, ".pdf") || strings.HasSuffix(link, ".jpg") || strings.HasSuffix(link, ".png") {
			return
		}

		category := categoryFromPath(href, nikkeiCategories, "General")
		out = append(out, domain.Article{
			Site:     nikkeiSite,
			Headline: fmt.Sprintf("[%s] %s", category, headline),
			Link:     link,
			Category: category,
		})
	})
	return out
}
