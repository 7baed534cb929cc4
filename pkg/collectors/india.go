package collectors

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/newsdesk-hq/daily-clipper/internal/domain"
	"github.com/newsdesk-hq/daily-clipper/internal/pipeline"
)

const (
	hindustanSite        = "Hindustan Times"
	hindustanBase        = "https://www.hindustantimes.com"
	minHindustanHeadline = 10
)

// timestampTextRe spots a published-time fragment inside surrounding
// listing text.
var timestampTextRe = regexp.MustCompile(`(?i)(\d+\s*(?:second|minute|hour|day|week|month)s?\s+ago|\d+\s*(?:मिनट|घंटे|दिन)\s*पहले|just now|yesterday|today|this morning|this afternoon|this evening|last night|\d{1,2}:\d{2}\s*(?:am|pm)|\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(?:Z|[+-]\d{2}:\d{2})?|\d{1,2}[/-]\d{1,2}[/-]\d{4})`)

// indiaFetcher collects Hindustan Times listing pages. The pages mix
// fresh and evergreen entries, so each candidate's timestamp is parsed
// at extraction time and stored on the article.
type indiaFetcher struct {
	client HTTPClient
	now    func() time.Time
}

// NewIndiaFetcher builds the fetcher for Hindustan Times.
func NewIndiaFetcher(client HTTPClient) Fetcher {
	if client == nil {
		client = DefaultHTTPClient()
	}
	return &indiaFetcher{client: client, now: time.Now}
}

func (f *indiaFetcher) ID() string { return SourceIndia }

func (f *indiaFetcher) Fetch(ctx context.Context, cfg Source) ([]domain.Article, error) {
	if !strings.EqualFold(cfg.ID, SourceIndia) {
		return nil, fmt.Errorf("india fetcher received incompatible source %q", cfg.ID)
	}
	if len(cfg.URLs) == 0 {
		return nil, fmt.Errorf("india source has no urls")
	}

	headers := Headers(cfg)
	now := f.now()
	seen := make(linkSet)
	var articles []domain.Article
	var lastErr error

	for _, pageURL := range cfg.URLs {
		if ctx.Err() != nil {
			break
		}

		doc, err := fetchDocument(ctx, f.client, pageURL, SourceIndia, headers)
		if err != nil {
			lastErr = err
			continue
		}

		for _, a := range f.extractPage(doc, now) {
			articles = appendArticle(articles, seen, a)
		}
	}

	if len(articles) == 0 {
		if lastErr != nil {
			return nil, lastErr
		}
		return nil, fmt.Errorf("hindustan times pages returned no records")
	}
	return articles, nil
}

func (f *indiaFetcher) extractPage(doc *goquery.Document, now time.Time) []domain.Article {
	var out []domain.Article

	// primary: listing containers tagged with the section attribute
	doc.Find(`[data-vars-section] h3.hdg3 a[href]`).Each(func(_ int, s *goquery.Selection) {
		if a, ok := f.buildArticle(s, now); ok {
			out = append(out, a)
		}
	})

	if len(out) == 0 {
		doc.Find("h3.hdg3 a[href]").Each(func(_ int, s *goquery.Selection) {
			if a, ok := f.buildArticle(s, now); ok {
				out = append(out, a)
			}
		})
	}

	if len(out) == 0 {
		doc.Find(`a[data-articleid][href]`).Each(func(_ int, s *goquery.Selection) {
			if a, ok := f.buildArticle(s, now); ok {
				out = append(out, a)
			}
		})
	}

	return out
}

func (f *indiaFetcher) buildArticle(s *goquery.Selection, now time.Time) (domain.Article, bool) {
	href, _ := s.Attr("href")
	link := absoluteURL(hindustanBase, href)
	headline := pipeline.CleanHeadline(s.Text())
	if link == "" || len([]rune(headline)) < minHindustanHeadline {
		return domain.Article{}, false
	}

	category := "General"
	if parent := s.Closest("[data-vars-section]"); parent.Length() > 0 {
		if sec, ok := parent.Attr("data-vars-section"); ok && strings.TrimSpace(sec) != "" {
			category = strings.TrimSpace(sec)
		}
	}

	a := domain.Article{
		Site:     hindustanSite,
		Headline: headline,
		Link:     link,
		Category: category,
	}

	if ts := extractTimestamp(s); ts != "" {
		a.Timestamp = ts
		if hours, ok := pipeline.ParseAge(ts, now); ok {
			a.AgeHours = domain.Age(hours)
		}
	}

	return a, true
}

// extractTimestamp looks for a published-time hint on the element, its
// attributes, or nearby siblings.
func extractTimestamp(s *goquery.Selection) string {
	for _, attr := range []string{"datetime", "data-time", "data-timestamp", "data-published"} {
		if v, ok := s.Attr(attr); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}

	candidates := []*goquery.Selection{s, s.Parent()}
	if parent := s.Parent(); parent.Length() > 0 {
		candidates = append(candidates, parent.Find("time, span, div").Slice(0, min(5, parent.Find("time, span, div").Length())))
	}

	for _, c := range candidates {
		var found string
		c.EachWithBreak(func(_ int, node *goquery.Selection) bool {
			if v, ok := node.Attr("datetime"); ok && strings.TrimSpace(v) != "" {
				found = strings.TrimSpace(v)
				return false
			}
			if m := timestampTextRe.FindString(node.Text()); m != "" {
				found = strings.TrimSpace(m)
				return false
			}
			return true
		})
		if found != "" {
			return found
		}
	}

	return ""
}
