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
	trendForceSite     = "TrendForce"
	trendForceBase     = "https://www.trendforce.com"
	trendForceMaxPages = 3
)

var trendForceDateRes = []*regexp.Regexp{
	regexp.MustCompile(`\d{4}-\d{2}-\d{2}`),
	regexp.MustCompile(`\d{4}/\d{2}/\d{2}`),
	regexp.MustCompile(`\d{2}/\d{2}/\d{4}`),
}

// trendForceFetcher collects the TrendForce news index, keeping only
// cards dated inside the collection window.
type trendForceFetcher struct {
	client HTTPClient
	window func(time.Time) float64
	now    func() time.Time
}

// NewTrendForceFetcher builds the fetcher for TrendForce.
func NewTrendForceFetcher(client HTTPClient) Fetcher {
	if client == nil {
		client = DefaultHTTPClient()
	}
	return &trendForceFetcher{
		client: client,
		window: pipeline.WindowHours,
		now:    time.Now,
	}
}

func (f *trendForceFetcher) ID() string { return SourceTrendForce }

func (f *trendForceFetcher) Fetch(ctx context.Context, cfg Source) ([]domain.Article, error) {
	if !strings.EqualFold(cfg.ID, SourceTrendForce) {
		return nil, fmt.Errorf("trendforce fetcher received incompatible source %q", cfg.ID)
	}
	if len(cfg.URLs) == 0 {
		return nil, fmt.Errorf("trendforce source has no urls")
	}

	headers := Headers(cfg)
	baseURL := strings.TrimRight(cfg.URLs[0], "/")
	targets := targetDateSet(f.now(), f.window(f.now()))

	seen := make(linkSet)
	var articles []domain.Article
	var lastErr error

	for page := 1; page <= trendForceMaxPages; page++ {
		if ctx.Err() != nil {
			break
		}

		pageURL := cfg.URLs[0]
		if page > 1 {
			pageURL = fmt.Sprintf("%s/page/%d/", baseURL, page)
		}

		doc, err := fetchDocument(ctx, f.client, pageURL, SourceTrendForce, headers)
		if err != nil {
			lastErr = err
			continue
		}

		doc.Find("div.insight-list-item").Each(func(_ int, card *goquery.Selection) {
			date := trendForceCardDate(card)
			if date == "" {
				return
			}
			if _, ok := targets[date]; !ok {
				return
			}

			headline, link := trendForceCardStory(card)
			if link == "" || len([]rune(headline)) < 5 {
				return
			}

			articles = appendArticle(articles, seen, domain.Article{
				Site:      trendForceSite,
				Headline:  headline,
				Link:      link,
				Timestamp: date,
			})
		})
	}

	if len(articles) == 0 {
		if lastErr != nil {
			return nil, lastErr
		}
		return nil, fmt.Errorf("trendforce pages returned no records for the window")
	}
	return articles, nil
}

// trendForceCardDate extracts the card's date normalized to YYYY-MM-DD.
func trendForceCardDate(card *goquery.Selection) string {
	tag := card.Find("div.insight-list-item-info div.insight-tag").First()
	if tag.Length() == 0 {
		tag = card.Find("div.insight-tag").First()
	}
	if tag.Length() == 0 {
		return ""
	}

	text := strings.TrimSpace(tag.Text())
	for _, re := range trendForceDateRes {
		m := re.FindString(text)
		if m == "" {
			continue
		}
		if strings.Contains(m, "/") {
			parts := strings.Split(m, "/")
			if strings.HasPrefix(m, "20") {
				return strings.ReplaceAll(m, "/", "-")
			}
			// MM/DD/YYYY
			return fmt.Sprintf("%s-%s-%s", parts[2], parts[0], parts[1])
		}
		return m
	}
	return ""
}

// trendForceCardStory extracts the headline and link, trying the strong
// tag, then any anchor, then common title wrappers.
func trendForceCardStory(card *goquery.Selection) (string, string) {
	if strong := card.Find("a[href] strong").First(); strong.Length() > 0 {
		href, _ := strong.Closest("a").Attr("href")
		return pipeline.CleanHeadline(strong.Text()), absoluteURL(trendForceBase, href)
	}

	if a := card.Find("a[href]").First(); a.Length() > 0 {
		href, _ := a.Attr("href")
		headline := pipeline.CleanHeadline(a.Text())
		if headline != "" {
			return headline, absoluteURL(trendForceBase, href)
		}
	}

	if title := card.Find("h3, h2, .title, .headline").First(); title.Length() > 0 {
		headline := pipeline.CleanHeadline(title.Text())
		if a := title.Find("a[href]").First(); a.Length() > 0 {
			href, _ := a.Attr("href")
			return headline, absoluteURL(trendForceBase, href)
		}
		if a := title.Closest("a"); a.Length() > 0 {
			href, _ := a.Attr("href")
			return headline, absoluteURL(trendForceBase, href)
		}
	}

	return "", ""
}

// targetDateSet lists the calendar dates covered by the window, keyed by
// YYYY-MM-DD.
func targetDateSet(now time.Time, windowHours float64) map[string]struct{} {
	days := int(windowHours/24) + 1
	out := make(map[string]struct{}, days)
	for i := 0; i < days; i++ {
		out[now.AddDate(0, 0, -i).Format("2006-01-02")] = struct{}{}
	}
	return out
}
