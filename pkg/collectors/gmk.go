package collectors

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/newsdesk-hq/daily-clipper/internal/domain"
	"github.com/newsdesk-hq/daily-clipper/internal/pipeline"
)

const (
	gmkSite = "GMK Center"
	gmkBase = "https://gmk.center"
)

// gmkFetcher collects the GMK Center news archive, which groups article
// lists under day headers like "Tuesday 17.06.2025". Only groups dated
// inside the collection window are kept.
type gmkFetcher struct {
	client HTTPClient
	window func(time.Time) float64
	now    func() time.Time
}

// NewGMKFetcher builds the fetcher for GMK Center.
func NewGMKFetcher(client HTTPClient) Fetcher {
	if client == nil {
		client = DefaultHTTPClient()
	}
	return &gmkFetcher{
		client: client,
		window: pipeline.WindowHours,
		now:    time.Now,
	}
}

func (f *gmkFetcher) ID() string { return SourceGMK }

func (f *gmkFetcher) Fetch(ctx context.Context, cfg Source) ([]domain.Article, error) {
	if !strings.EqualFold(cfg.ID, SourceGMK) {
		return nil, fmt.Errorf("gmk fetcher received incompatible source %q", cfg.ID)
	}
	if len(cfg.URLs) == 0 {
		return nil, fmt.Errorf("gmk source has no urls")
	}

	headers := Headers(cfg)
	doc, err := fetchDocument(ctx, f.client, cfg.URLs[0], SourceGMK, headers)
	if err != nil {
		return nil, err
	}

	patterns := gmkDatePatterns(f.now(), f.window(f.now()))
	seen := make(linkSet)
	var articles []domain.Article

	archive := doc.Find("div.news-archive-list.archive-main-news").First()
	if archive.Length() == 0 {
		archive = doc.Selection
	}

	archive.Find("div.day-date").Each(func(_ int, dateDiv *goquery.Selection) {
		dateText := strings.TrimSpace(dateDiv.Text())
		if !matchesAny(dateText, patterns) {
			return
		}

		list := dateDiv.NextAllFiltered("ul.archive-list").First()
		if list.Length() == 0 {
			return
		}

		list.Find("li a[href]").Each(func(_ int, link *goquery.Selection) {
			headline := ""
			if span := link.Find("span.title-post").First(); span.Length() > 0 {
				headline = span.Text()
			} else {
				headline = link.Text()
			}
			headline = pipeline.CleanHeadline(headline)

			href, _ := link.Attr("href")
			full := absoluteURL(gmkBase, href)
			if full == "" || len([]rune(headline)) < 5 {
				return
			}

			articles = appendArticle(articles, seen, domain.Article{
				Site:      gmkSite,
				Headline:  headline,
				Link:      full,
				Timestamp: dateText,
			})
		})
	})

	if len(articles) == 0 {
		return nil, fmt.Errorf("gmk page returned no records for the window")
	}
	return articles, nil
}

// gmkDatePatterns builds the "Weekday D.MM.YYYY" variants for every day
// in the window, with and without a zero-padded day.
func gmkDatePatterns(now time.Time, windowHours float64) []string {
	days := int(windowHours/24) + 1
	var patterns []string
	for i := 0; i < days; i++ {
		d := now.AddDate(0, 0, -i)
		weekday := d.Weekday().String()
		month := fmt.Sprintf("%02d", int(d.Month()))
		year := fmt.Sprintf("%d", d.Year())

		patterns = append(patterns,
			fmt.Sprintf("%s %d.%s.%s", weekday, d.Day(), month, year),
			fmt.Sprintf("%s %02d.%s.%s", weekday, d.Day(), month, year),
			fmt.Sprintf("%d.%s.%s", d.Day(), month, year),
			fmt.Sprintf("%02d.%s.%s", d.Day(), month, year),
		)
	}
	return patterns
}

func matchesAny(text string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}
