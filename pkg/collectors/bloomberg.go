package collectors

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/newsdesk-hq/daily-clipper/internal/domain"
	"github.com/newsdesk-hq/daily-clipper/internal/pipeline"
)

const (
	bloombergSite     = "Bloomberg"
	bloombergBase     = "https://www.bloomberg.com"
	bloombergPageSize = 25
	bloombergMaxPages = 3
	bloombergTypes    = "ARTICLE,FEATURE,INTERACTIVE,LETTER,EXPLAINERS"
)

// bloombergStory mirrors the story API payload fields we need.
type bloombergStory struct {
	Headline    string `json:"headline"`
	URL         string `json:"url"`
	PublishedAt string `json:"publishedAt"`
	Eyebrow     struct {
		Text string `json:"text"`
	} `json:"eyebrow"`
}

// bloombergFetcher reads the Bloomberg lineup story API instead of
// scraping HTML. Stories older than the collection window are dropped at
// the source; pagination stops early once a page has none left.
type bloombergFetcher struct {
	client HTTPClient
	window func(time.Time) float64
	now    func() time.Time
}

// NewBloombergFetcher builds the fetcher for the Bloomberg story API.
func NewBloombergFetcher(client HTTPClient) Fetcher {
	if client == nil {
		client = DefaultHTTPClient()
	}
	return &bloombergFetcher{
		client: client,
		window: pipeline.WindowHours,
		now:    time.Now,
	}
}

func (f *bloombergFetcher) ID() string { return SourceBloomberg }

func (f *bloombergFetcher) Fetch(ctx context.Context, cfg Source) ([]domain.Article, error) {
	if !strings.EqualFold(cfg.ID, SourceBloomberg) {
		return nil, fmt.Errorf("bloomberg fetcher received incompatible source %q", cfg.ID)
	}
	if len(cfg.URLs) == 0 {
		return nil, fmt.Errorf("bloomberg source has no urls")
	}

	apiURL := cfg.URLs[0]
	headers := map[string]string{"User-Agent": browserUserAgent}
	now := f.now()
	cutoff := now.Add(-time.Duration(f.window(now) * float64(time.Hour)))

	seen := make(linkSet)
	var articles []domain.Article
	var lastErr error

	for page := 1; page <= bloombergMaxPages; page++ {
		if ctx.Err() != nil {
			break
		}

		pageURL := fmt.Sprintf("%s?limit=%d&pageNumber=%d&types=%s", apiURL, bloombergPageSize, page, bloombergTypes)
		body, err := fetchPage(ctx, f.client, pageURL, SourceBloomberg, headers)
		if err != nil {
			lastErr = err
			continue
		}

		stories, err := decodeBloombergStories(body)
		if err != nil {
			lastErr = err
			continue
		}

		recent := 0
		for _, story := range stories {
			headline := pipeline.CleanHeadline(story.Headline)
			if len([]rune(headline)) < 5 || story.URL == "" {
				continue
			}

			link := story.URL
			if !strings.HasPrefix(link, "http") {
				link = bloombergBase + link
			}

			age, fresh := bloombergFreshness(story.PublishedAt, cutoff, now)
			if !fresh {
				continue
			}
			recent++

			category := strings.TrimSpace(story.Eyebrow.Text)
			if category == "" {
				category = "General"
			}

			a := domain.Article{
				Site:      bloombergSite,
				Headline:  headline,
				Link:      link,
				Category:  category,
				Timestamp: story.PublishedAt,
				AgeHours:  age,
			}
			articles = appendArticle(articles, seen, a)
		}

		if recent == 0 && page > 1 {
			break
		}
	}

	if len(articles) == 0 {
		if lastErr != nil {
			return nil, lastErr
		}
		return nil, fmt.Errorf("bloomberg api returned no recent stories")
	}

	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].Timestamp > articles[j].Timestamp
	})
	return articles, nil
}

// decodeBloombergStories accepts both the wrapped {"stories": [...]} and
// bare-array response shapes.
func decodeBloombergStories(body []byte) ([]bloombergStory, error) {
	var wrapped struct {
		Stories []bloombergStory `json:"stories"`
	}
	if err := json.Unmarshal(body, &wrapped); err == nil && len(wrapped.Stories) > 0 {
		return wrapped.Stories, nil
	}

	var bare []bloombergStory
	if err := json.Unmarshal(body, &bare); err != nil {
		return nil, fmt.Errorf("decode bloomberg stories: %w", err)
	}
	return bare, nil
}

// bloombergFreshness reports whether the story was published after the
// cutoff. An unparseable timestamp counts as fresh with unknown age.
func bloombergFreshness(publishedAt string, cutoff, now time.Time) (*float64, bool) {
	publishedAt = strings.TrimSpace(publishedAt)
	if publishedAt == "" {
		return nil, true
	}

	t, err := time.Parse(time.RFC3339, publishedAt)
	if err != nil {
		return nil, true
	}
	if t.Before(cutoff) {
		return nil, false
	}

	age := now.Sub(t).Hours()
	if age < 0 {
		age = 0
	}
	return domain.Age(age), true
}
