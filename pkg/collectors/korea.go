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
	sedailySite        = "SEdaily Korea"
	sedailyBase        = "https://www.sedaily.com"
	minKoreanHeadline  = 5
	koreaFallbackFloor = 3
)

// koreaFetcher collects the Seoul Economic Daily listing. Korean
// headlines and categories are translated to English; when translation
// fails the original text is kept.
type koreaFetcher struct {
	client HTTPClient
	tr     Translator
}

// NewKoreaFetcher builds the fetcher for Seoul Economic Daily.
func NewKoreaFetcher(client HTTPClient, tr Translator) Fetcher {
	if client == nil {
		client = DefaultHTTPClient()
	}
	if tr == nil {
		tr = nopTranslator{}
	}
	return &koreaFetcher{client: client, tr: tr}
}

func (f *koreaFetcher) ID() string { return SourceKorea }

func (f *koreaFetcher) Fetch(ctx context.Context, cfg Source) ([]domain.Article, error) {
	if !strings.EqualFold(cfg.ID, SourceKorea) {
		return nil, fmt.Errorf("korea fetcher received incompatible source %q", cfg.ID)
	}
	if len(cfg.URLs) == 0 {
		return nil, fmt.Errorf("korea source has no urls")
	}

	headers := Headers(cfg)
	seen := make(linkSet)
	var articles []domain.Article
	var lastErr error

	for _, pageURL := range cfg.URLs {
		if ctx.Err() != nil {
			break
		}

		doc, err := fetchDocument(ctx, f.client, pageURL, SourceKorea, headers)
		if err != nil {
			lastErr = err
			continue
		}

		for _, a := range f.extractPage(ctx, doc) {
			articles = appendArticle(articles, seen, a)
		}
	}

	if len(articles) == 0 {
		if lastErr != nil {
			return nil, lastErr
		}
		return nil, fmt.Errorf("sedaily page returned no records")
	}
	return articles, nil
}

func (f *koreaFetcher) extractPage(ctx context.Context, doc *goquery.Document) []domain.Article {
	var out []domain.Article

	doc.Find("div.sub_lv_tit").Each(func(_ int, s *goquery.Selection) {
		parentLink := s.Closest("a")
		if parentLink.Length() == 0 {
			return
		}

		href, _ := parentLink.Attr("href")
		link := absoluteURL(sedailyBase, href)
		korean := strings.TrimSpace(s.Text())
		if link == "" || len([]rune(korean)) < minKoreanHeadline {
			return
		}

		category := "General"
		if sec := parentLink.Next().Filter("div.text_info").Find("span.sec"); sec.Length() > 0 {
			if txt := strings.TrimSpace(sec.Text()); txt != "" {
				category = f.tr.Translate(ctx, txt, "ko")
			}
		}

		headline := f.tr.Translate(ctx, korean, "ko")
		out = append(out, domain.Article{
			Site:     sedailySite,
			Headline: fmt.Sprintf("[%s] %s", category, pipeline.CleanHeadline(headline)),
			Link:     link,
			Category: category,
		})
	})

	if len(out) >= koreaFallbackFloor {
		return out
	}

	// layout fallback: common Korean news list selectors
	for _, sel := range []string{".news_list a[href]", ".article_list a[href]", "ul.sub_news_list a[href]"} {
		doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
			href, _ := s.Attr("href")
			link := absoluteURL(sedailyBase, href)
			korean := strings.TrimSpace(s.Text())
			if link == "" || len([]rune(korean)) < minKoreanHeadline {
				return
			}
			headline := f.tr.Translate(ctx, korean, "ko")
			out = append(out, domain.Article{
				Site:     sedailySite,
				Headline: fmt.Sprintf("[General] %s", pipeline.CleanHeadline(headline)),
				Link:     link,
				Category: "General",
			})
		})
		if len(out) >= koreaFallbackFloor {
			break
		}
	}

	return out
}
