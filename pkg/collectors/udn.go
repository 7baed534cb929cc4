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
	udnSite = "UDN Money"
	udnBase = "https://money.udn.com"
)

// udnFetcher collects the UDN Money newest rank page. Headlines are
// Traditional Chinese; when translation does not yield usable English the
// original is kept under a [Chinese] marker.
type udnFetcher struct {
	client HTTPClient
	tr     Translator
}

// NewUDNFetcher builds the fetcher for UDN Money.
func NewUDNFetcher(client HTTPClient, tr Translator) Fetcher {
	if client == nil {
		client = DefaultHTTPClient()
	}
	if tr == nil {
		tr = nopTranslator{}
	}
	return &udnFetcher{client: client, tr: tr}
}

func (f *udnFetcher) ID() string { return SourceUDN }

func (f *udnFetcher) Fetch(ctx context.Context, cfg Source) ([]domain.Article, error) {
	if !strings.EqualFold(cfg.ID, SourceUDN) {
		return nil, fmt.Errorf("udn fetcher received incompatible source %q", cfg.ID)
	}
	if len(cfg.URLs) == 0 {
		return nil, fmt.Errorf("udn source has no urls")
	}

	headers := Headers(cfg)
	doc, err := fetchDocument(ctx, f.client, cfg.URLs[0], SourceUDN, headers)
	if err != nil {
		return nil, err
	}

	seen := make(linkSet)
	var articles []domain.Article

	doc.Find("div.story__content").Each(func(_ int, s *goquery.Selection) {
		h3 := s.Find("h3.story__headline").First()
		a := s.Find("a[href]").First()
		if h3.Length() == 0 || a.Length() == 0 {
			return
		}

		chinese := strings.TrimSpace(h3.Text())
		if len([]rune(chinese)) < 5 {
			return
		}

		href, _ := a.Attr("href")
		link := absoluteURL(udnBase, href)
		if link == "" {
			return
		}

		articles = appendArticle(articles, seen, domain.Article{
			Site:     udnSite,
			Headline: f.englishHeadline(ctx, chinese),
			Link:     link,
		})
	})

	if len(articles) == 0 {
		return nil, fmt.Errorf("udn page returned no records")
	}
	return articles, nil
}

// englishHeadline translates the Chinese headline, falling back to a
// marked original when the result is unusable.
func (f *udnFetcher) englishHeadline(ctx context.Context, chinese string) string {
	english := strings.TrimSpace(f.tr.Translate(ctx, chinese, "zh-TW"))
	if english == "" || english == chinese || len([]rune(english)) <= 3 {
		return "[Chinese] " + chinese
	}
	return pipeline.CleanHeadline(english)
}
