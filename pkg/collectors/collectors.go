package collectors

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/newsdesk-hq/daily-clipper/internal/domain"
	"github.com/newsdesk-hq/daily-clipper/pkg/httpclient"
)

// HTTPClient is the transport contract collectors fetch pages with.
type HTTPClient = httpclient.Client

// Translator converts foreign-language headlines to English. Failures
// must return the original text so collection never blocks on it.
type Translator interface {
	Translate(ctx context.Context, text, fromLang string) string
}

// Fetcher collects listing articles for one source family.
type Fetcher interface {
	ID() string
	Fetch(ctx context.Context, cfg Source) ([]domain.Article, error)
}

// FetcherRegistry resolves fetchers for configured sources.
type FetcherRegistry interface {
	FetcherFor(cfg Source) (Fetcher, error)
}

type fetcherRegistry struct {
	fetchers map[string]Fetcher
	mu       sync.RWMutex
}

// NewFetcherRegistry builds a registry for the provided fetcher implementations.
func NewFetcherRegistry(fetchers ...Fetcher) FetcherRegistry {
	reg := &fetcherRegistry{
		fetchers: make(map[string]Fetcher, len(fetchers)),
	}

	for _, f := range fetchers {
		if f == nil {
			continue
		}
		reg.fetchers[strings.ToLower(strings.TrimSpace(f.ID()))] = f
	}

	return reg
}

// FetcherFor selects the fetcher for the given source based on its id.
func (r *fetcherRegistry) FetcherFor(cfg Source) (Fetcher, error) {
	if cfg.ID == "" {
		return nil, fmt.Errorf("source id is empty")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	key := strings.ToLower(cfg.ID)
	if f, ok := r.fetchers[key]; ok {
		return f, nil
	}

	return nil, fmt.Errorf("no fetcher registered for source %q", cfg.ID)
}

// DefaultHTTPClient returns a tuned http client for source fetchers.
func DefaultHTTPClient() HTTPClient { return httpclient.NewRestyClient(15 * time.Second) }

// DefaultFetcherRegistry wires up the known source fetchers.
func DefaultFetcherRegistry(client HTTPClient, tr Translator) FetcherRegistry {
	if client == nil {
		client = DefaultHTTPClient()
	}
	if tr == nil {
		tr = nopTranslator{}
	}

	return NewFetcherRegistry(
		NewSingaporeFetcher(client),
		NewJapanFetcher(client),
		NewIndiaFetcher(client),
		NewKoreaFetcher(client, tr),
		NewYahooFetcher(client),
		NewTradeWindsFetcher(client),
		NewBloombergFetcher(client),
		NewTrendForceFetcher(client),
		NewUDNFetcher(client, tr),
		NewGMKFetcher(client),
	)
}

// nopTranslator passes text through unchanged.
type nopTranslator struct{}

func (nopTranslator) Translate(_ context.Context, text, _ string) string { return text }
