package collectors

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Source ids; catalog order is the aggregation priority.
const (
	SourceSingapore  = "singapore"
	SourceJapan      = "japan"
	SourceIndia      = "india"
	SourceKorea      = "korea"
	SourceYahoo      = "yahoo"
	SourceTradeWinds = "tradewinds"
	SourceBloomberg  = "bloomberg"
	SourceTrendForce = "trendforce"
	SourceUDN        = "udn"
	SourceGMK        = "gmk"
)

// Source describes one configured source family.
type Source struct {
	ID       string            `yaml:"id"`
	Name     string            `yaml:"name"`
	URLs     []string          `yaml:"urls"`
	Language string            `yaml:"language"`
	Headers  map[string]string `yaml:"headers"`
	Enabled  *bool             `yaml:"enabled"`
}

// EnabledValue returns the enabled flag defaulting to true.
func (s Source) EnabledValue() bool {
	if s.Enabled == nil {
		return true
	}
	return *s.Enabled
}

type catalogFile struct {
	Sources []Source `yaml:"sources"`
}

// LoadCatalog reads the source catalog from a YAML file. Entries keep
// file order, which is the aggregation priority. Environment references
// in the file are expanded.
func LoadCatalog(path string) ([]Source, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sources file: %w", err)
	}

	var cf catalogFile
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(raw))), &cf); err != nil {
		return nil, fmt.Errorf("decode sources file: %w", err)
	}
	if len(cf.Sources) == 0 {
		return nil, fmt.Errorf("sources file contains no sources")
	}

	seen := make(map[string]struct{}, len(cf.Sources))
	for i := range cf.Sources {
		cf.Sources[i].ID = strings.ToLower(strings.TrimSpace(cf.Sources[i].ID))
		if cf.Sources[i].ID == "" {
			return nil, fmt.Errorf("sources[%d]: id is required", i)
		}
		if _, dup := seen[cf.Sources[i].ID]; dup {
			return nil, fmt.Errorf("duplicate source id %q", cf.Sources[i].ID)
		}
		seen[cf.Sources[i].ID] = struct{}{}
		if len(cf.Sources[i].URLs) == 0 {
			return nil, fmt.Errorf("source %q has no urls", cf.Sources[i].ID)
		}
	}

	return cf.Sources, nil
}

// DefaultCatalog returns the built-in source catalog in priority order.
func DefaultCatalog() []Source {
	return []Source{
		{
			ID:   SourceSingapore,
			Name: "Singapore",
			URLs: []string{
				"https://www.theedgesingapore.com",
				"https://www.theedgesingapore.com/news",
				"https://www.theedgesingapore.com/section/latest",
				"https://www.businesstimes.com.sg/singapore/economy-policy",
				"https://www.straitstimes.com/singapore/latest",
				"https://sg.finance.yahoo.com/topic/singapore/",
			},
		},
		{
			ID:   SourceJapan,
			Name: "Nikkei Asia",
			URLs: []string{
				"https://asia.nikkei.com/Location/East-Asia/Japan?page=1",
				"https://asia.nikkei.com/Location/East-Asia/Japan?page=2",
			},
		},
		{
			ID:   SourceIndia,
			Name: "Hindustan Times",
			URLs: []string{
				"https://www.hindustantimes.com/india-news",
				"https://www.hindustantimes.com/india-news/page-2",
				"https://www.hindustantimes.com/india-news/page-3",
				"https://www.hindustantimes.com/india-news/page-4",
			},
			Headers: map[string]string{"Referer": "https://www.hindustantimes.com"},
		},
		{
			ID:       SourceKorea,
			Name:     "Seoul Economic Daily",
			URLs:     []string{"https://www.sedaily.com/v/NewsMain/GC"},
			Language: "ko",
		},
		{
			ID:   SourceYahoo,
			Name: "Yahoo Finance",
			URLs: []string{
				"https://uk.finance.yahoo.com/",
				"https://uk.finance.yahoo.com/topic/stocks/",
				"https://finance.yahoo.com/topic/latest-news/",
			},
		},
		{
			ID:   SourceTradeWinds,
			Name: "TradeWinds",
			URLs: []string{"https://www.tradewindsnews.com/latest"},
		},
		{
			ID:   SourceBloomberg,
			Name: "Bloomberg",
			URLs: []string{"https://www.bloomberg.com/lineup-next/api/stories"},
		},
		{
			ID:   SourceTrendForce,
			Name: "TrendForce",
			URLs: []string{"https://www.trendforce.com/news/"},
		},
		{
			ID:       SourceUDN,
			Name:     "UDN Money",
			URLs:     []string{"https://money.udn.com/rank/newest/1001/0/1"},
			Language: "zh-TW",
		},
		{
			ID:   SourceGMK,
			Name: "GMK Center",
			URLs: []string{"https://gmk.center/en/news/"},
		},
	}
}
