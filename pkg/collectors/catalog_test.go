package collectors

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sources.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadCatalog(t *testing.T) {
	path := writeCatalog(t, `
sources:
  - id: Bloomberg
    name: Bloomberg
    urls:
      - https://www.bloomberg.com/lineup-next/api/stories
  - id: korea
    name: Seoul Economic Daily
    language: ko
    enabled: false
    urls:
      - https://www.sedaily.com/v/NewsMain/GC
`)

	sources, err := LoadCatalog(path)
	require.NoError(t, err)
	require.Len(t, sources, 2)

	assert.Equal(t, SourceBloomberg, sources[0].ID)
	assert.True(t, sources[0].EnabledValue())
	assert.Equal(t, "ko", sources[1].Language)
	assert.False(t, sources[1].EnabledValue())
}

func TestLoadCatalogExpandsEnv(t *testing.T) {
	t.Setenv("CLIPPER_GMK_URL", "https://gmk.center/en/news/")

	path := writeCatalog(t, `
sources:
  - id: gmk
    name: GMK Center
    urls:
      - ${CLIPPER_GMK_URL}
`)

	sources, err := LoadCatalog(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://gmk.center/en/news/"}, sources[0].URLs)
}

func TestLoadCatalogRejectsDuplicates(t *testing.T) {
	path := writeCatalog(t, `
sources:
  - id: gmk
    urls: [https://gmk.center/en/news/]
  - id: GMK
    urls: [https://gmk.center/en/news/]
`)

	_, err := LoadCatalog(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate source id")
}

func TestLoadCatalogRequiresURLs(t *testing.T) {
	path := writeCatalog(t, "sources:\n  - id: gmk\n")

	_, err := LoadCatalog(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has no urls")
}

func TestDefaultCatalogOrder(t *testing.T) {
	sources := DefaultCatalog()
	require.Len(t, sources, 10)

	var ids []string
	for _, s := range sources {
		ids = append(ids, s.ID)
		assert.NotEmpty(t, s.URLs, s.ID)
		assert.True(t, s.EnabledValue(), s.ID)
	}

	assert.Equal(t, []string{
		SourceSingapore, SourceJapan, SourceIndia, SourceKorea, SourceYahoo,
		SourceTradeWinds, SourceBloomberg, SourceTrendForce, SourceUDN, SourceGMK,
	}, ids)
}
