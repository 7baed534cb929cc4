package pipeline

import (
	"strings"

	"github.com/newsdesk-hq/daily-clipper/internal/domain"
)

const (
	minHeadlineLenStrict  = 5
	minHeadlineLenLenient = 10
)

// spamMarkers disqualify a headline regardless of length.
var spamMarkers = []string{
	"click here",
	"free download",
	"limited time",
	"!!!",
}

// errorIndicators are fragments of error or placeholder pages that leak
// into scraped listings.
var errorIndicators = []string{
	"page not found",
	"error 404",
	"access denied",
	"loading...",
	"please wait",
	"javascript required",
}

// ValidHeadline reports whether h looks like genuine article text.
// The strict length floor is the publishable minimum; the lenient one
// suits collectors that want to skip link scraps early.
func ValidHeadline(h string, strict bool) bool {
	h = strings.TrimSpace(h)

	minLen := minHeadlineLenLenient
	if strict {
		minLen = minHeadlineLenStrict
	}
	if len([]rune(h)) < minLen {
		return false
	}

	lower := strings.ToLower(h)
	for _, marker := range spamMarkers {
		if strings.Contains(lower, marker) {
			return false
		}
	}
	for _, indicator := range errorIndicators {
		if strings.Contains(lower, indicator) {
			return false
		}
	}
	return true
}

// ValidArticle reports whether the article carries enough to publish:
// a resolvable http link, a plausible headline and a known site.
func ValidArticle(a domain.Article) bool {
	link := strings.TrimSpace(a.Link)
	if !strings.HasPrefix(link, "http://") && !strings.HasPrefix(link, "https://") {
		return false
	}
	if strings.TrimSpace(a.Site) == "" {
		return false
	}
	return ValidHeadline(a.Headline, true)
}
