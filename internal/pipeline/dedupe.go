package pipeline

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/newsdesk-hq/daily-clipper/internal/domain"
)

// jaccardThreshold is the token-overlap ratio above which two headlines
// are considered the same story.
const jaccardThreshold = 0.8

var (
	categoryPrefixRe = regexp.MustCompile(`^\[[^\]]*\]\s*`)
	siteSuffixRe     = regexp.MustCompile(`\s*\|\s*[^|]*$`)
	punctRe          = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)
	spaceRe          = regexp.MustCompile(`\s+`)
)

// Dedupe removes duplicate articles, keeping the first occurrence.
// Invalid entries are dropped first; then exact link-key matches, then
// exact or near-identical headline keys. The operation is idempotent.
func Dedupe(articles []domain.Article) []domain.Article {
	out := make([]domain.Article, 0, len(articles))
	seenLinks := make(map[string]struct{}, len(articles))

	type kept struct {
		key    string
		tokens map[string]struct{}
	}
	var keptHeadlines []kept

	for _, a := range articles {
		if !ValidArticle(a) {
			continue
		}

		linkKey := LinkKey(a.Link)
		if linkKey != "" {
			if _, dup := seenLinks[linkKey]; dup {
				continue
			}
		}

		headKey := HeadlineKey(a.Headline)
		tokens := tokenSet(headKey)
		dup := false
		for _, k := range keptHeadlines {
			if headKey != "" && headKey == k.key {
				dup = true
				break
			}
			if jaccard(tokens, k.tokens) > jaccardThreshold {
				dup = true
				break
			}
		}
		if dup {
			continue
		}

		if linkKey != "" {
			seenLinks[linkKey] = struct{}{}
		}
		keptHeadlines = append(keptHeadlines, kept{key: headKey, tokens: tokens})
		out = append(out, a)
	}

	return out
}

// LinkKey canonicalizes a URL for duplicate detection: lowercase, no
// query, no fragment, no trailing slash.
func LinkKey(link string) string {
	link = strings.TrimSpace(link)
	if link == "" {
		return ""
	}

	u, err := url.Parse(link)
	if err != nil {
		return strings.ToLower(strings.TrimRight(link, "/"))
	}
	u.RawQuery = ""
	u.Fragment = ""
	return strings.ToLower(strings.TrimRight(u.String(), "/"))
}

// HeadlineKey canonicalizes a headline for duplicate detection: the
// leading [Category] tag and trailing "| site" are removed, punctuation
// stripped, case folded and whitespace collapsed.
func HeadlineKey(h string) string {
	h = strings.TrimSpace(h)
	h = categoryPrefixRe.ReplaceAllString(h, "")
	h = siteSuffixRe.ReplaceAllString(h, "")
	h = strings.ToLower(h)
	h = punctRe.ReplaceAllString(h, "")
	h = spaceRe.ReplaceAllString(h, " ")
	return strings.TrimSpace(h)
}

func tokenSet(key string) map[string]struct{} {
	if key == "" {
		return nil
	}
	set := make(map[string]struct{})
	for _, tok := range strings.Fields(key) {
		set[tok] = struct{}{}
	}
	return set
}

// jaccard computes |a ∩ b| / |a ∪ b|. Empty sets never match.
func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	inter := 0
	for tok := range a {
		if _, ok := b[tok]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}
