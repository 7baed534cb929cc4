package pipeline

import (
	"regexp"
	"strings"
)

// Trailing boilerplate that sources append to listing headlines.
var headlineNoiseRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\s*\|\s*(the edge singapore|the business times|the straits times|yahoo finance|nikkei asia|hindustan times).*$`),
	regexp.MustCompile(`(?i)\s*-\s*(tradewinds|trendforce|gmk center)\s*$`),
	regexp.MustCompile(`(?i)\s*read more\s*$`),
	regexp.MustCompile(`(?i)\s*\.{3}\s*$`),
}

// CleanHeadline strips site boilerplate and normalizes whitespace while
// keeping the headline human-readable. Category prefixes are preserved.
func CleanHeadline(h string) string {
	h = strings.TrimSpace(h)
	for _, re := range headlineNoiseRes {
		h = re.ReplaceAllString(h, "")
	}
	h = spaceRe.ReplaceAllString(h, " ")
	return strings.TrimSpace(h)
}
