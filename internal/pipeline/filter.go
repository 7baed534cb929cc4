package pipeline

import (
	"time"

	"github.com/newsdesk-hq/daily-clipper/internal/domain"
)

// NormalizeAges fills AgeHours for articles whose raw timestamp parses,
// leaving unparseable ones nil.
func NormalizeAges(articles []domain.Article, now time.Time) []domain.Article {
	out := make([]domain.Article, len(articles))
	copy(out, articles)
	for i := range out {
		if out[i].AgeHours != nil {
			continue
		}
		if hours, ok := ParseAge(out[i].Timestamp, now); ok {
			out[i].AgeHours = domain.Age(hours)
		}
	}
	return out
}

// FilterWindow keeps articles inside the collection window. Articles with
// unknown age pass through.
func FilterWindow(articles []domain.Article, windowHours float64) []domain.Article {
	out := make([]domain.Article, 0, len(articles))
	for _, a := range articles {
		if WithinWindow(a.AgeHours, windowHours) {
			out = append(out, a)
		}
	}
	return out
}
