package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/newsdesk-hq/daily-clipper/internal/domain"
)

func TestWindowHours(t *testing.T) {
	monday := time.Date(2025, 6, 9, 8, 0, 0, 0, time.UTC)
	assert.Equal(t, float64(72), WindowHours(monday))

	tuesday := monday.Add(24 * time.Hour)
	assert.Equal(t, float64(24), WindowHours(tuesday))

	sunday := monday.Add(-24 * time.Hour)
	assert.Equal(t, float64(24), WindowHours(sunday))
}

func TestWithinWindow(t *testing.T) {
	tests := []struct {
		name   string
		age    *float64
		window float64
		want   bool
	}{
		{"unknown age kept", nil, 24, true},
		{"inside window", domain.Age(10), 24, true},
		{"edge of buffer", domain.Age(25), 24, true},
		{"past buffer", domain.Age(25.1), 24, false},
		{"monday buffer edge", domain.Age(73), 72, true},
		{"monday past buffer", domain.Age(73.5), 72, false},
		{"zero age", domain.Age(0), 24, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, WithinWindow(tc.age, tc.window))
		})
	}
}

func TestFilterWindow(t *testing.T) {
	articles := []domain.Article{
		{Headline: "fresh", AgeHours: domain.Age(2)},
		{Headline: "stale", AgeHours: domain.Age(60)},
		{Headline: "unknown"},
	}

	kept := FilterWindow(articles, 24)
	assert.Len(t, kept, 2)
	assert.Equal(t, "fresh", kept[0].Headline)
	assert.Equal(t, "unknown", kept[1].Headline)
}

func TestNormalizeAges(t *testing.T) {
	now := time.Date(2025, 6, 10, 15, 0, 0, 0, time.UTC)
	articles := []domain.Article{
		{Headline: "a", Timestamp: "2 hours ago"},
		{Headline: "b", Timestamp: "gibberish"},
		{Headline: "c", Timestamp: "5 hours ago", AgeHours: domain.Age(1)},
	}

	out := NormalizeAges(articles, now)
	assert.InDelta(t, 2, *out[0].AgeHours, 1e-9)
	assert.Nil(t, out[1].AgeHours)
	// pre-set ages are not overwritten
	assert.InDelta(t, 1, *out[2].AgeHours, 1e-9)
}
