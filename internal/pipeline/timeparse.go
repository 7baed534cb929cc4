package pipeline

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Raw timestamps arrive in whatever shape the source page renders them,
// often embedded in surrounding text ("Posted 5 days ago"). ParseAge
// normalizes them to an age in fractional hours relative to now. Pattern
// rules apply in priority order and search anywhere in the text; the
// phrase table runs last as a substring match.

// specialPhrases are checked in order; the first phrase contained in the
// text wins.
var specialPhrases = []struct {
	phrase string
	hours  float64
}{
	{"just now", 0},
	{"a moment ago", 0},
	{"few seconds ago", 0},
	{"a minute ago", 1.0 / 60},
	{"an hour ago", 1},
	{"today", 0},
	{"this morning", 6},
	{"this afternoon", 3},
	{"this evening", 1},
	{"yesterday", 24},
	{"a day ago", 24},
	{"last night", 12},
	{"this week", 72},
	{"last week", 168},
	{"a week ago", 168},
}

// unitHours maps a unit token to its hour multiplier.
var unitHours = map[string]float64{
	"s": 1.0 / 3600, "sec": 1.0 / 3600, "secs": 1.0 / 3600, "second": 1.0 / 3600, "seconds": 1.0 / 3600,
	"m": 1.0 / 60, "min": 1.0 / 60, "mins": 1.0 / 60, "minute": 1.0 / 60, "minutes": 1.0 / 60,
	"h": 1, "hr": 1, "hrs": 1, "hour": 1, "hours": 1,
	"day": 24, "days": 24,
	"week": 168, "weeks": 168,
	"month": 720, "months": 720,
}

const unitAlt = `secs?|seconds?|mins?|minutes?|hrs?|hours?|days?|weeks?|months?|[smh]`

var (
	relativeAgoRe  = regexp.MustCompile(`(?i)(\d+)\s*(` + unitAlt + `)\s+ago`)
	relativeBareRe = regexp.MustCompile(`(?i)^(\d+)\s*(` + unitAlt + `)$`)
	hindiRe        = regexp.MustCompile(`(\d+)\s*(घंटे|मिनट|दिन)\s+पहले`)
	isoRe          = regexp.MustCompile(`\d{4}-\d{2}-\d{2}(?:[T ]\d{2}:\d{2}:\d{2}(?:Z|[+-]\d{2}:\d{2})?)?`)
	clockRe        = regexp.MustCompile(`(?i)(\d{1,2})[:.](\d{2})\s*(am|pm)`)
	numDateRe      = regexp.MustCompile(`(\d{1,2})([/-])(\d{1,2})[/-](\d{4})`)
)

// ParseAge converts a raw published string to an age in hours at now.
// ok is false when no rule matches.
func ParseAge(raw string, now time.Time) (float64, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return 0, false
	}

	if m := relativeAgoRe.FindStringSubmatch(s); m != nil {
		if hours, ok := relativeHours(m); ok {
			return hours, true
		}
	}
	if m := relativeBareRe.FindStringSubmatch(s); m != nil {
		if hours, ok := relativeHours(m); ok {
			return hours, true
		}
	}

	if m := hindiRe.FindStringSubmatch(strings.TrimSpace(raw)); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil {
			switch m[2] {
			case "घंटे":
				return clampAge(float64(n)), true
			case "मिनट":
				return clampAge(float64(n) / 60), true
			case "दिन":
				return clampAge(float64(n) * 24), true
			}
		}
	}

	if iso := isoRe.FindString(raw); iso != "" {
		if hours, ok := parseAbsolute(iso, now); ok {
			return hours, true
		}
	}

	if m := clockRe.FindStringSubmatch(s); m != nil {
		if hours, ok := parseClock(m, now); ok {
			return hours, true
		}
	}

	if m := numDateRe.FindStringSubmatch(s); m != nil {
		if hours, ok := parseNumericDate(m, now); ok {
			return hours, true
		}
	}

	for _, sc := range specialPhrases {
		if strings.Contains(s, sc.phrase) {
			return sc.hours, true
		}
	}

	return 0, false
}

func relativeHours(m []string) (float64, bool) {
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	mult, ok := unitHours[strings.ToLower(m[2])]
	if !ok {
		return 0, false
	}
	return clampAge(float64(n) * mult), true
}

// parseAbsolute handles ISO-8601 timestamps and date-only forms.
func parseAbsolute(raw string, now time.Time) (float64, bool) {
	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02",
	}
	for _, layout := range layouts {
		t, err := time.Parse(layout, raw)
		if err != nil {
			continue
		}
		if layout != time.RFC3339 {
			t = time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, now.Location())
		}
		return clampAge(now.Sub(t).Hours()), true
	}
	return 0, false
}

// parseClock handles "H:MM AM/PM" forms. A time later than now is taken
// to mean yesterday.
func parseClock(m []string, now time.Time) (float64, bool) {
	hour, err := strconv.Atoi(m[1])
	if err != nil || hour < 1 || hour > 12 {
		return 0, false
	}
	minute, err := strconv.Atoi(m[2])
	if err != nil || minute > 59 {
		return 0, false
	}

	if m[3] == "pm" && hour != 12 {
		hour += 12
	}
	if m[3] == "am" && hour == 12 {
		hour = 0
	}

	t := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if t.After(now) {
		t = t.Add(-24 * time.Hour)
	}
	return clampAge(now.Sub(t).Hours()), true
}

// parseNumericDate handles MM/DD/YYYY and MM-DD-YYYY, measured from
// midnight of that date.
func parseNumericDate(m []string, now time.Time) (float64, bool) {
	month, err := strconv.Atoi(m[1])
	if err != nil || month < 1 || month > 12 {
		return 0, false
	}
	day, err := strconv.Atoi(m[3])
	if err != nil || day < 1 || day > 31 {
		return 0, false
	}
	year, err := strconv.Atoi(m[4])
	if err != nil {
		return 0, false
	}

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, now.Location())
	return clampAge(now.Sub(t).Hours()), true
}

func clampAge(hours float64) float64 {
	if hours < 0 {
		return 0
	}
	return hours
}
