package pipeline

import "time"

// The collection window widens on Mondays to cover the weekend.
const (
	weekdayWindowHours = 24
	mondayWindowHours  = 72

	// windowBufferHours absorbs rounding in source-rendered ages so an
	// article published right at the edge is not dropped.
	windowBufferHours = 1
)

// WindowHours returns the collection window for a run starting at now.
// The value is fixed for the whole run.
func WindowHours(now time.Time) float64 {
	if now.Weekday() == time.Monday {
		return mondayWindowHours
	}
	return weekdayWindowHours
}

// WithinWindow reports whether an article of the given age belongs in the
// run. Unknown ages (nil) are kept.
func WithinWindow(ageHours *float64, windowHours float64) bool {
	if ageHours == nil {
		return true
	}
	return *ageHours <= windowHours+windowBufferHours
}
