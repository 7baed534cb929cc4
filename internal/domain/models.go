package domain

import "time"

// Domain contains core models shared across collectors, pipeline and server.

// Article is a single listing entry scraped from a source index page.
// Timestamp carries the raw published string as the site rendered it;
// AgeHours is the normalized age at collection time, nil when the raw
// timestamp could not be parsed.
type Article struct {
	Site      string   `json:"site"`
	Headline  string   `json:"headline"`
	Link      string   `json:"link"`
	Category  string   `json:"category,omitempty"`
	Timestamp string   `json:"timestamp,omitempty"`
	AgeHours  *float64 `json:"age_hours,omitempty"`
}

// Age returns a pointer to the given hour value, for building Articles.
func Age(hours float64) *float64 { return &hours }

// SourceResult captures one collector's outcome within a run.
type SourceResult struct {
	Source   string        `json:"source"`
	Articles []Article     `json:"-"`
	Count    int           `json:"count"`
	Err      string        `json:"error,omitempty"`
	Elapsed  time.Duration `json:"elapsed_ms"`
}

// RunState is the lifecycle state of a collection run.
type RunState string

const (
	RunIdle      RunState = "idle"
	RunRunning   RunState = "running"
	RunCompleted RunState = "completed"
	RunFailed    RunState = "failed"
)

// RunSnapshot is a point-in-time view of the orchestrator, safe to serialize.
type RunSnapshot struct {
	RunID         string         `json:"run_id,omitempty"`
	State         RunState       `json:"state"`
	Progress      int            `json:"progress"`
	CurrentSource string         `json:"current_source,omitempty"`
	WindowHours   float64        `json:"window_hours,omitempty"`
	Sources       []SourceResult `json:"sources,omitempty"`
	TotalArticles int            `json:"total_articles"`
	Errors        []string       `json:"errors,omitempty"`
	StartedAt     time.Time      `json:"started_at,omitempty"`
	FinishedAt    time.Time      `json:"finished_at,omitempty"`
	ReportPath    string         `json:"report_path,omitempty"`
}

// ProgressEvent is emitted as a run advances through its sources and phases.
type ProgressEvent struct {
	RunID   string    `json:"run_id"`
	Percent int       `json:"percent"`
	Source  string    `json:"source,omitempty"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}
