package server

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newsdesk-hq/daily-clipper/internal/domain"
	"github.com/newsdesk-hq/daily-clipper/internal/logger"
	"github.com/newsdesk-hq/daily-clipper/internal/orchestrator"
)

type fakeRunner struct {
	startErr error
	stopErr  error
	runID    string
	snap     domain.RunSnapshot
	report   string
	events   chan domain.ProgressEvent
}

func (f *fakeRunner) Start(context.Context) (string, error) {
	if f.startErr != nil {
		return "", f.startErr
	}
	return f.runID, nil
}

func (f *fakeRunner) Stop() error { return f.stopErr }

func (f *fakeRunner) Snapshot() domain.RunSnapshot { return f.snap }

func (f *fakeRunner) LastReport() string { return f.report }

func (f *fakeRunner) Subscribe() (<-chan domain.ProgressEvent, func()) {
	if f.events == nil {
		f.events = make(chan domain.ProgressEvent, 4)
	}
	return f.events, func() {}
}

type fakeHistory struct {
	runs []domain.RunSnapshot
}

func (f *fakeHistory) Runs() ([]domain.RunSnapshot, error) { return f.runs, nil }

func doRequest(t *testing.T, h http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestStatusEndpoint(t *testing.T) {
	runner := &fakeRunner{snap: domain.RunSnapshot{
		State:         domain.RunRunning,
		Progress:      45,
		CurrentSource: "bloomberg",
	}}
	h := New(runner, nil, nil, nil).Handler()

	rec := doRequest(t, h, http.MethodGet, "/api/status")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var snap domain.RunSnapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, domain.RunRunning, snap.State)
	assert.Equal(t, 45, snap.Progress)
	assert.Equal(t, "bloomberg", snap.CurrentSource)
}

func TestStartEndpoint(t *testing.T) {
	runner := &fakeRunner{runID: "run-123"}
	h := New(runner, nil, nil, nil).Handler()

	rec := doRequest(t, h, http.MethodPost, "/api/start")
	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp StartResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "run-123", resp.RunID)
	assert.Equal(t, "running", resp.State)
}

func TestStartConflict(t *testing.T) {
	runner := &fakeRunner{startErr: orchestrator.ErrAlreadyRunning}
	h := New(runner, nil, nil, nil).Handler()

	rec := doRequest(t, h, http.MethodPost, "/api/start")
	require.Equal(t, http.StatusConflict, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "already_running", resp.Error.Code)
}

func TestStartRequiresPost(t *testing.T) {
	h := New(&fakeRunner{}, nil, nil, nil).Handler()

	rec := doRequest(t, h, http.MethodGet, "/api/start")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestStopWhenIdle(t *testing.T) {
	runner := &fakeRunner{stopErr: orchestrator.ErrNotRunning}
	h := New(runner, nil, nil, nil).Handler()

	rec := doRequest(t, h, http.MethodPost, "/api/stop")
	require.Equal(t, http.StatusConflict, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "not_running", resp.Error.Code)
}

func TestDownloadNoReport(t *testing.T) {
	h := New(&fakeRunner{}, nil, nil, nil).Handler()

	rec := doRequest(t, h, http.MethodGet, "/api/download")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDownloadServesReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daily_news_20250610.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("workbook-bytes"), 0o644))

	h := New(&fakeRunner{report: path}, nil, nil, nil).Handler()

	rec := doRequest(t, h, http.MethodGet, "/api/download")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "daily_news_20250610.xlsx")
	assert.Equal(t, "workbook-bytes", rec.Body.String())
}

func TestLogsEndpoint(t *testing.T) {
	ring := logger.NewMemoryLog(50)
	log := logger.Tee(logger.NopLogger{}, ring)
	for i := 0; i < 25; i++ {
		log.InfoObj("source collected", "fetch_done", nil)
	}

	h := New(&fakeRunner{}, nil, ring, nil).Handler()

	rec := doRequest(t, h, http.MethodGet, "/api/logs")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp LogsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Lines, 20)
	assert.Contains(t, resp.Lines[0], "source collected")
}

func TestRunsEndpoint(t *testing.T) {
	history := &fakeHistory{runs: []domain.RunSnapshot{
		{RunID: "run-2", State: domain.RunCompleted},
		{RunID: "run-1", State: domain.RunFailed},
	}}
	h := New(&fakeRunner{}, history, nil, nil).Handler()

	rec := doRequest(t, h, http.MethodGet, "/api/runs")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp RunsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Runs, 2)
	assert.Equal(t, "run-2", resp.Runs[0].RunID)
}

func TestIndexServesDashboard(t *testing.T) {
	h := New(&fakeRunner{}, nil, nil, nil).Handler()

	rec := doRequest(t, h, http.MethodGet, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "Daily Clipper")

	rec = doRequest(t, h, http.MethodGet, "/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCORSHeaders(t *testing.T) {
	h := New(&fakeRunner{}, nil, nil, nil).Handler()

	rec := doRequest(t, h, http.MethodOptions, "/api/status")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestEventsStream(t *testing.T) {
	runner := &fakeRunner{
		snap:   domain.RunSnapshot{State: domain.RunRunning, Progress: 10},
		events: make(chan domain.ProgressEvent, 4),
	}
	runner.events <- domain.ProgressEvent{
		RunID:   "run-9",
		Percent: 50,
		Source:  "japan",
		Message: "collecting Nikkei Asia",
		At:      time.Now(),
	}

	ts := httptest.NewServer(New(runner, nil, nil, nil).Handler())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/api/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	var body strings.Builder
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		body.WriteString(scanner.Text())
		body.WriteString("\n")
		if strings.Contains(body.String(), `"run_id":"run-9"`) {
			break
		}
	}

	got := body.String()
	assert.Contains(t, got, "event: status")
	assert.Contains(t, got, "event: progress")
	assert.Contains(t, got, `"percent":50`)
	assert.Contains(t, got, `"run_id":"run-9"`)
}
