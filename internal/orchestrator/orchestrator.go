package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/newsdesk-hq/daily-clipper/internal/domain"
	"github.com/newsdesk-hq/daily-clipper/internal/logger"
	"github.com/newsdesk-hq/daily-clipper/internal/pipeline"
	"github.com/newsdesk-hq/daily-clipper/pkg/collectors"
)

var (
	// ErrAlreadyRunning is returned by Start while a run is in flight.
	ErrAlreadyRunning = errors.New("a collection run is already in progress")
	// ErrNotRunning is returned by Stop when no run is in flight.
	ErrNotRunning = errors.New("no collection run is in progress")
)

// ReportWriter persists a finished run as a report file.
type ReportWriter interface {
	Write(results []domain.SourceResult, day time.Time) (string, error)
}

// RunStore records finished runs and the latest report path.
type RunStore interface {
	SaveRun(snap domain.RunSnapshot) error
	SetLastReport(path string) error
}

// Notifier is told about finished runs. Delivery failures must not
// affect the run outcome.
type Notifier interface {
	RunFinished(ctx context.Context, snap domain.RunSnapshot)
}

// Options configures an Orchestrator.
type Options struct {
	Registry    collectors.FetcherRegistry
	Catalog     []collectors.Source
	Report      ReportWriter
	Store       RunStore
	Notifier    Notifier
	Logger      logger.Logger
	SourceDelay time.Duration
	Now         func() time.Time
}

// Orchestrator drives collection runs: one at a time, sources in
// catalog order, finishing with a report file.
type Orchestrator struct {
	registry collectors.FetcherRegistry
	catalog  []collectors.Source
	report   ReportWriter
	store    RunStore
	notifier Notifier
	log      logger.Logger
	delay    time.Duration
	now      func() time.Time

	mu       sync.Mutex
	state    domain.RunState
	snap     domain.RunSnapshot
	cancel   context.CancelFunc
	done     chan struct{}
	subs     map[chan domain.ProgressEvent]struct{}
	lastPath string
}

// New builds an Orchestrator from the given options.
func New(opts Options) (*Orchestrator, error) {
	if opts.Registry == nil {
		return nil, errors.New("orchestrator requires a fetcher registry")
	}
	if len(opts.Catalog) == 0 {
		return nil, errors.New("orchestrator requires at least one source")
	}
	if opts.Report == nil {
		return nil, errors.New("orchestrator requires a report writer")
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Orchestrator{
		registry: opts.Registry,
		catalog:  opts.Catalog,
		report:   opts.Report,
		store:    opts.Store,
		notifier: opts.Notifier,
		log:      logger.Ensure(opts.Logger),
		delay:    opts.SourceDelay,
		now:      opts.Now,
		state:    domain.RunIdle,
		snap:     domain.RunSnapshot{State: domain.RunIdle},
		subs:     make(map[chan domain.ProgressEvent]struct{}),
	}, nil
}

// Start begins a new run in the background and returns its id.
func (o *Orchestrator) Start(ctx context.Context) (string, error) {
	o.mu.Lock()
	if o.state == domain.RunRunning {
		o.mu.Unlock()
		return "", ErrAlreadyRunning
	}

	runID := uuid.NewString()
	now := o.now()
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))

	o.state = domain.RunRunning
	o.cancel = cancel
	o.done = make(chan struct{})
	o.snap = domain.RunSnapshot{
		RunID:       runID,
		State:       domain.RunRunning,
		WindowHours: pipeline.WindowHours(now),
		StartedAt:   now,
	}
	done := o.done
	o.mu.Unlock()

	go func() {
		defer close(done)
		o.run(runCtx, runID, now)
	}()

	return runID, nil
}

// Stop requests the current run halt after the source in progress.
func (o *Orchestrator) Stop() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state != domain.RunRunning || o.cancel == nil {
		return ErrNotRunning
	}
	o.cancel()
	return nil
}

// Wait blocks until the in-flight run finishes. It returns immediately
// when no run is active.
func (o *Orchestrator) Wait() {
	o.mu.Lock()
	done := o.done
	o.mu.Unlock()
	if done != nil {
		<-done
	}
}

// Snapshot returns the current run view.
func (o *Orchestrator) Snapshot() domain.RunSnapshot {
	o.mu.Lock()
	defer o.mu.Unlock()

	snap := o.snap
	snap.Sources = append([]domain.SourceResult(nil), o.snap.Sources...)
	snap.Errors = append([]string(nil), o.snap.Errors...)
	return snap
}

// LastReport returns the path of the most recent report, "" when none.
func (o *Orchestrator) LastReport() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastPath
}

// SetLastReport seeds the report path, typically from the store at startup.
func (o *Orchestrator) SetLastReport(path string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.lastPath == "" {
		o.lastPath = path
	}
}

// Subscribe registers a progress listener. The returned cancel func
// must be called when the listener goes away.
func (o *Orchestrator) Subscribe() (<-chan domain.ProgressEvent, func()) {
	ch := make(chan domain.ProgressEvent, 16)

	o.mu.Lock()
	o.subs[ch] = struct{}{}
	o.mu.Unlock()

	return ch, func() {
		o.mu.Lock()
		delete(o.subs, ch)
		o.mu.Unlock()
	}
}

func (o *Orchestrator) publish(ev domain.ProgressEvent) {
	o.mu.Lock()
	for ch := range o.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	o.mu.Unlock()
}

func (o *Orchestrator) progress(runID string, percent int, source, message string) {
	o.mu.Lock()
	o.snap.Progress = percent
	o.snap.CurrentSource = source
	o.mu.Unlock()

	o.publish(domain.ProgressEvent{
		RunID:   runID,
		Percent: percent,
		Source:  source,
		Message: message,
		At:      o.now(),
	})
}

func (o *Orchestrator) run(ctx context.Context, runID string, startedAt time.Time) {
	windowHours := pipeline.WindowHours(startedAt)

	o.log.InfoObj("collection run started", "run_start", map[string]any{
		"run_id":       runID,
		"window_hours": windowHours,
		"sources":      len(o.catalog),
	})
	o.progress(runID, 0, "", "run started")

	enabled := make([]collectors.Source, 0, len(o.catalog))
	for _, src := range o.catalog {
		if src.EnabledValue() {
			enabled = append(enabled, src)
		}
	}

	results := make([]domain.SourceResult, 0, len(enabled))
	var errs []string
	stopped := false

	for i, src := range enabled {
		if ctx.Err() != nil {
			stopped = true
			o.log.WarnObj("collection run stopped early", "run_stop", map[string]any{
				"run_id":    runID,
				"completed": i,
				"of":        len(enabled),
			})
			break
		}

		pct := i * 90 / len(enabled)
		o.progress(runID, pct, src.ID, fmt.Sprintf("collecting %s", src.Name))

		res := o.collect(ctx, src, windowHours)
		if res.Err != "" {
			errs = append(errs, fmt.Sprintf("%s: %s", src.ID, res.Err))
		}
		results = append(results, res)

		o.mu.Lock()
		o.snap.Sources = append([]domain.SourceResult(nil), results...)
		o.snap.Errors = append([]string(nil), errs...)
		o.mu.Unlock()

		if o.delay > 0 && i < len(enabled)-1 {
			select {
			case <-ctx.Done():
			case <-time.After(o.delay):
			}
		}
	}

	total := 0
	for _, res := range results {
		total += res.Count
	}

	o.progress(runID, 90, "", "writing report")

	finalState := domain.RunCompleted
	var reportPath string
	path, err := o.report.Write(results, startedAt)
	if err != nil {
		finalState = domain.RunFailed
		errs = append(errs, fmt.Sprintf("report: %v", err))
		o.log.ErrorObj("report write failed", "report_error", map[string]any{
			"run_id": runID,
			"error":  err.Error(),
		})
	} else {
		reportPath = path
	}

	o.mu.Lock()
	o.state = finalState
	o.snap.State = finalState
	o.snap.Progress = 100
	o.snap.CurrentSource = ""
	o.snap.Sources = results
	o.snap.TotalArticles = total
	o.snap.Errors = errs
	o.snap.FinishedAt = o.now()
	o.snap.ReportPath = reportPath
	if reportPath != "" {
		o.lastPath = reportPath
	}
	o.cancel = nil
	snap := o.snap
	o.mu.Unlock()

	o.publish(domain.ProgressEvent{
		RunID:   runID,
		Percent: 100,
		Message: string(finalState),
		At:      o.now(),
	})

	if o.store != nil {
		if err := o.store.SaveRun(snap); err != nil {
			o.log.WarnObj("run snapshot not persisted", "store_error", map[string]any{
				"run_id": runID,
				"error":  err.Error(),
			})
		}
		if reportPath != "" {
			if err := o.store.SetLastReport(reportPath); err != nil {
				o.log.WarnObj("last report path not persisted", "store_error", map[string]any{
					"run_id": runID,
					"error":  err.Error(),
				})
			}
		}
	}

	if o.notifier != nil {
		o.notifier.RunFinished(context.WithoutCancel(ctx), snap)
	}

	o.log.InfoObj("collection run finished", "run_finish", map[string]any{
		"run_id":   runID,
		"state":    string(finalState),
		"articles": total,
		"errors":   len(errs),
		"stopped":  stopped,
		"report":   reportPath,
	})
}

func (o *Orchestrator) collect(ctx context.Context, src collectors.Source, windowHours float64) domain.SourceResult {
	res := domain.SourceResult{Source: src.Name}
	if res.Source == "" {
		res.Source = src.ID
	}

	start := o.now()
	fetcher, err := o.registry.FetcherFor(src)
	if err != nil {
		res.Err = err.Error()
		res.Elapsed = o.now().Sub(start)
		return res
	}

	articles, err := fetcher.Fetch(ctx, src)
	res.Elapsed = o.now().Sub(start)
	if err != nil {
		res.Err = err.Error()
		o.log.WarnObj("source fetch failed", "fetch_error", map[string]any{
			"source": src.ID,
			"error":  err.Error(),
		})
		return res
	}

	articles = pipeline.NormalizeAges(articles, start)
	articles = pipeline.FilterWindow(articles, windowHours)
	articles = filterValid(articles)
	articles = pipeline.Dedupe(articles)

	res.Articles = articles
	res.Count = len(articles)

	o.log.InfoObj("source collected", "fetch_done", map[string]any{
		"source":   src.ID,
		"articles": res.Count,
		"elapsed":  res.Elapsed.String(),
	})
	return res
}

// filterValid drops articles a collector let through that cannot be
// published, before dedup sees them.
func filterValid(articles []domain.Article) []domain.Article {
	out := articles[:0]
	for _, a := range articles {
		if pipeline.ValidArticle(a) {
			out = append(out, a)
		}
	}
	return out
}
