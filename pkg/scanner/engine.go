// Package scanner implements the CSV encoding discovery-and-detection
// engine: folder discovery, a bounded parallel worker pool over a
// pre-enumerated work list, cooperative cancellation, and order-independent
// result aggregation.
package scanner

import (
	"context"
	"io"
	"log/slog"
	"runtime"
	"sync"

	"github.com/stackvity/csv-charset/pkg/scanner/detect"
)

// Engine executes one scan run: it feeds discovered work items to a
// bounded pool of classification workers and routes every result through
// a single aggregating reducer.
type Engine struct {
	opts       Options
	logger     *slog.Logger
	discovery  *Discovery
	aggregator *statsAggregator
	tracker    *Tracker
	workers    int
	notice     *WorkerNotice
}

// Scan is the package-level convenience entry point: validate, discover,
// run. Cancellation of ctx winds the scan down gracefully; the returned
// Report then carries partial but internally consistent statistics with
// Cancelled set, and the error is nil.
func Scan(ctx context.Context, opts Options) (Report, error) {
	if err := opts.Validate(); err != nil {
		return Report{}, err
	}
	opts = opts.withDefaults()

	disc, err := Discover(ctx, opts)
	if err != nil {
		if ctx.Err() != nil {
			// Interrupted during discovery: nothing processed yet.
			return Report{Cancelled: true}, nil
		}
		return Report{}, err
	}

	engine := NewEngine(opts, disc)
	return engine.Run(ctx), nil
}

// NewEngine builds an Engine over a completed discovery. Options must have
// been validated.
func NewEngine(opts Options, disc *Discovery) *Engine {
	opts = opts.withDefaults()
	logger := slog.New(discardHandler(opts.Logger)).With(slog.String("component", "engine"))

	cores := runtime.NumCPU()
	requested := opts.Workers
	if requested <= 0 {
		requested = defaultWorkers(cores)
	}
	effective := effectiveWorkers(requested, cores, disc.TotalFiles())

	e := &Engine{
		opts:       opts,
		logger:     logger,
		discovery:  disc,
		aggregator: newStatsAggregator(disc.Folders),
		workers:    effective,
	}
	if effective < requested && disc.TotalFiles() > 0 {
		e.notice = &WorkerNotice{Requested: requested, Effective: effective, Cores: cores, Files: disc.TotalFiles()}
	}
	return e
}

// defaultWorkers is the parallelism requested when the caller supplies
// none: half the available cores, floored at 1.
func defaultWorkers(cores int) int {
	if cores < 2 {
		return 1
	}
	return cores / 2
}

// effectiveWorkers applies the safety cap: never more workers than twice
// the core count, never more than there are files, never fewer than 1
// while there is work.
func effectiveWorkers(requested, cores, files int) int {
	if files == 0 {
		return 0
	}
	n := requested
	if limit := cores * workerCoreFactor; n > limit {
		n = limit
	}
	if n > files {
		n = files
	}
	if n < 1 {
		n = 1
	}
	return n
}

// Tracker exposes the run's progress tracker for mid-scan snapshots.
// It is nil until Run starts.
func (e *Engine) Tracker() *Tracker { return e.tracker }

// Run executes all classifications and blocks until every dispatched item
// is processed or cancellation is observed. Cancellation is edge-triggered:
// it is checked before each dispatch, never mid-file, so in-flight
// classifications finish and their results stay in the aggregate.
func (e *Engine) Run(ctx context.Context) Report {
	total := e.discovery.TotalFiles()
	e.tracker = NewTracker(total)
	hooks := e.opts.EventHooks

	hooks.OnScanStart(len(e.discovery.Folders), total)
	if e.notice != nil {
		e.logger.Info("capping workers",
			slog.Int("requested", e.notice.Requested),
			slog.Int("effective", e.notice.Effective),
			slog.Int("cores", e.notice.Cores),
			slog.Int("files", e.notice.Files))
		hooks.OnWorkersCapped(e.notice.Requested, e.notice.Effective, e.notice.Cores, e.notice.Files)
	}

	if total == 0 {
		// No pool is spawned for an empty work list; the report still
		// carries every zero-file folder.
		report := e.finish(false)
		hooks.OnScanComplete(report)
		return report
	}

	e.logger.Info("starting scan",
		slog.Int("folders", len(e.discovery.Folders)),
		slog.Int("files", total),
		slog.Int("workers", e.workers),
		slog.Bool("fast", e.opts.Fast))

	classifier := e.opts.ClassifierFactory(e.opts.SampleSize, e.opts.Fast, e.opts.Logger)

	// The work channel is unbuffered on purpose: a successful send means a
	// worker has taken the item, so the pre-send cancellation check is an
	// exact "no new items dispatched after the flag" guarantee.
	workChan := make(chan WorkItem)
	resultsChan := make(chan workResult, e.workers)

	var wg sync.WaitGroup
	for i := 0; i < e.workers; i++ {
		wg.Add(1)
		go e.classifyWorker(&wg, i, classifier, workChan, resultsChan)
	}

	aggregatorDone := make(chan struct{})
	go e.aggregateResults(resultsChan, aggregatorDone)

	cancelled := e.dispatch(ctx, workChan)

	wg.Wait()
	close(resultsChan)
	<-aggregatorDone

	report := e.finish(cancelled)
	hooks.OnScanComplete(report)
	return report
}

// workResult pairs a classification outcome with its owning work item for
// the aggregator.
type workResult struct {
	item   WorkItem
	result detect.Result
}

// dispatch feeds the pre-enumerated work list to the pool. It returns true
// when it stopped early because the context was cancelled.
func (e *Engine) dispatch(ctx context.Context, workChan chan<- WorkItem) bool {
	defer close(workChan)
	for _, item := range e.discovery.Items {
		// Checked unconditionally first: a two-case select picks randomly
		// when a worker is ready at the same moment the context dies, which
		// would let one extra item slip through.
		if ctx.Err() != nil {
			e.logger.Info("cancellation observed, suppressing remaining dispatches",
				slog.Int("completed", e.tracker.Snapshot().Completed))
			return true
		}
		select {
		case <-ctx.Done():
			e.logger.Info("cancellation observed, suppressing remaining dispatches",
				slog.Int("completed", e.tracker.Snapshot().Completed))
			return true
		case workChan <- item:
		}
	}
	return false
}

// classifyWorker pulls one item at a time and classifies it. A failure in
// one file never affects others; classification errors arrive as failed
// Results, not as worker errors.
func (e *Engine) classifyWorker(wg *sync.WaitGroup, id int, classifier FileClassifier, workChan <-chan WorkItem, resultsChan chan<- workResult) {
	defer wg.Done()
	logger := e.logger.With(slog.Int("workerID", id))
	logger.Debug("worker started")
	for item := range workChan {
		res := classifier.DetectFile(item.Path)
		logger.Debug("file classified",
			slog.String("path", item.Path),
			slog.String("encoding", string(res.Encoding)),
			slog.String("method", string(res.Method)))
		resultsChan <- workResult{item: item, result: res}
	}
	logger.Debug("worker shutting down")
}

// aggregateResults is the single reducer consuming every worker result.
// Counter updates and the per-file hook both happen here, so workers never
// share mutable aggregation state.
func (e *Engine) aggregateResults(resultsChan <-chan workResult, done chan<- struct{}) {
	defer close(done)
	total := e.discovery.TotalFiles()
	for wr := range resultsChan {
		e.aggregator.add(wr.item.Folder, wr.result)
		completed := e.tracker.done()
		e.opts.EventHooks.OnFileDone(wr.item.Folder, wr.item.Path, wr.result, completed, total)
	}
}

func (e *Engine) finish(cancelled bool) Report {
	report := e.aggregator.report(e.tracker.Elapsed(), e.discovery.Warnings, e.notice, cancelled)
	e.logger.Info("scan finished",
		slog.Int("processed", report.Overall.TotalFiles),
		slog.Int("detected", report.Overall.Detected),
		slog.Bool("cancelled", report.Cancelled),
		slog.Duration("elapsed", report.Overall.Elapsed))
	return report
}

func discardHandler(h slog.Handler) slog.Handler {
	if h == nil {
		return slog.NewTextHandler(io.Discard, nil)
	}
	return h
}
