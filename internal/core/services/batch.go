package services

import (
	"context"
	"fmt"
	"runtime"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/tiffheif/internal/core/domain"
	"github.com/custodia-labs/tiffheif/internal/core/ports/driven"
	"github.com/custodia-labs/tiffheif/internal/core/ports/driving"
	"github.com/custodia-labs/tiffheif/internal/logger"
)

// Ensure BatchOrchestrator implements the interface.
var _ driving.BatchOrchestrator = (*BatchOrchestrator)(nil)

// BatchOrchestrator runs conversions on a worker pool and aggregates outcomes.
// Only one batch runs at a time.
type BatchOrchestrator struct {
	converter driving.Converter
	pools     driven.WorkerPoolFactory
	runStore  driven.RunStore

	historyKeep int
	now         func() time.Time

	// Status tracking
	mu     sync.RWMutex
	status driving.BatchStatus
}

// NewBatchOrchestrator creates a batch orchestrator.
// runStore is optional; when nil, runs are not recorded.
func NewBatchOrchestrator(
	converter driving.Converter,
	pools driven.WorkerPoolFactory,
	runStore driven.RunStore,
) *BatchOrchestrator {
	return &BatchOrchestrator{
		converter: converter,
		pools:     pools,
		runStore:  runStore,
		now:       time.Now,
	}
}

// SetHistoryKeep prunes recorded runs to the most recent keep after each run.
// Zero disables pruning.
func (o *BatchOrchestrator) SetHistoryKeep(keep int) {
	o.historyKeep = keep
}

// indexedOutcome carries a worker result back to the controlling goroutine.
type indexedOutcome struct {
	index   int
	outcome domain.Outcome
}

// Run converts every source in req and returns the aggregate summary.
//
//nolint:gocognit // Orchestration function coordinating submission and ordered collection
func (o *BatchOrchestrator) Run(
	ctx context.Context,
	req domain.BatchRequest,
	onEvent driving.EventHandler,
) (*domain.BatchSummary, error) {
	// 1. Reject requests that cannot start
	if len(req.Sources) == 0 {
		return nil, domain.ErrNoSources
	}
	if err := req.Options.Validate(); err != nil {
		return nil, err
	}
	policy := req.Policy
	if policy == "" {
		policy = domain.PolicySequential
	}
	if !policy.IsValid() {
		return nil, fmt.Errorf("%w: unknown batch policy %q", domain.ErrInvalidInput, policy)
	}
	workers := poolSize(policy, req.Workers, len(req.Sources))

	// 2. Claim the orchestrator
	runID := uuid.New().String()
	sources := slices.Clone(req.Sources)
	opts := req.Options
	if !o.begin(runID, len(sources)) {
		return nil, domain.ErrBatchInProgress
	}
	defer o.finish()

	pool, err := o.pools.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	summary := &domain.BatchSummary{
		RunID:     runID,
		Total:     len(sources),
		StartedAt: o.now(),
	}
	logger.Section("Batch " + runID)
	logger.Info("Converting %d files (%s, %d workers) into %s", len(sources), policy, workers, opts.OutputDirectory)

	// 3. Submit files and apply outcomes in source order. Conversions run
	// detached from ctx so a file in flight always finishes.
	results := make(chan indexedOutcome, len(sources))
	workCtx := context.WithoutCancel(ctx)
	seq := newSequencer()
	submitted := 0

	apply := func(res indexedOutcome) {
		for _, ready := range seq.push(res) {
			summary.Record(ready.outcome)
			progress := summary.Progress()
			o.advance(ready.outcome, progress)
			if !ready.outcome.Succeeded() {
				logger.Debug("failed %s: %v", ready.outcome.Source, ready.outcome.Err)
			}
			if onEvent != nil {
				onEvent(domain.BatchEvent{
					RunID:    runID,
					Index:    ready.index,
					Outcome:  ready.outcome,
					Progress: progress,
				})
			}
		}
	}
	drain := func(blocking bool) {
		for seq.next < submitted {
			if blocking {
				apply(<-results)
				continue
			}
			select {
			case res := <-results:
				apply(res)
			default:
				return
			}
		}
	}

	for i, source := range sources {
		if ctx.Err() != nil {
			summary.Cancelled = true
			logger.Info("Batch %s cancelled after %d of %d files", runID, submitted, len(sources))
			break
		}
		submitted++
		if err := pool.Submit(o.task(workCtx, i, source, opts, results)); err != nil {
			results <- indexedOutcome{
				index:   i,
				outcome: domain.Failed(source, domain.KindConversionFailed, fmt.Errorf("submit: %w", err)),
			}
		}
		// Sequential runs finish each file before the next starts.
		drain(policy == domain.PolicySequential)
	}
	drain(true)

	summary.EndedAt = o.now()
	logger.Info("Batch %s finished: %d succeeded, %d failed in %s",
		runID, summary.Succeeded, summary.FailedCount(), summary.Duration().Round(time.Millisecond))

	// 4. Record history; failures here never fail the batch
	o.record(ctx, summary, opts, policy, workers)

	return summary, nil
}

// Status returns the state of the current or most recent run.
func (o *BatchOrchestrator) Status(_ context.Context) *driving.BatchStatus {
	o.mu.RLock()
	defer o.mu.RUnlock()

	// Return a copy to avoid race conditions
	status := o.status
	return &status
}

// task wraps a single conversion so a panicking codec becomes a failure.
func (o *BatchOrchestrator) task(
	ctx context.Context,
	index int,
	source string,
	opts domain.ConversionOptions,
	results chan<- indexedOutcome,
) func() {
	return func() {
		var outcome domain.Outcome
		defer func() {
			if r := recover(); r != nil {
				outcome = domain.Failed(source, domain.KindConversionFailed, fmt.Errorf("panic: %v", r))
			}
			results <- indexedOutcome{index: index, outcome: outcome}
		}()
		outcome = o.converter.Convert(ctx, source, opts)
	}
}

func (o *BatchOrchestrator) begin(runID string, total int) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.status.Running {
		return false
	}
	o.status = driving.BatchStatus{
		RunID:    runID,
		Running:  true,
		Progress: domain.Progress{Total: total},
	}
	return true
}

func (o *BatchOrchestrator) advance(outcome domain.Outcome, progress domain.Progress) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.status.Progress = progress
	o.status.Current = outcome.Source
	if !outcome.Succeeded() {
		o.status.ErrorCount++
	}
}

func (o *BatchOrchestrator) finish() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.status.Running = false
}

func (o *BatchOrchestrator) record(
	ctx context.Context,
	summary *domain.BatchSummary,
	opts domain.ConversionOptions,
	policy domain.Policy,
	workers int,
) {
	if o.runStore == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	run := &domain.RunRecord{
		Summary: *summary,
		Options: opts,
		Policy:  policy,
		Workers: workers,
	}
	if err := o.runStore.Save(ctx, run); err != nil {
		logger.Warn("failed to record batch %s: %v", summary.RunID, err)
		return
	}
	if o.historyKeep > 0 {
		if _, err := o.runStore.Prune(ctx, o.historyKeep); err != nil {
			logger.Warn("failed to prune batch history: %v", err)
		}
	}
}

// poolSize returns the worker count for a policy.
func poolSize(policy domain.Policy, workers, files int) int {
	if policy == domain.PolicySequential {
		return 1
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return max(1, min(workers, files))
}

// sequencer releases outcomes in index order.
type sequencer struct {
	next    int
	pending map[int]domain.Outcome
}

func newSequencer() *sequencer {
	return &sequencer{pending: make(map[int]domain.Outcome)}
}

// push buffers res and returns every outcome that is now next in line.
func (s *sequencer) push(res indexedOutcome) []indexedOutcome {
	s.pending[res.index] = res.outcome
	var ready []indexedOutcome
	for {
		outcome, ok := s.pending[s.next]
		if !ok {
			return ready
		}
		delete(s.pending, s.next)
		ready = append(ready, indexedOutcome{index: s.next, outcome: outcome})
		s.next++
	}
}
