package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/tiffheif/internal/core/domain"
	"github.com/custodia-labs/tiffheif/internal/core/ports/driven"
	"github.com/custodia-labs/tiffheif/internal/core/ports/driving"
	"github.com/custodia-labs/tiffheif/internal/logger"
)

// Ensure FolderWatcher implements the interface.
var _ driving.FolderWatcher = (*FolderWatcher)(nil)

// Watch timing defaults.
const (
	// DefaultSettleDelay is how long a folder must be quiet before a batch starts.
	DefaultSettleDelay = 2 * time.Second

	// DefaultBatchInterval is the minimum time between batch starts.
	DefaultBatchInterval = 5 * time.Second
)

// FolderWatcher converts files as they appear in a folder.
// Changes are collected until the folder has been quiet for the settle delay,
// then the acceptable files are converted in one batch.
type FolderWatcher struct {
	watcher   driven.SourceWatcher
	validator driving.SourceValidator
	batches   driving.BatchOrchestrator

	settle  time.Duration
	limiter *rate.Limiter

	// converted remembers the modification time each file was converted at,
	// so repeated events for an unchanged file do not convert it again.
	// Entries for files that no longer exist are dropped after each batch.
	converted map[string]time.Time
}

// NewFolderWatcher creates a folder watcher with default timing.
func NewFolderWatcher(
	watcher driven.SourceWatcher,
	validator driving.SourceValidator,
	batches driving.BatchOrchestrator,
) *FolderWatcher {
	return &FolderWatcher{
		watcher:   watcher,
		validator: validator,
		batches:   batches,
		settle:    DefaultSettleDelay,
		limiter:   rate.NewLimiter(rate.Every(DefaultBatchInterval), 1),
		converted: make(map[string]time.Time),
	}
}

// SetTiming overrides the settle delay and the minimum interval between
// batches. A zero interval disables throttling.
func (w *FolderWatcher) SetTiming(settle, interval time.Duration) {
	w.settle = settle
	if interval <= 0 {
		w.limiter = rate.NewLimiter(rate.Inf, 1)
		return
	}
	w.limiter = rate.NewLimiter(rate.Every(interval), 1)
}

// Watch blocks until ctx is cancelled, converting new files in batches.
func (w *FolderWatcher) Watch(
	ctx context.Context,
	req driving.WatchRequest,
	onSummary func(*domain.BatchSummary),
) error {
	if w.watcher == nil {
		return fmt.Errorf("%w: folder watching is not configured", domain.ErrInvalidInput)
	}
	if err := req.Options.Validate(); err != nil {
		return err
	}
	info, err := os.Stat(req.Dir)
	if err != nil {
		return fmt.Errorf("watch %s: %w", req.Dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", domain.ErrInvalidInput, req.Dir)
	}

	paths, errs, err := w.watcher.Watch(ctx, req.Dir)
	if err != nil {
		return fmt.Errorf("watch %s: %w", req.Dir, err)
	}
	logger.Info("Watching %s", req.Dir)

	pending := make(map[string]struct{})
	var settled <-chan time.Time
	var watchErrs []error

	for {
		select {
		case <-ctx.Done():
			return errors.Join(watchErrs...)

		case p, ok := <-paths:
			if !ok {
				return errors.Join(append(watchErrs, fmt.Errorf("watch %s: stopped", req.Dir))...)
			}
			pending[p] = struct{}{}
			settled = time.After(w.settle)

		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			logger.Warn("watch %s: %v", req.Dir, err)
			watchErrs = append(watchErrs, err)

		case <-settled:
			settled = nil
			if err := w.flush(ctx, req, pending, onSummary); err != nil {
				if ctx.Err() != nil {
					return errors.Join(watchErrs...)
				}
				// Keep pending files and try again after the next quiet period.
				logger.Warn("watch batch deferred: %v", err)
				settled = time.After(w.settle)
			}
		}
	}
}

// flush converts the acceptable pending files and removes them from pending.
func (w *FolderWatcher) flush(
	ctx context.Context,
	req driving.WatchRequest,
	pending map[string]struct{},
	onSummary func(*domain.BatchSummary),
) error {
	candidates := make([]string, 0, len(pending))
	for p := range pending {
		candidates = append(candidates, p)
	}
	sort.Strings(candidates)

	var sources []string
	modTimes := make(map[string]time.Time, len(candidates))
	for _, p := range candidates {
		info, err := os.Stat(p)
		if err != nil {
			delete(pending, p)
			delete(w.converted, p)
			continue
		}
		if !w.validator.IsAcceptable(p) {
			delete(pending, p)
			continue
		}
		if last, ok := w.converted[p]; ok && last.Equal(info.ModTime()) {
			delete(pending, p)
			continue
		}
		sources = append(sources, p)
		modTimes[p] = info.ModTime()
	}
	if len(sources) == 0 {
		return nil
	}

	if err := w.limiter.Wait(ctx); err != nil {
		return err
	}

	summary, err := w.batches.Run(ctx, domain.BatchRequest{
		Sources: sources,
		Options: req.Options,
		Policy:  req.Policy,
		Workers: req.Workers,
	}, nil)
	if err != nil {
		return err
	}

	for i, p := range sources {
		if i >= summary.Attempted {
			break
		}
		delete(pending, p)
		w.converted[p] = modTimes[p]
	}
	w.forgetMissing()
	if onSummary != nil {
		onSummary(summary)
	}
	return nil
}

// forgetMissing drops converted entries whose files have been removed.
func (w *FolderWatcher) forgetMissing() {
	for p := range w.converted {
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			delete(w.converted, p)
		}
	}
}
