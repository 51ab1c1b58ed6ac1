package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/tiffheif/internal/core/domain"
	"github.com/custodia-labs/tiffheif/internal/core/ports/driving"
)

type watchHarness struct {
	watcher *mockWatcher
	orch    *mockOrchestrator
	fw      *FolderWatcher

	mu        sync.Mutex
	summaries []*domain.BatchSummary
}

func newWatchHarness() *watchHarness {
	h := &watchHarness{
		watcher: newMockWatcher(),
		orch:    newMockOrchestrator(),
	}
	h.fw = NewFolderWatcher(h.watcher, NewSourceValidator(&extInspector{}, nil), h.orch)
	h.fw.SetTiming(20*time.Millisecond, 0)
	return h
}

func (h *watchHarness) onSummary(s *domain.BatchSummary) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.summaries = append(h.summaries, s)
}

func (h *watchHarness) Summaries() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.summaries)
}

// start runs Watch in the background and returns its result channel.
func (h *watchHarness) start(ctx context.Context, req driving.WatchRequest) <-chan error {
	done := make(chan error, 1)
	go func() { done <- h.fw.Watch(ctx, req, h.onSummary) }()
	return done
}

func waitBatch(t *testing.T, orch *mockOrchestrator) {
	t.Helper()
	select {
	case <-orch.done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for batch")
	}
}

func TestFolderWatcher_ConvertsAcceptableFiles(t *testing.T) {
	h := newWatchHarness()
	dir, paths := writeSources(t, "a.tif", "b.png", "c.tif")
	opts := testOptions(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := h.start(ctx, driving.WatchRequest{Dir: dir, Options: opts, Policy: domain.PolicyParallel, Workers: 2})

	h.watcher.paths <- paths[0]
	h.watcher.paths <- paths[1]
	h.watcher.paths <- paths[0]
	waitBatch(t, h.orch)

	requests := h.orch.Requests()
	require.Len(t, requests, 1)
	assert.Equal(t, []string{paths[0]}, requests[0].Sources)
	assert.Equal(t, opts, requests[0].Options)
	assert.Equal(t, domain.PolicyParallel, requests[0].Policy)
	assert.Equal(t, 2, requests[0].Workers)

	// An unchanged file is not converted twice.
	h.watcher.paths <- paths[0]
	h.watcher.paths <- paths[2]
	waitBatch(t, h.orch)

	requests = h.orch.Requests()
	require.Len(t, requests, 2)
	assert.Equal(t, []string{paths[2]}, requests[1].Sources)
	require.Eventually(t, func() bool { return h.Summaries() == 2 }, time.Second, 5*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
	assert.Equal(t, []string{dir}, h.watcher.dirs)
}

func TestFolderWatcher_ForgetsRemovedFiles(t *testing.T) {
	h := newWatchHarness()
	dir, paths := writeSources(t, "a.tif", "b.tif")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := h.start(ctx, driving.WatchRequest{Dir: dir, Options: testOptions(t)})

	h.watcher.paths <- paths[0]
	waitBatch(t, h.orch)

	require.NoError(t, os.Remove(paths[0]))
	h.watcher.paths <- paths[1]
	waitBatch(t, h.orch)
	require.Eventually(t, func() bool { return h.Summaries() == 2 }, time.Second, 5*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
	assert.NotContains(t, h.fw.converted, paths[0])
	assert.Contains(t, h.fw.converted, paths[1])
}

func TestFolderWatcher_ForgetMissing(t *testing.T) {
	fw := NewFolderWatcher(newMockWatcher(), NewSourceValidator(&extInspector{}, nil), newMockOrchestrator())
	_, paths := writeSources(t, "kept.tif")
	gone := filepath.Join(t.TempDir(), "gone.tif")
	fw.converted[paths[0]] = time.Now()
	fw.converted[gone] = time.Now()

	fw.forgetMissing()

	assert.Len(t, fw.converted, 1)
	assert.Contains(t, fw.converted, paths[0])
}

func TestFolderWatcher_RetriesDeferredBatch(t *testing.T) {
	h := newWatchHarness()
	h.orch.runErr = domain.ErrBatchInProgress
	dir, paths := writeSources(t, "a.tif")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := h.start(ctx, driving.WatchRequest{Dir: dir, Options: testOptions(t)})

	h.watcher.paths <- paths[0]
	waitBatch(t, h.orch)

	h.orch.mu.Lock()
	h.orch.runErr = nil
	h.orch.mu.Unlock()

	require.Eventually(t, func() bool { return h.Summaries() == 1 }, 2*time.Second, 5*time.Millisecond)
	requests := h.orch.Requests()
	require.GreaterOrEqual(t, len(requests), 2)
	assert.Equal(t, []string{paths[0]}, requests[len(requests)-1].Sources)

	cancel()
	assert.NoError(t, <-done)
}

func TestFolderWatcher_ReturnsWatchErrors(t *testing.T) {
	h := newWatchHarness()
	dir, _ := writeSources(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := h.start(ctx, driving.WatchRequest{Dir: dir, Options: testOptions(t)})

	overflow := errors.New("event queue overflow")
	h.watcher.errs <- overflow
	time.Sleep(20 * time.Millisecond)
	cancel()

	assert.ErrorIs(t, <-done, overflow)
}

func TestFolderWatcher_StopsWhenWatcherCloses(t *testing.T) {
	h := newWatchHarness()
	dir, _ := writeSources(t)

	done := h.start(context.Background(), driving.WatchRequest{Dir: dir, Options: testOptions(t)})
	close(h.watcher.paths)

	select {
	case err := <-done:
		assert.Error(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop")
	}
}

func TestFolderWatcher_RejectsBadRequests(t *testing.T) {
	dir, paths := writeSources(t, "a.tif")

	tests := []struct {
		name    string
		req     driving.WatchRequest
		wantErr error
	}{
		{
			name:    "invalid options",
			req:     driving.WatchRequest{Dir: dir},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:    "not a directory",
			req:     driving.WatchRequest{Dir: paths[0], Options: testOptions(t)},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name: "missing directory",
			req:  driving.WatchRequest{Dir: filepath.Join(dir, "gone"), Options: testOptions(t)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newWatchHarness()
			err := h.fw.Watch(context.Background(), tt.req, nil)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			assert.Empty(t, h.watcher.dirs)
		})
	}
}

func TestFolderWatcher_WatcherStartError(t *testing.T) {
	h := newWatchHarness()
	h.watcher.watchErr = errors.New("too many watches")
	dir, _ := writeSources(t)

	err := h.fw.Watch(context.Background(), driving.WatchRequest{Dir: dir, Options: testOptions(t)}, nil)

	assert.ErrorIs(t, err, h.watcher.watchErr)
}
