package cli

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/tiffheif/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/tiffheif/internal/core/domain"
	"github.com/custodia-labs/tiffheif/internal/core/ports/driving"
	"github.com/custodia-labs/tiffheif/internal/core/services"
)

// executeCommand runs the root command with args and returns its output.
// Flags are reset first; cobra keeps their values between executions.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

// useServices installs s for the duration of the test.
func useServices(t *testing.T, s *Services) {
	t.Helper()
	original := &Services{
		Validator:    validator,
		Queue:        queueService,
		Batch:        batchOrchestrator,
		Settings:     settingsService,
		History:      historyService,
		Watcher:      folderWatcher,
		EncoderCheck: encoderCheck,
	}
	SetServices(s)
	t.Cleanup(func() { SetServices(original) })
}

// newSettings returns a settings service backed by memory with outputDir set.
func newSettings(t *testing.T, outputDir string) *services.SettingsService {
	t.Helper()
	s := services.NewSettingsService(memory.NewConfigStore())
	if outputDir != "" {
		require.NoError(t, s.SetOutputDirectory(outputDir))
	}
	return s
}

// mockValidator accepts paths ending in .tif or .tiff.
type mockValidator struct{}

func (m *mockValidator) IsAcceptable(path string) bool {
	return m.Check(path) == nil
}

func (m *mockValidator) Check(path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tif", ".tiff":
		return nil
	default:
		return fmt.Errorf("%w: %s", domain.ErrUnsupportedType, path)
	}
}

// mockQueue is a queue whose validation is mockValidator.
type mockQueue struct {
	mu     sync.Mutex
	queue  *domain.SourceQueue
	AddErr error
}

func newMockQueue(paths ...string) *mockQueue {
	return &mockQueue{queue: domain.NewSourceQueue(paths...)}
}

func (m *mockQueue) Add(_ context.Context, paths ...string) (*driving.AddResult, error) {
	if m.AddErr != nil {
		return nil, m.AddErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	result := &driving.AddResult{}
	v := &mockValidator{}
	for _, p := range paths {
		if err := v.Check(p); err != nil {
			result.Rejected = append(result.Rejected, driving.Rejection{Path: p, Reason: err})
			continue
		}
		if m.queue.Add(p) {
			result.Added = append(result.Added, p)
		} else {
			result.Duplicates = append(result.Duplicates, p)
		}
	}
	return result, nil
}

func (m *mockQueue) Remove(path string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.queue.Remove(path)
}

func (m *mockQueue) Items() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.queue.Items()
}

func (m *mockQueue) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.queue.Len()
}

func (m *mockQueue) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue.Clear()
}

func (m *mockQueue) Settle(summary *domain.BatchSummary) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue.Settle(summary, domain.RetainAll)
}

// mockBatch fails sources whose name contains "corrupt".
type mockBatch struct {
	mu       sync.Mutex
	requests []domain.BatchRequest
	RunErr   error
}

func (m *mockBatch) Run(
	_ context.Context, req domain.BatchRequest, onEvent driving.EventHandler,
) (*domain.BatchSummary, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()
	if m.RunErr != nil {
		return nil, m.RunErr
	}
	return convertAll(req, onEvent), nil
}

func (m *mockBatch) Status(_ context.Context) *driving.BatchStatus {
	return &driving.BatchStatus{}
}

func (m *mockBatch) Requests() []domain.BatchRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.BatchRequest(nil), m.requests...)
}

func convertAll(req domain.BatchRequest, onEvent driving.EventHandler) *domain.BatchSummary {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	summary := &domain.BatchSummary{RunID: "run-1", Total: len(req.Sources), StartedAt: start}
	for i, src := range req.Sources {
		outcome := domain.Success(src, req.Options.DestinationFor(src))
		if strings.Contains(filepath.Base(src), "corrupt") {
			outcome = domain.Failed(src, domain.KindInvalidSourceFile, nil)
		}
		summary.Record(outcome)
		if onEvent != nil {
			onEvent(domain.BatchEvent{RunID: summary.RunID, Index: i, Outcome: outcome, Progress: summary.Progress()})
		}
	}
	summary.EndedAt = start.Add(1500 * time.Millisecond)
	return summary
}

// mockWatcher converts Files once, reports the summary, and returns Err.
type mockWatcher struct {
	Files   []string
	Err     error
	request driving.WatchRequest
}

func (m *mockWatcher) Watch(
	_ context.Context, req driving.WatchRequest, onSummary func(*domain.BatchSummary),
) error {
	m.request = req
	if m.Err != nil {
		return m.Err
	}
	if len(m.Files) > 0 {
		onSummary(convertAll(domain.BatchRequest{Sources: m.Files, Options: req.Options}, nil))
	}
	return nil
}

// mockHistory serves fixed runs.
type mockHistory struct {
	records   []domain.RunRecord
	err       error
	lastLimit int
	lastKeep  int
}

func (m *mockHistory) List(_ context.Context, limit int) ([]domain.RunRecord, error) {
	m.lastLimit = limit
	if m.err != nil {
		return nil, m.err
	}
	return m.records, nil
}

func (m *mockHistory) Get(_ context.Context, id string) (*domain.RunRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.records {
		if m.records[i].ID() == id {
			return &m.records[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockHistory) Prune(_ context.Context, keep int) (int, error) {
	m.lastKeep = keep
	if m.err != nil {
		return 0, m.err
	}
	removed := max(0, len(m.records)-keep)
	return removed, nil
}
