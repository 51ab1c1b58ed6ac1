package mcp

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/tiffheif/internal/core/domain"
	"github.com/custodia-labs/tiffheif/internal/core/ports/driving"
)

// mockValidator accepts paths ending in .tif or .tiff.
type mockValidator struct{}

func (m *mockValidator) IsAcceptable(path string) bool {
	return m.Check(path) == nil
}

func (m *mockValidator) Check(path string) error {
	if strings.HasSuffix(path, ".tif") || strings.HasSuffix(path, ".tiff") {
		return nil
	}
	return fmt.Errorf("%w: %s", domain.ErrUnsupportedType, path)
}

// mockBatchOrchestrator fails sources containing "corrupt".
type mockBatchOrchestrator struct {
	mu       sync.Mutex
	requests []domain.BatchRequest
	err      error
}

func (m *mockBatchOrchestrator) Run(
	_ context.Context, req domain.BatchRequest, onEvent driving.EventHandler,
) (*domain.BatchSummary, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}

	summary := &domain.BatchSummary{RunID: "run-1", Total: len(req.Sources), StartedAt: time.Now()}
	for i, src := range req.Sources {
		outcome := domain.Success(src, req.Options.DestinationFor(src))
		if strings.Contains(src, "corrupt") {
			outcome = domain.Failed(src, domain.KindInvalidSourceFile, nil)
		}
		summary.Record(outcome)
		onEvent(domain.BatchEvent{RunID: summary.RunID, Index: i, Outcome: outcome, Progress: summary.Progress()})
	}
	summary.EndedAt = time.Now()
	return summary, nil
}

func (m *mockBatchOrchestrator) Status(_ context.Context) *driving.BatchStatus {
	return &driving.BatchStatus{}
}

func (m *mockBatchOrchestrator) lastRequest() domain.BatchRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requests[len(m.requests)-1]
}

// mockSettingsService returns fixed settings.
type mockSettingsService struct {
	settings domain.AppSettings
	err      error
}

func newMockSettings(outputDir string) *mockSettingsService {
	s := domain.DefaultAppSettings()
	s.Convert.OutputDirectory = outputDir
	return &mockSettingsService{settings: s}
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	if m.err != nil {
		return nil, m.err
	}
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(settings *domain.AppSettings) error {
	m.settings = *settings
	return nil
}

func (m *mockSettingsService) SetQuality(quality float64) error {
	m.settings.Convert.Quality = quality
	return nil
}

func (m *mockSettingsService) SetLossless(lossless bool) error {
	m.settings.Convert.Lossless = lossless
	return nil
}

func (m *mockSettingsService) SetOutputDirectory(dir string) error {
	m.settings.Convert.OutputDirectory = dir
	return nil
}

func (m *mockSettingsService) SetPolicy(policy domain.Policy, workers int) error {
	m.settings.Batch.Policy = policy
	m.settings.Batch.Workers = workers
	return nil
}

func (m *mockSettingsService) SetRetain(retain domain.RetainPolicy) error {
	m.settings.Queue.Retain = retain
	return nil
}

func (m *mockSettingsService) ConversionOptions() (domain.ConversionOptions, error) {
	return m.settings.ConversionOptions(), m.err
}

func (m *mockSettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// mockHistoryService serves a fixed list of runs.
type mockHistoryService struct {
	records []domain.RunRecord
	err     error
}

func (m *mockHistoryService) List(_ context.Context, limit int) ([]domain.RunRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	if limit > 0 && len(m.records) > limit {
		return m.records[:limit], nil
	}
	return m.records, nil
}

func (m *mockHistoryService) Get(_ context.Context, id string) (*domain.RunRecord, error) {
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

func (m *mockHistoryService) Prune(_ context.Context, _ int) (int, error) {
	return 0, m.err
}

func newTestPorts() *Ports {
	return &Ports{
		Validator: &mockValidator{},
		Batch:     &mockBatchOrchestrator{},
		Settings:  newMockSettings("/out"),
	}
}
