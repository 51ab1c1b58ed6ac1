package services

import (
	"context"
	"errors"
	"image"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/tiffheif/internal/core/domain"
	"github.com/custodia-labs/tiffheif/internal/core/ports/driven"
	"github.com/custodia-labs/tiffheif/internal/core/ports/driving"
)

// --- Mock codec ---

// mockCodec decodes any file and "encodes" by writing a marker file.
// Behaviour is keyed by source base name.
type mockCodec struct {
	mu sync.Mutex

	decodeErr    map[string]error
	noColorSpace map[string]bool
	encodeErr    map[string]error
	panicOn      map[string]bool
	delay        map[string]time.Duration

	encoded []string
	params  []driven.EncodeParams
}

func newMockCodec() *mockCodec {
	return &mockCodec{
		decodeErr:    make(map[string]error),
		noColorSpace: make(map[string]bool),
		encodeErr:    make(map[string]error),
		panicOn:      make(map[string]bool),
		delay:        make(map[string]time.Duration),
	}
}

func (m *mockCodec) Decode(_ context.Context, path string) (*driven.Image, error) {
	base := filepath.Base(path)

	m.mu.Lock()
	err := m.decodeErr[base]
	noCS := m.noColorSpace[base]
	shouldPanic := m.panicOn[base]
	delay := m.delay[base]
	m.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if shouldPanic {
		panic("codec exploded on " + base)
	}
	if err != nil {
		return nil, err
	}
	img := &driven.Image{
		Pixels:     image.NewRGBA(image.Rect(0, 0, 2, 2)),
		ColorSpace: driven.ColorSpaceRGB,
		BitDepth:   8,
	}
	if noCS {
		img.ColorSpace = ""
	}
	return img, nil
}

func (m *mockCodec) Encode(_ context.Context, _ *driven.Image, destination string, params driven.EncodeParams) error {
	stem := strings.TrimSuffix(filepath.Base(destination), filepath.Ext(destination))

	m.mu.Lock()
	err := m.encodeErr[stem]
	m.mu.Unlock()
	if err != nil {
		return err
	}
	if err := os.WriteFile(destination, []byte("heif"), 0o600); err != nil {
		return err
	}

	m.mu.Lock()
	m.encoded = append(m.encoded, destination)
	m.params = append(m.params, params)
	m.mu.Unlock()
	return nil
}

func (m *mockCodec) Available() error { return nil }

func (m *mockCodec) Encoded() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := append([]string(nil), m.encoded...)
	sort.Strings(out)
	return out
}

// --- Mock worker pool ---

// goroutinePoolFactory creates pools that run each task on its own goroutine,
// at most size at once.
type goroutinePoolFactory struct {
	mu        sync.Mutex
	sizes     []int
	createErr error
	peak      atomic.Int32
}

func (f *goroutinePoolFactory) NewPool(size int) (driven.WorkerPool, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.mu.Lock()
	f.sizes = append(f.sizes, size)
	f.mu.Unlock()
	return &goroutinePool{sem: make(chan struct{}, size), peak: &f.peak}, nil
}

func (f *goroutinePoolFactory) Sizes() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.sizes...)
}

type goroutinePool struct {
	sem     chan struct{}
	running atomic.Int32
	peak    *atomic.Int32
}

func (p *goroutinePool) Submit(task func()) error {
	p.sem <- struct{}{}
	n := p.running.Add(1)
	for {
		old := p.peak.Load()
		if n <= old || p.peak.CompareAndSwap(old, n) {
			break
		}
	}
	go func() {
		defer func() {
			p.running.Add(-1)
			<-p.sem
		}()
		task()
	}()
	return nil
}

func (p *goroutinePool) Running() int { return int(p.running.Load()) }

func (p *goroutinePool) Release() {}

// --- Mock inspector ---

// extInspector reports TIFF for .tif/.tiff files and PNG for .png files.
type extInspector struct {
	err error
}

func (i *extInspector) Inspect(path string) (string, error) {
	if i.err != nil {
		return "", i.err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tif", ".tiff":
		return domain.MIMETypeTIFF, nil
	case ".png":
		return "image/png", nil
	default:
		return "", nil
	}
}

// --- Mock lister ---

type mockLister struct {
	files map[string][]string
	err   error
}

func (l *mockLister) List(_ context.Context, root string) ([]string, error) {
	if l.err != nil {
		return nil, l.err
	}
	return l.files[root], nil
}

// --- Mock run store ---

type failingRunStore struct {
	saveErr  error
	pruneErr error
	saves    int
	prunes   []int
}

func (s *failingRunStore) Save(_ context.Context, _ *domain.RunRecord) error {
	s.saves++
	return s.saveErr
}

func (s *failingRunStore) Get(_ context.Context, _ string) (*domain.RunRecord, error) {
	return nil, domain.ErrNotFound
}

func (s *failingRunStore) List(_ context.Context, _ int) ([]domain.RunRecord, error) {
	return nil, s.saveErr
}

func (s *failingRunStore) Prune(_ context.Context, keep int) (int, error) {
	s.prunes = append(s.prunes, keep)
	return 0, s.pruneErr
}

// --- Mock watcher ---

type mockWatcher struct {
	paths    chan string
	errs     chan error
	watchErr error
	dirs     []string
}

func newMockWatcher() *mockWatcher {
	return &mockWatcher{
		paths: make(chan string, 16),
		errs:  make(chan error, 4),
	}
}

func (w *mockWatcher) Watch(_ context.Context, dir string) (<-chan string, <-chan error, error) {
	if w.watchErr != nil {
		return nil, nil, w.watchErr
	}
	w.dirs = append(w.dirs, dir)
	return w.paths, w.errs, nil
}

// --- Mock orchestrator ---

type mockOrchestrator struct {
	mu       sync.Mutex
	requests []domain.BatchRequest
	runErr   error
	done     chan struct{}
}

func newMockOrchestrator() *mockOrchestrator {
	return &mockOrchestrator{done: make(chan struct{}, 16)}
}

func (m *mockOrchestrator) Run(
	_ context.Context,
	req domain.BatchRequest,
	_ driving.EventHandler,
) (*domain.BatchSummary, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	err := m.runErr
	m.mu.Unlock()
	defer func() { m.done <- struct{}{} }()

	if err != nil {
		return nil, err
	}
	summary := &domain.BatchSummary{Total: len(req.Sources)}
	for _, src := range req.Sources {
		summary.Record(domain.Success(src, req.Options.DestinationFor(src)))
	}
	return summary, nil
}

func (m *mockOrchestrator) Status(_ context.Context) *driving.BatchStatus {
	return &driving.BatchStatus{}
}

func (m *mockOrchestrator) Requests() []domain.BatchRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.BatchRequest(nil), m.requests...)
}

// --- Helpers ---

var errCorrupt = errors.New("not a TIFF")

// writeSources creates files with the given names in a fresh directory.
func writeSources(t *testing.T, names ...string) (dir string, paths []string) {
	t.Helper()
	dir = t.TempDir()
	for _, name := range names {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte("II*\x00"), 0o600))
		paths = append(paths, p)
	}
	return dir, paths
}

// testOptions returns lossy options writing into a fresh directory.
func testOptions(t *testing.T) domain.ConversionOptions {
	t.Helper()
	return domain.ConversionOptions{Quality: 0.8, OutputDirectory: t.TempDir()}
}
