package memory

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/custodia-labs/tiffheif/internal/core/domain"
	"github.com/custodia-labs/tiffheif/internal/core/ports/driven"
)

// Ensure RunStore implements the interface.
var _ driven.RunStore = (*RunStore)(nil)

// RunStore is an in-memory implementation of driven.RunStore.
type RunStore struct {
	mu   sync.RWMutex
	runs map[string]storedRun
	seq  int
}

type storedRun struct {
	record domain.RunRecord
	seq    int
}

// NewRunStore creates a new in-memory run store.
func NewRunStore() *RunStore {
	return &RunStore{
		runs: make(map[string]storedRun),
	}
}

// Save stores or replaces a run.
func (s *RunStore) Save(_ context.Context, run *domain.RunRecord) error {
	if run == nil || run.ID() == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.runs[run.ID()] = storedRun{record: cloneRun(*run), seq: s.seq}
	return nil
}

// Get retrieves a run by ID.
func (s *RunStore) Get(_ context.Context, id string) (*domain.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored, ok := s.runs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	run := cloneRun(stored.record)
	return &run, nil
}

// List returns runs, most recent first.
func (s *RunStore) List(_ context.Context, limit int) ([]domain.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ordered := s.ordered()
	if limit > 0 && len(ordered) > limit {
		ordered = ordered[:limit]
	}
	out := make([]domain.RunRecord, 0, len(ordered))
	for _, r := range ordered {
		out = append(out, cloneRun(r.record))
	}
	return out, nil
}

// Prune removes all but the most recent keep runs.
func (s *RunStore) Prune(_ context.Context, keep int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ordered := s.ordered()
	if keep < 0 {
		keep = 0
	}
	if len(ordered) <= keep {
		return 0, nil
	}
	for _, r := range ordered[keep:] {
		delete(s.runs, r.record.ID())
	}
	return len(ordered) - keep, nil
}

// ordered returns runs newest first (caller must hold lock).
func (s *RunStore) ordered() []storedRun {
	out := make([]storedRun, 0, len(s.runs))
	for _, r := range s.runs {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].record.Summary.StartedAt, out[j].record.Summary.StartedAt
		if !a.Equal(b) {
			return a.After(b)
		}
		return out[i].seq > out[j].seq
	})
	return out
}

func cloneRun(r domain.RunRecord) domain.RunRecord {
	r.Summary.Failures = slices.Clone(r.Summary.Failures)
	r.Summary.Outputs = slices.Clone(r.Summary.Outputs)
	return r
}
