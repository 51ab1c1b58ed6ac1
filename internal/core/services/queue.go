package services

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/custodia-labs/tiffheif/internal/core/domain"
	"github.com/custodia-labs/tiffheif/internal/core/ports/driven"
	"github.com/custodia-labs/tiffheif/internal/core/ports/driving"
	"github.com/custodia-labs/tiffheif/internal/logger"
)

// Ensure QueueService implements the interface.
var _ driving.QueueService = (*QueueService)(nil)

// QueueService holds the files waiting to be converted.
// Only paths accepted by the validator are queued.
type QueueService struct {
	validator driving.SourceValidator
	lister    driven.SourceLister
	retain    domain.RetainPolicy

	mu    sync.RWMutex
	queue *domain.SourceQueue
}

// NewQueueService creates an empty queue.
// lister is optional; without it directories are rejected.
func NewQueueService(
	validator driving.SourceValidator,
	lister driven.SourceLister,
	retain domain.RetainPolicy,
) *QueueService {
	if !retain.IsValid() {
		retain = domain.RetainAll
	}
	return &QueueService{
		validator: validator,
		lister:    lister,
		retain:    retain,
		queue:     domain.NewSourceQueue(),
	}
}

// Add validates paths and queues the acceptable ones, expanding directories.
func (s *QueueService) Add(ctx context.Context, paths ...string) (*driving.AddResult, error) {
	result := &driving.AddResult{}

	var candidates []string
	for _, p := range paths {
		expanded, err := s.expand(ctx, p)
		if err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			result.Rejected = append(result.Rejected, driving.Rejection{Path: p, Reason: err})
			continue
		}
		candidates = append(candidates, expanded...)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range candidates {
		if err := s.validator.Check(c); err != nil {
			result.Rejected = append(result.Rejected, driving.Rejection{Path: c, Reason: err})
			continue
		}
		if s.queue.Add(c) {
			result.Added = append(result.Added, c)
		} else {
			result.Duplicates = append(result.Duplicates, c)
		}
	}

	logger.Debug("queue: %d added, %d rejected, %d duplicates",
		len(result.Added), len(result.Rejected), len(result.Duplicates))
	return result, nil
}

// expand returns path itself, or the files beneath it for a directory.
func (s *QueueService) expand(ctx context.Context, path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		// Let the validator explain missing or unreadable paths.
		return []string{path}, nil
	}
	if s.lister == nil {
		return nil, fmt.Errorf("%w: %s is a directory", domain.ErrSourceNotAccessible, path)
	}
	files, err := s.lister.List(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", path, err)
	}
	return files, nil
}

// Remove drops path from the queue.
func (s *QueueService) Remove(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Remove(path)
}

// Items returns the queued files in order.
func (s *QueueService) Items() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queue.Items()
}

// Len returns the number of queued files.
func (s *QueueService) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queue.Len()
}

// Clear empties the queue.
func (s *QueueService) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue.Clear()
}

// Settle applies a finished run to the queue.
func (s *QueueService) Settle(summary *domain.BatchSummary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue.Settle(summary, s.retain)
}
