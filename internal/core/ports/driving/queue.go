package driving

import (
	"context"

	"github.com/custodia-labs/tiffheif/internal/core/domain"
)

// Rejection records a path that was not queued.
type Rejection struct {
	// Path is the rejected path.
	Path string

	// Reason explains the rejection.
	Reason error
}

// AddResult reports the effect of adding paths to the queue.
type AddResult struct {
	// Added are the newly queued files, in order.
	Added []string

	// Rejected are paths that failed validation.
	Rejected []Rejection

	// Duplicates are acceptable files that were already queued.
	Duplicates []string
}

// QueueService manages the files waiting to be converted.
type QueueService interface {
	// Add validates paths and queues the acceptable ones.
	// Directories are expanded into the files beneath them.
	Add(ctx context.Context, paths ...string) (*AddResult, error)

	// Remove drops path from the queue.
	Remove(path string) bool

	// Items returns the queued files in order.
	Items() []string

	// Len returns the number of queued files.
	Len() int

	// Clear empties the queue.
	Clear()

	// Settle applies a finished run to the queue using the configured
	// retain policy.
	Settle(summary *domain.BatchSummary)
}
