package driving

import (
	"context"

	"github.com/custodia-labs/tiffheif/internal/core/domain"
)

// EventHandler receives one event per attempted file, in source order.
// It is never called concurrently.
type EventHandler func(event domain.BatchEvent)

// BatchOrchestrator converts a list of files and aggregates the results.
type BatchOrchestrator interface {
	// Run converts every source in req. A failing file never stops the run.
	// Cancelling ctx stops new files from starting; files already converting
	// finish. An error is returned only for a request that cannot start.
	Run(ctx context.Context, req domain.BatchRequest, onEvent EventHandler) (*domain.BatchSummary, error)

	// Status returns the state of the current or most recent run.
	Status(ctx context.Context) *BatchStatus
}

// BatchStatus represents the current state of a batch run.
type BatchStatus struct {
	// RunID identifies the run. Empty before the first run.
	RunID string

	// Running indicates if a batch is currently in progress.
	Running bool

	// Progress is the number of files attempted out of the total.
	Progress domain.Progress

	// ErrorCount is the number of failed files so far.
	ErrorCount int

	// Current is the source most recently completed.
	Current string
}
