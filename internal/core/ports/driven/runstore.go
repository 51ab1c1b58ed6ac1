package driven

import (
	"context"

	"github.com/custodia-labs/tiffheif/internal/core/domain"
)

// RunStore persists batch run history.
type RunStore interface {
	// Save stores a finished run. Saving an existing ID replaces it.
	Save(ctx context.Context, run *domain.RunRecord) error

	// Get retrieves a run by ID.
	// Returns domain.ErrNotFound if the run does not exist.
	Get(ctx context.Context, id string) (*domain.RunRecord, error)

	// List returns recent runs, most recent first.
	// A limit of zero or less returns every run.
	List(ctx context.Context, limit int) ([]domain.RunRecord, error)

	// Prune removes all but the most recent keep runs.
	// Returns the number of runs removed.
	Prune(ctx context.Context, keep int) (int, error)
}
