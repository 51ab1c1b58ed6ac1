package driving

import (
	"context"

	"github.com/custodia-labs/tiffheif/internal/core/domain"
)

// HistoryService exposes recorded batch runs.
type HistoryService interface {
	// List returns recent runs, most recent first.
	List(ctx context.Context, limit int) ([]domain.RunRecord, error)

	// Get retrieves a run by ID.
	Get(ctx context.Context, id string) (*domain.RunRecord, error)

	// Prune removes all but the most recent keep runs.
	Prune(ctx context.Context, keep int) (int, error)
}
