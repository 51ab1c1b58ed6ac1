package driving

import (
	"context"

	"github.com/custodia-labs/tiffheif/internal/core/domain"
)

// WatchRequest describes a watched folder.
type WatchRequest struct {
	// Dir is the folder to watch.
	Dir string

	// Options are applied to every batch started by the watch.
	Options domain.ConversionOptions

	// Policy and Workers are passed to each batch.
	Policy  domain.Policy
	Workers int
}

// FolderWatcher converts files as they appear in a folder.
type FolderWatcher interface {
	// Watch blocks until ctx is cancelled, converting new files in batches.
	// onSummary is called after each batch.
	Watch(ctx context.Context, req WatchRequest, onSummary func(*domain.BatchSummary)) error
}
