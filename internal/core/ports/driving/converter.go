package driving

import (
	"context"

	"github.com/custodia-labs/tiffheif/internal/core/domain"
)

// Converter converts a single source file.
type Converter interface {
	// Convert writes the HEIC/HEIF form of source into opts.OutputDirectory.
	// Failures are reported in the outcome, never as a panic or error return.
	Convert(ctx context.Context, source string, opts domain.ConversionOptions) domain.Outcome
}
