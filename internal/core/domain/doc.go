// Package domain defines the core business entities for tiffheif.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - ConversionOptions: The immutable per-run conversion parameters
//   - Outcome: The result of converting a single source file
//   - BatchSummary: The aggregate result of a batch run
//   - ConversionError: The closed taxonomy of per-file failures
//   - SourceQueue: The ordered set of files awaiting conversion
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
