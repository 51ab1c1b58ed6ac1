// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - Codec: Decodes source images and encodes HEIC/HEIF output
//   - TypeInspector: Detects a file's content type from its bytes
//   - WorkerPoolFactory: Creates the pools conversions run on
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - RunStore: Batch history persistence. Without it, runs are not recorded.
//   - SourceLister: Directory expansion. Without it, only files are accepted.
//   - SourceWatcher: Folder watching. Without it, watch mode is unavailable.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
