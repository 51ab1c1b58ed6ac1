package driven

import "context"

// SourceWatcher reports files created or modified in a directory.
type SourceWatcher interface {
	// Watch streams absolute paths of files that changed under dir until ctx
	// is cancelled. The same path may be reported many times while a file is
	// being written. Both channels are closed when watching stops.
	Watch(ctx context.Context, dir string) (<-chan string, <-chan error, error)
}
