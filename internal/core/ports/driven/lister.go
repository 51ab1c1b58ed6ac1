package driven

import "context"

// SourceLister expands a directory into the regular files beneath it.
type SourceLister interface {
	// List returns the files under root in lexical order.
	// Symlinks and hidden entries are skipped.
	List(ctx context.Context, root string) ([]string, error)
}
