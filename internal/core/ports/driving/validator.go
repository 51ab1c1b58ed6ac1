package driving

// SourceValidator decides whether a path may enter the conversion queue.
type SourceValidator interface {
	// IsAcceptable returns true if path is a readable file of an accepted
	// image type. It never fails; unreadable or missing paths are rejected.
	IsAcceptable(path string) bool

	// Check returns nil if path is acceptable, otherwise the reason it is not:
	// domain.ErrSourceNotFound, domain.ErrSourceNotAccessible or
	// domain.ErrUnsupportedType, wrapped with the path.
	Check(path string) error
}
