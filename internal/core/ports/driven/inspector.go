package driven

// TypeInspector detects a file's content type from its leading bytes.
type TypeInspector interface {
	// Inspect returns the MIME type of the file at path.
	// Returns an empty string and no error when the type is unknown.
	Inspect(path string) (string, error)
}
