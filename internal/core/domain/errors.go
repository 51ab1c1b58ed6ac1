package domain

import (
	"errors"
	"fmt"
	"path/filepath"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates a source whose content type is not accepted.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrBatchInProgress indicates a batch is already running.
	ErrBatchInProgress = errors.New("batch in progress")

	// ErrNoSources indicates a batch was requested with nothing to convert.
	ErrNoSources = errors.New("no sources to convert")

	// ErrEncoderUnavailable indicates the HEIF encoder cannot be found.
	ErrEncoderUnavailable = errors.New("encoder unavailable")

	// Source check errors, used to explain why a path was rejected.

	// ErrSourceNotFound indicates the source path does not exist.
	ErrSourceNotFound = errors.New("source not found")

	// ErrSourceNotAccessible indicates the source exists but cannot be read.
	ErrSourceNotAccessible = errors.New("source not accessible")

	// Conversion errors, one per ErrorKind. A *ConversionError matches the
	// sentinel for its kind with errors.Is.

	ErrOutputDirectoryNotFound   = errors.New(KindOutputDirectoryNotFound.Description())
	ErrSourceFileNotFound        = errors.New(KindSourceFileNotFound.Description())
	ErrSourceFileNotAccessible   = errors.New(KindSourceFileNotAccessible.Description())
	ErrInvalidSourceFile         = errors.New(KindInvalidSourceFile.Description())
	ErrConversionFailed          = errors.New(KindConversionFailed.Description())
	ErrDestinationCreationFailed = errors.New(KindDestinationCreationFailed.Description())
	ErrAddImageFailed            = errors.New(KindAddImageFailed.Description())
)

// ErrorKind classifies why a single file could not be converted.
type ErrorKind string

// Conversion error kinds.
const (
	// KindOutputDirectoryNotFound means the output directory is missing or not a directory.
	KindOutputDirectoryNotFound ErrorKind = "output_directory_not_found"

	// KindSourceFileNotFound means the source vanished after it was queued.
	KindSourceFileNotFound ErrorKind = "source_file_not_found"

	// KindSourceFileNotAccessible means the source exists but cannot be read.
	KindSourceFileNotAccessible ErrorKind = "source_file_not_accessible"

	// KindInvalidSourceFile means the source could not be decoded as an image.
	KindInvalidSourceFile ErrorKind = "invalid_source_file"

	// KindConversionFailed means colour space resolution or encoding failed.
	KindConversionFailed ErrorKind = "conversion_failed"

	// KindDestinationCreationFailed is reserved for codecs that open the
	// destination before encoding.
	KindDestinationCreationFailed ErrorKind = "destination_creation_failed"

	// KindAddImageFailed is reserved for codecs that write frames individually.
	KindAddImageFailed ErrorKind = "add_image_failed"
)

// IsValid returns true if the kind is recognised.
func (k ErrorKind) IsValid() bool {
	switch k {
	case KindOutputDirectoryNotFound, KindSourceFileNotFound, KindSourceFileNotAccessible,
		KindInvalidSourceFile, KindConversionFailed, KindDestinationCreationFailed, KindAddImageFailed:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (k ErrorKind) String() string {
	return string(k)
}

// Description returns the human-readable reason shown to users.
func (k ErrorKind) Description() string {
	switch k {
	case KindOutputDirectoryNotFound:
		return "Output directory not found"
	case KindSourceFileNotFound:
		return "Source file not found"
	case KindSourceFileNotAccessible:
		return "Cannot access source file"
	case KindInvalidSourceFile:
		return "Source file is not a valid TIFF image"
	case KindConversionFailed:
		return "Failed to convert the image"
	case KindDestinationCreationFailed:
		return "Failed to create output file"
	case KindAddImageFailed:
		return "Failed to add image to destination"
	default:
		return "Unknown error"
	}
}

// Sentinel returns the package error matching this kind, or nil.
func (k ErrorKind) Sentinel() error {
	switch k {
	case KindOutputDirectoryNotFound:
		return ErrOutputDirectoryNotFound
	case KindSourceFileNotFound:
		return ErrSourceFileNotFound
	case KindSourceFileNotAccessible:
		return ErrSourceFileNotAccessible
	case KindInvalidSourceFile:
		return ErrInvalidSourceFile
	case KindConversionFailed:
		return ErrConversionFailed
	case KindDestinationCreationFailed:
		return ErrDestinationCreationFailed
	case KindAddImageFailed:
		return ErrAddImageFailed
	default:
		return nil
	}
}

// ConversionError is the failure of a single file conversion.
type ConversionError struct {
	// Kind is the public classification of the failure.
	Kind ErrorKind

	// Source is the file that failed.
	Source string

	// Cause is the underlying error, kept for diagnostics only.
	Cause error
}

// NewConversionError creates a ConversionError for source.
func NewConversionError(kind ErrorKind, source string, cause error) *ConversionError {
	return &ConversionError{Kind: kind, Source: source, Cause: cause}
}

// Error implements error.
func (e *ConversionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", filepath.Base(e.Source), e.Kind.Description(), e.Cause)
	}
	return fmt.Sprintf("%s: %s", filepath.Base(e.Source), e.Kind.Description())
}

// Unwrap returns the underlying cause.
func (e *ConversionError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is the sentinel for this error's kind.
func (e *ConversionError) Is(target error) bool {
	s := e.Kind.Sentinel()
	return s != nil && s == target
}

// Message returns the user-facing line for this failure.
func (e *ConversionError) Message() string {
	return FailureMessage(e.Source, e.Kind)
}

// FailureMessage formats the user-facing line for a failed file.
func FailureMessage(source string, kind ErrorKind) string {
	return fmt.Sprintf("could not convert %s: %s", filepath.Base(source), kind.Description())
}
