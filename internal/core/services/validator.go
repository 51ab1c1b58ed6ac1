package services

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/custodia-labs/tiffheif/internal/core/domain"
	"github.com/custodia-labs/tiffheif/internal/core/ports/driven"
	"github.com/custodia-labs/tiffheif/internal/core/ports/driving"
	"github.com/custodia-labs/tiffheif/internal/logger"
)

// Ensure SourceValidator implements the interface.
var _ driving.SourceValidator = (*SourceValidator)(nil)

// SourceValidator accepts readable files whose content type is allowed.
type SourceValidator struct {
	inspector driven.TypeInspector
	formats   map[string]bool
}

// NewSourceValidator creates a validator accepting the given MIME types.
// An empty list accepts TIFF only.
func NewSourceValidator(inspector driven.TypeInspector, formats []string) *SourceValidator {
	if len(formats) == 0 {
		formats = []string{domain.MIMETypeTIFF}
	}
	allowed := make(map[string]bool, len(formats))
	for _, f := range formats {
		allowed[f] = true
	}
	return &SourceValidator{
		inspector: inspector,
		formats:   allowed,
	}
}

// IsAcceptable returns true if path is a readable file of an accepted type.
func (v *SourceValidator) IsAcceptable(path string) bool {
	err := v.Check(path)
	if err != nil {
		logger.Debug("rejected %s: %v", path, err)
	}
	return err == nil
}

// Check returns the reason path is not acceptable, or nil.
func (v *SourceValidator) Check(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", domain.ErrSourceNotFound, path)
		}
		return fmt.Errorf("%w: %s: %w", domain.ErrSourceNotAccessible, path, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %s is not a regular file", domain.ErrSourceNotAccessible, path)
	}

	mime, err := v.inspector.Inspect(path)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrSourceNotAccessible, path, err)
	}
	if !v.formats[mime] {
		if mime == "" {
			mime = "unknown"
		}
		return fmt.Errorf("%w: %s has content type %s", domain.ErrUnsupportedType, path, mime)
	}
	return nil
}
