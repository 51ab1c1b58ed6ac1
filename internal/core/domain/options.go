package domain

import (
	"fmt"
	"path/filepath"
	"strings"
)

// DefaultQuality is the lossy quality used when none is configured.
const DefaultQuality = 0.8

// Output file extensions.
const (
	// ExtensionHEIC is written for lossy conversions.
	ExtensionHEIC = "heic"

	// ExtensionHEIF is written for lossless, high bit depth conversions.
	ExtensionHEIF = "heif"
)

// ConversionOptions holds the parameters of one batch run.
// It is passed by value; a run never observes later changes.
type ConversionOptions struct {
	// Quality is the lossy quality in [0, 1]. Ignored when Lossless is set.
	Quality float64

	// Lossless selects the high bit depth HEIF output.
	Lossless bool

	// OutputDirectory is the absolute directory results are written to.
	OutputDirectory string
}

// DefaultConversionOptions returns options with the default quality and no
// output directory.
func DefaultConversionOptions() ConversionOptions {
	return ConversionOptions{Quality: DefaultQuality}
}

// Validate checks the options are well formed.
// The output directory is not checked for existence here; a missing
// directory is reported per file during conversion.
func (o ConversionOptions) Validate() error {
	if o.OutputDirectory == "" {
		return fmt.Errorf("%w: output directory is required", ErrInvalidInput)
	}
	if !filepath.IsAbs(o.OutputDirectory) {
		return fmt.Errorf("%w: output directory must be absolute: %s", ErrInvalidInput, o.OutputDirectory)
	}
	if !o.Lossless && !ValidQuality(o.Quality) {
		return fmt.Errorf("%w: quality must be between 0 and 1, got %g", ErrInvalidInput, o.Quality)
	}
	return nil
}

// ValidQuality reports whether q is a lossy quality in [0, 1]. NaN is not.
func ValidQuality(q float64) bool {
	return q >= 0 && q <= 1
}

// Extension returns the output file extension without the dot.
func (o ConversionOptions) Extension() string {
	if o.Lossless {
		return ExtensionHEIF
	}
	return ExtensionHEIC
}

// EncodeQuality returns the quality handed to the encoder.
func (o ConversionOptions) EncodeQuality() float64 {
	if o.Lossless {
		return 1.0
	}
	return o.Quality
}

// DestinationFor returns where the converted form of source is written.
// Only the last extension of the base name is replaced.
func (o ConversionOptions) DestinationFor(source string) string {
	base := filepath.Base(source)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" {
		stem = base
	}
	return filepath.Join(o.OutputDirectory, stem+"."+o.Extension())
}
