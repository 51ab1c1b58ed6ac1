package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/custodia-labs/tiffheif/internal/core/domain"
	"github.com/custodia-labs/tiffheif/internal/core/ports/driven"
	"github.com/custodia-labs/tiffheif/internal/core/ports/driving"
	"github.com/custodia-labs/tiffheif/internal/logger"
)

// Ensure Converter implements the interface.
var _ driving.Converter = (*Converter)(nil)

var errNoColorSpace = errors.New("decoded image has no colour space")

// Converter converts one file at a time through a codec.
// It holds no per-call state and is safe for concurrent use.
type Converter struct {
	codec driven.Codec
}

// NewConverter creates a converter backed by codec.
func NewConverter(codec driven.Codec) *Converter {
	return &Converter{codec: codec}
}

// Convert writes the HEIC/HEIF form of source into opts.OutputDirectory.
func (c *Converter) Convert(ctx context.Context, source string, opts domain.ConversionOptions) domain.Outcome {
	// Preconditions are checked in this order and short-circuit.
	if err := checkOutputDirectory(opts.OutputDirectory); err != nil {
		return domain.Failed(source, domain.KindOutputDirectoryNotFound, err)
	}
	if kind, err := checkReadable(source); err != nil {
		return domain.Failed(source, kind, err)
	}

	destination := opts.DestinationFor(source)

	img, err := c.codec.Decode(ctx, source)
	if err != nil {
		return domain.Failed(source, domain.KindInvalidSourceFile, err)
	}
	if img == nil || img.ColorSpace == "" {
		return domain.Failed(source, domain.KindConversionFailed, errNoColorSpace)
	}

	params := driven.EncodeParams{
		Lossless: opts.Lossless,
		Quality:  opts.EncodeQuality(),
	}
	if err := c.codec.Encode(ctx, img, destination, params); err != nil {
		return domain.Failed(source, domain.KindConversionFailed, err)
	}

	logger.Debug("converted %s -> %s (%s, %d-bit)", source, destination, img.ColorSpace, img.BitDepth)
	return domain.Success(source, destination)
}

func checkOutputDirectory(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	return nil
}

func checkReadable(source string) (domain.ErrorKind, error) {
	info, err := os.Stat(source)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.KindSourceFileNotFound, err
		}
		return domain.KindSourceFileNotAccessible, err
	}
	if !info.Mode().IsRegular() {
		return domain.KindSourceFileNotAccessible, fmt.Errorf("%s is not a regular file", source)
	}
	f, err := os.Open(source)
	if err != nil {
		return domain.KindSourceFileNotAccessible, err
	}
	_ = f.Close()
	return "", nil
}
