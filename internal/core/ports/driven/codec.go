package driven

import (
	"context"
	"image"
)

// Colour spaces reported by Codec.Decode.
const (
	ColorSpaceGray = "gray"
	ColorSpaceRGB  = "srgb"
	ColorSpaceCMYK = "cmyk"
)

// Image is a decoded source image.
type Image struct {
	// Pixels holds the decoded raster.
	Pixels image.Image

	// ColorSpace names the colour space of Pixels.
	// Empty when it could not be resolved; such images cannot be encoded.
	ColorSpace string

	// BitDepth is the bits per channel of the source.
	BitDepth int
}

// EncodeParams controls a single encode.
type EncodeParams struct {
	// Lossless selects the 10-bit lossless HEIF representation.
	Lossless bool

	// Quality is the lossy quality in [0, 1]. 1.0 when Lossless.
	Quality float64
}

// Codec decodes source images and writes HEIC/HEIF files.
// Implementations must be safe for concurrent use.
type Codec interface {
	// Decode reads the image at path.
	Decode(ctx context.Context, path string) (*Image, error)

	// Encode writes img to destination, replacing any existing file.
	// On error no file or temporary file is left at or beside destination.
	Encode(ctx context.Context, img *Image, destination string, params EncodeParams) error

	// Available returns an error if the codec cannot run on this system.
	Available() error
}
