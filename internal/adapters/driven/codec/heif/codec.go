// Package heif implements driven.Codec with imaging for decoding and the
// libheif heif-enc tool for encoding.
package heif

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/tiff" // registers the TIFF decoder with image.Decode

	"github.com/custodia-labs/tiffheif/internal/core/domain"
	"github.com/custodia-labs/tiffheif/internal/core/ports/driven"
	"github.com/custodia-labs/tiffheif/internal/logger"
)

// Ensure Codec implements the interface.
var _ driven.Codec = (*Codec)(nil)

// losslessBitDepth is the bit depth requested for lossless output.
const losslessBitDepth = 10

// Runner executes an external command and returns its combined output.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// Codec decodes with imaging and encodes by piping a PNG intermediate
// through heif-enc.
type Codec struct {
	encoder string
	run     Runner
}

// Option configures a Codec.
type Option func(*Codec)

// WithRunner replaces the command runner.
func WithRunner(run Runner) Option {
	return func(c *Codec) {
		c.run = run
	}
}

// New creates a codec using the given heif-enc binary name or path.
func New(encoder string, opts ...Option) *Codec {
	if encoder == "" {
		encoder = domain.DefaultEncoder
	}
	c := &Codec{
		encoder: encoder,
		run:     runCommand,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Encoder returns the configured encoder binary.
func (c *Codec) Encoder() string {
	return c.encoder
}

// Available checks that the encoder binary can be found.
func (c *Codec) Available() error {
	if _, err := exec.LookPath(c.encoder); err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrEncoderUnavailable, c.encoder, err)
	}
	return nil
}

// Decode reads the image at path and resolves its colour space.
func (c *Codec) Decode(ctx context.Context, path string) (*driven.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	colorSpace, depth := describe(img)
	return &driven.Image{
		Pixels:     img,
		ColorSpace: colorSpace,
		BitDepth:   depth,
	}, nil
}

// Encode writes img to destination. The file appears atomically; on failure
// nothing is left in the destination directory.
func (c *Codec) Encode(ctx context.Context, img *driven.Image, destination string, params driven.EncodeParams) error {
	if img == nil || img.Pixels == nil {
		return errors.New("no image to encode")
	}
	dir := filepath.Dir(destination)
	stem := strings.TrimSuffix(filepath.Base(destination), filepath.Ext(destination))

	// 1. Write the intermediate PNG
	intermediate, err := os.CreateTemp(dir, "."+stem+"-*.png")
	if err != nil {
		return fmt.Errorf("create intermediate: %w", err)
	}
	intermediatePath := intermediate.Name()
	defer os.Remove(intermediatePath)

	if err := imaging.Encode(intermediate, prepare(img.Pixels, params.Lossless), imaging.PNG); err != nil {
		_ = intermediate.Close()
		return fmt.Errorf("write intermediate: %w", err)
	}
	if err := intermediate.Close(); err != nil {
		return fmt.Errorf("write intermediate: %w", err)
	}

	// 2. Encode into a temporary file beside the destination
	out, err := os.CreateTemp(dir, "."+stem+"-*"+filepath.Ext(destination))
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	outPath := out.Name()
	_ = out.Close()

	args := encoderArgs(params, outPath, intermediatePath)
	logger.Debug("%s %s", c.encoder, strings.Join(args, " "))
	if output, err := c.run(ctx, c.encoder, args...); err != nil {
		_ = os.Remove(outPath)
		if msg := strings.TrimSpace(string(output)); msg != "" {
			return fmt.Errorf("%s: %w: %s", c.encoder, err, msg)
		}
		return fmt.Errorf("%s: %w", c.encoder, err)
	}

	info, err := os.Stat(outPath)
	if err != nil || info.Size() == 0 {
		_ = os.Remove(outPath)
		return fmt.Errorf("%s produced no output", c.encoder)
	}

	// 3. Move into place
	if err := os.Rename(outPath, destination); err != nil {
		_ = os.Remove(outPath)
		return fmt.Errorf("move output: %w", err)
	}
	return nil
}

// encoderArgs builds the heif-enc command line.
func encoderArgs(params driven.EncodeParams, output, input string) []string {
	var args []string
	if params.Lossless {
		args = append(args, "-L", "-b", strconv.Itoa(losslessBitDepth))
	} else {
		q := int(math.Round(params.Quality * 100))
		args = append(args, "-q", strconv.Itoa(max(0, min(100, q))))
	}
	return append(args, "-o", output, input)
}

// prepare converts pixels to the PNG intermediate representation.
// Lossless output keeps 16 bits per channel for the encoder to reduce.
func prepare(src image.Image, lossless bool) image.Image {
	if !lossless {
		return imaging.Clone(src)
	}
	if img, ok := src.(*image.NRGBA64); ok {
		return img
	}
	b := src.Bounds()
	dst := image.NewNRGBA64(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}

// describe resolves the colour space and bits per channel of a decoded image.
// Unknown layouts resolve to an empty colour space.
func describe(img image.Image) (string, int) {
	switch img.(type) {
	case *image.Gray:
		return driven.ColorSpaceGray, 8
	case *image.Gray16:
		return driven.ColorSpaceGray, 16
	case *image.CMYK:
		return driven.ColorSpaceCMYK, 8
	case *image.RGBA, *image.NRGBA, *image.YCbCr, *image.Paletted:
		return driven.ColorSpaceRGB, 8
	case *image.RGBA64, *image.NRGBA64:
		return driven.ColorSpaceRGB, 16
	default:
		return "", 0
	}
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf
	err := cmd.Run()
	return buf.Bytes(), err
}
