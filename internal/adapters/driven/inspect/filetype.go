// Package inspect detects file content types from magic bytes.
package inspect

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"

	"github.com/custodia-labs/tiffheif/internal/core/ports/driven"
)

// Ensure Inspector implements the interface.
var _ driven.TypeInspector = (*Inspector)(nil)

// headerSize is the number of leading bytes filetype needs to match every
// type it knows.
const headerSize = 261

// Inspector matches file headers with h2non/filetype.
type Inspector struct{}

// New creates an inspector.
func New() *Inspector {
	return &Inspector{}
}

// Inspect returns the MIME type of the file at path, or "" if unknown.
func (i *Inspector) Inspect(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	header := make([]byte, headerSize)
	n, err := io.ReadFull(f, header)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return "", fmt.Errorf("read header: %w", err)
	}
	if n == 0 {
		return "", nil
	}

	kind, err := filetype.Match(header[:n])
	if err != nil || kind == types.Unknown {
		return "", nil //nolint:nilerr // unmatched content is an unknown type
	}
	return kind.MIME.Value, nil
}
