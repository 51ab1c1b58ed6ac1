// Package fswalk expands directories into source file lists.
package fswalk

import (
	"context"
	"path/filepath"
	"sort"
	"strings"

	"github.com/karrick/godirwalk"

	"github.com/custodia-labs/tiffheif/internal/core/ports/driven"
	"github.com/custodia-labs/tiffheif/internal/logger"
)

// Ensure Lister implements the interface.
var _ driven.SourceLister = (*Lister)(nil)

// Lister walks directory trees with godirwalk.
type Lister struct{}

// New creates a lister.
func New() *Lister {
	return &Lister{}
}

// List returns the regular files under root in lexical order.
// Hidden entries and symlinks are skipped. Unreadable subdirectories are
// logged and skipped.
func (l *Lister) List(ctx context.Context, root string) ([]string, error) {
	root = filepath.Clean(root)
	var files []string
	err := godirwalk.Walk(root, &godirwalk.Options{
		Unsorted: true,
		Callback: func(p string, de *godirwalk.Dirent) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if p != root && isHidden(de.Name()) {
				if de.IsDir() {
					return godirwalk.SkipThis
				}
				return nil
			}
			if de.IsSymlink() || !de.IsRegular() {
				return nil
			}
			files = append(files, p)
			return nil
		},
		ErrorCallback: func(p string, err error) godirwalk.ErrorAction {
			if ctx.Err() != nil {
				return godirwalk.Halt
			}
			logger.Warn("skipping %s: %v", p, err)
			return godirwalk.SkipNode
		},
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	logger.Debug("listed %d files under %s", len(files), root)
	return files, nil
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
