// Package fswatch reports new and modified files using fsnotify.
package fswatch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/tiffheif/internal/core/ports/driven"
	"github.com/custodia-labs/tiffheif/internal/logger"
)

// pathBuffer is the capacity of the paths channel.
const pathBuffer = 64

// Ensure Watcher implements the interface.
var _ driven.SourceWatcher = (*Watcher)(nil)

// Watcher watches a single directory, non-recursively.
type Watcher struct{}

// New creates a watcher.
func New() *Watcher {
	return &Watcher{}
}

// Watch streams paths of files created or written in dir until ctx is done.
// fsnotify events are always drained: while the consumer is busy, changed
// paths are queued once each and delivered in arrival order.
func (w *Watcher) Watch(ctx context.Context, dir string) (<-chan string, <-chan error, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(abs); err != nil {
		_ = fsw.Close()
		return nil, nil, fmt.Errorf("watch %s: %w", abs, err)
	}

	paths := make(chan string, pathBuffer)
	errs := make(chan error, 1)

	go func() {
		defer close(paths)
		defer close(errs)
		defer fsw.Close()

		var backlog pathQueue
		for {
			// A nil channel disables the send case while the backlog is empty.
			var out chan<- string
			next, queued := backlog.peek()
			if queued {
				out = paths
			}

			select {
			case <-ctx.Done():
				return
			case out <- next:
				backlog.pop()
			case event, ok := <-fsw.Events:
				if !ok {
					return
				}
				if path, changed := handleFsEvent(event); changed {
					backlog.push(path)
				}
			case err, ok := <-fsw.Errors:
				if !ok {
					return
				}
				select {
				case errs <- err:
				default:
					logger.Warn("watch %s: %v", abs, err)
				}
			}
		}
	}()

	return paths, errs, nil
}

// handleFsEvent returns the path of a created or written regular file.
// Directories, hidden files, removals and permission changes are ignored.
func handleFsEvent(event fsnotify.Event) (string, bool) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return "", false
	}
	if strings.HasPrefix(filepath.Base(event.Name), ".") {
		return "", false
	}
	info, err := os.Lstat(event.Name)
	if err != nil || !info.Mode().IsRegular() {
		return "", false
	}
	return event.Name, true
}

// pathQueue is a FIFO of paths in which each path appears at most once.
type pathQueue struct {
	items []string
	seen  map[string]struct{}
}

func (q *pathQueue) push(path string) {
	if q.seen == nil {
		q.seen = make(map[string]struct{})
	}
	if _, ok := q.seen[path]; ok {
		return
	}
	q.seen[path] = struct{}{}
	q.items = append(q.items, path)
}

func (q *pathQueue) peek() (string, bool) {
	if len(q.items) == 0 {
		return "", false
	}
	return q.items[0], true
}

func (q *pathQueue) pop() {
	delete(q.seen, q.items[0])
	q.items[0] = ""
	q.items = q.items[1:]
}

func (q *pathQueue) len() int {
	return len(q.items)
}
