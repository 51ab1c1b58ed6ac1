package domain

// RetainPolicy decides what stays queued after a batch run.
type RetainPolicy string

// Available retain policies.
const (
	// RetainAll keeps the whole queue unless every file succeeded.
	RetainAll RetainPolicy = "all"

	// RetainFailed keeps only files that failed or were never attempted.
	RetainFailed RetainPolicy = "failed"
)

// IsValid returns true if the retain policy is recognised.
func (r RetainPolicy) IsValid() bool {
	return r == RetainAll || r == RetainFailed
}

// String returns the string representation.
func (r RetainPolicy) String() string {
	return string(r)
}

// SourceQueue is an ordered set of files awaiting conversion.
// It is not safe for concurrent use; the queue service guards it.
type SourceQueue struct {
	items []string
	index map[string]struct{}
}

// NewSourceQueue creates a queue holding paths, dropping duplicates.
func NewSourceQueue(paths ...string) *SourceQueue {
	q := &SourceQueue{index: make(map[string]struct{})}
	for _, p := range paths {
		q.Add(p)
	}
	return q
}

// Add appends path unless it is already queued. Returns true if added.
func (q *SourceQueue) Add(path string) bool {
	if q.index == nil {
		q.index = make(map[string]struct{})
	}
	if _, ok := q.index[path]; ok {
		return false
	}
	q.index[path] = struct{}{}
	q.items = append(q.items, path)
	return true
}

// Remove drops path from the queue. Returns true if it was queued.
func (q *SourceQueue) Remove(path string) bool {
	if _, ok := q.index[path]; !ok {
		return false
	}
	delete(q.index, path)
	for i, p := range q.items {
		if p == path {
			q.items = append(q.items[:i], q.items[i+1:]...)
			break
		}
	}
	return true
}

// Contains returns true if path is queued.
func (q *SourceQueue) Contains(path string) bool {
	_, ok := q.index[path]
	return ok
}

// Items returns a copy of the queued paths in order.
func (q *SourceQueue) Items() []string {
	out := make([]string, len(q.items))
	copy(out, q.items)
	return out
}

// Len returns the number of queued paths.
func (q *SourceQueue) Len() int {
	return len(q.items)
}

// Clear empties the queue.
func (q *SourceQueue) Clear() {
	q.items = nil
	q.index = make(map[string]struct{})
}

// Settle applies a finished run to the queue. With RetainAll the queue is
// cleared only when every file succeeded, otherwise it is left intact. With
// RetainFailed only unconverted files remain.
func (q *SourceQueue) Settle(summary *BatchSummary, policy RetainPolicy) {
	if summary == nil {
		return
	}
	if summary.AllSucceeded() {
		q.Clear()
		return
	}
	if policy != RetainFailed {
		return
	}
	remaining := summary.Unconverted(q.items)
	q.Clear()
	for _, p := range remaining {
		q.Add(p)
	}
}
