package domain

import "time"

// Policy selects how a batch schedules its conversions.
type Policy string

// Available batch policies.
const (
	// PolicySequential converts one file at a time, in source order.
	PolicySequential Policy = "sequential"

	// PolicyParallel converts up to Workers files at once. Outcomes are
	// still applied in source order.
	PolicyParallel Policy = "parallel"
)

// IsValid returns true if the policy is recognised.
func (p Policy) IsValid() bool {
	return p == PolicySequential || p == PolicyParallel
}

// String returns the string representation.
func (p Policy) String() string {
	return string(p)
}

// BatchRequest describes one batch run.
type BatchRequest struct {
	// Sources are the files to convert, in order.
	Sources []string

	// Options is the per-run snapshot of conversion parameters.
	Options ConversionOptions

	// Policy selects sequential or parallel scheduling. Empty means sequential.
	Policy Policy

	// Workers bounds parallelism for PolicyParallel. Zero means one per CPU.
	Workers int
}

// Outcome is the result of converting one source file.
type Outcome struct {
	// Source is the file that was converted.
	Source string

	// Destination is the written file. Empty on failure.
	Destination string

	// Err is set when the conversion failed.
	Err *ConversionError
}

// Success creates a successful outcome.
func Success(source, destination string) Outcome {
	return Outcome{Source: source, Destination: destination}
}

// Failed creates a failed outcome.
func Failed(source string, kind ErrorKind, cause error) Outcome {
	return Outcome{Source: source, Err: NewConversionError(kind, source, cause)}
}

// Succeeded returns true if the file was converted.
func (o Outcome) Succeeded() bool {
	return o.Err == nil
}

// Progress is the fraction of a batch that has been attempted.
type Progress struct {
	// Completed is the number of files attempted so far.
	Completed int

	// Total is the number of files in the batch.
	Total int
}

// Fraction returns Completed/Total, or 0 for an empty batch.
func (p Progress) Fraction() float64 {
	if p.Total == 0 {
		return 0
	}
	return float64(p.Completed) / float64(p.Total)
}

// Done returns true once every file has been attempted.
func (p Progress) Done() bool {
	return p.Total > 0 && p.Completed == p.Total
}

// BatchEvent is emitted once per attempted file, in source order.
type BatchEvent struct {
	// RunID identifies the batch.
	RunID string

	// Index is the position of the file in the request.
	Index int

	// Outcome is the result for this file.
	Outcome Outcome

	// Progress is the batch progress after this file.
	Progress Progress
}

// Failure records one failed file in a summary.
type Failure struct {
	// Source is the file that failed.
	Source string

	// Kind classifies the failure.
	Kind ErrorKind

	// Cause is the underlying error text, if any.
	Cause string
}

// Message returns the user-facing line for this failure.
func (f Failure) Message() string {
	return FailureMessage(f.Source, f.Kind)
}

// BatchSummary is the aggregate result of a batch run.
type BatchSummary struct {
	// RunID identifies the batch.
	RunID string

	// Total is the number of files requested.
	Total int

	// Attempted is the number of files whose conversion was started.
	Attempted int

	// Succeeded is the number of files converted.
	Succeeded int

	// Failures lists failed files in attempt order.
	Failures []Failure

	// Outputs lists written files in source order.
	Outputs []string

	// Cancelled is set when the run stopped before every file was attempted.
	Cancelled bool

	// StartedAt is when the run started.
	StartedAt time.Time

	// EndedAt is when the run finished.
	EndedAt time.Time
}

// Record applies one outcome to the summary.
func (s *BatchSummary) Record(o Outcome) {
	s.Attempted++
	if o.Succeeded() {
		s.Succeeded++
		s.Outputs = append(s.Outputs, o.Destination)
		return
	}
	f := Failure{Source: o.Source, Kind: o.Err.Kind}
	if o.Err.Cause != nil {
		f.Cause = o.Err.Cause.Error()
	}
	s.Failures = append(s.Failures, f)
}

// FailedCount returns the number of failed files.
func (s *BatchSummary) FailedCount() int {
	return len(s.Failures)
}

// AllSucceeded returns true if every requested file was attempted and converted.
func (s *BatchSummary) AllSucceeded() bool {
	return !s.Cancelled && s.Attempted == s.Total && s.Succeeded == s.Total
}

// Progress returns the progress reached by the run.
func (s *BatchSummary) Progress() Progress {
	return Progress{Completed: s.Attempted, Total: s.Total}
}

// Duration returns how long the run took.
func (s *BatchSummary) Duration() time.Duration {
	return s.EndedAt.Sub(s.StartedAt)
}

// Unconverted returns the members of sources that failed or were never
// attempted, preserving their order.
func (s *BatchSummary) Unconverted(sources []string) []string {
	failed := make(map[string]bool, len(s.Failures))
	for _, f := range s.Failures {
		failed[f.Source] = true
	}
	var out []string
	for i, src := range sources {
		if i >= s.Attempted || failed[src] {
			out = append(out, src)
		}
	}
	return out
}

// Messages returns the user-facing failure lines in attempt order.
func (s *BatchSummary) Messages() []string {
	msgs := make([]string, 0, len(s.Failures))
	for _, f := range s.Failures {
		msgs = append(msgs, f.Message())
	}
	return msgs
}

// FailedSources returns the failed source paths in attempt order.
func (s *BatchSummary) FailedSources() []string {
	out := make([]string, 0, len(s.Failures))
	for _, f := range s.Failures {
		out = append(out, f.Source)
	}
	return out
}
