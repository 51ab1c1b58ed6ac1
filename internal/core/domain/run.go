package domain

// RunRecord is a persisted batch run.
type RunRecord struct {
	// Summary is the result of the run. Summary.RunID is the record ID.
	Summary BatchSummary

	// Options are the conversion options the run used.
	Options ConversionOptions

	// Policy is the scheduling policy the run used.
	Policy Policy

	// Workers is the parallelism the run used.
	Workers int
}

// ID returns the run identifier.
func (r *RunRecord) ID() string {
	return r.Summary.RunID
}
