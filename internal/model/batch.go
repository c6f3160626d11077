package model

// BatchResult aggregates the per-file outcomes of a batch run.
// Processed + Skipped + Failed always equals len(Results).
type BatchResult struct {
	Results   []ProcessResult `json:"results" yaml:"results"`
	Processed int             `json:"processed" yaml:"processed"`
	Skipped   int             `json:"skipped" yaml:"skipped"`
	Failed    int             `json:"failed" yaml:"failed"`
}

// NewBatchResult creates an empty batch result sized for n files.
func NewBatchResult(n int) *BatchResult {
	return &BatchResult{
		Results: make([]ProcessResult, 0, n),
	}
}

// Add appends a result and tallies exactly one counter for it.
func (b *BatchResult) Add(r ProcessResult) {
	b.Results = append(b.Results, r)
	switch {
	case r.Skipped:
		b.Skipped++
	case r.Success:
		b.Processed++
	default:
		b.Failed++
	}
}

// Total returns the number of files in the batch.
func (b *BatchResult) Total() int {
	return len(b.Results)
}

// Failures returns the failed results in input order.
func (b *BatchResult) Failures() []ProcessResult {
	var failed []ProcessResult
	for _, r := range b.Results {
		if r.Failure() {
			failed = append(failed, r)
		}
	}
	return failed
}

// OK reports whether no file in the batch failed.
func (b *BatchResult) OK() bool {
	return b.Failed == 0
}
