package metrics

// Record is the extracted summary for one participant file.
type Record struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Baseline     MetricSet `json:"baseline"`
	Conditioning MetricSet `json:"conditioning"`
	PGQ          MetricSet `json:"pgq"`
}

// Block returns the metric set for b.
func (r Record) Block(b Block) MetricSet {
	switch b {
	case Baseline:
		return r.Baseline
	case Conditioning:
		return r.Conditioning
	case PGQ:
		return r.PGQ
	}
	return nil
}

// Insufficient reports whether the file had too few rows to extract.
func (r Record) Insufficient() bool {
	return len(r.Baseline) == 0 && len(r.Conditioning) == 0 && len(r.PGQ) == 0
}

// Unresolved counts "N/A" values across all blocks.
func (r Record) Unresolved() int {
	return r.Baseline.Unresolved() + r.Conditioning.Unresolved() + r.PGQ.Unresolved()
}
