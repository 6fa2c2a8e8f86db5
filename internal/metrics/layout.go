package metrics

import "github.com/KaramelBytes/edamaster-cli/internal/table"

// Layout fixes which row positions feed each block. Positions are 0-based
// indexes into the data rows (header excluded).
type Layout struct {
	Baseline int
	// Conditioning rows are [CondStart, CondEnd).
	CondStart int
	CondEnd   int
	PGQ       int
	// MinRows is the smallest row count that is extracted at all.
	MinRows int
}

// DefaultLayout is the period-analysis summary layout: baseline, a question
// row that is skipped, five conditioning trials and the pgq row.
var DefaultLayout = Layout{
	Baseline:  0,
	CondStart: 2,
	CondEnd:   7,
	PGQ:       7,
	MinRows:   8,
}

// partition slices rows into the three blocks. ok is false when there are
// not enough rows to extract.
func (l Layout) partition(rows []table.Row) (baseline *table.Row, cond []table.Row, pgq *table.Row, ok bool) {
	if len(rows) < l.MinRows {
		return nil, nil, nil, false
	}
	return at(rows, l.Baseline), slice(rows, l.CondStart, l.CondEnd), at(rows, l.PGQ), true
}

func at(rows []table.Row, i int) *table.Row {
	if i < 0 || i >= len(rows) {
		return nil
	}
	return &rows[i]
}

func slice(rows []table.Row, from, to int) []table.Row {
	if from >= len(rows) {
		return nil
	}
	if to > len(rows) {
		to = len(rows)
	}
	return rows[from:to]
}
