package metrics

import (
	"strings"

	"github.com/KaramelBytes/edamaster-cli/internal/table"
)

// ResolveColumn returns the first column of row, in header order, whose
// lowercased name contains the lowercased key. A nil row resolves nothing.
func ResolveColumn(row *table.Row, key string) (string, bool) {
	if row == nil {
		return "", false
	}
	key = strings.ToLower(key)
	for _, c := range row.Cells {
		if strings.Contains(strings.ToLower(c.Column), key) {
			return c.Column, true
		}
	}
	return "", false
}

// singleValue reads one metric from a single-row block.
func singleValue(row *table.Row, key string) table.Value {
	if row == nil {
		return table.Text(NotAvailable)
	}
	col, ok := ResolveColumn(row, key)
	if !ok {
		return table.Text(NotAvailable)
	}
	v, _ := row.Get(col)
	return v
}

// meanValue averages one metric over a block. The column is resolved on the
// first row only and assumed to exist in the others.
func meanValue(rows []table.Row, key string) table.Value {
	if len(rows) == 0 {
		return table.Text(NotAvailable)
	}
	col, ok := ResolveColumn(&rows[0], key)
	if !ok {
		return table.Text(NotAvailable)
	}
	var sum float64
	for i := range rows {
		v, _ := rows[i].Get(col)
		sum += v.Float()
	}
	return table.Text(formatMean(sum / float64(len(rows))))
}
