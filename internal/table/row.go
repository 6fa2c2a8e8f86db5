package table

// Cell is one named column value within a Row.
type Cell struct {
	Column string
	Value  Value
}

// Row is an ordered set of cells. Column order matches the source header and
// is significant: lookups that scan columns return the first match.
type Row struct {
	Cells []Cell
}

// NewRow builds a row from parallel column and value slices. Extra values
// beyond the column list are dropped; missing trailing values leave the
// column absent.
func NewRow(columns []string, values []Value) Row {
	n := len(columns)
	if len(values) < n {
		n = len(values)
	}
	cells := make([]Cell, 0, n)
	for i := 0; i < n; i++ {
		cells = append(cells, Cell{Column: columns[i], Value: values[i]})
	}
	return Row{Cells: cells}
}

// Columns returns the column names in order.
func (r *Row) Columns() []string {
	if r == nil {
		return nil
	}
	out := make([]string, len(r.Cells))
	for i, c := range r.Cells {
		out[i] = c.Column
	}
	return out
}

// Get looks up a column by exact name.
func (r *Row) Get(column string) (Value, bool) {
	if r == nil {
		return Value{}, false
	}
	for _, c := range r.Cells {
		if c.Column == column {
			return c.Value, true
		}
	}
	return Value{}, false
}

// Delete removes every cell whose column equals name. It reports whether
// anything was removed.
func (r *Row) Delete(column string) bool {
	if r == nil {
		return false
	}
	kept := r.Cells[:0]
	removed := false
	for _, c := range r.Cells {
		if c.Column == column {
			removed = true
			continue
		}
		kept = append(kept, c)
	}
	r.Cells = kept
	return removed
}
