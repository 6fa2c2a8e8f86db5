// Package export renders extracted records as the master sheet and as
// preview tables.
package export

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/KaramelBytes/edamaster-cli/internal/metrics"
	"github.com/KaramelBytes/edamaster-cli/internal/utils"
)

// DefaultFilename is the name of the generated master sheet.
const DefaultFilename = "EDA_MASTER_SHEET.csv"

// ErrNoRecords is returned when there is nothing to export.
var ErrNoRecords = errors.New("no records to export")

// Header returns the 26 master sheet column labels: id, NAME, then the three
// blocks of each metric side by side.
func Header() []string {
	h := make([]string, 0, 2+len(metrics.Definitions)*len(metrics.Blocks))
	h = append(h, "id", "NAME")
	for _, d := range metrics.Definitions {
		for _, b := range metrics.Blocks {
			h = append(h, d.Label+" "+b.Tag())
		}
	}
	return h
}

// Fields returns the master sheet cells for one record, in Header order.
// Metrics missing from a block (too few rows) render as empty cells.
func Fields(r metrics.Record) []string {
	f := make([]string, 0, 2+len(metrics.Definitions)*len(metrics.Blocks))
	f = append(f, r.ID, r.Name)
	for _, d := range metrics.Definitions {
		for _, b := range metrics.Blocks {
			f = append(f, r.Block(b).Text(d.Metric))
		}
	}
	return f
}

// WriteCSV writes the master sheet: header plus one line per record, fields
// joined by commas and lines by "\n" with no trailing newline. Fields are
// not quoted, so commas inside values shift columns; consumers of the sheet
// rely on this exact layout.
func WriteCSV(w io.Writer, records []metrics.Record) error {
	if len(records) == 0 {
		return ErrNoRecords
	}
	lines := make([]string, 0, len(records)+1)
	lines = append(lines, strings.Join(Header(), ","))
	for _, r := range records {
		lines = append(lines, strings.Join(Fields(r), ","))
	}
	if _, err := io.WriteString(w, strings.Join(lines, "\n")); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// WriteFile writes the master sheet to path atomically. With no records it
// does nothing and reports written=false.
func WriteFile(path string, records []metrics.Record) (written bool, err error) {
	if len(records) == 0 {
		return false, nil
	}
	var b strings.Builder
	if err := WriteCSV(&b, records); err != nil {
		return false, err
	}
	if err := utils.SafeWriteFile(path, []byte(b.String())); err != nil {
		return false, err
	}
	return true, nil
}
