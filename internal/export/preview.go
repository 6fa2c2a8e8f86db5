package export

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/edamaster-cli/internal/metrics"
)

// DefaultPreviewRows is how many participants a preview shows.
const DefaultPreviewRows = 10

// PreviewTable is a read-only view of the first records of a run.
type PreviewTable struct {
	Header []string
	Rows   [][]string
	// Total is the number of records in the run, shown or not.
	Total int
}

// Preview returns the first limit records in master sheet layout. A limit of
// zero or less uses DefaultPreviewRows.
func Preview(records []metrics.Record, limit int) *PreviewTable {
	if limit <= 0 {
		limit = DefaultPreviewRows
	}
	n := len(records)
	if n > limit {
		n = limit
	}
	p := &PreviewTable{Header: Header(), Total: len(records), Rows: make([][]string, 0, n)}
	for _, r := range records[:n] {
		p.Rows = append(p.Rows, Fields(r))
	}
	return p
}

// Markdown renders the preview as a markdown table.
func (p *PreviewTable) Markdown() string {
	var b strings.Builder
	b.WriteString("[PREVIEW]\n")
	if p.Total > len(p.Rows) {
		b.WriteString(fmt.Sprintf("First %d of %d participants\n", len(p.Rows), p.Total))
	} else {
		b.WriteString(fmt.Sprintf("Participants: %d\n", p.Total))
	}
	if len(p.Rows) == 0 {
		return b.String()
	}
	b.WriteString("| ")
	b.WriteString(strings.Join(p.Header, " | "))
	b.WriteString(" |\n|")
	for range p.Header {
		b.WriteString(" --- |")
	}
	b.WriteString("\n")
	for _, row := range p.Rows {
		b.WriteString("| ")
		for i, v := range row {
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString(safeVal(v))
		}
		b.WriteString(" |\n")
	}
	return b.String()
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
