package metrics

import (
	"math"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/KaramelBytes/edamaster-cli/internal/table"
)

// DefaultSuffix is the token the analysis software appends to every export.
const DefaultSuffix = "_period_analysis_summary"

// ignoredColumns are dropped from every row before extraction.
var ignoredColumns = []string{"Duration", "duration"}

var extPattern = regexp.MustCompile(`(?i)\.(csv|txt|tsv|xlsx)$`)

// Extractor turns parsed participant rows into a Record.
type Extractor struct {
	layout Layout
	suffix string
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithSuffix overrides the filename token removed when deriving ids.
func WithSuffix(s string) Option {
	return func(e *Extractor) { e.suffix = s }
}

// WithLayout overrides the row layout.
func WithLayout(l Layout) Option {
	return func(e *Extractor) { e.layout = l }
}

// NewExtractor returns an Extractor using DefaultLayout and DefaultSuffix
// unless overridden.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{layout: DefaultLayout, suffix: DefaultSuffix}
	for _, o := range opts {
		o(e)
	}
	return e
}

// ParticipantID derives the participant id from a file name: directory and
// extension are removed, then the first occurrence of the suffix token.
func (e *Extractor) ParticipantID(filename string) string {
	id := extPattern.ReplaceAllString(filepath.Base(filename), "")
	if e.suffix != "" {
		id = strings.Replace(id, e.suffix, "", 1)
	}
	return id
}

// Extract builds the record for one file. It never fails: missing columns
// yield "N/A" and files with too few rows yield empty blocks. Rows are
// modified in place (ignored columns are removed).
func (e *Extractor) Extract(filename string, rows []table.Row) Record {
	id := e.ParticipantID(filename)
	rec := Record{ID: id, Name: id}

	for i := range rows {
		for _, c := range ignoredColumns {
			rows[i].Delete(c)
		}
	}

	baseline, cond, pgq, ok := e.layout.partition(rows)
	if !ok {
		rec.Baseline, rec.Conditioning, rec.PGQ = MetricSet{}, MetricSet{}, MetricSet{}
		return rec
	}

	rec.Baseline = make(MetricSet, len(Definitions))
	rec.Conditioning = make(MetricSet, len(Definitions))
	rec.PGQ = make(MetricSet, len(Definitions))
	for _, d := range Definitions {
		rec.Baseline[d.Metric] = singleValue(baseline, d.Key)
		rec.Conditioning[d.Metric] = meanValue(cond, d.Key)
		rec.PGQ[d.Metric] = singleValue(pgq, d.Key)
	}
	return rec
}

func formatMean(x float64) string {
	switch {
	case math.IsNaN(x):
		return "NaN"
	case math.IsInf(x, 1):
		return "Infinity"
	case math.IsInf(x, -1):
		return "-Infinity"
	}
	return strconv.FormatFloat(x, 'f', 6, 64)
}
