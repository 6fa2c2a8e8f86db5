// Package metrics extracts the fixed-position EDA summary metrics from a
// participant's parsed period-analysis rows.
//
// Every input file is expected to hold one row per analysis period:
//
//	row 0      baseline
//	row 1      question (never read)
//	rows 2..6  conditioning trials, averaged
//	row 7      pgq
//
// Columns are located by case-insensitive substring match on the header so
// that unit suffixes such as "Mean SCL (uS)" still resolve.
package metrics

import "github.com/KaramelBytes/edamaster-cli/internal/table"

// Metric names one of the eight extracted values.
type Metric string

const (
	MeanSCL  Metric = "meanSCL"
	MeanSCR  Metric = "meanSCR"
	SCRFreq  Metric = "scrFreq"
	TotalSCR Metric = "totalSCR"
	SCLSlope Metric = "sclSlope"
	NSSCL    Metric = "nsSCL"
	SCLStd   Metric = "sclStd"
	SCRStd   Metric = "scrStd"
)

// Definition binds a metric to the header search term used to find it and
// the label used in exported tables.
type Definition struct {
	Metric Metric
	Key    string
	Label  string
}

// Definitions lists the metrics in output order.
var Definitions = []Definition{
	{Metric: MeanSCL, Key: "mean scl", Label: "Mean SCL"},
	{Metric: MeanSCR, Key: "mean scr", Label: "Mean SCR"},
	{Metric: SCRFreq, Key: "scr freq", Label: "SCR Freq"},
	{Metric: TotalSCR, Key: "total scr", Label: "Total SCR"},
	{Metric: SCLSlope, Key: "scl slope", Label: "SCL Slope"},
	{Metric: NSSCL, Key: "ns-scl", Label: "NS-SCL"},
	{Metric: SCLStd, Key: "scl std", Label: "SCL Std"},
	{Metric: SCRStd, Key: "scr std", Label: "SCR Std"},
}

// NotAvailable marks a metric whose column or row could not be found.
const NotAvailable = "N/A"

// Block identifies one of the three row groups of a participant file.
type Block string

const (
	Baseline     Block = "baseline"
	Conditioning Block = "conditioning"
	PGQ          Block = "pgq"
)

// Blocks lists the blocks in export order.
var Blocks = []Block{Baseline, Conditioning, PGQ}

// Tag is the short suffix used for a block in column labels.
func (b Block) Tag() string {
	switch b {
	case Baseline:
		return "BASE"
	case Conditioning:
		return "COND"
	case PGQ:
		return "PGQ"
	}
	return string(b)
}

// MetricSet holds the values computed for one block. An empty set means the
// file had too few rows; it is not the same as a set full of "N/A".
type MetricSet map[Metric]table.Value

// Get returns the value for m, if present.
func (s MetricSet) Get(m Metric) (table.Value, bool) {
	v, ok := s[m]
	return v, ok
}

// Text renders the value for m, or "" when the set has no entry for it.
func (s MetricSet) Text(m Metric) string {
	v, ok := s[m]
	if !ok {
		return ""
	}
	return v.String()
}

// Unresolved counts entries holding the "N/A" sentinel.
func (s MetricSet) Unresolved() int {
	n := 0
	for _, v := range s {
		if isNotAvailable(v) {
			n++
		}
	}
	return n
}

func isNotAvailable(v table.Value) bool {
	return v.Kind() == table.String && v.String() == NotAvailable
}
