package metrics

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/KaramelBytes/edamaster-cli/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var summaryHeader = []string{
	"Period", "Duration", "Mean SCL (uS)", "Mean SCR Amp", "SCR Freq (/min)", "Total SCRs",
	"SCL Slope", "NS-SCL Count", "SCL Std", "SCR Std",
}

// summaryRow builds a row whose metric cells are base, base+1, ... base+7.
func summaryRow(period string, base float64) table.Row {
	vals := []table.Value{table.Text(period), table.NumberValue(60)}
	for i := 0; i < 8; i++ {
		vals = append(vals, table.NumberValue(base+float64(i)))
	}
	return table.NewRow(summaryHeader, vals)
}

func participantRows() []table.Row {
	rows := []table.Row{
		summaryRow("Baseline", 10),
		summaryRow("Question", 9999),
	}
	for i := 1; i <= 5; i++ {
		rows = append(rows, summaryRow(fmt.Sprintf("C%d", i), float64(i)))
	}
	rows = append(rows, summaryRow("PGQ", 100))
	return rows
}

func TestExtract_Blocks(t *testing.T) {
	rec := NewExtractor().Extract("P07_period_analysis_summary.csv", participantRows())

	assert.Equal(t, "P07", rec.ID)
	assert.Equal(t, "P07", rec.Name)
	assert.False(t, rec.Insufficient())
	assert.Zero(t, rec.Unresolved())

	for i, d := range Definitions {
		base, ok := rec.Baseline.Get(d.Metric)
		require.True(t, ok)
		assert.Equal(t, table.Number, base.Kind(), "baseline values pass through raw")
		assert.Equal(t, 10+float64(i), base.Float())

		pgq, _ := rec.PGQ.Get(d.Metric)
		assert.Equal(t, 100+float64(i), pgq.Float())

		// conditioning rows hold 1..5 (+i); mean is 3+i
		assert.Equal(t, fmt.Sprintf("%.6f", 3+float64(i)), rec.Conditioning.Text(d.Metric))
	}
}

func TestExtract_QuestionRowNeverRead(t *testing.T) {
	rec := NewExtractor().Extract("p.csv", participantRows())
	for _, b := range Blocks {
		for _, d := range Definitions {
			assert.NotContains(t, rec.Block(b).Text(d.Metric), "9999")
		}
	}
}

func TestExtract_InsufficientRows(t *testing.T) {
	rows := participantRows()[:7]
	rec := NewExtractor().Extract("short.txt", rows)

	assert.Equal(t, "short", rec.ID)
	assert.True(t, rec.Insufficient())
	assert.NotNil(t, rec.Baseline)
	assert.Empty(t, rec.Baseline)
	assert.Empty(t, rec.Conditioning)
	assert.Empty(t, rec.PGQ)
	assert.Zero(t, rec.Unresolved(), "empty blocks are not N/A-filled")

	b, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"short","name":"short","baseline":{},"conditioning":{},"pgq":{}}`, string(b))

	assert.True(t, NewExtractor().Extract("nil.csv", nil).Insufficient())
}

func TestExtract_MissingColumns(t *testing.T) {
	header := []string{"Period", "Mean SCL"}
	var rows []table.Row
	for i := 0; i < 8; i++ {
		rows = append(rows, table.NewRow(header, []table.Value{table.Text("x"), table.NumberValue(float64(i))}))
	}
	rec := NewExtractor().Extract("p.csv", rows)

	assert.Equal(t, 7*3, rec.Unresolved())
	assert.Equal(t, "0", rec.Baseline.Text(MeanSCL))
	assert.Equal(t, "4.000000", rec.Conditioning.Text(MeanSCL))
	assert.Equal(t, "7", rec.PGQ.Text(MeanSCL))
	for _, b := range Blocks {
		assert.Equal(t, NotAvailable, rec.Block(b).Text(SCRStd))
	}
}

func TestExtract_ConditioningResolvedFromFirstRowOnly(t *testing.T) {
	rows := participantRows()
	// First conditioning row loses every column but Period: the whole block is N/A
	// even though later rows still carry the metrics.
	rows[2] = table.NewRow([]string{"Period"}, []table.Value{table.Text("C1")})
	rec := NewExtractor().Extract("p.csv", rows)
	for _, d := range Definitions {
		assert.Equal(t, NotAvailable, rec.Conditioning.Text(d.Metric))
	}
}

func TestExtract_NonNumericCountsAsZero(t *testing.T) {
	rows := participantRows()
	rows[3].Cells[2].Value = table.Text("n/a")
	rows[4].Cells[2].Value = table.NullValue()
	rows[5].Cells[2].Value = table.BoolValue(true)
	rows[6].Cells = rows[6].Cells[:2] // short row: column absent
	rec := NewExtractor().Extract("p.csv", rows)
	// values: 1, 0, 0, 1, 0
	assert.Equal(t, "0.400000", rec.Conditioning.Text(MeanSCL))
}

func TestExtract_NonDecimalSpellingsCountAsZero(t *testing.T) {
	// first conditioning cell replaced, the others hold 2..5
	cases := map[string]string{
		"inf":       "2.800000",
		"infinity":  "2.800000",
		"+Inf":      "2.800000",
		"NaN":       "2.800000",
		"0x10":      "2.800000",
		"+1.5":      "3.100000",
		"Infinity":  "Infinity",
		"-Infinity": "-Infinity",
	}
	for cell, want := range cases {
		rows := participantRows()
		rows[2].Cells[2].Value = table.Infer(cell)
		rec := NewExtractor().Extract("p.csv", rows)
		assert.Equal(t, want, rec.Conditioning.Text(MeanSCL), cell)
	}
}

func TestExtract_DurationRemoved(t *testing.T) {
	header := []string{"duration total scr", "Duration", "duration", "Total SCR"}
	var rows []table.Row
	for i := 0; i < 8; i++ {
		rows = append(rows, table.NewRow(header, []table.Value{
			table.NumberValue(-1), table.NumberValue(-2), table.NumberValue(-3), table.NumberValue(5),
		}))
	}
	rec := NewExtractor().Extract("p.csv", rows)
	for i := range rows {
		_, ok := rows[i].Get("Duration")
		assert.False(t, ok)
		_, ok = rows[i].Get("duration")
		assert.False(t, ok)
	}
	// "duration total scr" is not an exact Duration column and still wins the tie-break.
	assert.Equal(t, "-1", rec.Baseline.Text(TotalSCR))
}

func TestExtract_NullPassesThrough(t *testing.T) {
	rows := participantRows()
	rows[0].Cells[2].Value = table.NullValue()
	rec := NewExtractor().Extract("p.csv", rows)
	v, ok := rec.Baseline.Get(MeanSCL)
	require.True(t, ok)
	assert.True(t, v.IsNull())
	assert.Equal(t, "", rec.Baseline.Text(MeanSCL))
}

func TestParticipantID(t *testing.T) {
	e := NewExtractor()
	assert.Equal(t, "P01", e.ParticipantID("P01_period_analysis_summary.CSV"))
	assert.Equal(t, "P02", e.ParticipantID("/data/batch/P02_period_analysis_summary.txt"))
	assert.Equal(t, "P03.dat", e.ParticipantID("P03.dat"))
	assert.Equal(t, "P06", e.ParticipantID("P06_period_analysis_summary.tsv"))
	assert.Equal(t, "P07", e.ParticipantID("P07_period_analysis_summary.XLSX"))
	assert.Equal(t, "a_b", e.ParticipantID("a_period_analysis_summary_b.csv"), "first occurrence anywhere")
	assert.Equal(t, "P04_raw", NewExtractor(WithSuffix("_summary")).ParticipantID("P04_raw_summary.csv"))
	assert.Equal(t, "P05_period_analysis_summary", NewExtractor(WithSuffix("")).ParticipantID("P05_period_analysis_summary.csv"))
}

func TestWithLayout(t *testing.T) {
	l := DefaultLayout
	l.MinRows = 10
	rec := NewExtractor(WithLayout(l)).Extract("p.csv", participantRows())
	assert.True(t, rec.Insufficient())
}
