package batch

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KaramelBytes/edamaster-cli/internal/metrics"
	"github.com/KaramelBytes/edamaster-cli/internal/parser"
	"github.com/KaramelBytes/edamaster-cli/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func summaryCSV(n int) string {
	var b strings.Builder
	b.WriteString("Period,Mean SCL,SCR Std\n")
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "R%d,%d,%d\n", i, i, i*10)
	}
	return b.String()
}

func memInput(name, content string) Input {
	return Input{Name: name, Open: func() (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader(content)), nil
	}}
}

func csvParse(name string, r io.Reader) ([]table.Row, error) {
	return parser.Parse(name, r, parser.DefaultOptions())
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRun_OrderAndCount(t *testing.T) {
	inputs := []Input{
		memInput("c_period_analysis_summary.csv", summaryCSV(8)),
		memInput("a_period_analysis_summary.csv", summaryCSV(3)),
		memInput("b_period_analysis_summary.csv", summaryCSV(9)),
	}
	s := NewRunner(csvParse, metrics.NewExtractor(), WithLogger(quietLogger())).Run(inputs)

	require.Len(t, s.Records, 3)
	assert.Equal(t, "c", s.Records[0].ID)
	assert.Equal(t, "a", s.Records[1].ID)
	assert.Equal(t, "b", s.Records[2].ID)
	assert.True(t, s.Records[1].Insufficient())
	assert.Equal(t, "4.000000", s.Records[0].Conditioning.Text(metrics.MeanSCL))
	assert.NotEmpty(t, s.ID)
	assert.False(t, s.Empty())
}

func TestRun_ProgressBeforeParse(t *testing.T) {
	var events []string
	parse := func(name string, r io.Reader) ([]table.Row, error) {
		events = append(events, "parse "+name)
		return csvParse(name, r)
	}
	progress := func(cur, total int, name string) {
		events = append(events, fmt.Sprintf("progress %d/%d %s", cur, total, name))
	}
	inputs := []Input{memInput("x.csv", summaryCSV(8)), memInput("y.csv", summaryCSV(8))}
	NewRunner(parse, nil, WithProgress(progress), WithLogger(quietLogger())).Run(inputs)

	assert.Equal(t, []string{
		"progress 1/2 x.csv", "parse x.csv",
		"progress 2/2 y.csv", "parse y.csv",
	}, events)
}

func TestRun_FailuresDoNotAbort(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	inputs := []Input{
		{Name: "broken.csv", Open: func() (io.ReadCloser, error) { return nil, errors.New("disk gone") }},
		{Name: "noreader.csv"},
		memInput("ok.csv", summaryCSV(8)),
	}
	s := NewRunner(csvParse, nil, WithLogger(logger)).Run(inputs)

	require.Len(t, s.Records, 3)
	assert.True(t, s.Records[0].Insufficient())
	assert.True(t, s.Records[1].Insufficient())
	assert.False(t, s.Records[2].Insufficient())
	assert.Equal(t, []string{"broken.csv", "noreader.csv"}, s.Failed)
	assert.Contains(t, logs.String(), "disk gone")
}

func TestRun_FreshSessionPerRun(t *testing.T) {
	r := NewRunner(csvParse, nil, WithLogger(quietLogger()))
	first := r.Run([]Input{memInput("a.csv", summaryCSV(8))})
	second := r.Run(nil)
	assert.Len(t, first.Records, 1)
	assert.True(t, second.Empty())
	assert.NotEqual(t, first.ID, second.ID)
}

func TestFileInputsAndExpandArgs(t *testing.T) {
	dir := t.TempDir()
	for _, n := range []string{"p2.csv", "p1.csv", "notes.md"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), []byte(summaryCSV(8)), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.csv"), 0o755))

	p2 := filepath.Join(dir, "p2.csv")
	files := ExpandArgs([]string{p2, filepath.Join(dir, "*.csv"), filepath.Join(dir, "missing.csv")})
	assert.Equal(t, []string{p2, filepath.Join(dir, "p1.csv")}, files)

	s := NewRunner(csvParse, nil, WithLogger(quietLogger())).Run(FileInputs(files))
	require.Len(t, s.Records, 2)
	assert.Equal(t, "p2", s.Records[0].ID)
	assert.Empty(t, s.Failed)
}
