// Package batch runs extraction over an ordered list of participant files.
package batch

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/KaramelBytes/edamaster-cli/internal/metrics"
	"github.com/KaramelBytes/edamaster-cli/internal/table"
	"github.com/google/uuid"
)

// Input is one file in a batch. Open is called once, right before parsing.
type Input struct {
	Name string
	Open func() (io.ReadCloser, error)
}

// ParseFunc reads the rows of one named file.
type ParseFunc func(name string, r io.Reader) ([]table.Row, error)

// ProgressFunc is told which file is about to be read, as (current, total)
// with current starting at 1.
type ProgressFunc func(current, total int, name string)

// Session is the result of one run. A new Session is created per run.
type Session struct {
	ID        string
	StartedAt time.Time
	Duration  time.Duration
	Records   []metrics.Record
	// Failed lists inputs that could not be read; they still have a record.
	Failed []string
}

// Runner processes inputs strictly one after another.
type Runner struct {
	parse     ParseFunc
	extractor *metrics.Extractor
	progress  ProgressFunc
	logger    *slog.Logger
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithProgress sets the progress callback.
func WithProgress(fn ProgressFunc) RunnerOption {
	return func(r *Runner) { r.progress = fn }
}

// WithLogger sets the logger; slog.Default() is used otherwise.
func WithLogger(l *slog.Logger) RunnerOption {
	return func(r *Runner) { r.logger = l }
}

// NewRunner builds a Runner around a parser and an extractor.
func NewRunner(parse ParseFunc, extractor *metrics.Extractor, opts ...RunnerOption) *Runner {
	r := &Runner{parse: parse, extractor: extractor}
	for _, o := range opts {
		o(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	if r.extractor == nil {
		r.extractor = metrics.NewExtractor()
	}
	return r
}

// Run processes every input in order and returns a fresh Session holding
// exactly one record per input. A file that cannot be read is logged and
// recorded as having too few rows; the run always continues.
func (r *Runner) Run(inputs []Input) *Session {
	s := &Session{
		ID:        uuid.NewString(),
		StartedAt: time.Now(),
		Records:   make([]metrics.Record, 0, len(inputs)),
	}
	log := r.logger.With("component", "batch", "run_id", s.ID)
	log.Debug("run started", "files", len(inputs))

	total := len(inputs)
	for i, in := range inputs {
		if r.progress != nil {
			r.progress(i+1, total, in.Name)
		}
		rows, err := r.read(in)
		if err != nil {
			log.Warn("file could not be read", "file", in.Name, "error", err)
			s.Failed = append(s.Failed, in.Name)
			rows = nil
		}
		rec := r.extractor.Extract(in.Name, rows)
		if rec.Insufficient() {
			log.Warn("insufficient rows", "file", in.Name, "rows", len(rows))
		} else if n := rec.Unresolved(); n > 0 {
			log.Debug("unresolved metrics", "file", in.Name, "count", n)
		}
		s.Records = append(s.Records, rec)
	}

	s.Duration = time.Since(s.StartedAt)
	log.Info("run finished", "files", total, "failed", len(s.Failed), "elapsed", s.Duration)
	return s
}

func (r *Runner) read(in Input) ([]table.Row, error) {
	if in.Open == nil {
		return nil, fmt.Errorf("no reader for %s", in.Name)
	}
	rc, err := in.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return r.parse(in.Name, rc)
}

// FileInputs builds inputs for paths on disk, named by their base name.
func FileInputs(paths []string) []Input {
	out := make([]Input, 0, len(paths))
	for _, p := range paths {
		path := p
		out = append(out, Input{
			Name: filepath.Base(path),
			Open: func() (io.ReadCloser, error) { return os.Open(path) },
		})
	}
	return out
}

// Empty reports whether the session has nothing to export.
func (s *Session) Empty() bool {
	return s == nil || len(s.Records) == 0
}
