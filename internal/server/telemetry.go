package server

import (
	"github.com/KaramelBytes/edamaster-cli/internal/batch"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "edamaster"

// instruments holds the collectors exported on /metrics.
type instruments struct {
	runs       *prometheus.CounterVec
	files      *prometheus.CounterVec
	unresolved prometheus.Counter
	duration   prometheus.Histogram
}

func newInstruments(reg *prometheus.Registry) *instruments {
	m := &instruments{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Extraction runs by endpoint.",
		}, []string{"endpoint"}),
		files: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_total",
			Help:      "Processed participant files by outcome.",
		}, []string{"outcome"}),
		unresolved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unresolved_metrics_total",
			Help:      "Metric cells reported as N/A.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of one extraction run.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
	}
	reg.MustRegister(
		m.runs, m.files, m.unresolved, m.duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// observe records one finished session.
func (m *instruments) observe(endpoint string, s *batch.Session) {
	m.runs.WithLabelValues(endpoint).Inc()
	m.duration.Observe(s.Duration.Seconds())

	failed := len(s.Failed)
	insufficient := 0
	for _, r := range s.Records {
		if r.Insufficient() {
			insufficient++
		}
		m.unresolved.Add(float64(r.Unresolved()))
	}
	insufficient -= failed
	m.files.WithLabelValues("failed").Add(float64(failed))
	m.files.WithLabelValues("insufficient").Add(float64(insufficient))
	m.files.WithLabelValues("complete").Add(float64(len(s.Records) - failed - insufficient))
}
