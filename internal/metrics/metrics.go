// Package metrics holds the Prometheus collectors of the import pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "ledgerimport"

type Metrics struct {
	uploads        *prometheus.CounterVec
	previewRows    *prometheus.CounterVec
	committedRows  prometheus.Counter
	batches        prometheus.Counter
	undos          *prometheus.CounterVec
	commitDuration prometheus.Histogram
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		uploads: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_total",
			Help:      "Statement uploads by detected format and outcome.",
		}, []string{"format", "outcome"}),
		previewRows: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "preview_rows_total",
			Help:      "Preview rows built, by status.",
		}, []string{"status"}),
		committedRows: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "committed_rows_total",
			Help:      "Transactions created by committed imports.",
		}),
		batches: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batches_total",
			Help:      "Import batches committed.",
		}),
		undos: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "undos_total",
			Help:      "Undo requests by outcome.",
		}, []string{"outcome"}),
		commitDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "commit_duration_seconds",
			Help:      "Time spent committing an import batch.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}

	return "ok"
}

func (m *Metrics) Upload(format string, err error) {
	if format == "" {
		format = "unknown"
	}

	m.uploads.WithLabelValues(format, outcome(err)).Inc()
}

// PreviewRows adds one preview's status counts.
func (m *Metrics) PreviewRows(counts map[string]int) {
	for status, n := range counts {
		m.previewRows.WithLabelValues(status).Add(float64(n))
	}
}

func (m *Metrics) Commit(rows int, started time.Time) {
	m.commitDuration.Observe(time.Since(started).Seconds())
	m.committedRows.Add(float64(rows))
	m.batches.Inc()
}

// Undo records an undo; empty means there was no batch to undo.
func (m *Metrics) Undo(empty bool, err error) {
	switch {
	case err != nil:
		m.undos.WithLabelValues("error").Inc()
	case empty:
		m.undos.WithLabelValues("empty").Inc()
	default:
		m.undos.WithLabelValues("ok").Inc()
	}
}
