// Package metrics holds the Prometheus collectors for document export.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Export outcomes.
const (
	OutcomeSuccess   = "success"
	OutcomeInvalid   = "invalid"
	OutcomeFailed    = "failed"
	OutcomeTruncated = "truncated"
)

// Metrics holds export collectors.
//
// Metrics:
//   - export_requests_total{format,outcome} - export attempts by result
//   - export_duration_seconds{format} - render time of successful exports
//   - export_rows_total{format} - data rows rendered
type Metrics struct {
	ExportRequests *prometheus.CounterVec
	ExportDuration *prometheus.HistogramVec
	ExportRows     *prometheus.CounterVec
}

// New registers the export collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		ExportRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "export_requests_total",
				Help: "Total number of report export requests",
			},
			[]string{"format", "outcome"},
		),
		ExportDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "export_duration_seconds",
				Help:    "Time spent rendering an exported report",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format"},
		),
		ExportRows: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "export_rows_total",
				Help: "Total number of data rows rendered into exported reports",
			},
			[]string{"format"},
		),
	}
}

// RecordOutcome counts one export attempt. Safe on a nil receiver.
func (m *Metrics) RecordOutcome(format, outcome string) {
	if m == nil {
		return
	}
	m.ExportRequests.WithLabelValues(format, outcome).Inc()
}

// RecordRender records a completed render. Safe on a nil receiver.
func (m *Metrics) RecordRender(format string, rows int, d time.Duration) {
	if m == nil {
		return
	}
	m.ExportDuration.WithLabelValues(format).Observe(d.Seconds())
	m.ExportRows.WithLabelValues(format).Add(float64(rows))
}
