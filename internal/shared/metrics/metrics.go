package metrics

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Entry outcomes recorded per archive entry.
const (
	EntryOK                = "ok"
	EntryFetchFailed       = "fetch_failed"
	EntryCredentialExpired = "credential_expired"
	EntryMissingStorage    = "missing_storage"
	EntryTooLarge          = "too_large"
)

// ExportMetrics records procedure export outcomes.
type ExportMetrics struct {
	exports  *prometheus.CounterVec
	entries  *prometheus.CounterVec
	duration *prometheus.HistogramVec
	jobs     *prometheus.CounterVec
}

// NewExportMetrics registers the export metrics on the provided registerer.
func NewExportMetrics(reg prometheus.Registerer) *ExportMetrics {
	if reg == nil {
		return &ExportMetrics{}
	}
	exports := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "procedure_exports_total",
		Help: "Procedure exports by delivery mode and outcome.",
	}, []string{"mode", "outcome"})
	entries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "procedure_export_entries_total",
		Help: "Archive entries written by outcome.",
	}, []string{"result"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "procedure_export_duration_seconds",
		Help:    "Time to assemble a procedure archive.",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60, 120},
	}, []string{"mode"})
	jobs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "procedure_export_jobs_total",
		Help: "Queued email export jobs handled by the worker, by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(exports, entries, duration, jobs)
	return &ExportMetrics{exports: exports, entries: entries, duration: duration, jobs: jobs}
}

// IncExport counts a finished export attempt.
func (m *ExportMetrics) IncExport(mode, outcome string) {
	if m == nil || m.exports == nil {
		return
	}
	m.exports.WithLabelValues(mode, outcome).Inc()
}

// IncEntry counts a written archive entry.
func (m *ExportMetrics) IncEntry(result string) {
	if m == nil || m.entries == nil {
		return
	}
	m.entries.WithLabelValues(result).Inc()
}

// ObserveDuration records how long an archive took to assemble.
func (m *ExportMetrics) ObserveDuration(mode string, d time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(mode).Observe(d.Seconds())
}

// IncJob counts a queued export job by outcome.
func (m *ExportMetrics) IncJob(outcome string) {
	if m == nil || m.jobs == nil {
		return
	}
	m.jobs.WithLabelValues(outcome).Inc()
}

// Handler exposes the registry in Prometheus text format.
func Handler(gatherer prometheus.Gatherer) gin.HandlerFunc {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	h := promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
