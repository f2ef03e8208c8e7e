package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/narora21/chrono-patient-uploader/internal/core/domain"
)

// BatchMetrics implements ports.BatchObserver on a private Prometheus
// registry.
type BatchMetrics struct {
	registry *prometheus.Registry

	filesTotal  *prometheus.CounterVec
	filesInRun  prometheus.Gauge
	runDuration prometheus.Histogram
	runsTotal   *prometheus.CounterVec
}

func NewBatchMetrics(service string) *BatchMetrics {
	registry := prometheus.NewRegistry()

	filesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "chrono_uploader",
			Name:      "files_total",
			Help:      "Total processed files by terminal status.",
		},
		[]string{"service", "status"},
	)
	filesInRun := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "chrono_uploader",
			Name:      "files_in_run",
			Help:      "Files processed so far in the current run.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	runDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "chrono_uploader",
			Name:      "run_duration_seconds",
			Help:      "Wall-clock duration of a full batch run.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800, 3600},
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	runsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "chrono_uploader",
			Name:      "runs_total",
			Help:      "Total completed runs by outcome.",
		},
		[]string{"service", "outcome"},
	)

	registry.MustRegister(filesTotal, filesInRun, runDuration, runsTotal)

	return &BatchMetrics{
		registry:    registry,
		filesTotal:  filesTotal,
		filesInRun:  filesInRun,
		runDuration: runDuration,
		runsTotal:   runsTotal,
	}
}

func (m *BatchMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *BatchMetrics) FileProcessed(result domain.FileResult) {
	m.filesTotal.WithLabelValues("uploader", string(result.Status)).Inc()
	m.filesInRun.Inc()
}

func (m *BatchMetrics) RunCompleted(report *domain.BatchReport, duration time.Duration) {
	outcome := "clean"
	switch {
	case report.AppLimit:
		outcome = "app_limit"
	case len(report.Failed) > 0 || len(report.RateLimited) > 0:
		outcome = "partial"
	}
	m.runsTotal.WithLabelValues("uploader", outcome).Inc()
	m.runDuration.Observe(duration.Seconds())
	m.filesInRun.Set(0)
}
