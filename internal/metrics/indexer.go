package metrics

import (
	"time"

	"github.com/goodnatureofminers/blockinsight7000-da-indexer/internal/da/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	indexerFetchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "blockinsight7000",
		Subsystem: "da_indexer",
		Name:      "fetch_total",
		Help:      "Count of job fetch calls by phase.",
	}, []string{"layer", "phase", "status"})

	indexerFetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "blockinsight7000",
		Subsystem: "da_indexer",
		Name:      "fetch_duration_seconds",
		Help:      "Duration of job fetch calls.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"layer", "phase", "status"})

	indexerFetchJobs = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "blockinsight7000",
		Subsystem: "da_indexer",
		Name:      "fetch_jobs",
		Help:      "Number of jobs returned per fetch call.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 16),
	}, []string{"layer", "phase"})

	indexerJobsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "blockinsight7000",
		Subsystem: "da_indexer",
		Name:      "jobs_total",
		Help:      "Count of finished jobs by final status.",
	}, []string{"layer", "phase", "status"})

	indexerJobDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "blockinsight7000",
		Subsystem: "da_indexer",
		Name:      "job_duration_seconds",
		Help:      "Duration of a job including retries.",
		Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120, 300},
	}, []string{"layer", "phase", "status"})

	indexerJobAttempts = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "blockinsight7000",
		Subsystem: "da_indexer",
		Name:      "job_attempts",
		Help:      "Number of attempts per finished job.",
		Buckets:   []float64{1, 2, 3, 5, 8, 13, 21},
	}, []string{"layer", "phase"})

	indexerRetriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "blockinsight7000",
		Subsystem: "da_indexer",
		Name:      "retries_total",
		Help:      "Count of failed job attempts scheduled for retry.",
	}, []string{"layer", "phase"})

	indexerPendingJobs = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "blockinsight7000",
		Subsystem: "da_indexer",
		Name:      "pending_catch_up_jobs",
		Help:      "Catch-up jobs fetched but not yet scheduled.",
	}, []string{"layer"})

	indexerRetryingJobs = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "blockinsight7000",
		Subsystem: "da_indexer",
		Name:      "retrying_jobs",
		Help:      "Failed jobs waiting for their next attempt.",
	}, []string{"layer"})
)

// Indexer tracks metrics for the DA indexer driver.
type Indexer struct {
	layer string
}

// NewIndexer constructs an Indexer collector for layer.
func NewIndexer(layer model.Layer) *Indexer {
	return &Indexer{layer: layerLabel(layer)}
}

// ObserveFetch records a catch-up or live fetch outcome.
func (m Indexer) ObserveFetch(phase string, err error, jobs int, started time.Time) {
	status := statusLabel(err)
	indexerFetchTotal.WithLabelValues(m.layer, phase, status).Inc()
	indexerFetchDuration.WithLabelValues(m.layer, phase, status).Observe(time.Since(started).Seconds())
	if err == nil {
		indexerFetchJobs.WithLabelValues(m.layer, phase).Observe(float64(jobs))
	}
}

// ObserveJob records a finished job.
func (m Indexer) ObserveJob(phase string, status model.JobRunStatus, attempts uint32, started time.Time) {
	indexerJobsTotal.WithLabelValues(m.layer, phase, string(status)).Inc()
	indexerJobDuration.WithLabelValues(m.layer, phase, string(status)).Observe(time.Since(started).Seconds())
	indexerJobAttempts.WithLabelValues(m.layer, phase).Observe(float64(attempts))
}

// ObserveRetry records a failed attempt.
func (m Indexer) ObserveRetry(phase string, _ error) {
	indexerRetriesTotal.WithLabelValues(m.layer, phase).Inc()
}

// SetPending sets the number of queued catch-up jobs.
func (m Indexer) SetPending(jobs int) {
	indexerPendingJobs.WithLabelValues(m.layer).Set(float64(jobs))
}

// SetRetrying sets the number of jobs waiting for a retry.
func (m Indexer) SetRetrying(jobs int) {
	indexerRetryingJobs.WithLabelValues(m.layer).Set(float64(jobs))
}

func statusLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

func layerLabel(layer model.Layer) string {
	if layer == "" {
		return "unknown"
	}
	return string(layer)
}
