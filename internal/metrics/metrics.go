package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "hypotest"

var (
	// testRuns counts test executions.
	// Labels: test (catalog name), method (display name of the chosen method, empty on error), status (ok, error)
	testRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "engine",
		Name:      "runs_total",
		Help:      "Hypothesis test runs by test, method and status",
	}, []string{"test", "method", "status"})

	// testDuration measures the time from parsed upload to finished result.
	// Labels: test
	testDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "engine",
		Name:      "run_duration_seconds",
		Help:      "Hypothesis test run latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"test"})

	// uploadBytes observes the size of accepted uploads
	uploadBytes = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "upload_bytes",
		Help:      "Size of uploaded spreadsheets in bytes",
		Buckets:   prometheus.ExponentialBuckets(1024, 4, 9),
	})

	// uploadsRejected counts uploads turned away before a test ran.
	// Labels: reason (rate_limited, too_large, bad_type, bad_form)
	uploadsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "uploads_rejected_total",
		Help:      "Uploads rejected before analysis",
	}, []string{"reason"})

	// downloads counts served result downloads.
	// Labels: kind (single, zip), status (ok, missing)
	downloads = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "results",
		Name:      "downloads_total",
		Help:      "Result downloads by kind and status",
	}, []string{"kind", "status"})

	// cleanupRemoved counts expired result files and metadata entries removed
	cleanupRemoved = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "results",
		Name:      "cleanup_removed_total",
		Help:      "Expired result artifacts removed by the cleanup loop",
	})

	// cleanupErrors counts failed cleanup passes
	cleanupErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "results",
		Name:      "cleanup_errors_total",
		Help:      "Cleanup passes that failed",
	})
)

// RecordTestRun records one finished test run
func RecordTestRun(test, method string, durationSec float64, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	testRuns.WithLabelValues(test, method, status).Inc()
	testDuration.WithLabelValues(test).Observe(durationSec)
}

// RecordUpload records the size of an accepted upload
func RecordUpload(size int64) {
	uploadBytes.Observe(float64(size))
}

// RecordUploadRejected records an upload refused for reason
func RecordUploadRejected(reason string) {
	uploadsRejected.WithLabelValues(reason).Inc()
}

// RecordDownload records a download attempt
func RecordDownload(kind string, found bool) {
	status := "ok"
	if !found {
		status = "missing"
	}
	downloads.WithLabelValues(kind, status).Inc()
}

// RecordCleanup records the outcome of one cleanup pass
func RecordCleanup(removed int, err error) {
	if err != nil {
		cleanupErrors.Inc()
	}
	cleanupRemoved.Add(float64(removed))
}
