package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	JobsProcessedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "memerecall_jobs_processed_total",
		Help: "Total number of indexing jobs processed, by status",
	}, []string{"status"})

	JobProcessingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "memerecall_job_processing_duration_seconds",
		Help:    "Duration of video indexing pipeline stages",
		Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
	}, []string{"stage"})

	SegmentsDetectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "memerecall_segments_detected_total",
		Help: "Total number of segments detected across all runs",
	})

	FramesSampledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "memerecall_frames_sampled_total",
		Help: "Total number of candidate frames decoded across all runs",
	})

	RecordsKeptTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "memerecall_records_kept_total",
		Help: "Total number of records kept after deduplication",
	})

	RecordsDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "memerecall_records_dropped_total",
		Help: "Total number of records dropped by deduplication",
	})

	CandidateFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "memerecall_candidate_failures_total",
		Help: "Per-candidate recoverable failures, by kind",
	}, []string{"kind"})

	ActiveWorkers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "memerecall_active_workers",
		Help: "Number of currently active workers processing jobs",
	})

	RetryTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "memerecall_retry_total",
		Help: "Total number of retries",
	}, []string{"attempt"})
)
