// Package metrics holds the Prometheus collectors exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ResumesProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "resumes_processed_total",
		Help: "Total resumes processed",
	}, []string{"status"})

	ProcessingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "resume_processing_duration_seconds",
		Help:    "Time spent processing one resume",
		Buckets: prometheus.ExponentialBuckets(0.5, 2, 8),
	})

	ActiveJobs = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "active_processing_jobs",
		Help: "Resume batches currently being processed",
	})

	Classification = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "resume_classification",
		Help: "Resume classification distribution",
	}, []string{"category", "level"})

	InterviewsCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "interviews_completed_total",
		Help: "Interviews analysed, by transcript source",
	}, []string{"source"})

	RecordingBytes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "recording_bytes_uploaded_total",
		Help: "Bytes of interview recordings received",
	})
)
