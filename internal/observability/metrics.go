package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RecognitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "faceattend",
		Name:      "recognitions_total",
		Help:      "Total number of recognition requests by outcome",
	}, []string{"outcome"})

	LivenessRejections = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "faceattend",
		Name:      "liveness_rejections_total",
		Help:      "Total number of faces rejected as spoofed",
	})

	FaceRegistrations = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "faceattend",
		Name:      "face_registrations_total",
		Help:      "Total number of face enrollments",
	})

	CorruptDescriptors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "faceattend",
		Name:      "corrupt_descriptors_total",
		Help:      "Total number of stored descriptors skipped during matching",
	})

	InferenceDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "faceattend",
		Name:      "inference_duration_seconds",
		Help:      "Duration of recognition pipeline stages",
		Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
	}, []string{"stage"})

	DescriptorStoreSize = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "faceattend",
		Name:      "descriptor_store_size",
		Help:      "Number of enrolled face descriptors",
	})

	NotificationsWritten = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "faceattend",
		Name:      "notifications_written_total",
		Help:      "Total number of notifications persisted by the worker",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "faceattend",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	WSConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "faceattend",
		Name:      "ws_connections",
		Help:      "Number of active WebSocket connections",
	})
)
