package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	framesDecoded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ubxctl",
			Subsystem: "frame",
			Name:      "decoded_total",
			Help:      "Frames decoded into records.",
		},
		[]string{"class", "message"},
	)
	framesSkipped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ubxctl",
			Subsystem: "frame",
			Name:      "skipped_total",
			Help:      "Unknown-id frames drained in lenient mode.",
		},
		[]string{"class_id", "msg_id"},
	)
	frameFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ubxctl",
			Subsystem: "frame",
			Name:      "failures_total",
			Help:      "Frame reads that ended in an error.",
		},
		[]string{"reason"},
	)
	decodeDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "ubxctl",
			Subsystem: "frame",
			Name:      "decode_duration_seconds",
			Help:      "Time from sync scan start to decoded record.",
			Buckets:   prometheus.DefBuckets,
		},
	)
	nmeaLines = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "ubxctl",
			Subsystem: "nmea",
			Name:      "lines_total",
			Help:      "NMEA sentences recovered from discarded bytes.",
		},
	)
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ubxctl",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ubxctl",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			framesDecoded, framesSkipped, frameFailures, decodeDuration,
			nmeaLines, httpRequests, httpDuration,
		)
	})
}

func RecordFrameDecoded(class, message string, duration time.Duration) {
	RegisterMetrics()
	framesDecoded.WithLabelValues(class, message).Inc()
	decodeDuration.Observe(duration.Seconds())
}

func RecordFrameSkipped(classID, msgID uint8) {
	RegisterMetrics()
	framesSkipped.WithLabelValues(
		strconv.FormatUint(uint64(classID), 16),
		strconv.FormatUint(uint64(msgID), 16),
	).Inc()
}

func RecordFrameFailure(reason string) {
	RegisterMetrics()
	frameFailures.WithLabelValues(reason).Inc()
}

func RecordNMEALines(n int) {
	RegisterMetrics()
	nmeaLines.Add(float64(n))
}

func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(method, path, statusLabel).Observe(duration.Seconds())
}
