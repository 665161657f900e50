package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeSuccess = "success"
	OutcomeSkipped = "skipped"
	OutcomeFailure = "failure"
)

var (
	Invocations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vault",
		Name:      "invocations_total",
		Help:      "Handler invocations by outcome",
	}, []string{"handler", "outcome"})

	RecognitionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "vault",
		Name:      "recognition_duration_seconds",
		Help:      "Duration of recognition service calls",
		Buckets:   prometheus.ExponentialBuckets(0.025, 2, 10),
	}, []string{"operation"})

	RecordsWritten = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vault",
		Name:      "records_written_total",
		Help:      "Records persisted per table",
	}, []string{"table"})

	AccessVerdicts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vault",
		Name:      "access_verdicts_total",
		Help:      "Access log verdicts by status",
	}, []string{"status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "vault",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	WSConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "vault",
		Name:      "ws_connections",
		Help:      "Number of active WebSocket connections",
	})
)
