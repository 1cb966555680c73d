// Package metrics defines the Prometheus collectors brewdash exports when
// the metrics listener is enabled.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Stream metrics
	StreamConnected = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "brewdash_stream_connected",
			Help: "Whether the telemetry stream is connected (1 = connected)",
		},
	)

	StreamMessagesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "brewdash_stream_messages_total",
			Help: "Total number of stream messages received",
		},
	)

	StreamDecodeErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "brewdash_stream_decode_errors_total",
			Help: "Total number of stream messages discarded as malformed",
		},
	)

	StreamReconnectAttemptsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "brewdash_stream_reconnect_attempts_total",
			Help: "Total number of automatic reconnect attempts",
		},
	)

	// Telemetry metrics
	TelemetrySamplesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "brewdash_telemetry_samples_total",
			Help: "Total number of samples appended to the chart series",
		},
	)

	TelemetrySeriesLength = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "brewdash_telemetry_series_length",
			Help: "Current number of points in every chart series",
		},
	)

	MachineReading = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "brewdash_machine_reading",
			Help: "Latest scalar reading reported by the controller",
		},
		[]string{"field"},
	)

	// Command metrics
	CommandSubmissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "brewdash_command_submissions_total",
			Help: "Total number of outbound parameter submissions by result",
		},
		[]string{"parameter", "result"},
	)

	CommandDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "brewdash_command_duration_seconds",
			Help:    "Round-trip time of outbound parameter submissions",
			Buckets: []float64{.05, .1, .25, .5, 1, 2, 4, 8},
		},
		[]string{"parameter"},
	)
)

func init() {
	prometheus.MustRegister(StreamConnected)
	prometheus.MustRegister(StreamMessagesTotal)
	prometheus.MustRegister(StreamDecodeErrorsTotal)
	prometheus.MustRegister(StreamReconnectAttemptsTotal)
	prometheus.MustRegister(TelemetrySamplesTotal)
	prometheus.MustRegister(TelemetrySeriesLength)
	prometheus.MustRegister(MachineReading)
	prometheus.MustRegister(CommandSubmissionsTotal)
	prometheus.MustRegister(CommandDuration)
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer measures an operation for a histogram.
type Timer struct {
	start time.Time
}

func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

func (t *Timer) ObserveDurationVec(vec *prometheus.HistogramVec, labels ...string) {
	vec.WithLabelValues(labels...).Observe(t.Duration().Seconds())
}

// BoolGauge converts a flag for a 0/1 gauge.
func BoolGauge(v bool) float64 {
	if v {
		return 1
	}

	return 0
}
