package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// Metrics holds the Prometheus collectors for the API. Each Metrics owns its
// registry so servers in tests do not collide.
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal    *prometheus.CounterVec
	uploadsTotal     *prometheus.CounterVec
	uploadBytesTotal prometheus.Counter
	decodeDuration   *prometheus.HistogramVec
	diagnosticsTotal *prometheus.CounterVec
	storedDatabases  prometheus.Gauge
	storedBytes      prometheus.Gauge
}

// NewMetrics creates and registers all collectors on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "palmdb_http_requests_total",
				Help: "Total number of API requests by route and status code",
			},
			[]string{"route", "status_code"},
		),
		uploadsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "palmdb_uploads_total",
				Help: "Total number of uploaded containers",
			},
			[]string{"status"},
		),
		uploadBytesTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "palmdb_upload_bytes_total",
				Help: "Total bytes of uploaded containers",
			},
		),
		decodeDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "palmdb_codec_duration_seconds",
				Help:    "Time spent decoding or encoding containers",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
			},
			[]string{"operation"},
		),
		diagnosticsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "palmdb_decode_diagnostics_total",
				Help: "Regions skipped during decode, by region",
			},
			[]string{"region"},
		),
		storedDatabases: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "palmdb_stored_databases",
				Help: "Number of containers held in memory",
			},
		),
		storedBytes: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "palmdb_stored_bytes",
				Help: "Total size of containers held in memory",
			},
		),
	}
}

// RecordRequest counts one handled request.
func (m *Metrics) RecordRequest(route string, statusCode int) {
	m.requestsTotal.WithLabelValues(route, strconv.Itoa(statusCode)).Inc()
}

// RecordUpload counts an upload attempt of size bytes.
func (m *Metrics) RecordUpload(size int, success bool) {
	status := statusSuccess
	if !success {
		status = statusError
	}
	m.uploadsTotal.WithLabelValues(status).Inc()
	m.uploadBytesTotal.Add(float64(size))
}

// ObserveCodec records how long a decode or encode took.
func (m *Metrics) ObserveCodec(operation string, d time.Duration) {
	m.decodeDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// RecordDiagnostic counts a region skipped during decode.
func (m *Metrics) RecordDiagnostic(region string) {
	m.diagnosticsTotal.WithLabelValues(region).Inc()
}

// UpdateStore publishes the store's current size.
func (m *Metrics) UpdateStore(count int, bytes int64) {
	m.storedDatabases.Set(float64(count))
	m.storedBytes.Set(float64(bytes))
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
