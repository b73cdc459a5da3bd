package providers

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"tvd/internal/structures"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncIngestEvents(action string)
	IncExpiries()
	AddStreamBytes(n int)
	IncActiveStreams()
	DecActiveStreams()
	IncCacheHits()
	IncCacheMisses()
	SetRecordsTotal(count int)
}

type MetricsProvider struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	ingestEvents    *prometheus.CounterVec
	expiriesTotal   prometheus.Counter
	streamBytes     prometheus.Counter
	activeStreams   prometheus.Gauge
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	recordsTotal    prometheus.Gauge
}

func (m *MetricsProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncIngestEvents(action string) {
	m.ingestEvents.WithLabelValues(action).Inc()
}

func (m *MetricsProvider) IncExpiries() {
	m.expiriesTotal.Inc()
}

func (m *MetricsProvider) AddStreamBytes(n int) {
	m.streamBytes.Add(float64(n))
}

func (m *MetricsProvider) IncActiveStreams() {
	m.activeStreams.Inc()
}

func (m *MetricsProvider) DecActiveStreams() {
	m.activeStreams.Dec()
}

func (m *MetricsProvider) IncCacheHits() {
	m.cacheHits.Inc()
}

func (m *MetricsProvider) IncCacheMisses() {
	m.cacheMisses.Inc()
}

func (m *MetricsProvider) SetRecordsTotal(count int) {
	m.recordsTotal.Set(float64(count))
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

func NewMetricsProvider(conf *structures.Config) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	return &MetricsProvider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "tvd_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tvd_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		ingestEvents: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "tvd_ingest_events_total",
			Help: "Total number of classified upstream events",
		}, []string{"action"}),

		expiriesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tvd_expiries_total",
			Help: "Total number of expired video records",
		}),

		streamBytes: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tvd_stream_bytes_total",
			Help: "Total number of bytes served by the stream relay",
		}),

		activeStreams: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "tvd_active_streams",
			Help: "Number of in-progress stream requests",
		}),

		cacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tvd_cache_hits_total",
			Help: "Total number of descriptor cache hits",
		}),

		cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tvd_cache_misses_total",
			Help: "Total number of descriptor cache misses",
		}),

		recordsTotal: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "tvd_records_total",
			Help: "Current number of live video records",
		}),
	}
}

// noopMetrics is a no-op implementation for when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncIngestEvents(_ string)                         {}
func (n *noopMetrics) IncExpiries()                                     {}
func (n *noopMetrics) AddStreamBytes(_ int)                             {}
func (n *noopMetrics) IncActiveStreams()                                {}
func (n *noopMetrics) DecActiveStreams()                                {}
func (n *noopMetrics) IncCacheHits()                                    {}
func (n *noopMetrics) IncCacheMisses()                                  {}
func (n *noopMetrics) SetRecordsTotal(_ int)                            {}
