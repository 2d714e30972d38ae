package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the scheduler.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Observer
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter

	batchesGenerated  *prometheus.CounterVec
	acceptOutcomes    *prometheus.CounterVec
	candidatesExpired prometheus.Counter
	batchesRefreshed  prometheus.Counter
	sweepDuration     prometheus.Observer
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for cache operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	batchesGenerated := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rotation_batches_generated_total",
		Help: "Batches generated, labelled by outcome",
	}, []string{"outcome"})

	acceptOutcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rotation_accept_outcomes_total",
		Help: "Accept attempts, labelled by result",
	}, []string{"result"})

	candidatesExpired := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rotation_candidates_expired_total",
		Help: "Candidates expired by the sweep",
	})

	batchesRefreshed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rotation_batches_auto_refreshed_total",
		Help: "Exhausted batches regenerated by the sweep",
	})

	sweepDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "rotation_sweep_duration_seconds",
		Help:    "Wall-clock duration of expiry sweeps",
		Buckets: prometheus.DefBuckets,
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLatency, cacheHits, cacheMisses,
		batchesGenerated, acceptOutcomes, candidatesExpired, batchesRefreshed, sweepDuration, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:          registry,
		handler:           handler,
		requestDuration:   requestDuration,
		requestTotal:      requestTotal,
		cacheLatency:      cacheLatency,
		cacheHits:         cacheHits,
		cacheMisses:       cacheMisses,
		batchesGenerated:  batchesGenerated,
		acceptOutcomes:    acceptOutcomes,
		candidatesExpired: candidatesExpired,
		batchesRefreshed:  batchesRefreshed,
		sweepDuration:     sweepDuration,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordCacheOperation records cache hit/miss metrics.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	if m.cacheLatency != nil {
		m.cacheLatency.Observe(duration.Seconds())
	}
	if hit {
		m.cacheHits.Inc()
	} else {
		m.cacheMisses.Inc()
	}
}

// RecordBatchGenerated counts a generation attempt by outcome.
func (m *MetricsService) RecordBatchGenerated(outcome string) {
	if m == nil {
		return
	}
	m.batchesGenerated.WithLabelValues(outcome).Inc()
}

// RecordAcceptOutcome counts an accept attempt by result.
func (m *MetricsService) RecordAcceptOutcome(result string) {
	if m == nil {
		return
	}
	m.acceptOutcomes.WithLabelValues(result).Inc()
}

// RecordSweep records one sweep run.
func (m *MetricsService) RecordSweep(expired int64, refreshed int, duration time.Duration) {
	if m == nil {
		return
	}
	m.candidatesExpired.Add(float64(expired))
	m.batchesRefreshed.Add(float64(refreshed))
	m.sweepDuration.Observe(duration.Seconds())
}
