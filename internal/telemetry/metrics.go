package telemetry

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/five82/aperture/internal/fetchsync"
)

var _ fetchsync.Observer = (*Metrics)(nil)

// Metrics records sync engine activity as Prometheus metrics. It implements
// fetchsync.Observer and keeps its collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	reads     *prometheus.CounterVec   // resource,result
	writes    *prometheus.CounterVec   // resource,result
	discarded *prometheus.CounterVec   // resource,op
	edits     *prometheus.CounterVec   // resource
	inflight  *prometheus.GaugeVec     // resource,op
	duration  *prometheus.HistogramVec // resource,op
}

var requestBuckets = []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5}

// NewMetrics creates the collectors and registers them along with the Go
// runtime and process collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		reads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "aperture_sync_reads_total",
			Help: "Completed reads by result.",
		}, []string{"resource", "result"}),
		writes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "aperture_sync_writes_total",
			Help: "Completed writes by result.",
		}, []string{"resource", "result"}),
		discarded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "aperture_sync_discarded_total",
			Help: "Responses dropped because a newer request or edit superseded them.",
		}, []string{"resource", "op"}),
		edits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "aperture_sync_edits_total",
			Help: "Local edits submitted.",
		}, []string{"resource"}),
		inflight: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "aperture_sync_inflight",
			Help: "Requests started and not yet finished or discarded.",
		}, []string{"resource", "op"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "aperture_sync_request_seconds",
			Help:    "Round-trip time of completed requests.",
			Buckets: requestBuckets,
		}, []string{"resource", "op"}),
	}
	m.registry.MustRegister(
		m.reads, m.writes, m.discarded, m.edits, m.inflight, m.duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the metrics in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Started(resource string, op fetchsync.Op) {
	m.inflight.WithLabelValues(resource, string(op)).Inc()
}

func (m *Metrics) Finished(resource string, op fetchsync.Op, elapsed time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.inflight.WithLabelValues(resource, string(op)).Dec()
	m.duration.WithLabelValues(resource, string(op)).Observe(elapsed.Seconds())
	switch op {
	case fetchsync.OpWrite:
		m.writes.WithLabelValues(resource, result).Inc()
	default:
		m.reads.WithLabelValues(resource, result).Inc()
	}
}

func (m *Metrics) Discarded(resource string, op fetchsync.Op) {
	m.inflight.WithLabelValues(resource, string(op)).Dec()
	m.discarded.WithLabelValues(resource, string(op)).Inc()
}

func (m *Metrics) Edited(resource string) {
	m.edits.WithLabelValues(resource).Inc()
}

// Serve starts an HTTP server exposing Handler at /metrics. The channel
// receives the server's exit error, nil after Shutdown.
func (m *Metrics) Serve(addr string) (*http.Server, <-chan error) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		err := srv.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		errc <- err
	}()
	return srv, errc
}
