// Package metrics exposes remote call and cache counters to prometheus.
package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the roster metrics and the registry they live in
type Collector struct {
	registry       *prometheus.Registry
	remoteRequests *prometheus.CounterVec
	remoteDuration *prometheus.HistogramVec
	cacheLookups   *prometheus.CounterVec
	records        prometheus.Gauge
}

// NewCollector creates a collector registered on reg. A nil reg gets a fresh registry.
func NewCollector(reg *prometheus.Registry) (*Collector, error) {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	c := &Collector{
		registry: reg,
		remoteRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "roster",
				Name:      "remote_requests_total",
				Help:      "Total number of list service requests.",
			},
			[]string{"op", "outcome"},
		),
		remoteDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "roster",
				Name:      "remote_request_duration_seconds",
				Help:      "Latency of list service requests.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"op"},
		),
		cacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "roster",
				Name:      "cache_lookups_total",
				Help:      "Read cache lookups by result (hit, miss, bypass).",
			},
			[]string{"result"},
		),
		records: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "roster",
			Name:      "displayed_records",
			Help:      "Number of records currently displayed.",
		}),
	}

	for _, col := range []prometheus.Collector{c.remoteRequests, c.remoteDuration, c.cacheLookups, c.records} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// ObserveRemote records one list service call
func (c *Collector) ObserveRemote(op, outcome string, elapsed time.Duration) {
	c.remoteRequests.WithLabelValues(op, outcome).Inc()
	c.remoteDuration.WithLabelValues(op).Observe(elapsed.Seconds())
}

// ObserveCache records one cache lookup
func (c *Collector) ObserveCache(result string) {
	c.cacheLookups.WithLabelValues(result).Inc()
}

// SetRecords tracks the size of the displayed snapshot
func (c *Collector) SetRecords(n int) {
	c.records.Set(float64(n))
}

// Handler returns the /metrics handler for this collector's registry
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled
func (c *Collector) Serve(ctx context.Context, addr string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("serving metrics", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
