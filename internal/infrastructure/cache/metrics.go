package cache

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Result labels for cache_requests_total.
const (
	ResultHit       = "hit"
	ResultMiss      = "miss"
	ResultCoalesced = "coalesced"
	ResultStale     = "stale"
	ResultError     = "error"
	ResultTimeout   = "timeout"
)

// Metrics records cache cell activity. A nil *Metrics is valid and records nothing.
type Metrics struct {
	requests      *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec
}

// NewMetrics creates the cache collectors and registers them with reg.
// Collectors that are already registered are reused.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cache_requests_total",
		Help: "Cache cell requests by outcome.",
	}, []string{"cell", "result"})
	fetchDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cache_fetch_duration_seconds",
		Help:    "Duration of cache cell fetches.",
		Buckets: prometheus.DefBuckets,
	}, []string{"cell"})

	var err error
	if requests, err = register(reg, requests); err != nil {
		return nil, err
	}
	if fetchDuration, err = register(reg, fetchDuration); err != nil {
		return nil, err
	}
	return &Metrics{requests: requests, fetchDuration: fetchDuration}, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func (m *Metrics) request(cell, result string) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(cell, result).Inc()
}

func (m *Metrics) fetched(cell string, d time.Duration) {
	if m == nil {
		return
	}
	m.fetchDuration.WithLabelValues(cell).Observe(d.Seconds())
}
