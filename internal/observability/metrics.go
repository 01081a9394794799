package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for recipe operations.
const (
	OutcomeOK       = "ok"
	OutcomeInvalid  = "invalid"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// Metrics collects counters for recipe operations.
type Metrics struct {
	operations *prometheus.CounterVec
	stored     prometheus.Gauge
	limited    *prometheus.CounterVec
}

func NewMetrics(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "recipes_operations_total",
		Help: "Total recipe operations by operation and outcome.",
	}, []string{"operation", "outcome"})
	stored := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "recipes_stored",
		Help: "Number of recipes currently held in the collection.",
	})
	limited := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "recipes_rate_limited_total",
		Help: "Requests rejected by the rate limiter, by route.",
	}, []string{"route"})

	operations = registerCounterVec(registerer, operations)
	limited = registerCounterVec(registerer, limited)
	stored = registerGauge(registerer, stored)

	return &Metrics{
		operations: operations,
		stored:     stored,
		limited:    limited,
	}
}

// MetricsHandler serves the given gatherer, or the default registry when nil.
func MetricsHandler(gatherer prometheus.Gatherer) http.Handler {
	if gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) IncOperation(operation, outcome string) {
	if m == nil || m.operations == nil {
		return
	}
	m.operations.WithLabelValues(operation, outcome).Inc()
}

func (m *Metrics) SetStored(n int) {
	if m == nil || m.stored == nil {
		return
	}
	m.stored.Set(float64(n))
}

func (m *Metrics) IncRateLimited(route string) {
	if m == nil || m.limited == nil {
		return
	}
	m.limited.WithLabelValues(route).Inc()
}

func registerCounterVec(registerer prometheus.Registerer, counter *prometheus.CounterVec) *prometheus.CounterVec {
	if err := registerer.Register(counter); err != nil {
		if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := already.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing
			}
		}
	}
	return counter
}

func registerGauge(registerer prometheus.Registerer, gauge prometheus.Gauge) prometheus.Gauge {
	if err := registerer.Register(gauge); err != nil {
		if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := already.ExistingCollector.(prometheus.Gauge); ok {
				return existing
			}
		}
	}
	return gauge
}
