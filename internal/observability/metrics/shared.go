package metrics

import (
	"github.com/grievease/petition-triage/internal/core/domain"
	"github.com/prometheus/client_golang/prometheus"
)

type catalogMetrics struct {
	service    string
	loadsTotal *prometheus.CounterVec
	source     *prometheus.GaugeVec
}

func newCatalogMetrics(service string) *catalogMetrics {
	return &catalogMetrics{
		service: service,
		loadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "catalog",
				Name:      "loads_total",
				Help:      "Catalog load attempts by source and outcome.",
			},
			[]string{"service", "source", "status"},
		),
		source: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "catalog",
				Name:      "active_source",
				Help:      "1 for the source that served the catalog currently in use.",
			},
			[]string{"service", "source"},
		),
	}
}

func (m *catalogMetrics) register(registry *prometheus.Registry) {
	registry.MustRegister(m.loadsTotal, m.source)
}

// ObserveCatalogLoad satisfies usecase.CatalogObserver.
func (m *catalogMetrics) ObserveCatalogLoad(source domain.CatalogSourceKind, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.loadsTotal.WithLabelValues(m.service, string(source), status).Inc()
	if err != nil {
		return
	}
	for _, kind := range []domain.CatalogSourceKind{domain.CatalogFromDatabase, domain.CatalogFromCache, domain.CatalogFromFallback} {
		value := 0.0
		if kind == source {
			value = 1
		}
		m.source.WithLabelValues(m.service, string(kind)).Set(value)
	}
}

type resilienceMetrics struct {
	service      string
	retriesTotal *prometheus.CounterVec
	breakerOpen  *prometheus.GaugeVec
}

func newResilienceMetrics(service string) *resilienceMetrics {
	return &resilienceMetrics{
		service: service,
		retriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "resilience",
				Name:      "retries_total",
				Help:      "Retried outbound operations.",
			},
			[]string{"service", "operation"},
		),
		breakerOpen: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "resilience",
				Name:      "breaker_open",
				Help:      "1 while the circuit breaker for an operation is open.",
			},
			[]string{"service", "operation"},
		),
	}
}

func (m *resilienceMetrics) register(registry *prometheus.Registry) {
	registry.MustRegister(m.retriesTotal, m.breakerOpen)
}

// RecordRetry has the resilience.Hooks.OnRetry signature.
func (m *resilienceMetrics) RecordRetry(operation string, _ int, _ error) {
	m.retriesTotal.WithLabelValues(m.service, operation).Inc()
}

// RecordBreakerState has the resilience.Hooks.OnStateChange signature.
func (m *resilienceMetrics) RecordBreakerState(operation, _, to string) {
	value := 0.0
	if to == "open" {
		value = 1
	}
	m.breakerOpen.WithLabelValues(m.service, operation).Set(value)
}
