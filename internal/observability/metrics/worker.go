package metrics

import (
	"net/http"
	"time"

	"github.com/grievease/petition-triage/internal/core/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type WorkerMetrics struct {
	registry *prometheus.Registry

	eventTotal    *prometheus.CounterVec
	eventDuration *prometheus.HistogramVec
	eventInFlight prometheus.Gauge
	eventLag      *prometheus.HistogramVec
	jobTotal      *prometheus.CounterVec

	*catalogMetrics
	*resilienceMetrics
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	eventTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "events_total",
			Help:      "Handled petition events by type and status.",
		},
		[]string{"service", "type", "status"},
	)
	eventDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "event_duration_seconds",
			Help:      "Petition event handling duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "type"},
	)
	eventInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   "worker",
			Name:        "events_in_flight",
			Help:        "Number of petition events being handled.",
			ConstLabels: prometheus.Labels{"service": service},
		},
	)
	eventLag := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "event_lag_seconds",
			Help:      "Delay between a classification and the worker picking up its event.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"service"},
	)
	jobTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "scheduled_jobs_total",
			Help:      "Scheduled job runs by name and status.",
		},
		[]string{"service", "job", "status"},
	)
	catalog := newCatalogMetrics(service)
	resilience := newResilienceMetrics(service)

	registry.MustRegister(eventTotal, eventDuration, eventInFlight, eventLag, jobTotal)
	catalog.register(registry)
	resilience.register(registry)

	return &WorkerMetrics{
		registry:          registry,
		eventTotal:        eventTotal,
		eventDuration:     eventDuration,
		eventInFlight:     eventInFlight,
		eventLag:          eventLag,
		jobTotal:          jobTotal,
		catalogMetrics:    catalog,
		resilienceMetrics: resilience,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) StartEvent() {
	m.eventInFlight.Inc()
}

func (m *WorkerMetrics) FinishEvent(service string, eventType domain.PetitionEventType, duration time.Duration, err error) {
	m.eventInFlight.Dec()

	status := "success"
	if err != nil {
		status = "error"
	}
	m.eventTotal.WithLabelValues(service, string(eventType), status).Inc()
	m.eventDuration.WithLabelValues(service, string(eventType)).Observe(duration.Seconds())
}

func (m *WorkerMetrics) ObserveEventLag(service string, lag time.Duration) {
	if lag < 0 {
		return
	}
	m.eventLag.WithLabelValues(service).Observe(lag.Seconds())
}

func (m *WorkerMetrics) RecordJob(service, job string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.jobTotal.WithLabelValues(service, job, status).Inc()
}
