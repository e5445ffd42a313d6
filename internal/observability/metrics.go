package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/riskibarqy/roster-sync/internal/domain/identity"
	"github.com/riskibarqy/roster-sync/internal/domain/rostersync"
	"github.com/riskibarqy/roster-sync/internal/platform/resilience"
)

const metricsNamespace = "roster_sync"

const (
	outcomeSynced         = "synced"
	outcomeShortCircuited = "short_circuited"
	outcomeFailed         = "failed"
)

// SyncMetrics exports pass and resolver metrics to Prometheus. It satisfies
// usecase.SyncMetrics.
type SyncMetrics struct {
	registry *prometheus.Registry

	passesTotal        *prometheus.CounterVec
	passDuration       *prometheus.HistogramVec
	eventsInserted     prometheus.Counter
	conflictsTotal     prometheus.Counter
	resolutionsTotal   *prometheus.CounterVec
	lastSuccess        *prometheus.GaugeVec
	breakerState       *prometheus.GaugeVec
	breakerTransitions *prometheus.CounterVec
}

// NewSyncMetrics registers its collectors, plus the Go and process
// collectors, on a private registry.
func NewSyncMetrics() *SyncMetrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &SyncMetrics{
		registry: registry,
		passesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "passes_total",
			Help:      "Sync passes by outcome.",
		}, []string{"outcome"}),
		passDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "pass_duration_seconds",
			Help:      "Sync pass duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),
		eventsInserted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "events_inserted_total",
			Help:      "Ownership events newly inserted.",
		}),
		conflictsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "ownership_conflicts_total",
			Help:      "Players reported on more than one team in a fetched roster.",
		}),
		resolutionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "identity_resolutions_total",
			Help:      "External id resolutions by platform and source.",
		}, []string{"platform", "source"}),
		lastSuccess: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful pass per league.",
		}, []string{"league_id"}),
		breakerState: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "provider_circuit_state",
			Help:      "1 for the current circuit breaker state of a provider.",
		}, []string{"provider", "state"}),
		breakerTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "provider_circuit_transitions_total",
			Help:      "Circuit breaker transitions by provider and target state.",
		}, []string{"provider", "state"}),
	}
}

func (m *SyncMetrics) ObservePass(result rostersync.Result) {
	outcome := outcomeFailed
	switch {
	case result.Success && result.ShortCircuited:
		outcome = outcomeShortCircuited
	case result.Success:
		outcome = outcomeSynced
	}

	m.passesTotal.WithLabelValues(outcome).Inc()
	m.passDuration.WithLabelValues(outcome).Observe(result.Duration.Seconds())
	if result.EventsInserted > 0 {
		m.eventsInserted.Add(float64(result.EventsInserted))
	}
	if result.Conflicts > 0 {
		m.conflictsTotal.Add(float64(result.Conflicts))
	}
	if result.Success && result.LeagueID != "" {
		m.lastSuccess.WithLabelValues(result.LeagueID).SetToCurrentTime()
	}
}

func (m *SyncMetrics) ObserveResolution(platform string, source identity.Source) {
	m.resolutionsTotal.WithLabelValues(platform, string(source)).Inc()
}

// TrackCircuitBreaker mirrors breaker transitions for provider. A nil breaker is ignored.
func (m *SyncMetrics) TrackCircuitBreaker(provider string, breaker *resilience.CircuitBreaker) {
	if breaker == nil {
		return
	}
	m.setBreakerState(provider, breaker.State())
	breaker.OnStateChange(func(_, to resilience.CircuitState) {
		m.breakerTransitions.WithLabelValues(provider, string(to)).Inc()
		m.setBreakerState(provider, to)
	})
}

func (m *SyncMetrics) setBreakerState(provider string, current resilience.CircuitState) {
	for _, state := range []resilience.CircuitState{
		resilience.CircuitStateClosed,
		resilience.CircuitStateOpen,
		resilience.CircuitStateHalfOpen,
	} {
		value := 0.0
		if state == current {
			value = 1
		}
		m.breakerState.WithLabelValues(provider, string(state)).Set(value)
	}
}

func (m *SyncMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *SyncMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
