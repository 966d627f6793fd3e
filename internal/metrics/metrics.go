package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "pricewatch"

// Scheduler state label values.
var states = []string{"stopped", "cycle_running", "sleeping"}

// Metrics holds every collector on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	SourceFetches *prometheus.CounterVec
	Cycles        *prometheus.CounterVec
	CycleDuration prometheus.Histogram
	LastSuccess   prometheus.Gauge
	State         *prometheus.GaugeVec
	MirrorErrors  *prometheus.CounterVec
}

// New creates the metrics and registers them with Go and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		SourceFetches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "source_fetches_total",
				Help:      "Source fetches by source and result (ok, absent)",
			},
			[]string{"source", "result"},
		),

		Cycles: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cycles_total",
				Help:      "Poll cycles by result (ok, failed)",
			},
			[]string{"result"},
		),

		CycleDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "cycle_duration_seconds",
				Help:      "Duration of a full fetch, merge and write cycle",
				Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 4, 8, 16, 32},
			},
		),

		LastSuccess: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_success_timestamp_seconds",
				Help:      "Unix time of the last successful cycle",
			},
		),

		State: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "state",
				Help:      "1 for the current scheduler state, 0 otherwise",
			},
			[]string{"state"},
		),

		MirrorErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "mirror_errors_total",
				Help:      "Failed writes to mirror sinks",
			},
			[]string{"mirror"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.SourceFetches,
		m.Cycles,
		m.CycleDuration,
		m.LastSuccess,
		m.State,
		m.MirrorErrors,
	)
	m.StateChanged("stopped")
	return m
}

// SourceResult records one fetch outcome.
func (m *Metrics) SourceResult(source string, ok bool) {
	result := "absent"
	if ok {
		result = "ok"
	}
	m.SourceFetches.WithLabelValues(source, result).Inc()
}

// CycleResult records a finished cycle.
func (m *Metrics) CycleResult(d time.Duration, err error) {
	m.CycleDuration.Observe(d.Seconds())
	if err != nil {
		m.Cycles.WithLabelValues("failed").Inc()
		return
	}
	m.Cycles.WithLabelValues("ok").Inc()
	m.LastSuccess.SetToCurrentTime()
}

// StateChanged marks state as current.
func (m *Metrics) StateChanged(state string) {
	for _, s := range states {
		v := 0.0
		if s == state {
			v = 1
		}
		m.State.WithLabelValues(s).Set(v)
	}
}

// MirrorError counts a failed mirror write.
func (m *Metrics) MirrorError(name string) {
	m.MirrorErrors.WithLabelValues(name).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
