// Package metrics records pipeline activity for Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "gpustats"

// Recorder owns the pipeline metrics and their registry.
// A nil *Recorder is valid and records nothing.
type Recorder struct {
	registry *prometheus.Registry

	observations *prometheus.CounterVec
	skips        *prometheus.CounterVec
	updates      *prometheus.CounterVec
	noData       *prometheus.CounterVec
	fetchErrors  *prometheus.CounterVec
	matchMisses  *prometheus.CounterVec
	storeErrors  *prometheus.CounterVec
	runDuration  *prometheus.HistogramVec
	runs         *prometheus.CounterVec
	queued       prometheus.Gauge
}

// NewRecorder creates a recorder backed by its own registry
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		observations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "observations_total",
			Help:      "Accepted listing observations by source.",
		}, []string{"source"}),
		skips: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "skips_total",
			Help:      "Rejected listing candidates by source and reason.",
		}, []string{"source", "reason"}),
		updates: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "updates_total",
			Help:      "Catalog rows written by source.",
		}, []string{"source"}),
		noData: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "no_data_total",
			Help:      "Products left without a value by source.",
		}, []string{"source"}),
		fetchErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_errors_total",
			Help:      "Failed page fetches by source.",
		}, []string{"source"}),
		matchMisses: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "match_misses_total",
			Help:      "Values that did not resolve to a catalog product.",
		}, []string{"source"}),
		storeErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_errors_total",
			Help:      "Failed catalog writes by source.",
		}, []string{"source"}),
		runDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of one source run.",
			Buckets:   []float64{1, 10, 60, 300, 900, 1800, 3600, 7200},
		}, []string{"source"}),
		runs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Finished runs by status.",
		}, []string{"status"}),
		queued: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "runs_queued",
			Help:      "Runs waiting for the worker.",
		}),
	}
}

// Observation counts one accepted candidate
func (r *Recorder) Observation(source string) {
	if r == nil {
		return
	}
	r.observations.WithLabelValues(source).Inc()
}

// Skip counts one rejected candidate
func (r *Recorder) Skip(source, reason string) {
	if r == nil {
		return
	}
	r.skips.WithLabelValues(source, reason).Inc()
}

func (r *Recorder) Update(source string) {
	if r == nil {
		return
	}
	r.updates.WithLabelValues(source).Inc()
}

func (r *Recorder) NoData(source string) {
	if r == nil {
		return
	}
	r.noData.WithLabelValues(source).Inc()
}

func (r *Recorder) FetchError(source string) {
	if r == nil {
		return
	}
	r.fetchErrors.WithLabelValues(source).Inc()
}

func (r *Recorder) MatchMiss(source string) {
	if r == nil {
		return
	}
	r.matchMisses.WithLabelValues(source).Inc()
}

func (r *Recorder) StoreError(source string) {
	if r == nil {
		return
	}
	r.storeErrors.WithLabelValues(source).Inc()
}

// RunFinished records the duration of one source run
func (r *Recorder) RunFinished(source string, d time.Duration) {
	if r == nil {
		return
	}
	r.runDuration.WithLabelValues(source).Observe(d.Seconds())
}

// RunStatus counts a finished queued run
func (r *Recorder) RunStatus(status string) {
	if r == nil {
		return
	}
	r.runs.WithLabelValues(status).Inc()
}

// QueueDepth sets the number of waiting runs
func (r *Recorder) QueueDepth(n int) {
	if r == nil {
		return
	}
	r.queued.Set(float64(n))
}

// Gatherer exposes the registry for tests
func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
