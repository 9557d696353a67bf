/*
Copyright © 2026 Acronis International GmbH.

Released under MIT license.
*/

package admission

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricsLabelReason    = "reason"
	metricsLabelCancelled = "cancelled"
)

// DefaultWorkDurationBuckets is the default buckets for the admission_work_duration_seconds histogram.
var DefaultWorkDurationBuckets = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

// PrometheusMetricsOpts represents options for PrometheusMetrics.
type PrometheusMetricsOpts struct {
	// Namespace is a namespace for metrics. It will be prepended to all metric names.
	Namespace string

	// DurationBuckets is a list of buckets for the work duration histogram.
	// DefaultWorkDurationBuckets is used if empty.
	DurationBuckets []float64

	// ConstLabels is a set of labels that will be applied to all metrics.
	ConstLabels prometheus.Labels

	// CurriedLabelNames is a list of label names that will be curried with the provided labels.
	// See PrometheusMetrics.MustCurryWith method for more details.
	CurriedLabelNames []string
}

// PrometheusMetrics is an Observer that collects Prometheus metrics about admission attempts.
type PrometheusMetrics struct {
	StartedTotal        *prometheus.CounterVec
	DeniedTotal         *prometheus.CounterVec
	CompletedTotal      *prometheus.CounterVec
	InternalErrorsTotal *prometheus.CounterVec
	WorkDuration        *prometheus.HistogramVec
}

var _ Observer = (*PrometheusMetrics)(nil)

// NewPrometheusMetrics creates a new instance of PrometheusMetrics with default options.
func NewPrometheusMetrics() *PrometheusMetrics {
	return NewPrometheusMetricsWithOpts(PrometheusMetricsOpts{})
}

// NewPrometheusMetricsWithOpts creates a new instance of PrometheusMetrics with the provided options.
func NewPrometheusMetricsWithOpts(opts PrometheusMetricsOpts) *PrometheusMetrics {
	durationBuckets := opts.DurationBuckets
	if len(durationBuckets) == 0 {
		durationBuckets = DefaultWorkDurationBuckets
	}

	startedTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   opts.Namespace,
			Name:        "admission_started_total",
			Help:        "Number of started admission attempts.",
			ConstLabels: opts.ConstLabels,
		},
		opts.CurriedLabelNames,
	)

	deniedLabelNames := append(append([]string{}, opts.CurriedLabelNames...), metricsLabelReason, metricsLabelCancelled)
	deniedTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   opts.Namespace,
			Name:        "admission_denied_total",
			Help:        "Number of denied admission attempts.",
			ConstLabels: opts.ConstLabels,
		},
		deniedLabelNames,
	)

	completedTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   opts.Namespace,
			Name:        "admission_completed_total",
			Help:        "Number of admitted attempts that completed their unit of work.",
			ConstLabels: opts.ConstLabels,
		},
		opts.CurriedLabelNames,
	)

	internalErrorsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   opts.Namespace,
			Name:        "admission_internal_errors_total",
			Help:        "Number of admission attempts aborted because of internal errors.",
			ConstLabels: opts.ConstLabels,
		},
		opts.CurriedLabelNames,
	)

	workDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   opts.Namespace,
			Name:        "admission_work_duration_seconds",
			Help:        "Time from the start of an admission attempt until its completion.",
			Buckets:     durationBuckets,
			ConstLabels: opts.ConstLabels,
		},
		opts.CurriedLabelNames,
	)

	return &PrometheusMetrics{
		StartedTotal:        startedTotal,
		DeniedTotal:         deniedTotal,
		CompletedTotal:      completedTotal,
		InternalErrorsTotal: internalErrorsTotal,
		WorkDuration:        workDuration,
	}
}

// MustCurryWith curries the metrics collector with the provided labels.
func (pm *PrometheusMetrics) MustCurryWith(labels prometheus.Labels) *PrometheusMetrics {
	return &PrometheusMetrics{
		StartedTotal:        pm.StartedTotal.MustCurryWith(labels),
		DeniedTotal:         pm.DeniedTotal.MustCurryWith(labels),
		CompletedTotal:      pm.CompletedTotal.MustCurryWith(labels),
		InternalErrorsTotal: pm.InternalErrorsTotal.MustCurryWith(labels),
		WorkDuration:        pm.WorkDuration.MustCurryWith(labels).(*prometheus.HistogramVec),
	}
}

// MustRegister does registration of metrics collector in Prometheus and panics if any error occurs.
func (pm *PrometheusMetrics) MustRegister() {
	prometheus.MustRegister(
		pm.StartedTotal,
		pm.DeniedTotal,
		pm.CompletedTotal,
		pm.InternalErrorsTotal,
		pm.WorkDuration,
	)
}

// Unregister cancels registration of metrics collector in Prometheus.
func (pm *PrometheusMetrics) Unregister() {
	prometheus.Unregister(pm.StartedTotal)
	prometheus.Unregister(pm.DeniedTotal)
	prometheus.Unregister(pm.CompletedTotal)
	prometheus.Unregister(pm.InternalErrorsTotal)
	prometheus.Unregister(pm.WorkDuration)
}

// AdmissionStarted implements Observer.
func (pm *PrometheusMetrics) AdmissionStarted(Attempt) {
	pm.StartedTotal.With(nil).Inc()
}

// AdmissionDenied implements Observer.
func (pm *PrometheusMetrics) AdmissionDenied(_ Attempt, denial Denial) {
	pm.DeniedTotal.With(prometheus.Labels{
		metricsLabelReason:    string(denial.Reason),
		metricsLabelCancelled: strconv.FormatBool(denial.Cancelled),
	}).Inc()
}

// AdmissionCompleted implements Observer.
func (pm *PrometheusMetrics) AdmissionCompleted(_ Attempt, elapsed time.Duration) {
	pm.CompletedTotal.With(nil).Inc()
	pm.WorkDuration.With(nil).Observe(elapsed.Seconds())
}

// InternalError implements Observer.
func (pm *PrometheusMetrics) InternalError(Attempt, error) {
	pm.InternalErrorsTotal.With(nil).Inc()
}

// StatsCollector exposes Controller.Stats as Prometheus gauges evaluated at scrape time.
type StatsCollector struct {
	InFlightRequests prometheus.GaugeFunc
	Working          prometheus.GaugeFunc
	ActiveActors     prometheus.GaugeFunc
}

// NewStatsCollector creates a new StatsCollector for the controller.
func NewStatsCollector(c *Controller, namespace string) *StatsCollector {
	return &StatsCollector{
		InFlightRequests: prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "admission_in_flight_requests",
			Help:      "Number of attempts holding a permit of the global request pool.",
		}, func() float64 { return float64(c.Stats().InFlightRequests) }),
		Working: prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "admission_working_requests",
			Help:      "Number of admitted attempts performing their unit of work.",
		}, func() float64 { return float64(c.Stats().Working) }),
		ActiveActors: prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "admission_active_actors",
			Help:      "Number of actors having a live per-actor pool.",
		}, func() float64 { return float64(c.Stats().ActiveActors) }),
	}
}

// MustRegister does registration of the gauges in Prometheus and panics if any error occurs.
func (sc *StatsCollector) MustRegister() {
	prometheus.MustRegister(sc.InFlightRequests, sc.Working, sc.ActiveActors)
}

// Unregister cancels registration of the gauges in Prometheus.
func (sc *StatsCollector) Unregister() {
	prometheus.Unregister(sc.InFlightRequests)
	prometheus.Unregister(sc.Working)
	prometheus.Unregister(sc.ActiveActors)
}
