// Package metrics provides the centralized Prometheus metrics registry for the
// projection pipeline.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	FeatureRowsUpsertedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "prop_projector",
		Name:      "feature_rows_upserted_total",
		Help:      "Total number of feature rows upserted",
	}, []string{"market_code"})
	LabelsAttachedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "prop_projector",
		Name:      "labels_attached_total",
		Help:      "Total number of feature rows that received a realized label",
	}, []string{"market_code"})
	TrainingRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "prop_projector",
		Name:      "training_runs_total",
		Help:      "Total number of completed training runs",
	}, []string{"market_code"})
	TrainingFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "prop_projector",
		Name:      "training_failures_total",
		Help:      "Total number of failed training runs",
	}, []string{"market_code"})
	RegistryWriteFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "prop_projector",
		Name:      "registry_write_failures_total",
		Help:      "Total number of non-fatal model registry write failures",
	})
	EvaluationRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "prop_projector",
		Name:      "evaluation_runs_total",
		Help:      "Total number of completed evaluation runs",
	}, []string{"market_code"})
	ProjectionsServedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "prop_projector",
		Name:      "projections_served_total",
		Help:      "Total number of projections served",
	}, []string{"market_code"})
	PipelineCacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "prop_projector",
		Name:      "pipeline_cache_hits_total",
		Help:      "Total number of model pipeline cache hits",
	})
	PipelineCacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "prop_projector",
		Name:      "pipeline_cache_misses_total",
		Help:      "Total number of model pipeline cache misses",
	})
)

// Gauge metrics
var (
	ModelMAE = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "prop_projector",
		Name:      "model_mae",
		Help:      "Holdout MAE of the most recent training run per market",
	}, []string{"market_code", "model_name"})
	ModelR2 = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "prop_projector",
		Name:      "model_r2",
		Help:      "Holdout R2 of the most recent training run per market",
	}, []string{"market_code", "model_name"})
	BaselineLiftMAEPct = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "prop_projector",
		Name:      "baseline_lift_mae_pct",
		Help:      "MAE improvement over the weighted-mean baseline, percent",
	}, []string{"market_code", "model_name"})
)

// Histogram metrics
var (
	FeatureBuildDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "prop_projector",
		Name:      "feature_build_duration_seconds",
		Help:      "Duration of feature build runs in seconds",
		Buckets:   []float64{1, 5, 10, 30, 60, 300, 600},
	})
	TrainingDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "prop_projector",
		Name:      "training_duration_seconds",
		Help:      "Duration of training runs in seconds",
		Buckets:   []float64{1, 5, 10, 30, 60, 300, 600},
	})
	EvaluationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "prop_projector",
		Name:      "evaluation_duration_seconds",
		Help:      "Duration of evaluation runs in seconds",
		Buckets:   []float64{1, 5, 10, 30, 60, 300, 600},
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(FeatureRowsUpsertedTotal)
		registry.MustRegister(LabelsAttachedTotal)
		registry.MustRegister(TrainingRunsTotal)
		registry.MustRegister(TrainingFailuresTotal)
		registry.MustRegister(RegistryWriteFailuresTotal)
		registry.MustRegister(EvaluationRunsTotal)
		registry.MustRegister(ProjectionsServedTotal)
		registry.MustRegister(PipelineCacheHitsTotal)
		registry.MustRegister(PipelineCacheMissesTotal)

		registry.MustRegister(ModelMAE)
		registry.MustRegister(ModelR2)
		registry.MustRegister(BaselineLiftMAEPct)

		registry.MustRegister(FeatureBuildDuration)
		registry.MustRegister(TrainingDuration)
		registry.MustRegister(EvaluationDuration)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}
