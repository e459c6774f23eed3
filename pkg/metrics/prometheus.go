package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all prometheus metrics
type Metrics struct {
	ManifestsProcessed prometheus.Counter
	PassengersCreated  prometheus.Counter
	PassengersFound    prometheus.Counter
	DuplicatesDetected prometheus.Counter
	ParseErrors        prometheus.Counter
	ReconcileTime      prometheus.Histogram
	RegistryErrors     *prometheus.CounterVec
}

// NewMetrics creates new prometheus metrics
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		ManifestsProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "manifests_processed_total",
			Help:      "The total number of reconciled manifests",
		}),
		PassengersCreated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "passengers_created_total",
			Help:      "The total number of passenger records created",
		}),
		PassengersFound: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "passengers_found_total",
			Help:      "The total number of manifest entries matched to existing passengers",
		}),
		DuplicatesDetected: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "duplicates_detected_total",
			Help:      "The total number of fuzzy name matches flagged for review",
		}),
		ParseErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parse_errors_total",
			Help:      "The total number of rejected manifest lines",
		}),
		ReconcileTime: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "reconcile_time_seconds",
			Help:      "Time taken to reconcile a manifest batch",
			Buckets:   prometheus.DefBuckets,
		}),
		RegistryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registry_errors_total",
			Help:      "The total number of failed registry calls",
		}, []string{"operation"}),
	}
}
