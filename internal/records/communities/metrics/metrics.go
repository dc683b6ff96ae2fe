package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the record-communities module.
// Outcome counters separate successes from per-item errors so dashboards can
// track partial-failure rates.
type Metrics struct {
	CommunitiesAdded   prometheus.Counter
	CommunitiesRemoved prometheus.Counter
	BulkRecordsAdded   prometheus.Counter
	DefaultSet         prometheus.Counter
	ItemErrors         *prometheus.CounterVec
	OperationDuration  *prometheus.HistogramVec
}

// New creates a Metrics instance with all record-communities metrics
// registered on the default registry.
func New() *Metrics {
	return &Metrics{
		CommunitiesAdded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "archiva_record_communities_added_total",
			Help: "Total number of inclusion requests created via add",
		}),
		CommunitiesRemoved: promauto.NewCounter(prometheus.CounterOpts{
			Name: "archiva_record_communities_removed_total",
			Help: "Total number of record-community links removed",
		}),
		BulkRecordsAdded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "archiva_record_communities_bulk_added_total",
			Help: "Total number of records added via bulk add",
		}),
		DefaultSet: promauto.NewCounter(prometheus.CounterOpts{
			Name: "archiva_record_default_community_set_total",
			Help: "Total number of default community changes",
		}),
		ItemErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "archiva_record_communities_item_errors_total",
			Help: "Per-item errors reported by bulk operations",
		}, []string{"operation"}),
		OperationDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "archiva_record_communities_operation_duration_seconds",
			Help:    "Duration of record-communities service operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"operation"}),
	}
}

// ObserveOperation records the duration of a named service operation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveOperation(operation string, start time.Time) {
	m.OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// CountItemErrors adds per-item error entries produced by an operation.
func (m *Metrics) CountItemErrors(operation string, n int) {
	if n > 0 {
		m.ItemErrors.WithLabelValues(operation).Add(float64(n))
	}
}
