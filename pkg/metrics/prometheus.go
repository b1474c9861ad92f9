package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all prometheus metrics
type Metrics struct {
	Conversions         *prometheus.CounterVec
	RowsProcessed       prometheus.Counter
	RowsSkipped         prometheus.Counter
	ConnectionsResolved prometheus.Counter
	EmailsProcessed     prometheus.Counter
	ConversionTime      prometheus.Histogram
	ErrorsCount         *prometheus.CounterVec
}

// NewMetrics creates prometheus metrics registered on reg. A nil reg uses
// the default registerer.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		Conversions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "conversions_total",
			Help:      "The total number of conversion runs by outcome",
		}, []string{"status"}),
		RowsProcessed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_processed_total",
			Help:      "The total number of source rows turned into flight records",
		}),
		RowsSkipped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_skipped_total",
			Help:      "The total number of source rows skipped as invalid",
		}),
		ConnectionsResolved: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connections_resolved_total",
			Help:      "The total number of onward flights resolved",
		}),
		EmailsProcessed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "emails_processed_total",
			Help:      "The total number of processed schedule emails",
		}),
		ConversionTime: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "conversion_time_seconds",
			Help:      "Time taken to convert one schedule",
			Buckets:   prometheus.DefBuckets,
		}),
		ErrorsCount: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "The total number of errors",
		}, []string{"operation"}),
	}
}
