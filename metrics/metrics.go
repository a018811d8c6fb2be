// Package metrics registers the Prometheus collectors of the payroll engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Aggregation
	MonthsAggregated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "worktime_months_aggregated_total",
		Help: "Monthly aggregates computed",
	})

	DaysSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "worktime_days_skipped_total",
		Help: "Days left out of a monthly aggregate",
	}, []string{"reason"})

	AggregationLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "worktime_aggregation_seconds",
		Help:    "Time to resolve breakdowns and fold one month",
		Buckets: prometheus.DefBuckets,
	})

	// Tax engine
	NetCalculations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "worktime_net_calculations_total",
		Help: "Gross to net conversions",
	}, []string{"method"})

	GrossInversions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "worktime_gross_inversions_total",
		Help: "Net to gross inversions",
	}, []string{"converged"})

	// Storage
	DatabaseLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "worktime_database_latency_seconds",
		Help:    "Latency of store queries",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
)

// Skip reasons
const (
	ReasonProvider  = "provider_error"
	ReasonMalformed = "malformed"
)
