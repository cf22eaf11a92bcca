package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Business metrics
	ReadingsSubmittedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "forecourt_readings_submitted_total",
		Help: "Shift readings accepted, labeled by validation verdict",
	}, []string{"status"})

	ReadingLossPercent = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "forecourt_reading_loss_percent",
		Help: "Loss percent of the latest submitted reading per tank",
	}, []string{"tank_id"})

	VariancePercent = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "forecourt_variance_percent",
		Help: "Meter-vs-tank variance percent of the latest reading per tank",
	}, []string{"tank_id", "meter"})

	DeliveriesRecordedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "forecourt_deliveries_recorded_total",
		Help: "Fuel deliveries recorded into the pool",
	})

	AlertsSentTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "forecourt_alerts_sent_total",
		Help: "Reconciliation alerts dispatched, labeled by channel",
	}, []string{"channel"})

	// Infrastructure metrics
	DatabaseLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "forecourt_db_latency_seconds",
		Help:    "Latency of database queries",
		Buckets: prometheus.DefBuckets,
	})
)
