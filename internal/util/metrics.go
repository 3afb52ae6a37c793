package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	VendorsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vendors_created_total",
		Help: "Total number of vendors created",
	})

	PurchaseOrdersCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "purchase_orders_created_total",
		Help: "Total number of purchase orders created",
	})

	AcknowledgementsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "purchase_orders_acknowledged_total",
		Help: "Total number of purchase-order acknowledgements",
	})

	RecalculationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "performance_recalculations_total",
		Help: "Total number of vendor metric recalculations",
	}, []string{"trigger"})

	RecalculationsFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "performance_recalculations_failed_total",
		Help: "Total number of aborted metric recalculations",
	}, []string{"reason"})

	SnapshotsWrittenTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "performance_snapshots_written_total",
		Help: "Total number of historical performance snapshots appended",
	})

	SnapshotsSkippedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "performance_snapshots_skipped_total",
		Help: "Total number of recalculation cycles that recorded no snapshot",
	})

	MetricRecalcLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "performance_recalc_latency_seconds",
		Help:    "Latency of the inline metric recomputation",
		Buckets: prometheus.DefBuckets,
	})

	SnapshotCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "snapshot_cache_hits_total",
		Help: "Performance report reads served from cache",
	})

	SnapshotCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "snapshot_cache_misses_total",
		Help: "Performance report reads that fell back to the database",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
