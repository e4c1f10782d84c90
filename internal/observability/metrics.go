package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "sets_tracker"

var (
	httpRequestsCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests grouped by route, method and status code.",
	}, []string{"route", "method", "status"})

	httpDurationHistogram = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency grouped by route and method.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method"})

	schemaDriftCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "store",
		Name:      "schema_drift_retries_total",
		Help:      "Writes retried after the backing store rejected an optional column.",
	}, []string{"operation", "column"})

	syncPushCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "sync",
		Name:      "bulk_pushes_total",
		Help:      "Bulk sync requests applied to the backing store.",
	})

	setsUpsertedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "sync",
		Name:      "sets_upserted_total",
		Help:      "Sets written by bulk sync.",
	})

	setsStaleCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "sync",
		Name:      "sets_stale_skipped_total",
		Help:      "Sets skipped by bulk sync because the stored copy was newer.",
	})

	setsDeletedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "sync",
		Name:      "sets_deleted_total",
		Help:      "Sets removed from the backing store.",
	})

	lastSyncGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "sync",
		Name:      "last_push_timestamp_seconds",
		Help:      "Unix timestamp of the most recent bulk sync.",
	})
)

func init() {
	prometheus.MustRegister(
		httpRequestsCounter,
		httpDurationHistogram,
		schemaDriftCounter,
		syncPushCounter,
		setsUpsertedCounter,
		setsStaleCounter,
		setsDeletedCounter,
		lastSyncGauge,
	)
}

// GinMiddleware records request counts and latency per matched route.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		httpRequestsCounter.WithLabelValues(route, method, strconv.Itoa(c.Writer.Status())).Inc()
		httpDurationHistogram.WithLabelValues(route, method).Observe(time.Since(start).Seconds())
	}
}

// RecordSchemaDrift counts a write retried without column.
func RecordSchemaDrift(operation, column string) {
	schemaDriftCounter.WithLabelValues(operation, column).Inc()
}

// RecordSyncPush records one applied bulk sync.
func RecordSyncPush(upserted, stale int, deleted int64, ts time.Time) {
	syncPushCounter.Inc()
	setsUpsertedCounter.Add(float64(upserted))
	setsStaleCounter.Add(float64(stale))
	setsDeletedCounter.Add(float64(deleted))
	if !ts.IsZero() {
		lastSyncGauge.Set(float64(ts.Unix()))
	}
}

// RecordDeleted counts sets removed outside of bulk sync.
func RecordDeleted(n int64) {
	setsDeletedCounter.Add(float64(n))
}
