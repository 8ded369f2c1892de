package common

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sirupsen/logrus"
)

var (
	importRecords = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "club",
		Subsystem: "import",
		Name:      "records_total",
		Help:      "Imported records broken down by entity type and outcome.",
	}, []string{"entity_type", "outcome"})

	importBatchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "club",
		Subsystem: "import",
		Name:      "batch_duration_seconds",
		Help:      "Time for one batch of store calls to settle.",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"entity_type"})
)

// CountRecords adds n records with the given outcome (created, updated, skipped,
// errored, deleted) to the import counters.
func CountRecords(entityType EntityType, outcome string, n int) {
	if n <= 0 {
		return
	}
	importRecords.WithLabelValues(string(entityType), outcome).Add(float64(n))
}

// ObserveBatch records how long one batch took to settle.
func ObserveBatch(entityType EntityType, d time.Duration) {
	importBatchDuration.WithLabelValues(string(entityType)).Observe(d.Seconds())
}

// MetricsMiddleware tracks API performance metrics
func MetricsMiddleware(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Generate request ID for tracing
		requestID := uuid.New().String()
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)

		startTime := time.Now()

		c.Next()

		durationMs := int(time.Since(startTime).Milliseconds())

		// Get rows processed (if set by handler)
		rowsProcessed := 0
		if rows, exists := c.Get("rows_processed"); exists {
			if r, ok := rows.(int); ok {
				rowsProcessed = r
			}
		}

		errors := ""
		if len(c.Errors) > 0 {
			errors = c.Errors.String()
		}

		metric := ApiMetric{
			Endpoint:      c.FullPath(),
			Method:        c.Request.Method,
			StatusCode:    c.Writer.Status(),
			DurationMs:    durationMs,
			RowsProcessed: rowsProcessed,
			Errors:        errors,
			Timestamp:     startTime,
		}

		log.WithFields(logrus.Fields{
			"request_id":  requestID,
			"method":      metric.Method,
			"endpoint":    metric.Endpoint,
			"status":      metric.StatusCode,
			"duration_ms": durationMs,
		}).Debug("request handled")

		// Save metric asynchronously
		go func() {
			db := GetDB()
			if db == nil {
				return
			}
			if err := db.Create(&metric).Error; err != nil {
				log.WithError(err).Warn("failed to store api metric")
			}
		}()
	}
}
