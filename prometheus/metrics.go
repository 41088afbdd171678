package prometheus

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP request metrics
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flutr_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"service", "method", "path", "status"},
	)

	HttpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "flutr_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "method", "path", "status"},
	)

	// Authentication metrics
	LoginCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "flutr_login_attempts_total",
			Help: "Total number of login attempts",
		},
	)

	AuthAttemptsCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "flutr_auth_attempts_total",
			Help: "Total number of session validations",
		},
	)

	AuthSuccessCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "flutr_auth_success_total",
			Help: "Total number of successful session validations",
		},
	)

	AuthErrorsCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "flutr_auth_errors_total",
			Help: "Total number of failed session validations",
		},
	)

	// Route access gate metrics
	GateDeniedCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "flutr_gate_denied_total",
			Help: "Total number of gated requests denied for missing session",
		},
	)

	// Tenant isolation metrics
	TenantContextMissingCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "flutr_tenant_context_missing_total",
			Help: "Total number of requests without institution context",
		},
	)

	TenantMismatchCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "flutr_tenant_mismatch_total",
			Help: "Total number of writes rejected for crossing institution boundaries",
		},
	)

	// Database operation metrics
	DbOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "flutr_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation_type"},
	)

	// Entity operation metrics
	EntityOperationsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flutr_entity_operations_total",
			Help: "Total number of entity operations",
		},
		[]string{"entity", "operation"},
	)

	// Suppliers per institution
	SuppliersPerInstitutionGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "flutr_suppliers_per_institution",
			Help: "Number of active suppliers per institution",
		},
		[]string{"institution_id"},
	)
)

// Handler returns the Prometheus scrape handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// MetricsMiddleware records request counts and durations per service
func MetricsMiddleware(service string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := strconv.Itoa(c.Response().Status)
			method := c.Request().Method
			path := c.Path()

			HttpRequestsTotal.WithLabelValues(service, method, path, status).Inc()
			HttpRequestDuration.WithLabelValues(service, method, path, status).
				Observe(time.Since(start).Seconds())

			return err
		}
	}
}

// TrackDBOperation returns a function that records the duration of a
// database operation when deferred with the start time.
func TrackDBOperation(operationType string) func(startTime time.Time) {
	return func(startTime time.Time) {
		DbOperationDuration.WithLabelValues(operationType).Observe(time.Since(startTime).Seconds())
	}
}

// RecordEntityOperation increments the per-entity operation counter
func RecordEntityOperation(entity, operation string) {
	EntityOperationsCounter.WithLabelValues(entity, operation).Inc()
}

// UpdateSuppliersPerInstitution updates the supplier gauge for an institution
func UpdateSuppliersPerInstitution(institutionID uint, count int) {
	SuppliersPerInstitutionGauge.WithLabelValues(strconv.FormatUint(uint64(institutionID), 10)).
		Set(float64(count))
}
