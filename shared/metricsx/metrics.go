package metricsx

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)
	httpLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
	occupancyPercent = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "dorm_occupancy_percent",
			Help: "Current dormitory occupancy as a percentage of capacity.",
		},
	)
	auditArchiveFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "audit_archive_failures_total",
			Help: "Total audit archive task failures.",
		},
	)
	influxWriteFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "influx_write_failures_total",
			Help: "Total InfluxDB write failures.",
		},
	)
	reportFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "report_generate_failures_total",
			Help: "Total monthly report generation failures.",
		},
	)
	reportSuccess = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "report_generate_success_total",
			Help: "Total monthly report generation successes.",
		},
	)
	reportLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "report_generate_latency_seconds",
			Help:    "Monthly report generation latency in seconds.",
			Buckets: prometheus.DefBuckets,
		},
	)
	asynqQueueDepth = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "asynq_queue_depth",
			Help: "Asynq queue depth by queue.",
		},
		[]string{"queue"},
	)
)

func Register() {
	prometheus.MustRegister(httpRequests, httpLatency, occupancyPercent, auditArchiveFailures, influxWriteFailures, reportFailures, reportSuccess, reportLatency, asynqQueueDepth)
}

func Handler() http.Handler {
	return promhttp.Handler()
}

func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &statusResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(lrw, r)
		status := strconv.Itoa(lrw.statusCode)
		httpRequests.WithLabelValues(r.Method, r.URL.Path, status).Inc()
		httpLatency.WithLabelValues(r.Method, r.URL.Path, status).Observe(time.Since(start).Seconds())
	})
}

func SetOccupancyPercent(pct float64) {
	occupancyPercent.Set(pct)
}

func IncAuditArchiveFailure() {
	auditArchiveFailures.Inc()
}

func IncInfluxWriteFailure() {
	influxWriteFailures.Inc()
}

func IncReportFailure() {
	reportFailures.Inc()
}

func IncReportSuccess() {
	reportSuccess.Inc()
}

func ObserveReportLatency(d time.Duration) {
	reportLatency.Observe(d.Seconds())
}

func SetAsynqQueueDepth(queue string, depth int) {
	asynqQueueDepth.WithLabelValues(queue).Set(float64(depth))
}

type statusResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusResponseWriter) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}
