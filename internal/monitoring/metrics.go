package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Job outcome labels of scraper_jobs_total.
const (
	JobSuccess = "success"
	JobEmpty   = "empty"
	JobFailed  = "failed"
)

// JobStatus labels a finished job by whether it recorded any page.
func JobStatus(success bool) string {
	if success {
		return JobSuccess
	}
	return JobEmpty
}

// Metrics holds all Prometheus metrics for the scraper.
type Metrics struct {
	PagesFetched *prometheus.CounterVec
	PageErrors   *prometheus.CounterVec
	Escalations  prometheus.Counter
	JobDuration  *prometheus.HistogramVec
	JobsTotal    *prometheus.CounterVec

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// NewMetrics registers the scraper metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		PagesFetched: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "scraper_pages_fetched_total",
			Help: "The total number of pages recorded",
		}, []string{"tier"}),
		PageErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "scraper_page_errors_total",
			Help: "The total number of pages skipped because of an error",
		}, []string{"tier", "type"}), // e.g., 'status', 'timeout', 'network'
		Escalations: factory.NewCounter(prometheus.CounterOpts{
			Name: "scraper_escalations_total",
			Help: "The number of auto-mode jobs that fell back to the browser tier",
		}),
		JobDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "scraper_job_duration_seconds",
			Help:    "Duration of a single strategy run",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
		}, []string{"tier"}),
		JobsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "scraper_jobs_total",
			Help: "Scrape jobs by outcome",
		}, []string{"status"}),
		HTTPRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
}

func (m *Metrics) IncPagesFetched(tier string) {
	m.PagesFetched.WithLabelValues(tier).Inc()
}

func (m *Metrics) IncPageErrors(tier, errorType string) {
	m.PageErrors.WithLabelValues(tier, errorType).Inc()
}

func (m *Metrics) IncEscalations() {
	m.Escalations.Inc()
}

func (m *Metrics) ObserveJobDuration(tier string, seconds float64) {
	m.JobDuration.WithLabelValues(tier).Observe(seconds)
}

func (m *Metrics) IncJobs(status string) {
	m.JobsTotal.WithLabelValues(status).Inc()
}

func (m *Metrics) ObserveHTTPRequest(method, route, status string, seconds float64) {
	m.HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route, status).Observe(seconds)
}
