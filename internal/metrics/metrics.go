// Package metrics exposes the Prometheus collectors shared by the API and the worker.
package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	wsClients    prometheus.Gauge
	wsDropped    prometheus.Counter
	payments     *prometheus.CounterVec
	jobRuns      *prometheus.CounterVec
	jobDuration  *prometheus.HistogramVec
	invoicesOver prometheus.Counter
}

var (
	defaultOnce    sync.Once
	defaultMetrics *Metrics
)

// New registers the collectors against registerer, or the default registerer when nil.
func New(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		defaultOnce.Do(func() {
			defaultMetrics = build(prometheus.DefaultRegisterer)
		})
		return defaultMetrics
	}
	return build(registerer)
}

func build(registerer prometheus.Registerer) *Metrics {
	m := &Metrics{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "isp_billing_http_requests_total",
			Help: "HTTP requests partitioned by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "isp_billing_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		wsClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "isp_billing_ws_clients",
			Help: "Currently connected realtime clients.",
		}),
		wsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "isp_billing_ws_events_dropped_total",
			Help: "Realtime events dropped because the hub buffer was full.",
		}),
		payments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "isp_billing_payments_total",
			Help: "Payment recording attempts partitioned by outcome.",
		}, []string{"outcome"}),
		jobRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "isp_billing_jobs_total",
			Help: "Background job executions partitioned by job and status.",
		}, []string{"job", "status"}),
		jobDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "isp_billing_job_duration_seconds",
			Help:    "Background job duration in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"job"}),
		invoicesOver: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "isp_billing_invoices_marked_overdue_total",
			Help: "Invoices moved from pending to overdue by the sweep job.",
		}),
	}
	registerer.MustRegister(
		m.httpRequests, m.httpDuration,
		m.wsClients, m.wsDropped,
		m.payments,
		m.jobRuns, m.jobDuration, m.invoicesOver,
	)
	return m
}

// ObserveHTTP records one finished request. route is the gin route template.
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *Metrics) ClientConnected() {
	if m != nil {
		m.wsClients.Inc()
	}
}

func (m *Metrics) ClientDisconnected() {
	if m != nil {
		m.wsClients.Dec()
	}
}

func (m *Metrics) EventDropped() {
	if m != nil {
		m.wsDropped.Inc()
	}
}

// ObservePayment counts a recordPayment outcome: success, conflict, not_found, invalid, error.
func (m *Metrics) ObservePayment(outcome string) {
	if m != nil {
		m.payments.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) AddOverdue(n int) {
	if m != nil && n > 0 {
		m.invoicesOver.Add(float64(n))
	}
}

// Tracker instruments a single job run.
type Tracker struct {
	metrics *Metrics
	job     string
	start   time.Time
}

func (m *Metrics) Track(job string) *Tracker {
	return &Tracker{metrics: m, job: job, start: time.Now()}
}

// End records the run and returns err untouched.
func (t *Tracker) End(err error) error {
	if t == nil || t.metrics == nil {
		return err
	}
	status := "success"
	if err != nil {
		status = "failure"
	}
	t.metrics.jobRuns.WithLabelValues(t.job, status).Inc()
	t.metrics.jobDuration.WithLabelValues(t.job).Observe(time.Since(t.start).Seconds())
	return err
}
