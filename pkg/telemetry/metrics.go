package telemetry

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// Polling metrics
	PollsTotal   *prometheus.CounterVec
	PollFailures *prometheus.CounterVec
	PollDuration *prometheus.HistogramVec

	// Log buffer metrics
	LogBufferSize    prometheus.Gauge
	LogEntriesTotal  prometheus.Counter
	LogDedupRejected prometheus.Counter

	// Queue metrics
	QueueTasks *prometheus.GaugeVec

	// Scheduler metrics
	ScheduleFires  *prometheus.CounterVec
	ScheduleErrors prometheus.Counter

	// Submission metrics
	SubmissionsTotal *prometheus.CounterVec

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

var (
	globalMetrics *Metrics
	metricsOnce   sync.Once
)

// GetMetrics returns the global metrics instance, initializing it if necessary
func GetMetrics() *Metrics {
	metricsOnce.Do(func() {
		globalMetrics = initMetrics(prometheus.DefaultRegisterer)
	})
	return globalMetrics
}

// initMetrics registers all application metrics against the given registerer
func initMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	m := &Metrics{}

	m.PollsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pontohub_polls_total",
			Help: "Total number of polling cycles by source",
		},
		[]string{"source"},
	)

	m.PollFailures = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pontohub_poll_failures_total",
			Help: "Total number of failed polling cycles by source",
		},
		[]string{"source"},
	)

	m.PollDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pontohub_poll_duration_seconds",
			Help:    "Duration of polling cycles in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"source"},
	)

	m.LogBufferSize = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "pontohub_log_buffer_size",
			Help: "Current number of entries held in the log buffer",
		},
	)

	m.LogEntriesTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "pontohub_log_entries_total",
			Help: "Total number of log entries accepted into the buffer",
		},
	)

	m.LogDedupRejected = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "pontohub_log_dedup_rejected_total",
			Help: "Total number of log entries rejected as duplicates",
		},
	)

	m.QueueTasks = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "pontohub_queue_tasks",
			Help: "Number of tasks in the queue by status",
		},
		[]string{"status"},
	)

	m.ScheduleFires = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pontohub_schedule_fires_total",
			Help: "Total number of schedule rule fires by report type",
		},
		[]string{"report"},
	)

	m.ScheduleErrors = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "pontohub_schedule_errors_total",
			Help: "Total number of schedule fires that failed to submit",
		},
	)

	m.SubmissionsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pontohub_submissions_total",
			Help: "Total number of job submissions by type and outcome",
		},
		[]string{"type", "outcome"},
	)

	m.HTTPRequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pontohub_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	m.HTTPRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pontohub_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)

	return m
}

// RecordPoll records a completed polling cycle
func (m *Metrics) RecordPoll(source string, success bool, durationSeconds float64) {
	m.PollsTotal.WithLabelValues(source).Inc()
	if !success {
		m.PollFailures.WithLabelValues(source).Inc()
	}
	m.PollDuration.WithLabelValues(source).Observe(durationSeconds)
}

// RecordLogIngest records log buffer activity after an ingest cycle
func (m *Metrics) RecordLogIngest(accepted, rejected, bufferSize int) {
	m.LogEntriesTotal.Add(float64(accepted))
	m.LogDedupRejected.Add(float64(rejected))
	m.LogBufferSize.Set(float64(bufferSize))
}

// RecordQueueSnapshot records the current queue composition
func (m *Metrics) RecordQueueSnapshot(current, pending, history int) {
	m.QueueTasks.WithLabelValues("processing").Set(float64(current))
	m.QueueTasks.WithLabelValues("pending").Set(float64(pending))
	m.QueueTasks.WithLabelValues("finished").Set(float64(history))
}

// RecordScheduleFire records a schedule rule fire
func (m *Metrics) RecordScheduleFire(report string, success bool) {
	m.ScheduleFires.WithLabelValues(report).Inc()
	if !success {
		m.ScheduleErrors.Inc()
	}
}

// RecordSubmission records a job submission attempt
func (m *Metrics) RecordSubmission(jobType string, success bool) {
	outcome := "ok"
	if !success {
		outcome = "error"
	}
	m.SubmissionsTotal.WithLabelValues(jobType, outcome).Inc()
}

// RecordHTTPRequest records a served HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, durationSeconds float64) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(durationSeconds)
}
