// Package metrics exposes Prometheus collectors for the HTTP API, plan
// builds, content lookups and the LLM client.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/alexanderramin/studyplan/internal/domain"
	"github.com/alexanderramin/studyplan/internal/llm"
)

const namespace = "studyplan"

type Metrics struct {
	RequestCounter  *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	PlanTasks       *prometheus.CounterVec
	ContentTiers    *prometheus.CounterVec
	ActivityUpdates *prometheus.CounterVec
	Jobs            *prometheus.CounterVec
	JobDuration     *prometheus.HistogramVec
	LLMCalls        *prometheus.CounterVec
	LLMLatency      *prometheus.HistogramVec

	gatherer prometheus.Gatherer
}

// New registers every collector on reg. Tests pass a fresh
// prometheus.NewRegistry(); the server passes prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RequestCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Duration of HTTP requests",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5},
			},
			[]string{"method", "endpoint"},
		),
		PlanTasks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "plan_tasks_total",
				Help:      "Plan build tasks by terminal status",
			},
			[]string{"status"},
		),
		ContentTiers: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "content_tier_total",
				Help:      "Subjects served by each content tier",
			},
			[]string{"tier"},
		),
		ActivityUpdates: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "activity_updates_total",
				Help:      "Activity status updates by new status",
			},
			[]string{"status"},
		),
		Jobs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "jobs_total",
				Help:      "Background jobs by name and outcome",
			},
			[]string{"job", "outcome"},
		),
		JobDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "job_duration_seconds",
				Help:      "Duration of background jobs",
				Buckets:   []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120},
			},
			[]string{"job"},
		),
		LLMCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "llm_calls_total",
				Help:      "LLM calls by task and error code",
			},
			[]string{"task", "error_code"},
		),
		LLMLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "llm_call_duration_seconds",
				Help:      "Latency of LLM calls including retries",
				Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"task"},
		),
	}
	reg.MustRegister(
		m.RequestCounter, m.RequestDuration,
		m.PlanTasks, m.ContentTiers, m.ActivityUpdates,
		m.Jobs, m.JobDuration,
		m.LLMCalls, m.LLMLatency,
	)
	if g, ok := reg.(prometheus.Gatherer); ok {
		m.gatherer = g
	}
	return m
}

// Middleware records count and latency per route template.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		m.RequestCounter.WithLabelValues(
			c.Request.Method,
			endpoint,
			strconv.Itoa(c.Writer.Status()),
		).Inc()
		m.RequestDuration.WithLabelValues(c.Request.Method, endpoint).
			Observe(time.Since(start).Seconds())
	}
}

// Handler serves the registry New was given, or the default gatherer.
func (m *Metrics) Handler() http.Handler {
	if m.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// TaskFinished is a progress.Tracker terminal hook.
func (m *Metrics) TaskFinished(status domain.TaskStatus) {
	m.PlanTasks.WithLabelValues(string(status)).Inc()
}

func (m *Metrics) ContentTier(_ string, tier domain.ContentTier) {
	m.ContentTiers.WithLabelValues(string(tier)).Inc()
}

func (m *Metrics) ActivityUpdated(status domain.ActivityStatus) {
	m.ActivityUpdates.WithLabelValues(string(status)).Inc()
}

// OnJobDone implements jobs.Observer.
func (m *Metrics) OnJobDone(name string, d time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.Jobs.WithLabelValues(name, outcome).Inc()
	m.JobDuration.WithLabelValues(name).Observe(d.Seconds())
}

// OnCallComplete implements llm.Observer.
func (m *Metrics) OnCallComplete(e llm.LLMCallEvent) {
	code := e.ErrorCode
	if e.Success {
		code = "none"
	}
	m.LLMCalls.WithLabelValues(string(e.Task), code).Inc()
	m.LLMLatency.WithLabelValues(string(e.Task)).Observe(float64(e.LatencyMs) / 1000)
}
