package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/studyplan/internal/domain"
	"github.com/alexanderramin/studyplan/internal/llm"
)

func TestMiddlewareCountsByRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New(prometheus.NewRegistry())

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/plans/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/plans/a", "/plans/b", "/nope"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RequestCounter.WithLabelValues("GET", "/plans/:id", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestCounter.WithLabelValues("GET", "unmatched", "404")))
}

func TestDomainCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.TaskFinished(domain.TaskCompleted)
	m.TaskFinished(domain.TaskFailed)
	m.TaskFinished(domain.TaskCompleted)
	m.ContentTier("History", domain.TierEmergency)
	m.ActivityUpdated(domain.StatusCompleted)
	m.OnJobDone("build-plan", time.Second, nil)
	m.OnJobDone("build-plan", time.Second, errors.New("x"))
	m.OnCallComplete(llm.LLMCallEvent{Task: llm.TaskWeeklyPlan, Success: true, LatencyMs: 1200})
	m.OnCallComplete(llm.LLMCallEvent{Task: llm.TaskWeeklyPlan, ErrorCode: "TIMEOUT"})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.PlanTasks.WithLabelValues("completed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PlanTasks.WithLabelValues("failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ContentTiers.WithLabelValues("emergency")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ActivityUpdates.WithLabelValues("completed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Jobs.WithLabelValues("build-plan", "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LLMCalls.WithLabelValues("weekly_plan", "none")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LLMCalls.WithLabelValues("weekly_plan", "TIMEOUT")))
}

func TestHandlerServesPrivateRegistry(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.ContentTier("Art", domain.TierFallback)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), `studyplan_content_tier_total{tier="fallback"} 1`)
}

func TestNewPanicsOnDoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	assert.Panics(t, func() { New(reg) })
}
