// Package httpapi serves the plan, task, student and content endpoints
// over gin.
package httpapi

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alexanderramin/studyplan/internal/logger"
	"github.com/alexanderramin/studyplan/internal/metrics"
)

// HealthFunc reports whether the backing stores are reachable.
type HealthFunc func(ctx context.Context) error

type RouterConfig struct {
	PlanHandler    *PlanHandler
	TaskHandler    *TaskHandler
	StudentHandler *StudentHandler
	ContentHandler *ContentHandler

	Metrics        *metrics.Metrics
	Log            *logger.Logger
	Health         HealthFunc
	AllowedOrigins []string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	log := cfg.Log
	if log == nil {
		log = logger.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(corsMiddleware(cfg.AllowedOrigins))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware())
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}
	r.Use(requestLogger(log.With("component", "http")))

	r.GET("/healthz", func(c *gin.Context) {
		if cfg.Health != nil {
			if err := cfg.Health(c.Request.Context()); err != nil {
				respondError(c, http.StatusServiceUnavailable, "unhealthy", err)
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	api.Use(requireOwner())

	if h := cfg.PlanHandler; h != nil {
		api.POST("/learning-plans/profile-based", h.CreateProfileBased)
		api.GET("/learning-plans", h.List)
		api.GET("/learning-plans/:id", h.Get)
		api.DELETE("/learning-plans/:id", h.Delete)
		api.PUT("/learning-plans/:id/activities/:activityId", h.UpdateActivity)
		api.GET("/learning-plans/:id/export", h.Export)
	}
	if h := cfg.TaskHandler; h != nil {
		api.GET("/tasks", h.List)
		api.GET("/tasks/:id", h.Get)
	}
	if h := cfg.StudentHandler; h != nil {
		api.POST("/students", h.Create)
		api.GET("/students", h.List)
		api.GET("/students/:id", h.Get)
		api.PUT("/students/:id", h.Update)
		api.DELETE("/students/:id", h.Delete)
	}
	if h := cfg.ContentHandler; h != nil {
		api.GET("/content", h.List)
		api.GET("/content/counts", h.Counts)
		api.POST("/content", h.Import)
	}

	return r
}
