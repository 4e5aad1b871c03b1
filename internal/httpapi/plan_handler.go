package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/alexanderramin/studyplan/internal/domain"
	"github.com/alexanderramin/studyplan/internal/export"
	"github.com/alexanderramin/studyplan/internal/service"
)

type PlanHandler struct {
	plans      service.PlanService
	activities service.ActivityService
}

func NewPlanHandler(plans service.PlanService, activities service.ActivityService) *PlanHandler {
	return &PlanHandler{plans: plans, activities: activities}
}

// POST /api/learning-plans/profile-based
func (h *PlanHandler) CreateProfileBased(c *gin.Context) {
	var req service.CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	taskID, err := h.plans.CreateProfileBasedPlan(c.Request.Context(), ownerID(c), req)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{
		"task_id": taskID,
		"status":  string(domain.TaskPending),
		"message": "Learning plan generation started",
	})
}

// GET /api/learning-plans
func (h *PlanHandler) List(c *gin.Context) {
	plans, err := h.plans.List(c.Request.Context(), ownerID(c), c.Query("student_id"))
	if err != nil {
		respondDomainError(c, err)
		return
	}
	if plans == nil {
		plans = []*domain.LearningPlan{}
	}
	c.JSON(http.StatusOK, gin.H{"plans": plans})
}

// GET /api/learning-plans/:id
func (h *PlanHandler) Get(c *gin.Context) {
	plan, err := h.plans.Get(c.Request.Context(), c.Param("id"), ownerID(c))
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

// DELETE /api/learning-plans/:id
func (h *PlanHandler) Delete(c *gin.Context) {
	if err := h.plans.Delete(c.Request.Context(), c.Param("id"), ownerID(c)); err != nil {
		respondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type updateActivityRequest struct {
	Status      string     `json:"status" binding:"required"`
	CompletedAt *time.Time `json:"completed_at"`
}

// PUT /api/learning-plans/:id/activities/:activityId
func (h *PlanHandler) UpdateActivity(c *gin.Context) {
	var req updateActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	status, err := domain.ParseActivityStatus(req.Status)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	planID, activityID := c.Param("id"), c.Param("activityId")
	res, err := h.activities.UpdateStatus(c.Request.Context(), planID, ownerID(c), activityID, status, req.CompletedAt)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":             true,
		"plan_id":             planID,
		"activity_id":         activityID,
		"status":              string(status),
		"progress_percentage": res.ProgressPercentage,
		"plan_status":         string(res.PlanStatus),
	})
}

// GET /api/learning-plans/:id/export?format=json|html|pdf
//
// JSON returns the plan document itself. HTML, and PDF which falls back to
// HTML, come back wrapped with the produced format and any notice.
func (h *PlanHandler) Export(c *gin.Context) {
	format, err := export.ParseFormat(c.DefaultQuery("format", string(export.FormatJSON)))
	if err != nil {
		respondDomainError(c, err)
		return
	}
	art, err := h.plans.Export(c.Request.Context(), c.Param("id"), ownerID(c), format)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	if art.Location != "" {
		c.Header("X-Export-Location", art.Location)
	}
	if art.Format == export.FormatJSON {
		c.Header("Content-Disposition", `attachment; filename="`+art.Filename+`"`)
		c.Data(http.StatusOK, art.ContentType, art.Data)
		return
	}
	body := gin.H{"content": string(art.Data), "format": string(art.Format)}
	if art.Notice != "" {
		body["message"] = art.Notice
	}
	if art.Location != "" {
		body["location"] = art.Location
	}
	c.JSON(http.StatusOK, body)
}
