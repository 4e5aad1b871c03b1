package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alexanderramin/studyplan/internal/domain"
	"github.com/alexanderramin/studyplan/internal/service"
)

type TaskHandler struct {
	tasks service.TaskService
}

func NewTaskHandler(tasks service.TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

// GET /api/tasks/:id
//
// A FAILED task is still a successful read; the snapshot carries the
// captured error and message.
func (h *TaskHandler) Get(c *gin.Context) {
	task, err := h.tasks.Get(c.Request.Context(), c.Param("id"), ownerID(c))
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// GET /api/tasks
func (h *TaskHandler) List(c *gin.Context) {
	tasks, err := h.tasks.List(c.Request.Context(), ownerID(c))
	if err != nil {
		respondDomainError(c, err)
		return
	}
	if tasks == nil {
		tasks = []*domain.ProgressTask{}
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}
