package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/alexanderramin/studyplan/internal/domain"
	"github.com/alexanderramin/studyplan/internal/progress"
)

type taskService struct {
	tracker *progress.Tracker
}

func NewTaskService(tracker *progress.Tracker) TaskService {
	return &taskService{tracker: tracker}
}

// Get returns the task when userID owns it. Someone else's task reads as
// not found. An empty userID skips the check.
func (s *taskService) Get(ctx context.Context, taskID, userID string) (*domain.ProgressTask, error) {
	task, err := s.tracker.Get(ctx, taskID)
	if err != nil {
		if errors.Is(err, progress.ErrTaskNotFound) {
			return nil, domain.NewNotFoundError("get task", fmt.Sprintf("task %s not found", taskID))
		}
		return nil, err
	}
	if userID != "" && task.UserID != userID {
		return nil, domain.NewNotFoundError("get task", fmt.Sprintf("task %s not found", taskID))
	}
	return task, nil
}

func (s *taskService) List(ctx context.Context, userID string) ([]*domain.ProgressTask, error) {
	return s.tracker.ListByUser(ctx, userID, "")
}
