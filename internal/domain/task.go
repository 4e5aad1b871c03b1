package domain

import (
	"errors"
	"fmt"
	"time"
)

// ErrTaskTerminal is returned when an update targets a COMPLETED or
// FAILED task. The task is left unchanged.
var ErrTaskTerminal = errors.New("task already finished")

// ProgressTask is the observable state of one background plan build.
type ProgressTask struct {
	ID          string         `json:"task_id"`
	UserID      string         `json:"user_id"`
	TaskType    string         `json:"task_type"`
	Status      TaskStatus     `json:"status"`
	Progress    int            `json:"progress"`
	Message     string         `json:"message"`
	CurrentStep string         `json:"current_step,omitempty"`
	Steps       []string       `json:"steps"`
	Params      map[string]any `json:"params,omitempty"`
	Result      map[string]any `json:"result,omitempty"`
	Error       string         `json:"error,omitempty"`
	Stack       string         `json:"stack,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
}

// TaskUpdate is a partial update; nil fields are left as they are.
type TaskUpdate struct {
	Status      *TaskStatus
	Progress    *int
	Message     *string
	CurrentStep *string
	Result      map[string]any
	Error       *string
	Stack       string
}

// NewProgressTask creates a PENDING task at progress 0.
func NewProgressTask(id, userID, taskType string, params map[string]any, now time.Time) *ProgressTask {
	return &ProgressTask{
		ID:        id,
		UserID:    userID,
		TaskType:  taskType,
		Status:    TaskPending,
		Message:   "Task created",
		Steps:     []string{},
		Params:    params,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Apply merges u into the task. Terminal tasks reject every update.
// Progress never moves backwards and is capped at 100; a transition to
// COMPLETED forces it to 100.
func (t *ProgressTask) Apply(u TaskUpdate, now time.Time) error {
	if t.Status.IsTerminal() {
		return fmt.Errorf("task %s is %s: %w", t.ID, t.Status, ErrTaskTerminal)
	}
	if u.Status != nil {
		switch *u.Status {
		case TaskPending, TaskInProgress, TaskCompleted, TaskFailed:
		default:
			return NewValidationError("update task", fmt.Sprintf("invalid task status %q", *u.Status))
		}
		if *u.Status == TaskPending && t.Status != TaskPending {
			return NewValidationError("update task", "cannot return to pending")
		}
	}

	if u.Progress != nil {
		p := *u.Progress
		if p > 100 {
			p = 100
		}
		if p > t.Progress {
			t.Progress = p
		}
	}
	if u.Message != nil && *u.Message != "" {
		t.Message = *u.Message
	}
	if u.CurrentStep != nil && *u.CurrentStep != "" {
		t.CurrentStep = *u.CurrentStep
		if !containsString(t.Steps, t.CurrentStep) {
			t.Steps = append(t.Steps, t.CurrentStep)
		}
	}
	if u.Status != nil {
		t.Status = *u.Status
	}

	switch t.Status {
	case TaskCompleted:
		t.Progress = 100
		if u.Result != nil {
			t.Result = u.Result
		}
	case TaskFailed:
		if u.Error != nil {
			t.Error = *u.Error
		}
		if u.Stack != "" {
			t.Stack = u.Stack
		}
	}

	t.UpdatedAt = now
	if t.Status.IsTerminal() && t.CompletedAt == nil {
		ts := now
		t.CompletedAt = &ts
	}
	return nil
}

// Expired reports whether the task should be dropped from a store:
// finished tasks after expiry, any task once idle for twice that long.
func (t *ProgressTask) Expired(now time.Time, expiry time.Duration) bool {
	idle := now.Sub(t.UpdatedAt)
	if t.Status.IsTerminal() && idle > expiry {
		return true
	}
	return idle > 2*expiry
}

// Clone returns a deep enough copy for handing out of a store.
func (t *ProgressTask) Clone() *ProgressTask {
	c := *t
	c.Steps = append([]string(nil), t.Steps...)
	c.Params = cloneMap(t.Params)
	c.Result = cloneMap(t.Result)
	if t.CompletedAt != nil {
		ts := *t.CompletedAt
		c.CompletedAt = &ts
	}
	return &c
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
