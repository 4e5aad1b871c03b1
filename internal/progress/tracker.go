// Package progress tracks long-running plan builds through discrete
// milestones. A task starts PENDING, moves to IN_PROGRESS and ends in
// COMPLETED or FAILED, after which it no longer changes.
package progress

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	"github.com/alexanderramin/studyplan/internal/domain"
	"github.com/alexanderramin/studyplan/internal/logger"
)

const (
	// DefaultExpiry is how long a finished task stays visible.
	DefaultExpiry = 30 * time.Minute

	// DefaultJanitorInterval is how often RunJanitor sweeps the store.
	DefaultJanitorInterval = 5 * time.Minute
)

type Tracker struct {
	store      Store
	log        *logger.Logger
	now        func() time.Time
	expiry     time.Duration
	onTerminal func(status domain.TaskStatus)
}

type Option func(*Tracker)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

func WithExpiry(d time.Duration) Option {
	return func(t *Tracker) {
		if d > 0 {
			t.expiry = d
		}
	}
}

// WithTerminalHook is called once per task when it completes or fails.
func WithTerminalHook(fn func(status domain.TaskStatus)) Option {
	return func(t *Tracker) { t.onTerminal = fn }
}

func NewTracker(store Store, log *logger.Logger, opts ...Option) *Tracker {
	if log == nil {
		log = logger.NewNop()
	}
	t := &Tracker{
		store:  store,
		log:    log.With("component", "progress"),
		now:    time.Now,
		expiry: DefaultExpiry,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// CreateTask registers a PENDING task at progress 0 and returns its id.
func (t *Tracker) CreateTask(ctx context.Context, userID, taskType string, params map[string]any) (string, error) {
	id := uuid.New().String()
	task := domain.NewProgressTask(id, userID, taskType, params, t.now().UTC())
	if err := t.store.Create(ctx, task); err != nil {
		return "", fmt.Errorf("creating task: %w", err)
	}
	t.log.Info("task created", "task_id", id, "task_type", taskType)
	return id, nil
}

// Update applies u. Updates to a finished task return ErrTerminal and
// leave it unchanged.
func (t *Tracker) Update(ctx context.Context, id string, u domain.TaskUpdate) error {
	var became domain.TaskStatus
	task, err := t.store.Update(ctx, id, func(task *domain.ProgressTask) error {
		before := task.Status
		if err := task.Apply(u, t.now().UTC()); err != nil {
			return err
		}
		if !before.IsTerminal() && task.Status.IsTerminal() {
			became = task.Status
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrTerminal) {
			t.log.Debug("ignored update to finished task", "task_id", id)
		} else {
			t.log.Warn("task update failed", "task_id", id, "error", err)
		}
		return err
	}

	t.log.Debug("task updated",
		"task_id", id,
		"status", task.Status,
		"progress", task.Progress,
		"step", task.CurrentStep,
	)
	if became != "" && t.onTerminal != nil {
		t.onTerminal(became)
	}
	return nil
}

// Start moves the task to IN_PROGRESS.
func (t *Tracker) Start(ctx context.Context, id, message string) error {
	st := domain.TaskInProgress
	return t.Update(ctx, id, domain.TaskUpdate{Status: &st, Message: &message})
}

// Step records a milestone. The task is moved to IN_PROGRESS if needed.
func (t *Tracker) Step(ctx context.Context, id string, progress int, step, message string) error {
	st := domain.TaskInProgress
	return t.Update(ctx, id, domain.TaskUpdate{
		Status:      &st,
		Progress:    &progress,
		CurrentStep: &step,
		Message:     &message,
	})
}

func (t *Tracker) Complete(ctx context.Context, id string, message string, result map[string]any) error {
	st := domain.TaskCompleted
	step := StepDone
	return t.Update(ctx, id, domain.TaskUpdate{
		Status:      &st,
		Message:     &message,
		CurrentStep: &step,
		Result:      result,
	})
}

// Fail moves the task to FAILED, capturing the error text and the
// calling goroutine's stack.
func (t *Tracker) Fail(ctx context.Context, id string, cause error) error {
	return t.FailWithStack(ctx, id, cause, string(debug.Stack()))
}

// FailWithStack is Fail for callers that already captured a stack, such
// as a recovered panic.
func (t *Tracker) FailWithStack(ctx context.Context, id string, cause error, stack string) error {
	st := domain.TaskFailed
	msg := "Task failed"
	errText := "unknown error"
	if cause != nil {
		errText = cause.Error()
		msg = "Task failed: " + errText
	}
	t.log.Error("task failed", "task_id", id, "error", errText)
	return t.Update(ctx, id, domain.TaskUpdate{
		Status:  &st,
		Message: &msg,
		Error:   &errText,
		Stack:   stack,
	})
}

func (t *Tracker) Get(ctx context.Context, id string) (*domain.ProgressTask, error) {
	return t.store.Get(ctx, id)
}

// ListByUser returns the user's tasks, newest first. An empty taskType
// matches every type.
func (t *Tracker) ListByUser(ctx context.Context, userID, taskType string) ([]*domain.ProgressTask, error) {
	return t.store.ListByUser(ctx, userID, taskType)
}

// Cleanup drops finished tasks idle longer than the expiry and any task
// idle for twice that.
func (t *Tracker) Cleanup(ctx context.Context) (int, error) {
	n, err := t.store.DeleteExpired(ctx, t.now().UTC(), t.expiry)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		t.log.Info("cleaned up expired tasks", "count", n)
	}
	return n, nil
}

// RunJanitor calls Cleanup every interval until ctx is done.
func (t *Tracker) RunJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultJanitorInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := t.Cleanup(ctx); err != nil {
				t.log.Error("task cleanup failed", "error", err)
			}
		}
	}
}
