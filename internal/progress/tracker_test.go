package progress

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/studyplan/internal/domain"
	"github.com/alexanderramin/studyplan/internal/logger"
)

var testNow = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestTracker(t *testing.T, opts ...Option) (*Tracker, *MemoryStore, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: testNow}
	store := NewMemoryStore()
	opts = append([]Option{WithClock(clock.Now)}, opts...)
	return NewTracker(store, logger.NewNop(), opts...), store, clock
}

func TestTracker_CreateTask(t *testing.T) {
	tr, _, _ := newTestTracker(t)
	ctx := context.Background()

	id, err := tr.CreateTask(ctx, "user-1", "learning_plan_creation", map[string]any{"student_profile_id": "s-1"})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	task, err := tr.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskPending, task.Status)
	assert.Equal(t, 0, task.Progress)
	assert.Equal(t, "user-1", task.UserID)
	assert.Equal(t, "s-1", task.Params["student_profile_id"])
	assert.Equal(t, testNow, task.CreatedAt)
}

func TestTracker_StepsAdvanceMonotonically(t *testing.T) {
	tr, _, _ := newTestTracker(t)
	ctx := context.Background()
	id, err := tr.CreateTask(ctx, "user-1", "plan", nil)
	require.NoError(t, err)

	require.NoError(t, tr.Step(ctx, id, 20, StepFocus, "Resolving focus subjects"))
	require.NoError(t, tr.Step(ctx, id, 10, StepStudentData, "late report"))

	task, err := tr.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskInProgress, task.Status)
	assert.Equal(t, 20, task.Progress)
	assert.Equal(t, StepStudentData, task.CurrentStep)
	assert.Equal(t, []string{StepFocus, StepStudentData}, task.Steps)
}

func TestTracker_CompleteIsTerminal(t *testing.T) {
	var terminal []domain.TaskStatus
	tr, _, _ := newTestTracker(t, WithTerminalHook(func(s domain.TaskStatus) { terminal = append(terminal, s) }))
	ctx := context.Background()
	id, _ := tr.CreateTask(ctx, "user-1", "plan", nil)

	require.NoError(t, tr.Step(ctx, id, 40, StepContent, "Fetching content"))
	require.NoError(t, tr.Complete(ctx, id, "Plan created", map[string]any{"plan_id": "p-1"}))

	err := tr.Fail(ctx, id, errors.New("too late"))
	assert.ErrorIs(t, err, ErrTerminal)
	err = tr.Step(ctx, id, 50, StepGenerate, "again")
	assert.ErrorIs(t, err, ErrTerminal)

	task, err := tr.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskCompleted, task.Status)
	assert.Equal(t, 100, task.Progress)
	assert.Equal(t, "p-1", task.Result["plan_id"])
	assert.Empty(t, task.Error)
	require.NotNil(t, task.CompletedAt)
	assert.Equal(t, []domain.TaskStatus{domain.TaskCompleted}, terminal)
}

func TestTracker_FailCapturesErrorAndStack(t *testing.T) {
	tr, _, _ := newTestTracker(t)
	ctx := context.Background()
	id, _ := tr.CreateTask(ctx, "user-1", "plan", nil)
	require.NoError(t, tr.Step(ctx, id, 62, StepGenerate, "Generating"))

	require.NoError(t, tr.Fail(ctx, id, errors.New("catalog down")))

	task, err := tr.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskFailed, task.Status)
	assert.Equal(t, "catalog down", task.Error)
	assert.Contains(t, task.Message, "catalog down")
	assert.Contains(t, task.Stack, "goroutine")
	assert.Equal(t, 62, task.Progress)
	assert.Nil(t, task.Result)

	assert.ErrorIs(t, tr.Complete(ctx, id, "done", nil), ErrTerminal)
	task, _ = tr.Get(ctx, id)
	assert.Equal(t, domain.TaskFailed, task.Status)
}

func TestTracker_FailFromPending(t *testing.T) {
	tr, _, _ := newTestTracker(t)
	ctx := context.Background()
	id, _ := tr.CreateTask(ctx, "user-1", "plan", nil)

	require.NoError(t, tr.FailWithStack(ctx, id, nil, ""))
	task, _ := tr.Get(ctx, id)
	assert.Equal(t, domain.TaskFailed, task.Status)
	assert.Equal(t, "unknown error", task.Error)
}

func TestTracker_UnknownTask(t *testing.T) {
	tr, _, _ := newTestTracker(t)
	err := tr.Start(context.Background(), "missing", "go")
	assert.ErrorIs(t, err, ErrTaskNotFound)
	_, err = tr.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestTracker_ListByUser(t *testing.T) {
	tr, _, clock := newTestTracker(t)
	ctx := context.Background()
	first, _ := tr.CreateTask(ctx, "user-1", "plan", nil)
	clock.Advance(time.Second)
	second, _ := tr.CreateTask(ctx, "user-1", "plan", nil)
	clock.Advance(time.Second)
	_, _ = tr.CreateTask(ctx, "user-1", "export", nil)
	_, _ = tr.CreateTask(ctx, "user-2", "plan", nil)

	tasks, err := tr.ListByUser(ctx, "user-1", "plan")
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, second, tasks[0].ID)
	assert.Equal(t, first, tasks[1].ID)

	all, err := tr.ListByUser(ctx, "user-1", "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestTracker_Cleanup(t *testing.T) {
	tr, store, clock := newTestTracker(t, WithExpiry(30*time.Minute))
	ctx := context.Background()

	done, _ := tr.CreateTask(ctx, "u", "plan", nil)
	require.NoError(t, tr.Complete(ctx, done, "ok", nil))
	running, _ := tr.CreateTask(ctx, "u", "plan", nil)
	require.NoError(t, tr.Start(ctx, running, "go"))

	clock.Advance(31 * time.Minute)
	n, err := tr.Cleanup(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, store.Len())

	clock.Advance(30 * time.Minute)
	n, err = tr.Cleanup(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 0, store.Len())
}

func TestTracker_RunJanitorStopsWithContext(t *testing.T) {
	tr, _, _ := newTestTracker(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		tr.RunJanitor(ctx, 5*time.Millisecond)
		close(done)
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop")
	}
}

func TestTracker_ConcurrentStepsStayMonotonic(t *testing.T) {
	tr, _, _ := newTestTracker(t)
	ctx := context.Background()
	id, _ := tr.CreateTask(ctx, "u", "plan", nil)

	var wg sync.WaitGroup
	for p := 1; p <= 50; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			_ = tr.Step(ctx, id, p, StepContent, "fetching")
		}(p)
	}
	wg.Wait()

	task, _ := tr.Get(ctx, id)
	assert.Equal(t, 50, task.Progress)
}

func TestMemoryStore_SnapshotsAreCopies(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	task := domain.NewProgressTask("t-1", "u", "plan", nil, testNow)
	require.NoError(t, store.Create(ctx, task))
	assert.Error(t, store.Create(ctx, task), "duplicate id")

	got, err := store.Get(ctx, "t-1")
	require.NoError(t, err)
	got.Steps = append(got.Steps, "mutated")

	again, _ := store.Get(ctx, "t-1")
	assert.Empty(t, again.Steps)
}

func TestMemoryStore_UpdateErrorWritesNothing(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Create(ctx, domain.NewProgressTask("t-1", "u", "plan", nil, testNow)))

	_, err := store.Update(ctx, "t-1", func(task *domain.ProgressTask) error {
		task.Progress = 90
		return errors.New("rejected")
	})
	require.Error(t, err)

	got, _ := store.Get(ctx, "t-1")
	assert.Equal(t, 0, got.Progress)
}
