package service

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/studyplan/internal/db"
	"github.com/alexanderramin/studyplan/internal/domain"
	"github.com/alexanderramin/studyplan/internal/export"
	"github.com/alexanderramin/studyplan/internal/generator"
	"github.com/alexanderramin/studyplan/internal/jobs"
	"github.com/alexanderramin/studyplan/internal/planner"
	"github.com/alexanderramin/studyplan/internal/progress"
	"github.com/alexanderramin/studyplan/internal/repository"
	"github.com/alexanderramin/studyplan/internal/testutil"
)

var fixedNow = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

type testEnv struct {
	db       *sql.DB
	uow      db.UnitOfWork
	plans    *repository.SQLitePlanRepo
	students *repository.SQLiteStudentProfileRepo
	catalog  *repository.SQLiteContentRepo
	tracker  *progress.Tracker
	queue    *inlineQueue
	recorder *captureRecorder
	content  ContentService
	svc      PlanService
}

type envOption func(*PlanDeps, *contentSources)

// contentSources lets tests swap where content comes from.
type contentSources struct {
	Catalog  repository.ContentRepo
	Fallback repository.FallbackContentSource
}

func withGenerator(g planner.DraftGenerator) envOption {
	return func(d *PlanDeps, _ *contentSources) { d.Generator = g }
}

func withPlanRepo(r repository.PlanRepo) envOption {
	return func(d *PlanDeps, _ *contentSources) { d.Plans = r }
}

func withSink(s export.Sink) envOption {
	return func(d *PlanDeps, _ *contentSources) { d.Sink = s }
}

func withTaskStore(store progress.Store) envOption {
	return func(d *PlanDeps, _ *contentSources) {
		d.Tracker = progress.NewTracker(store, nil, progress.WithClock(func() time.Time { return fixedNow }))
	}
}

func withFallback(f repository.FallbackContentSource) envOption {
	return func(_ *PlanDeps, c *contentSources) { c.Fallback = f }
}

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()
	database := testutil.NewTestDB(t)
	env := &testEnv{
		db:       database,
		uow:      testutil.NewTestUoW(database),
		plans:    repository.NewSQLitePlanRepo(database),
		students: repository.NewSQLiteStudentProfileRepo(database),
		catalog:  repository.NewSQLiteContentRepo(database),
		tracker:  progress.NewTracker(progress.NewMemoryStore(), nil, progress.WithClock(func() time.Time { return fixedNow })),
		queue:    &inlineQueue{},
		recorder: &captureRecorder{},
	}

	deps := PlanDeps{
		Plans:     env.plans,
		Students:  env.students,
		Tracker:   env.tracker,
		Generator: generator.DeterministicGenerator{},
		Queue:     env.queue,
		Clock:     func() time.Time { return fixedNow },
	}
	cdeps := contentSources{Catalog: env.catalog, Fallback: repository.NewFallbackCatalog()}
	for _, opt := range opts {
		opt(&deps, &cdeps)
	}

	env.tracker = deps.Tracker

	env.content = NewContentService(cdeps.Catalog, cdeps.Fallback, env.uow, ContentConfig{}, nil, env.recorder)
	deps.Content = env.content
	env.svc = NewPlanService(deps, PlanConfig{})
	return env
}

func (e *testEnv) addStudent(t *testing.T, s *domain.StudentProfile) *domain.StudentProfile {
	t.Helper()
	require.NoError(t, e.students.Create(context.Background(), s))
	return s
}

func (e *testEnv) addContent(t *testing.T, items ...*domain.ContentItem) {
	t.Helper()
	for _, c := range items {
		require.NoError(t, e.catalog.Upsert(context.Background(), c))
	}
}

func (e *testEnv) task(t *testing.T, id string) *domain.ProgressTask {
	t.Helper()
	task, err := e.tracker.Get(context.Background(), id)
	require.NoError(t, err)
	return task
}

// completeFailsStore rejects every write that would mark a task
// COMPLETED.
type completeFailsStore struct {
	*progress.MemoryStore
}

func (s completeFailsStore) Update(ctx context.Context, id string, fn func(*domain.ProgressTask) error) (*domain.ProgressTask, error) {
	return s.MemoryStore.Update(ctx, id, func(task *domain.ProgressTask) error {
		if err := fn(task); err != nil {
			return err
		}
		if task.Status == domain.TaskCompleted {
			return errors.New("task store unavailable")
		}
		return nil
	})
}

// inlineQueue runs each job on Submit, the way a pool worker would.
type inlineQueue struct {
	mu   sync.Mutex
	jobs []string
	err  error
}

func (q *inlineQueue) Submit(job jobs.Job) error {
	if q.err != nil {
		return q.err
	}
	q.mu.Lock()
	q.jobs = append(q.jobs, job.ID)
	q.mu.Unlock()

	ctx := context.Background()
	if err := job.Run(ctx); err != nil && job.Fail != nil {
		job.Fail(ctx, err, "")
	}
	return nil
}

type captureRecorder struct {
	mu      sync.Mutex
	tiers   map[string]domain.ContentTier
	updates []domain.ActivityStatus
}

func (r *captureRecorder) ContentTier(subject string, tier domain.ContentTier) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.tiers == nil {
		r.tiers = map[string]domain.ContentTier{}
	}
	r.tiers[subject] = tier
}

func (r *captureRecorder) ActivityUpdated(status domain.ActivityStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, status)
}

func (r *captureRecorder) tier(subject string) domain.ContentTier {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tiers[subject]
}

type failingGenerator struct{}

func (failingGenerator) Generate(context.Context, planner.DraftRequest) ([]domain.ActivityDraft, error) {
	return nil, errors.New("model offline")
}

type failingSavePlanRepo struct {
	repository.PlanRepo
}

func (failingSavePlanRepo) Save(context.Context, *domain.LearningPlan) error {
	return errors.New("disk full")
}

// emptyFallback has no content for any subject.
type emptyFallback struct{}

func (emptyFallback) FetchFallback(context.Context, string) ([]domain.ContentItem, error) {
	return []domain.ContentItem{}, nil
}

type stubCatalog struct {
	repository.ContentRepo
	items []domain.ContentItem
	err   error
	delay time.Duration
}

func (c *stubCatalog) Fetch(ctx context.Context, _ string, _ *int, count int) ([]domain.ContentItem, error) {
	if c.delay > 0 {
		select {
		case <-time.After(c.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if c.err != nil {
		return nil, c.err
	}
	if count > 0 && len(c.items) > count {
		return c.items[:count], nil
	}
	return c.items, nil
}

type memorySink struct {
	mu   sync.Mutex
	puts map[string][]byte
	err  error
}

func (s *memorySink) Put(_ context.Context, key, _ string, data []byte) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.puts == nil {
		s.puts = map[string][]byte{}
	}
	s.puts[key] = data
	return "mem://" + key, nil
}

// recordingStore remembers the progress of every successful update.
type recordingStore struct {
	progress.Store
	mu       sync.Mutex
	progress []int
}

func (s *recordingStore) Update(ctx context.Context, id string, fn func(*domain.ProgressTask) error) (*domain.ProgressTask, error) {
	task, err := s.Store.Update(ctx, id, fn)
	if err == nil {
		s.mu.Lock()
		s.progress = append(s.progress, task.Progress)
		s.mu.Unlock()
	}
	return task, err
}

// onceFailingGenerator fails its first call and then drafts normally.
type onceFailingGenerator struct {
	mu     sync.Mutex
	called bool
}

func failingOnceGenerator() *onceFailingGenerator { return &onceFailingGenerator{} }

func (g *onceFailingGenerator) Generate(ctx context.Context, req planner.DraftRequest) ([]domain.ActivityDraft, error) {
	g.mu.Lock()
	first := !g.called
	g.called = true
	g.mu.Unlock()
	if first {
		return nil, errors.New("model warming up")
	}
	return generator.DeterministicGenerator{}.Generate(ctx, req)
}

type panicGenerator struct{}

func (panicGenerator) Generate(context.Context, planner.DraftRequest) ([]domain.ActivityDraft, error) {
	panic("generator exploded")
}
