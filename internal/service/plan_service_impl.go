package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/studyplan/internal/domain"
	"github.com/alexanderramin/studyplan/internal/export"
	"github.com/alexanderramin/studyplan/internal/jobs"
	"github.com/alexanderramin/studyplan/internal/logger"
	"github.com/alexanderramin/studyplan/internal/planner"
	"github.com/alexanderramin/studyplan/internal/progress"
	"github.com/alexanderramin/studyplan/internal/repository"
)

const (
	DefaultDailyMinutes = 60
	MaxDailyMinutes     = 24 * 60

	// Candidate caps per subject; never more than three a day for the
	// whole period.
	maxContentBalanced = 30
	maxContentFocused  = 40
)

// PlanConfig holds plan-build defaults.
type PlanConfig struct {
	DefaultDailyMinutes int
	MaxContentBalanced  int
	MaxContentFocused   int
	ExportPrefix        string
}

func (c PlanConfig) withDefaults() PlanConfig {
	if c.DefaultDailyMinutes <= 0 {
		c.DefaultDailyMinutes = DefaultDailyMinutes
	}
	if c.MaxContentBalanced <= 0 {
		c.MaxContentBalanced = maxContentBalanced
	}
	if c.MaxContentFocused <= 0 {
		c.MaxContentFocused = maxContentFocused
	}
	return c
}

// PlanDeps are the collaborators of the plan service. Sink may be nil, in
// which case exports are only returned to the caller.
type PlanDeps struct {
	Plans     repository.PlanRepo
	Students  repository.StudentProfileRepo
	Content   ContentService
	Tracker   *progress.Tracker
	Generator planner.DraftGenerator
	Queue     JobQueue
	Sink      export.Sink
	Log       *logger.Logger
	Clock     func() time.Time
}

type planService struct {
	deps     PlanDeps
	cfg      PlanConfig
	log      *logger.Logger
	now      func() time.Time
	observer UseCaseObserver
}

func NewPlanService(deps PlanDeps, cfg PlanConfig, observers ...UseCaseObserver) PlanService {
	log := deps.Log
	if log == nil {
		log = logger.NewNop()
	}
	now := deps.Clock
	if now == nil {
		now = time.Now
	}
	return &planService{
		deps:     deps,
		cfg:      cfg.withDefaults(),
		log:      log.With("component", "plan"),
		now:      now,
		observer: useCaseObserverOrNoop(observers),
	}
}

// planParams is a validated CreatePlanRequest.
type planParams struct {
	StudentID    string
	Period       domain.LearningPeriod
	DailyMinutes int
	PlanType     domain.PlanType
	Subject      string
}

func (s *planService) validate(req CreatePlanRequest) (planParams, error) {
	const op = "create plan"
	p := planParams{StudentID: strings.TrimSpace(req.StudentProfileID)}
	if p.StudentID == "" {
		return p, domain.NewValidationError(op, "student_profile_id is required")
	}

	period, err := domain.ParseLearningPeriod(req.LearningPeriod)
	if err != nil {
		return p, err
	}
	p.Period = period

	switch {
	case req.DailyMinutes == 0:
		p.DailyMinutes = s.cfg.DefaultDailyMinutes
	case req.DailyMinutes < 0, req.DailyMinutes > MaxDailyMinutes:
		return p, domain.NewValidationError(op, fmt.Sprintf("daily_minutes must be between 1 and %d", MaxDailyMinutes))
	default:
		p.DailyMinutes = req.DailyMinutes
	}

	pt, err := domain.ParsePlanType(req.PlanType)
	if err != nil {
		return p, err
	}
	p.PlanType = pt

	if pt == domain.PlanFocused {
		if strings.TrimSpace(req.Subject) == "" {
			return p, domain.NewValidationError(op, "subject is required for focused plans")
		}
		p.Subject = planner.CanonicalSubject(req.Subject)
	}
	return p, nil
}

func (s *planService) CreateProfileBasedPlan(ctx context.Context, ownerID string, req CreatePlanRequest) (taskID string, err error) {
	startedAt := time.Now()
	fields := map[string]any{"student_profile_id": req.StudentProfileID}
	defer func() { observe(ctx, s.observer, "create-plan", startedAt, fields, err) }()

	params, err := s.validate(req)
	if err != nil {
		return "", err
	}

	taskID, err = s.deps.Tracker.CreateTask(ctx, ownerID, TaskTypeProfilePlan, map[string]any{
		"student_profile_id": params.StudentID,
		"learning_period":    string(params.Period),
		"daily_minutes":      params.DailyMinutes,
		"plan_type":          string(params.PlanType),
		"subject":            params.Subject,
	})
	if err != nil {
		return "", domain.NewPersistenceError("create plan task", err)
	}
	fields["task_id"] = taskID

	err = s.deps.Queue.Submit(jobs.Job{
		Name: "build-plan",
		ID:   taskID,
		Run: func(ctx context.Context) error {
			_, err := s.build(ctx, taskID, ownerID, params)
			return err
		},
		Fail: func(ctx context.Context, err error, stack string) {
			_ = s.deps.Tracker.FailWithStack(context.WithoutCancel(ctx), taskID, err, stack)
		},
	})
	if err != nil {
		_ = s.deps.Tracker.Fail(context.WithoutCancel(ctx), taskID, err)
		return "", domain.NewCollaboratorError("queue plan build", err)
	}
	return taskID, nil
}

func (s *planService) BuildPlan(ctx context.Context, taskID, ownerID string, req CreatePlanRequest) (*domain.LearningPlan, error) {
	params, err := s.validate(req)
	if err != nil {
		_ = s.deps.Tracker.Fail(context.WithoutCancel(ctx), taskID, err)
		return nil, err
	}
	return s.build(ctx, taskID, ownerID, params)
}

// build runs the pipeline and leaves the task COMPLETED or FAILED.
func (s *planService) build(ctx context.Context, taskID, ownerID string, p planParams) (plan *domain.LearningPlan, err error) {
	startedAt := time.Now()
	fields := map[string]any{"task_id": taskID, "plan_type": string(p.PlanType)}
	defer func() {
		if err != nil {
			_ = s.deps.Tracker.Fail(context.WithoutCancel(ctx), taskID, err)
		}
		observe(ctx, s.observer, "build-plan", startedAt, fields, err)
	}()

	m := progress.Milestones{Weeks: p.Period.Weeks()}
	step := func(pct int, name, msg string) {
		_ = s.deps.Tracker.Step(ctx, taskID, pct, name, msg)
	}

	step(m.Validate(), progress.StepValidate, "Validating input parameters")
	step(m.StudentLoading(), progress.StepStudentData, "Retrieving student profile data")
	student, err := s.deps.Students.GetByID(ctx, p.StudentID, ownerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NewNotFoundError("build plan", fmt.Sprintf("student profile %s not found", p.StudentID))
		}
		return nil, domain.NewCollaboratorError("load student profile", err)
	}
	step(m.StudentLoaded(), progress.StepStudentData, "Student profile data retrieved")

	focus := planner.Resolve(student.Interests, student.Strengths, student.AreasForImprovement)
	var alloc planner.SubjectTimeAllocation
	if p.PlanType == domain.PlanFocused {
		focus.Focus = []string{p.Subject}
		alloc = planner.SubjectTimeAllocation{{Subject: p.Subject, MinutesPerDay: p.DailyMinutes}}
	} else {
		alloc = planner.AllocateFor(focus, p.DailyMinutes)
	}
	m.Subjects = len(focus.Focus)
	fields["subjects"] = m.Subjects
	step(m.FocusResolved(), progress.StepFocus, fmt.Sprintf("Identified %d focus subjects", m.Subjects))
	step(m.AllocationDone(), progress.StepAllocation, "Allocated daily study time across subjects")

	content, err := s.deps.Content.FetchAll(ctx, focus.Focus, student.GradeLevel, s.contentCount(p), FetchProgress{
		Started: func(i int, subject string) {
			step(m.FetchStarted(i), progress.StepContent, "Fetching content for "+subject)
		},
		Tier: func(i int, subject string, tier domain.ContentTier) {
			step(m.TierReached(i, tier), progress.StepContent, fmt.Sprintf("Using %s content for %s", tier, subject))
		},
		Done: func(done int) {
			step(m.SubjectsFetched(done), progress.StepContent, fmt.Sprintf("Content ready for %d of %d subjects", done, m.Subjects))
		},
	})
	if err != nil {
		return nil, err
	}
	bySubject := make(map[string][]domain.ContentItem, len(content))
	for subject, sc := range content {
		bySubject[subject] = sc.Items
	}

	assembler := planner.NewAssembler(s.deps.Generator, planner.Hooks{
		SubjectSkipped: func(subject string, week int, err error) {
			s.log.Warn("subject skipped", "task_id", taskID, "subject", subject, "week", week+1, "error", err)
		},
		WeekDone: func(week, weeks int) {
			step(m.WeekGenerated(week), progress.StepGenerate, fmt.Sprintf("Generated activities for week %d of %d", week+1, weeks))
		},
	})
	plan, err = assembler.Assemble(ctx, planner.PlanInput{
		Student:          student,
		OwnerID:          ownerID,
		PlanType:         p.PlanType,
		Focus:            focus,
		Allocation:       alloc,
		Period:           p.Period,
		DailyMinutes:     p.DailyMinutes,
		ContentBySubject: bySubject,
		Now:              s.now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	step(m.Finalizing(), progress.StepFinalize, "Finalizing learning plan")
	plan.SortActivities()
	fields["activities"] = len(plan.Activities)

	step(m.Saving(), progress.StepSave, "Saving learning plan")
	if err := s.deps.Plans.Save(ctx, plan); err != nil {
		return nil, domain.NewPersistenceError("save plan", err)
	}
	fields["plan_id"] = plan.ID

	result := map[string]any{
		"plan_id":        plan.ID,
		"activity_count": len(plan.Activities),
		"title":          plan.Title,
	}
	if cerr := s.deps.Tracker.Complete(ctx, taskID, "Learning plan created successfully", result); cerr != nil {
		// One retry detached from ctx; a task must not stay IN_PROGRESS.
		cerr = s.deps.Tracker.Complete(context.WithoutCancel(ctx), taskID, "Learning plan created successfully", result)
		if cerr != nil && !errors.Is(cerr, progress.ErrTerminal) {
			return nil, domain.NewPersistenceError("complete plan task", cerr)
		}
	}
	s.log.Info("plan created", "task_id", taskID, "plan_id", plan.ID, "activities", len(plan.Activities))
	return plan, nil
}

// contentCount asks for up to three items a day over the whole period,
// capped per plan type.
func (s *planService) contentCount(p planParams) int {
	n := p.Period.Weeks() * planner.DaysPerWeek * 3
	limit := s.cfg.MaxContentBalanced
	if p.PlanType == domain.PlanFocused {
		limit = s.cfg.MaxContentFocused
	}
	return min(n, limit)
}

func (s *planService) Get(ctx context.Context, planID, ownerID string) (*domain.LearningPlan, error) {
	return s.deps.Plans.Get(ctx, planID, ownerID)
}

func (s *planService) List(ctx context.Context, ownerID, studentID string) ([]*domain.LearningPlan, error) {
	return s.deps.Plans.List(ctx, repository.PlanFilter{OwnerID: ownerID, StudentID: studentID})
}

func (s *planService) Delete(ctx context.Context, planID, ownerID string) (err error) {
	startedAt := time.Now()
	defer func() { observe(ctx, s.observer, "delete-plan", startedAt, map[string]any{"plan_id": planID}, err) }()
	return s.deps.Plans.Delete(ctx, planID, ownerID)
}

// Export renders the plan and, when a sink is configured, stores a copy.
// A failed upload is logged; the rendered artifact is still returned.
func (s *planService) Export(ctx context.Context, planID, ownerID string, format export.Format) (a *export.Artifact, err error) {
	startedAt := time.Now()
	fields := map[string]any{"plan_id": planID, "format": string(format)}
	defer func() { observe(ctx, s.observer, "export-plan", startedAt, fields, err) }()

	plan, err := s.deps.Plans.Get(ctx, planID, ownerID)
	if err != nil {
		return nil, err
	}
	a, err = export.Render(plan, format)
	if err != nil {
		return nil, err
	}
	if s.deps.Sink == nil {
		return a, nil
	}

	prefix := plan.OwnerID
	if s.cfg.ExportPrefix != "" {
		prefix = s.cfg.ExportPrefix + "/" + prefix
	}
	if err := export.Store(ctx, s.deps.Sink, prefix, a); err != nil {
		s.log.Warn("storing export failed", "plan_id", planID, "error", err)
		return a, nil
	}
	fields["location"] = a.Location
	return a, nil
}
