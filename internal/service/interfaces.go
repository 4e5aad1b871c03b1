package service

import (
	"context"
	"time"

	"github.com/alexanderramin/studyplan/internal/domain"
	"github.com/alexanderramin/studyplan/internal/export"
	"github.com/alexanderramin/studyplan/internal/jobs"
)

// TaskTypeProfilePlan is the task type recorded for profile-based builds.
const TaskTypeProfilePlan = "profile_based_learning_plan"

// CreatePlanRequest is the caller's input for a profile-based plan.
// Empty LearningPeriod and PlanType take their defaults; a zero
// DailyMinutes takes the configured default.
type CreatePlanRequest struct {
	StudentProfileID string `json:"student_profile_id"`
	LearningPeriod   string `json:"learning_period"`
	DailyMinutes     int    `json:"daily_minutes"`
	PlanType         string `json:"plan_type"`
	Subject          string `json:"subject,omitempty"`
}

type PlanService interface {
	// CreateProfileBasedPlan validates req, registers a task and queues the
	// build. It returns the task id without waiting for the build.
	CreateProfileBasedPlan(ctx context.Context, ownerID string, req CreatePlanRequest) (string, error)

	// BuildPlan runs the build for an existing task and leaves the task
	// COMPLETED or FAILED.
	BuildPlan(ctx context.Context, taskID, ownerID string, req CreatePlanRequest) (*domain.LearningPlan, error)

	Get(ctx context.Context, planID, ownerID string) (*domain.LearningPlan, error)
	List(ctx context.Context, ownerID, studentID string) ([]*domain.LearningPlan, error)
	Delete(ctx context.Context, planID, ownerID string) error
	Export(ctx context.Context, planID, ownerID string, format export.Format) (*export.Artifact, error)
}

type ActivityService interface {
	UpdateStatus(ctx context.Context, planID, ownerID, activityID string, status domain.ActivityStatus, completedAt *time.Time) (*domain.StatusResult, error)
}

type TaskService interface {
	Get(ctx context.Context, taskID, userID string) (*domain.ProgressTask, error)
	List(ctx context.Context, userID string) ([]*domain.ProgressTask, error)
}

type StudentService interface {
	Create(ctx context.Context, s *domain.StudentProfile) error
	Get(ctx context.Context, id, ownerID string) (*domain.StudentProfile, error)
	List(ctx context.Context, ownerID string) ([]*domain.StudentProfile, error)
	Update(ctx context.Context, s *domain.StudentProfile) error
	Delete(ctx context.Context, id, ownerID string) error
}

// SubjectContent is the candidate list chosen for one subject and the
// tier that supplied it.
type SubjectContent struct {
	Subject string
	Items   []domain.ContentItem
	Tier    domain.ContentTier
}

// FetchProgress receives per-subject fetch events. Calls are serialized.
// Any field may be nil.
type FetchProgress struct {
	Started func(index int, subject string)
	Tier    func(index int, subject string, tier domain.ContentTier)
	Done    func(done int)
}

type ContentService interface {
	// FetchForSubject always yields content: primary catalog, then the
	// fallback table, then a synthesized item. It fails only when ctx ends.
	FetchForSubject(ctx context.Context, subject string, grade *int, count int) (SubjectContent, error)
	FetchAll(ctx context.Context, subjects []string, grade *int, count int, progress FetchProgress) (map[string]SubjectContent, error)
	Import(ctx context.Context, items []domain.ContentItem) (int, error)
	List(ctx context.Context, subject string) ([]domain.ContentItem, error)
	Counts(ctx context.Context) (map[string]int, error)
}

// JobQueue accepts background work. *jobs.Pool satisfies it.
type JobQueue interface {
	Submit(job jobs.Job) error
}

// Recorder receives domain counters.
type Recorder interface {
	ContentTier(subject string, tier domain.ContentTier)
	ActivityUpdated(status domain.ActivityStatus)
}

type NoopRecorder struct{}

func (NoopRecorder) ContentTier(string, domain.ContentTier) {}
func (NoopRecorder) ActivityUpdated(domain.ActivityStatus)  {}
