package testutil

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/alexanderramin/studyplan/internal/domain"
)

var contentCounter atomic.Int64

// Student options
type StudentOption func(*domain.StudentProfile)

func WithOwner(ownerID string) StudentOption {
	return func(s *domain.StudentProfile) {
		s.OwnerID = ownerID
	}
}

func WithGrade(g int) StudentOption {
	return func(s *domain.StudentProfile) {
		s.GradeLevel = &g
	}
}

func WithInterests(v ...string) StudentOption {
	return func(s *domain.StudentProfile) {
		s.Interests = v
	}
}

func WithStrengths(v ...string) StudentOption {
	return func(s *domain.StudentProfile) {
		s.Strengths = v
	}
}

func WithImprovementAreas(v ...string) StudentOption {
	return func(s *domain.StudentProfile) {
		s.AreasForImprovement = v
	}
}

func WithLearningStyle(ls domain.LearningStyle) StudentOption {
	return func(s *domain.StudentProfile) {
		s.LearningStyle = ls
	}
}

func NewTestStudent(name string, opts ...StudentOption) *domain.StudentProfile {
	now := time.Now().UTC()
	grade := 8
	s := &domain.StudentProfile{
		ID:                  uuid.New().String(),
		OwnerID:             "owner-1",
		FullName:            name,
		GradeLevel:          &grade,
		LearningStyle:       domain.StyleVisual,
		Interests:           []string{},
		Strengths:           []string{},
		AreasForImprovement: []string{},
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Content options
type ContentOption func(*domain.ContentItem)

func WithGrades(g ...int) ContentOption {
	return func(c *domain.ContentItem) {
		c.GradeLevels = g
	}
}

func WithContentType(ct domain.ContentType) ContentOption {
	return func(c *domain.ContentItem) {
		c.ContentType = ct
	}
}

func WithDuration(min int) ContentOption {
	return func(c *domain.ContentItem) {
		c.DurationMinutes = min
	}
}

func WithContentID(id string) ContentOption {
	return func(c *domain.ContentItem) {
		c.ID = id
	}
}

func NewTestContent(subject, title string, opts ...ContentOption) *domain.ContentItem {
	n := contentCounter.Add(1)
	c := &domain.ContentItem{
		ID:              fmt.Sprintf("content-%04d", n),
		Title:           title,
		Description:     "About " + title,
		Subject:         subject,
		ContentType:     domain.ContentArticle,
		DifficultyLevel: domain.DifficultyBeginner,
		GradeLevels:     []int{7, 8, 9},
		URL:             fmt.Sprintf("https://example.org/content/%d", n),
		DurationMinutes: 25,
		Topics:          []string{subject},
		Keywords:        []string{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Plan options
type PlanOption func(*domain.LearningPlan)

func WithPlanOwner(ownerID string) PlanOption {
	return func(p *domain.LearningPlan) {
		p.OwnerID = ownerID
	}
}

func WithPlanStudent(studentID string) PlanOption {
	return func(p *domain.LearningPlan) {
		p.StudentID = studentID
		p.Metadata.StudentProfileID = studentID
	}
}

func WithPlanType(pt domain.PlanType) PlanOption {
	return func(p *domain.LearningPlan) {
		p.Metadata.PlanType = pt
	}
}

func WithCreatedAt(t time.Time) PlanOption {
	return func(p *domain.LearningPlan) {
		p.CreatedAt = t
		p.UpdatedAt = t
		p.StartDate = t
	}
}

// NewTestPlan builds a NOT_STARTED plan with n activities, one per day.
func NewTestPlan(n int, opts ...PlanOption) *domain.LearningPlan {
	now := time.Now().UTC().Truncate(time.Second)
	p := &domain.LearningPlan{
		ID:          uuid.New().String(),
		StudentID:   "student-1",
		OwnerID:     "owner-1",
		Title:       "Balanced Learning Plan for Test - One Week",
		Description: "A test plan",
		Subject:     domain.MultipleSubjects,
		Topics:      []string{"Mathematics"},
		Activities:  make([]domain.Activity, 0, n),
		Status:      domain.StatusNotStarted,
		StartDate:   now,
		EndDate:     now.AddDate(0, 0, 7),
		CreatedAt:   now,
		UpdatedAt:   now,
		Metadata: domain.PlanMetadata{
			PlanType:         domain.PlanBalanced,
			DailyMinutes:     60,
			FocusAreas:       []string{"Mathematics"},
			StudentProfileID: "student-1",
			LearningPeriod:   domain.PeriodOneWeek,
			PeriodDays:       7,
		},
	}
	for i := 0; i < n; i++ {
		p.Activities = append(p.Activities, domain.Activity{
			ID:              fmt.Sprintf("act-%d", i+1),
			Title:           fmt.Sprintf("Mathematics: Lesson %d", i+1),
			Description:     "Practice",
			DurationMinutes: 20,
			Order:           i + 1,
			Day:             i%7 + 1,
			Status:          domain.StatusNotStarted,
			Metadata:        domain.ActivityMetadata{Subject: "Mathematics", Week: 1},
		})
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}
