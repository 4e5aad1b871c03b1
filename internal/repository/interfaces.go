package repository

import (
	"context"
	"fmt"

	"github.com/alexanderramin/studyplan/internal/domain"
)

// ErrNotFound is returned when a row does not exist or is not visible to
// the requesting owner. It matches domain.ErrNotFound.
var ErrNotFound = fmt.Errorf("record %w", domain.ErrNotFound)

// PlanFilter narrows List. Empty fields match everything.
type PlanFilter struct {
	OwnerID   string
	StudentID string
	PlanType  domain.PlanType
}

// PlanRepo is the object store for learning plans. An empty ownerID
// skips the ownership check.
type PlanRepo interface {
	Save(ctx context.Context, p *domain.LearningPlan) error
	Get(ctx context.Context, planID, ownerID string) (*domain.LearningPlan, error)
	List(ctx context.Context, f PlanFilter) ([]*domain.LearningPlan, error)
	Delete(ctx context.Context, planID, ownerID string) error
}

// ContentRepo is the primary content catalog.
type ContentRepo interface {
	Fetch(ctx context.Context, subject string, gradeLevel *int, count int) ([]domain.ContentItem, error)
	Upsert(ctx context.Context, item *domain.ContentItem) error
	GetByID(ctx context.Context, id string) (*domain.ContentItem, error)
	ListBySubject(ctx context.Context, subject string) ([]domain.ContentItem, error)
	CountBySubject(ctx context.Context) (map[string]int, error)
	Delete(ctx context.Context, id string) error
}

// FallbackContentSource is consulted when the primary catalog has
// nothing for a subject.
type FallbackContentSource interface {
	FetchFallback(ctx context.Context, subject string) ([]domain.ContentItem, error)
}

type StudentProfileRepo interface {
	Create(ctx context.Context, s *domain.StudentProfile) error
	GetByID(ctx context.Context, id, ownerID string) (*domain.StudentProfile, error)
	List(ctx context.Context, ownerID string) ([]*domain.StudentProfile, error)
	Update(ctx context.Context, s *domain.StudentProfile) error
	Delete(ctx context.Context, id, ownerID string) error
}
