package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alexanderramin/studyplan/internal/domain"
	"github.com/alexanderramin/studyplan/internal/repository"
)

const maxGradeLevel = 12

type studentService struct {
	students repository.StudentProfileRepo
}

func NewStudentService(students repository.StudentProfileRepo) StudentService {
	return &studentService{students: students}
}

func (s *studentService) Create(ctx context.Context, st *domain.StudentProfile) error {
	if err := validateStudent("create student", st); err != nil {
		return err
	}
	if st.ID == "" {
		st.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	st.CreatedAt = now
	st.UpdatedAt = now
	return s.students.Create(ctx, st)
}

func (s *studentService) Get(ctx context.Context, id, ownerID string) (*domain.StudentProfile, error) {
	return s.students.GetByID(ctx, id, ownerID)
}

func (s *studentService) List(ctx context.Context, ownerID string) ([]*domain.StudentProfile, error) {
	return s.students.List(ctx, ownerID)
}

func (s *studentService) Update(ctx context.Context, st *domain.StudentProfile) error {
	if err := validateStudent("update student", st); err != nil {
		return err
	}
	st.UpdatedAt = time.Now().UTC()
	return s.students.Update(ctx, st)
}

func (s *studentService) Delete(ctx context.Context, id, ownerID string) error {
	return s.students.Delete(ctx, id, ownerID)
}

func validateStudent(op string, st *domain.StudentProfile) error {
	if st == nil {
		return domain.NewValidationError(op, "student is required")
	}
	st.FullName = strings.TrimSpace(st.FullName)
	if st.OwnerID == "" {
		return domain.NewValidationError(op, "owner is required")
	}
	if st.FullName == "" {
		return domain.NewValidationError(op, "full name is required")
	}
	if g := st.GradeLevel; g != nil && (*g < 0 || *g > maxGradeLevel) {
		return domain.NewValidationError(op, "grade level must be between 0 and 12")
	}
	if st.LearningStyle == "" {
		st.LearningStyle = domain.StyleMixed
	}
	return nil
}
