package domain

import "time"

// StudentProfile is the subset of a student record used for planning.
type StudentProfile struct {
	ID                  string
	OwnerID             string
	FullName            string
	GradeLevel          *int
	LearningStyle       LearningStyle
	Interests           []string
	Strengths           []string
	AreasForImprovement []string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// DisplayName falls back to the id when the profile has no name.
func (s *StudentProfile) DisplayName() string {
	return CoalesceStr(s.FullName, s.ID)
}
