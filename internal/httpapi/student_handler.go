package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/alexanderramin/studyplan/internal/domain"
	"github.com/alexanderramin/studyplan/internal/service"
)

type StudentHandler struct {
	students service.StudentService
}

func NewStudentHandler(students service.StudentService) *StudentHandler {
	return &StudentHandler{students: students}
}

type studentBody struct {
	FullName            string   `json:"full_name" binding:"required"`
	GradeLevel          *int     `json:"grade_level"`
	LearningStyle       string   `json:"learning_style"`
	Interests           []string `json:"interests"`
	Strengths           []string `json:"strengths"`
	AreasForImprovement []string `json:"areas_for_improvement"`
}

func (b studentBody) apply(s *domain.StudentProfile) {
	s.FullName = b.FullName
	s.GradeLevel = b.GradeLevel
	s.LearningStyle = domain.ParseLearningStyle(b.LearningStyle)
	s.Interests = b.Interests
	s.Strengths = b.Strengths
	s.AreasForImprovement = b.AreasForImprovement
}

type studentView struct {
	ID                  string    `json:"id"`
	FullName            string    `json:"full_name"`
	GradeLevel          *int      `json:"grade_level,omitempty"`
	LearningStyle       string    `json:"learning_style"`
	Interests           []string  `json:"interests"`
	Strengths           []string  `json:"strengths"`
	AreasForImprovement []string  `json:"areas_for_improvement"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

func toStudentView(s *domain.StudentProfile) studentView {
	return studentView{
		ID:                  s.ID,
		FullName:            s.FullName,
		GradeLevel:          s.GradeLevel,
		LearningStyle:       string(s.LearningStyle),
		Interests:           nonNil(s.Interests),
		Strengths:           nonNil(s.Strengths),
		AreasForImprovement: nonNil(s.AreasForImprovement),
		CreatedAt:           s.CreatedAt,
		UpdatedAt:           s.UpdatedAt,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// POST /api/students
func (h *StudentHandler) Create(c *gin.Context) {
	var body studentBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	st := &domain.StudentProfile{OwnerID: ownerID(c)}
	body.apply(st)
	if err := h.students.Create(c.Request.Context(), st); err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toStudentView(st))
}

// GET /api/students
func (h *StudentHandler) List(c *gin.Context) {
	list, err := h.students.List(c.Request.Context(), ownerID(c))
	if err != nil {
		respondDomainError(c, err)
		return
	}
	out := make([]studentView, 0, len(list))
	for _, s := range list {
		out = append(out, toStudentView(s))
	}
	c.JSON(http.StatusOK, gin.H{"students": out})
}

// GET /api/students/:id
func (h *StudentHandler) Get(c *gin.Context) {
	st, err := h.students.Get(c.Request.Context(), c.Param("id"), ownerID(c))
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toStudentView(st))
}

// PUT /api/students/:id
func (h *StudentHandler) Update(c *gin.Context) {
	var body studentBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	st, err := h.students.Get(c.Request.Context(), c.Param("id"), ownerID(c))
	if err != nil {
		respondDomainError(c, err)
		return
	}
	body.apply(st)
	if err := h.students.Update(c.Request.Context(), st); err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toStudentView(st))
}

// DELETE /api/students/:id
func (h *StudentHandler) Delete(c *gin.Context) {
	if err := h.students.Delete(c.Request.Context(), c.Param("id"), ownerID(c)); err != nil {
		respondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
