package planner

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/alexanderramin/studyplan/internal/domain"
)

// stubGenerator returns one draft per entry of days, without content ids
// unless withContent is set.
type stubGenerator struct {
	mu          sync.Mutex
	days        []int
	withContent bool
	failFor     map[string]bool
	requests    []DraftRequest
}

func newStubGenerator(days ...int) *stubGenerator {
	if len(days) == 0 {
		days = []int{1, 2, 3, 4, 5, 6, 7}
	}
	return &stubGenerator{days: days, failFor: map[string]bool{}}
}

func (g *stubGenerator) Generate(_ context.Context, req DraftRequest) ([]domain.ActivityDraft, error) {
	g.mu.Lock()
	g.requests = append(g.requests, req)
	g.mu.Unlock()

	if g.failFor[req.Subject] {
		return nil, errors.New("generator offline")
	}
	drafts := make([]domain.ActivityDraft, 0, len(g.days))
	for i, d := range g.days {
		draft := domain.ActivityDraft{
			Title:           fmt.Sprintf("Lesson %d", i+1),
			Description:     "Work through the material",
			Day:             d,
			Order:           1,
			DurationMinutes: 15,
		}
		if g.withContent && len(req.Candidates) > 0 {
			id := req.Candidates[i%len(req.Candidates)].ID
			draft.ContentID = &id
		}
		drafts = append(drafts, draft)
	}
	return drafts, nil
}

func contentFor(subject string, n int) []domain.ContentItem {
	items := make([]domain.ContentItem, n)
	for i := range items {
		items[i] = domain.ContentItem{
			ID:              fmt.Sprintf("%s-%02d", subject, i+1),
			Title:           fmt.Sprintf("%s resource %d", subject, i+1),
			Description:     "A resource",
			Subject:         subject,
			ContentType:     domain.ContentArticle,
			DifficultyLevel: domain.DifficultyBeginner,
			GradeLevels:     []int{7, 8},
			URL:             fmt.Sprintf("https://example.org/%s/%d", subject, i+1),
			DurationMinutes: 25,
		}
	}
	return items
}

func testStudent() *domain.StudentProfile {
	grade := 8
	return &domain.StudentProfile{
		ID:                  "student-1",
		FullName:            "Ada Example",
		GradeLevel:          &grade,
		Interests:           []string{"Science"},
		AreasForImprovement: []string{"Algebra"},
	}
}
