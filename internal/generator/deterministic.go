// Package generator drafts one week of activities for a subject, either
// through a language model or deterministically from the candidates.
package generator

import (
	"context"
	"fmt"

	"github.com/alexanderramin/studyplan/internal/domain"
	"github.com/alexanderramin/studyplan/internal/planner"
)

const defaultDurationMinutes = 20

// DeterministicGenerator emits one draft per day, cycling through the
// candidates. It never fails and is used when no model is configured.
type DeterministicGenerator struct{}

var _ planner.DraftGenerator = DeterministicGenerator{}

func (DeterministicGenerator) Generate(_ context.Context, req planner.DraftRequest) ([]domain.ActivityDraft, error) {
	days := weekDays(req)
	drafts := make([]domain.ActivityDraft, 0, days)
	if len(req.Candidates) == 0 {
		return drafts, nil
	}
	for day := 1; day <= days; day++ {
		drafts = append(drafts, dayDraft(req.Subject, day, req.Candidates))
	}
	return drafts, nil
}

func weekDays(req planner.DraftRequest) int {
	if req.Weekly || req.Days <= 0 {
		return planner.DaysPerWeek
	}
	return req.Days
}

// dayDraft is the stand-in activity for a day: day 1 takes the first
// candidate, day 2 the second, wrapping around.
func dayDraft(subject string, day int, candidates []domain.ContentItem) domain.ActivityDraft {
	c := candidates[(day-1)%len(candidates)]
	id := c.ID
	return domain.ActivityDraft{
		Title:           fmt.Sprintf("Day %d: %s", day, c.Title),
		Description:     "Study the material: " + c.Description,
		Day:             day,
		Order:           1,
		ContentID:       &id,
		ContentURL:      c.URL,
		DurationMinutes: durationOr(c.DurationMinutes, defaultDurationMinutes),
		LearningBenefit: dayBenefit(subject, day),
	}
}

func dayBenefit(subject string, day int) string {
	return fmt.Sprintf("This activity helps build skills in %s and supports the learning progression for day %d.", subject, day)
}

func durationOr(v, fallback int) int {
	if v > 0 {
		return v
	}
	return fallback
}
