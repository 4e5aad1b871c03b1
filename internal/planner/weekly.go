package planner

import (
	"context"
	"fmt"
	"math"

	"github.com/alexanderramin/studyplan/internal/domain"
	"github.com/google/uuid"
)

const (
	// DaysPerWeek is the length of the block a generator plans at once.
	DaysPerWeek = 7

	// minFreshPool is the smallest unused candidate pool offered to the
	// generator before it falls back to the full candidate list.
	minFreshPool = 3

	defaultActivityMinutes = 20
)

// DraftRequest asks a generator for one week of drafts for a subject.
type DraftRequest struct {
	Student    *domain.StudentProfile
	Subject    string
	Candidates []domain.ContentItem
	Days       int
	Weekly     bool
	WeekIndex  int
}

// DraftGenerator produces week-local activity drafts (day 1..Days).
type DraftGenerator interface {
	Generate(ctx context.Context, req DraftRequest) ([]domain.ActivityDraft, error)
}

// WeekInput is one (week, subject) cell of a plan.
type WeekInput struct {
	Student        *domain.StudentProfile
	Subject        string
	Candidates     []domain.ContentItem
	SubjectMinutes int
	DailyMinutes   int
	WeekIndex      int
}

// ActivityCount is the number of activities a subject gets in one week:
// its share of the daily budget spread over seven days, between 1 and 7.
// Halves round to even.
func ActivityCount(subjectMinutes, dailyMinutes int) int {
	if dailyMinutes <= 0 {
		return 1
	}
	n := int(math.RoundToEven(DaysPerWeek * float64(subjectMinutes) / float64(dailyMinutes)))
	return clamp(n, 1, DaysPerWeek)
}

// FreshPool returns the candidates not yet used, or every candidate when
// fewer than three remain unused.
func FreshPool(candidates []domain.ContentItem, used *UsedContent) []domain.ContentItem {
	var fresh []domain.ContentItem
	for _, c := range candidates {
		if !used.IsUsed(c.ID) {
			fresh = append(fresh, c)
		}
	}
	if len(fresh) < minFreshPool {
		return candidates
	}
	return fresh
}

// AssembleWeek turns one generator call into week-local activities for a
// subject. Days are 1..7; the caller applies the week offset.
func AssembleWeek(ctx context.Context, gen DraftGenerator, in WeekInput, used *UsedContent) ([]domain.Activity, error) {
	if len(in.Candidates) == 0 {
		return nil, nil
	}

	drafts, err := gen.Generate(ctx, DraftRequest{
		Student:    in.Student,
		Subject:    in.Subject,
		Candidates: FreshPool(in.Candidates, used),
		Days:       DaysPerWeek,
		Weekly:     true,
		WeekIndex:  in.WeekIndex,
	})
	if err != nil {
		return nil, fmt.Errorf("generating %s week %d: %w", in.Subject, in.WeekIndex+1, err)
	}

	count := ActivityCount(in.SubjectMinutes, in.DailyMinutes)
	if count > len(drafts) {
		count = len(drafts)
	}
	selected := SelectDrafts(drafts, count)

	byID := make(map[string]domain.ContentItem, len(in.Candidates))
	for _, c := range in.Candidates {
		byID[c.ID] = c
	}

	// A draft keeps the content it names only while that item is among the
	// least used; otherwise it is reassigned so reuse stays balanced.
	activities := make([]domain.Activity, 0, len(selected))
	for _, d := range selected {
		var content domain.ContentItem
		if c, ok := claimable(d, byID, in.Candidates, used); ok {
			content = c
		} else {
			content = pickContent(in.Candidates, used)
		}
		used.MarkUsed(content.ID)
		activities = append(activities, buildActivity(in, d, content))
	}
	return activities, nil
}

func claimable(d domain.ActivityDraft, byID map[string]domain.ContentItem, candidates []domain.ContentItem, used *UsedContent) (domain.ContentItem, bool) {
	if !d.HasContent() {
		return domain.ContentItem{}, false
	}
	c, ok := byID[*d.ContentID]
	if !ok || used.Count(c.ID) > minUse(candidates, used) {
		return domain.ContentItem{}, false
	}
	return c, true
}

func minUse(candidates []domain.ContentItem, used *UsedContent) int {
	m := used.Count(candidates[0].ID)
	for _, c := range candidates[1:] {
		m = min(m, used.Count(c.ID))
	}
	return m
}

// SelectDrafts picks up to count drafts, taking at most one per day on the
// first pass and filling from the remainder on the second.
func SelectDrafts(drafts []domain.ActivityDraft, count int) []domain.ActivityDraft {
	if count <= 0 {
		return nil
	}
	taken := make([]bool, len(drafts))
	daysUsed := make(map[int]bool)
	var out []domain.ActivityDraft

	for i, d := range drafts {
		if len(out) >= count {
			break
		}
		if daysUsed[d.Day] {
			continue
		}
		daysUsed[d.Day] = true
		taken[i] = true
		out = append(out, d)
	}

	for i, d := range drafts {
		if len(out) >= count {
			break
		}
		if taken[i] {
			continue
		}
		taken[i] = true
		out = append(out, d)
	}

	return out
}

// pickContent prefers the first unused candidate. Once every candidate has
// been used it reuses the least-used one, earliest on ties.
func pickContent(candidates []domain.ContentItem, used *UsedContent) domain.ContentItem {
	best := 0
	for i := 1; i < len(candidates); i++ {
		if used.Count(candidates[i].ID) < used.Count(candidates[best].ID) {
			best = i
		}
	}
	return candidates[best]
}

func buildActivity(in WeekInput, d domain.ActivityDraft, content domain.ContentItem) domain.Activity {
	contentID := content.ID
	url := d.ContentURL
	if url == "" || !d.HasContent() || *d.ContentID != content.ID {
		url = content.URL
	}

	duration := d.DurationMinutes
	if duration <= 0 {
		duration = content.DurationMinutes
	}
	if duration <= 0 {
		duration = defaultActivityMinutes
	}
	if in.SubjectMinutes > 0 && duration > in.SubjectMinutes {
		duration = in.SubjectMinutes
	}

	benefit := d.LearningBenefit
	if benefit == "" {
		benefit = LearningBenefit(in.Subject, content.Title)
	}

	title := d.Title
	if title == "" {
		title = content.Title
	}

	return domain.Activity{
		ID:              uuid.New().String(),
		Title:           in.Subject + ": " + title,
		Description:     domain.CoalesceStr(d.Description, "Complete this activity"),
		ContentID:       &contentID,
		ContentURL:      url,
		DurationMinutes: duration,
		Order:           d.Order,
		Day:             clamp(d.Day, 1, DaysPerWeek),
		Status:          domain.StatusNotStarted,
		LearningBenefit: benefit,
		Metadata: domain.ActivityMetadata{
			Subject:     in.Subject,
			Week:        in.WeekIndex + 1,
			ContentInfo: content.Info(),
		},
	}
}

// LearningBenefit is the default benefit text for an activity.
func LearningBenefit(subject, contentTitle string) string {
	if contentTitle == "" {
		return fmt.Sprintf("This activity helps develop %s skills by using educational resources tailored to the student's learning style and needs.", subject)
	}
	return fmt.Sprintf("This activity helps develop %s skills using %s. The educational resource is tailored to the student's learning style and grade level, providing an effective learning experience.", subject, contentTitle)
}
