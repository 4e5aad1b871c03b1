package planner

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/alexanderramin/studyplan/internal/domain"
	"github.com/google/uuid"
)

// Hooks let the caller observe assembly without the planner depending on
// logging or progress tracking.
type Hooks struct {
	// SubjectSkipped is called when a subject contributes nothing to a
	// week, either for lack of content or because generation failed.
	SubjectSkipped func(subject string, weekIndex int, err error)

	// WeekDone is called after every subject of a week was assembled.
	WeekDone func(weekIndex, weeks int)
}

// PlanInput is everything needed to assemble a plan once content has
// been fetched.
type PlanInput struct {
	Student          *domain.StudentProfile
	OwnerID          string
	PlanType         domain.PlanType
	Focus            FocusSubjectSet
	Allocation       SubjectTimeAllocation
	Period           domain.LearningPeriod
	DailyMinutes     int
	ContentBySubject map[string][]domain.ContentItem
	Now              time.Time
}

// Assembler builds a LearningPlan week by week from generator drafts.
type Assembler struct {
	gen   DraftGenerator
	hooks Hooks
}

func NewAssembler(gen DraftGenerator, hooks Hooks) *Assembler {
	return &Assembler{gen: gen, hooks: hooks}
}

// Assemble walks every week and every focus subject, offsets week-local
// days by 7*weekIndex and numbers the result 1..N in (day, emission)
// order. Subjects without content or whose generation fails are skipped
// for that week. It fails only when no activity at all was produced.
func (a *Assembler) Assemble(ctx context.Context, in PlanInput) (*domain.LearningPlan, error) {
	if in.Student == nil {
		return nil, domain.NewValidationError("assemble plan", "student is required")
	}
	if len(in.Focus.Focus) == 0 {
		return nil, domain.NewValidationError("assemble plan", "no focus subjects")
	}

	days := in.Period.Days()
	weeks := domain.WeeksIn(days)
	used := NewUsedContent()

	var all []domain.Activity
	var lastErr error
	for week := 0; week < weeks; week++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, subject := range in.Focus.Focus {
			candidates := in.ContentBySubject[subject]
			if len(candidates) == 0 {
				a.skipped(subject, week, fmt.Errorf("no content for %s", subject))
				continue
			}
			acts, err := AssembleWeek(ctx, a.gen, WeekInput{
				Student:        in.Student,
				Subject:        subject,
				Candidates:     candidates,
				SubjectMinutes: in.Allocation.Minutes(subject),
				DailyMinutes:   in.DailyMinutes,
				WeekIndex:      week,
			}, used)
			if err != nil {
				lastErr = err
				a.skipped(subject, week, err)
				continue
			}
			for _, act := range acts {
				act.Day += week * DaysPerWeek
				all = append(all, act)
			}
		}
		if a.hooks.WeekDone != nil {
			a.hooks.WeekDone(week, weeks)
		}
	}

	if len(all) == 0 {
		if lastErr == nil {
			lastErr = fmt.Errorf("no activities produced")
		}
		return nil, domain.NewCollaboratorError("assemble plan", lastErr)
	}

	NumberActivities(all)

	plan := &domain.LearningPlan{
		ID:         uuid.New().String(),
		StudentID:  in.Student.ID,
		OwnerID:    in.OwnerID,
		Activities: all,
		Status:     domain.StatusNotStarted,
		StartDate:  in.Now,
		EndDate:    in.Now.AddDate(0, 0, days),
		CreatedAt:  in.Now,
		UpdatedAt:  in.Now,
		Metadata: domain.PlanMetadata{
			PlanType:         in.PlanType,
			DailyMinutes:     in.DailyMinutes,
			FocusAreas:       copyList(in.Focus.Focus),
			InterestAreas:    copyList(in.Focus.Interest),
			StrengthAreas:    copyList(in.Focus.Strength),
			ImprovementAreas: copyList(in.Focus.Improvement),
			StudentProfileID: in.Student.ID,
			LearningPeriod:   in.Period,
			PeriodDays:       days,
		},
	}
	describePlan(plan, in)
	return plan, nil
}

// NumberActivities sorts by day, keeping emission order within a day, and
// assigns Order 1..N.
func NumberActivities(acts []domain.Activity) {
	sort.SliceStable(acts, func(i, j int) bool {
		return acts[i].Day < acts[j].Day
	})
	for i := range acts {
		acts[i].Order = i + 1
	}
}

func describePlan(plan *domain.LearningPlan, in PlanInput) {
	label := in.Period.Label()
	if in.PlanType == domain.PlanFocused && len(in.Focus.Focus) == 1 {
		subject := in.Focus.Focus[0]
		plan.Title = fmt.Sprintf("%s Learning Plan for %s", subject, label)
		plan.Description = fmt.Sprintf("A %s learning plan for %s spanning %d weeks", strings.ToLower(label), subject, domain.WeeksIn(in.Period.Days()))
		plan.Subject = subject
		plan.Topics = []string{subject}
		return
	}
	plan.Title = fmt.Sprintf("Balanced Learning Plan for %s - %s", in.Student.DisplayName(), label)
	plan.Description = fmt.Sprintf("A personalized %s learning plan with %d minutes of daily balanced study across multiple subjects.", label, in.DailyMinutes)
	plan.Subject = domain.MultipleSubjects
	plan.Topics = copyList(in.Focus.Focus)
}

func (a *Assembler) skipped(subject string, week int, err error) {
	if a.hooks.SubjectSkipped != nil {
		a.hooks.SubjectSkipped(subject, week, err)
	}
}

func copyList(in []string) []string {
	if in == nil {
		return []string{}
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
