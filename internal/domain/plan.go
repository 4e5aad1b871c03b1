package domain

import (
	"fmt"
	"sort"
	"time"
)

// MultipleSubjects is the subject recorded on balanced plans.
const MultipleSubjects = "Multiple Subjects"

// ActivityMetadata carries the subject an activity belongs to and a
// snapshot of its linked content.
type ActivityMetadata struct {
	Subject     string       `json:"subject"`
	Week        int          `json:"week,omitempty"`
	ContentInfo *ContentInfo `json:"content_info,omitempty"`
}

type Activity struct {
	ID              string           `json:"id"`
	Title           string           `json:"title"`
	Description     string           `json:"description"`
	ContentID       *string          `json:"content_id,omitempty"`
	ContentURL      string           `json:"content_url,omitempty"`
	DurationMinutes int              `json:"duration_minutes"`
	Order           int              `json:"order"`
	Day             int              `json:"day"`
	Status          ActivityStatus   `json:"status"`
	CompletedAt     *time.Time       `json:"completed_at,omitempty"`
	LearningBenefit string           `json:"learning_benefit,omitempty"`
	Metadata        ActivityMetadata `json:"metadata"`
}

// SetStatus moves the activity to status. Entering COMPLETED stamps
// CompletedAt with completedAt, or now when nil; leaving COMPLETED clears it.
func (a *Activity) SetStatus(status ActivityStatus, completedAt *time.Time, now time.Time) {
	a.Status = status
	if status != StatusCompleted {
		a.CompletedAt = nil
		return
	}
	ts := now
	if completedAt != nil {
		ts = *completedAt
	}
	a.CompletedAt = &ts
}

type PlanMetadata struct {
	PlanType         PlanType       `json:"plan_type"`
	DailyMinutes     int            `json:"daily_minutes"`
	FocusAreas       []string       `json:"focus_areas"`
	InterestAreas    []string       `json:"interest_areas"`
	StrengthAreas    []string       `json:"strength_areas"`
	ImprovementAreas []string       `json:"improvement_areas"`
	StudentProfileID string         `json:"student_profile_id"`
	LearningPeriod   LearningPeriod `json:"learning_period"`
	PeriodDays       int            `json:"period_days"`
}

type LearningPlan struct {
	ID                 string         `json:"id"`
	StudentID          string         `json:"student_id"`
	OwnerID            string         `json:"owner_id"`
	Title              string         `json:"title"`
	Description        string         `json:"description"`
	Subject            string         `json:"subject"`
	Topics             []string       `json:"topics"`
	Activities         []Activity     `json:"activities"`
	Status             ActivityStatus `json:"status"`
	ProgressPercentage float64        `json:"progress_percentage"`
	StartDate          time.Time      `json:"start_date"`
	EndDate            time.Time      `json:"end_date"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	Metadata           PlanMetadata   `json:"metadata"`
}

// StatusResult is the derived plan state after an activity update.
type StatusResult struct {
	ProgressPercentage float64
	PlanStatus         ActivityStatus
}

// FindActivity returns the first activity with the given id.
func (p *LearningPlan) FindActivity(id string) (*Activity, bool) {
	for i := range p.Activities {
		if p.Activities[i].ID == id {
			return &p.Activities[i], true
		}
	}
	return nil, false
}

// CompletedCount returns how many activities are COMPLETED.
func (p *LearningPlan) CompletedCount() int {
	n := 0
	for _, a := range p.Activities {
		if a.Status == StatusCompleted {
			n++
		}
	}
	return n
}

// RecomputeProgress derives ProgressPercentage and Status from the
// activities. Only COMPLETED counts towards progress; an IN_PROGRESS
// activity is "not completed" here.
func (p *LearningPlan) RecomputeProgress() StatusResult {
	total := len(p.Activities)
	completed := p.CompletedCount()

	p.ProgressPercentage = 0
	if total > 0 {
		p.ProgressPercentage = 100 * float64(completed) / float64(total)
	}

	switch {
	case total > 0 && completed == total:
		p.Status = StatusCompleted
	case completed > 0:
		p.Status = StatusInProgress
	default:
		p.Status = StatusNotStarted
	}
	return StatusResult{ProgressPercentage: p.ProgressPercentage, PlanStatus: p.Status}
}

// UpdateActivityStatus applies a status change to one activity and
// recomputes the derived plan fields. The plan is left untouched when the
// activity does not exist.
func (p *LearningPlan) UpdateActivityStatus(activityID string, status ActivityStatus, completedAt *time.Time, now time.Time) (StatusResult, error) {
	if !status.Valid() {
		return StatusResult{}, NewValidationError("update activity status", fmt.Sprintf("invalid status %q", status))
	}
	a, ok := p.FindActivity(activityID)
	if !ok {
		return StatusResult{}, NewNotFoundError("update activity status", fmt.Sprintf("activity %s not in plan %s", activityID, p.ID))
	}
	a.SetStatus(status, completedAt, now)
	res := p.RecomputeProgress()
	p.UpdatedAt = now
	return res, nil
}

// SortActivities orders activities by (day, order) ascending.
func (p *LearningPlan) SortActivities() {
	sort.SliceStable(p.Activities, func(i, j int) bool {
		if p.Activities[i].Day != p.Activities[j].Day {
			return p.Activities[i].Day < p.Activities[j].Day
		}
		return p.Activities[i].Order < p.Activities[j].Order
	})
}

// ActivitiesOnDay returns the activities scheduled for an absolute day.
func (p *LearningPlan) ActivitiesOnDay(day int) []Activity {
	var out []Activity
	for _, a := range p.Activities {
		if a.Day == day {
			out = append(out, a)
		}
	}
	return out
}

// Subjects returns the distinct activity subjects in first-seen order.
func (p *LearningPlan) Subjects() []string {
	seen := make(map[string]bool)
	var out []string
	for _, a := range p.Activities {
		s := a.Metadata.Subject
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
