package progress

import "github.com/alexanderramin/studyplan/internal/domain"

// Step names recorded on plan-build tasks.
const (
	StepValidate    = "validating_input"
	StepStudentData = "retrieving_student_data"
	StepFocus       = "resolving_focus_subjects"
	StepAllocation  = "allocating_time"
	StepContent     = "fetching_content"
	StepGenerate    = "generating_activities"
	StepFinalize    = "finalizing_plan"
	StepSave        = "saving_plan"
	StepDone        = "completed"
)

const (
	contentStart  = 30
	contentSpan   = 25
	generateStart = 55
	generateSpan  = 25
)

// fetchStartFraction is where a subject sits within its content slice
// once its primary fetch has begun.
const fetchStartFraction = 0.4

var tierFraction = map[domain.ContentTier]float64{
	domain.TierPrimary:   0.5,
	domain.TierFallback:  0.6,
	domain.TierEmergency: 0.8,
}

// Milestones maps build stages onto percentages:
//
//	validate 0, student data 5..15, focus 20, allocation 30,
//	content 30..55 split evenly across subjects,
//	generation 55..80 split evenly across weeks,
//	finalize 85, save 95, done 100.
type Milestones struct {
	Subjects int
	Weeks    int
}

func (Milestones) Validate() int       { return 0 }
func (Milestones) StudentLoading() int { return 5 }
func (Milestones) StudentLoaded() int  { return 15 }
func (Milestones) FocusResolved() int  { return 20 }
func (Milestones) AllocationDone() int { return contentStart }
func (Milestones) Finalizing() int     { return 85 }
func (Milestones) Saving() int         { return 95 }
func (Milestones) Done() int           { return 100 }

// FetchStarted is the progress when subject i (0-based) begins fetching.
func (m Milestones) FetchStarted(i int) int {
	return m.subjectPoint(i, fetchStartFraction)
}

// TierReached is the progress once subject i settled on tier.
func (m Milestones) TierReached(i int, tier domain.ContentTier) int {
	return m.subjectPoint(i, tierFraction[tier])
}

// SubjectsFetched is the progress after done subjects have content.
func (m Milestones) SubjectsFetched(done int) int {
	if m.Subjects <= 0 {
		return contentStart + contentSpan
	}
	done = clampInt(done, 0, m.Subjects)
	return contentStart + done*contentSpan/m.Subjects
}

// WeekGenerated is the progress after week w (0-based) was assembled.
func (m Milestones) WeekGenerated(w int) int {
	if m.Weeks <= 0 {
		return generateStart + generateSpan
	}
	w = clampInt(w+1, 0, m.Weeks)
	return generateStart + w*generateSpan/m.Weeks
}

func (m Milestones) subjectPoint(i int, frac float64) int {
	if m.Subjects <= 0 {
		return contentStart
	}
	i = clampInt(i, 0, m.Subjects-1)
	slice := float64(contentSpan) / float64(m.Subjects)
	return contentStart + int(float64(i)*slice+frac*slice)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
