package planner

import "math"

// MinSubjectMinutes is the floor applied to every subject, before and
// after normalization.
const MinSubjectMinutes = 10

// Allocation multipliers.
const (
	improvementBoost = 0.5
	interestBoost    = 0.3
	strengthPenalty  = 0.2
)

// SubjectMinutes is one row of a SubjectTimeAllocation.
type SubjectMinutes struct {
	Subject       string
	MinutesPerDay int
}

// SubjectTimeAllocation is the per-subject daily budget in focus order.
type SubjectTimeAllocation []SubjectMinutes

// Minutes returns the allocation for subject, or 0 when absent.
func (a SubjectTimeAllocation) Minutes(subject string) int {
	for _, sm := range a {
		if sm.Subject == subject {
			return sm.MinutesPerDay
		}
	}
	return 0
}

// Total sums the allocation.
func (a SubjectTimeAllocation) Total() int {
	total := 0
	for _, sm := range a {
		total += sm.MinutesPerDay
	}
	return total
}

// AsMap is used for logging and plan metadata.
func (a SubjectTimeAllocation) AsMap() map[string]int {
	m := make(map[string]int, len(a))
	for _, sm := range a {
		m[sm.Subject] = sm.MinutesPerDay
	}
	return m
}

// Allocate splits dailyMinutes across focus subjects, weighting
// improvement and interest up and bare strengths down, then normalizes
// back towards the budget. The MinSubjectMinutes floor is applied both
// before and after scaling, so the total may drift from dailyMinutes when
// the budget is small relative to the subject count.
func Allocate(focus []string, improvement, interest, strength map[string]bool, dailyMinutes int) SubjectTimeAllocation {
	if len(focus) == 0 {
		return nil
	}
	base := float64(dailyMinutes) / float64(len(focus))

	adjusted := make([]int, len(focus))
	sum := 0
	for i, subject := range focus {
		mult := 1.0
		if improvement[subject] {
			mult += improvementBoost
		}
		if interest[subject] {
			mult += interestBoost
		}
		if strength[subject] && !interest[subject] {
			mult -= strengthPenalty
		}
		adjusted[i] = maxInt(MinSubjectMinutes, int(math.Floor(base*mult)))
		sum += adjusted[i]
	}

	scale := 1.0
	if sum > 0 {
		scale = float64(dailyMinutes) / float64(sum)
	}

	out := make(SubjectTimeAllocation, len(focus))
	for i, subject := range focus {
		out[i] = SubjectMinutes{
			Subject:       subject,
			MinutesPerDay: maxInt(MinSubjectMinutes, int(math.Floor(float64(adjusted[i])*scale))),
		}
	}
	return out
}

// AllocateFor is Allocate driven by a resolved focus set.
func AllocateFor(set FocusSubjectSet, dailyMinutes int) SubjectTimeAllocation {
	return Allocate(set.Focus, toSet(set.Improvement), toSet(set.Interest), toSet(set.Strength), dailyMinutes)
}

func toSet(list []string) map[string]bool {
	m := make(map[string]bool, len(list))
	for _, s := range list {
		m[s] = true
	}
	return m
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func clamp(val, lo, hi int) int {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}
