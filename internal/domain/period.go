package domain

import (
	"fmt"
	"strings"
)

type LearningPeriod string

const (
	PeriodOneWeek    LearningPeriod = "one_week"
	PeriodTwoWeeks   LearningPeriod = "two_weeks"
	PeriodOneMonth   LearningPeriod = "one_month"
	PeriodTwoMonths  LearningPeriod = "two_months"
	PeriodSchoolTerm LearningPeriod = "school_term"
)

// DefaultLearningPeriod is used when a request does not name a period.
const DefaultLearningPeriod = PeriodOneMonth

var periodDays = map[LearningPeriod]int{
	PeriodOneWeek:    7,
	PeriodTwoWeeks:   14,
	PeriodOneMonth:   30,
	PeriodTwoMonths:  60,
	PeriodSchoolTerm: 90,
}

// LearningPeriods lists the periods in ascending length.
var LearningPeriods = []LearningPeriod{
	PeriodOneWeek, PeriodTwoWeeks, PeriodOneMonth, PeriodTwoMonths, PeriodSchoolTerm,
}

// ParseLearningPeriod accepts the canonical form or the upper-case enum
// spelling. An empty string yields the default period.
func ParseLearningPeriod(s string) (LearningPeriod, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "" {
		return DefaultLearningPeriod, nil
	}
	p := LearningPeriod(v)
	if _, ok := periodDays[p]; !ok {
		return "", NewValidationError("parse learning period", fmt.Sprintf("invalid learning period %q", s))
	}
	return p, nil
}

// Days returns the calendar length of the period.
func (p LearningPeriod) Days() int {
	if d, ok := periodDays[p]; ok {
		return d
	}
	return periodDays[DefaultLearningPeriod]
}

// Weeks is ceil(Days/7); a partial final week is planned as a full week.
func (p LearningPeriod) Weeks() int {
	return WeeksIn(p.Days())
}

// Label renders the period as title-cased words, e.g. "Two Weeks".
func (p LearningPeriod) Label() string {
	words := strings.Split(string(p), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// WeeksIn returns the number of weekly blocks needed to cover days.
func WeeksIn(days int) int {
	if days <= 0 {
		return 0
	}
	return (days + 6) / 7
}
