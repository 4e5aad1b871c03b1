package domain

import (
	"fmt"
	"strings"
)

type ActivityStatus string

const (
	StatusNotStarted ActivityStatus = "not_started"
	StatusInProgress ActivityStatus = "in_progress"
	StatusCompleted  ActivityStatus = "completed"
)

// Valid reports whether s is one of the known activity statuses.
func (s ActivityStatus) Valid() bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// ParseActivityStatus accepts the canonical lowercase form as well as the
// upper-case enum spelling ("COMPLETED").
func ParseActivityStatus(s string) (ActivityStatus, error) {
	st := ActivityStatus(strings.ToLower(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", NewValidationError("parse activity status", fmt.Sprintf("invalid status %q", s))
	}
	return st, nil
}

type PlanType string

const (
	PlanBalanced PlanType = "balanced"
	PlanFocused  PlanType = "focused"
)

// ParsePlanType defaults to balanced when s is empty.
func ParsePlanType(s string) (PlanType, error) {
	switch PlanType(strings.ToLower(strings.TrimSpace(s))) {
	case "", PlanBalanced:
		return PlanBalanced, nil
	case PlanFocused:
		return PlanFocused, nil
	}
	return "", NewValidationError("parse plan type", fmt.Sprintf("invalid plan type %q", s))
}

type DifficultyLevel string

const (
	DifficultyBeginner     DifficultyLevel = "beginner"
	DifficultyIntermediate DifficultyLevel = "intermediate"
	DifficultyAdvanced     DifficultyLevel = "advanced"
	DifficultyUnknown      DifficultyLevel = "unknown"
)

// ParseDifficulty maps free text onto a difficulty level. Unrecognized
// values become DifficultyUnknown.
func ParseDifficulty(s string) DifficultyLevel {
	switch d := DifficultyLevel(strings.ToLower(strings.TrimSpace(s))); d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return d
	}
	return DifficultyUnknown
}

type ContentType string

const (
	ContentArticle     ContentType = "article"
	ContentVideo       ContentType = "video"
	ContentInteractive ContentType = "interactive"
	ContentWorksheet   ContentType = "worksheet"
	ContentQuiz        ContentType = "quiz"
	ContentLesson      ContentType = "lesson"
	ContentActivity    ContentType = "activity"
	ContentOther       ContentType = "other"
)

// ValidContentTypes is the canonical set of accepted content type strings.
var ValidContentTypes = map[ContentType]bool{
	ContentArticle: true, ContentVideo: true, ContentInteractive: true,
	ContentWorksheet: true, ContentQuiz: true, ContentLesson: true,
	ContentActivity: true, ContentOther: true,
}

// ParseContentType maps free text onto a content type, defaulting to other.
func ParseContentType(s string) ContentType {
	ct := ContentType(strings.ToLower(strings.TrimSpace(s)))
	if ValidContentTypes[ct] {
		return ct
	}
	return ContentOther
}

type LearningStyle string

const (
	StyleVisual      LearningStyle = "visual"
	StyleAuditory    LearningStyle = "auditory"
	StyleReadWrite   LearningStyle = "reading_writing"
	StyleKinesthetic LearningStyle = "kinesthetic"
	StyleMixed       LearningStyle = "mixed"
)

// ParseLearningStyle normalizes the many spellings found in student
// records. Anything unrecognized is treated as mixed.
func ParseLearningStyle(s string) LearningStyle {
	v := strings.ToLower(strings.TrimSpace(s))
	switch {
	case v == "":
		return StyleMixed
	case strings.Contains(v, "visual"):
		return StyleVisual
	case strings.Contains(v, "audit"):
		return StyleAuditory
	case strings.Contains(v, "read"), strings.Contains(v, "writ"):
		return StyleReadWrite
	case strings.Contains(v, "kinesthetic"), strings.Contains(v, "tactile"), strings.Contains(v, "hands"):
		return StyleKinesthetic
	}
	return StyleMixed
}

type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
	TaskFailed     TaskStatus = "failed"
)

// IsTerminal reports whether no further updates are accepted in status s.
func (s TaskStatus) IsTerminal() bool {
	return s == TaskCompleted || s == TaskFailed
}
