package domain

import "strings"

// EmergencyIDPrefix marks content synthesized when no catalog returned
// anything for a subject.
const EmergencyIDPrefix = "fallback-"

// ContentItem is an external educational resource.
type ContentItem struct {
	ID              string          `json:"id"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	Subject         string          `json:"subject"`
	ContentType     ContentType     `json:"content_type"`
	DifficultyLevel DifficultyLevel `json:"difficulty_level"`
	GradeLevels     []int           `json:"grade_level"`
	URL             string          `json:"url"`
	DurationMinutes int             `json:"duration_minutes,omitempty"`
	Topics          []string        `json:"topics,omitempty"`
	Keywords        []string        `json:"keywords,omitempty"`
	Source          string          `json:"source,omitempty"`
}

// IsEmergency reports whether the item was synthesized rather than fetched.
func (c ContentItem) IsEmergency() bool {
	return strings.HasPrefix(c.ID, EmergencyIDPrefix)
}

// SuitsGrade reports whether grade is listed for the item. Items without a
// grade list suit every grade.
func (c ContentItem) SuitsGrade(grade int) bool {
	if len(c.GradeLevels) == 0 {
		return true
	}
	for _, g := range c.GradeLevels {
		if g == grade {
			return true
		}
	}
	return false
}

// Info returns the denormalized copy stored on activities.
func (c ContentItem) Info() *ContentInfo {
	grades := make([]int, len(c.GradeLevels))
	copy(grades, c.GradeLevels)
	return &ContentInfo{
		Title:           c.Title,
		Description:     c.Description,
		Subject:         c.Subject,
		DifficultyLevel: c.DifficultyLevel,
		ContentType:     c.ContentType,
		GradeLevels:     grades,
		URL:             c.URL,
	}
}

// ContentInfo is the content snapshot carried in activity metadata.
type ContentInfo struct {
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	Subject         string          `json:"subject"`
	DifficultyLevel DifficultyLevel `json:"difficulty_level"`
	ContentType     ContentType     `json:"content_type"`
	GradeLevels     []int           `json:"grade_level"`
	URL             string          `json:"url"`
}

// ActivityDraft is one week-local activity proposed by a plan generator.
// ContentID is nil when the generator did not pick a resource.
type ActivityDraft struct {
	Title           string  `json:"title"`
	Description     string  `json:"description"`
	Day             int     `json:"day"`
	Order           int     `json:"order"`
	ContentID       *string `json:"content_id,omitempty"`
	ContentURL      string  `json:"content_url,omitempty"`
	DurationMinutes int     `json:"duration_minutes"`
	LearningBenefit string  `json:"learning_benefit,omitempty"`
}

// HasContent reports whether the draft references a content item.
func (d ActivityDraft) HasContent() bool {
	return d.ContentID != nil && *d.ContentID != ""
}

// ContentTier records which source supplied a subject's candidates.
type ContentTier string

const (
	TierPrimary   ContentTier = "primary"
	TierFallback  ContentTier = "fallback"
	TierEmergency ContentTier = "emergency"
)
