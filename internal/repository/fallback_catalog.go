package repository

import (
	"context"
	"strings"

	"github.com/alexanderramin/studyplan/internal/domain"
)

const fallbackSource = "Fallback Content"

// FallbackCatalog serves a small fixed set of well-known resources for
// subjects the primary catalog has nothing for.
type FallbackCatalog struct {
	items map[string][]domain.ContentItem
}

// NewFallbackCatalog returns the built-in table.
func NewFallbackCatalog() *FallbackCatalog {
	return &FallbackCatalog{items: builtinFallback}
}

// NewFallbackCatalogFrom builds a catalog over items keyed by subject.
func NewFallbackCatalogFrom(items map[string][]domain.ContentItem) *FallbackCatalog {
	return &FallbackCatalog{items: items}
}

// FetchFallback returns copies of the subject's items. Unknown subjects
// yield an empty list.
func (c *FallbackCatalog) FetchFallback(_ context.Context, subject string) ([]domain.ContentItem, error) {
	for name, items := range c.items {
		if !strings.EqualFold(name, subject) {
			continue
		}
		out := make([]domain.ContentItem, len(items))
		for i, it := range items {
			it.Subject = name
			it.Source = fallbackSource
			it.GradeLevels = append([]int(nil), it.GradeLevels...)
			out[i] = it
		}
		return out, nil
	}
	return []domain.ContentItem{}, nil
}

// Subjects lists the subjects with fallback content.
func (c *FallbackCatalog) Subjects() []string {
	out := make([]string, 0, len(c.items))
	for name := range c.items {
		out = append(out, name)
	}
	return out
}

var builtinFallback = map[string][]domain.ContentItem{
	"Mathematics": {
		{
			ID:              "fb-math-001",
			Title:           "Introduction to Algebra Concepts",
			Description:     "This resource introduces foundational algebra concepts with visual explanations and interactive examples.",
			ContentType:     domain.ContentLesson,
			DifficultyLevel: domain.DifficultyIntermediate,
			URL:             "https://www.khanacademy.org/math/algebra",
			GradeLevels:     []int{6, 7, 8, 9, 10},
			Topics:          []string{"Algebra", "Mathematics", "Equations"},
			DurationMinutes: 25,
			Keywords:        []string{"algebra", "equations", "variables", "expressions"},
		},
		{
			ID:              "fb-math-002",
			Title:           "Visual Geometry Learning",
			Description:     "An interactive geometry resource with visual demonstrations of shapes, angles, and transformations.",
			ContentType:     domain.ContentInteractive,
			DifficultyLevel: domain.DifficultyBeginner,
			URL:             "https://www.geogebra.org/geometry",
			GradeLevels:     []int{4, 5, 6, 7, 8},
			Topics:          []string{"Geometry", "Mathematics", "Shapes"},
			DurationMinutes: 30,
			Keywords:        []string{"geometry", "shapes", "angles", "transformations"},
		},
	},
	"Science": {
		{
			ID:              "fb-science-001",
			Title:           "Introduction to Scientific Method",
			Description:     "Learn the scientific method through interactive experiments and real-world examples.",
			ContentType:     domain.ContentLesson,
			DifficultyLevel: domain.DifficultyBeginner,
			URL:             "https://www.khanacademy.org/science/high-school-biology/hs-biology-foundations/hs-biology-and-the-scientific-method/a/the-science-of-biology",
			GradeLevels:     []int{5, 6, 7, 8, 9},
			Topics:          []string{"Scientific Method", "Science", "Research"},
			DurationMinutes: 20,
			Keywords:        []string{"scientific method", "experiments", "hypothesis", "research"},
		},
		{
			ID:              "fb-science-002",
			Title:           "Earth's Systems and Cycles",
			Description:     "Explore Earth's major systems and cycles including the water cycle, carbon cycle, and weather patterns.",
			ContentType:     domain.ContentVideo,
			DifficultyLevel: domain.DifficultyIntermediate,
			URL:             "https://www.nationalgeographic.org/encyclopedia/earths-systems/",
			GradeLevels:     []int{6, 7, 8, 9, 10},
			Topics:          []string{"Earth Science", "Science", "Ecosystems"},
			DurationMinutes: 35,
			Keywords:        []string{"earth science", "water cycle", "weather", "climate"},
		},
	},
	"English": {
		{
			ID:              "fb-english-001",
			Title:           "Reading Comprehension Strategies",
			Description:     "Learn effective reading comprehension strategies to better understand and analyze texts.",
			ContentType:     domain.ContentLesson,
			DifficultyLevel: domain.DifficultyIntermediate,
			URL:             "https://www.readingstrategies.org/comprehension",
			GradeLevels:     []int{6, 7, 8, 9, 10},
			Topics:          []string{"Reading", "English", "Comprehension"},
			DurationMinutes: 25,
			Keywords:        []string{"reading", "comprehension", "analysis", "literacy"},
		},
		{
			ID:              "fb-english-002",
			Title:           "Essay Writing Fundamentals",
			Description:     "A comprehensive guide to writing effective essays with structure and clarity.",
			ContentType:     domain.ContentArticle,
			DifficultyLevel: domain.DifficultyIntermediate,
			URL:             "https://owl.purdue.edu/owl/general_writing/academic_writing/essay_writing/index.html",
			GradeLevels:     []int{7, 8, 9, 10, 11},
			Topics:          []string{"Writing", "English", "Essays"},
			DurationMinutes: 40,
			Keywords:        []string{"writing", "essays", "structure", "composition"},
		},
	},
	"History": {
		{
			ID:              "fb-history-001",
			Title:           "Timeline of World History",
			Description:     "Interactive timeline of major events in world history with multimedia resources.",
			ContentType:     domain.ContentInteractive,
			DifficultyLevel: domain.DifficultyIntermediate,
			URL:             "https://www.bbc.co.uk/history/interactive/timelines/",
			GradeLevels:     []int{6, 7, 8, 9, 10},
			Topics:          []string{"World History", "History", "Timeline"},
			DurationMinutes: 30,
			Keywords:        []string{"world history", "timeline", "civilization", "events"},
		},
		{
			ID:              "fb-history-002",
			Title:           "Primary Source Analysis",
			Description:     "Learn techniques for analyzing and interpreting primary historical sources.",
			ContentType:     domain.ContentLesson,
			DifficultyLevel: domain.DifficultyAdvanced,
			URL:             "https://www.loc.gov/programs/teachers/primary-source-analysis-tool/",
			GradeLevels:     []int{8, 9, 10, 11, 12},
			Topics:          []string{"Historical Analysis", "History", "Primary Sources"},
			DurationMinutes: 45,
			Keywords:        []string{"primary sources", "historical analysis", "documents", "research"},
		},
	},
	"Art": {
		{
			ID:              "fb-art-001",
			Title:           "Elements of Art & Design Principles",
			Description:     "Learn about the basic elements and principles of art and design through visual examples.",
			ContentType:     domain.ContentInteractive,
			DifficultyLevel: domain.DifficultyBeginner,
			URL:             "https://www.theartstory.org/artists/movements/elements-of-art/",
			GradeLevels:     []int{5, 6, 7, 8, 9},
			Topics:          []string{"Art Elements", "Art", "Design"},
			DurationMinutes: 25,
			Keywords:        []string{"elements of art", "design principles", "color theory", "composition"},
		},
		{
			ID:              "fb-art-002",
			Title:           "Art History Timeline Overview",
			Description:     "Explore major art movements and styles throughout history with examples from famous artists.",
			ContentType:     domain.ContentArticle,
			DifficultyLevel: domain.DifficultyIntermediate,
			URL:             "https://www.metmuseum.org/toah/chronology/",
			GradeLevels:     []int{7, 8, 9, 10, 11},
			Topics:          []string{"Art History", "Art", "Art Movements"},
			DurationMinutes: 35,
			Keywords:        []string{"art history", "art movements", "famous artists", "painting styles"},
		},
	},
}
