package generator

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/studyplan/internal/domain"
	"github.com/alexanderramin/studyplan/internal/planner"
)

const systemPrompt = "You are an AI educational assistant that creates personalized learning plans. Respond with JSON only."

const notSpecified = "Not specified"

func buildPrompt(req planner.DraftRequest, days int) string {
	var b strings.Builder

	name, grade, style := "Student", "Unknown", string(domain.StyleMixed)
	interests, improvement := "General learning", notSpecified
	if s := req.Student; s != nil {
		name = s.DisplayName()
		if s.GradeLevel != nil {
			grade = fmt.Sprint(*s.GradeLevel)
		}
		if s.LearningStyle != "" {
			style = string(s.LearningStyle)
		}
		if len(s.Interests) > 0 {
			interests = strings.Join(s.Interests, ", ")
		}
		if len(s.AreasForImprovement) > 0 {
			improvement = strings.Join(s.AreasForImprovement, ", ")
		}
	}

	weekly, weekLabel := "", ""
	if req.Weekly {
		weekly, weekLabel = "Weekly ", " (One Week)"
	}

	fmt.Fprintf(&b, "Create a personalized %slearning plan.\n\n", weekly)
	b.WriteString("STUDENT PROFILE:\n")
	fmt.Fprintf(&b, "- Name: %s\n- Grade Level: %s\n- Learning Style: %s\n", name, grade, style)
	fmt.Fprintf(&b, "- Subjects of Interest: %s\n- Areas for Improvement: %s\n\n", interests, improvement)
	fmt.Fprintf(&b, "SUBJECT TO FOCUS ON: %s\n", req.Subject)
	fmt.Fprintf(&b, "LEARNING PERIOD DURATION: %d days%s\n\n", days, weekLabel)

	b.WriteString("AVAILABLE LEARNING RESOURCES:\n")
	for i, c := range req.Candidates {
		writeResource(&b, i+1, c)
	}

	fmt.Fprintf(&b, `
INSTRUCTIONS:
1. Start with foundational concepts and progress to more advanced material.
2. Spread activities across EACH of the %[1]d days; every day needs at least one activity.
3. Aim for 1-3 activities per day, about 30-60 minutes in total.
4. Pick resources matching the student's grade level, learning style and improvement areas.
5. Use the resource's duration_minutes when it has one.
6. Explain in learning_benefit why the activity addresses the student's needs.

Return JSON in this shape:
{
  "title": "%[2]sLearning Plan for %[3]s",
  "description": "Overall plan description",
  "subject": "%[3]s",
  "topics": ["topic1", "topic2"],
  "activities": [
    {
      "title": "Activity title",
      "description": "What the student should do",
      "content_id": "<ID of a resource above>",
      "content_url": "<URL of that resource>",
      "duration_minutes": 20,
      "day": 1,
      "order": 1,
      "learning_benefit": "Why this helps"
    }
  ]
}
Every activity MUST include content_id, day (1-%[1]d), order and content_url.
`, days, weekly, req.Subject)

	return b.String()
}

func writeResource(b *strings.Builder, n int, c domain.ContentItem) {
	grades := notSpecified
	if len(c.GradeLevels) > 0 {
		parts := make([]string, len(c.GradeLevels))
		for i, g := range c.GradeLevels {
			parts[i] = fmt.Sprint(g)
		}
		grades = strings.Join(parts, ", ")
	}
	keywords := notSpecified
	if len(c.Keywords) > 0 {
		keywords = strings.Join(c.Keywords, ", ")
	}
	duration := notSpecified
	if c.DurationMinutes > 0 {
		duration = fmt.Sprint(c.DurationMinutes)
	}

	fmt.Fprintf(b, "\nContent %d:\n", n)
	fmt.Fprintf(b, "- ID: %s\n- Title: %s\n- Type: %s\n- Difficulty: %s\n", c.ID, c.Title, c.ContentType, c.DifficultyLevel)
	fmt.Fprintf(b, "- Subject: %s\n- Grade Level(s): %s\n- Keywords: %s\n", c.Subject, grades, keywords)
	fmt.Fprintf(b, "- Duration: %s minutes\n- Description: %s\n- URL: %s\n", duration, c.Description, c.URL)
}
