package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/studyplan/internal/domain"
)

const dateLayout = "Jan 2, 2006"

func FormatPlanList(plans []*domain.LearningPlan) string {
	table := make([][]string, 0, len(plans))
	for _, p := range plans {
		table = append(table, []string{
			TruncID(p.ID),
			p.Title,
			p.Metadata.LearningPeriod.Label(),
			fmt.Sprintf("%d", len(p.Activities)),
			RenderProgress(p.ProgressPercentage, 10),
			p.CreatedAt.Format(dateLayout),
		})
	}
	return RenderTable([]string{"ID", "TITLE", "PERIOD", "ACTIVITIES", "PROGRESS", "CREATED"}, table)
}

// FormatPlan renders the plan summary followed by one section per day.
func FormatPlan(p *domain.LearningPlan) string {
	var b strings.Builder

	summary := KeyValues([][2]string{
		{"ID", p.ID},
		{"Student", p.StudentID},
		{"Type", string(p.Metadata.PlanType)},
		{"Period", fmt.Sprintf("%s (%s to %s)", p.Metadata.LearningPeriod.Label(), p.StartDate.Format(dateLayout), p.EndDate.Format(dateLayout))},
		{"Daily", fmt.Sprintf("%d min", p.Metadata.DailyMinutes)},
		{"Subjects", strings.Join(p.Subjects(), ", ")},
		{"Status", ActivityStatusPill(p.Status)},
		{"Progress", RenderProgress(p.ProgressPercentage, 20)},
	})
	b.WriteString(RenderBox(p.Title, summary))
	b.WriteString("\n")

	lastDay := 0
	for _, a := range p.Activities {
		if a.Day != lastDay {
			b.WriteString("\n")
			b.WriteString(Header(fmt.Sprintf("Day %d", a.Day)))
			b.WriteString("\n")
			lastDay = a.Day
		}
		b.WriteString(formatActivityLine(a))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatActivityLine(a domain.Activity) string {
	line := fmt.Sprintf("  %d. %s  %s  %s  %s",
		a.Order,
		ActivityStatusPill(a.Status),
		Bold(a.Title),
		Dim(fmt.Sprintf("%d min", a.DurationMinutes)),
		StylePurple.Render(a.Metadata.Subject),
	)
	if a.ContentURL != "" {
		line += "\n     " + Dim(a.ContentURL)
	}
	line += "\n     " + Dim("id "+a.ID)
	return line
}

func FormatStatusResult(planID, activityID string, status domain.ActivityStatus, res *domain.StatusResult) string {
	return KeyValues([][2]string{
		{"Plan", planID},
		{"Activity", activityID},
		{"Status", ActivityStatusPill(status)},
		{"Plan status", ActivityStatusPill(res.PlanStatus)},
		{"Progress", RenderProgress(res.ProgressPercentage, 20)},
	})
}
