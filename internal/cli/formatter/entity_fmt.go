package formatter

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/alexanderramin/studyplan/internal/domain"
)

func FormatStudentList(students []*domain.StudentProfile) string {
	rows := make([][]string, 0, len(students))
	for _, s := range students {
		rows = append(rows, []string{
			TruncID(s.ID),
			s.DisplayName(),
			gradeLabel(s.GradeLevel),
			string(s.LearningStyle),
			strings.Join(s.Interests, ", "),
		})
	}
	return RenderTable([]string{"ID", "NAME", "GRADE", "STYLE", "INTERESTS"}, rows)
}

func FormatStudent(s *domain.StudentProfile) string {
	return RenderBox(s.DisplayName(), KeyValues([][2]string{
		{"ID", s.ID},
		{"Grade", gradeLabel(s.GradeLevel)},
		{"Style", string(s.LearningStyle)},
		{"Interests", listOrDash(s.Interests)},
		{"Strengths", listOrDash(s.Strengths)},
		{"Improve", listOrDash(s.AreasForImprovement)},
	}))
}

func gradeLabel(g *int) string {
	if g == nil {
		return Dim("--")
	}
	return fmt.Sprintf("%d", *g)
}

func listOrDash(items []string) string {
	if len(items) == 0 {
		return Dim("--")
	}
	return strings.Join(items, ", ")
}

// FormatTask renders a task snapshot. Failed tasks show the captured error
// in place of the result.
func FormatTask(t *domain.ProgressTask) string {
	pairs := [][2]string{
		{"Task", t.ID},
		{"Status", TaskStatusPill(t.Status)},
		{"Progress", RenderProgress(float64(t.Progress), 20)},
		{"Message", t.Message},
	}
	if t.CurrentStep != "" {
		pairs = append(pairs, [2]string{"Step", t.CurrentStep})
	}
	pairs = append(pairs, [2]string{"Updated", t.UpdatedAt.Format(time.RFC3339)})
	if t.Error != "" {
		pairs = append(pairs, [2]string{"Error", StyleRed.Render(t.Error)})
	}
	if planID, ok := t.Result["plan_id"].(string); ok {
		pairs = append(pairs, [2]string{"Plan", planID})
	}
	return KeyValues(pairs)
}

func FormatTaskList(tasks []*domain.ProgressTask) string {
	rows := make([][]string, 0, len(tasks))
	for _, t := range tasks {
		rows = append(rows, []string{
			TruncID(t.ID),
			TaskStatusPill(t.Status),
			fmt.Sprintf("%d%%", t.Progress),
			t.Message,
			t.CreatedAt.Format(time.DateTime),
		})
	}
	return RenderTable([]string{"ID", "STATUS", "PROGRESS", "MESSAGE", "CREATED"}, rows)
}

func FormatContentList(items []domain.ContentItem) string {
	rows := make([][]string, 0, len(items))
	for _, c := range items {
		rows = append(rows, []string{
			c.Subject,
			c.Title,
			string(c.ContentType),
			string(c.DifficultyLevel),
			fmt.Sprintf("%d min", c.DurationMinutes),
		})
	}
	return RenderTable([]string{"SUBJECT", "TITLE", "TYPE", "DIFFICULTY", "DURATION"}, rows)
}

// FormatContentCounts lists subjects alphabetically with their item count.
func FormatContentCounts(counts map[string]int) string {
	subjects := make([]string, 0, len(counts))
	for s := range counts {
		subjects = append(subjects, s)
	}
	sort.Strings(subjects)
	rows := make([][]string, 0, len(subjects))
	for _, s := range subjects {
		rows = append(rows, []string{s, fmt.Sprintf("%d", counts[s])})
	}
	return RenderTable([]string{"SUBJECT", "ITEMS"}, rows)
}
