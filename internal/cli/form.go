package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/alexanderramin/studyplan/internal/cli/formatter"
	"github.com/alexanderramin/studyplan/internal/domain"
	"github.com/alexanderramin/studyplan/internal/service"
)

func studyplanHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorGreen)
	t.Focused.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

// validateMinutes accepts empty (use the default) or 1..1440.
func validateMinutes(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v <= 0 || v > 24*60 {
		return fmt.Errorf("enter minutes between 1 and 1440")
	}
	return nil
}

// planFormValues is the state the plan form edits. Defaults come from the
// flags already given.
type planFormValues struct {
	StudentID string
	Period    string
	Minutes   string
	PlanType  string
	Subject   string
}

func newPlanFormValues(req service.CreatePlanRequest) *planFormValues {
	v := &planFormValues{
		StudentID: req.StudentProfileID,
		Period:    req.LearningPeriod,
		PlanType:  req.PlanType,
		Subject:   req.Subject,
	}
	if v.Period == "" {
		v.Period = string(domain.DefaultLearningPeriod)
	}
	if v.PlanType == "" {
		v.PlanType = string(domain.PlanBalanced)
	}
	if req.DailyMinutes > 0 {
		v.Minutes = strconv.Itoa(req.DailyMinutes)
	}
	return v
}

func (v *planFormValues) apply(req *service.CreatePlanRequest) {
	req.StudentProfileID = v.StudentID
	req.LearningPeriod = v.Period
	req.PlanType = v.PlanType
	req.Subject = strings.TrimSpace(v.Subject)
	req.DailyMinutes = 0
	if n, err := strconv.Atoi(strings.TrimSpace(v.Minutes)); err == nil {
		req.DailyMinutes = n
	}
}

func buildPlanForm(students []*domain.StudentProfile, v *planFormValues) *huh.Form {
	studentOpts := make([]huh.Option[string], 0, len(students))
	for _, s := range students {
		studentOpts = append(studentOpts, huh.NewOption(s.DisplayName(), s.ID))
	}
	periodOpts := make([]huh.Option[string], 0, len(domain.LearningPeriods))
	for _, p := range domain.LearningPeriods {
		periodOpts = append(periodOpts, huh.NewOption(p.Label(), string(p)))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Student").
				Options(studentOpts...).
				Value(&v.StudentID),
			huh.NewSelect[string]().
				Title("Learning Period").
				Options(periodOpts...).
				Value(&v.Period),
			huh.NewInput().
				Title("Daily Minutes").
				Placeholder("60").
				Value(&v.Minutes).
				Validate(validateMinutes),
			huh.NewSelect[string]().
				Title("Plan Type").
				Options(
					huh.NewOption("Balanced (interests + improvement areas)", string(domain.PlanBalanced)),
					huh.NewOption("Focused (one subject)", string(domain.PlanFocused)),
				).
				Value(&v.PlanType),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Focus Subject").
				Placeholder("Mathematics").
				Value(&v.Subject).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("a focused plan needs a subject")
					}
					return nil
				}),
		).WithHideFunc(func() bool { return v.PlanType != string(domain.PlanFocused) }),
	).WithTheme(studyplanHuhTheme()).WithShowHelp(false)
}

func runPlanForm(ctx context.Context, app *App, owner string, req *service.CreatePlanRequest) error {
	students, err := app.Students.List(ctx, owner)
	if err != nil {
		return err
	}
	if len(students) == 0 {
		return fmt.Errorf("no students yet; add one with `studyplan student add`")
	}
	v := newPlanFormValues(*req)
	if err := buildPlanForm(students, v).RunWithContext(ctx); err != nil {
		return err
	}
	v.apply(req)
	return nil
}
