package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/studyplan/internal/cli/formatter"
	"github.com/alexanderramin/studyplan/internal/domain"
	"github.com/alexanderramin/studyplan/internal/export"
	"github.com/alexanderramin/studyplan/internal/service"
)

func newPlanCmd(app *App, owner func() string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Create and track learning plans",
	}
	cmd.AddCommand(
		newPlanCreateCmd(app, owner),
		newPlanListCmd(app, owner),
		newPlanShowCmd(app, owner),
		newPlanRemoveCmd(app, owner),
		newPlanExportCmd(app, owner),
		newPlanActivityCmd(app, owner),
	)
	return cmd
}

func newPlanCreateCmd(app *App, owner func() string) *cobra.Command {
	var student, subject string
	var minutes int
	var wait bool
	period := periodFlag()
	planType := planTypeFlag()

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Build a plan from a student profile",
		Long: "Queues a plan build and blocks until it finishes. The build runs in this\n" +
			"process, so the command always waits; --wait shows a live progress bar.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			req := service.CreatePlanRequest{
				LearningPeriod: period.String(),
				DailyMinutes:   minutes,
				PlanType:       planType.String(),
				Subject:        subject,
			}

			if student == "" {
				if !app.interactive() {
					return fmt.Errorf("--student is required")
				}
				if err := runPlanForm(ctx, app, owner(), &req); err != nil {
					return err
				}
			} else {
				id, err := resolveStudentID(ctx, app, owner(), student)
				if err != nil {
					return err
				}
				req.StudentProfileID = id
			}

			taskID, err := app.Plans.CreateProfileBasedPlan(ctx, owner(), req)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Queued plan build %s\n", taskID)

			var task *domain.ProgressTask
			if wait && app.interactive() {
				task, err = watchTask(ctx, app.Tasks, taskID, owner(), app.pollInterval(), cmd.InOrStdin(), out)
			} else {
				task, err = waitForTask(ctx, app.Tasks, taskID, owner(), app.pollInterval(), func(t *domain.ProgressTask) {
					if wait {
						fmt.Fprintf(out, "%3d%%  %s\n", t.Progress, t.Message)
					}
				})
			}
			if err != nil {
				return err
			}
			if task.Status == domain.TaskFailed {
				return fmt.Errorf("plan build failed: %s", task.Error)
			}

			planID, _ := task.Result["plan_id"].(string)
			fmt.Fprintf(out, "Created plan %s\n", planID)
			if plan, err := app.Plans.Get(ctx, planID, owner()); err == nil {
				fmt.Fprintln(out, formatter.FormatPlan(plan))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&student, "student", "", "Student profile ID or unique prefix")
	cmd.Flags().Var(period, "period", "Learning period (one_week, two_weeks, one_month, two_months, school_term)")
	cmd.Flags().IntVar(&minutes, "daily-minutes", 0, "Minutes of study per day (default from config)")
	cmd.Flags().Var(planType, "type", "Plan type (balanced, focused)")
	cmd.Flags().StringVar(&subject, "subject", "", "Focus subject, required for focused plans")
	cmd.Flags().BoolVar(&wait, "wait", false, "Show build progress while waiting")

	return cmd
}

func newPlanListCmd(app *App, owner func() string) *cobra.Command {
	var student string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List plans, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			studentID := ""
			if student != "" {
				id, err := resolveStudentID(ctx, app, owner(), student)
				if err != nil {
					return err
				}
				studentID = id
			}
			plans, err := app.Plans.List(ctx, owner(), studentID)
			if err != nil {
				return err
			}
			if len(plans) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No plans found.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatPlanList(plans))
			return nil
		},
	}

	cmd.Flags().StringVar(&student, "student", "", "Only plans for this student")
	return cmd
}

func newPlanShowCmd(app *App, owner func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show a plan day by day",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resolvePlanID(cmd.Context(), app, owner(), args[0])
			if err != nil {
				return err
			}
			plan, err := app.Plans.Get(cmd.Context(), id, owner())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatPlan(plan))
			return nil
		},
	}
}

func newPlanRemoveCmd(app *App, owner func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "remove ID",
		Short: "Delete a plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resolvePlanID(cmd.Context(), app, owner(), args[0])
			if err != nil {
				return err
			}
			if err := app.Plans.Delete(cmd.Context(), id, owner()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed plan %s\n", id)
			return nil
		},
	}
}

func newPlanExportCmd(app *App, owner func() string) *cobra.Command {
	var outPath string
	format := exportFormatFlag()

	cmd := &cobra.Command{
		Use:   "export ID",
		Short: "Render a plan as JSON or HTML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resolvePlanID(cmd.Context(), app, owner(), args[0])
			if err != nil {
				return err
			}
			art, err := app.Plans.Export(cmd.Context(), id, owner(), export.Format(format.String()))
			if err != nil {
				return err
			}
			if art.Notice != "" {
				fmt.Fprintln(cmd.ErrOrStderr(), formatter.StyleYellow.Render(art.Notice))
			}
			if art.Location != "" {
				fmt.Fprintln(cmd.ErrOrStderr(), formatter.Dim("stored at "+art.Location))
			}
			if outPath == "" {
				_, err := cmd.OutOrStdout().Write(art.Data)
				return err
			}
			if err := os.WriteFile(outPath, art.Data, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", outPath, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", outPath)
			return nil
		},
	}

	cmd.Flags().Var(format, "format", "Export format (json, html, pdf)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Write to file instead of stdout")
	return cmd
}

func newPlanActivityCmd(app *App, owner func() string) *cobra.Command {
	var completedAt string
	status := activityStatusFlag()

	cmd := &cobra.Command{
		Use:   "activity PLAN ACTIVITY",
		Short: "Set the status of one activity",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if status.String() == "" {
				return fmt.Errorf("--status is required")
			}
			var at *time.Time
			if completedAt != "" {
				t, err := time.Parse(time.RFC3339, completedAt)
				if err != nil {
					return fmt.Errorf("invalid --completed-at %q: use RFC 3339", completedAt)
				}
				at = &t
			}

			planID, err := resolvePlanID(cmd.Context(), app, owner(), args[0])
			if err != nil {
				return err
			}
			st := domain.ActivityStatus(status.String())
			res, err := app.Activities.UpdateStatus(cmd.Context(), planID, owner(), args[1], st, at)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatStatusResult(planID, args[1], st, res))
			return nil
		},
	}

	cmd.Flags().Var(status, "status", "New status (not_started, in_progress, completed)")
	cmd.Flags().StringVar(&completedAt, "completed-at", "", "Completion time (RFC 3339), default now")
	return cmd
}
