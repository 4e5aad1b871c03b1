package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/studyplan/internal/cli/formatter"
	"github.com/alexanderramin/studyplan/internal/domain"
)

func newStudentCmd(app *App, owner func() string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "student",
		Short: "Manage student profiles",
	}
	cmd.AddCommand(
		newStudentAddCmd(app, owner),
		newStudentListCmd(app, owner),
		newStudentShowCmd(app, owner),
		newStudentRemoveCmd(app, owner),
	)
	return cmd
}

func newStudentAddCmd(app *App, owner func() string) *cobra.Command {
	var name, style, interests, strengths, improve string
	var grade int

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a student profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			st := &domain.StudentProfile{
				OwnerID:             owner(),
				FullName:            name,
				LearningStyle:       domain.ParseLearningStyle(style),
				Interests:           domain.SplitList(interests),
				Strengths:           domain.SplitList(strengths),
				AreasForImprovement: domain.SplitList(improve),
			}
			if cmd.Flags().Changed("grade") {
				st.GradeLevel = &grade
			}
			if err := app.Students.Create(cmd.Context(), st); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created student %s (%s)\n", st.FullName, st.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Full name")
	cmd.Flags().IntVar(&grade, "grade", 0, "Grade level (0-12)")
	cmd.Flags().StringVar(&style, "style", "", "Learning style (visual, auditory, reading_writing, kinesthetic, mixed)")
	cmd.Flags().StringVar(&interests, "interests", "", "Comma-separated interests")
	cmd.Flags().StringVar(&strengths, "strengths", "", "Comma-separated strengths")
	cmd.Flags().StringVar(&improve, "improve", "", "Comma-separated areas for improvement")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newStudentListCmd(app *App, owner func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List student profiles",
		RunE: func(cmd *cobra.Command, args []string) error {
			students, err := app.Students.List(cmd.Context(), owner())
			if err != nil {
				return err
			}
			if len(students) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No students found.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatStudentList(students))
			return nil
		},
	}
}

func newStudentShowCmd(app *App, owner func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show a student profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resolveStudentID(cmd.Context(), app, owner(), args[0])
			if err != nil {
				return err
			}
			st, err := app.Students.Get(cmd.Context(), id, owner())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatStudent(st))
			return nil
		},
	}
}

func newStudentRemoveCmd(app *App, owner func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "remove ID",
		Short: "Delete a student profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resolveStudentID(cmd.Context(), app, owner(), args[0])
			if err != nil {
				return err
			}
			if err := app.Students.Delete(cmd.Context(), id, owner()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed student %s\n", id)
			return nil
		},
	}
}
