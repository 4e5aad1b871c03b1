package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/studyplan/internal/cli/formatter"
)

func newTaskCmd(app *App, owner func() string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Inspect background plan builds",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "show ID",
			Short: "Show a task snapshot",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				task, err := app.Tasks.Get(cmd.Context(), args[0], owner())
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatTask(task))
				return nil
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List tasks, newest first",
			RunE: func(cmd *cobra.Command, args []string) error {
				tasks, err := app.Tasks.List(cmd.Context(), owner())
				if err != nil {
					return err
				}
				if len(tasks) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No tasks found.")
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatTaskList(tasks))
				return nil
			},
		},
	)
	return cmd
}
