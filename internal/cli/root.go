// Package cli implements the studyplan command line.
package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/studyplan/internal/service"
)

const defaultOwner = "local"

// App holds the services the commands run against. Serve is nil when the
// binary was built without the HTTP stack wired.
type App struct {
	Students   service.StudentService
	Plans      service.PlanService
	Activities service.ActivityService
	Tasks      service.TaskService
	Content    service.ContentService

	Serve func(ctx context.Context) error

	// IsInteractive reports whether stdin is a terminal. Forms and the
	// live progress view are only used when it returns true.
	IsInteractive func() bool

	// PollInterval paces task polling while waiting for a build.
	PollInterval time.Duration
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

func (a *App) pollInterval() time.Duration {
	if a.PollInterval <= 0 {
		return 200 * time.Millisecond
	}
	return a.PollInterval
}

// NewRootCmd creates the top-level "studyplan" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	var owner string

	root := &cobra.Command{
		Use:           "studyplan",
		Short:         "Personalized learning plans built from student profiles",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&owner, "owner", defaultOwner, "Owner id that plans and students are scoped to")

	ownerOf := func() string { return owner }

	root.AddCommand(
		newServeCmd(app),
		newStudentCmd(app, ownerOf),
		newContentCmd(app),
		newPlanCmd(app, ownerOf),
		newTaskCmd(app, ownerOf),
	)
	return root
}
