package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/studyplan/internal/cli/formatter"
	"github.com/alexanderramin/studyplan/internal/domain"
)

func newContentCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "content",
		Short: "Manage the content catalog",
	}
	cmd.AddCommand(
		newContentImportCmd(app),
		newContentListCmd(app),
	)
	return cmd
}

func newContentImportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Import content items from a JSON array",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}
			var items []domain.ContentItem
			if err := json.Unmarshal(raw, &items); err != nil {
				return fmt.Errorf("parsing %s: %w", args[0], err)
			}
			n, err := app.Content.Import(cmd.Context(), items)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d content items\n", n)
			return nil
		},
	}
}

func newContentListCmd(app *App) *cobra.Command {
	var subject string
	var counts bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalog content",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if counts {
				c, err := app.Content.Counts(cmd.Context())
				if err != nil {
					return err
				}
				if len(c) == 0 {
					fmt.Fprintln(out, "Catalog is empty.")
					return nil
				}
				fmt.Fprintln(out, formatter.FormatContentCounts(c))
				return nil
			}

			items, err := app.Content.List(cmd.Context(), subject)
			if err != nil {
				return err
			}
			if len(items) == 0 {
				fmt.Fprintln(out, "No content found.")
				return nil
			}
			fmt.Fprintln(out, formatter.FormatContentList(items))
			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "", "Only list this subject")
	cmd.Flags().BoolVar(&counts, "counts", false, "Show item counts per subject")
	return cmd
}
