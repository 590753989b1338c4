// Package cli implements blockplanctl, the operator command line for
// templates and stored week plans.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/meltforce/blockplan/internal/catalog"
	"github.com/meltforce/blockplan/internal/planner"
)

// App holds what the commands work against.
type App struct {
	Plans   *planner.Service
	Catalog *catalog.Catalog
	// Migrate applies pending schema migrations.
	Migrate func() error
	// Close releases the store. May be nil.
	Close func()
}

// Loader builds the App from a config file path.
type Loader func(configPath string) (*App, error)

// NewRootCmd creates the top-level "blockplanctl" command. The App is loaded
// once the flags are parsed.
func NewRootCmd(load Loader) *cobra.Command {
	var configPath string
	app := &App{}

	root := &cobra.Command{
		Use:           "blockplanctl",
		Short:         "Manage training templates and week plans",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := load(configPath)
			if err != nil {
				return fmt.Errorf("loading app: %w", err)
			}
			*app = *loaded
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app.Close != nil {
				app.Close()
			}
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "path to config file")

	root.AddCommand(
		newTemplateCmd(app),
		newPlanCmd(app),
		newMigrateCmd(app),
	)

	return root
}

func newMigrateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Migrate(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied.")
			return nil
		},
	}
}
