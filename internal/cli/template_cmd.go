package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/meltforce/blockplan/internal/catalog"
	"github.com/meltforce/blockplan/internal/plan"
	"github.com/meltforce/blockplan/internal/planner"
)

func newTemplateCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Browse and apply week templates",
	}

	cmd.AddCommand(
		newTemplateListCmd(app),
		newTemplateShowCmd(app),
		newTemplateApplyCmd(app),
	)

	return cmd
}

func newTemplateListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			templates := planner.DescribeTemplates(app.Catalog)
			if len(templates) == 0 {
				fmt.Fprintln(out, "No templates found.")
				return nil
			}

			rows := make([][]string, 0, len(templates))
			for _, t := range templates {
				rows = append(rows, []string{
					fmt.Sprint(t.Index),
					t.Name,
					t.LevelRange,
					fmt.Sprint(len(t.Weeks)),
				})
			}
			renderTable(out, []string{"#", "Name", "Levels", "Weeks"}, rows)
			return nil
		},
	}
}

func findTemplate(c *catalog.Catalog, name string) (catalog.Template, int, error) {
	t, idx, ok := c.TemplateByName(name)
	if !ok {
		return catalog.Template{}, 0, fmt.Errorf("%w: %q", catalog.ErrTemplateNotFound, name)
	}
	return t, idx, nil
}

func newTemplateShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show NAME",
		Short: "Show every week of a template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, _, err := findTemplate(app.Catalog, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Template: %s\n", t.Name)
			if t.LevelRange != "" {
				fmt.Fprintf(out, "Levels:   %s\n", t.LevelRange)
			}
			for i, opt := range planner.WeekOptions(t) {
				week, err := planner.Instantiate(t, i, app.Catalog)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "\n%s\n", opt.Label)
				renderWeek(out, week)
			}
			return nil
		},
	}
}

func newTemplateApplyCmd(app *App) *cobra.Command {
	var (
		player  string
		isoWeek string
		week    int
		save    bool
	)

	cmd := &cobra.Command{
		Use:   "apply NAME",
		Short: "Instantiate a template week, optionally saving it as a player's plan",
		Long: "Instantiate a template week and print it. With --save the week replaces the\n" +
			"player's plan for --iso-week. Templates with several weeks need --week.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, idx, err := findTemplate(app.Catalog, args[0])
			if err != nil {
				return err
			}
			weekIdx, err := planner.SelectWeek(t, week-1)
			if errors.Is(err, planner.ErrWeekChoiceRequired) {
				labels := make([]string, 0, len(t.Weeks))
				for _, o := range planner.WeekOptions(t) {
					labels = append(labels, fmt.Sprintf("%d = %s", o.Value+1, o.Label))
				}
				return fmt.Errorf("%w: --week %s", err, strings.Join(labels, ", "))
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !save {
				w, err := planner.Instantiate(t, weekIdx, app.Catalog)
				if err != nil {
					return err
				}
				renderWeek(out, w)
				return nil
			}

			if isoWeek == "" {
				isoWeek = plan.CurrentWeekKey()
			}
			ctx := context.Background()
			e, err := app.Plans.Open(ctx, plan.Key{PlayerID: player, Week: isoWeek})
			if err != nil {
				return err
			}
			res, err := e.LoadTemplate(idx)
			if err != nil {
				return err
			}
			if !res.Applied {
				if _, err := e.ChooseTemplateWeek(weekIdx); err != nil {
					return err
				}
			}
			saved, err := app.Plans.Save(ctx, e)
			if err != nil {
				return err
			}
			renderWeek(out, saved.Days)
			fmt.Fprintf(out, "Saved %s (total RPE %d).\n", saved.ID, saved.TotalRPE)
			return nil
		},
	}

	cmd.Flags().StringVar(&player, "player", "", "player id (required with --save)")
	cmd.Flags().StringVar(&isoWeek, "iso-week", "", "ISO week key to save into, e.g. 2024-W10 (default current week)")
	cmd.Flags().IntVar(&week, "week", 0, "template week number, starting at 1")
	cmd.Flags().BoolVar(&save, "save", false, "save the week as the player's plan")
	return cmd
}
