package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/meltforce/blockplan/internal/plan"
)

func newPlanCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Inspect and delete stored week plans",
	}

	cmd.AddCommand(
		newPlanListCmd(app),
		newPlanShowCmd(app),
		newPlanLatestCmd(app),
		newPlanDeleteCmd(app),
	)

	return cmd
}

func newPlanListCmd(app *App) *cobra.Command {
	var player string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored plans",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			plans, err := app.Plans.List(context.Background(), player)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(plans) == 0 {
				fmt.Fprintln(out, "No plans found.")
				return nil
			}
			rows := make([][]string, 0, len(plans))
			for _, p := range plans {
				rows = append(rows, []string{p.PlayerID, p.Week, fmt.Sprint(p.Days.BlockCount()), fmt.Sprint(p.TotalRPE)})
			}
			renderTable(out, []string{"Player", "Week", "Blocks", "Total RPE"}, rows)
			return nil
		},
	}
	cmd.Flags().StringVar(&player, "player", "", "only this player's plans")
	return cmd
}

func printPlan(cmd *cobra.Command, p *plan.WeekPlan) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Plan %s (saved %s)\n", p.ID, p.CreatedAt.Format("2006-01-02 15:04"))
	renderWeek(out, p.Days)
}

func newPlanShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show PLAYER WEEK",
		Short: "Show a player's plan for a week",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := plan.Key{PlayerID: args[0], Week: args[1]}
			p, err := app.Plans.Get(context.Background(), key)
			if err != nil {
				return err
			}
			if p == nil {
				return fmt.Errorf("no plan %s", key)
			}
			printPlan(cmd, p)
			return nil
		},
	}
}

func newPlanLatestCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "latest PLAYER",
		Short: "Show a player's most recent plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := app.Plans.Latest(context.Background(), args[0])
			if err != nil {
				return err
			}
			if p == nil {
				return fmt.Errorf("player %s has no plan", args[0])
			}
			printPlan(cmd, p)
			return nil
		},
	}
}

func newPlanDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete PLAYER WEEK",
		Short: "Delete a player's plan for a week",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := plan.Key{PlayerID: args[0], Week: args[1]}
			existed, err := app.Plans.Delete(context.Background(), key)
			if err != nil {
				return err
			}
			if !existed {
				return fmt.Errorf("no plan %s", key)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s.\n", key)
			return nil
		},
	}
}
