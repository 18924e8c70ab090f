package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	domain "github.com/vieirasantos/meli-seller-hub/pkg/types"
)

func syncCmd() *cobra.Command {
	syncRoot := &cobra.Command{
		Use:   "sync",
		Short: "Trigger syncs and view run history",
		Long: "Trigger account synchronizations and inspect run history. Each run\n" +
			"records the outcome of the profile, products, and stats phases\n" +
			"separately; a failed profile aborts the run, the rest only degrade it.",
	}

	syncRoot.AddCommand(
		syncRunCmd(),
		syncAllCmd(),
		syncRunsCmd(),
	)

	return syncRoot
}

func syncRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "run <account_id>",
		Short:   "Sync one account now",
		Example: `  msh sync run 4f1c2d3e`,
		Args:    cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			c := newClient()
			res, err := c.SyncAccount(context.Background(), args[0])
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(res)
			}
			fmt.Printf("Synced %s.\n", res.Account.Nickname)
			return printRunDetail(&res.Run)
		},
	}
}

func syncAllCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "all",
		Short:   "Sync every linked account now",
		Example: `  msh sync all`,
		RunE: func(_ *cobra.Command, _ []string) error {
			c := newClient()
			runs, err := c.SyncAll(context.Background())
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(runs)
			}
			if len(runs) == 0 {
				fmt.Println("No accounts to sync.")
				return nil
			}
			return printRunTable(runs)
		},
	}
}

func syncRunsCmd() *cobra.Command {
	var account string

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Show sync run history",
		Example: `  # Latest run per account
  msh sync runs

  # Full history for one account
  msh sync runs --account 4f1c2d3e`,
		RunE: func(_ *cobra.Command, _ []string) error {
			c := newClient()

			var err error
			var runs []domain.SyncRun
			if account != "" {
				runs, err = c.ListRuns(context.Background(), account)
			} else {
				runs, err = c.ListLatestRuns(context.Background())
			}
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(runs)
			}
			if len(runs) == 0 {
				fmt.Println("No sync runs found.")
				return nil
			}
			return printRunTable(runs)
		},
	}
	cmd.Flags().StringVar(&account, "account", "", "account id for full history")

	return cmd
}

func statusCmd() *cobra.Command {
	statusRoot := &cobra.Command{
		Use:   "status",
		Short: "Show system state and dashboard metrics",
		Example: `  msh status
  msh status --metrics`,
	}

	var showMetrics bool
	statusRoot.RunE = func(_ *cobra.Command, _ []string) error {
		c := newClient()

		if showMetrics {
			m, err := c.GetDashboardMetrics(context.Background())
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(m)
			}
			return printDashboardMetrics(m)
		}

		s, err := c.GetSystemState(context.Background())
		if err != nil {
			return err
		}
		if jsonOutput() {
			return outputJSON(s)
		}
		return printSystemState(s)
	}
	statusRoot.Flags().BoolVar(&showMetrics, "metrics", false, "show sales aggregates instead of entity counts")

	return statusRoot
}
