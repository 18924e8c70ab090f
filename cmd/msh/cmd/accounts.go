package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func accountsCmd() *cobra.Command {
	accountsRoot := &cobra.Command{
		Use:   "accounts",
		Short: "Manage linked seller accounts",
		Long: "Manage linked Mercado Livre seller accounts. Linking validates the\n" +
			"provided access token against the marketplace and merges sellers that\n" +
			"are already known under the same nickname or user id.",
	}

	accountsRoot.AddCommand(
		accountsListCmd(),
		accountsGetCmd(),
		accountsLinkCmd(),
		accountsAutoSyncCmd(),
		accountsRefreshCmd(),
		accountsUnlinkCmd(),
	)

	return accountsRoot
}

func accountsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all linked accounts",
		Example: `  msh accounts list
  msh accounts list --output json`,
		RunE: func(_ *cobra.Command, _ []string) error {
			c := newClient()
			accounts, err := c.ListAccounts(context.Background())
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(accounts)
			}
			if len(accounts) == 0 {
				fmt.Println("No accounts linked.")
				return nil
			}
			return printAccountTable(accounts)
		},
	}
}

func accountsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show account details",
		Example: `  msh accounts get 4f1c2d3e
  msh accounts get 4f1c2d3e --output json`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			c := newClient()
			a, err := c.GetAccount(context.Background(), args[0])
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(a)
			}
			return printAccountDetail(a)
		},
	}
}

func accountsLinkCmd() *cobra.Command {
	var (
		accessToken  string
		refreshToken string
		autoSync     bool
	)

	cmd := &cobra.Command{
		Use:   "link",
		Short: "Link a seller account by access token",
		Long: "Link a seller account using a Mercado Livre access token. The token is\n" +
			"validated against the marketplace before the account is stored. Use\n" +
			"'msh auth exchange' first if you only have an authorization code.",
		Example: `  # Link an account with auto-sync enabled
  msh accounts link --access-token APP_USR-xxx --refresh-token TG-xxx

  # Link without scheduled syncs
  msh accounts link --access-token APP_USR-xxx --auto-sync=false`,
		RunE: func(_ *cobra.Command, _ []string) error {
			if accessToken == "" {
				return fmt.Errorf("--access-token is required")
			}
			c := newClient()
			a, err := c.LinkAccount(context.Background(), accessToken, refreshToken, autoSync)
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(a)
			}
			fmt.Printf("Account linked: %s (%s)\n", a.Nickname, a.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&accessToken, "access-token", "", "Mercado Livre access token")
	cmd.Flags().StringVar(&refreshToken, "refresh-token", "", "refresh token (optional)")
	cmd.Flags().BoolVar(&autoSync, "auto-sync", true, "include account in scheduled syncs")

	return cmd
}

func accountsAutoSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "auto-sync <id> <on|off>",
		Short: "Toggle scheduled syncs for an account",
		Example: `  msh accounts auto-sync 4f1c2d3e on
  msh accounts auto-sync 4f1c2d3e off`,
		Args: cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			var enabled bool
			switch args[1] {
			case "on":
				enabled = true
			case "off":
				enabled = false
			default:
				return fmt.Errorf("expected on or off, got %q", args[1])
			}

			c := newClient()
			if err := c.SetAutoSync(context.Background(), args[0], enabled); err != nil {
				return err
			}

			state := "enabled"
			if !enabled {
				state = "disabled"
			}
			fmt.Printf("Auto-sync %s for account %s.\n", state, args[0])
			return nil
		},
	}
}

func accountsRefreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "refresh <id>",
		Short:   "Refresh an account's access token",
		Example: `  msh accounts refresh 4f1c2d3e`,
		Args:    cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			c := newClient()
			a, err := c.RefreshAccountToken(context.Background(), args[0])
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(a)
			}
			fmt.Printf("Token refreshed for %s (%s).\n", a.Nickname, a.ID)
			return nil
		},
	}
}

func accountsUnlinkCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "unlink <id>",
		Short:   "Unlink an account and delete its data",
		Example: `  msh accounts unlink 4f1c2d3e`,
		Args:    cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			c := newClient()
			if err := c.DeleteAccount(context.Background(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Account %s unlinked.\n", args[0])
			return nil
		},
	}
}
