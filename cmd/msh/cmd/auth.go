package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func authCmd() *cobra.Command {
	authRoot := &cobra.Command{
		Use:   "auth",
		Short: "Mercado Livre OAuth helpers",
		Long: "Helpers for the Mercado Livre OAuth flow: generate the authorization\n" +
			"URL, exchange an authorization code for tokens, test an access token,\n" +
			"and diagnose authorization errors.",
	}

	authRoot.AddCommand(
		authURLCmd(),
		authExchangeCmd(),
		authTestCmd(),
		authDiagnoseCmd(),
	)

	return authRoot
}

func authURLCmd() *cobra.Command {
	var state string

	cmd := &cobra.Command{
		Use:   "url",
		Short: "Print the authorization URL",
		Long: "Print the URL a seller must open to authorize the application.\n" +
			"After consenting, Mercado Livre redirects to the configured URI with\n" +
			"a single-use authorization code.",
		Example: `  msh auth url
  msh auth url --state my-csrf-token`,
		RunE: func(_ *cobra.Command, _ []string) error {
			c := newClient()
			url, err := c.AuthorizationURL(context.Background(), state)
			if err != nil {
				return err
			}
			fmt.Println(url)
			return nil
		},
	}
	cmd.Flags().StringVar(&state, "state", "", "opaque state echoed back on the redirect")

	return cmd
}

func authExchangeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "exchange <code>",
		Short: "Exchange an authorization code for tokens",
		Long: "Exchange a single-use authorization code for an access and refresh\n" +
			"token pair. Codes expire quickly and cannot be reused; a failed\n" +
			"exchange means a new code must be generated.",
		Example: `  msh auth exchange TG-abc123`,
		Args:    cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			c := newClient()
			out, err := c.ExchangeCode(context.Background(), args[0])
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(out)
			}
			if !out.Success {
				fmt.Printf("Exchange failed: %s\n", out.Error)
				return nil
			}
			fmt.Printf("Access token:\t%s\n", out.Data.AccessToken)
			fmt.Printf("Refresh token:\t%s\n", out.Data.RefreshToken)
			fmt.Printf("Expires in:\t%ds\n", out.Data.ExpiresIn)
			return nil
		},
	}
}

func authTestCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "test <access_token>",
		Short:   "Test an access token against the marketplace",
		Example: `  msh auth test APP_USR-xxx`,
		Args:    cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			c := newClient()
			out, err := c.TestConnection(context.Background(), args[0])
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(out)
			}
			if !out.Success {
				fmt.Printf("Connection failed: %s\n", out.Error)
				return nil
			}
			fmt.Printf("Connected as %s (%d).\n", out.Data.Nickname, out.Data.ID)
			return nil
		},
	}
}

func authDiagnoseCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "diagnose <error_text>",
		Short:   "Explain an authorization error",
		Example: `  msh auth diagnose invalid_grant`,
		Args:    cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			c := newClient()
			msg, err := c.DiagnoseAuthError(context.Background(), args[0])
			if err != nil {
				return err
			}
			fmt.Println(msg)
			return nil
		},
	}
}
