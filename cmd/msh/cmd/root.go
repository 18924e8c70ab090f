// Package cmd implements the msh CLI commands.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	apiclient "github.com/vieirasantos/meli-seller-hub/internal/api/client"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "msh",
		Short: "CLI client for Meli Seller Hub",
		Long: "msh is a command-line client for the Meli Seller Hub API.\n" +
			"It lets you link Mercado Livre seller accounts, browse products,\n" +
			"trigger synchronizations, and manage dashboard users from the terminal.",
	}
)

// Root returns the root cobra command for documentation generation.
func Root() *cobra.Command {
	return rootCmd
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().
		StringVar(&cfgFile, "config", "", "config file (default $HOME/.msh.yaml)")
	rootCmd.PersistentFlags().
		String("server", "http://localhost:8080", "API server URL")
	rootCmd.PersistentFlags().
		String("output", "table", "output format (table, json)")
	rootCmd.PersistentFlags().
		String("token", "", "session token (also MSH_TOKEN)")

	cobra.CheckErr(viper.BindPFlag("server", rootCmd.PersistentFlags().Lookup("server")))
	cobra.CheckErr(viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output")))
	cobra.CheckErr(viper.BindPFlag("token", rootCmd.PersistentFlags().Lookup("token")))

	rootCmd.AddCommand(accountsCmd())
	rootCmd.AddCommand(productsCmd())
	rootCmd.AddCommand(syncCmd())
	rootCmd.AddCommand(authCmd())
	rootCmd.AddCommand(usersCmd())
	rootCmd.AddCommand(loginCmd())
	rootCmd.AddCommand(statusCmd())
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".msh")
	}

	viper.SetEnvPrefix("MSH")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func newClient() *apiclient.Client {
	var opts []apiclient.Option
	if token := viper.GetString("token"); token != "" {
		opts = append(opts, apiclient.WithSessionToken(token))
	}
	return apiclient.New(viper.GetString("server"), opts...)
}

func jsonOutput() bool {
	return viper.GetString("output") == "json"
}
