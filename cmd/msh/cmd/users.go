package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vieirasantos/meli-seller-hub/internal/users"
	domain "github.com/vieirasantos/meli-seller-hub/pkg/types"
)

func loginCmd() *cobra.Command {
	var (
		username string
		password string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and print a session token",
		Long: "Authenticate against the API and print the issued session token.\n" +
			"Export it as MSH_TOKEN (or pass --token) for commands that need a\n" +
			"session, such as user management.",
		Example: `  msh login --username master --password secret
  export MSH_TOKEN=$(msh login --username master --password secret --output json | jq -r .token)`,
		RunE: func(_ *cobra.Command, _ []string) error {
			if username == "" || password == "" {
				return fmt.Errorf("--username and --password are required")
			}
			c := newClient()
			res, err := c.Login(context.Background(), username, password)
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(res)
			}
			fmt.Printf("Logged in as %s (%s).\n", res.User.Username, res.User.Role)
			fmt.Printf("Session token: %s\n", res.Token)
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "username")
	cmd.Flags().StringVar(&password, "password", "", "password")

	return cmd
}

func usersCmd() *cobra.Command {
	usersRoot := &cobra.Command{
		Use:   "users",
		Short: "Manage dashboard users",
		Long: "Manage internal dashboard users. All subcommands require a session\n" +
			"token (see 'msh login'). The master user cannot be deleted or\n" +
			"modified by anyone but itself.",
	}

	usersRoot.AddCommand(
		usersMeCmd(),
		usersListCmd(),
		usersCreateCmd(),
		usersSetRoleCmd(),
		usersDeleteCmd(),
		usersLogoutCmd(),
	)

	return usersRoot
}

func usersMeCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "me",
		Short:   "Show the current session's user",
		Example: `  msh users me`,
		RunE: func(_ *cobra.Command, _ []string) error {
			c := newClient()
			u, err := c.Me(context.Background())
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(u)
			}
			return printUserDetail(u)
		},
	}
}

func usersListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all users",
		Example: `  msh users list
  msh users list --output json`,
		RunE: func(_ *cobra.Command, _ []string) error {
			c := newClient()
			users, err := c.ListUsers(context.Background())
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(users)
			}
			return printUserTable(users)
		},
	}
}

func usersCreateCmd() *cobra.Command {
	var (
		username string
		password string
		role     string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user",
		Long: "Create a dashboard user with the default permission set for its role.\n" +
			"Admins get every permission except user management; plain users get\n" +
			"read-only dashboard and analytics access.",
		Example: `  msh users create --username ana --password s3nh4-f0rte --role admin`,
		RunE: func(_ *cobra.Command, _ []string) error {
			if username == "" || password == "" {
				return fmt.Errorf("--username and --password are required")
			}
			c := newClient()
			u, err := c.CreateUser(context.Background(), username, password, domain.Role(role), nil)
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(u)
			}
			fmt.Printf("User created: %s (%s)\n", u.Username, u.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "username")
	cmd.Flags().StringVar(&password, "password", "", "password (minimum 8 characters)")
	cmd.Flags().StringVar(&role, "role", "user", "role (admin, user)")

	return cmd
}

func usersSetRoleCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "set-role <id> <role>",
		Short:   "Change a user's role",
		Example: `  msh users set-role 9a8b7c admin`,
		Args:    cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			role := domain.Role(args[1])
			c := newClient()
			u, err := c.UpdateUser(context.Background(), args[0], role, users.DefaultPermissions(role), "")
			if err != nil {
				return err
			}
			fmt.Printf("User %s is now %s.\n", u.Username, u.Role)
			return nil
		},
	}
}

func usersDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Short:   "Delete a user",
		Example: `  msh users delete 9a8b7c`,
		Args:    cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			c := newClient()
			if err := c.DeleteUser(context.Background(), args[0]); err != nil {
				return err
			}
			fmt.Printf("User %s deleted.\n", args[0])
			return nil
		},
	}
}

func usersLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "logout",
		Short:   "Revoke the current session",
		Example: `  msh users logout`,
		RunE: func(_ *cobra.Command, _ []string) error {
			c := newClient()
			if err := c.Logout(context.Background()); err != nil {
				return err
			}
			fmt.Println("Session revoked.")
			return nil
		},
	}
}
