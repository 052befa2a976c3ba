package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage the admin account",
}

var adminResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Create or reset the admin account and remove every other admin",
	Long: `Provisions the single admin account from PORTFOLIO_AUTH__ADMIN_USERNAME,
PORTFOLIO_AUTH__ADMIN_EMAIL and PORTFOLIO_AUTH__ADMIN_PASSWORD. Flags override
the environment. An admin matching the username or email is updated, otherwise
one is created; all other admins are deleted.`,
	RunE: runAdminReset,
}

var adminFlags struct {
	username string
	email    string
	password string
}

func init() {
	adminResetCmd.Flags().StringVar(&adminFlags.username, "username", "", "admin username")
	adminResetCmd.Flags().StringVar(&adminFlags.email, "email", "", "admin email")
	adminResetCmd.Flags().StringVar(&adminFlags.password, "password", "", "admin password")
	adminCmd.AddCommand(adminResetCmd)
}

func runAdminReset(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.close(ctx)

	username := firstNonEmpty(adminFlags.username, a.cfg.Auth.AdminUsername)
	email := firstNonEmpty(adminFlags.email, a.cfg.Auth.AdminEmail)
	password := firstNonEmpty(adminFlags.password, a.cfg.Auth.AdminPassword)
	if username == "" || email == "" || password == "" {
		return errors.New("admin username, email and password are required")
	}

	result, err := a.services.Auth.ProvisionAdmin(ctx, username, email, password)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s <%s>\n", result.Message, result.Username, result.Email)
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
