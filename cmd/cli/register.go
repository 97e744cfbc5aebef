package cli

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/urbanflow/client/internal/common"
	"github.com/urbanflow/client/internal/models"
)

var roles = []string{
	models.RoleResident,
	models.RoleInvestor,
	models.RoleOfficial,
}

func newRegisterCommand() *cobra.Command {

	registerCmd := &cobra.Command{
		Use:   "register",
		Short: "Create a new account and sign in",
		RunE:  runRegister,
	}

	registerCmd.Flags().String("email", "", "Account email address")
	registerCmd.Flags().String("password", "", "Account password (prompted when omitted)")
	registerCmd.Flags().String("username", "", "Public username")
	registerCmd.Flags().String("first-name", "", "First name")
	registerCmd.Flags().String("last-name", "", "Last name")
	registerCmd.Flags().String("role", "", fmt.Sprintf("Account role (%s)", strings.Join(roles, ", ")))

	return registerCmd
}

func runRegister(cmd *cobra.Command, _ []string) error {

	flags := cmd.Flags()

	email, _ := flags.GetString("email")
	password, _ := flags.GetString("password")
	username, _ := flags.GetString("username")
	firstName, _ := flags.GetString("first-name")
	lastName, _ := flags.GetString("last-name")
	role, _ := flags.GetString("role")

	role = strings.ToLower(strings.TrimSpace(role))
	if len(role) > 0 && !slices.Contains(roles, role) {
		return fmt.Errorf("invalid role %q, expected one of %s", role, strings.Join(roles, ", "))
	}

	if len(email) == 0 || len(password) == 0 {
		if err := promptCredentials(&email, &password); err != nil {
			return err
		}
	}

	email = strings.TrimSpace(email)
	if !common.IsValidEmail(email) {
		return fmt.Errorf("invalid email address: %s", email)
	}

	resp := apiClient.Register(cmd.Context(), models.RegisterRequest{
		Email:     email,
		Password:  password,
		Username:  username,
		FirstName: firstName,
		LastName:  lastName,
		Role:      role,
	})

	if err := resp.Err(); err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}

	return completeAuthentication(cmd, resp.Data)
}
