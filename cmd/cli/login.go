package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"github.com/urbanflow/client/internal/common"
	"github.com/urbanflow/client/internal/models"
)

func newLoginCommand() *cobra.Command {

	loginCmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate with the URBANFLOW API",
		Long:  "Signs in with email and password and keeps the returned access token for later commands",
		RunE:  runLogin,
	}

	loginCmd.Flags().String("email", "", "Account email address")
	loginCmd.Flags().String("password", "", "Account password (prompted when omitted)")

	return loginCmd
}

func runLogin(cmd *cobra.Command, _ []string) error {

	email, _ := cmd.Flags().GetString("email")
	password, _ := cmd.Flags().GetString("password")

	if len(email) == 0 || len(password) == 0 {
		if err := promptCredentials(&email, &password); err != nil {
			return err
		}
	}

	resp := apiClient.Login(cmd.Context(), models.LoginRequest{
		Email:    strings.TrimSpace(email),
		Password: password,
	})

	if err := resp.Err(); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	return completeAuthentication(cmd, resp.Data)
}

// completeAuthentication stores the access token from a successful login or
// registration.
func completeAuthentication(cmd *cobra.Command, auth *models.AuthResponse) error {

	if auth == nil || len(auth.Access) == 0 {
		return errors.New("no access token returned by the server")
	}

	if err := apiClient.SetToken(cmd.Context(), auth.Access); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, successStyle.Render("Login successful!"))
	fmt.Fprintf(out, "Signed in as %s", auth.User.GetName())
	if len(auth.User.Role) > 0 {
		fmt.Fprintf(out, " (%s)", auth.User.Role)
	}
	fmt.Fprintln(out)

	return nil
}

func promptCredentials(email *string, password *string) error {

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Value(email).
				Validate(func(value string) error {
					if !common.IsValidEmail(strings.TrimSpace(value)) {
						return errors.New("enter a valid email address")
					}
					return nil
				}),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(password).
				Validate(func(value string) error {
					if len(value) == 0 {
						return errors.New("password is required")
					}
					return nil
				}),
		),
	)

	if err := form.Run(); err != nil {
		return fmt.Errorf("login prompt cancelled: %w", err)
	}

	return nil
}
