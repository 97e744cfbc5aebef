package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {

			wasAuthenticated := apiClient.Session().IsAuthenticated()

			if err := apiClient.ClearToken(cmd.Context()); err != nil {
				return fmt.Errorf("failed to clear session: %w", err)
			}

			if wasAuthenticated {
				fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("Logged out"))
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), infoStyle.Render("No active session"))
			}

			return nil
		},
	}
}
