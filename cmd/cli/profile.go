package cli

import (
	"github.com/spf13/cobra"
)

func newProfileCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "profile",
		Short: "Show the signed in user's profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			return render(cmd, apiClient.GetProfile(cmd.Context()))
		},
	}
}
