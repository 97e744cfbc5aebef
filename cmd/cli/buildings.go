package cli

import (
	"github.com/spf13/cobra"
)

func newBuildingsCommand() *cobra.Command {

	buildingsCmd := &cobra.Command{
		Use:     "buildings",
		Aliases: []string{"building"},
		Short:   "Browse buildings",
	}

	buildingsCmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List buildings",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return render(cmd, apiClient.GetBuildings(cmd.Context()))
			},
		},
		&cobra.Command{
			Use:   "get <building-id>",
			Short: "Show a building",
			Args:  uuidArg("building id"),
			RunE: func(cmd *cobra.Command, args []string) error {
				return render(cmd, apiClient.GetBuilding(cmd.Context(), args[0]))
			},
		},
	)

	return buildingsCmd
}
