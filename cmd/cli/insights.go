package cli

import (
	"github.com/spf13/cobra"
	"github.com/urbanflow/client/internal/client"
)

func newDashboardCommand() *cobra.Command {

	dashboardCmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show the city wide suggestions dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := getFilterFlag(cmd)
			if err != nil {
				return err
			}
			return render(cmd, apiClient.GetDashboard(cmd.Context(), client.Query(filter)))
		},
	}

	dashboardCmd.Flags().StringArray("filter", nil, "Query filter as key=value (repeatable)")

	return dashboardCmd
}

func newStatisticsCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "statistics",
		Aliases: []string{"stats"},
		Short:   "Show suggestion statistics",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return render(cmd, apiClient.GetStatistics(cmd.Context()))
		},
	}
}

func newPaymentsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "payments",
		Short: "List payments for the signed in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return render(cmd, apiClient.GetPayments(cmd.Context()))
		},
	}
}
