package cli

import (
	"context"
	"fmt"
	"maps"

	"github.com/spf13/cobra"
	"github.com/urbanflow/client/internal/client"
	"github.com/urbanflow/client/internal/common"
	"github.com/urbanflow/client/internal/models"
)

func newProjectsCommand() *cobra.Command {

	projectsCmd := &cobra.Command{
		Use:     "projects",
		Aliases: []string{"project"},
		Short:   "Browse and propose civic projects",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List projects",
		Args:  cobra.NoArgs,
		RunE:  runProjectsList,
	}
	listCmd.Flags().String("status", "", fmt.Sprintf("Filter by status (%s, %s, %s, %s, %s)",
		models.ProjectStatusProposed, models.ProjectStatusUnderReview, models.ProjectStatusApproved,
		models.ProjectStatusRejected, models.ProjectStatusCompleted))
	listCmd.Flags().String("district", "", "Filter by district")
	listCmd.Flags().String("type", "", "Filter by project type")
	listCmd.Flags().String("search", "", "Free text search")
	listCmd.Flags().String("page", "", "Result page")
	listCmd.Flags().StringArray("filter", nil, "Additional query filter as key=value (repeatable)")

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Propose a new project from a JSON or YAML file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := readFileFlag(cmd)
			if err != nil {
				return err
			}
			return render(cmd, apiClient.CreateProject(cmd.Context(), payload))
		},
	}
	createCmd.Flags().StringP("file", "f", "", "Project payload file, or - for stdin")
	createCmd.MarkFlagRequired("file")

	projectsCmd.AddCommand(
		listCmd,
		projectLookupCommand("get", "Show a project", (*client.Client).GetProject),
		projectLookupCommand("sentiment", "Show the sentiment summary for a project", (*client.Client).GetProjectSentiment),
		projectLookupCommand("dashboard", "Show the dashboard for a project", (*client.Client).GetProjectDashboard),
		projectLookupCommand("feedback", "List feedback left on a project", (*client.Client).GetProjectFeedback),
		createCmd,
	)

	return projectsCmd
}

type lookupFunc func(*client.Client, context.Context, string) client.Response[any]

// projectLookupCommand builds a "<name> <uuid>" subcommand around one of the
// client's per-project calls.
func projectLookupCommand(name string, short string, lookup lookupFunc) *cobra.Command {
	return &cobra.Command{
		Use:   name + " <project-id>",
		Short: short,
		Args:  uuidArg("project id"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return render(cmd, lookup(apiClient, cmd.Context(), args[0]))
		},
	}
}

func runProjectsList(cmd *cobra.Command, _ []string) error {

	flags := cmd.Flags()

	filter := models.ProjectFilter{}
	filter.Status, _ = flags.GetString("status")
	filter.District, _ = flags.GetString("district")
	filter.ProjectType, _ = flags.GetString("type")
	filter.Search, _ = flags.GetString("search")
	filter.Page, _ = flags.GetString("page")

	extra, err := getFilterFlag(cmd)
	if err != nil {
		return err
	}

	query := client.Query(filter.Values())
	maps.Copy(query, extra)

	return render(cmd, apiClient.GetProjects(cmd.Context(), query))
}

func readFileFlag(cmd *cobra.Command) (any, error) {
	path, err := cmd.Flags().GetString("file")
	if err != nil {
		return nil, err
	}
	return common.ReadPayloadFile(path)
}
