package cli

import (
	"errors"

	"github.com/spf13/cobra"
	"github.com/urbanflow/client/internal/models"
)

func newFeedbackCommand() *cobra.Command {

	feedbackCmd := &cobra.Command{
		Use:   "feedback",
		Short: "Leave feedback on projects",
	}

	submitCmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit feedback from flags or a JSON or YAML file",
		Args:  cobra.NoArgs,
		RunE:  runFeedbackSubmit,
	}

	submitCmd.Flags().StringP("file", "f", "", "Feedback payload file, or - for stdin")
	submitCmd.Flags().String("project", "", "Project id")
	submitCmd.Flags().String("comment", "", "Feedback text")
	submitCmd.Flags().Int("rating", 0, "Rating from 1 to 5")
	submitCmd.Flags().String("category", "", "Feedback category")
	submitCmd.MarkFlagsMutuallyExclusive("file", "project")

	feedbackCmd.AddCommand(submitCmd)

	return feedbackCmd
}

func runFeedbackSubmit(cmd *cobra.Command, _ []string) error {

	flags := cmd.Flags()

	if flags.Changed("file") {
		payload, err := readFileFlag(cmd)
		if err != nil {
			return err
		}
		return render(cmd, apiClient.SubmitFeedback(cmd.Context(), payload))
	}

	request := models.FeedbackRequest{}
	request.Project, _ = flags.GetString("project")
	request.Comment, _ = flags.GetString("comment")
	request.Rating, _ = flags.GetInt("rating")
	request.Category, _ = flags.GetString("category")

	if len(request.Project) == 0 {
		return errors.New("either --file or --project is required")
	}

	if request.Rating < 0 || request.Rating > 5 {
		return errors.New("rating must be between 1 and 5")
	}

	return render(cmd, apiClient.SubmitFeedback(cmd.Context(), request))
}
