package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/urbanflow/client/internal/client"
	"github.com/urbanflow/client/internal/common"
	"github.com/urbanflow/client/internal/config"
	"github.com/urbanflow/client/internal/session"
	"github.com/urbanflow/client/internal/storage"
)

// Populated by preRunConfigE before any command runs.
var (
	cfg       *config.Config
	apiClient *client.Client
)

// loadConfig loads the configuration based on the --config flag or default locations
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configFile, err := cmd.Flags().GetString("config")

	if err != nil {
		return nil, fmt.Errorf("failed to get config flag: %w", err)
	}

	return config.Load(configFile)
}

func preRunConfigE(cmd *cobra.Command, _ []string) error {

	var err error
	cfg, err = loadConfig(cmd)

	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	verbose, err := cmd.Flags().GetBool("verbose")
	if err == nil && verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	baseURL, err := cmd.Flags().GetString("base-url")
	if err == nil && len(baseURL) > 0 {
		if !common.IsValidBaseURL(baseURL) {
			return fmt.Errorf("invalid base URL: %s", baseURL)
		}
		cfg.SetBaseURL(baseURL)
	}

	output, err := cmd.Flags().GetString("output")
	if err == nil && len(output) > 0 {
		switch strings.ToLower(output) {
		case config.OutputFormatJSON, config.OutputFormatYAML:
			cfg.Output.Format = output
		default:
			return fmt.Errorf("unsupported output format %q, expected json or yaml", output)
		}
	}

	ephemeral, err := cmd.Flags().GetBool("ephemeral")
	if err == nil && ephemeral {
		cfg.Storage.Driver = string(storage.DriverMemory)
	}

	timeout, err := cfg.GetTimeout()
	if err != nil {
		return fmt.Errorf("invalid api timeout: %w", err)
	}

	store, err := storage.Open(cmd.Context(), cfg.StorageOptions())
	if err != nil {
		return fmt.Errorf("failed to open %s storage: %w", cfg.Storage.Driver, err)
	}

	sess, err := session.New(cmd.Context(), store)
	if err != nil {
		_ = store.Close()
		return err
	}

	logrus.WithFields(logrus.Fields{
		"base_url": cfg.GetBaseURL(),
		"storage":  cfg.Storage.Driver,
		"state":    sess.State(),
	}).Debugln("Client ready")

	apiClient = client.New(cfg.GetBaseURL(), sess, client.WithTimeout(timeout))

	return nil
}

func closeClient() {
	if apiClient == nil {
		return
	}
	if err := apiClient.Session().Close(); err != nil {
		logrus.WithError(err).Warnln("Failed to close session storage")
	}
	apiClient = nil
}

func newRootCommand() *cobra.Command {

	rootCmd := &cobra.Command{
		Use:   "urbanflow",
		Short: "URBANFLOW - Civic project suggestions, feedback and city insights",
		Long: `Command line client for the URBANFLOW API.

Authenticate once with 'urbanflow login' and the session is kept for
subsequent commands until 'urbanflow logout'.

If no config file is specified, configuration is looked up in:
  - ./config.yaml
  - ./config/config.yaml
  - ~/.config/urbanflow/config.yaml`,
		PersistentPreRunE: preRunConfigE,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().String("config", "", "Config file (default is ~/.config/urbanflow/config.yaml)")
	rootCmd.PersistentFlags().String("base-url", "", "Override the API base URL (e.g., http://localhost:8000/api)")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output format: json or yaml")
	rootCmd.PersistentFlags().StringP("query", "q", "", "jq expression applied to the response data")
	rootCmd.PersistentFlags().Bool("ephemeral", false, "Keep the session in memory only")

	rootCmd.AddCommand(
		newLoginCommand(),
		newRegisterCommand(),
		newLogoutCommand(),
		newStatusCommand(),
		newProfileCommand(),
		newProjectsCommand(),
		newFeedbackCommand(),
		newBuildingsCommand(),
		newDashboardCommand(),
		newStatisticsCommand(),
		newPaymentsCommand(),
		newRequestCommand(),
		newVersionCommand(),
	)

	return rootCmd
}

func GetCommandOptions() *cobra.Command {
	return newRootCommand()
}

// Execute runs the command line with args and prints any failure. It
// returns the error so the caller can choose an exit code.
func Execute(ctx context.Context, args []string) error {

	rootCmd := GetCommandOptions()
	rootCmd.SetArgs(args)

	err := rootCmd.ExecuteContext(ctx)
	closeClient()

	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: "+err.Error()))
	}

	return err
}
