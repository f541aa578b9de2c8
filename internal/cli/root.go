package cli

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rshade/wardboard/internal/config"
	"github.com/rshade/wardboard/internal/logging"
)

// logger is the package-level logger for CLI operations.
var logger zerolog.Logger //nolint:gochecknoglobals // Required for zerolog context integration

// annotationTUI marks commands that take over the terminal. Their logs always
// go to a file so frames are not interleaved with log lines.
const annotationTUI = "wardboard/tui"

// NewRootCmd creates the root Cobra command for the wardboard CLI.
// Without a subcommand it starts the interactive dashboard.
func NewRootCmd(ver string) *cobra.Command {
	var logResult *logging.LogPathResult

	dash := newDashboardFlags()

	cmd := &cobra.Command{
		Use:           "wardboard",
		Short:         "Hospital administration dashboard and CLI",
		Long:          "wardboard: browse, chart, and manage hospital records from the terminal",
		Version:       ver,
		Example:       rootCmdExample,
		SilenceUsage:  true,
		SilenceErrors: true,
		Annotations:   map[string]string{annotationTUI: "true"},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := loadConfig(cmd); err != nil {
				return err
			}
			result := setupLogging(cmd)
			logResult = &result
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return cleanupLogging(cmd, logResult)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDashboard(cmd, dash)
		},
	}

	cmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	cmd.PersistentFlags().String("project-dir", "", "project directory holding .wardboard/config.yaml")
	cmd.PersistentFlags().String("api-url", "", "backend base URL (overrides api.base_url)")
	dash.register(cmd)

	cmd.AddCommand(
		newDashboardCmd(),
		NewListCmd(), NewShowCmd(), NewCreateCmd(), NewUpdateCmd(), NewDeleteCmd(),
		NewLookupCmd(), NewExportCmd(), NewReportCmd(), NewHealthCmd(), NewSandboxCmd(),
		newPrefsCmd(), newConfigCmd(),
	)
	return cmd
}

// loadConfig loads .env, resolves the project directory, and installs the
// effective configuration as the global config.
func loadConfig(cmd *cobra.Command) error {
	if err := config.LoadDotEnv(); err != nil {
		cmd.PrintErrf("Warning: %v\n", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	flagDir, _ := cmd.Flags().GetString("project-dir")
	wd, _ := os.Getwd()
	projectDir := config.ResolveProjectDir(ctx, flagDir, wd)
	config.SetResolvedProjectDir(projectDir)

	cfg := config.NewWithProjectDir(ctx, projectDir)
	if apiURL, _ := cmd.Flags().GetString("api-url"); apiURL != "" {
		cfg.API.BaseURL = apiURL
	}
	config.SetGlobalConfig(cfg)
	return nil
}

const rootCmdExample = `  # Start the interactive dashboard
  wardboard

  # Print the second page of patients
  wardboard list patients --page 2

  # Print every bill as JSON, sorted by amount
  wardboard list bills --all --output json --sort amount:desc

  # Show one doctor
  wardboard show doctors 3

  # Add a patient from a JSON file
  wardboard create patients --file patient.json

  # Export inventory to CSV
  wardboard export inventory

  # Print the financial report
  wardboard report financial

  # Run the local fixture backend
  wardboard sandbox --addr 127.0.0.1:5000`

// newConfigCmd creates the config command group with configuration subcommands.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "config", Short: "Configuration management commands"}
	cmd.AddCommand(
		NewConfigInitCmd(), NewConfigSetCmd(), NewConfigGetCmd(), NewConfigListCmd(),
	)
	return cmd
}

// newPrefsCmd creates the prefs command group.
func newPrefsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "prefs", Short: "Dashboard preferences (hospital name, dark mode)"}
	cmd.AddCommand(NewPrefsGetCmd(), NewPrefsSetCmd())
	return cmd
}
