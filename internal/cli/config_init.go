package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rshade/wardboard/internal/config"
)

// NewConfigInitCmd creates the config init command for initializing configuration.
// When a project directory is resolved (without --global), it writes a
// project-local .wardboard/config.yaml. Otherwise, it writes the user-level
// ~/.wardboard/config.yaml.
func NewConfigInitCmd() *cobra.Command {
	var (
		force  bool
		global bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration file with default values",
		Long: `Creates a new configuration file with default values.

With --project-dir (or WARDBOARD_PROJECT_DIR, or inside a directory tree that
already has .wardboard/config.yaml), writes project-local configuration.
Use --global to force user-level configuration.`,
		Example: `  # Create user-level configuration
  wardboard config init

  # Create project-local configuration
  wardboard config init --project-dir .

  # Overwrite an existing file
  wardboard config init --force`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			projectDir := config.GetResolvedProjectDir()

			if projectDir != "" && !global {
				return initConfigAt(cmd, filepath.Join(projectDir, "config.yaml"), force)
			}

			dir, err := config.GetConfigDir()
			if err != nil {
				return err
			}
			return initConfigAt(cmd, filepath.Join(dir, "config.yaml"), force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing configuration file")
	cmd.Flags().BoolVar(&global, "global", false, "write user-level configuration even when a project directory is set")

	return cmd
}

func initConfigAt(cmd *cobra.Command, path string, force bool) error {
	if !force {
		_, err := os.Stat(path)
		if err == nil {
			return errors.New("configuration file already exists, use --force to overwrite")
		}
		if !os.IsNotExist(err) {
			return fmt.Errorf("cannot access config path %s: %w", path, err)
		}
	}

	if err := config.Default().SaveTo(path); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	cmd.Printf("Configuration initialized at %s\n", path)
	return nil
}

// NewConfigGetCmd creates the config get command.
func NewConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "get <key>",
		Short:     "Print one effective configuration value",
		Example:   "  wardboard config get api.base_url",
		Args:      cobra.ExactArgs(1),
		ValidArgs: config.Keys(),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := config.GetGlobalConfig().Get(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), v)
			return nil
		},
	}
}

// NewConfigSetCmd creates the config set command. It edits the user-level
// file so project overlays and environment overrides are not baked in.
func NewConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change a value in the user configuration file",
		Example: `  wardboard config set api.base_url http://hms.local:5000/api
  wardboard config set output.default_format json`,
		Args:      cobra.ExactArgs(2),
		ValidArgs: config.Keys(),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := config.GetConfigDir()
			if err != nil {
				return err
			}
			path := filepath.Join(dir, "config.yaml")

			cfg := config.Default()
			if _, statErr := os.Stat(path); statErr == nil {
				if cfg, err = config.Load(path); err != nil {
					return err
				}
			}
			if err = cfg.Set(args[0], args[1]); err != nil {
				return err
			}
			if err = cfg.Validate(); err != nil {
				return fmt.Errorf("invalid value for %s: %w", args[0], err)
			}
			if err = cfg.SaveTo(path); err != nil {
				return err
			}
			cmd.Printf("Set %s = %s\n", args[0], args[1])
			return nil
		},
	}
}

// NewConfigListCmd creates the config list command.
func NewConfigListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print every effective configuration value",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.GetGlobalConfig()
			keys := config.Keys()
			rows := make([][]string, 0, len(keys))
			for _, k := range keys {
				v, err := cfg.Get(k)
				if err != nil {
					return err
				}
				rows = append(rows, []string{k, v})
			}
			return writeTable(cmd.OutOrStdout(), []string{"Key", "Value"}, rows)
		},
	}
}
