package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewHealthCmd creates the health command, which checks backend reachability.
func NewHealthCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check that the backend and its database are reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := resolveOutputFormat(output)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			client, err := newClient(ctx)
			if err != nil {
				return err
			}

			status, healthErr := client.Health(ctx)
			if status.Status == "" {
				return fmt.Errorf("backend unreachable at %s: %w", client.BaseURL(), healthErr)
			}

			if format != OutputTable {
				if err = writeJSON(cmd.OutOrStdout(), status); err != nil {
					return err
				}
			} else {
				rows := [][]string{{client.BaseURL(), status.Status, status.Database, status.Error}}
				if err = writeTable(cmd.OutOrStdout(), []string{"URL", "Status", "Database", "Error"}, rows); err != nil {
					return err
				}
			}
			if !status.Healthy() {
				return fmt.Errorf("backend is %s", status.Status)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output format: table, json")
	return cmd
}
