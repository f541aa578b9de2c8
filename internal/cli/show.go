package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rshade/wardboard/internal/api"
)

// NewShowCmd creates the show command, which prints one record.
func NewShowCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "show <collection> <id>",
		Short: "Print one record",
		Example: `  # Show patient 12
  wardboard show patients 12

  # Same, as JSON
  wardboard show patients 12 --output json`,
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: completeCollections,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := resolveOutputFormat(output)
			if err != nil {
				return err
			}
			coll, err := lookupCollection(args[0])
			if err != nil {
				return err
			}
			id, err := parseID(args[1])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			client, err := newClient(ctx)
			if err != nil {
				return err
			}
			rec, err := client.Get(ctx, coll.Path, id)
			if err != nil {
				return fmt.Errorf("fetching %s %d: %w", coll.Key, id, err)
			}

			if format != OutputTable {
				return writeJSON(cmd.OutOrStdout(), rec)
			}
			rows := make([][]string, len(rec))
			for i, f := range rec {
				rows[i] = []string{f.Key, api.FormatValue(f.Value)}
			}
			return writeTable(cmd.OutOrStdout(), []string{"Field", "Value"}, rows)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output format: table, json")
	return cmd
}
