package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rshade/wardboard/internal/api"
	"github.com/rshade/wardboard/internal/charts"
)

// NewLookupCmd creates the lookup command, which prints the id/name pairs
// used to fill foreign keys in create payloads.
func NewLookupCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "lookup <collection>",
		Short: "Print the ids and names of a collection for use in payloads",
		Long: `Prints the backend's picker list of a collection: ids with names, plus the
specialization of doctors, the cost of test types, and the patient, doctor and
time of appointments.

Collections with a picker list: ` + strings.Join(lookupCollections(), ", "),
		Example: `  # Find the doctor_id for a new appointment
  wardboard lookup doctors`,
		Args:              cobra.ExactArgs(1),
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
			if coll.OptionsPath == "" {
				return fmt.Errorf("%s has no lookup list (available: %s)",
					coll.Key, strings.Join(lookupCollections(), ", "))
			}

			ctx := cmd.Context()
			client, err := newClient(ctx)
			if err != nil {
				return err
			}
			opts, err := client.Options(ctx, coll.OptionsPath)
			if err != nil {
				return fmt.Errorf("fetching %s lookup: %w", coll.Key, err)
			}

			out := cmd.OutOrStdout()
			if format != OutputTable {
				return writeJSONOrNDJSON(out, format, opts)
			}
			rows := make([][]string, len(opts))
			for i, o := range opts {
				rows[i] = []string{strconv.Itoa(o.ID), o.Label(), optionDetail(o)}
			}
			return writeTable(out, []string{"ID", "Name", "Detail"}, rows)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output format: table, json, ndjson")
	return cmd
}

func lookupCollections() []string {
	var keys []string
	for _, c := range api.Collections() {
		if c.OptionsPath != "" {
			keys = append(keys, c.Key)
		}
	}
	return keys
}

func optionDetail(o api.Option) string {
	switch {
	case o.Specialization != "":
		return o.Specialization
	case o.Cost != 0:
		return charts.FormatCurrency(o.Cost.Float64())
	case o.PatientID != 0 || o.DoctorID != 0:
		return fmt.Sprintf("patient %d, doctor %d", o.PatientID, o.DoctorID)
	default:
		return ""
	}
}
