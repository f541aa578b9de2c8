package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rshade/wardboard/internal/logging"
)

// exportStampLayout dates default export file names.
const exportStampLayout = "20060102"

// NewExportCmd creates the export command, which downloads a collection as CSV.
func NewExportCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export <collection>",
		Short: "Download a collection as CSV",
		Long: `Streams the backend's CSV export of a collection to a file.

The default file name is <collection>_export_YYYYMMDD.csv in the working
directory. Use --out - to write to standard output.`,
		Example: `  # Export patients to patients_export_20261017.csv
  wardboard export patients

  # Export test types to a chosen path
  wardboard export tests/types --out /tmp/tests.csv

  # Pipe bills into another tool
  wardboard export bills --out - | csvlook`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeCollections,
		RunE: func(cmd *cobra.Command, args []string) error {
			coll, err := lookupCollection(args[0])
			if err != nil {
				return err
			}
			if out == "" {
				out = defaultExportName(coll.Path, time.Now())
			}

			ctx := cmd.Context()
			client, err := newClient(ctx)
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			var f *os.File
			if out != stdinPath {
				if f, err = os.Create(out); err != nil {
					return fmt.Errorf("creating %s: %w", out, err)
				}
				w = f
			}

			n, err := client.ExportCSV(ctx, coll.Path, w)
			if f != nil {
				if closeErr := f.Close(); err == nil {
					err = closeErr
				}
				if err != nil {
					_ = os.Remove(out)
				}
			}
			if err != nil {
				return fmt.Errorf("exporting %s: %w", coll.Key, err)
			}

			log := logging.FromContext(ctx)
			log.Info().Ctx(ctx).
				Str("collection", coll.Key).
				Int64("bytes", n).
				Str("path", out).
				Msg("export complete")
			if f != nil {
				cmd.Printf("Exported %d bytes to %s\n", n, out)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "O", "", "output file, or - for stdout")
	return cmd
}

func defaultExportName(path string, now time.Time) string {
	return fmt.Sprintf("%s_export_%s.csv", strings.ReplaceAll(path, "/", "_"), now.Format(exportStampLayout))
}
