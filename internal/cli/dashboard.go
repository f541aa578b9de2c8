package cli

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/rshade/wardboard/internal/config"
	"github.com/rshade/wardboard/internal/logging"
	"github.com/rshade/wardboard/internal/tui"
)

// ErrNoTerminal is returned when the dashboard is started without an
// interactive terminal.
var ErrNoTerminal = errors.New(
	"the dashboard needs an interactive terminal; use 'wardboard list', 'show' or 'report' instead")

// dashboardFlags are shared by the root command and the dashboard subcommand.
type dashboardFlags struct {
	noPreload bool
	exportDir string
}

func newDashboardFlags() *dashboardFlags {
	return &dashboardFlags{}
}

func (f *dashboardFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.noPreload, "no-preload", false, "start without fetching every collection (press r to load a tab)")
	cmd.Flags().StringVar(&f.exportDir, "export-dir", ".", "directory receiving CSV exports")
}

// newDashboardCmd creates the dashboard command, an explicit alias of the
// root command's default action.
func newDashboardCmd() *cobra.Command {
	flags := newDashboardFlags()

	cmd := &cobra.Command{
		Use:         "dashboard",
		Aliases:     []string{"ui"},
		Short:       "Start the interactive dashboard",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationTUI: "true"},
		Long: `Starts the full-screen dashboard.

Keys:
  tab / shift+tab   next / previous section
  ← → pgup pgdn     previous / next page
  /                 search the loaded collection
  enter             record details
  D                 delete the selected record
  x                 export the collection to CSV
  p                 cycle the trend period or report
  r                 refresh
  d                 toggle dark mode
  q                 quit`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDashboard(cmd, flags)
		},
	}
	flags.register(cmd)
	return cmd
}

func runDashboard(cmd *cobra.Command, flags *dashboardFlags) error {
	if tui.DetectOutputMode(false, false, false) != tui.OutputModeInteractive {
		return ErrNoTerminal
	}

	ctx := cmd.Context()
	log := logging.FromContext(ctx)

	client, err := newClient(ctx)
	if err != nil {
		return err
	}
	alerts := tui.NewAlertQueue()
	s, err := newStore(ctx, client, alerts)
	if err != nil {
		return err
	}

	ps, err := openPrefs()
	if err != nil {
		log.Warn().Ctx(ctx).Err(err).Msg("preferences unavailable")
	}

	model := tui.NewDashboardModel(ctx, tui.Options{
		Store:       s,
		Backend:     client,
		Alerts:      alerts,
		Prefs:       ps,
		ExportDir:   flags.exportDir,
		SkipPreload: flags.noPreload || !config.GetGlobalConfig().Dashboard.PreloadOnStart,
		Logger:      log,
	})

	log.Info().Ctx(ctx).Str("api", client.BaseURL()).Msg("starting dashboard")
	if _, err = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("running dashboard: %w", err)
	}
	return nil
}
