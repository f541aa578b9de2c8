package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rshade/wardboard/internal/prefs"
)

// Preference names accepted on the command line.
const (
	prefHospitalName = "hospital-name"
	prefDarkMode     = "dark-mode"
)

func prefNames() []string {
	return []string{prefHospitalName, prefDarkMode}
}

// NewPrefsGetCmd creates the prefs get command.
func NewPrefsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "get [name]",
		Short:     "Print dashboard preferences",
		Example:   "  wardboard prefs get\n  wardboard prefs get dark-mode",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: prefNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			ps, err := openPrefs()
			if err != nil {
				return err
			}
			names := prefNames()
			if len(args) == 1 {
				names = []string{strings.ToLower(args[0])}
			}
			for _, name := range names {
				v, getErr := readPref(ps, name)
				if getErr != nil {
					return getErr
				}
				if len(args) == 1 {
					fmt.Fprintln(cmd.OutOrStdout(), v)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", name, v)
				}
			}
			return nil
		},
	}
}

// NewPrefsSetCmd creates the prefs set command.
func NewPrefsSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <name> <value>",
		Short: "Change a dashboard preference",
		Example: `  wardboard prefs set hospital-name "St. Elsewhere"
  wardboard prefs set dark-mode enabled`,
		Args:      cobra.ExactArgs(2),
		ValidArgs: prefNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			ps, err := openPrefs()
			if err != nil {
				return err
			}
			name := strings.ToLower(args[0])
			switch name {
			case prefHospitalName:
				err = ps.SetHospitalName(args[1])
			case prefDarkMode:
				dark, parseErr := prefs.ParseDarkMode(args[1])
				if parseErr != nil {
					return parseErr
				}
				err = ps.SetDarkMode(dark)
			default:
				return unknownPref(name)
			}
			if err != nil {
				return fmt.Errorf("saving %s: %w", name, err)
			}
			cmd.Printf("Set %s\n", name)
			return nil
		},
	}
}

func readPref(ps *prefs.FileStore, name string) (string, error) {
	switch name {
	case prefHospitalName:
		v, err := ps.HospitalName()
		if err != nil {
			return "", err
		}
		if v == "" {
			return "(not set)", nil
		}
		return v, nil
	case prefDarkMode:
		dark, err := ps.DarkMode()
		if err != nil {
			return "", err
		}
		if dark {
			return prefs.DarkModeEnabled, nil
		}
		return prefs.DarkModeDisabled, nil
	default:
		return "", unknownPref(name)
	}
}

func unknownPref(name string) error {
	return fmt.Errorf("unknown preference %q (valid: %s)", name, strings.Join(prefNames(), ", "))
}
