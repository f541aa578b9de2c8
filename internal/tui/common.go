package tui

import (
	"os"

	"golang.org/x/term"
)

// ViewState is the dashboard's current mode.
type ViewState int

// View states.
const (
	ViewStateLoading ViewState = iota
	ViewStatePrompt
	ViewStateList
	ViewStateFilter
	ViewStateDetail
	ViewStateConfirm
	ViewStateQuitting
)

// String returns a short name for logs.
func (s ViewState) String() string {
	switch s {
	case ViewStateLoading:
		return "loading"
	case ViewStatePrompt:
		return "prompt"
	case ViewStateList:
		return "list"
	case ViewStateFilter:
		return "filter"
	case ViewStateDetail:
		return "detail"
	case ViewStateConfirm:
		return "confirm"
	case ViewStateQuitting:
		return "quitting"
	default:
		return "unknown"
	}
}

// Key bindings.
const (
	keyQuit     = "q"
	keyCtrlC    = "ctrl+c"
	keyEnter    = "enter"
	keyEsc      = "esc"
	keySlash    = "/"
	keyTab      = "tab"
	keyShiftTab = "shift+tab"
	keyLeft     = "left"
	keyRight    = "right"
	keyPgUp     = "pgup"
	keyPgDown   = "pgdown"
	keyRefresh  = "r"
	keyExport   = "x"
	keyDelete   = "D"
	keyDarkMode = "d"
	keyCycle    = "p"
	keyYes      = "y"
	keyNo       = "n"
)

// Layout defaults used before the first WindowSizeMsg.
const (
	defaultWidth  = 100
	defaultHeight = 32
	minChartWidth = 40
	borderPadding = 4
)

// OutputMode says how a command should render.
type OutputMode int

// Output modes.
const (
	// OutputModePlain writes unstyled text, for pipes and NO_COLOR.
	OutputModePlain OutputMode = iota
	// OutputModeStyled writes lipgloss-styled text without taking over the terminal.
	OutputModeStyled
	// OutputModeInteractive runs the full-screen dashboard.
	OutputModeInteractive
)

// DetectOutputMode picks a mode from flags, the environment, and whether
// stdout is a terminal.
func DetectOutputMode(forcePlain, noColor, noInteractive bool) OutputMode {
	if forcePlain || !isTerminal(os.Stdout) {
		return OutputModePlain
	}
	if noColor || os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb" {
		return OutputModePlain
	}
	if noInteractive || os.Getenv("CI") != "" {
		return OutputModeStyled
	}
	return OutputModeInteractive
}

// TerminalWidth returns the width of stdout, or defaultWidth when unknown.
func TerminalWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return defaultWidth
	}
	return w
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
