package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// ErrNotInteractive is returned when a confirmation is needed but stdin is
// not a terminal.
var ErrNotInteractive = errors.New("confirmation required: stdin is not a terminal (use --yes)")

// PromptResult contains the result of a user prompt interaction.
type PromptResult struct {
	// Accepted is true if the user typed "y" or "yes".
	Accepted bool
	// Cancelled is true if reading the answer failed.
	Cancelled bool
}

// Confirm asks question on writer and reads a y/N answer from reader.
// Empty input and EOF decline.
func Confirm(writer io.Writer, reader io.Reader, question string) (PromptResult, error) {
	if f, ok := reader.(*os.File); ok && !term.IsTerminal(int(f.Fd())) {
		return PromptResult{}, ErrNotInteractive
	}

	fmt.Fprintf(writer, "%s [y/N] ", question)

	scanner := bufio.NewScanner(reader)
	if !scanner.Scan() {
		if scanner.Err() != nil {
			return PromptResult{Cancelled: true}, nil
		}
		return PromptResult{}, nil
	}

	switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
	case "y", "yes":
		return PromptResult{Accepted: true}, nil
	default:
		return PromptResult{}, nil
	}
}
