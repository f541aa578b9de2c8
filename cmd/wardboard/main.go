// Command wardboard is the hospital administration dashboard and CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rshade/wardboard/internal/cli"
	"github.com/rshade/wardboard/pkg/version"
)

// exitInterrupted follows the shell convention for SIGINT.
const exitInterrupted = 130

func main() {
	if code := exitCode(run()); code != 0 {
		os.Exit(code)
	}
}

func run() error {
	root := cli.NewRootCmd(version.GetVersion())
	err := root.ExecuteContext(context.Background())
	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return err
}

// exitCode maps the error returned by run to a process exit status.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, context.Canceled):
		return exitInterrupted
	default:
		return 1
	}
}
