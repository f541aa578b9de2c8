package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rshade/wardboard/internal/config"
	"github.com/rshade/wardboard/internal/logging"
)

// setupLogging configures logging based on config file, environment, and CLI flags.
func setupLogging(cmd *cobra.Command) logging.LogPathResult {
	loggingCfg := config.GetLoggingConfig()
	tui := cmd.Annotations[annotationTUI] == "true"

	debug, _ := cmd.Flags().GetBool("debug")
	if debug {
		loggingCfg.Level = "debug"
		if !tui {
			loggingCfg.Format = logging.FormatConsole
			loggingCfg.File = ""
		}
	}

	// The dashboard owns the terminal, so it always logs to a file.
	if tui && loggingCfg.File == "" {
		path, err := config.GetDefaultLogFile()
		if err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: could not resolve log file: %v\n", err)
		} else {
			loggingCfg.File = path
		}
	}

	result := logging.NewLoggerWithPath(loggingCfg.ToLoggingConfig())
	logger = logging.ComponentLogger(result.Logger, "cli")

	if result.FallbackUsed {
		logging.PrintFallbackWarning(cmd.ErrOrStderr(), result.FallbackReason)
	} else if result.UsingFile && debug {
		logging.PrintLogPathMessage(cmd.ErrOrStderr(), result.FilePath)
	}

	ctx := cmd.Context()
	traceID := logging.GetOrGenerateTraceID(ctx)
	ctx = logging.ContextWithTraceID(ctx, traceID)
	ctx = logger.With().Str(logging.TraceIDField, traceID).Logger().WithContext(ctx)
	cmd.SetContext(ctx)

	logger.Debug().Ctx(ctx).Str("command", cmd.Name()).Msg("command started")

	return result
}

// cleanupLogging closes the log file handle.
func cleanupLogging(cmd *cobra.Command, logResult *logging.LogPathResult) error {
	logger.Debug().Ctx(cmd.Context()).Str("command", cmd.Name()).Msg("command finished")
	if logResult != nil {
		return logResult.Close()
	}
	return nil
}
