package cli

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rshade/wardboard/internal/logging"
	"github.com/rshade/wardboard/internal/sandbox"
)

const defaultSandboxAddr = "127.0.0.1:5000"

// NewSandboxCmd creates the sandbox command, which serves a seeded in-memory
// backend with the same routes and messages as the real one.
func NewSandboxCmd() *cobra.Command {
	var (
		addr string
		seed int64
	)

	cmd := &cobra.Command{
		Use:   "sandbox",
		Short: "Run an in-memory hospital backend with generated data",
		Long: `Serves the hospital REST API from memory, seeded with deterministic
synthetic data. Point the dashboard at it with --api-url or api.base_url.
Stop it with Ctrl+C.`,
		Example: `  # Serve on the default backend address
  wardboard sandbox

  # Serve elsewhere with different data
  wardboard sandbox --addr :8080 --seed 7`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg := sandbox.DefaultSeedConfig()
			cfg.Seed = seed
			db, err := sandbox.NewSeeded(cfg)
			if err != nil {
				return fmt.Errorf("seeding sandbox: %w", err)
			}

			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return fmt.Errorf("listening on %s: %w", addr, err)
			}

			log := logging.ComponentLogger(logging.FromContext(ctx), "sandbox")
			log.Info().Ctx(ctx).Str("addr", ln.Addr().String()).Int64("seed", seed).Msg("sandbox started")
			cmd.Printf("Sandbox listening on http://%s/api\n", ln.Addr())

			return sandbox.Serve(ctx, sandbox.NewServer(db, log), ln)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", defaultSandboxAddr, "listen address")
	cmd.Flags().Int64Var(&seed, "seed", sandbox.DefaultSeedConfig().Seed, "random seed for generated data")
	return cmd
}
