package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rshade/wardboard/internal/api"
	"github.com/rshade/wardboard/internal/config"
	"github.com/rshade/wardboard/internal/logging"
	"github.com/rshade/wardboard/internal/prefs"
	"github.com/rshade/wardboard/internal/store"
)

// newClient builds an API client from the global configuration.
func newClient(ctx context.Context) (*api.Client, error) {
	cfg := config.GetGlobalConfig()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return api.NewClient(cfg.API.BaseURL,
		api.WithTimeout(config.GetAPITimeout()),
		api.WithLogger(logging.FromContext(ctx)),
	)
}

// newStore creates a store over client with every collection registered.
func newStore(ctx context.Context, client *api.Client, notifier store.Notifier) (*store.Store, error) {
	cfg := config.GetGlobalConfig()
	s := store.New(client, notifier, logging.FromContext(ctx),
		store.WithPreloadConcurrency(cfg.Dashboard.PreloadConcurrency),
	)
	if err := store.RegisterAll(s); err != nil {
		return nil, err
	}
	return s, nil
}

// openPrefs opens the preference store under the wardboard home directory.
func openPrefs() (*prefs.FileStore, error) {
	dir, err := config.GetPrefsDir()
	if err != nil {
		return nil, err
	}
	return prefs.NewFileStore(dir)
}

// lookupCollection resolves a collection argument with a helpful error.
func lookupCollection(name string) (api.Collection, error) {
	c, err := api.LookupCollection(name)
	if err != nil {
		return api.Collection{}, fmt.Errorf("%w (valid: %s)", err, strings.Join(api.CollectionNames(), ", "))
	}
	return c, nil
}

// parseID parses a positive record id argument.
func parseID(s string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q: must be a positive integer", s)
	}
	return id, nil
}

// completeCollections completes the collection argument for shell completion.
func completeCollections(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return api.CollectionNames(), cobra.ShellCompDirectiveNoFileComp
}
