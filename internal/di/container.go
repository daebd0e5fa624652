package di

import (
	"path/filepath"

	"github.com/clydeside/ticketwatch/internal/config"
	"github.com/clydeside/ticketwatch/internal/dashboard"
	"github.com/clydeside/ticketwatch/internal/monitor"
	"github.com/clydeside/ticketwatch/internal/notify"
	"github.com/clydeside/ticketwatch/internal/reddit"
	"github.com/clydeside/ticketwatch/internal/store"
	"github.com/samber/do/v2"
	"github.com/samber/oops"
)

// Setup initializes the dependency injection container
func Setup() (do.Injector, error) {
	injector := do.New()

	// Register Config
	do.Provide(injector, func(i do.Injector) (*config.Config, error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, oops.With("context", "failed to load config").Wrap(err)
		}
		return cfg, nil
	})

	// Register Reddit client
	do.Provide(injector, func(i do.Injector) (*reddit.Client, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return reddit.NewClient(cfg.RedditUserAgent), nil
	})

	// Register seen-post store
	do.Provide(injector, func(i do.Injector) (*store.FileSeenStore, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return store.NewFileSeenStore(filepath.Join(cfg.StoragePath, "seen_posts.json")), nil
	})

	// Register match history
	do.Provide(injector, func(i do.Injector) (*store.History, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return store.NewHistory(filepath.Join(cfg.StoragePath, "match_history.json")), nil
	})

	// Register notification dispatcher
	do.Provide(injector, func(i do.Injector) (*notify.Dispatcher, error) {
		cfg := do.MustInvoke[*config.Config](i)
		dispatcher, err := notify.FromConfig(cfg)
		if err != nil {
			return nil, oops.With("context", "failed to build notification channels").Wrap(err)
		}
		return dispatcher, nil
	})

	// Register monitor
	do.Provide(injector, func(i do.Injector) (*monitor.Monitor, error) {
		cfg := do.MustInvoke[*config.Config](i)
		client := do.MustInvoke[*reddit.Client](i)
		seen := do.MustInvoke[*store.FileSeenStore](i)
		history := do.MustInvoke[*store.History](i)
		dispatcher := do.MustInvoke[*notify.Dispatcher](i)
		return monitor.New(cfg, client, seen, history, dispatcher), nil
	})

	// Register dashboard server
	do.Provide(injector, func(i do.Injector) (*dashboard.Server, error) {
		cfg := do.MustInvoke[*config.Config](i)
		history := do.MustInvoke[*store.History](i)
		return dashboard.NewServer(cfg.HTTPPort, history), nil
	})

	return injector, nil
}

// Shutdown gracefully shuts down container-managed services
func Shutdown(injector do.Injector) error {
	// A run in flight persists its own state; this only covers an
	// interrupt that lands between passes.
	if seen, err := do.Invoke[*store.FileSeenStore](injector); err == nil && seen != nil {
		if seen.Len() > 0 {
			return seen.Save()
		}
	}
	return nil
}
