package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/clydeside/ticketwatch/internal/dashboard"
	"github.com/clydeside/ticketwatch/internal/di"
	"github.com/clydeside/ticketwatch/internal/monitor"
	"github.com/clydeside/ticketwatch/internal/notify"
	"github.com/clydeside/ticketwatch/internal/store"
	"github.com/samber/do/v2"
	slogmulti "github.com/samber/slog-multi"
)

const usage = `usage: ticketwatch [command]

commands:
  run                single check of all subreddits, then exit
  watch              continuous monitoring with the dashboard server
  test [channel]     send a test notification (email|telegram|discord|slack|ifttt|pushover|all)
  dashboard [path]   write the static dashboard HTML (default dashboard.html)

With no command, ticketwatch runs a single check under CI (GITHUB_ACTIONS set)
and watches continuously otherwise.`

func main() {
	// Setup structured logging with multiple handlers using slog-multi
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	jsonHandler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	})

	// Use Fanout to send logs to both handlers
	multiHandler := slogmulti.Fanout(textHandler, jsonHandler)
	logger := slog.New(multiHandler)
	slog.SetDefault(logger)

	// Setup dependency injection; config validation happens here and a
	// missing required option is fatal before any network activity
	injector, err := di.Setup()
	if err != nil {
		slog.Error("Failed to setup dependency injection", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := di.Shutdown(injector); err != nil {
			slog.Error("Error during shutdown", "error", err)
		}
	}()

	command := ""
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	switch command {
	case "run":
		runOnce(injector)
	case "watch":
		watch(injector)
	case "test":
		only := "all"
		if len(os.Args) > 2 {
			only = os.Args[2]
		}
		sendTest(injector, only)
	case "dashboard":
		path := "dashboard.html"
		if len(os.Args) > 2 {
			path = os.Args[2]
		}
		writeDashboard(injector, path)
	case "", "auto":
		// Single run under an external CI scheduler, continuous otherwise
		if os.Getenv("GITHUB_ACTIONS") != "" {
			slog.Info("Running in CI mode (single check)")
			runOnce(injector)
		} else {
			watch(injector)
		}
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
}

func runOnce(injector do.Injector) {
	mon := do.MustInvoke[*monitor.Monitor](injector)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := mon.RunOnce(ctx); err != nil {
		slog.Error("Check failed", "error", err)
		os.Exit(1)
	}
}

func watch(injector do.Injector) {
	mon := do.MustInvoke[*monitor.Monitor](injector)
	server := do.MustInvoke[*dashboard.Server](injector)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go func() {
		if err := server.Start(); err != nil {
			slog.Error("Failed to start dashboard server", "error", err)
		}
	}()

	slog.Info("Press Ctrl+C to stop")
	mon.Run(ctx)
}

func sendTest(injector do.Injector, only string) {
	dispatcher := do.MustInvoke[*notify.Dispatcher](injector)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	sent := dispatcher.SendTest(ctx, only)
	if len(sent) == 0 {
		slog.Error("Failed to send test notifications", "requested", only)
		os.Exit(1)
	}
	slog.Info("Test notifications sent", "channels", sent)
}

func writeDashboard(injector do.Injector, path string) {
	history := do.MustInvoke[*store.History](injector)
	if err := history.Load(); err != nil {
		slog.Warn("Could not load match history", "error", err)
	}

	html := dashboard.Render(history.All(), time.Now())
	if err := os.WriteFile(path, []byte(html), 0644); err != nil {
		slog.Error("Failed to write dashboard", "path", path, "error", err)
		os.Exit(1)
	}
	slog.Info("Dashboard generated", "path", path)
}
