// Command navigator-web serves the ritual grammar ontology navigator.
//
// Configuration comes from NAVIGATOR_* environment variables, optionally
// layered over a YAML file given with -config or NAVIGATOR_CONFIG_FILE.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ritualgrammar/navigator/internal/app"
	"github.com/ritualgrammar/navigator/internal/config"
	"github.com/ritualgrammar/navigator/internal/server"
	"github.com/ritualgrammar/navigator/web/handlers"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "", "Path to a YAML config file (overrides NAVIGATOR_CONFIG_FILE)")
	showVersion := flag.Bool("version", false, "Print the version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(handlers.Version)
		return
	}

	if *configPath == "" {
		*configPath = os.Getenv("NAVIGATOR_CONFIG_FILE")
	}

	// Load configuration
	cfg, err := config.LoadConfigFrom(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	slog.SetDefault(app.NewLogger(cfg.Log, os.Stderr))

	// Setup context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	addr, err := startServer(ctx, cfg)
	if err != nil {
		slog.Error("failed to start server", "error", err)
		os.Exit(1)
	}
	slog.Info("navigator running",
		"url", "http://"+addr,
		"ontology", cfg.Ontology.Source,
		"storage", cfg.Storage.StorageEngine,
		"reasoner", cfg.Reasoner.Mode)

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	slog.Info("shutting down gracefully")
	cancel()
	time.Sleep(1 * time.Second) // Give time for connections to close
}

// startServer builds the navigator for cfg and starts serving it. It returns
// the address being listened on.
func startServer(ctx context.Context, cfg *config.Config) (string, error) {
	nav, err := app.NewNavigator(cfg)
	if err != nil {
		return "", err
	}
	addr, _, err := server.Start(ctx, cfg, nav)
	return addr, err
}
