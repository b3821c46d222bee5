// Package main is the entry point for the miwokd audio focus daemon.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmylchreest/miwok/internal/dbus"
	"github.com/jmylchreest/miwok/internal/focus"
)

var (
	// Build-time variables
	version = "dev"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version and exit")
	verbose := flag.Bool("verbose", false, "Enable debug logging")
	flag.Parse()

	if *showVersion {
		fmt.Println("miwokd version", version)
		os.Exit(0)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("miwokd failed", "error", err)
		os.Exit(1)
	}
}

// run serves the focus arbiter on the session bus until SIGINT or SIGTERM.
func run(logger *slog.Logger) error {
	logger.Info("starting miwokd", "version", version)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	arbiter := focus.NewLocal(logger)
	server := dbus.NewFocusServer(arbiter, logger)
	if err := server.Start(); err != nil {
		return err
	}

	logger.Info("miwokd ready", "bus_name", dbus.DBusBusName)
	<-ctx.Done()
	logger.Info("received signal, shutting down")

	if err := server.Stop(); err != nil {
		logger.Warn("error stopping focus server", "error", err)
	}

	logger.Info("miwokd stopped", "clients", server.Clients())
	return nil
}
