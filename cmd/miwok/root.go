// Package main provides the CLI entrypoint for miwok.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/miwok/internal/catalog"
	"github.com/jmylchreest/miwok/internal/config"
	"github.com/jmylchreest/miwok/internal/dbus"
	"github.com/jmylchreest/miwok/internal/focus"
)

// Build-time variables (set via ldflags)
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

// Global configuration and state
var (
	cfg        *config.Config
	globalOpts struct {
		verbose    bool
		configPath string
		focus      string
	}
	logger *slog.Logger

	library *catalog.Library
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "miwok",
	Short: "Miwok vocabulary browser for the terminal",
	Long: `miwok is a terminal vocabulary browser for the Miwok language.

Words are grouped into categories (numbers, family members, colors and
phrases). Selecting a word plays its pronunciation. Playback takes audio
focus, so only one word plays at a time, across every running miwok when
miwokd is running.

Running miwok without a subcommand launches the interactive TUI.`,
	Version:      fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildTime),
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogger()

		var err error
		cfg, err = config.LoadConfig(globalOpts.configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if globalOpts.focus != "" {
			cfg.Focus.Backend = globalOpts.focus
			if err := cfg.Validate(); err != nil {
				return err
			}
		}

		library = catalog.NewLibrary(cfg.CatalogDir(), logger)
		return nil
	},
	// Default to TUI when no subcommand is provided
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd, args)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&globalOpts.verbose, "verbose", "v", false,
		"Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&globalOpts.configPath, "config", "",
		"Path to config file (default: ~/.config/miwok/config.toml)")
	rootCmd.PersistentFlags().StringVar(&globalOpts.focus, "focus", "",
		"Audio focus backend (local, dbus; default from config)")
}

// setupLogger configures the global slog logger.
func setupLogger() {
	level := slog.LevelWarn
	if globalOpts.verbose {
		level = slog.LevelDebug
	}

	// Log to stderr so stdout is clean for output
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	logger = slog.New(handler)
	slog.SetDefault(logger)
}

// configPath returns the config file in use.
func configPath() string {
	if globalOpts.configPath != "" {
		return globalOpts.configPath
	}
	return config.ConfigPath()
}

// newArbiter returns the focus arbiter selected by the configuration and a
// function releasing it. The dbus backend falls back to an in-process
// arbiter when miwokd is not reachable.
func newArbiter(log *slog.Logger) (focus.Arbiter, func()) {
	if cfg.Focus.Backend == config.FocusBackendDBus {
		client := dbus.NewFocusClient(log)
		err := client.Connect()
		if err == nil {
			err = client.Ping()
		}
		if err == nil {
			return client, client.Close
		}
		client.Close()
		log.Warn("focus service unavailable, using in-process focus", "error", err)
	}
	return focus.NewLocal(log), func() {}
}

// focusStream returns the configured focus stream.
func focusStream() focus.Stream {
	// Validate has already rejected unknown names.
	stream, _ := focus.ParseStream(cfg.Focus.Stream)
	return stream
}
