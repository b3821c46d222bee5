package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/miwok/internal/audio"
	"github.com/jmylchreest/miwok/internal/config"
	"github.com/jmylchreest/miwok/internal/model"
	"github.com/jmylchreest/miwok/internal/tui"
)

var tuiOpts struct {
	noWatch bool
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive TUI browser",
	Long: `Launch the interactive terminal user interface for browsing words.

Each category is a tab. Selecting a word plays its pronunciation; selecting
another word, switching tabs or losing audio focus stops it.

Key bindings:
  j/k, ↑/↓        Navigate list
  enter, space    Play pronunciation
  s, esc          Stop playback
  tab, shift+tab  Next/previous category
  1-9             Jump to category
  +/-             Volume
  y               Copy word to clipboard
  ?               Show help
  q               Quit

Logs are written to ~/.local/state/miwok/miwok.log.`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)

	tuiCmd.Flags().BoolVar(&tuiOpts.noWatch, "no-watch", false,
		"Do not reload the config file when it changes")
}

func runTUI(cmd *cobra.Command, args []string) error {
	// The terminal belongs to the UI, so log to a file instead of stderr.
	log, closeLog, err := openLogFile()
	if err != nil {
		return err
	}
	defer closeLog()

	arbiter, closeArbiter := newArbiter(log)
	defer closeArbiter()

	manager := audio.NewManager(cfg, log)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var refs []model.AudioRef
	for _, c := range library.OpenAll() {
		for _, e := range c.Entries {
			refs = append(refs, e.Audio)
		}
	}
	if err := manager.Start(ctx, refs); err != nil {
		log.Warn("failed to start audio manager", "error", err)
	}
	defer manager.Stop()

	watchPath := configPath()
	if tuiOpts.noWatch {
		watchPath = ""
	}

	return tui.Run(tui.Options{
		Config:     cfg,
		Library:    library,
		Arbiter:    arbiter,
		Player:     manager,
		Volume:     manager,
		ConfigPath: watchPath,
		Logger:     log,
	})
}

// openLogFile returns a logger writing to the TUI log file.
func openLogFile() (*slog.Logger, func(), error) {
	if err := config.EnsureStateDir(); err != nil {
		return nil, nil, fmt.Errorf("failed to create state directory: %w", err)
	}

	f, err := os.OpenFile(config.LogPath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	level := slog.LevelInfo
	if globalOpts.verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level}))
	return log, func() { _ = f.Close() }, nil
}
