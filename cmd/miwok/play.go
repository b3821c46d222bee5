package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/miwok/internal/audio"
	"github.com/jmylchreest/miwok/internal/focus"
	"github.com/jmylchreest/miwok/internal/model"
	"github.com/jmylchreest/miwok/internal/playback"
)

// errFocusDenied is returned when another player holds the audio.
var errFocusDenied = errors.New("audio focus denied, another player is busy")

var playOpts struct {
	repeat int
	volume int
	quiet  bool
}

var playCmd = &cobra.Command{
	Use:   "play <category> <index|word>",
	Short: "Play the pronunciation of one word",
	Long: `Play the pronunciation of one word and exit when it finishes.

The word is given as a 1-based index or as a label in either language.
Playback takes audio focus like the TUI: it pauses while another player
holds the audio transiently, resumes from the start when the focus comes
back, and stops when the focus is taken for good.

Examples:
  miwok play numbers 3
  miwok play family mother
  miwok play phrases "Where are you going?" --repeat 3`,
	Args: cobra.ExactArgs(2),
	RunE: runPlay,
}

func init() {
	rootCmd.AddCommand(playCmd)

	playCmd.Flags().IntVarP(&playOpts.repeat, "repeat", "r", 1,
		"Number of times to play the word")
	playCmd.Flags().IntVar(&playOpts.volume, "volume", -1,
		"Volume 0-100 (default from config)")
	playCmd.Flags().BoolVarP(&playOpts.quiet, "quiet", "q", false,
		"Do not print the word")
}

func runPlay(cmd *cobra.Command, args []string) error {
	c, err := library.Open(args[0])
	if err != nil {
		return err
	}
	entry, err := c.Lookup(args[1])
	if err != nil {
		return err
	}

	arbiter, closeArbiter := newArbiter(logger)
	defer closeArbiter()

	manager := audio.NewManager(cfg, logger)
	defer manager.Stop()
	if playOpts.volume >= 0 {
		manager.SetVolume(min(100, playOpts.volume))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p := newHeadlessPlayer(c.Name, arbiter, manager)
	for i := 0; i < max(1, playOpts.repeat); i++ {
		if !playOpts.quiet {
			fmt.Printf("♪ %s (%s)\n", entry.Target, entry.Native)
		}
		finished, err := p.play(ctx, entry)
		if err != nil {
			return err
		}
		if !finished {
			break
		}
	}
	return nil
}

// headlessPlayer drives a playback controller from a plain event loop.
type headlessPlayer struct {
	ctrl   *playback.Controller
	events chan func()

	// complete is set when the last session ended by draining.
	complete bool
}

func newHeadlessPlayer(name string, arbiter focus.Arbiter, player playback.AudioPlayer) *headlessPlayer {
	h := &headlessPlayer{
		// Callbacks from an in-process arbiter arrive while Select is
		// running on this goroutine, so the queue must not block.
		events: make(chan func(), 32),
	}
	h.ctrl = playback.NewController(playback.Options{
		Name:     name,
		Arbiter:  arbiter,
		Player:   player,
		Stream:   focusStream(),
		Gain:     focus.GainTransient,
		Dispatch: func(fn func()) { h.events <- fn },
		OnStateChange: func(state playback.State, e model.Entry) {
			logger.Debug("playback state", "state", state, "entry", e.Target)
			if state == playback.StatePaused && !playOpts.quiet {
				fmt.Fprintln(os.Stderr, "paused, another player has the audio")
			}
		},
		OnComplete: func(model.Entry) { h.complete = true },
		Logger:     logger,
	})
	return h
}

// play plays entry once and reports whether it played to the end. It returns
// false when the focus was lost for good or ctx was cancelled.
func (h *headlessPlayer) play(ctx context.Context, entry model.Entry) (bool, error) {
	h.complete = false
	if err := h.ctrl.Select(entry); err != nil {
		return false, err
	}
	if h.ctrl.State() == playback.StateIdle {
		return false, errFocusDenied
	}

	for h.ctrl.State() != playback.StateIdle {
		select {
		case fn := <-h.events:
			fn()
		case <-ctx.Done():
			h.ctrl.Release()
			return false, nil
		}
	}
	return h.complete, nil
}
