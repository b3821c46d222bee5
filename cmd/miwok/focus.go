package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/miwok/internal/dbus"
)

// focusCmd represents the focus command group.
var focusCmd = &cobra.Command{
	Use:   "focus",
	Short: "Inspect or lock the shared audio focus",
	Long: `Inspect or lock the audio focus shared through miwokd.

While the focus is locked every request is denied and the current holder
pauses, the way an incoming call silences media players. Unlocking lets
the holder resume from the start of its word.

Use 'miwok focus status' to check the current state.
Use 'miwok focus lock [reason]' to lock the focus.
Use 'miwok focus unlock' to unlock it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return focusStatusRun(cmd, args)
	},
}

var focusStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the audio focus state",
	RunE:  focusStatusRun,
}

var focusLockCmd = &cobra.Command{
	Use:   "lock [reason]",
	Short: "Deny audio focus to every player",
	RunE:  focusLockRun,
}

var focusUnlockCmd = &cobra.Command{
	Use:   "unlock",
	Short: "Allow audio focus requests again",
	Args:  cobra.NoArgs,
	RunE:  focusUnlockRun,
}

func init() {
	focusCmd.AddCommand(focusStatusCmd)
	focusCmd.AddCommand(focusLockCmd)
	focusCmd.AddCommand(focusUnlockCmd)

	rootCmd.AddCommand(focusCmd)
}

// connectFocus connects to miwokd. The focus commands have no in-process
// fallback: a local arbiter would only ever see this command.
func connectFocus() (*dbus.FocusClient, error) {
	client := dbus.NewFocusClient(logger)
	if err := client.Connect(); err != nil {
		return nil, err
	}
	if err := client.Ping(); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w (is miwokd running?)", err)
	}
	return client, nil
}

func focusStatusRun(cmd *cobra.Command, args []string) error {
	client, err := connectFocus()
	if err != nil {
		return err
	}
	defer client.Close()

	st, err := client.Status()
	if err != nil {
		return err
	}

	state := "unlocked"
	if st.Locked {
		state = "locked"
	}
	fmt.Printf("Audio focus: %s\n", state)
	fmt.Printf("Holders:     %d\n", st.Depth)
	fmt.Printf("Clients:     %d\n", st.Clients)
	return nil
}

func focusLockRun(cmd *cobra.Command, args []string) error {
	client, err := connectFocus()
	if err != nil {
		return err
	}
	defer client.Close()

	reason := strings.Join(args, " ")
	if reason == "" {
		reason = "miwok focus lock"
	}
	if err := client.Lock(reason); err != nil {
		return fmt.Errorf("failed to lock focus: %w", err)
	}
	fmt.Println("Audio focus: locked")
	return nil
}

func focusUnlockRun(cmd *cobra.Command, args []string) error {
	client, err := connectFocus()
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.Unlock(); err != nil {
		return fmt.Errorf("failed to unlock focus: %w", err)
	}
	fmt.Println("Audio focus: unlocked")
	return nil
}
