package tui

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jmylchreest/miwok/internal/model"
)

type copyResultMsg struct {
	text string
	err  error
}

// copyEntry copies "target (native)" to the clipboard.
func copyEntry(e model.Entry, command string) tea.Cmd {
	text := fmt.Sprintf("%s (%s)", e.Target, e.Native)
	return func() tea.Msg {
		return copyResultMsg{text: text, err: copyText(text, command)}
	}
}

// copyText pipes text into the clipboard command.
func copyText(text, command string) error {
	if command == "" {
		command = detectClipboardCommand()
	}
	if command == "" {
		return fmt.Errorf("no clipboard command available")
	}

	parts := strings.Fields(command)
	if len(parts) == 0 {
		return fmt.Errorf("invalid clipboard command")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c := exec.CommandContext(ctx, parts[0], parts[1:]...)
	c.Stdin = strings.NewReader(text)
	return c.Run()
}

// detectClipboardCommand picks wl-copy on Wayland, then xclip or xsel.
func detectClipboardCommand() string {
	if _, err := exec.LookPath("wl-copy"); err == nil {
		return "wl-copy"
	}
	if _, err := exec.LookPath("xclip"); err == nil {
		return "xclip -selection clipboard"
	}
	if _, err := exec.LookPath("xsel"); err == nil {
		return "xsel --clipboard --input"
	}
	return ""
}
