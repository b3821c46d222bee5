// Package tui provides the BubbleTea-based terminal user interface.
package tui

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jmylchreest/miwok/internal/catalog"
	"github.com/jmylchreest/miwok/internal/config"
	"github.com/jmylchreest/miwok/internal/focus"
	"github.com/jmylchreest/miwok/internal/playback"
)

// Mode represents the current UI mode.
type Mode int

const (
	ModeList Mode = iota
	ModeHelp
)

// volumeStep is the change applied by the volume keys.
const volumeStep = 10

// VolumeControl adjusts the output volume (0 to 100).
type VolumeControl interface {
	SetVolume(volume int)
	Volume() int
}

// ConfigUpdater is implemented by players that follow configuration reloads.
type ConfigUpdater interface {
	UpdateConfig(cfg *config.Config)
}

// Options configures the TUI.
type Options struct {
	Config  *config.Config
	Library *catalog.Library
	Arbiter focus.Arbiter
	Player  playback.AudioPlayer
	// Volume is optional; without it the volume keys do nothing.
	Volume VolumeControl
	// ConfigPath is watched for changes while the TUI runs. Empty disables
	// reloading.
	ConfigPath string
	Logger     *slog.Logger
}

// Model is the main TUI model.
type Model struct {
	cfg     *config.Config
	library *catalog.Library
	volume  VolumeControl
	updater ConfigUpdater
	logger  *slog.Logger
	loop    *eventLoop

	mode    Mode
	screens []*screen
	active  int

	help help.Model
	keys KeyMap

	width  int
	height int
	ready  bool

	statusMsg string
	statusErr bool
}

type statusMsg struct {
	text  string
	isErr bool
}

type clearStatusMsg struct{}

// catalogChangedMsg reports a user catalog file change.
type catalogChangedMsg struct {
	name string
}

// configReloadedMsg carries a configuration reloaded from disk.
type configReloadedMsg struct {
	cfg *config.Config
}

// configErrorMsg reports a changed config file that was rejected.
type configErrorMsg struct {
	err error
}

// New creates the TUI model with one screen per available catalog.
func New(opts Options) Model {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	lib := opts.Library
	if lib == nil {
		lib = catalog.NewLibrary(cfg.CatalogDir(), logger)
	}

	// Validate has already rejected unknown names.
	stream, _ := focus.ParseStream(cfg.Focus.Stream)

	m := Model{
		cfg:     cfg,
		library: lib,
		volume:  opts.Volume,
		logger:  logger,
		loop:    newEventLoop(),
		mode:    ModeList,
		help:    help.New(),
		keys:    DefaultKeyMap(),
	}
	if u, ok := opts.Player.(ConfigUpdater); ok {
		m.updater = u
	}

	for i, c := range lib.OpenAll() {
		s := newScreen(c, cfg.ColorFor(c.Name, c.Color), cfg.TUI.ShowImages)
		s.ctrl = playback.NewController(playback.Options{
			Name:          c.Name,
			Arbiter:       opts.Arbiter,
			Player:        opts.Player,
			Stream:        stream,
			Gain:          focus.GainTransient,
			Dispatch:      m.loop.dispatch,
			OnStateChange: s.onStateChange,
			Logger:        logger,
		})
		if c.Name == cfg.Catalog.Default {
			m.active = i
		}
		m.screens = append(m.screens, s)
	}

	return m
}

// Init initializes the TUI.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.help.Width = msg.Width
		for _, s := range m.screens {
			s.list.SetSize(msg.Width, m.listHeight())
		}
		return m, nil

	case tea.BlurMsg:
		if m.cfg.TUI.StopOnBlur {
			if s := m.activeScreen(); s != nil && s.state != playback.StateIdle {
				s.ctrl.OnScreenStopped()
				m.logger.Debug("terminal lost focus, playback stopped", "catalog", s.catalog.Name)
			}
		}
		return m, nil

	case dispatchMsg:
		msg.fn()
		return m, nil

	case catalogChangedMsg:
		for _, s := range m.screens {
			if s.catalog.Name == msg.name {
				s.stale = true
			}
		}
		return m, status(fmt.Sprintf("Catalog %s changed, reloads when opened", msg.name), false)

	case configReloadedMsg:
		m.applyConfig(msg.cfg)
		return m, status("Configuration reloaded", false)

	case configErrorMsg:
		return m, status("Configuration not reloaded: "+msg.err.Error(), true)

	case statusMsg:
		m.statusMsg = msg.text
		m.statusErr = msg.isErr
		return m, tea.Tick(3*time.Second, func(t time.Time) tea.Msg {
			return clearStatusMsg{}
		})

	case clearStatusMsg:
		m.statusMsg = ""
		m.statusErr = false
		return m, nil

	case copyResultMsg:
		if msg.err != nil {
			return m, status("Copy failed: "+msg.err.Error(), true)
		}
		return m, status("Copied "+msg.text, false)
	}

	if s := m.activeScreen(); s != nil {
		var cmd tea.Cmd
		s.list, cmd = s.list.Update(msg)
		return m, cmd
	}
	return m, nil
}

func status(text string, isErr bool) tea.Cmd {
	return func() tea.Msg {
		return statusMsg{text: text, isErr: isErr}
	}
}

// handleKey handles key presses.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.stopAll()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		if m.mode == ModeHelp {
			m.mode = ModeList
		} else {
			m.mode = ModeHelp
		}
		m.help.ShowAll = m.mode == ModeHelp
		return m, nil
	}

	if m.mode == ModeHelp {
		if msg.Type == tea.KeyEsc {
			m.mode = ModeList
			m.help.ShowAll = false
		}
		return m, nil
	}

	s := m.activeScreen()
	if s == nil {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.NextTab):
		m.switchTo((m.active + 1) % len(m.screens))
		return m, nil

	case key.Matches(msg, m.keys.PrevTab):
		m.switchTo((m.active - 1 + len(m.screens)) % len(m.screens))
		return m, nil

	case key.Matches(msg, m.keys.JumpTab):
		m.switchTo(int(msg.Runes[0] - '1'))
		return m, nil

	case key.Matches(msg, m.keys.Play):
		entry, ok := s.selected()
		if !ok {
			return m, nil
		}
		// A denied focus request leaves the screen idle without a message.
		if err := s.ctrl.Select(entry); err != nil {
			return m, status(err.Error(), true)
		}
		return m, nil

	case key.Matches(msg, m.keys.Stop):
		s.ctrl.Release()
		return m, nil

	case key.Matches(msg, m.keys.VolumeUp):
		return m, m.changeVolume(volumeStep)

	case key.Matches(msg, m.keys.VolumeDown):
		return m, m.changeVolume(-volumeStep)

	case key.Matches(msg, m.keys.Copy):
		if entry, ok := s.selected(); ok {
			return m, copyEntry(entry, m.cfg.TUI.ClipboardCommand)
		}
		return m, nil
	}

	var cmd tea.Cmd
	s.list, cmd = s.list.Update(msg)
	return m, cmd
}

// switchTo makes screen i active. The screen being left stops playing.
func (m *Model) switchTo(i int) {
	if i < 0 || i >= len(m.screens) || i == m.active {
		return
	}
	m.screens[m.active].ctrl.OnScreenStopped()
	m.active = i

	s := m.screens[i]
	if s.stale {
		c, err := m.library.Open(s.catalog.Name)
		if err != nil {
			m.logger.Warn("failed to reload catalog", "catalog", s.catalog.Name, "error", err)
			return
		}
		s.setCatalog(c)
		m.logger.Debug("catalog reloaded", "catalog", c.Name, "entries", c.Len())
	}
}

// applyConfig takes over a reloaded configuration. The focus stream and
// default catalog only apply at startup.
func (m *Model) applyConfig(cfg *config.Config) {
	m.cfg = cfg
	for _, s := range m.screens {
		s.color = cfg.ColorFor(s.catalog.Name, s.catalog.Color)
		s.showImages = cfg.TUI.ShowImages
		s.list.SetDelegate(s.delegate())
		if m.ready {
			s.list.SetSize(m.width, m.listHeight())
		}
	}
	if m.updater != nil {
		m.updater.UpdateConfig(cfg)
	}
}

// stopAll releases every screen's playback.
func (m *Model) stopAll() {
	for _, s := range m.screens {
		s.ctrl.OnScreenStopped()
	}
}

func (m Model) changeVolume(delta int) tea.Cmd {
	if m.volume == nil {
		return nil
	}
	v := max(0, min(100, m.volume.Volume()+delta))
	m.volume.SetVolume(v)
	return status(fmt.Sprintf("Volume %d%%", v), false)
}

func (m Model) activeScreen() *screen {
	if m.active < 0 || m.active >= len(m.screens) {
		return nil
	}
	return m.screens[m.active]
}

// listHeight is the terminal height minus tabs, status line and help line.
func (m Model) listHeight() int {
	chrome := 3
	if m.cfg.TUI.ShowHelp {
		chrome++
	}
	return max(0, m.height-chrome)
}

// View renders the TUI.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	if len(m.screens) == 0 {
		return "No catalogs available.\n"
	}

	switch m.mode {
	case ModeHelp:
		return m.viewHelp()
	default:
		return m.viewList()
	}
}

func (m Model) viewList() string {
	var b strings.Builder
	b.WriteString(m.viewTabs())
	b.WriteString("\n\n")
	b.WriteString(m.activeScreen().list.View())
	b.WriteString("\n")
	b.WriteString(m.viewStatus())
	if m.cfg.TUI.ShowHelp {
		b.WriteString("\n")
		b.WriteString(m.help.View(m.keys))
	}
	return b.String()
}

func (m Model) viewTabs() string {
	tabs := make([]string, 0, len(m.screens))
	for i, s := range m.screens {
		label := fmt.Sprintf("%d %s", i+1, s.catalog.Title)
		style := lipgloss.NewStyle().Padding(0, 1)
		if i == m.active {
			style = style.Bold(true).
				Background(lipgloss.Color(s.color)).
				Foreground(lipgloss.Color(rowForeground))
		} else {
			style = style.Foreground(lipgloss.Color("8"))
		}
		tabs = append(tabs, style.Render(label))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewStatus() string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color("7"))

	if m.statusMsg != "" {
		if m.statusErr {
			style = style.Foreground(lipgloss.Color("9"))
		}
		return style.Render(m.statusMsg)
	}

	s := m.activeScreen()
	var text string
	switch s.state {
	case playback.StatePlaying:
		text = fmt.Sprintf("♪ %s (%s)", s.current.Target, s.current.Native)
	case playback.StatePaused:
		text = fmt.Sprintf("Paused %s, another player has the audio", s.current.Target)
	default:
		text = fmt.Sprintf("%d words. Press enter to hear one.", s.catalog.Len())
	}
	return style.Render(text)
}

func (m Model) viewHelp() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		MarginBottom(1)

	s := titleStyle.Render("Keyboard Shortcuts") + "\n\n"
	s += m.help.View(m.keys)
	s += "\n\n" + lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(
		"Press ? or esc to return")
	return s
}
