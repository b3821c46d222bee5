package tui

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/miwok/internal/catalog"
	"github.com/jmylchreest/miwok/internal/config"
	"github.com/jmylchreest/miwok/internal/focus"
	"github.com/jmylchreest/miwok/internal/model"
	"github.com/jmylchreest/miwok/internal/playback"
)

type stubTrack struct {
	started  int
	released int
	complete func()
}

func (s *stubTrack) Start()               { s.started++ }
func (s *stubTrack) Pause()               {}
func (s *stubTrack) SeekToStart()         {}
func (s *stubTrack) Release()             { s.released++ }
func (s *stubTrack) OnComplete(fn func()) { s.complete = fn }

type stubPlayer struct {
	loads  []model.AudioRef
	tracks []*stubTrack
	err    error
}

func (p *stubPlayer) Load(ref model.AudioRef) (playback.Track, error) {
	p.loads = append(p.loads, ref)
	if p.err != nil {
		return nil, p.err
	}
	t := &stubTrack{}
	p.tracks = append(p.tracks, t)
	return t, nil
}

func (p *stubPlayer) last() *stubTrack {
	return p.tracks[len(p.tracks)-1]
}

type stubVolume struct{ v int }

func (s *stubVolume) SetVolume(v int) { s.v = v }
func (s *stubVolume) Volume() int     { return s.v }

type harness struct {
	m       Model
	player  *stubPlayer
	arbiter *focus.Local
	cfg     *config.Config
	lib     *catalog.Library
}

func newHarness(t *testing.T, mutate func(*config.Config)) *harness {
	t.Helper()
	cfg := config.DefaultConfig()
	if mutate != nil {
		mutate(cfg)
	}
	h := &harness{
		player:  &stubPlayer{},
		arbiter: focus.NewLocal(nil),
		cfg:     cfg,
		lib:     catalog.NewLibrary(t.TempDir(), nil),
	}
	h.m = New(Options{
		Config:  cfg,
		Library: h.lib,
		Arbiter: h.arbiter,
		Player:  h.player,
	})
	h.send(tea.WindowSizeMsg{Width: 80, Height: 40})
	return h
}

func (h *harness) send(msg tea.Msg) tea.Cmd {
	next, cmd := h.m.Update(msg)
	h.m = next.(Model)
	return cmd
}

func (h *harness) key(k string) tea.Cmd {
	switch k {
	case "enter":
		return h.send(tea.KeyMsg{Type: tea.KeyEnter})
	case "tab":
		return h.send(tea.KeyMsg{Type: tea.KeyTab})
	case "shift+tab":
		return h.send(tea.KeyMsg{Type: tea.KeyShiftTab})
	case "down":
		return h.send(tea.KeyMsg{Type: tea.KeyDown})
	default:
		return h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)})
	}
}

func (h *harness) active() *screen {
	return h.m.activeScreen()
}

func TestNew_OneScreenPerCatalog(t *testing.T) {
	h := newHarness(t, func(c *config.Config) { c.Catalog.Default = "family" })

	require.Len(t, h.m.screens, 4)
	assert.Equal(t, "family", h.active().catalog.Name)
	for _, s := range h.m.screens {
		assert.Equal(t, playback.StateIdle, s.ctrl.State())
	}
}

func TestPlay_SelectedEntry(t *testing.T) {
	h := newHarness(t, nil)

	h.key("enter")
	require.Equal(t, []model.AudioRef{"number_one.mp3"}, h.player.loads)
	assert.Equal(t, playback.StatePlaying, h.active().state)
	assert.Equal(t, 1, h.arbiter.Depth())
	assert.Equal(t, 0, h.active().playingIndex())

	h.key("down")
	h.key("enter")
	assert.Equal(t, model.AudioRef("number_two.mp3"), h.player.loads[1])
	assert.Equal(t, 1, h.player.tracks[0].released, "previous playback released")
	assert.Equal(t, 1, h.arbiter.Depth())
	assert.Equal(t, 1, h.active().playingIndex())
}

func TestPlay_CompletionGoesIdle(t *testing.T) {
	h := newHarness(t, nil)

	h.key("enter")
	h.player.last().complete()

	assert.Equal(t, playback.StateIdle, h.active().state)
	assert.Equal(t, 0, h.arbiter.Depth())
	assert.Equal(t, -1, h.active().playingIndex())
}

func TestPlay_LoadErrorShowsStatus(t *testing.T) {
	h := newHarness(t, nil)
	h.player.err = os.ErrNotExist

	cmd := h.key("enter")
	require.NotNil(t, cmd)
	msg, ok := cmd().(statusMsg)
	require.True(t, ok)
	assert.True(t, msg.isErr)
	assert.Contains(t, msg.text, "number_one.mp3")

	h.send(msg)
	assert.Contains(t, h.m.View(), "number_one.mp3")
	assert.Equal(t, 0, h.arbiter.Depth())
}

func TestPlay_DeniedIsSilent(t *testing.T) {
	h := newHarness(t, nil)
	h.arbiter.Lock("call")

	cmd := h.key("enter")
	assert.Nil(t, cmd)
	assert.Empty(t, h.player.loads)
	assert.Equal(t, playback.StateIdle, h.active().state)
}

func TestStopKey(t *testing.T) {
	h := newHarness(t, nil)

	h.key("enter")
	h.key("s")
	assert.Equal(t, playback.StateIdle, h.active().state)
	assert.Equal(t, 1, h.player.last().released)
	assert.Equal(t, 0, h.arbiter.Depth())
}

func TestSwitchScreen_StopsPlayback(t *testing.T) {
	tests := []struct {
		name string
		key  string
		want string
	}{
		{"tab", "tab", "family"},
		{"shift+tab wraps", "shift+tab", "phrases"},
		{"digit", "3", "colors"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, nil)
			first := h.active()

			h.key("enter")
			h.key(tt.key)

			assert.Equal(t, tt.want, h.active().catalog.Name)
			assert.Equal(t, playback.StateIdle, first.state)
			assert.Equal(t, 1, h.player.last().released)
			assert.Equal(t, 0, h.arbiter.Depth())
		})
	}
}

func TestSwitchScreen_OutOfRangeDigit(t *testing.T) {
	h := newHarness(t, nil)
	h.key("enter")
	h.key("9")

	assert.Equal(t, "numbers", h.active().catalog.Name)
	assert.Equal(t, playback.StatePlaying, h.active().state)
}

func TestBlur(t *testing.T) {
	h := newHarness(t, nil)
	h.key("enter")
	h.send(tea.BlurMsg{})
	assert.Equal(t, playback.StateIdle, h.active().state)

	h = newHarness(t, func(c *config.Config) { c.TUI.StopOnBlur = false })
	h.key("enter")
	h.send(tea.BlurMsg{})
	assert.Equal(t, playback.StatePlaying, h.active().state)
}

func TestQuit_ReleasesPlayback(t *testing.T) {
	h := newHarness(t, nil)
	h.key("enter")

	cmd := h.key("q")
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
	assert.Equal(t, playback.StateIdle, h.active().state)
	assert.Equal(t, 0, h.arbiter.Depth())
}

func TestFocusLossAcrossScreens(t *testing.T) {
	h := newHarness(t, nil)
	h.key("enter")

	// Another player takes transient focus.
	other := &otherPlayer{}
	require.Equal(t, focus.ResultGranted, h.arbiter.Request(other, focus.StreamMusic, focus.GainTransient))
	assert.Equal(t, playback.StatePaused, h.active().state)
	assert.Contains(t, h.m.View(), "Paused")

	h.arbiter.Abandon(other)
	assert.Equal(t, playback.StatePlaying, h.active().state)
}

type otherPlayer struct {
	changes []focus.Change
}

func (o *otherPlayer) OnFocusChange(c focus.Change) { o.changes = append(o.changes, c) }

func TestCatalogChange_ReloadsOnOpen(t *testing.T) {
	h := newHarness(t, nil)

	doc := "name: family\ntitle: Kin\nentries:\n  - {native: aunt, target: x, audio: aunt.wav}\n"
	require.NoError(t, os.WriteFile(filepath.Join(h.lib.Dir(), "family.yaml"), []byte(doc), 0644))
	h.lib.Invalidate("family")

	cmd := h.send(catalogChangedMsg{name: "family"})
	require.NotNil(t, cmd)
	assert.True(t, h.m.screens[1].stale)
	assert.Equal(t, 10, h.m.screens[1].catalog.Len())

	h.key("tab")
	assert.False(t, h.active().stale)
	assert.Equal(t, "Kin", h.active().catalog.Title)
	assert.Equal(t, 1, h.active().catalog.Len())
}

type updatingPlayer struct {
	stubPlayer
	updates []*config.Config
}

func (p *updatingPlayer) UpdateConfig(cfg *config.Config) { p.updates = append(p.updates, cfg) }

func TestConfigReload(t *testing.T) {
	player := &updatingPlayer{}
	m := New(Options{
		Config:  config.DefaultConfig(),
		Library: catalog.NewLibrary(t.TempDir(), nil),
		Arbiter: focus.NewLocal(nil),
		Player:  player,
	})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 40})
	m = next.(Model)

	reloaded := config.DefaultConfig()
	reloaded.TUI.ShowImages = false
	reloaded.TUI.ShowHelp = false
	reloaded.Theme.Colors["numbers"] = "#000000"

	next, cmd := m.Update(configReloadedMsg{cfg: reloaded})
	m = next.(Model)

	require.NotNil(t, cmd)
	assert.Equal(t, statusMsg{text: "Configuration reloaded"}, cmd())
	assert.Same(t, reloaded, m.cfg)
	assert.Equal(t, []*config.Config{reloaded}, player.updates)
	assert.Equal(t, "#000000", m.screens[0].color)
	for _, s := range m.screens {
		assert.False(t, s.showImages)
	}
	assert.Equal(t, 37, m.screens[0].list.Height())
}

func TestConfigError(t *testing.T) {
	h := newHarness(t, nil)
	before := h.m.cfg

	cmd := h.send(configErrorMsg{err: assert.AnError})
	require.NotNil(t, cmd)
	msg, ok := cmd().(statusMsg)
	require.True(t, ok)
	assert.True(t, msg.isErr)
	assert.Same(t, before, h.m.cfg)
}

func TestVolumeKeys(t *testing.T) {
	cfg := config.DefaultConfig()
	vol := &stubVolume{v: 95}
	m := New(Options{Config: cfg, Library: catalog.NewLibrary("", nil), Arbiter: focus.NewLocal(nil), Player: &stubPlayer{}, Volume: vol})

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("+")})
	m = next.(Model)
	assert.Equal(t, 100, vol.v)
	require.NotNil(t, cmd)
	assert.Equal(t, statusMsg{text: "Volume 100%"}, cmd())

	_, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("-")})
	assert.Equal(t, 90, vol.v)
}

func TestHelpToggle(t *testing.T) {
	h := newHarness(t, nil)

	h.key("?")
	assert.Equal(t, ModeHelp, h.m.mode)
	assert.Contains(t, h.m.View(), "Keyboard Shortcuts")

	// Playback keys are ignored while help is shown.
	h.key("enter")
	assert.Empty(t, h.player.loads)

	h.send(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, ModeList, h.m.mode)
}

func TestView(t *testing.T) {
	h := newHarness(t, nil)
	view := h.m.View()

	for _, title := range []string{"Numbers", "Family", "Colors", "Phrases"} {
		assert.Contains(t, view, title)
	}
	assert.Contains(t, view, "lutti")
	assert.Contains(t, view, "10 words")

	h.key("enter")
	assert.Contains(t, h.m.View(), "♪ lutti (one)")
}

func TestView_NotReady(t *testing.T) {
	m := New(Options{Library: catalog.NewLibrary("", nil), Arbiter: focus.NewLocal(nil), Player: &stubPlayer{}})
	assert.Equal(t, "Initializing...", m.View())
	assert.False(t, strings.Contains(m.View(), "Numbers"))
}

func TestEventLoop_InlineWithoutProgram(t *testing.T) {
	l := newEventLoop()
	ran := false
	l.dispatch(func() { ran = true })
	assert.True(t, ran)
}
