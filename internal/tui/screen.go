package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jmylchreest/miwok/internal/catalog"
	"github.com/jmylchreest/miwok/internal/model"
	"github.com/jmylchreest/miwok/internal/playback"
)

// entryItem wraps an entry for the list component.
type entryItem struct {
	entry model.Entry
	index int
}

func (i entryItem) FilterValue() string {
	return i.entry.Native + " " + i.entry.Target
}

// entryDelegate draws entries with RenderRow.
type entryDelegate struct {
	color      string
	showImages bool
	playing    int // row being played, -1 for none
}

func (d entryDelegate) Height() int                             { return 2 }
func (d entryDelegate) Spacing() int                            { return 0 }
func (d entryDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d entryDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	ei, ok := item.(entryItem)
	if !ok {
		return
	}
	fmt.Fprint(w, RenderRow(ei.entry, RowTemplate{
		Width:      m.Width(),
		Color:      d.color,
		ShowImages: d.showImages,
		Selected:   index == m.Index(),
		Playing:    index == d.playing,
	}))
}

// screen is one category tab: a catalog, its list and its playback controller.
type screen struct {
	catalog    *catalog.Catalog
	color      string
	showImages bool
	list       list.Model
	ctrl       *playback.Controller

	state   playback.State
	current model.Entry

	// stale is set when the catalog changed on disk; the screen is rebuilt
	// the next time it opens.
	stale bool
}

func newScreen(c *catalog.Catalog, color string, showImages bool) *screen {
	s := &screen{
		color:      color,
		showImages: showImages,
	}

	l := list.New(nil, s.delegate(), 0, 0)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()
	s.list = l

	s.setCatalog(c)
	return s
}

// setCatalog replaces the entries shown by the screen.
func (s *screen) setCatalog(c *catalog.Catalog) {
	s.catalog = c
	items := make([]list.Item, 0, c.Len())
	for i, e := range c.Entries {
		items = append(items, entryItem{entry: e, index: i})
	}
	s.list.SetItems(items)
	s.stale = false
}

func (s *screen) delegate() entryDelegate {
	return entryDelegate{
		color:      s.color,
		showImages: s.showImages,
		playing:    s.playingIndex(),
	}
}

// playingIndex returns the row of the entry being played, or -1.
func (s *screen) playingIndex() int {
	if s.state == playback.StateIdle || s.catalog == nil {
		return -1
	}
	for i, e := range s.catalog.Entries {
		if e == s.current {
			return i
		}
	}
	return -1
}

// onStateChange is the controller's state hook. It runs on the event loop.
func (s *screen) onStateChange(state playback.State, entry model.Entry) {
	s.state = state
	s.current = entry
	s.list.SetDelegate(s.delegate())
}

// selected resolves the highlighted row against the catalog.
func (s *screen) selected() (model.Entry, bool) {
	item, ok := s.list.SelectedItem().(entryItem)
	if !ok {
		return model.Entry{}, false
	}
	e, err := s.catalog.Entry(item.index)
	if err != nil {
		return model.Entry{}, false
	}
	return e, true
}
