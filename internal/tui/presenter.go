package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/jmylchreest/miwok/internal/model"
)

const (
	// markerWidth is the column holding the selection or playing marker.
	markerWidth = 2
	// imageCellWidth fits a double-width glyph plus a space.
	imageCellWidth = 3

	defaultRowColor = "#4A4A4A"
	rowForeground   = "#FFFFFF"
)

// RowTemplate describes how one row is drawn.
type RowTemplate struct {
	// Width is the row width in terminal cells. Zero disables padding.
	Width int
	// Color is the category background color.
	Color string
	// ShowImages enables the image cell for entries that have an image.
	ShowImages bool
	Selected   bool
	Playing    bool
}

// RenderRow renders an entry as two lines: the target word above the native
// word. Entries without an image get no image cell, so their labels start at
// the left edge.
func RenderRow(e model.Entry, tpl RowTemplate) string {
	color := tpl.Color
	if color == "" {
		color = defaultRowColor
	}
	base := lipgloss.NewStyle().
		Background(lipgloss.Color(color)).
		Foreground(lipgloss.Color(rowForeground))

	marker := strings.Repeat(" ", markerWidth)
	switch {
	case tpl.Playing:
		marker = fitCell("♪", markerWidth)
	case tpl.Selected:
		marker = fitCell("▸", markerWidth)
	}

	indent := strings.Repeat(" ", markerWidth)
	image := ""
	if tpl.ShowImages && e.HasImage() {
		image = fitCell(string(e.Image), imageCellWidth)
		indent += strings.Repeat(" ", imageCellWidth)
	}

	top := marker + image + e.Target
	bottom := indent + e.Native
	if tpl.Width > 0 {
		top = fitLine(top, tpl.Width)
		bottom = fitLine(bottom, tpl.Width)
	}

	topStyle := base.Bold(true)
	bottomStyle := base
	if tpl.Selected {
		bottomStyle = bottomStyle.Italic(true)
	}
	return topStyle.Render(top) + "\n" + bottomStyle.Render(bottom)
}

// fitLine truncates or pads s to exactly width cells.
func fitLine(s string, width int) string {
	return runewidth.FillRight(runewidth.Truncate(s, width, "…"), width)
}

// fitCell fits s into a cell of width cells, keeping one trailing space.
func fitCell(s string, width int) string {
	return runewidth.FillRight(runewidth.Truncate(s, width-1, ""), width)
}
