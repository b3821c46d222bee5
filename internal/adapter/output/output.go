// Package output provides output formatters for vocabulary entries.
package output

import (
	"io"

	"github.com/jmylchreest/miwok/internal/model"
)

// Formatter formats vocabulary entries for output.
type Formatter interface {
	// Format writes formatted entries to the writer.
	Format(w io.Writer, entries []model.Entry) error
}

// FormatType represents an output format type.
type FormatType string

const (
	FormatDmenu FormatType = "dmenu"
	FormatJSON  FormatType = "json"
	FormatPlain FormatType = "plain"
	FormatRefs  FormatType = "refs"
)

// FormatTypes lists the accepted format names in display order.
var FormatTypes = []FormatType{FormatPlain, FormatJSON, FormatDmenu, FormatRefs}

// NewFormatter creates a formatter for the specified format type.
func NewFormatter(format FormatType, opts FormatterOptions) Formatter {
	switch format {
	case FormatJSON:
		return NewJSONFormatter(opts)
	case FormatDmenu:
		return NewDmenuFormatter(opts)
	case FormatRefs:
		return NewRefsFormatter()
	case FormatPlain:
		fallthrough
	default:
		return NewPlainFormatter(opts)
	}
}

// FormatterOptions configures formatter behavior.
type FormatterOptions struct {
	Template    string // Custom template for dmenu/plain format
	ShowIndex   bool   // Show 1-based index prefix
	ShowImage   bool   // Show the entry image glyph when present
	LabelMaxLen int    // Maximum label length (0 = unlimited)
	Separator   string // Field separator for dmenu format
}

// DefaultFormatterOptions returns sensible defaults for list output.
func DefaultFormatterOptions() FormatterOptions {
	return FormatterOptions{
		ShowIndex:   true,
		ShowImage:   true,
		LabelMaxLen: 0,
		Separator:   " | ",
	}
}
