package output

import (
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/mattn/go-runewidth"

	"github.com/jmylchreest/miwok/internal/model"
)

// PlainFormatter formats entries as aligned plain text.
type PlainFormatter struct {
	opts     FormatterOptions
	template *template.Template
}

// NewPlainFormatter creates a new plain text formatter.
func NewPlainFormatter(opts FormatterOptions) *PlainFormatter {
	f := &PlainFormatter{opts: opts}

	if opts.Template != "" {
		tmpl, err := template.New("plain").Funcs(templateFuncs()).Parse(opts.Template)
		if err == nil {
			f.template = tmpl
		}
	}

	return f
}

// Format writes entries as plain text, one per line with the target
// column padded to the widest target.
func (f *PlainFormatter) Format(w io.Writer, entries []model.Entry) error {
	width := 0
	for _, e := range entries {
		width = max(width, runewidth.StringWidth(sanitizeLabel(e.Target, f.opts.LabelMaxLen)))
	}

	for i, e := range entries {
		if err := f.formatEntry(w, i+1, e, width); err != nil {
			return err
		}
	}
	return nil
}

// formatEntry formats a single entry.
func (f *PlainFormatter) formatEntry(w io.Writer, index int, e model.Entry, width int) error {
	if f.template != nil {
		return f.template.Execute(w, newTemplateData(index, e))
	}

	var sb strings.Builder

	if f.opts.ShowIndex {
		sb.WriteString(fmt.Sprintf("[%d] ", index))
	}

	if f.opts.ShowImage && e.HasImage() {
		sb.WriteString(string(e.Image) + " ")
	}

	target := sanitizeLabel(e.Target, f.opts.LabelMaxLen)
	sb.WriteString(runewidth.FillRight(target, width))
	sb.WriteString("  ")
	sb.WriteString(sanitizeLabel(e.Native, f.opts.LabelMaxLen))
	sb.WriteString("\n")

	_, err := w.Write([]byte(sb.String()))
	return err
}

// FormatField extracts a single field from an entry.
func FormatField(e model.Entry, field string) string {
	switch strings.ToLower(field) {
	case "native", "english":
		return e.Native
	case "audio", "ref":
		return string(e.Audio)
	case "image":
		return string(e.Image)
	case "all", "full":
		return fmt.Sprintf("%s\n%s", e.Target, e.Native)
	default:
		return e.Target
	}
}
