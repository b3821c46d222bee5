package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/template"

	"github.com/mattn/go-runewidth"

	"github.com/jmylchreest/miwok/internal/model"
)

// DmenuFormatter formats entries for dmenu/rofi/fuzzel.
type DmenuFormatter struct {
	opts     FormatterOptions
	template *template.Template
}

// NewDmenuFormatter creates a new dmenu formatter.
func NewDmenuFormatter(opts FormatterOptions) *DmenuFormatter {
	f := &DmenuFormatter{opts: opts}

	if opts.Template != "" {
		tmpl, err := template.New("dmenu").Funcs(templateFuncs()).Parse(opts.Template)
		if err == nil {
			f.template = tmpl
		}
	}

	return f
}

// Format writes entries in dmenu format (one per line).
func (f *DmenuFormatter) Format(w io.Writer, entries []model.Entry) error {
	for i, e := range entries {
		line := f.formatLine(i+1, e)
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// formatLine formats a single entry line: [index] [image] target | native.
func (f *DmenuFormatter) formatLine(index int, e model.Entry) string {
	if f.template != nil {
		var buf strings.Builder
		if err := f.template.Execute(&buf, newTemplateData(index, e)); err == nil {
			return buf.String()
		}
	}

	sep := f.opts.Separator
	if sep == "" {
		sep = " | "
	}

	var parts []string
	if f.opts.ShowIndex {
		parts = append(parts, strconv.Itoa(index))
	}

	target := sanitizeLabel(e.Target, f.opts.LabelMaxLen)
	if f.opts.ShowImage && e.HasImage() {
		target = string(e.Image) + " " + target
	}
	parts = append(parts, target, sanitizeLabel(e.Native, f.opts.LabelMaxLen))

	return strings.Join(parts, sep)
}

// templateData provides data for custom templates.
type templateData struct {
	Index int
	Entry model.Entry
	Image string
}

func newTemplateData(index int, e model.Entry) templateData {
	return templateData{Index: index, Entry: e, Image: string(e.Image)}
}

// templateFuncs returns template helper functions.
func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"truncate": func(s string, maxLen int) string {
			return truncateLabel(s, maxLen)
		},
		"pad": func(s string, width int) string {
			return runewidth.FillRight(s, width)
		},
		"upper": strings.ToUpper,
		"lower": strings.ToLower,
	}
}

// sanitizeLabel cleans up a label for single-line display.
func sanitizeLabel(label string, maxLen int) string {
	label = strings.ReplaceAll(label, "\n", " ")
	label = strings.ReplaceAll(label, "\r", "")

	for strings.Contains(label, "  ") {
		label = strings.ReplaceAll(label, "  ", " ")
	}

	return truncateLabel(strings.TrimSpace(label), maxLen)
}

// truncateLabel shortens s to maxLen display cells, marking the cut with "...".
func truncateLabel(s string, maxLen int) string {
	if maxLen <= 0 || runewidth.StringWidth(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return runewidth.Truncate(s, maxLen, "")
	}
	return runewidth.Truncate(s, maxLen, "...")
}
