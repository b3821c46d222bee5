package output

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/jmylchreest/miwok/internal/catalog"
)

// Summary describes one catalog in a catalog listing.
type Summary struct {
	Name    string `json:"name"`
	Title   string `json:"title"`
	Color   string `json:"color"`
	Entries int    `json:"entries"`
	Source  string `json:"source"`
}

// Summarize builds a listing row for a catalog.
func Summarize(c *catalog.Catalog) Summary {
	source := c.Source
	if source == "" {
		source = "bundled"
	}
	return Summary{
		Name:    c.Name,
		Title:   c.Title,
		Color:   c.Color,
		Entries: c.Len(),
		Source:  source,
	}
}

// FormatCatalogs writes a catalog listing. JSON emits an array of
// summaries; dmenu emits bare names; every other format a table.
func FormatCatalogs(w io.Writer, format FormatType, summaries []Summary) error {
	switch format {
	case FormatJSON:
		if summaries == nil {
			summaries = []Summary{}
		}
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(summaries)
	case FormatDmenu, FormatRefs:
		for _, s := range summaries {
			if _, err := fmt.Fprintln(w, s.Name); err != nil {
				return err
			}
		}
		return nil
	default:
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		for _, s := range summaries {
			if _, err := fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", s.Name, s.Title, s.Entries, s.Source); err != nil {
				return err
			}
		}
		return tw.Flush()
	}
}
