package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/miwok/internal/adapter/output"
	"github.com/jmylchreest/miwok/internal/core"
	"github.com/jmylchreest/miwok/internal/model"
)

var listOpts struct {
	// Query options
	filter    string
	search    string
	sortBy    string
	sortOrder string
	limit     int

	// Output options
	format   string
	field    string
	template string
	noIndex  bool
	noImages bool
	maxLen   int
}

var listCmd = &cobra.Command{
	Use:   "list [category] [index|word]",
	Short: "List categories or the words in a category",
	Long: `List the available categories, or the words of one category.

Without arguments, lists the categories. With a category, lists its words.
With a category and a 1-based index or a word (in either language), prints
that single entry.

Examples:
  # List categories
  miwok list

  # List the numbers in dmenu format
  miwok list numbers --format dmenu

  # Print the Miwok word for "three"
  miwok list numbers three --field target

  # Family words containing "mother", sorted by Miwok word
  miwok list family --search mother --sort target

  # Entries without an image, as JSON
  miwok list phrases --filter "image=false" -f json

Indexes in filtered or sorted output number the printed rows; pass the
word itself to play or list a single entry.

  # Pick a word with fuzzel and play it
  miwok list colors -f dmenu | fuzzel -d | cut -d' ' -f1 | xargs miwok play colors`,
	Args: cobra.MaximumNArgs(2),
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVar(&listOpts.filter, "filter", "",
		"Filter expression (e.g. \"target~oo,image=true\")")
	listCmd.Flags().StringVarP(&listOpts.search, "search", "s", "",
		"Search both labels")
	listCmd.Flags().StringVar(&listOpts.sortBy, "sort", "position",
		"Sort by field (position, native, target)")
	listCmd.Flags().StringVar(&listOpts.sortOrder, "order", "asc",
		"Sort order (asc, desc)")
	listCmd.Flags().IntVarP(&listOpts.limit, "limit", "n", 0,
		"Maximum number of entries to show (0=unlimited)")

	listCmd.Flags().StringVarP(&listOpts.format, "format", "f", string(output.FormatPlain),
		"Output format (plain, json, dmenu, refs)")
	listCmd.Flags().StringVar(&listOpts.field, "field", "",
		"Output single field of an entry (target, native, audio, image, all)")
	listCmd.Flags().StringVar(&listOpts.template, "template", "",
		"Custom Go template for plain/dmenu output")
	listCmd.Flags().BoolVar(&listOpts.noIndex, "no-index", false,
		"Omit the index column")
	listCmd.Flags().BoolVar(&listOpts.noImages, "no-images", false,
		"Omit entry images")
	listCmd.Flags().IntVar(&listOpts.maxLen, "max-len", 0,
		"Truncate labels to this many cells (0=unlimited)")
}

func runList(cmd *cobra.Command, args []string) error {
	format := output.FormatType(strings.ToLower(listOpts.format))
	if !validFormat(format) {
		return fmt.Errorf("unknown format %q", listOpts.format)
	}

	if len(args) == 0 {
		var summaries []output.Summary
		for _, c := range library.OpenAll() {
			summaries = append(summaries, output.Summarize(c))
		}
		return output.FormatCatalogs(os.Stdout, format, summaries)
	}

	c, err := library.Open(args[0])
	if err != nil {
		return err
	}

	if len(args) == 2 {
		entry, err := c.Lookup(args[1])
		if err != nil {
			return err
		}
		if listOpts.field != "" {
			fmt.Println(output.FormatField(entry, listOpts.field))
			return nil
		}
		if format == output.FormatJSON {
			return output.NewJSONFormatter(formatterOptions()).FormatSingle(os.Stdout, entry)
		}
		return output.NewFormatter(format, formatterOptions()).Format(os.Stdout, []model.Entry{entry})
	}

	entries, err := queryEntries(c.Entries)
	if err != nil {
		return err
	}

	if listOpts.field != "" {
		for _, e := range entries {
			fmt.Println(output.FormatField(e, listOpts.field))
		}
		return nil
	}

	return output.NewFormatter(format, formatterOptions()).Format(os.Stdout, entries)
}

// queryEntries applies the filter, search, sort and limit flags.
func queryEntries(entries []model.Entry) ([]model.Entry, error) {
	expr, err := core.ParseFilter(listOpts.filter)
	if err != nil {
		return nil, fmt.Errorf("invalid filter: %w", err)
	}
	field, err := core.ParseSortField(listOpts.sortBy)
	if err != nil {
		return nil, err
	}
	order, err := core.ParseSortOrder(listOpts.sortOrder)
	if err != nil {
		return nil, err
	}

	result := core.FilterWithExpr(entries, expr)
	result = core.Search(result, listOpts.search)
	result = append([]model.Entry(nil), result...)
	core.Sort(result, core.SortOptions{Field: field, Order: order})
	return core.Limit(result, listOpts.limit), nil
}

func formatterOptions() output.FormatterOptions {
	opts := output.DefaultFormatterOptions()
	opts.Template = listOpts.template
	opts.ShowIndex = !listOpts.noIndex
	opts.ShowImage = !listOpts.noImages && cfg.TUI.ShowImages
	opts.LabelMaxLen = listOpts.maxLen
	return opts
}

func validFormat(format output.FormatType) bool {
	for _, f := range output.FormatTypes {
		if f == format {
			return true
		}
	}
	return false
}
