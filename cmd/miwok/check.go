package main

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/miwok/internal/audio"
	"github.com/jmylchreest/miwok/internal/catalog"
)

var checkOpts struct {
	decode bool
	quiet  bool
}

var checkCmd = &cobra.Command{
	Use:   "check [category...]",
	Short: "Verify that every word has a playable audio file",
	Long: `Check the audio asset of every entry in the given categories (all
categories when none are given).

Relative audio references resolve against the asset directory
(audio.asset_dir, default ~/.local/share/miwok/audio). With --decode each
file is also decoded, catching corrupt or unsupported files.

Exits non-zero when any asset is missing or unreadable.`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().BoolVar(&checkOpts.decode, "decode", false,
		"Decode every file, not just stat it")
	checkCmd.Flags().BoolVarP(&checkOpts.quiet, "quiet", "q", false,
		"Only print problems")
}

func runCheck(cmd *cobra.Command, args []string) error {
	var catalogs []*catalog.Catalog
	if len(args) == 0 {
		catalogs = library.OpenAll()
	} else {
		for _, name := range args {
			c, err := library.Open(name)
			if err != nil {
				return err
			}
			catalogs = append(catalogs, c)
		}
	}

	manager := audio.NewManager(cfg, logger)
	defer manager.Stop()

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	var (
		total, failed int
		bytes         uint64
	)

	for _, c := range catalogs {
		for _, e := range c.Entries {
			total++
			path, size, err := manager.Check(e.Audio)
			if err == nil && checkOpts.decode {
				err = manager.Decode(e.Audio)
			}

			if err != nil {
				failed++
				reason := "unreadable"
				if errors.Is(err, os.ErrNotExist) {
					reason = "missing"
				} else if errors.Is(err, audio.ErrUnsupportedFormat) {
					reason = "unsupported"
				}
				logger.Debug("audio check failed", "catalog", c.Name, "path", path, "error", err)
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t\n", reason, c.Name, e.Target, path)
				continue
			}

			bytes += uint64(size)
			if !checkOpts.quiet {
				fmt.Fprintf(tw, "ok\t%s\t%s\t%s\t%s\n", c.Name, e.Target, path, humanize.Bytes(uint64(size)))
			}
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if !checkOpts.quiet {
		fmt.Printf("\n%d of %d assets ok (%s)\n", total-failed, total, humanize.Bytes(bytes))
	}
	if failed > 0 {
		return fmt.Errorf("%s of %d audio assets failed", humanize.Comma(int64(failed)), total)
	}
	return nil
}
