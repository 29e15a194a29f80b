package main

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/freedlm/fdm/internal/dirresolve"
	"github.com/freedlm/fdm/internal/history"
)

func millisToTime(ms int64) time.Time {
	return time.UnixMilli(ms)
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show terminal transitions recorded by the History Store",
	Long:  `history reads the sqlite History Store directly, without talking to a running daemon.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dirFlag, _ := cmd.Flags().GetString("dir")
		dir, err := dirresolve.Resolve(dirFlag)
		if err != nil {
			return err
		}

		store, err := history.Open(filepath.Join(dir, "fdm-history.db"))
		if err != nil {
			return err
		}
		defer store.Close()

		entries, err := store.List()
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tSTATUS\tSIZE\tFINISHED")
		for _, e := range entries {
			size := "?"
			if e.TotalBytes != nil {
				size = humanize.Bytes(uint64(*e.TotalBytes))
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
				shortID(e.ID), e.FileName, e.Status, size, humanize.Time(millisToTime(e.FinishedAt)))
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().String("dir", "", "download directory (default: $HOME/Downloads)")
}
