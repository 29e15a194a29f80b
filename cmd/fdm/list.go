package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List every tracked transfer",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := clientFromEnv()
		if err != nil {
			return err
		}
		recs, err := client.List()
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tSTATUS\tSIZE\tSPEED")
		for _, rec := range recs {
			size := "?"
			if rec.TotalBytes != nil {
				size = humanize.Bytes(uint64(*rec.TotalBytes))
			} else if rec.DownloadedBytes > 0 {
				size = humanize.Bytes(uint64(rec.DownloadedBytes)) + "+"
			}
			speed := ""
			if rec.SpeedBps > 0 {
				speed = humanize.Bytes(uint64(rec.SpeedBps)) + "/s"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", shortID(rec.ID), rec.FileName, rec.Status, size, speed)
		}
		return tw.Flush()
	},
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

func init() {
	rootCmd.AddCommand(listCmd)
}
