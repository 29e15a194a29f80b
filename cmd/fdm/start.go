package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var startCmd = &cobra.Command{
	Use:   "start <url>",
	Short: "Queue a new download against the running daemon",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := clientFromEnv()
		if err != nil {
			return err
		}
		name, _ := cmd.Flags().GetString("name")
		dir, _ := cmd.Flags().GetString("dir")
		kind, _ := cmd.Flags().GetString("kind")

		rec, err := client.Start(args[0], name, dir, kind)
		if err != nil {
			return err
		}
		fmt.Printf("Queued %s [%s] -> %s\n", rec.FileName, rec.ID, rec.SavePath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(startCmd)
	startCmd.Flags().String("name", "", "override the saved file name")
	startCmd.Flags().String("dir", "", "download directory (default: $HOME/Downloads of the daemon process)")
	startCmd.Flags().String("kind", "", "transfer kind: http, magnet, or torrent")
}
