package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/freedlm/fdm/internal/transfer"
)

var limitsCmd = &cobra.Command{
	Use:   "limits",
	Short: "Set the process-wide download/upload rate caps",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := clientFromEnv()
		if err != nil {
			return err
		}

		downloadBps, _ := cmd.Flags().GetInt64("download-bps")
		uploadBps, _ := cmd.Flags().GetInt64("upload-bps")
		if !cmd.Flags().Changed("download-bps") && !cmd.Flags().Changed("upload-bps") {
			fmt.Println("Pass --download-bps/--upload-bps to set a limit (0 clears it).")
			return nil
		}

		limits := transfer.SpeedLimits{}
		if cmd.Flags().Changed("download-bps") {
			limits.DownloadBps = &downloadBps
		}
		if cmd.Flags().Changed("upload-bps") {
			limits.UploadBps = &uploadBps
		}

		got, err := client.SetLimits(limits)
		if err != nil {
			return err
		}
		fmt.Print("download limit: ")
		printLimit(got.DownloadBps)
		fmt.Print("upload limit:   ")
		printLimit(got.UploadBps)
		return nil
	},
}

func printLimit(v *int64) {
	if v == nil {
		fmt.Println("none")
		return
	}
	fmt.Printf("%d bytes/s\n", *v)
}

func init() {
	rootCmd.AddCommand(limitsCmd)
	limitsCmd.Flags().Int64("download-bps", 0, "download cap in bytes/sec (0 clears it)")
	limitsCmd.Flags().Int64("upload-bps", 0, "upload cap in bytes/sec (0 clears it)")
}
