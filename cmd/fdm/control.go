package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/freedlm/fdm/internal/transfer"
)

func controlCommand(use, short, verb string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := clientFromEnv()
			if err != nil {
				return err
			}
			rec, err := dispatchControl(client, verb, args[0])
			if err != nil {
				return err
			}
			fmt.Printf("%s: %s is now %s\n", verb, shortID(rec.ID), rec.Status)
			return nil
		},
	}
}

func dispatchControl(client *daemonClient, verb, id string) (*transfer.Record, error) {
	switch verb {
	case "pause":
		return client.Pause(id)
	case "resume":
		return client.Resume(id)
	case "cancel":
		return client.Cancel(id)
	case "restart":
		return client.Restart(id)
	default:
		return nil, fmt.Errorf("unknown control verb %q", verb)
	}
}

var removeCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove a finished or canceled transfer from the Registry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := clientFromEnv()
		if err != nil {
			return err
		}
		if err := client.Remove(args[0]); err != nil {
			return err
		}
		fmt.Printf("removed %s\n", shortID(args[0]))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(controlCommand("pause", "Pause a running transfer", "pause"))
	rootCmd.AddCommand(controlCommand("resume", "Resume a paused or failed transfer", "resume"))
	rootCmd.AddCommand(controlCommand("cancel", "Cancel a transfer", "cancel"))
	rootCmd.AddCommand(controlCommand("restart", "Restart a transfer from byte zero", "restart"))
	rootCmd.AddCommand(removeCmd)
}
