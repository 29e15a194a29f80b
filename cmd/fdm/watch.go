package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/freedlm/fdm/internal/tui"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Launch the interactive dashboard against a running daemon",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := clientFromEnv()
		if err != nil {
			return err
		}
		p := tea.NewProgram(tui.New(client), tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "tui error: %v\n", err)
			os.Exit(1)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
