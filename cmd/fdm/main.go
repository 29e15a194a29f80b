// Command fdm is the CLI front-end for the download core: `fdm serve`
// runs the daemon in-process, every other subcommand is a one-shot call
// against a running daemon's Control-plane Server. Grounded on the
// cobra command tree in the teacher repository's cmd package,
// generalized from a single monolithic TUI-first binary into a
// client/daemon split per SPEC_FULL.md §4.I.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "fdm",
	Short: "fdm is a concurrent HTTP download manager",
	Long:  `fdm queues, pauses, resumes, restarts, and cancels HTTP downloads with resumable byte-range transfers and a shared rate limit.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func clientFromEnv() (*daemonClient, error) {
	cfg, err := loadDaemonConfig()
	if err != nil {
		return nil, err
	}
	return newDaemonClient(cfg.Addr), nil
}
