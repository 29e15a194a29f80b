package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/freedlm/fdm/internal/api"
	"github.com/freedlm/fdm/internal/dirresolve"
	"github.com/freedlm/fdm/internal/history"
	"github.com/freedlm/fdm/internal/logging"
	"github.com/freedlm/fdm/internal/manager"
	"github.com/freedlm/fdm/internal/transfer"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the fdm daemon: Manager plus the HTTP control plane",
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetInt("port")
		dirFlag, _ := cmd.Flags().GetString("dir")

		dir, err := dirresolve.Resolve(dirFlag)
		if err != nil {
			return fmt.Errorf("resolve download directory: %w", err)
		}

		// One daemon per download directory, mirroring the single-instance
		// guarantee the teacher repository enforces with its own PID file
		// (cmd.AcquireLock in the source material), generalized here to a
		// real advisory file lock instead of a hand-rolled PID check.
		lockPath := filepath.Join(dir, "fdm.lock")
		lock := flock.New(lockPath)
		locked, err := lock.TryLock()
		if err != nil {
			return fmt.Errorf("acquire daemon lock: %w", err)
		}
		if !locked {
			return fmt.Errorf("fdm is already serving directory %s", dir)
		}
		defer lock.Unlock()

		store, err := history.Open(filepath.Join(dir, "fdm-history.db"))
		if err != nil {
			return fmt.Errorf("open history store: %w", err)
		}
		defer store.Close()

		mgr := manager.New()
		mgr.OnTerminal = func(rec *transfer.Record) {
			if err := store.Record(rec); err != nil {
				logging.Debug("history store: failed to record %s: %v", rec.ID, err)
			}
		}

		srv := api.New(mgr)

		addr := fmt.Sprintf(":%d", port)
		httpServer := &http.Server{Addr: addr, Handler: srv.Handler()}

		go func() {
			logging.Debug("fdm serve: listening on %s, directory %s", addr, dir)
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logging.Debug("fdm serve: http server error: %v", err)
			}
		}()

		fmt.Printf("fdm serving %s on %s\n", dir, addr)
		fmt.Println("Press Ctrl+C to stop.")

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		<-sigCh

		fmt.Println("\nShutting down...")
		_ = httpServer.Close()
		mgr.Shutdown()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().Int("port", 8383, "port to listen on")
	serveCmd.Flags().String("dir", "", "download directory (default: $HOME/Downloads)")
}
