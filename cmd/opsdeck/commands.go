package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"

	"github.com/opsdeck/opsdeck/internal/app"
	"github.com/opsdeck/opsdeck/internal/config"
	"github.com/opsdeck/opsdeck/internal/ledger"
	"github.com/opsdeck/opsdeck/internal/logger"
	"github.com/opsdeck/opsdeck/internal/remote"
	"github.com/opsdeck/opsdeck/internal/sync"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the bookmark daemon (default)",
	Run: func(cmd *cobra.Command, args []string) {
		if err := app.New().Run(); err != nil {
			log.Fatalf("opsdeck failed: %v", err)
		}
	},
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Replay pending changes against the remote API once and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		if cfg.RemoteURL == "" {
			return fmt.Errorf("no remote configured (set OPSDECK_REMOTE_URL)")
		}
		loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

		st := app.OpenStore(cfg, loggerClient)
		defer func() { _ = st.Close() }()

		led := ledger.New(cfg.LedgerPath, loggerClient)
		if led.PendingCount() == 0 {
			fmt.Println("nothing to sync")
			return nil
		}

		client := remote.New(remote.Options{
			BaseURL:               cfg.RemoteURL,
			Token:                 cfg.RemoteToken,
			Timeout:               cfg.RemoteTimeout,
			CategoryUpdateViaPost: cfg.CategoryUpdateViaPost,
		})
		led.SetOnline(true)

		ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
		defer cancel()

		engine := sync.New(st, led, client, loggerClient)
		if engine.Drain(ctx) {
			fmt.Println("sync complete, ledger empty")
			return nil
		}
		return fmt.Errorf("sync finished with %d change(s) still pending", led.PendingCount())
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show connectivity, queue depth and last sync time",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		led := ledger.New(cfg.LedgerPath, logger.New("error", false))

		fmt.Printf("state:    %s\n", led.Describe())
		if t := led.LastSyncTime(); t.IsZero() {
			fmt.Println("last sync: never")
		} else {
			fmt.Printf("last sync: %s\n", t.Format(time.RFC3339))
		}
		return nil
	},
}

var resetYes bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Wipe local bookmark data and the pending-change ledger",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !resetYes {
			return fmt.Errorf("reset is destructive, re-run with --yes to confirm")
		}
		cfg := config.Load()
		loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

		st := app.OpenStore(cfg, loggerClient)
		defer func() { _ = st.Close() }()

		if err := st.ClearAll(cmd.Context()); err != nil {
			return fmt.Errorf("failed to clear store: %w", err)
		}
		ledger.New(cfg.LedgerPath, loggerClient).Reset()

		fmt.Println("local bookmark data cleared")
		return nil
	},
}

func init() {
	resetCmd.Flags().BoolVar(&resetYes, "yes", false, "confirm wiping local data")
}
