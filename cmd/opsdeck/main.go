package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/opsdeck/opsdeck/internal/app"
	"github.com/opsdeck/opsdeck/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "opsdeck",
	Short: "Offline-first bookmark daemon for the opsdeck dashboard",
	Long: `opsdeck keeps a local copy of your dashboard bookmarks, accepts
mutations while the remote API is unreachable, and replays them once
connectivity returns. Running without arguments starts the daemon.`,
	Version: version.Version,
	Run: func(cmd *cobra.Command, args []string) {
		if err := app.New().Run(); err != nil {
			log.Fatalf("opsdeck failed: %v", err)
		}
	},
}

func main() {
	rootCmd.AddCommand(serveCmd, syncCmd, statusCmd, resetCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
