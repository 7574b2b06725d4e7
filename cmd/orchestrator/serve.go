package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"streaming-ping/internal/database"
	"streaming-ping/internal/web"
)

var (
	serveDB   string
	serveAddr string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the recorded history as a JSON API",
	RunE: func(_ *cobra.Command, _ []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}

		path := serveDB
		if path == "" {
			path = cfg.History.DatabasePath
		}
		if path == "" {
			return errNoHistory
		}

		db, err := database.Open(path)
		if err != nil {
			return err
		}
		defer db.Close()

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		return web.New(db, serveAddr, log).Start(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveDB, "db", "", "history database (defaults to HISTORY_DB)")
	serveCmd.Flags().StringVar(&serveAddr, "addr", "127.0.0.1:8080", "listen address")
}
