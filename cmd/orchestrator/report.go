package main

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"streaming-ping/internal/database"
	"streaming-ping/internal/report"
)

var errNoHistory = errors.New("no history database: set HISTORY_DB or pass --db")

var (
	reportDB    string
	reportOut   string
	reportHours int
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Render latency charts and a summary from the recorded history",
	RunE: func(_ *cobra.Command, _ []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}

		path := reportDB
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

		dir, err := report.NewGenerator(db, log).GenerateReport(reportOut, time.Duration(reportHours)*time.Hour)
		if err != nil {
			return err
		}

		log.Info().Str("dir", dir).Msg("Report written")
		return nil
	},
}

func init() {
	reportCmd.Flags().StringVar(&reportDB, "db", "", "history database (defaults to HISTORY_DB)")
	reportCmd.Flags().StringVarP(&reportOut, "out", "o", "reports", "output directory")
	reportCmd.Flags().IntVar(&reportHours, "hours", 24, "hours of history to include")
}
