package main

import (
	"os"

	"github.com/spf13/cobra"

	"streaming-ping/internal/config"
	"streaming-ping/internal/logger"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:          "streaming-ping",
	Short:        "Ping CDNs while a household device is streaming",
	Long:         "Checks InfluxDB for streaming bandwidth and, when a device is streaming, pings the major CDNs and prints the results as line protocol on stdout.",
	SilenceUsage: true,
	RunE:         runMonitor,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the detection and ping loop (default)",
	RunE:  runMonitor,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "optional config file (YAML)")
	rootCmd.AddCommand(runCmd, probeCmd, reportCmd, serveCmd)
}

// setup loads the configuration and the diagnostic logger shared by every
// command. Rejected device entries are reported but do not stop startup.
func setup() (config.Config, logger.Logger, error) {
	cfg, rejected, err := config.Load(config.NewViper(), cfgFile)
	if err != nil {
		return config.Config{}, nil, err
	}

	log, err := logger.Init(cfg.Log)
	if err != nil {
		return config.Config{}, nil, err
	}

	for _, entry := range rejected {
		log.Warn().Str("entry", entry).Msg("Ignoring invalid streaming device address")
	}

	return cfg, log, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
