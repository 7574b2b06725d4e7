package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/spf13/cobra"

	"streaming-ping/internal/activity"
	"streaming-ping/internal/config"
	"streaming-ping/internal/database"
	"streaming-ping/internal/lineproto"
	"streaming-ping/internal/logger"
	"streaming-ping/internal/models"
	"streaming-ping/internal/monitor"
	"streaming-ping/internal/ping"
)

const backendCheckTimeout = 5 * time.Second

func runMonitor(_ *cobra.Command, _ []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		log.Error().Err(err).Msg("Invalid configuration")
		return err
	}

	pingPath, err := ping.LookPath()
	if err != nil {
		log.Error().Err(err).Msg("Cannot probe without ping")
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	client := activity.NewClient(cfg.Influx)
	defer client.Close()

	checkBackend(ctx, client, log)

	// A nil *database.DB must not end up inside the interface.
	var store models.Store
	if cfg.History.DatabasePath != "" {
		db, err := database.Open(cfg.History.DatabasePath)
		if err != nil {
			log.Error().Err(err).Str("path", cfg.History.DatabasePath).Msg("Failed to open history database")
			return err
		}
		defer db.Close()
		store = db
	}

	detector := activity.NewDetector(activity.NewFluxRunner(client, cfg.Influx.Org), cfg.Influx.Bucket, cfg.Activity, log)
	runner := ping.New(pingPath, cfg.Probe, log)
	emitter := lineproto.NewEmitter(os.Stdout, cfg.HostTag)

	banner(cfg, log)

	return monitor.New(cfg, detector, runner, emitter, store, log).Run(ctx)
}

// checkBackend warns when InfluxDB cannot be reached. The loop still starts:
// every cycle fails closed until the backend comes back.
func checkBackend(ctx context.Context, client influxdb2.Client, log logger.Logger) {
	pingCtx, cancel := context.WithTimeout(ctx, backendCheckTimeout)
	defer cancel()

	ok, err := client.Ping(pingCtx)
	if err != nil || !ok {
		log.Warn().Err(err).Str("url", client.ServerURL()).Msg("InfluxDB is not reachable, streaming checks will fail until it is")
	}
}

func banner(cfg config.Config, log logger.Logger) {
	hosts := make([]string, len(cfg.Hosts))
	for i, h := range cfg.Hosts {
		hosts[i] = string(h)
	}

	log.Info().Msg("Starting conditional CDN ping orchestrator")
	log.Info().Str("url", cfg.Influx.URL).Str("bucket", cfg.Influx.Bucket).Msg("InfluxDB")
	log.Info().Str("devices", strings.Join(cfg.Activity.Devices, ", ")).Msg("Monitoring devices")
	log.Info().Str("hosts", strings.Join(hosts, ", ")).Msg("CDN hosts")
	log.Info().Dur("interval", cfg.Interval).Msg("Check interval")

	if cfg.History.DatabasePath != "" {
		log.Info().Str("path", cfg.History.DatabasePath).Dur("retention", cfg.History.Retention).Msg("Recording history")
	}
	if len(cfg.Activity.Devices) == 0 {
		log.Warn().Msg("No streaming devices configured, pings will never run")
	}
}
