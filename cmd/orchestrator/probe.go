package main

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"

	"streaming-ping/internal/lineproto"
	"streaming-ping/internal/monitor"
	"streaming-ping/internal/ping"
)

var errNoProbes = errors.New("no host could be probed")

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Ping every CDN host once, regardless of streaming, and print the lines",
	RunE: func(_ *cobra.Command, _ []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}

		pingPath, err := ping.LookPath()
		if err != nil {
			log.Error().Err(err).Msg("Cannot probe without ping")
			return err
		}

		// No detector, emitter or store: the outcomes are emitted here.
		mon := monitor.New(cfg, nil, ping.New(pingPath, cfg.Probe, log), nil, nil, log)
		outcomes := mon.ProbeAll(context.Background())

		if err := lineproto.NewEmitter(os.Stdout, cfg.HostTag).Emit(outcomes); err != nil {
			return err
		}

		for _, o := range outcomes {
			if o.Completed {
				return nil
			}
		}
		return errNoProbes
	},
}
