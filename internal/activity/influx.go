package activity

import (
	"context"
	"fmt"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"

	"streaming-ping/internal/config"
)

// FluxRunner runs Flux queries through the InfluxDB v2 query API
type FluxRunner struct {
	queryAPI api.QueryAPI
}

// NewClient connects to InfluxDB. The client is held for the life of the
// process and closed once on shutdown.
func NewClient(cfg config.InfluxConfig) influxdb2.Client {
	return influxdb2.NewClient(cfg.URL, cfg.Token)
}

// NewFluxRunner creates a FluxRunner bound to org
func NewFluxRunner(client influxdb2.Client, org string) *FluxRunner {
	return &FluxRunner{queryAPI: client.QueryAPI(org)}
}

// HasRows reports whether the query produced at least one record. Row
// contents are not read.
func (f *FluxRunner) HasRows(ctx context.Context, flux string) (bool, error) {
	result, err := f.queryAPI.Query(ctx, flux)
	if err != nil {
		return false, fmt.Errorf("flux query failed: %w", err)
	}
	defer result.Close()

	if result.Next() {
		return true, nil
	}

	if err := result.Err(); err != nil {
		return false, fmt.Errorf("flux result decode failed: %w", err)
	}

	return false, nil
}
