//go:generate mockgen -destination=mock_query_runner.go -package=activity streaming-ping/internal/activity QueryRunner

// Package activity decides whether any monitored device is streaming by
// summing its recent inbound bandwidth in InfluxDB.
package activity

import (
	"context"
	"fmt"
	"strings"

	"streaming-ping/internal/config"
	"streaming-ping/internal/logger"
)

// QueryRunner executes a Flux query and reports whether it returned any row
type QueryRunner interface {
	HasRows(ctx context.Context, flux string) (bool, error)
}

// Detector implements models.Detector
type Detector struct {
	runner QueryRunner
	window config.ActivityConfig
	bucket string
	logger logger.Logger
}

// NewDetector creates a Detector. window.Devices must already be validated
// IP addresses; they are interpolated into the query text.
func NewDetector(runner QueryRunner, bucket string, window config.ActivityConfig, log logger.Logger) *Detector {
	return &Detector{
		runner: runner,
		window: window,
		bucket: bucket,
		logger: log.WithComponent("activity"),
	}
}

// Active reports whether any device summed more than the threshold over the
// window. It never issues a query for an empty device list, and it answers
// false when the query fails.
func (d *Detector) Active(ctx context.Context) bool {
	// An empty "or" group would match every series.
	if len(d.window.Devices) == 0 {
		return false
	}

	active, err := d.runner.HasRows(ctx, d.Query())
	if err != nil {
		if ctx.Err() != nil {
			d.logger.Debug().Err(err).Msg("InfluxDB query cancelled")
			return false
		}
		d.logger.Error().Err(err).Msg("Error querying InfluxDB")
		return false
	}

	return active
}

// Query renders the Flux query for the configured window
func (d *Detector) Query() string {
	clauses := make([]string, 0, len(d.window.Devices))
	for _, ip := range d.window.Devices {
		clauses = append(clauses, fmt.Sprintf(`r.ip == "%s"`, ip))
	}

	return fmt.Sprintf(`
from(bucket: "%s")
  |> range(start: -%ds)
  |> filter(fn: (r) =>
      r._measurement == "%s" and
      r.direction == "%s" and
      (%s)
  )
  |> group(columns: ["ip"])
  |> sum()
  |> filter(fn: (r) => r._value > %d)
  |> group()
  |> limit(n: 1)
`,
		d.bucket,
		int64(d.window.Window.Seconds()),
		d.window.Measurement,
		d.window.Direction,
		strings.Join(clauses, " or "),
		d.window.Threshold,
	)
}
