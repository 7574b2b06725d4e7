package monitor

import (
	"context"
	"fmt"

	"streaming-ping/internal/models"
)

// runCycle checks for streaming and, only when it is detected, probes every
// host in order and emits the results.
func (m *Monitor) runCycle(ctx context.Context) models.Cycle {
	cycle := models.Cycle{Timestamp: m.now()}

	if !m.detector.Active(ctx) {
		m.logger.Info().Msg("No streaming detected - skipping pings")
		return cycle
	}

	cycle.Streaming = true
	m.logger.Info().Msg("Streaming detected - pinging CDNs")

	outcomes := m.ProbeAll(ctx)

	var completed []models.Outcome
	for _, o := range outcomes {
		if o.Completed {
			completed = append(completed, o)
			cycle.Results = append(cycle.Results, o.Result)
		}
	}

	if len(completed) == 0 {
		m.logger.Warn().Msg("No probe could be run this cycle")
		return cycle
	}

	if err := m.emitter.Emit(completed); err != nil {
		m.logger.Error().Err(err).Msg("Failed to emit metrics")
	}

	return cycle
}

// ProbeAll probes every configured host sequentially. One host failing,
// even by panicking, does not stop the rest.
func (m *Monitor) ProbeAll(ctx context.Context) []models.Outcome {
	outcomes := make([]models.Outcome, 0, len(m.config.Hosts))
	for _, host := range m.config.Hosts {
		outcomes = append(outcomes, m.probe(ctx, host))
	}
	return outcomes
}

func (m *Monitor) probe(ctx context.Context, host models.ProbeTarget) (out models.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error().Interface("panic", r).Str("host", string(host)).Msg("Error pinging host")
			out = models.Unavailable(host, fmt.Errorf("probe panicked: %v", r))
		}
	}()

	return m.prober.Probe(ctx, host)
}
