package monitor

import (
	"context"
	"time"

	"streaming-ping/internal/config"
	"streaming-ping/internal/logger"
	"streaming-ping/internal/models"
)

var _ models.Monitor = (*Monitor)(nil)

// Monitor runs the detect, probe, emit cycle on a fixed interval. Everything
// happens on the caller's goroutine: probes never overlap and neither do cycles.
type Monitor struct {
	config   config.Config
	detector models.Detector
	prober   models.Prober
	emitter  models.Emitter
	store    models.Store
	logger   logger.Logger

	now             func() time.Time
	lastMaintenance time.Time
}

// New creates a new Monitor. store may be nil when history is disabled.
func New(cfg config.Config, detector models.Detector, prober models.Prober, emitter models.Emitter, store models.Store, log logger.Logger) *Monitor {
	return &Monitor{
		config:   cfg,
		detector: detector,
		prober:   prober,
		emitter:  emitter,
		store:    store,
		logger:   log.WithComponent("monitor"),
		now:      time.Now,
	}
}

// Run loops until ctx is cancelled. Cancellation is checked at the top of
// every iteration; a cycle already under way is allowed to finish.
func (m *Monitor) Run(ctx context.Context) error {
	m.logger.Info().
		Int("devices", len(m.config.Activity.Devices)).
		Int("hosts", len(m.config.Hosts)).
		Dur("interval", m.config.Interval).
		Msg("Starting monitor")

	ticker := time.NewTicker(m.config.Interval)
	defer ticker.Stop()

	for {
		if ctx.Err() != nil {
			m.logger.Info().Msg("Shutting down...")
			return nil
		}

		m.RunCycle(ctx)

		select {
		case <-ctx.Done():
		case <-ticker.C:
		}
	}
}

// RunCycle performs one iteration. It never panics and never returns an
// error: failures are logged and the next tick retries from scratch.
func (m *Monitor) RunCycle(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error().Interface("panic", r).Msg("Error in main loop")
		}
	}()

	cycle := m.runCycle(ctx)

	m.record(cycle)
	m.maintain()
}
