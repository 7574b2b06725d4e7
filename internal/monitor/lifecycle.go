package monitor

import (
	"time"

	"streaming-ping/internal/models"
)

const maintenanceInterval = time.Hour

// record saves the cycle to the history store, if one is configured
func (m *Monitor) record(cycle models.Cycle) {
	if m.store == nil {
		return
	}

	if err := m.store.SaveCycle(cycle); err != nil {
		m.logger.Error().Err(err).Msg("Failed to save cycle")
	}
}

// maintain prunes history past its retention, at most once an hour. It runs
// inline so the store is only ever touched from the loop.
func (m *Monitor) maintain() {
	if m.store == nil {
		return
	}

	now := m.now()
	if !m.lastMaintenance.IsZero() && now.Sub(m.lastMaintenance) < maintenanceInterval {
		return
	}
	m.lastMaintenance = now

	m.logger.Debug().Msg("Running maintenance tasks...")

	if err := m.store.Prune(m.config.History.Retention); err != nil {
		m.logger.Error().Err(err).Msg("Failed to prune history")
		return
	}

	m.logger.Debug().Msg("Maintenance complete")
}
