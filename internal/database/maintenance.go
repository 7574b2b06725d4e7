package database

import (
	"time"
)

// Prune deletes cycles and probe results older than retention
func (db *DB) Prune(retention time.Duration) error {
	cutoff := time.Now().Add(-retention).UTC()

	if _, err := db.Exec(`DELETE FROM probe_results WHERE timestamp < ?`, cutoff); err != nil {
		return err
	}

	if _, err := db.Exec(`DELETE FROM cycles WHERE timestamp < ?`, cutoff); err != nil {
		return err
	}

	// Vacuum to reclaim space (run occasionally)
	if time.Now().Day() == 1 { // Run on first day of month
		_, err := db.Exec("VACUUM")
		return err
	}

	return nil
}
