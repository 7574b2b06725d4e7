package database

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"streaming-ping/internal/models"
)

var _ models.Store = (*DB)(nil)

// DB wraps sql.DB with the probe history operations
type DB struct {
	*sql.DB
}

// New creates a new database connection
func New(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("database open failed: %w", err)
	}

	// Enable WAL mode so `report` can read while the agent writes
	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA synchronous=NORMAL"} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}

	return &DB{db}, nil
}

// Open creates the connection and makes sure the schema exists
func Open(path string) (*DB, error) {
	db, err := New(path)
	if err != nil {
		return nil, err
	}

	if err := db.InitSchema(); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// InitSchema creates all necessary tables
func (db *DB) InitSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS cycles (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        timestamp DATETIME NOT NULL,
        streaming BOOLEAN NOT NULL,
        probes INTEGER NOT NULL DEFAULT 0
    );

    CREATE INDEX IF NOT EXISTS idx_cycles_timestamp ON cycles(timestamp);

    CREATE TABLE IF NOT EXISTS probe_results (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        cycle_id INTEGER NOT NULL REFERENCES cycles(id),
        timestamp DATETIME NOT NULL,
        target TEXT NOT NULL,
        packets_transmitted INTEGER NOT NULL,
        packets_received INTEGER NOT NULL,
        percent_packet_loss REAL NOT NULL,
        rtt_min_ms REAL NOT NULL,
        rtt_avg_ms REAL NOT NULL,
        rtt_max_ms REAL NOT NULL,
        rtt_stddev_ms REAL NOT NULL,
        ttl INTEGER NOT NULL,
        result_code INTEGER NOT NULL
    );

    CREATE INDEX IF NOT EXISTS idx_probe_results_timestamp ON probe_results(timestamp);
    CREATE INDEX IF NOT EXISTS idx_probe_results_target_timestamp ON probe_results(target, timestamp);
    `

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("schema creation failed: %w", err)
	}

	return nil
}
