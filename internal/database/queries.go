package database

import (
	"database/sql"
	"fmt"
	"time"

	"streaming-ping/internal/models"
)

// SaveCycle stores one loop iteration and its completed probe results
func (db *DB) SaveCycle(cycle models.Cycle) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin cycle: %w", err)
	}
	defer tx.Rollback()

	ts := cycle.Timestamp.UTC()

	res, err := tx.Exec(
		`INSERT INTO cycles (timestamp, streaming, probes) VALUES (?, ?, ?)`,
		ts, cycle.Streaming, len(cycle.Results),
	)
	if err != nil {
		return fmt.Errorf("insert cycle: %w", err)
	}

	cycleID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("cycle id: %w", err)
	}

	query := `
        INSERT INTO probe_results (
            cycle_id, timestamp, target, packets_transmitted, packets_received,
            percent_packet_loss, rtt_min_ms, rtt_avg_ms, rtt_max_ms, rtt_stddev_ms,
            ttl, result_code
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `
	for _, r := range cycle.Results {
		_, err := tx.Exec(query,
			cycleID,
			ts,
			string(r.Target),
			r.PacketsSent,
			r.PacketsReceived,
			r.PercentPacketLoss,
			r.RTTMin,
			r.RTTAvg,
			r.RTTMax,
			r.RTTStdDev,
			r.TTL,
			int(r.Status),
		)
		if err != nil {
			return fmt.Errorf("insert result for %s: %w", r.Target, err)
		}
	}

	return tx.Commit()
}

// ProbeRecord is a stored probe result with the time of its cycle
type ProbeRecord struct {
	Timestamp time.Time `json:"timestamp"`
	models.ProbeResult
}

// recentLimit caps GetRecent; the newest rows are kept
var recentLimit = 10000

// GetRecent retrieves up to the newest recentLimit probe results recorded
// since the given time, returned oldest first
func (db *DB) GetRecent(since time.Time) ([]ProbeRecord, error) {
	query := `
        SELECT timestamp, target, packets_transmitted, packets_received,
               percent_packet_loss, rtt_min_ms, rtt_avg_ms, rtt_max_ms,
               rtt_stddev_ms, ttl, result_code
        FROM (
            SELECT * FROM probe_results
            WHERE timestamp > ?
            ORDER BY timestamp DESC, id DESC
            LIMIT ?
        )
        ORDER BY timestamp, id
    `

	rows, err := db.Query(query, since.UTC(), recentLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []ProbeRecord
	for rows.Next() {
		var rec ProbeRecord
		var target string
		var status int
		err := rows.Scan(&rec.Timestamp, &target, &rec.PacketsSent, &rec.PacketsReceived,
			&rec.PercentPacketLoss, &rec.RTTMin, &rec.RTTAvg, &rec.RTTMax,
			&rec.RTTStdDev, &rec.TTL, &status)
		if err != nil {
			return nil, fmt.Errorf("scan probe result: %w", err)
		}
		rec.Target = models.ProbeTarget(target)
		rec.Status = models.StatusCode(status)
		records = append(records, rec)
	}

	return records, rows.Err()
}

// GetStats retrieves aggregated per-target statistics since the given time
func (db *DB) GetStats(since time.Time) ([]models.Stats, error) {
	query := `
        SELECT
            target,
            COUNT(*) as total_probes,
            SUM(CASE WHEN result_code = 0 THEN 1 ELSE 0 END) as successful_probes,
            AVG(CASE WHEN result_code = 0 THEN rtt_avg_ms ELSE NULL END) as avg_rtt,
            MAX(CASE WHEN result_code = 0 THEN rtt_max_ms ELSE NULL END) as max_rtt,
            MIN(CASE WHEN result_code = 0 THEN rtt_min_ms ELSE NULL END) as min_rtt,
            ROUND(100.0 - (CAST(SUM(packets_received) AS REAL) * 100.0 / MAX(SUM(packets_transmitted), 1)), 2) as packet_loss
        FROM probe_results
        WHERE timestamp > ?
        GROUP BY target
        ORDER BY target
    `

	rows, err := db.Query(query, since.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []models.Stats
	for rows.Next() {
		var s models.Stats
		var avgRTT, maxRTT, minRTT sql.NullFloat64
		err := rows.Scan(&s.Target, &s.TotalProbes, &s.Successful,
			&avgRTT, &maxRTT, &minRTT, &s.PacketLoss)
		if err != nil {
			return nil, fmt.Errorf("scan stats: %w", err)
		}
		s.AvgRTT = avgRTT.Float64
		s.MaxRTT = maxRTT.Float64
		s.MinRTT = minRTT.Float64
		stats = append(stats, s)
	}

	return stats, rows.Err()
}

// GetActivity counts cycles and streaming cycles since the given time
func (db *DB) GetActivity(since time.Time) (models.Activity, error) {
	query := `
        SELECT
            COUNT(*),
            COALESCE(SUM(CASE WHEN streaming THEN 1 ELSE 0 END), 0)
        FROM cycles
        WHERE timestamp > ?
    `

	var a models.Activity
	if err := db.QueryRow(query, since.UTC()).Scan(&a.Cycles, &a.StreamingCycles); err != nil {
		return models.Activity{}, err
	}

	return a, nil
}
