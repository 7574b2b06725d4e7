package report

import (
	"sort"
	"strings"
	"time"

	"streaming-ping/internal/database"
	"streaming-ping/internal/models"
)

// sanitizeFilename replaces dots and special characters for safe filenames
func sanitizeFilename(s string) string {
	replacer := strings.NewReplacer(
		".", "_",
		":", "_",
		"/", "_",
		"\\", "_",
		" ", "_",
	)
	return replacer.Replace(s)
}

type targetSeries struct {
	target     string
	timestamps []time.Time
	latency    []float64 // successful probes only
	latencyTS  []time.Time
	loss       []float64
}

// groupByTarget splits records per target, keeping targets in name order so
// chart colours stay stable between reports.
func groupByTarget(records []database.ProbeRecord) []targetSeries {
	byTarget := make(map[string]*targetSeries)

	for _, r := range records {
		name := string(r.Target)
		s, ok := byTarget[name]
		if !ok {
			s = &targetSeries{target: name}
			byTarget[name] = s
		}

		s.timestamps = append(s.timestamps, r.Timestamp)
		s.loss = append(s.loss, r.PercentPacketLoss)

		if r.Status == models.StatusSuccess {
			s.latencyTS = append(s.latencyTS, r.Timestamp)
			s.latency = append(s.latency, r.RTTAvg)
		}
	}

	out := make([]targetSeries, 0, len(byTarget))
	for _, s := range byTarget {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].target < out[j].target })

	return out
}
