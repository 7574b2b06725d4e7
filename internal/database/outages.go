package database

import (
	"sort"
	"time"

	"streaming-ping/internal/models"
)

// MinOutageProbes is the number of consecutive failed probes counted as an outage
const MinOutageProbes = 3

// GetOutages returns runs of at least MinOutageProbes consecutive failed
// probes per target since the given time, most recent first. Runs are found
// in Go because sqlite hands MIN/MAX over timestamps back as text.
func (db *DB) GetOutages(since time.Time) ([]models.Outage, error) {
	records, err := db.GetRecent(since)
	if err != nil {
		return nil, err
	}
	return FindOutages(records, MinOutageProbes), nil
}

// FindOutages groups consecutive failed probes per target. Records must be
// ordered oldest first.
func FindOutages(records []ProbeRecord, minProbes int) []models.Outage {
	open := make(map[models.ProbeTarget]*models.Outage)
	var outages []models.Outage

	closeRun := func(target models.ProbeTarget) {
		o, ok := open[target]
		if !ok {
			return
		}
		delete(open, target)

		if o.FailedProbes >= minProbes {
			o.Duration = o.EndTime.Sub(o.StartTime).String()
			outages = append(outages, *o)
		}
	}

	for _, r := range records {
		if r.Status == models.StatusSuccess {
			closeRun(r.Target)
			continue
		}

		if o, ok := open[r.Target]; ok {
			o.EndTime = r.Timestamp
			o.FailedProbes++
			continue
		}

		open[r.Target] = &models.Outage{
			Target:       string(r.Target),
			StartTime:    r.Timestamp,
			EndTime:      r.Timestamp,
			FailedProbes: 1,
		}
	}

	for target := range open {
		closeRun(target)
	}

	sort.Slice(outages, func(i, j int) bool { return outages[i].StartTime.After(outages[j].StartTime) })

	return outages
}
